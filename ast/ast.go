// Package ast defines the tagged-variant tree produced by package parser.
//
// Every node carries the 1-based source line on which its first contributing
// token appeared (spec invariant: Line() == that line). Selectors,
// declaration properties/values, and similar token runs are represented as
// []Token rather than a single string so that literal text and embedded
// #{...} interpolation can both appear in the same run while still letting
// callers reconstruct the original source span (see Tokens.String).
package ast

import (
	"strings"

	"github.com/thicket-lang/thicket/expr"
)

// Node is the interface every AST entity satisfies.
type Node interface {
	// Line returns the 1-based source line of this node's first token.
	Line() int
	// String renders a debugging form of the node, not a source round-trip.
	String() string
}

// Token is one element of a flattened token run (a selector, a property
// name, a declaration value, ...). Exactly one of Text or Expr is set: Text
// holds literal source text (including whitespace, excluding comments, per
// the capture-stack contract); Expr holds an embedded #{...} interpolation
// delegated to package expr.
type Token struct {
	Text string
	Expr expr.Expression
}

// Tokens is a flattened run of Token, preserving source order.
type Tokens []Token

// String concatenates the run back into its original source span (modulo
// the opaque rendering package expr chooses for an embedded expression).
// An Expr that is already an expr.Interpolation renders its own braces.
func (ts Tokens) String() string {
	var b strings.Builder
	for _, t := range ts {
		if in, ok := t.Expr.(expr.Interpolation); ok {
			b.WriteString(in.String())
			continue
		}
		if t.Expr != nil {
			b.WriteString("#{")
			b.WriteString(t.Expr.String())
			b.WriteString("}")
			continue
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// Root is the top of every parse: the stylesheet as a whole.
type Root struct {
	Children []Node
	LineNo   int
}

func (n *Root) Line() int   { return n.LineNo }
func (n *Root) String() string {
	var parts []string
	for _, c := range n.Children {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "\n")
}

// Rule is a selector list followed by a nested block.
type Rule struct {
	Selector Tokens
	Children []Node
	LineNo   int
}

func (n *Rule) Line() int      { return n.LineNo }
func (n *Rule) String() string { return n.Selector.String() + " { ... }" }

// Directive is a generic `@name args { ... }` or `@name args;` construct,
// used both for at-rules outside the fixed specialized set and for
// `@import` when it carries a media query (spec.md §4.2.2).
type Directive struct {
	Text     string // "@name args", trimmed
	Children []Node // nil when the directive has no block
	LineNo   int
}

func (n *Directive) Line() int      { return n.LineNo }
func (n *Directive) String() string { return n.Text }

// Declaration is a property/value pair, optionally with a nested block
// (spec.md §4.2.5 / §4.2.6, scenario 6). Value is the opaque result of a
// single delegated `expr` parse (spec.md §4.2.5), not a literal token run
// like Property — it carries no source braces of its own, unlike an
// embedded #{...} interpolation elsewhere in this package.
type Declaration struct {
	Property     Tokens
	Value        expr.Expression // nil when a nested block follows with no value
	Children     []Node          // non-nil only when a nested block followed
	RequireBlock bool            // true when the property needs a non-empty block
	Important    bool
	LineNo       int
}

func (n *Declaration) Line() int { return n.LineNo }
func (n *Declaration) String() string {
	if n.Value == nil {
		return n.Property.String() + " { ... }"
	}
	return n.Property.String() + ": " + n.Value.String()
}

// Variable is a `!name = expr` (or `!name = expr !default`) binding.
type Variable struct {
	Name    string
	Expr    expr.Expression
	Guarded bool
	LineNo  int
}

func (n *Variable) Line() int      { return n.LineNo }
func (n *Variable) String() string { return "!" + n.Name + " = " + n.Expr.String() }

// MixinDefinition is `@mixin name(params) { ... }`.
type MixinDefinition struct {
	Name     string
	Params   expr.ArgList
	Children []Node
	LineNo   int
}

func (n *MixinDefinition) Line() int      { return n.LineNo }
func (n *MixinDefinition) String() string { return "@mixin " + n.Name }

// MixinInvocation is `@include name(args)`.
type MixinInvocation struct {
	Name   string
	Args   expr.ArgList
	LineNo int
}

func (n *MixinInvocation) Line() int      { return n.LineNo }
func (n *MixinInvocation) String() string { return "@include " + n.Name }

// Debug is `@debug expr`.
type Debug struct {
	Expr   expr.Expression
	LineNo int
}

func (n *Debug) Line() int      { return n.LineNo }
func (n *Debug) String() string { return "@debug " + n.Expr.String() }

// Return is `@return expr` (supplemented — see SPEC_FULL.md §4).
type Return struct {
	Expr   expr.Expression
	LineNo int
}

func (n *Return) Line() int      { return n.LineNo }
func (n *Return) String() string { return "@return " + n.Expr.String() }

// For is `@for !var from X (to|through) Y { ... }`.
type For struct {
	Var       string
	From      expr.Expression
	To        expr.Expression
	Inclusive bool // true when the terminator was `through`
	Children  []Node
	LineNo    int
}

func (n *For) Line() int { return n.LineNo }
func (n *For) String() string {
	word := "to"
	if n.Inclusive {
		word = "through"
	}
	return "@for !" + n.Var + " from " + n.From.String() + " " + word + " " + n.To.String()
}

// Each is `@each !var in listExpr { ... }` (supplemented — see SPEC_FULL.md §4).
type Each struct {
	Var      string
	List     expr.Expression
	Children []Node
	LineNo   int
}

func (n *Each) Line() int      { return n.LineNo }
func (n *Each) String() string { return "@each !" + n.Var + " in " + n.List.String() }

// While is `@while cond { ... }`.
type While struct {
	Cond     expr.Expression
	Children []Node
	LineNo   int
}

func (n *While) Line() int      { return n.LineNo }
func (n *While) String() string { return "@while " + n.Cond.String() }

// If is `@if cond { ... }`.
type If struct {
	Cond     expr.Expression
	Children []Node
	LineNo   int
}

func (n *If) Line() int      { return n.LineNo }
func (n *If) String() string { return "@if " + n.Cond.String() }

// Import is `@import "path";` when no media query is present. When a media
// query is present, the parser emits a Directive instead (spec.md §4.2.2).
type Import struct {
	Path   string
	LineNo int
}

func (n *Import) Line() int      { return n.LineNo }
func (n *Import) String() string { return `@import "` + n.Path + `"` }

// Comment is a preserved block comment with leading indentation normalized
// to spaces (spec.md §3), or a single-line `//` comment kept as written.
type Comment struct {
	Text   string
	LineNo int
}

func (n *Comment) Line() int      { return n.LineNo }
func (n *Comment) String() string { return n.Text }
