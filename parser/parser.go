// Package parser implements the recursive-descent grammar engine for the
// Thicket stylesheet dialect (spec.md §4.2): selectors, declarations,
// control-flow/mixin/variable at-rules, comments, and the single
// declaration-vs-ruleset backtracking point, producing an *ast.Root or a
// single SyntaxError.
package parser

import (
	"strings"

	"github.com/thicket-lang/thicket/ast"
	"github.com/thicket-lang/thicket/expr"
	"github.com/thicket-lang/thicket/internal/invariant"
	"github.com/thicket-lang/thicket/scanner"
)

var (
	atSign       = scanner.Raw(`@`)
	bang         = scanner.Raw(`!`)
	equals       = scanner.Raw(`=`)
	colon        = scanner.Raw(`:`)
	doubleColon  = scanner.Raw(`::`)
	semicolon    = scanner.Raw(`;`)
	openBrace    = scanner.Raw(`\{`)
	closeBrace   = scanner.Raw(`\}`)
	openParen    = scanner.Raw(`\(`)
	closeParen   = scanner.Raw(`\)`)
	openBracket  = scanner.Raw(`\[`)
	closeBracket = scanner.Raw(`\]`)
	comma        = scanner.Raw(`,`)
	star         = scanner.Raw(`\*`)
	ampersand    = scanner.Raw(`&`)
	dot          = scanner.Raw(`\.`)
	idHash       = scanner.Raw(`#`)
	pipe         = scanner.Raw(`\|`)
	openInterp   = scanner.Raw(`#\{`)
	guardBar     = scanner.Raw(`\|\|`)

	kwFrom    = scanner.Keyword("from")
	kwTo      = scanner.Keyword("to")
	kwThrough = scanner.Keyword("through")
	kwIn      = scanner.Keyword("in")
	kwDefault = scanner.Keyword("default")

	elementName = scanner.Raw(`\*|-?[a-zA-Z_][a-zA-Z0-9_-]*`)
)

// Parse is the public entry point (spec.md §6): parse source into an AST
// root, or return a single SyntaxError.
func Parse(source string, opts ...Option) (*ast.Root, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	s := scanner.New(source)
	e := &engine{s: s, cfg: cfg, exprOf: func() *expr.Parser { return expr.New(s) }}

	root := &ast.Root{LineNo: 1}
	if err := e.skipTrivia(&root.Children); err != nil {
		return nil, err
	}
	if err := e.blockContents(&root.Children); err != nil {
		return nil, err
	}
	e.skipBlankSpace()
	if !s.AtEnd() {
		return nil, e.syntaxErrorf("a selector or at-rule")
	}
	invariant.Invariant(s.Position() == len(source), "a successful parse must consume the entire source")
	return root, nil
}

// engine carries the shared scanner, configuration, and the
// use_property_exception flag threaded through the declaration/ruleset
// disambiguation (spec.md §4.2.5).
type engine struct {
	s      *scanner.Scanner
	cfg    *Config
	exprOf func() *expr.Parser

	usePropertyException bool
}

func (e *engine) trace(rule string) {
	e.cfg.traceEvent(rule, e.s.Line(), e.s.Position())
}

// capture wraps scanner.Capture, enforcing the configured
// WithMaxCaptureDepth (spec.md §4.4, SPEC_FULL.md §2) instead of letting
// capture regions nest without bound.
func (e *engine) capture(body func()) (string, error) {
	if e.cfg.maxCaptureDepth > 0 && e.s.CaptureDepth() >= e.cfg.maxCaptureDepth {
		return "", e.syntaxErrorf("a capture region within the configured nesting limit")
	}
	return e.s.Capture(body), nil
}

// skipBlankSpace consumes whitespace without recording it anywhere (used
// between productions where the whitespace carries no meaning of its own).
func (e *engine) skipBlankSpace() {
	for {
		if _, ok := e.s.Scan(scanner.S); ok {
			continue
		}
		return
	}
}

// skipTrivia consumes whitespace and comments, attaching block/single-line
// comments as children of parent (spec.md §4.2.1).
func (e *engine) skipTrivia(parent *[]ast.Node) error {
	for {
		if _, ok := e.s.Scan(scanner.S); ok {
			continue
		}
		line := e.s.Line()
		if text, ok := e.s.Scan(scanner.COMMENT); ok {
			*parent = append(*parent, &ast.Comment{Text: normalizeIndent(text), LineNo: line})
			continue
		}
		if text, ok := e.s.Scan(scanner.SINGLE_LINE_COMMENT); ok {
			*parent = append(*parent, &ast.Comment{Text: text, LineNo: line})
			continue
		}
		return nil
	}
}

// normalizeIndent replaces leading tabs with spaces on every line of a
// preserved block comment (spec.md §3: "leading indentation normalized to
// spaces").
func normalizeIndent(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		j := 0
		for j < len(l) && (l[j] == ' ' || l[j] == '\t') {
			j++
		}
		lines[i] = strings.Repeat(" ", j) + l[j:]
	}
	return strings.Join(lines, "\n")
}

// blockContents repeatedly attaches children to parent (spec.md §4.2.1).
// Between children a `;` separator is required unless the preceding child
// itself ended in a nested block.
func (e *engine) blockContents(parent *[]ast.Node) error {
	for {
		if err := e.skipTrivia(parent); err != nil {
			return err
		}
		if e.s.AtEnd() || e.s.Peek(closeBrace) {
			return nil
		}

		child, hadBlock, err := e.child()
		if err != nil {
			return err
		}
		if child == nil {
			return nil
		}
		*parent = append(*parent, child)

		e.skipBlankSpace()
		if _, ok := e.s.Scan(semicolon); ok {
			continue
		}
		if hadBlock {
			continue
		}
		if e.s.AtEnd() || e.s.Peek(closeBrace) {
			continue
		}
		return e.syntaxErrorf("';'")
	}
}

// child parses one variable binding, at-rule directive, or
// declaration-or-ruleset. hadBlock reports whether the child already
// consumed a trailing brace block, making a separating `;` optional.
func (e *engine) child() (ast.Node, bool, error) {
	if e.s.Peek(bang) {
		v, err := e.variable()
		return v, false, err
	}
	if e.s.Peek(atSign) {
		return e.directive()
	}
	return e.declarationOrRuleset()
}

// variable parses `!name [||] = expr [!default]` (spec.md §4.2.3,
// SPEC_FULL.md §4 for the `!default` spelling).
func (e *engine) variable() (ast.Node, error) {
	line := e.s.Line()
	if _, err := e.expect(bang); err != nil {
		return nil, err
	}
	name, err := e.expect(scanner.IDENT)
	if err != nil {
		return nil, err
	}
	e.skipBlankSpace()

	guarded := false
	if _, ok := e.s.Scan(guardBar); ok {
		guarded = true
		e.skipBlankSpace()
	}
	if _, err := e.expect(equals); err != nil {
		return nil, err
	}
	e.skipBlankSpace()

	value, err := e.exprOf().Parse()
	if err != nil {
		return nil, err
	}

	e.skipBlankSpace()
	mark := e.s.Bookmark()
	if _, ok := e.s.Scan(bang); ok {
		if _, ok := e.s.Scan(kwDefault); ok {
			guarded = true
		} else {
			e.s.Restore(mark)
		}
	}

	return &ast.Variable{Name: name, Expr: value, Guarded: guarded, LineNo: line}, nil
}

// directive dispatches a `@name ...` construct to a specialized production
// or builds a generic Directive (spec.md §4.2.2).
func (e *engine) directive() (ast.Node, bool, error) {
	line := e.s.Line()
	if _, err := e.expect(atSign); err != nil {
		return nil, false, err
	}
	name, err := e.expect(scanner.IDENT)
	if err != nil {
		return nil, false, err
	}
	normalized := strings.ReplaceAll(name, "-", "_")
	e.skipBlankSpace()

	switch normalized {
	case "mixin":
		n, err := e.mixinDefinition(line)
		return n, true, err
	case "include":
		n, err := e.mixinInvocation(line)
		return n, false, err
	case "debug":
		n, err := e.debugDirective(line)
		return n, false, err
	case "return":
		n, err := e.returnDirective(line)
		return n, false, err
	case "for":
		n, err := e.forDirective(line)
		return n, true, err
	case "each":
		n, err := e.eachDirective(line)
		return n, true, err
	case "while":
		n, err := e.whileDirective(line)
		return n, true, err
	case "if":
		n, err := e.ifDirective(line)
		return n, true, err
	case "import":
		return e.importDirective(line)
	default:
		return e.genericDirective(name, line)
	}
}

func (e *engine) mixinDefinition(line int) (ast.Node, error) {
	name, err := e.expect(scanner.IDENT)
	if err != nil {
		return nil, err
	}
	e.skipBlankSpace()
	params, err := e.exprOf().ParseMixinDefinitionArglist()
	if err != nil {
		return nil, err
	}
	children, err := e.braceBlock()
	if err != nil {
		return nil, err
	}
	return &ast.MixinDefinition{Name: name, Params: params, Children: children, LineNo: line}, nil
}

func (e *engine) mixinInvocation(line int) (ast.Node, error) {
	name, err := e.expect(scanner.IDENT)
	if err != nil {
		return nil, err
	}
	e.skipBlankSpace()
	var args expr.ArgList
	if e.s.Peek(openParen) {
		var err error
		args, err = e.exprOf().ParseMixinIncludeArglist()
		if err != nil {
			return nil, err
		}
	}
	return &ast.MixinInvocation{Name: name, Args: args, LineNo: line}, nil
}

func (e *engine) debugDirective(line int) (ast.Node, error) {
	e.skipBlankSpace()
	value, err := e.exprOf().Parse()
	if err != nil {
		return nil, err
	}
	return &ast.Debug{Expr: value, LineNo: line}, nil
}

func (e *engine) returnDirective(line int) (ast.Node, error) {
	e.skipBlankSpace()
	value, err := e.exprOf().Parse()
	if err != nil {
		return nil, err
	}
	return &ast.Return{Expr: value, LineNo: line}, nil
}

func (e *engine) forDirective(line int) (ast.Node, error) {
	if _, err := e.expect(bang); err != nil {
		return nil, err
	}
	varName, err := e.expect(scanner.IDENT)
	if err != nil {
		return nil, err
	}
	e.skipBlankSpace()
	if _, err := e.expect(kwFrom); err != nil {
		return nil, err
	}
	e.skipBlankSpace()
	from, err := e.exprOf().ParseUntil([]string{"to", "through"})
	if err != nil {
		return nil, err
	}
	e.skipBlankSpace()

	inclusive := false
	if _, ok := e.s.Scan(kwThrough); ok {
		inclusive = true
	} else if _, ok := e.s.Scan(kwTo); ok {
		inclusive = false
	} else {
		return nil, e.syntaxErrorf("'to' or 'through'")
	}
	e.skipBlankSpace()

	to, err := e.exprOf().Parse()
	if err != nil {
		return nil, err
	}
	children, err := e.braceBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Var: varName, From: from, To: to, Inclusive: inclusive, Children: children, LineNo: line}, nil
}

func (e *engine) eachDirective(line int) (ast.Node, error) {
	if _, err := e.expect(bang); err != nil {
		return nil, err
	}
	varName, err := e.expect(scanner.IDENT)
	if err != nil {
		return nil, err
	}
	e.skipBlankSpace()
	if _, err := e.expect(kwIn); err != nil {
		return nil, err
	}
	e.skipBlankSpace()
	list, err := e.exprOf().Parse()
	if err != nil {
		return nil, err
	}
	children, err := e.braceBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Each{Var: varName, List: list, Children: children, LineNo: line}, nil
}

func (e *engine) whileDirective(line int) (ast.Node, error) {
	e.skipBlankSpace()
	cond, err := e.exprOf().Parse()
	if err != nil {
		return nil, err
	}
	children, err := e.braceBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Children: children, LineNo: line}, nil
}

func (e *engine) ifDirective(line int) (ast.Node, error) {
	e.skipBlankSpace()
	cond, err := e.exprOf().Parse()
	if err != nil {
		return nil, err
	}
	children, err := e.braceBlock()
	if err != nil {
		return nil, err
	}
	return &ast.If{Cond: cond, Children: children, LineNo: line}, nil
}

// importDirective parses `@import <string-or-uri> [media-list];`. With a
// media list it is rewritten as a Directive (spec.md §4.2.2).
func (e *engine) importDirective(line int) (ast.Node, bool, error) {
	e.skipBlankSpace()

	var path string
	if uri, ok := e.s.Scan(scanner.URI); ok {
		path = uri
	} else if _, ok := e.s.Scan(scanner.StringDoubleOpen); ok {
		path = e.s.Group(1)
		e.s.Scan(doubleQuote)
	} else if _, ok := e.s.Scan(scanner.StringSingleOpen); ok {
		path = e.s.Group(1)
		e.s.Scan(singleQuote)
	} else {
		return nil, false, e.syntaxErrorf("a string or URI")
	}

	var media []string
	e.skipBlankSpace()
	for e.s.Peek(scanner.IDENT) {
		word, _ := e.s.Scan(scanner.IDENT)
		media = append(media, word)
		e.skipBlankSpace()
		if _, ok := e.s.Scan(comma); ok {
			e.skipBlankSpace()
			continue
		}
		break
	}

	if len(media) > 0 {
		text := "@import \"" + path + "\" " + strings.Join(media, ", ")
		return &ast.Directive{Text: text, LineNo: line}, false, nil
	}
	return &ast.Import{Path: path, LineNo: line}, false, nil
}

var (
	doubleQuote = scanner.Raw(`"`)
	singleQuote = scanner.Raw(`'`)
)

// genericDirective captures the raw argument text of an unrecognized
// at-rule, optionally followed by a brace block (spec.md §4.2.2).
func (e *engine) genericDirective(name string, line int) (ast.Node, bool, error) {
	argText, err := e.capture(func() {
		e.consumeUntilTerminator()
	})
	if err != nil {
		return nil, false, err
	}
	text := strings.TrimSpace("@" + name + " " + argText)

	if e.s.Peek(openBrace) {
		children, err := e.braceBlock()
		if err != nil {
			return nil, false, err
		}
		return &ast.Directive{Text: text, Children: children, LineNo: line}, true, nil
	}
	return &ast.Directive{Text: text, LineNo: line}, false, nil
}

// consumeUntilTerminator advances the scanner one token at a time up to
// (but not including) the next `;`, `{`, `}`, or end of input, used while a
// capture buffer is live to record a generic directive's raw argument text.
func (e *engine) consumeUntilTerminator() {
	for {
		if e.s.AtEnd() || e.s.Peek(semicolon) || e.s.Peek(openBrace) || e.s.Peek(closeBrace) {
			return
		}
		if _, ok := e.s.Scan(scanner.COMMENT); ok {
			continue
		}
		if _, ok := e.s.Scan(scanner.SINGLE_LINE_COMMENT); ok {
			continue
		}
		if _, ok := e.s.Scan(anyChar); ok {
			continue
		}
		return
	}
}

var anyChar = scanner.Raw(`[\s\S]`)

// braceBlock parses `{ block_contents }`.
func (e *engine) braceBlock() ([]ast.Node, error) {
	e.skipBlankSpace()
	if _, err := e.expect(openBrace); err != nil {
		return nil, err
	}
	var children []ast.Node
	if err := e.blockContents(&children); err != nil {
		return nil, err
	}
	e.skipBlankSpace()
	if _, err := e.expect(closeBrace); err != nil {
		return nil, err
	}
	if children == nil {
		children = []ast.Node{}
	}
	return children, nil
}
