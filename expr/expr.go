// Package expr is the expression sub-parser boundary described in spec.md
// §6: the grammar engine hands it a shared scanner and asks for one
// expression (or an interpolation body, or an argument list); it advances
// the scanner in place and hands back an opaque Expression the grammar
// engine never inspects beyond String()/Line().
//
// spec.md §1 marks the expression sub-language itself ("SassScript") as an
// external collaborator out of scope — only the interface is specified.
// This package is a minimal concrete stand-in good enough to drive every
// scenario in spec.md §8 (see SPEC_FULL.md §5): numbers with units, hex
// colors, quoted strings with interpolation, function calls, identifiers,
// unicode ranges, and the permissive left-to-right operator chain spec.md
// §4.2.6 describes. It is deliberately not a complete implementation of
// the dialect's value language.
package expr

import (
	"fmt"
	"strings"

	"github.com/thicket-lang/thicket/scanner"
)

// Expression is the opaque value handed back across the sub-parser
// boundary. The grammar engine treats it as a black box (spec.md §9).
type Expression interface {
	String() string
	Line() int
}

// Number is a numeric literal, optionally with a trailing unit (px, %, ...).
type Number struct {
	Text   string
	LineNo int
}

func (n Number) String() string { return n.Text }
func (n Number) Line() int      { return n.LineNo }

// Ident is a bare identifier term (a keyword-like value such as `red` or
// `sans-serif`).
type Ident struct {
	Text   string
	LineNo int
}

func (i Ident) String() string { return i.Text }
func (i Ident) Line() int      { return i.LineNo }

// Hash is a `#rgb`/`#rrggbb`-shaped literal.
type Hash struct {
	Text   string
	LineNo int
}

func (h Hash) String() string { return h.Text }
func (h Hash) Line() int      { return h.LineNo }

// UnicodeRange is a `U+XXXX-YYYY`-shaped literal.
type UnicodeRange struct {
	Text   string
	LineNo int
}

func (u UnicodeRange) String() string { return u.Text }
func (u UnicodeRange) Line() int      { return u.LineNo }

// StringPart is one piece of a String: literal text, or an embedded
// interpolation delegated back through ParseInterpolated.
type StringPart struct {
	Text   string
	Interp Expression // non-nil when this part is a #{...} interpolation
}

// String is a quoted string literal, possibly containing interpolation.
type String struct {
	Quote  byte // '"' or '\''
	Parts  []StringPart
	LineNo int
}

func (s String) String() string {
	var b strings.Builder
	b.WriteByte(s.Quote)
	for _, part := range s.Parts {
		if part.Interp != nil {
			b.WriteString("#{")
			b.WriteString(part.Interp.String())
			b.WriteString("}")
			continue
		}
		b.WriteString(part.Text)
	}
	b.WriteByte(s.Quote)
	return b.String()
}
func (s String) Line() int { return s.LineNo }

// FunctionCall is a `name(args)` term.
type FunctionCall struct {
	Name   string
	Args   Expression // nil when the parens were empty
	LineNo int
}

func (f FunctionCall) String() string {
	if f.Args == nil {
		return f.Name + "()"
	}
	return f.Name + "(" + f.Args.String() + ")"
}
func (f FunctionCall) Line() int { return f.LineNo }

// Unary is a `+`/`-` prefixed term.
type Unary struct {
	Op      string
	Operand Expression
	LineNo  int
}

func (u Unary) String() string { return u.Op + u.Operand.String() }
func (u Unary) Line() int      { return u.LineNo }

// Binary is a left-to-right operator chain, permissive per spec.md §4.2.6
// (operators include whitespace, `/`, `,`, `:`, `.`, `=`).
type Binary struct {
	Left   Expression
	Op     string
	Right  Expression
	LineNo int
}

func (b Binary) String() string {
	if b.Op == " " {
		return b.Left.String() + " " + b.Right.String()
	}
	return b.Left.String() + b.Op + b.Right.String()
}
func (b Binary) Line() int { return b.LineNo }

// Interpolation is the evaluated body of a single `#{...}` region.
type Interpolation struct {
	Inner  Expression
	LineNo int
}

func (i Interpolation) String() string { return "#{" + i.Inner.String() + "}" }
func (i Interpolation) Line() int      { return i.LineNo }

// Arg is one element of an ArgList: a mixin-definition parameter (Name plus
// an optional Default) or a mixin-include argument (Value, optionally
// Named).
type Arg struct {
	Name    string // parameter/argument name, without the leading '!'
	Value   Expression
	Default Expression // non-nil only for a defaulted definition parameter
}

// ArgList is the opaque parameter/argument list spec.md's DATA MODEL
// attaches to MixinDefinition and MixinInvocation.
type ArgList struct {
	Items  []Arg
	LineNo int
}

func (a ArgList) String() string {
	parts := make([]string, len(a.Items))
	for i, item := range a.Items {
		switch {
		case item.Default != nil:
			parts[i] = "!" + item.Name + ": " + item.Default.String()
		case item.Name != "":
			parts[i] = item.Name + ": " + item.Value.String()
		default:
			parts[i] = item.Value.String()
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (a ArgList) Line() int { return a.LineNo }

var (
	openParen    = scanner.Raw(`\(`)
	closeParen   = scanner.Raw(`\)`)
	doubleQuote  = scanner.Raw(`"`)
	singleQuote  = scanner.Raw(`'`)
	openInterp   = scanner.Raw(`#\{`)
	closeBrace   = scanner.Raw(`\}`)
	comma        = scanner.Raw(`,`)
	colon        = scanner.Raw(`:`)
	bang         = scanner.Raw(`!`)
	plusOrMinus  = scanner.Raw(`[+-]`)
	operatorChar = scanner.Raw(`[/,:.=]`)
	unitSuffix   = scanner.Raw(`[a-zA-Z%]+`)
	terminator   = scanner.Raw(`[;{})]`)
)

// Parser is the concrete expression sub-parser. It shares a *scanner.Scanner
// with the caller and advances it in lockstep (spec.md §9).
type Parser struct {
	s *scanner.Scanner
}

// New builds a sub-parser over an already-positioned scanner.
func New(s *scanner.Scanner) *Parser {
	return &Parser{s: s}
}

func (p *Parser) fail(format string, args ...interface{}) error {
	return scanner.SyntaxError{Message: fmt.Sprintf(format, args...), Line: p.s.Line()}
}

// Parse parses one expression up to a natural terminator: `;`, `{`, `}`,
// `)`, or end of input. A `,` is a chain operator here, not a terminator.
func (p *Parser) Parse() (Expression, error) {
	return p.parseChain(nil, false)
}

// ParseUntil parses one expression, stopping immediately before any of the
// given literal stop words (e.g. {"to", "through"} for `@for`).
func (p *Parser) ParseUntil(stopWords []string) (Expression, error) {
	set := make(map[string]bool, len(stopWords))
	for _, w := range stopWords {
		set[w] = true
	}
	return p.parseChain(set, false)
}

// ParseInterpolated parses the body of a single `#{...}` region up to and
// including the closing `}`. The opening `#{` must already have been
// consumed by the caller — every call site (the interpolation atoms in
// package parser, parseTerm's bare `#{` term, and the string-continuation
// loops) detects `#{` itself before delegating here, since in the string case
// the opener/middle pattern's own match already consumes through it
// (spec.md §4.2.7).
func (p *Parser) ParseInterpolated() (Expression, error) {
	line := p.s.Line()
	inner, err := p.Parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if _, ok := p.s.Scan(closeBrace); !ok {
		return nil, p.fail("expected '}' to close interpolation")
	}
	return Interpolation{Inner: inner, LineNo: line}, nil
}

// ParseMixinDefinitionArglist parses a parenthesized parameter list:
// `(!name, !name: default, ...)`.
func (p *Parser) ParseMixinDefinitionArglist() (ArgList, error) {
	line := p.s.Line()
	list := ArgList{LineNo: line}
	p.skipSpace()
	if _, ok := p.s.Scan(openParen); !ok {
		return list, p.fail("expected '(' to start parameter list")
	}
	p.skipSpace()
	if _, ok := p.s.Scan(closeParen); ok {
		return list, nil
	}
	for {
		p.skipSpace()
		if _, ok := p.s.Scan(bang); !ok {
			return list, p.fail("expected a parameter name")
		}
		name, ok := p.s.Scan(scanner.IDENT)
		if !ok {
			return list, p.fail("expected a parameter name")
		}
		arg := Arg{Name: name}
		p.skipSpace()
		if _, ok := p.s.Scan(colon); ok {
			p.skipSpace()
			def, err := p.parseChain(map[string]bool{}, true)
			if err != nil {
				return list, err
			}
			arg.Default = def
		}
		list.Items = append(list.Items, arg)
		p.skipSpace()
		if _, ok := p.s.Scan(comma); ok {
			continue
		}
		break
	}
	p.skipSpace()
	if _, ok := p.s.Scan(closeParen); !ok {
		return list, p.fail("expected ')' to close parameter list")
	}
	return list, nil
}

// ParseMixinIncludeArglist parses a parenthesized argument list:
// `(expr, name: expr, ...)`.
func (p *Parser) ParseMixinIncludeArglist() (ArgList, error) {
	line := p.s.Line()
	list := ArgList{LineNo: line}
	p.skipSpace()
	if _, ok := p.s.Scan(openParen); !ok {
		return list, p.fail("expected '(' to start argument list")
	}
	p.skipSpace()
	if _, ok := p.s.Scan(closeParen); ok {
		return list, nil
	}
	for {
		p.skipSpace()
		name := ""
		mark := p.s.Bookmark()
		if ident, ok := p.s.Scan(scanner.IDENT); ok {
			p.skipSpace()
			if _, ok := p.s.Scan(colon); ok {
				name = ident
			} else {
				p.s.Restore(mark)
			}
		}
		p.skipSpace()
		val, err := p.parseChain(map[string]bool{}, true)
		if err != nil {
			return list, err
		}
		list.Items = append(list.Items, Arg{Name: name, Value: val})
		p.skipSpace()
		if _, ok := p.s.Scan(comma); ok {
			continue
		}
		break
	}
	p.skipSpace()
	if _, ok := p.s.Scan(closeParen); !ok {
		return list, p.fail("expected ')' to close argument list")
	}
	return list, nil
}

func (p *Parser) skipSpace() {
	for {
		if _, ok := p.s.Scan(scanner.S); ok {
			continue
		}
		if _, ok := p.s.Scan(scanner.COMMENT); ok {
			continue
		}
		if _, ok := p.s.Scan(scanner.SINGLE_LINE_COMMENT); ok {
			continue
		}
		return
	}
}

// parseChain parses one term, then zero or more (operator, term) pairs,
// stopping before any word in stop or before a natural terminator. When
// commaEnds is set (argument-list items), a `,` also ends the chain.
func (p *Parser) parseChain(stop map[string]bool, commaEnds bool) (Expression, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		mark := p.s.Bookmark()
		hadSpace := false
		if _, ok := p.s.Scan(scanner.S); ok {
			hadSpace = true
		}

		if p.atStopWord(stop) || p.atTerminator(commaEnds) {
			p.s.Restore(mark)
			return left, nil
		}

		op := ""
		if text, ok := p.s.Scan(operatorChar); ok {
			op = text
		} else if hadSpace {
			op = " "
		} else {
			p.s.Restore(mark)
			return left, nil
		}

		p.skipSpace()
		if p.atStopWord(stop) || p.atTerminator(commaEnds) {
			p.s.Restore(mark)
			return left, nil
		}

		right, err := p.parseTerm()
		if err != nil {
			p.s.Restore(mark)
			return left, nil
		}
		left = Binary{Left: left, Op: op, Right: right, LineNo: left.Line()}
	}
}

func (p *Parser) atTerminator(commaEnds bool) bool {
	return p.s.AtEnd() || p.s.Peek(terminator) || (commaEnds && p.s.Peek(comma))
}

func (p *Parser) atStopWord(stop map[string]bool) bool {
	if len(stop) == 0 {
		return false
	}
	mark := p.s.Bookmark()
	defer p.s.Restore(mark)
	word, ok := p.s.Scan(scanner.IDENT)
	return ok && stop[word]
}

func (p *Parser) parseTerm() (Expression, error) {
	line := p.s.Line()

	if text, ok := p.s.Scan(scanner.UNICODERANGE); ok {
		return UnicodeRange{Text: text, LineNo: line}, nil
	}
	if text, ok := p.s.Scan(scanner.NUMBER); ok {
		if unit, ok := p.s.Scan(unitSuffix); ok {
			text += unit
		}
		return Number{Text: text, LineNo: line}, nil
	}
	if text, ok := p.s.Scan(scanner.URI); ok {
		return Ident{Text: text, LineNo: line}, nil
	}
	if name, ok := p.s.Scan(scanner.FUNCTION); ok {
		return p.parseFunctionCall(strings.TrimSuffix(name, "("), line)
	}
	if str, ok := p.parseString(); ok {
		return str, nil
	}
	if text, ok := p.s.Scan(scanner.IDENT); ok {
		return Ident{Text: text, LineNo: line}, nil
	}
	if text, ok := p.s.Scan(scanner.HASH); ok {
		return Hash{Text: text, LineNo: line}, nil
	}
	if _, ok := p.s.Scan(openInterp); ok {
		return p.ParseInterpolated()
	}
	if op, ok := p.s.Scan(plusOrMinus); ok {
		operand, err := p.parseTerm()
		if err != nil {
			return nil, p.fail("expected a number or function call after unary '%s'", op)
		}
		return Unary{Op: op, Operand: operand, LineNo: line}, nil
	}

	return nil, p.fail("expected an expression, was %q", preview(p.s.Rest()))
}

func (p *Parser) parseFunctionCall(name string, line int) (Expression, error) {
	p.skipSpace()
	if _, ok := p.s.Scan(closeParen); ok {
		return FunctionCall{Name: name, LineNo: line}, nil
	}
	args, err := p.parseChain(map[string]bool{}, false)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if _, ok := p.s.Scan(closeParen); !ok {
		return nil, p.fail("expected ')' to close call to '%s'", name)
	}
	return FunctionCall{Name: name, Args: args, LineNo: line}, nil
}

// parseString scans a quoted string, delegating any embedded #{...} regions
// back through ParseInterpolated. Per spec.md §4.2.7, continuation is
// detected via capture-group emptiness on the scanner's last match — but
// the opener and middle patterns are not symmetric: the opener's trailing
// `#{` is optional and, when absent, stops just short of the closing quote
// without consuming it, while the middle pattern's trailing group always
// consumes one of `#{` or the closing quote itself. So only the middle
// pattern's group(2) can be compared directly against the quote; after the
// opener, an empty group(2) means the closing quote still has to be
// scanned explicitly.
func (p *Parser) parseString() (Expression, bool) {
	line := p.s.Line()

	var opener, mid, closer scanner.Pattern
	var quote byte
	switch {
	case p.s.Peek(doubleQuote):
		opener, mid, closer, quote = scanner.StringDoubleOpen, scanner.StringDoubleMid, doubleQuote, '"'
	case p.s.Peek(singleQuote):
		opener, mid, closer, quote = scanner.StringSingleOpen, scanner.StringSingleMid, singleQuote, '\''
	default:
		return nil, false
	}

	if _, ok := p.s.Scan(opener); !ok {
		return nil, false
	}
	result := String{Quote: quote, LineNo: line}
	if text := p.s.Group(1); text != "" {
		result.Parts = append(result.Parts, StringPart{Text: text})
	}
	more := p.s.Group(2) == "#{"
	if !more {
		p.s.Scan(closer)
	}

	for more {
		interp, err := p.ParseInterpolated()
		if err != nil {
			return result, true
		}
		if in, ok := interp.(Interpolation); ok {
			interp = in.Inner
		}
		result.Parts = append(result.Parts, StringPart{Interp: interp})

		if _, ok := p.s.Scan(mid); !ok {
			break
		}
		if text := p.s.Group(1); text != "" {
			result.Parts = append(result.Parts, StringPart{Text: text})
		}
		more = p.s.Group(2) == "#{"
	}
	return result, true
}

func preview(s string) string {
	if len(s) > 15 {
		return s[:15]
	}
	return s
}
