package parser

import (
	"strings"

	"github.com/thicket-lang/thicket/ast"
	"github.com/thicket-lang/thicket/expr"
	"github.com/thicket-lang/thicket/scanner"
)

// declarationOrRuleset is the single backtracking point (spec.md §4.2.5).
func (e *engine) declarationOrRuleset() (ast.Node, bool, error) {
	e.trace("declarationOrRuleset")
	mark := e.s.Bookmark()
	savedException := e.usePropertyException
	defer func() { e.usePropertyException = savedException }()

	e.usePropertyException = false
	decl, declErr := e.declaration()
	if declErr == nil {
		hadBlock := decl.(*ast.Declaration).Children != nil
		peekMark := e.s.Bookmark()
		e.skipBlankSpace()
		if hadBlock || e.s.Peek(semicolon) || e.s.Peek(closeBrace) || e.s.AtEnd() {
			e.s.Restore(peekMark)
			return decl, hadBlock, nil
		}
		e.s.Restore(peekMark)
		declErr = e.syntaxErrorf("';' or '}'")
	}
	candidateErrA := declErr
	exceptionAtFailure := e.usePropertyException

	e.s.Restore(mark)
	e.usePropertyException = false
	rule, ruleErr := e.ruleset()
	if ruleErr == nil {
		return rule, true, nil
	}

	if exceptionAtFailure {
		return nil, false, candidateErrA
	}
	return nil, false, ruleErr
}

// declaration parses a property/value pair per spec.md §4.2.5.
func (e *engine) declaration() (ast.Node, error) {
	line := e.s.Line()

	if _, ok := e.s.Scan(star); ok {
		e.usePropertyException = true
	}

	property, err := e.propertyTokens()
	if err != nil {
		return nil, err
	}
	if len(property) == 0 {
		return nil, e.syntaxErrorf("a property name")
	}

	if _, ok := e.s.Scan(equals); ok {
		e.usePropertyException = true
		e.skipBlankSpace()
		value, err := e.exprOf().Parse()
		if err != nil {
			return nil, err
		}
		return &ast.Declaration{Property: property, Value: value, LineNo: line}, nil
	}

	if _, err := e.expect(colon); err != nil {
		return nil, err
	}

	spaceAfterColon := false
	if _, ok := e.s.Scan(scanner.S); ok {
		spaceAfterColon = true
		e.usePropertyException = true
	}

	value, err := e.declarationValue()
	if err != nil {
		return nil, err
	}
	if value != nil && !isIdentLikeValue(value) {
		e.usePropertyException = true
	}

	important := false
	mark := e.s.Bookmark()
	e.skipBlankSpace()
	if _, ok := e.s.Scan(scanner.IMPORTANT); ok {
		important = true
	} else {
		e.s.Restore(mark)
	}

	e.skipBlankSpace()
	var children []ast.Node
	requireBlock := false
	if e.s.Peek(openBrace) {
		if value != nil && !spaceAfterColon {
			// A value immediately followed by a block, with no space after
			// the colon, can never legitimately be a nested-property
			// declaration (spec.md §4.2.5 requires that space). Committing
			// here via use_property_exception keeps declarationOrRuleset
			// from silently preferring a selector reading that only
			// succeeds because pseudo() happened to accept the value's
			// identifier as a pseudo-class name.
			e.usePropertyException = true
			return nil, scanner.SyntaxError{
				Message: "a space is required between a property and its definition when it has other properties nested beneath it",
				Line:    e.s.Line(),
			}
		}
		requireBlock = true
		children, err = e.braceBlock()
		if err != nil {
			return nil, err
		}
		if children == nil {
			children = []ast.Node{}
		}
	}

	return &ast.Declaration{
		Property:     property,
		Value:        value,
		Children:     children,
		RequireBlock: requireBlock,
		Important:    important,
		LineNo:       line,
	}, nil
}

// isIdentLikeValue reports whether value looks like it could start a
// property's value in the ordinary case (a plain identifier or a chain
// whose leftmost leaf is one), used to detect the "non-identifier first
// token" use_property_exception trigger (spec.md §4.2.5).
func isIdentLikeValue(value expr.Expression) bool {
	for {
		b, ok := value.(expr.Binary)
		if !ok {
			break
		}
		value = b.Left
	}
	_, ok := value.(expr.Ident)
	return ok
}

// propertyTokens parses one or more identifiers/interpolations, alternating
// (spec.md §4.2.5 "identifier(s) and interpolations alternating").
func (e *engine) propertyTokens() (ast.Tokens, error) {
	var tokens ast.Tokens
	for {
		if text, ok := e.s.Scan(scanner.IDENT); ok {
			tokens = append(tokens, ast.Token{Text: text})
			continue
		}
		if _, ok := e.s.Scan(openInterp); ok {
			value, err := e.exprOf().ParseInterpolated()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, ast.Token{Expr: value})
			continue
		}
		return tokens, nil
	}
}

// declarationValue parses the expr grammar (spec.md §4.2.6), which may be
// absent (nil) when a nested block follows immediately.
func (e *engine) declarationValue() (expr.Expression, error) {
	e.skipBlankSpace()
	if e.s.Peek(openBrace) || e.s.Peek(semicolon) || e.s.Peek(closeBrace) || e.s.AtEnd() {
		return nil, nil
	}
	return e.exprOf().Parse()
}

// ruleset parses a selector list and a brace block (spec.md §4.2.4).
func (e *engine) ruleset() (ast.Node, error) {
	e.trace("ruleset")
	line := e.s.Line()

	selector, ok, err := e.selector()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, e.syntaxErrorf("a selector")
	}

	for {
		mark := e.s.Bookmark()
		e.skipBlankSpace()
		if _, ok := e.s.Scan(comma); !ok {
			e.s.Restore(mark)
			break
		}
		selector = append(selector, ast.Token{Text: ", "})
		e.skipBlankSpace()
		next, ok, err := e.selector()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, e.syntaxErrorf("a selector")
		}
		selector = append(selector, next...)
	}

	children, err := e.braceBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Rule{Selector: selector, Children: children, LineNo: line}, nil
}

// selector parses an optional leading combinator, then alternating
// (simple_selector_sequence, combinator) pairs (spec.md §4.2.4).
func (e *engine) selector() (ast.Tokens, bool, error) {
	var tokens ast.Tokens

	if c, ok := e.combinator(); ok {
		tokens = append(tokens, c...)
	}

	seq, ok, err := e.simpleSelectorSequence(true)
	if err != nil {
		return nil, false, err
	}
	if ok {
		tokens = append(tokens, seq...)
	} else if len(tokens) == 0 {
		return nil, false, nil
	}

	for {
		mark := e.s.Bookmark()
		c, ok := e.combinator()
		if !ok {
			e.s.Restore(mark)
			break
		}
		next, ok, err := e.simpleSelectorSequence(false)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			e.s.Restore(mark)
			break
		}
		tokens = append(tokens, c...)
		tokens = append(tokens, next...)
	}

	return tokens, true, nil
}

// combinator matches `+`, `>`, `~`, or whitespace (spec.md §4.2.4).
func (e *engine) combinator() (ast.Tokens, bool) {
	mark := e.s.Bookmark()
	hadSpace := false
	if _, ok := e.s.Scan(scanner.S); ok {
		hadSpace = true
	}
	for _, p := range []scanner.Pattern{scanner.PLUS, scanner.GREATER, scanner.TILDE} {
		if text, ok := e.s.Scan(p); ok {
			if hadSpace {
				text = " " + text
			}
			if _, ok := e.s.Scan(scanner.S); ok {
				text += " "
			}
			return ast.Tokens{{Text: text}}, true
		}
	}
	if hadSpace {
		return ast.Tokens{{Text: " "}}, true
	}
	e.s.Restore(mark)
	return nil, false
}

// simpleSelectorSequence parses one atom followed by any number of
// additional atoms with no intervening combinator (spec.md §4.2.4). first
// allows the full atom set; subsequent sequences also allow `*`.
func (e *engine) simpleSelectorSequence(first bool) (ast.Tokens, bool, error) {
	var tokens ast.Tokens
	atom, ok, err := e.selectorAtom()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		if !first {
			if text, ok := e.s.Scan(star); ok {
				tokens = append(tokens, ast.Token{Text: text})
			} else {
				return nil, false, nil
			}
		} else {
			return nil, false, nil
		}
	} else {
		tokens = append(tokens, atom...)
	}

	for {
		atom, ok, err := e.selectorAtom()
		if err != nil {
			return nil, false, err
		}
		if ok {
			tokens = append(tokens, atom...)
			continue
		}
		if text, ok := e.s.Scan(star); ok {
			tokens = append(tokens, ast.Token{Text: text})
			continue
		}
		break
	}
	return tokens, true, nil
}

// selectorAtom parses one {element name, #id, .class, attribute, :not(...),
// pseudo, &, interpolation} atom (spec.md §4.2.4). When none of these
// matches it reports no match; it does not fall back to an `expr` term.
func (e *engine) selectorAtom() (ast.Tokens, bool, error) {
	if text, ok := e.s.Scan(scanner.NOT); ok {
		return e.negation(text)
	}
	if text, ok := e.s.Scan(doubleColon); ok {
		return e.pseudo(text, false)
	}
	mark := e.s.Bookmark()
	if text, ok := e.s.Scan(colon); ok {
		tokens, matched, err := e.pseudo(text, true)
		if !matched && err == nil {
			e.s.Restore(mark)
		}
		return tokens, matched, err
	}
	if ok := e.s.Peek(openBracket); ok {
		return e.attrib()
	}
	if text, ok := e.s.Scan(ampersand); ok {
		return ast.Tokens{{Text: text}}, true, nil
	}
	if _, ok := e.s.Scan(openInterp); ok {
		value, err := e.exprOf().ParseInterpolated()
		if err != nil {
			return nil, false, err
		}
		return ast.Tokens{{Expr: value}}, true, nil
	}
	if text, ok := e.s.Scan(idHash); ok {
		id, err := e.expect(scanner.IDENT)
		if err != nil {
			return nil, false, err
		}
		return ast.Tokens{{Text: text + id}}, true, nil
	}
	if text, ok := e.s.Scan(dot); ok {
		class, err := e.expect(scanner.IDENT)
		if err != nil {
			return nil, false, err
		}
		return ast.Tokens{{Text: text + class}}, true, nil
	}
	if text, ok := e.s.Scan(elementName); ok {
		return ast.Tokens{{Text: text}}, true, nil
	}
	return nil, false, nil
}

// negation parses `:not(` <element|#id|.class|attrib|pseudo> `)`.
func (e *engine) negation(open string) (ast.Tokens, bool, error) {
	inner, ok, err := e.selectorAtom()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, e.syntaxErrorf("a simple selector inside ':not('")
	}
	if _, err := e.expect(closeParen); err != nil {
		return nil, false, err
	}
	tokens := ast.Tokens{{Text: open}}
	tokens = append(tokens, inner...)
	tokens = append(tokens, ast.Token{Text: ")"})
	return tokens, true, nil
}

// pseudo parses the rest of a `:`/`::` pseudo-class or pseudo-element:
// either `name(args)` or a bare identifier (spec.md §4.2.4). gateKnownNames
// restricts the name to knownPseudos, used for a single colon only: a
// double colon is never ambiguous with a declaration, but a single colon is
// how declarationOrRuleset's ruleset retry can accidentally swallow a
// malformed nested-property declaration (e.g. `a:b { c: d; }`) as a
// selector, so an unrecognized single-colon name is reported as a
// non-match rather than a successful pseudo-class.
func (e *engine) pseudo(colonText string, gateKnownNames bool) (ast.Tokens, bool, error) {
	if fname, ok := e.s.Scan(scanner.FUNCTION); ok {
		if gateKnownNames && !isKnownPseudo(strings.TrimSuffix(fname, "(")) {
			return nil, false, nil
		}
		tokens := ast.Tokens{{Text: colonText + fname}}
		args, err := e.pseudoFunctionArgs()
		if err != nil {
			return nil, false, err
		}
		tokens = append(tokens, args...)
		if _, err := e.expect(closeParen); err != nil {
			return nil, false, err
		}
		tokens = append(tokens, ast.Token{Text: ")"})
		return tokens, true, nil
	}
	mark := e.s.Bookmark()
	name, err := e.expect(scanner.IDENT)
	if err != nil {
		return nil, false, err
	}
	if gateKnownNames && !isKnownPseudo(name) {
		e.s.Restore(mark)
		return nil, false, nil
	}
	return ast.Tokens{{Text: colonText + name}}, true, nil
}

// pseudoFunctionArgs parses a sequence of terms from {+, -, number,
// interpolated string, identifier, interpolation} (spec.md §4.2.4).
func (e *engine) pseudoFunctionArgs() (ast.Tokens, error) {
	var tokens ast.Tokens
	for {
		if text, ok := e.s.Scan(scanner.S); ok {
			tokens = append(tokens, ast.Token{Text: text})
			continue
		}
		if text, ok := e.s.Scan(scanner.PLUS); ok {
			tokens = append(tokens, ast.Token{Text: text})
			continue
		}
		if text, ok := e.s.Scan(plusOrMinusArg); ok {
			tokens = append(tokens, ast.Token{Text: text})
			continue
		}
		if text, ok := e.s.Scan(scanner.NUMBER); ok {
			tokens = append(tokens, ast.Token{Text: text})
			continue
		}
		if text, ok := e.s.Scan(scanner.IDENT); ok {
			tokens = append(tokens, ast.Token{Text: text})
			continue
		}
		if _, ok := e.s.Scan(openInterp); ok {
			value, err := e.exprOf().ParseInterpolated()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, ast.Token{Expr: value})
			continue
		}
		return tokens, nil
	}
}

var plusOrMinusArg = scanner.Raw(`-`)

// attrib parses `[` <namespace? name> <matcher? value>? `]` (spec.md §4.2.4).
func (e *engine) attrib() (ast.Tokens, bool, error) {
	open, _ := e.s.Scan(openBracket)
	tokens := ast.Tokens{{Text: open}}
	e.skipBlankSpace()

	nameTokens, err := e.attribName()
	if err != nil {
		return nil, false, err
	}
	tokens = append(tokens, nameTokens...)
	e.skipBlankSpace()

	if matcher, ok := e.attribMatcher(); ok {
		tokens = append(tokens, ast.Token{Text: matcher})
		e.skipBlankSpace()
		if str, ok, err := e.interpStringAtom(); err != nil {
			return nil, false, err
		} else if ok {
			tokens = append(tokens, str...)
		} else if id, ok := e.s.Scan(scanner.IDENT); ok {
			tokens = append(tokens, ast.Token{Text: id})
		} else {
			return nil, false, e.syntaxErrorf("an attribute value")
		}
		e.skipBlankSpace()
	}

	if _, err := e.expect(closeBracket); err != nil {
		return nil, false, err
	}
	tokens = append(tokens, ast.Token{Text: "]"})
	return tokens, true, nil
}

// attribName parses the namespace forms E|E, E|, *|E, |E, E.
func (e *engine) attribName() (ast.Tokens, error) {
	var tokens ast.Tokens
	if text, ok := e.s.Scan(star); ok {
		tokens = append(tokens, ast.Token{Text: text})
	} else if text, ok := e.s.Scan(scanner.IDENT); ok {
		tokens = append(tokens, ast.Token{Text: text})
	}
	if text, ok := e.s.Scan(pipe); ok {
		tokens = append(tokens, ast.Token{Text: text})
		if text, ok := e.s.Scan(scanner.IDENT); ok {
			tokens = append(tokens, ast.Token{Text: text})
		}
	}
	if len(tokens) == 0 {
		return nil, e.syntaxErrorf("an attribute name")
	}
	return tokens, nil
}

func (e *engine) attribMatcher() (string, bool) {
	for _, p := range []scanner.Pattern{
		scanner.INCLUDES, scanner.DASHMATCH, scanner.PREFIXMATCH,
		scanner.SUFFIXMATCH, scanner.SUBSTRINGMATCH, equals,
	} {
		if text, ok := e.s.Scan(p); ok {
			return text, true
		}
	}
	return "", false
}

// interpStringAtom parses a quoted, possibly-interpolated string as a flat
// token run (spec.md §4.2.7 interp_string, reused by the attrib production).
func (e *engine) interpStringAtom() (ast.Tokens, bool, error) {
	var opener, mid scanner.Pattern
	var closer scanner.Pattern
	var quote string
	switch {
	case e.s.Peek(doubleQuote):
		opener, mid, closer, quote = scanner.StringDoubleOpen, scanner.StringDoubleMid, doubleQuote, `"`
	case e.s.Peek(singleQuote):
		opener, mid, closer, quote = scanner.StringSingleOpen, scanner.StringSingleMid, singleQuote, `'`
	default:
		return nil, false, nil
	}

	if _, ok := e.s.Scan(opener); !ok {
		return nil, false, nil
	}
	tokens := ast.Tokens{{Text: quote}}
	if text := e.s.Group(1); text != "" {
		tokens = append(tokens, ast.Token{Text: text})
	}
	more := e.s.Group(2) == "#{"
	if !more {
		e.s.Scan(closer)
	}
	for more {
		value, err := e.exprOf().ParseInterpolated()
		if err != nil {
			return nil, false, err
		}
		tokens = append(tokens, ast.Token{Expr: value})
		if _, ok := e.s.Scan(mid); !ok {
			break
		}
		if text := e.s.Group(1); text != "" {
			tokens = append(tokens, ast.Token{Text: text})
		}
		more = e.s.Group(2) == "#{"
	}
	tokens = append(tokens, ast.Token{Text: quote})
	return tokens, true, nil
}
