package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/thicket-lang/thicket/scanner"
)

// SyntaxError is the one error kind this package raises (spec.md §7). It is
// a type alias to scanner.SyntaxError so the expression sub-parser and the
// grammar engine share the same concrete type without an import cycle
// (package expr cannot import package parser).
type SyntaxError = scanner.SyntaxError

// knownDirectives and knownPseudos back the "did you mean" suggestion the
// Error Reporter appends when the text after a syntax error is close to one
// of these names (SPEC_FULL.md §3), grounded on the teacher's planner use
// of fuzzy.RankFindFold for decorator-name suggestions.
var (
	knownDirectives = []string{"mixin", "include", "debug", "for", "while", "if", "import", "each", "return"}
	knownPseudos    = []string{"hover", "active", "visited", "focus", "first-child", "last-child", "not", "nth-child"}
)

// isKnownPseudo reports whether name is a recognized single-colon
// pseudo-class, used by pseudo() to gate the declaration-vs-ruleset
// backtracking point (spec.md §4.2.5) in addition to the fuzzy-suggestion
// use above.
func isKnownPseudo(name string) bool {
	for _, p := range knownPseudos {
		if p == name {
			return true
		}
	}
	return false
}

// patternNames maps a Pattern's compiled regexp to its Error-Reporter-facing
// name; it is filled at init. patternName reads a pattern's Name field
// directly and does not consult this table (spec.md §4.3).
var patternNames = map[*regexp.Regexp]string{}

func registerPatternName(p scanner.Pattern) {
	if p.Name != "" {
		patternNames[p.Re] = p.Name
	}
}

func init() {
	for _, p := range []scanner.Pattern{
		scanner.S, scanner.CDC, scanner.CDO, scanner.COMMENT, scanner.SINGLE_LINE_COMMENT,
		scanner.IDENT, scanner.NUMBER, scanner.URI, scanner.FUNCTION, scanner.HASH,
		scanner.UNICODERANGE, scanner.PLUS, scanner.GREATER, scanner.TILDE, scanner.NOT,
		scanner.INCLUDES, scanner.DASHMATCH, scanner.PREFIXMATCH, scanner.SUFFIXMATCH,
		scanner.SUBSTRINGMATCH, scanner.IMPORTANT,
		scanner.StringDoubleOpen, scanner.StringDoubleMid, scanner.StringSingleOpen, scanner.StringSingleMid,
	} {
		registerPatternName(p)
	}
}

// unquote strips the trivial regex escapes (`\(`, `\{`, ...) a
// Raw pattern's source carries, so an unnamed pattern like `scanner.Raw(`\(`)`
// renders as `(` rather than `\(` in an error message (spec.md §4.3).
var escapedChar = regexp.MustCompile(`\\(.)`)

func unquote(source string) string {
	source = strings.TrimPrefix(source, `\A(?:`)
	source = strings.TrimSuffix(source, `)`)
	return escapedChar.ReplaceAllString(source, "$1")
}

// patternName renders a human name for p: its registered name if any,
// otherwise its literal source with trivial escapes unquoted.
func patternName(p scanner.Pattern) string {
	if p.Name != "" {
		return p.Name
	}
	return "'" + unquote(p.Re.String()) + "'"
}

// preview trims s to at most 15 characters, per spec.md §4.3.
func preview(s string) string {
	if len(s) > 15 {
		return s[:15]
	}
	return s
}

// contextBefore computes the "<context-before>" window: up to the last 15
// characters preceding pos, with a leading "..." if the source was
// truncated, and any trailing run of whitespace (up to the cut point)
// elided.
func contextBefore(source string, pos int) string {
	start := pos - 15
	truncated := start > 0
	if start < 0 {
		start = 0
	}
	text := source[start:pos]
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
		truncated = false
	}
	text = strings.TrimRight(text, " \t\r\n\f")
	if truncated {
		return "..." + text
	}
	return text
}

// contextAfter computes the "<context-after>" window: up to 15 characters
// of the remaining source, with a leading newline stripped and anything
// past the next newline truncated, suffixed with "..." if the result was
// cut short of the true remaining text.
func contextAfter(rest string) string {
	rest = strings.TrimPrefix(rest, "\n")
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[:idx]
	}
	truncated := len(rest) > 15
	text := preview(rest)
	if truncated {
		return text + "..."
	}
	return text
}

// expect scans p, raising a SyntaxError naming it (or the engine's pending
// expectation, if one was advertised via SetExpected) on failure.
func (e *engine) expect(p scanner.Pattern) (string, error) {
	text, ok := e.s.Scan(p)
	if ok {
		return text, nil
	}
	return "", e.syntaxErrorf(patternName(p))
}

// syntaxErrorf builds the "Invalid CSS after ..." message spec.md §4.3
// specifies verbatim, appending a fuzzy-matched suggestion when the
// unrecognized text in the "after" window is close to a known name
// (SPEC_FULL.md §3).
func (e *engine) syntaxErrorf(expected string) error {
	if e.s.Expected() != "" {
		expected = e.s.Expected()
	}
	before := contextBefore(e.s.Source(), e.s.Position())
	after := contextAfter(e.s.Rest())

	msg := fmt.Sprintf("Invalid CSS after %q: expected %s, was %q", before, expected, after)
	if suggestion := suggest(after); suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return SyntaxError{Message: msg, Line: e.s.Line()}
}

// suggest looks for a close fuzzy match of the unrecognized token text
// against the known directive/pseudo name tables.
func suggest(after string) string {
	word := strings.TrimLeft(after, "@:")
	word = strings.TrimRight(word, " \t\r\n\f;{}()")
	if word == "" {
		return ""
	}
	if ranks := fuzzy.RankFindFold(word, knownDirectives); len(ranks) > 0 {
		return ranks[0].Target
	}
	if ranks := fuzzy.RankFindFold(word, knownPseudos); len(ranks) > 0 {
		return ranks[0].Target
	}
	return ""
}
