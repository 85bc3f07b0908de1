package scanner

import "regexp"

// Pattern is a named lexical primitive: a compiled regular expression plus
// the human-readable name the Error Reporter uses when a scan against it
// fails and nothing more specific was advertised via SetExpected. IsComment
// patterns are excluded from the capture stack (spec.md §4.1).
type Pattern struct {
	Name      string
	Re        *regexp.Regexp
	IsComment bool
}

func named(name, pattern string) Pattern {
	return Pattern{Name: name, Re: regexp.MustCompile(`\A(?:` + pattern + `)`)}
}

// Raw builds an unnamed pattern for a single punctuation token. Its source
// is rendered directly by the Error Reporter (with trivial regex escapes
// unquoted) rather than through the pattern-to-name table, per spec.md §4.3.
func Raw(pattern string) Pattern {
	return Pattern{Re: regexp.MustCompile(`\A(?:` + pattern + `)`)}
}

// Keyword builds a named pattern matching an exact literal word, used for
// the dialect's reserved words (from, to, through, in, default, ...).
func Keyword(word string) Pattern {
	return named("'"+word+"'", regexp.QuoteMeta(word))
}

// Named lexical primitives, per spec.md §6. Regex forms follow the source
// dialect's own primitives (identifier, number, string, URI, ...).
var (
	S   = named("whitespace", `[ \t\r\n\f]+`)
	CDC = named("'-->'", `-->`)
	CDO = named("'<!--'", `<!--`)

	COMMENT             = Pattern{Name: "a comment", Re: regexp.MustCompile(`\A/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`), IsComment: true}
	SINGLE_LINE_COMMENT = Pattern{Name: "a comment", Re: regexp.MustCompile(`\A//[^\n]*`), IsComment: true}

	IDENT        = named("an identifier", `-?[a-zA-Z_][a-zA-Z0-9_-]*`)
	NUMBER       = named("a number", `[0-9]+(?:\.[0-9]+)?|\.[0-9]+`)
	URI          = named("a URI", `url\(\s*(?:"[^"]*"|'[^']*'|[^)]*)\s*\)`)
	FUNCTION     = named("a function call", `-?[a-zA-Z_][a-zA-Z0-9_-]*\(`)
	HASH         = named("a hex literal", `#[0-9a-fA-F]+\b|#(?:[a-zA-Z_][a-zA-Z0-9_-]*)`)
	UNICODERANGE = named("a unicode range", `[Uu]\+[0-9a-fA-F?]{1,6}(?:-[0-9a-fA-F]{1,6})?`)

	PLUS    = named("'+'", `\+`)
	GREATER = named("'>'", `>`)
	TILDE   = named("'~'", `~`)
	NOT     = named("':not('", `:not\(`)

	INCLUDES       = named("'~='", `~=`)
	DASHMATCH      = named("'|='", `\|=`)
	PREFIXMATCH    = named("'^='", `\^=`)
	SUFFIXMATCH    = named("'$='", `\$=`)
	SUBSTRINGMATCH = named("'*='", `\*=`)

	IMPORTANT = named("'!important'", `!\s*important`)

	// String openers/middles, two pairs per quote style (spec.md §6, §4.2.7).
	// Group 1 is the literal text consumed; group 2 is non-empty only when
	// the match stopped at an interpolation opener rather than the quote.
	// The opener never consumes the character after a `#`-run it cannot
	// pair, so a `#` directly before the closing quote, or a run of `#`
	// directly before `#{`, ends the opener's match early.
	StringDoubleOpen = named(`a string`, `"((?:[^"#\\]|\\.|#+(?:[^"#{\\]|\\.))*)(#\{)?`)
	StringDoubleMid  = named(`string contents`, `((?:[^"#\\]|\\.|#+(?:[^"#{\\]|\\.))*#*)(#\{|")`)
	StringSingleOpen = named(`a string`, `'((?:[^'#\\]|\\.|#+(?:[^'#{\\]|\\.))*)(#\{)?`)
	StringSingleMid  = named(`string contents`, `((?:[^'#\\]|\\.|#+(?:[^'#{\\]|\\.))*#*)(#\{|')`)
)
