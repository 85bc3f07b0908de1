// Package scanner implements the position-tracking cursor over stylesheet
// source text described in spec.md §4.1: a single `scan(pattern)` primitive
// that either advances past a regex match or leaves all state untouched, a
// non-consuming `peek`, bookmarks for the grammar engine's sole
// backtracking point, and a capture stack for recording raw source spans.
package scanner

import (
	"strings"

	"github.com/thicket-lang/thicket/internal/invariant"
)

// Bookmark is an opaque saved (position, line) pair. The capture stack is
// never rolled back by Restore — by contract (spec.md §4.1) no capture
// region straddles the grammar engine's single backtracking point.
type Bookmark struct {
	position int
	line     int
}

// Scanner is the cursor over an immutable source string.
type Scanner struct {
	source string

	position int
	line     int

	lastGroups []string
	expected   string

	captureStack []*strings.Builder
}

// New creates a Scanner positioned at the start of source, line 1.
func New(source string) *Scanner {
	return &Scanner{source: source, line: 1}
}

// Scan attempts to match pattern at the current position. On success it
// advances position past the match, updates the line count, records the
// match's capture groups, clears the pending expectation, and — unless
// pattern is a comment pattern — appends the matched text to every live
// capture buffer. On failure it returns ("", false) with no state change.
func (s *Scanner) Scan(p Pattern) (string, bool) {
	rest := s.source[s.position:]
	loc := p.Re.FindStringSubmatchIndex(rest)
	if loc == nil {
		return "", false
	}

	matched := rest[loc[0]:loc[1]]
	groups := make([]string, len(loc)/2)
	for i := range groups {
		lo, hi := loc[2*i], loc[2*i+1]
		if lo < 0 || hi < 0 {
			continue
		}
		groups[i] = rest[lo:hi]
	}

	prevPos := s.position
	s.position += loc[1]
	s.line += strings.Count(matched, "\n")
	s.lastGroups = groups
	s.expected = ""

	if !p.IsComment {
		s.appendCapture(matched)
	}

	invariant.Invariant(s.position >= prevPos, "scan must not move position backwards")
	return matched, true
}

// Peek is the non-consuming lookahead equivalent of Scan.
func (s *Scanner) Peek(p Pattern) bool {
	rest := s.source[s.position:]
	return p.Re.FindStringIndex(rest) != nil
}

// Rest returns the unconsumed suffix of the source.
func (s *Scanner) Rest() string {
	return s.source[s.position:]
}

// AtEnd reports whether the scanner has consumed the entire source
// (spec.md §3 invariant 4: a successful parse leaves this true).
func (s *Scanner) AtEnd() bool {
	return s.position >= len(s.source)
}

// Position returns the current byte offset.
func (s *Scanner) Position() int { return s.position }

// Line returns the current 1-based line number.
func (s *Scanner) Line() int { return s.line }

// Source returns the full immutable source text.
func (s *Scanner) Source() string { return s.source }

// Group returns the i-th capture group of the most recent successful Scan,
// or "" if there was no such group.
func (s *Scanner) Group(i int) string {
	if i < 0 || i >= len(s.lastGroups) {
		return ""
	}
	return s.lastGroups[i]
}

// SetExpected advertises a pending expectation label, used by the grammar
// engine's `expect` helper when a later failure doesn't name its own
// pattern (spec.md §3 describes `expected` as reset on any successful
// token match, consumed only when a failure doesn't supply its own name).
func (s *Scanner) SetExpected(label string) { s.expected = label }

// Expected returns the pending expectation label, if any.
func (s *Scanner) Expected() string { return s.expected }

// Bookmark saves the current position and line.
func (s *Scanner) Bookmark() Bookmark {
	return Bookmark{position: s.position, line: s.line}
}

// Restore rolls the scanner back to a previously saved Bookmark. The
// capture stack is untouched (spec.md §4.1).
func (s *Scanner) Restore(b Bookmark) {
	s.position = b.position
	s.line = b.line
}

// Capture pushes a new buffer, runs body, pops the buffer, and returns the
// exact source text consumed by body while the buffer was live (spec.md
// §4.4). While the buffer is live, every token Scan consumes (except
// comments) is appended to it, alongside any other buffers already on the
// stack.
func (s *Scanner) Capture(body func()) string {
	s.captureStack = append(s.captureStack, &strings.Builder{})
	depth := len(s.captureStack)

	body()

	invariant.Invariant(len(s.captureStack) == depth, "capture stack must be balanced around body()")
	n := len(s.captureStack)
	b := s.captureStack[n-1]
	s.captureStack = s.captureStack[:n-1]
	return b.String()
}

// CaptureDepth returns how many capture buffers are currently live, for
// callers that want to cap nesting (spec.md §4.4, SPEC_FULL.md §2's
// WithMaxCaptureDepth).
func (s *Scanner) CaptureDepth() int {
	return len(s.captureStack)
}

func (s *Scanner) appendCapture(text string) {
	for _, b := range s.captureStack {
		b.WriteString(text)
	}
}
