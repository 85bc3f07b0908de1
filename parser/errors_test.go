package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thicket-lang/thicket/scanner"
)

func TestPreviewTrimsToFifteenChars(t *testing.T) {
	require.Equal(t, "123456789012345", preview("1234567890123456789"))
	require.Equal(t, "short", preview("short"))
}

func TestContextBeforeWithinFifteenChars(t *testing.T) {
	source := "a { color: red"
	require.Equal(t, "a { color: red", contextBefore(source, len(source)))
}

func TestContextBeforeTruncatesWithEllipsis(t *testing.T) {
	source := "................a { color: red"
	got := contextBefore(source, len(source))
	require.True(t, len(got) > 0)
	require.Equal(t, "...", got[:3])
}

func TestContextBeforeStopsAtNewline(t *testing.T) {
	source := "first line\nsecond"
	got := contextBefore(source, len(source))
	require.Equal(t, "second", got)
}

func TestContextBeforeTrimsTrailingWhitespace(t *testing.T) {
	source := "color   "
	require.Equal(t, "color", contextBefore(source, len(source)))
}

func TestContextAfterWithinFifteenChars(t *testing.T) {
	require.Equal(t, "red; }", contextAfter("red; }"))
}

func TestContextAfterTruncatesWithEllipsis(t *testing.T) {
	got := contextAfter("abcdefghijklmnopqrstuvwxyz")
	require.Equal(t, "abcdefghijklmno...", got)
}

func TestContextAfterStripsLeadingNewlineAndStopsAtNext(t *testing.T) {
	got := contextAfter("\nnext line\nmore")
	require.Equal(t, "next line", got)
}

func TestPatternNameUsesRegisteredName(t *testing.T) {
	require.Equal(t, "an identifier", patternName(scanner.IDENT))
}

func TestPatternNameUnquotesRawPattern(t *testing.T) {
	require.Equal(t, "'{'", patternName(openBrace))
}

func TestSuggestFuzzyMatchesKnownDirective(t *testing.T) {
	require.Equal(t, "mixin", suggest("@mixn"))
}

func TestSuggestFuzzyMatchesKnownPseudo(t *testing.T) {
	require.Equal(t, "hover", suggest(":hove"))
}

func TestSuggestReturnsEmptyWhenNothingClose(t *testing.T) {
	require.Equal(t, "", suggest("@zzzzzzzzzzzz"))
}

func TestSuggestReturnsEmptyForBlankInput(t *testing.T) {
	require.Equal(t, "", suggest(""))
}

func TestEngineSyntaxErrorfReportsContextAndLine(t *testing.T) {
	s := scanner.New("a { color")
	e := &engine{s: s, cfg: &Config{}}
	s.Scan(scanner.Raw(`[\s\S]*`))
	err := e.syntaxErrorf("';'")
	var synErr SyntaxError
	require.ErrorAs(t, err, &synErr)
	require.Equal(t, 1, synErr.Line)
	require.Contains(t, synErr.Error(), `Invalid CSS after "a { color"`)
	require.Contains(t, synErr.Error(), "expected ';'")
}

func TestIsKnownPseudoRecognizesTableEntries(t *testing.T) {
	require.True(t, isKnownPseudo("hover"))
	require.True(t, isKnownPseudo("nth-child"))
}

func TestIsKnownPseudoRejectsUnrecognizedName(t *testing.T) {
	require.False(t, isKnownPseudo("b"))
	require.False(t, isKnownPseudo(""))
}

func TestEngineCaptureEnforcesMaxDepth(t *testing.T) {
	s := scanner.New("abc")
	e := &engine{s: s, cfg: &Config{maxCaptureDepth: 1}}

	_, err := e.capture(func() {
		_, nestedErr := e.capture(func() {})
		require.Error(t, nestedErr)
		require.Contains(t, nestedErr.Error(), "capture region")
	})
	require.NoError(t, err, "the outer capture is within the limit")
}

func TestEngineCaptureUnboundedWhenZero(t *testing.T) {
	s := scanner.New("abc")
	e := &engine{s: s, cfg: &Config{}}

	_, err := e.capture(func() {
		_, nestedErr := e.capture(func() {})
		require.NoError(t, nestedErr)
	})
	require.NoError(t, err)
}
