package expr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thicket-lang/thicket/expr"
	"github.com/thicket-lang/thicket/scanner"
)

func parse(t *testing.T, src string) (expr.Expression, *scanner.Scanner) {
	t.Helper()
	s := scanner.New(src)
	p := expr.New(s)
	e, err := p.Parse()
	require.NoError(t, err)
	return e, s
}

func TestParseNumberWithUnit(t *testing.T) {
	e, s := parse(t, "12px")
	require.Equal(t, "12px", e.String())
	require.True(t, s.AtEnd())
}

func TestParsePlainNumber(t *testing.T) {
	e, _ := parse(t, "3.5")
	require.Equal(t, "3.5", e.String())
}

func TestParseHexColor(t *testing.T) {
	e, _ := parse(t, "#ff00ff")
	require.Equal(t, "#ff00ff", e.String())
}

func TestParseIdent(t *testing.T) {
	e, _ := parse(t, "sans-serif")
	require.Equal(t, "sans-serif", e.String())
}

func TestParseUnaryMinus(t *testing.T) {
	e, _ := parse(t, "-5px")
	require.Equal(t, "-5px", e.String())
}

func TestParseFunctionCallNoArgs(t *testing.T) {
	e, _ := parse(t, "auto()")
	require.Equal(t, "auto()", e.String())
}

func TestParseFunctionCallWithArgs(t *testing.T) {
	e, _ := parse(t, "rgba(0, 0, 0, 0.5)")
	fc, ok := e.(expr.FunctionCall)
	require.True(t, ok)
	require.Equal(t, "rgba", fc.Name)
	require.NotNil(t, fc.Args)
}

func TestParseCommaChain(t *testing.T) {
	e, s := parse(t, "1px,2px")
	require.Equal(t, "1px,2px", e.String())
	require.True(t, s.AtEnd())
}

func TestParseSpaceSeparatedChain(t *testing.T) {
	e, s := parse(t, "1px solid red")
	require.Equal(t, "1px solid red", e.String())
	require.True(t, s.AtEnd())
}

func TestParseStopsAtSemicolon(t *testing.T) {
	e, s := parse(t, "red;")
	require.Equal(t, "red", e.String())
	require.Equal(t, ";", s.Rest())
}

func TestParseStopsAtCloseBrace(t *testing.T) {
	e, s := parse(t, "red}")
	require.Equal(t, "red", e.String())
	require.Equal(t, "}", s.Rest())
}

func TestParseUntilStopWord(t *testing.T) {
	s := scanner.New("1 to 10")
	p := expr.New(s)
	e, err := p.ParseUntil([]string{"to", "through"})
	require.NoError(t, err)
	require.Equal(t, "1", e.String())
	require.Equal(t, " to 10", s.Rest())
}

func TestParsePlainQuotedString(t *testing.T) {
	e, s := parse(t, `"hello world"`)
	str, ok := e.(expr.String)
	require.True(t, ok)
	require.Equal(t, `"hello world"`, str.String())
	require.True(t, s.AtEnd())
}

func TestParseSingleQuotedString(t *testing.T) {
	e, _ := parse(t, `'hi'`)
	str, ok := e.(expr.String)
	require.True(t, ok)
	require.Equal(t, `'hi'`, str.String())
}

func TestParseStringWithInterpolation(t *testing.T) {
	e, s := parse(t, `"a-#{1px}-b"`)
	str, ok := e.(expr.String)
	require.True(t, ok)
	require.Len(t, str.Parts, 3)
	require.Equal(t, "a-", str.Parts[0].Text)
	require.NotNil(t, str.Parts[1].Interp)
	require.Equal(t, "1px", str.Parts[1].Interp.String())
	require.Equal(t, "-b", str.Parts[2].Text)
	require.True(t, s.AtEnd())
}

func TestParseStringWithLeadingInterpolation(t *testing.T) {
	e, _ := parse(t, `"#{1px}rest"`)
	str, ok := e.(expr.String)
	require.True(t, ok)
	require.Len(t, str.Parts, 2)
	require.NotNil(t, str.Parts[0].Interp)
	require.Equal(t, "rest", str.Parts[1].Text)
}

func TestParseStringWithMultipleInterpolations(t *testing.T) {
	e, _ := parse(t, `"#{1}-#{2}"`)
	str, ok := e.(expr.String)
	require.True(t, ok)
	require.Len(t, str.Parts, 3)
	require.Equal(t, "1", str.Parts[0].Interp.String())
	require.Equal(t, "-", str.Parts[1].Text)
	require.Equal(t, "2", str.Parts[2].Interp.String())
}

func TestParseEmptyString(t *testing.T) {
	e, s := parse(t, `""`)
	str, ok := e.(expr.String)
	require.True(t, ok)
	require.Empty(t, str.Parts)
	require.True(t, s.AtEnd())
}

func TestParseBareInterpolation(t *testing.T) {
	e, s := parse(t, "#{1px 2px}")
	interp, ok := e.(expr.Interpolation)
	require.True(t, ok)
	require.Equal(t, "1px 2px", interp.Inner.String())
	require.True(t, s.AtEnd())
}

func TestParseUnicodeRange(t *testing.T) {
	e, _ := parse(t, "U+0025-00FF")
	require.Equal(t, "U+0025-00FF", e.String())
}

func TestParseMixinDefinitionArglistEmpty(t *testing.T) {
	s := scanner.New("()")
	p := expr.New(s)
	list, err := p.ParseMixinDefinitionArglist()
	require.NoError(t, err)
	require.Empty(t, list.Items)
}

func TestParseMixinDefinitionArglistWithDefaults(t *testing.T) {
	s := scanner.New("(!color, !width: 1px)")
	p := expr.New(s)
	list, err := p.ParseMixinDefinitionArglist()
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	require.Equal(t, "color", list.Items[0].Name)
	require.Nil(t, list.Items[0].Default)
	require.Equal(t, "width", list.Items[1].Name)
	require.Equal(t, "1px", list.Items[1].Default.String())
}

func TestParseMixinIncludeArglistPositionalAndNamed(t *testing.T) {
	s := scanner.New("(1px, color: red)")
	p := expr.New(s)
	list, err := p.ParseMixinIncludeArglist()
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	require.Equal(t, "", list.Items[0].Name)
	require.Equal(t, "1px", list.Items[0].Value.String())
	require.Equal(t, "color", list.Items[1].Name)
	require.Equal(t, "red", list.Items[1].Value.String())
}

func TestParseMissingClosingParenIsSyntaxError(t *testing.T) {
	s := scanner.New("(1px, 2px")
	p := expr.New(s)
	_, err := p.ParseMixinIncludeArglist()
	require.Error(t, err)
	var synErr scanner.SyntaxError
	require.ErrorAs(t, err, &synErr)
}

func TestParseEmptyInputIsSyntaxError(t *testing.T) {
	s := scanner.New("")
	p := expr.New(s)
	_, err := p.Parse()
	require.Error(t, err)
}
