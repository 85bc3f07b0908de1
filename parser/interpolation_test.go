package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thicket-lang/thicket/ast"
	"github.com/thicket-lang/thicket/parser"
)

func TestParseDeclarationWithInterpolatedValue(t *testing.T) {
	root, err := parser.Parse(`a { content: "icon-#{name}"; }`)
	require.NoError(t, err)
	rule := root.Children[0].(*ast.Rule)
	decl := rule.Children[0].(*ast.Declaration)
	require.Equal(t, `"icon-#{name}"`, decl.Value.String())
}

func TestParseAttributeValueWithInterpolation(t *testing.T) {
	root, err := parser.Parse(`a[data-id="item-#{i}"] { color: red; }`)
	require.NoError(t, err)
	rule := root.Children[0].(*ast.Rule)
	require.Equal(t, `a[data-id="item-#{i}"]`, rule.Selector.String())
}

func TestParseAttributeValueSingleQuoted(t *testing.T) {
	root, err := parser.Parse(`a[href='x'] { color: red; }`)
	require.NoError(t, err)
	rule := root.Children[0].(*ast.Rule)
	require.Equal(t, `a[href='x']`, rule.Selector.String())
}

func TestParseMultipleInterpolationsInOneValue(t *testing.T) {
	root, err := parser.Parse(`a { content: "#{a}-#{b}"; }`)
	require.NoError(t, err)
	rule := root.Children[0].(*ast.Rule)
	decl := rule.Children[0].(*ast.Declaration)
	require.Equal(t, `"#{a}-#{b}"`, decl.Value.String())
}

func TestParseBareInterpolationDeclarationValue(t *testing.T) {
	root, err := parser.Parse(`a { width: #{x}; }`)
	require.NoError(t, err)
	rule := root.Children[0].(*ast.Rule)
	decl := rule.Children[0].(*ast.Declaration)
	require.Equal(t, "#{x}", decl.Value.String())
}
