package ast

import "github.com/google/go-cmp/cmp"

// Diff returns a human-readable structural diff between two AST nodes,
// exposed as a small debugging helper for callers building golden-file
// regression harnesses (SPEC_FULL.md §3), grounded on the same library the
// teacher uses for its own tree comparisons. An empty string means a and b
// are structurally identical.
func Diff(a, b Node) string {
	return cmp.Diff(a, b)
}
