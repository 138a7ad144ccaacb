package parser_test

import (
	"testing"

	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) parser.Expr {
	t.Helper()
	e, err := parser.Parse(src, parser.Origin{Model: "main", Variable: "x"})
	require.Nil(t, err, "parse %q: %v", src, err)
	return e
}

func TestParseArithmeticPrecedence(t *testing.T) {
	e := mustParse(t, "1 + 2 * 3")
	bin, ok := e.(parser.Binary)
	require.True(t, ok)
	assert.Equal(t, parser.Add, bin.Op)
	rhs, ok := bin.R.(parser.Binary)
	require.True(t, ok)
	assert.Equal(t, parser.Mul, rhs.Op)
}

func TestParsePowRightAssociative(t *testing.T) {
	e := mustParse(t, "2 ^ 3 ^ 2")
	bin := e.(parser.Binary)
	assert.Equal(t, parser.Pow, bin.Op)
	_, lhsIsConst := bin.L.(parser.Const)
	assert.True(t, lhsIsConst)
	rhs, ok := bin.R.(parser.Binary)
	require.True(t, ok)
	assert.Equal(t, parser.Pow, rhs.Op)
}

func TestParseIfThenElse(t *testing.T) {
	e := mustParse(t, "if x > 1 then 2 else 3")
	ifE, ok := e.(parser.If)
	require.True(t, ok)
	cond := ifE.Cond.(parser.Binary)
	assert.Equal(t, parser.Gt, cond.Op)
}

func TestParseCallAndSubscript(t *testing.T) {
	e := mustParse(t, `MIN(a[1], b)`)
	call := e.(parser.Call)
	assert.Equal(t, "MIN", call.Func)
	require.Len(t, call.Args, 2)
	v := call.Args[0].(parser.Var)
	assert.Equal(t, "a", v.Name)
	require.Len(t, v.Subscripts, 1)
}

func TestParseQuotedIdentifier(t *testing.T) {
	e := mustParse(t, `"birth rate" * 2`)
	bin := e.(parser.Binary)
	v := bin.L.(parser.Var)
	assert.Equal(t, "birth rate", v.Name)
}

func TestParseComment(t *testing.T) {
	e := mustParse(t, "1 {this is a comment} + 2")
	bin := e.(parser.Binary)
	assert.Equal(t, parser.Add, bin.Op)
}

func TestParseErrorsCarryOffsets(t *testing.T) {
	tests := []struct {
		src  string
		kind errs.Kind
	}{
		{"", errs.EmptyEquation},
		{"   ", errs.EmptyEquation},
		{"1 + {unterminated", errs.UnclosedComment},
		{`"unterminated`, errs.UnclosedQuotedIdent},
		{"1 + ", errs.UnrecognizedEof},
		{"1 2", errs.ExtraToken},
		{"1 @ 2", errs.InvalidToken},
	}
	for _, tc := range tests {
		_, err := parser.Parse(tc.src, parser.Origin{Model: "m", Variable: "v"})
		require.NotNil(t, err, "expected error for %q", tc.src)
		assert.Equal(t, tc.kind, err.Kind, "for input %q", tc.src)
		assert.Equal(t, "m", err.Locator.Model)
		assert.Equal(t, "v", err.Locator.Variable)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	sources := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"2 ^ 3 ^ 2",
		"(2 ^ 3) ^ 2",
		"if a > b then c else d",
		"a - b - c",
		"a - (b - c)",
		"MIN(a, b, c)",
		"-x + 1",
		"not a and b",
	}
	for _, src := range sources {
		first := mustParse(t, src)
		formatted := parser.Format(first)
		second, err := parser.Parse(formatted, parser.Origin{Model: "m", Variable: "v"})
		require.Nil(t, err, "re-parsing %q (from %q) failed: %v", formatted, src, err)
		assert.Equal(t, parser.Format(first), parser.Format(second), "round trip mismatch for %q", src)
	}
}
