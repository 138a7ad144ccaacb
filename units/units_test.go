package units_test

import (
	"testing"

	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/parser"
	"github.com/sdforge/sdengine/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseUnit(t *testing.T, src string) units.Vector {
	t.Helper()
	v, err := units.ParseUnitExpr(src, "m", "v")
	require.Nil(t, err, "parsing %q: %v", src, err)
	return v
}

func TestParseUnitExprBasic(t *testing.T) {
	assert.True(t, mustParseUnit(t, "1").IsDimensionless())
	assert.True(t, mustParseUnit(t, "").IsDimensionless())
	kg := mustParseUnit(t, "kg")
	assert.Equal(t, "kg", kg.String())
}

func TestParseUnitExprCompound(t *testing.T) {
	v := mustParseUnit(t, "kg*m/s^2")
	assert.Equal(t, 1, v["kg"])
	assert.Equal(t, 1, v["m"])
	assert.Equal(t, -2, v["s"])
}

func TestParseUnitExprParens(t *testing.T) {
	v := mustParseUnit(t, "m/(s*s)")
	assert.Equal(t, 1, v["m"])
	assert.Equal(t, -2, v["s"])
}

func TestParseUnitExprUnknownSymbolsAreFreshGenerators(t *testing.T) {
	v := mustParseUnit(t, "widgets/tribble")
	assert.Equal(t, 1, v["widgets"])
	assert.Equal(t, -1, v["tribble"])
}

func TestParseUnitExprMalformedExponent(t *testing.T) {
	_, err := units.ParseUnitExpr("kg^x", "m", "v")
	require.NotNil(t, err)
	assert.Equal(t, errs.UnitDefinitionErrors, err.Kind)
}

func TestVectorArithmetic(t *testing.T) {
	kgPerS := units.Vector{"kg": 1, "s": -1}
	perS := units.Vector{"s": -1}
	assert.True(t, kgPerS.Div(perS).Equal(units.Vector{"kg": 1}))
	assert.True(t, units.Dimensionless().Mul(kgPerS).Equal(kgPerS))
	assert.True(t, kgPerS.Pow(2).Equal(units.Vector{"kg": 2, "s": -2}))
}

func TestVectorEqual(t *testing.T) {
	a := units.Vector{"m": 1, "s": -2}
	b := units.Vector{"m": 1, "s": -2}
	c := units.Vector{"m": 1}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func lookupFrom(table map[string]units.Vector) units.Lookup {
	return func(name string) (units.Vector, bool) {
		v, ok := table[name]
		return v, ok
	}
}

func TestCheckAddRequiresEqualUnits(t *testing.T) {
	table := map[string]units.Vector{
		"population": {"person": 1},
		"births":     {"person": 1},
		"rate":       {"person": 1, "year": -1},
	}
	e, perr := parser.Parse("population + births", parser.Origin{Model: "m", Variable: "v"})
	require.Nil(t, perr)
	v, err := units.Check(e, lookupFrom(table), "m", "v")
	require.Nil(t, err)
	assert.True(t, v.Equal(units.Vector{"person": 1}))

	e2, perr2 := parser.Parse("population + rate", parser.Origin{Model: "m", Variable: "v"})
	require.Nil(t, perr2)
	_, err2 := units.Check(e2, lookupFrom(table), "m", "v")
	require.NotNil(t, err2)
	assert.Equal(t, errs.UnitMismatch, err2.Kind)
}

func TestCheckDivAndMulCombineUnits(t *testing.T) {
	table := map[string]units.Vector{
		"population": {"person": 1},
		"duration":   {"year": 1},
	}
	e, perr := parser.Parse("population / duration", parser.Origin{Model: "m", Variable: "v"})
	require.Nil(t, perr)
	v, err := units.Check(e, lookupFrom(table), "m", "v")
	require.Nil(t, err)
	assert.True(t, v.Equal(units.Vector{"person": 1, "year": -1}))
}

func TestCheckIfThenElseRequiresBranchEquality(t *testing.T) {
	table := map[string]units.Vector{
		"a": {"person": 1},
		"b": {"person": 1},
		"c": {"year": 1},
	}
	good, perr := parser.Parse("if a > b then a else b", parser.Origin{Model: "m", Variable: "v"})
	require.Nil(t, perr)
	_, err := units.Check(good, lookupFrom(table), "m", "v")
	assert.Nil(t, err)

	bad, perr2 := parser.Parse("if a > b then a else c", parser.Origin{Model: "m", Variable: "v"})
	require.Nil(t, perr2)
	_, err2 := units.Check(bad, lookupFrom(table), "m", "v")
	require.NotNil(t, err2)
	assert.Equal(t, errs.UnitMismatch, err2.Kind)
}

func TestCheckPowRequiresConstantIntegerExponent(t *testing.T) {
	table := map[string]units.Vector{"x": {"m": 1}}
	e, perr := parser.Parse("x ^ 2", parser.Origin{Model: "m", Variable: "v"})
	require.Nil(t, perr)
	v, err := units.Check(e, lookupFrom(table), "m", "v")
	require.Nil(t, err)
	assert.True(t, v.Equal(units.Vector{"m": 2}))

	e2, perr2 := parser.Parse("x ^ y", parser.Origin{Model: "m", Variable: "v"})
	require.Nil(t, perr2)
	_, err2 := units.Check(e2, lookupFrom(table), "m", "v")
	require.NotNil(t, err2)
	assert.Equal(t, errs.BadBinaryOpInUnits, err2.Kind)
}

func TestCheckUnknownVariableIsDimensionless(t *testing.T) {
	e, perr := parser.Parse("mystery * 2", parser.Origin{Model: "m", Variable: "v"})
	require.Nil(t, perr)
	v, err := units.Check(e, lookupFrom(nil), "m", "v")
	require.Nil(t, err)
	assert.True(t, v.IsDimensionless())
}
