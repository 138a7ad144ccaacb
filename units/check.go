package units

import (
	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/parser"
)

// Lookup resolves the unit Vector of a free variable reference encountered
// while checking an equation. ok is false when the identifier is unknown
// to the caller, in which case Check treats it as dimensionless (time and
// numeric-only builtins fall into this case).
type Lookup func(name string) (v Vector, ok bool)

// builtins that pass their single argument's unit straight through.
var passthroughUnary = map[string]bool{
	"ABS": true, "INT": true, "MAX": true, "MIN": true,
}

// builtins whose result is always dimensionless regardless of argument units.
var alwaysDimensionless = map[string]bool{
	"SIN": true, "COS": true, "TAN": true, "ARCSIN": true, "ARCCOS": true, "ARCTAN": true,
	"EXP": true, "LN": true, "RANDOM": true, "STEP": true, "PULSE": true, "RAMP": true,
}

// Check performs dimensional analysis over a parsed equation AST,
// returning the inferred unit Vector of the whole expression or a tagged
// error (UnitMismatch, BadBinaryOpInUnits) on the offending span. lookup
// resolves the units of any Var node; model/variable name the equation
// being checked, for error locators.
func Check(e parser.Expr, lookup Lookup, model, variable string) (Vector, *errs.Error) {
	switch v := e.(type) {
	case parser.Const:
		return Dimensionless(), nil
	case parser.Var:
		if vec, ok := lookup(v.Name); ok {
			return vec, nil
		}
		return Dimensionless(), nil
	case parser.Unary:
		return Check(v.X, lookup, model, variable)
	case parser.Call:
		return checkCall(v, lookup, model, variable)
	case parser.If:
		thenV, err := Check(v.Then, lookup, model, variable)
		if err != nil {
			return nil, err
		}
		elseV, err := Check(v.Else, lookup, model, variable)
		if err != nil {
			return nil, err
		}
		if !thenV.Equal(elseV) {
			start, end := v.Span()
			return nil, errs.Newf(errs.UnitMismatch, "if-then-else branches have incompatible units: %s vs %s", thenV, elseV).
				At(model, variable, start, end)
		}
		if _, err := Check(v.Cond, lookup, model, variable); err != nil {
			return nil, err
		}
		return thenV, nil
	case parser.Binary:
		return checkBinary(v, lookup, model, variable)
	}
	return Dimensionless(), nil
}

func checkBinary(b parser.Binary, lookup Lookup, model, variable string) (Vector, *errs.Error) {
	lhs, err := Check(b.L, lookup, model, variable)
	if err != nil {
		return nil, err
	}
	rhs, err := Check(b.R, lookup, model, variable)
	if err != nil {
		return nil, err
	}
	start, end := b.Span()
	switch b.Op {
	case parser.Add, parser.Sub:
		if !lhs.Equal(rhs) {
			return nil, errs.Newf(errs.UnitMismatch, "operands of %s have incompatible units: %s vs %s", binName(b.Op), lhs, rhs).
				At(model, variable, start, end)
		}
		return lhs, nil
	case parser.Mul:
		return lhs.Mul(rhs), nil
	case parser.Div:
		return lhs.Div(rhs), nil
	case parser.Mod:
		if !lhs.Equal(rhs) {
			return nil, errs.Newf(errs.UnitMismatch, "operands of mod have incompatible units: %s vs %s", lhs, rhs).
				At(model, variable, start, end)
		}
		return lhs, nil
	case parser.Pow:
		n, isConst := constIntExponent(b.R)
		if !isConst {
			return nil, errs.New(errs.BadBinaryOpInUnits, "exponent must be a constant integer for dimensional analysis").
				At(model, variable, start, end)
		}
		return lhs.Pow(n), nil
	case parser.Eq, parser.Neq, parser.Lt, parser.Lte, parser.Gt, parser.Gte:
		if !lhs.Equal(rhs) {
			return nil, errs.Newf(errs.UnitMismatch, "comparison operands have incompatible units: %s vs %s", lhs, rhs).
				At(model, variable, start, end)
		}
		return Dimensionless(), nil
	case parser.And, parser.Or:
		return Dimensionless(), nil
	}
	return nil, errs.New(errs.BadBinaryOpInUnits, "unsupported operator in unit expression").
		At(model, variable, start, end)
}

func checkCall(c parser.Call, lookup Lookup, model, variable string) (Vector, *errs.Error) {
	switch c.Func {
	case "SQRT":
		if len(c.Args) != 1 {
			return Dimensionless(), nil
		}
		argV, err := Check(c.Args[0], lookup, model, variable)
		if err != nil {
			return nil, err
		}
		for _, e := range argV {
			if e%2 != 0 {
				start, end := c.Span()
				return nil, errs.Newf(errs.UnitMismatch, "SQRT argument has non-even unit exponents: %s", argV).
					At(model, variable, start, end)
			}
		}
		return argV.Pow(1).halve(), nil
	case "SAFEDIV":
		if len(c.Args) < 2 {
			return Dimensionless(), nil
		}
		lhs, err := Check(c.Args[0], lookup, model, variable)
		if err != nil {
			return nil, err
		}
		rhs, err := Check(c.Args[1], lookup, model, variable)
		if err != nil {
			return nil, err
		}
		return lhs.Div(rhs), nil
	case "LOOKUP", "TIME", "DELAY1", "DELAY3", "SMTH1", "SMTH3", "INTEG":
		if len(c.Args) == 0 {
			return Dimensionless(), nil
		}
		return Check(c.Args[0], lookup, model, variable)
	}
	if alwaysDimensionless[c.Func] {
		for _, a := range c.Args {
			if _, err := Check(a, lookup, model, variable); err != nil {
				return nil, err
			}
		}
		return Dimensionless(), nil
	}
	if passthroughUnary[c.Func] && len(c.Args) > 0 {
		return Check(c.Args[0], lookup, model, variable)
	}
	for _, a := range c.Args {
		if _, err := Check(a, lookup, model, variable); err != nil {
			return nil, err
		}
	}
	return Dimensionless(), nil
}

// halve divides every exponent by two; callers have already verified all
// exponents are even.
func (v Vector) halve() Vector {
	out := make(Vector, len(v))
	for k, e := range v {
		if e/2 != 0 {
			out[k] = e / 2
		}
	}
	return out
}

func constIntExponent(e parser.Expr) (int, bool) {
	c, ok := e.(parser.Const)
	if !ok {
		return 0, false
	}
	n := int(c.Value)
	if float64(n) != c.Value {
		return 0, false
	}
	return n, true
}

func binName(op parser.BinaryOp) string {
	switch op {
	case parser.Add:
		return "+"
	case parser.Sub:
		return "-"
	}
	return "?"
}
