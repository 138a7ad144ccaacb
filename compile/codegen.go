package compile

import (
	"fmt"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/depgraph"
	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/ident"
	"github.com/sdforge/sdengine/parser"
)

type codegenCtx struct {
	model        *datamodel.Model
	offsets      map[string]int
	timeOffset   int
	dimensionsOf map[string][]string
	gfOf         map[string]*datamodel.GraphicalFunction

	tables   *[]*datamodel.GraphicalFunction
	tableIDs map[string]int

	stateSlots *int

	errs *errs.List
}

// allocState reserves width consecutive cells in the VM's stateful-builtin
// register file for one call site and returns the base index.
func (ctx *codegenCtx) allocState(width int) int {
	base := *ctx.stateSlots
	*ctx.stateSlots += width
	return base
}

func (ctx *codegenCtx) registerTable(name string, gf *datamodel.GraphicalFunction) int {
	if id, ok := ctx.tableIDs[name]; ok {
		return id
	}
	id := len(*ctx.tables)
	*ctx.tables = append(*ctx.tables, gf)
	ctx.tableIDs[name] = id
	return id
}

// compileEquation parses eq's RHS and lowers it into a stream that ends by
// storing the result into targetOffset. eq must already be a Scalar
// equation (expandModel flattens any array shape before codegen runs).
func (ctx *codegenCtx) compileEquation(name string, eq datamodel.Equation, gf *datamodel.GraphicalFunction, targetOffset int) []Instruction {
	scalar, ok := eq.(datamodel.Scalar)
	if !ok {
		ctx.errs.Add(errs.Newf(errs.ArraysNotImplemented, "variable %q has an unsupported equation shape after array expansion", name).
			At(ctx.model.Name, name, 0, 0))
		return nil
	}
	expr, perr := parser.Parse(scalar.RHS, parser.Origin{Model: ctx.model.Name, Variable: name})
	if perr != nil {
		ctx.errs.Add(perr)
		return nil
	}
	insts, err := ctx.compileExpr(expr)
	if err != nil {
		ctx.errs.Add(err)
		return nil
	}
	if gf != nil {
		tableID := ctx.registerTable(name, gf)
		insts = append(insts, Instruction{Op: OpLookupGF, TableID: tableID})
	}
	insts = append(insts, Instruction{Op: OpStoreOff, Off: targetOffset}, Instruction{Op: OpReturn})
	return insts
}

// compileStockDerivative builds the net-flow expression sum(inflows) -
// sum(outflows) directly from the stock's declared flow names, rather
// than parsing an expression string (a stock has no RHS of its own; its
// rate of change is wholly determined by which flows name it as inflow
// or outflow).
func (ctx *codegenCtx) compileStockDerivative(name string, s *datamodel.Stock, derivOffset int) []Instruction {
	var insts []Instruction
	first := true
	loadFlow := func(flowName string) bool {
		off, ok := ctx.offsets[ident.Canonical(flowName)]
		if !ok {
			ctx.errs.Add(errs.Newf(errs.UnknownDependency, "stock %q names unknown flow %q", name, flowName).
				At(ctx.model.Name, name, 0, 0))
			return false
		}
		insts = append(insts, Instruction{Op: OpLoadOff, Off: off})
		return true
	}
	for _, in := range s.Inflows {
		if !loadFlow(in) {
			continue
		}
		if !first {
			insts = append(insts, Instruction{Op: OpBinary, BinOp: parser.Add})
		}
		first = false
	}
	if first {
		insts = append(insts, Instruction{Op: OpLoadConst, Const: 0})
	}
	for _, out := range s.Outflows {
		off, ok := ctx.offsets[ident.Canonical(out)]
		if !ok {
			ctx.errs.Add(errs.Newf(errs.UnknownDependency, "stock %q names unknown flow %q", name, out).
				At(ctx.model.Name, name, 0, 0))
			continue
		}
		insts = append(insts, Instruction{Op: OpLoadOff, Off: off}, Instruction{Op: OpBinary, BinOp: parser.Sub})
	}
	insts = append(insts, Instruction{Op: OpStoreOff, Off: derivOffset}, Instruction{Op: OpReturn})
	return insts
}

func (ctx *codegenCtx) compileExpr(e parser.Expr) ([]Instruction, *errs.Error) {
	switch v := e.(type) {
	case parser.Const:
		return []Instruction{{Op: OpLoadConst, Const: v.Value}}, nil
	case parser.Var:
		off, err := ctx.resolveVarOffset(v)
		if err != nil {
			return nil, err
		}
		return []Instruction{{Op: OpLoadOff, Off: off}}, nil
	case parser.Unary:
		inner, err := ctx.compileExpr(v.X)
		if err != nil {
			return nil, err
		}
		return append(inner, Instruction{Op: OpUnary, UnOp: v.Op}), nil
	case parser.Binary:
		lhs, err := ctx.compileExpr(v.L)
		if err != nil {
			return nil, err
		}
		rhs, err := ctx.compileExpr(v.R)
		if err != nil {
			return nil, err
		}
		out := append(lhs, rhs...)
		return append(out, Instruction{Op: OpBinary, BinOp: v.Op}), nil
	case parser.If:
		cond, err := ctx.compileExpr(v.Cond)
		if err != nil {
			return nil, err
		}
		thenInsts, err := ctx.compileExpr(v.Then)
		if err != nil {
			return nil, err
		}
		elseInsts, err := ctx.compileExpr(v.Else)
		if err != nil {
			return nil, err
		}
		out := append(cond, Instruction{Op: OpIf, ThenLen: len(thenInsts), ElseLen: len(elseInsts)})
		out = append(out, thenInsts...)
		out = append(out, elseInsts...)
		return out, nil
	case parser.Call:
		return ctx.compileCall(v)
	}
	start, end := e.Span()
	return nil, errs.New(errs.Generic, "unrecognized AST node").At(ctx.model.Name, "", start, end)
}

func (ctx *codegenCtx) resolveVarOffset(v parser.Var) (int, *errs.Error) {
	if ident.Canonical(v.Name) == timeIdentName {
		return ctx.timeOffset, nil
	}
	base := depgraph.ResolveDependency(ctx.model, v.Name)
	start, end := v.Span()
	if len(v.Subscripts) > 0 {
		dimNames, isArrayed := ctx.dimensionsOf[base]
		if !isArrayed {
			return 0, errs.Newf(errs.BadDimensionName, "variable %q is not an arrayed variable", base).At(ctx.model.Name, base, start, end)
		}
		if len(v.Subscripts) != len(dimNames) {
			return 0, errs.Newf(errs.MismatchedDimensions, "variable %q expects %d subscripts, got %d", base, len(dimNames), len(v.Subscripts)).
				At(ctx.model.Name, base, start, end)
		}
		keys := make([]string, len(v.Subscripts))
		for i, sub := range v.Subscripts {
			switch s := sub.(type) {
			case parser.Var:
				keys[i] = ident.Canonical(s.Name)
			case parser.Const:
				keys[i] = fmt.Sprintf("%d", int(s.Value))
			default:
				return 0, errs.New(errs.ArrayReferenceNeedsExplicitSubscripts, "subscript must be a constant dimension element or integer index").
					At(ctx.model.Name, base, start, end)
			}
		}
		base = synthName(base, keys)
	}
	off, ok := ctx.offsets[base]
	if !ok {
		return 0, errs.Newf(errs.UnknownDependency, "unknown variable %q", base).At(ctx.model.Name, base, start, end)
	}
	return off, nil
}

const timeIdentName = "time"

func (ctx *codegenCtx) compileCall(c parser.Call) ([]Instruction, *errs.Error) {
	start, end := c.Span()

	// LOOKUP(table, x) names its table by a bare identifier rather than a
	// numeric sub-expression, so it cannot go through the generic
	// arg-evaluation loop below; it compiles directly to the same
	// OpLookupGF a graphical-function call site uses.
	if c.Func == "LOOKUP" {
		if len(c.Args) != 2 {
			return nil, errs.Newf(errs.BadBuiltinArgs, "LOOKUP expects exactly 2 arguments, got %d", len(c.Args)).
				At(ctx.model.Name, "", start, end)
		}
		tableVar, ok := c.Args[0].(parser.Var)
		if !ok {
			return nil, errs.New(errs.BadBuiltinArgs, "LOOKUP's first argument must be a graphical-function variable name").
				At(ctx.model.Name, "", start, end)
		}
		target := depgraph.ResolveDependency(ctx.model, tableVar.Name)
		gf, hasGF := ctx.gfOf[target]
		if !hasGF || gf == nil {
			return nil, errs.Newf(errs.BadTable, "LOOKUP references %q, which has no graphical function", target).
				At(ctx.model.Name, "", start, end)
		}
		argInsts, err := ctx.compileExpr(c.Args[1])
		if err != nil {
			return nil, err
		}
		tableID := ctx.registerTable(target, gf)
		return append(argInsts, Instruction{Op: OpLookupGF, TableID: tableID}), nil
	}

	if ar, ok := builtinArity[c.Func]; ok {
		if len(c.Args) < ar.Min || (ar.Max >= 0 && len(c.Args) > ar.Max) {
			return nil, errs.Newf(errs.BadBuiltinArgs, "%s expects %s, got %d argument(s)", c.Func, arityDesc(ar), len(c.Args)).
				At(ctx.model.Name, "", start, end)
		}
		var insts []Instruction
		for _, a := range c.Args {
			sub, err := ctx.compileExpr(a)
			if err != nil {
				return nil, err
			}
			insts = append(insts, sub...)
		}
		stateID := -1
		if width, stateful := statefulWidth[c.Func]; stateful {
			stateID = ctx.allocState(width)
		}
		insts = append(insts, Instruction{Op: OpCall, BuiltinID: builtinID[c.Func], Argc: len(c.Args), StateID: stateID})
		return insts, nil
	}

	target := depgraph.ResolveDependency(ctx.model, c.Func)
	gf, hasGF := ctx.gfOf[target]
	if !hasGF || gf == nil {
		return nil, errs.Newf(errs.UnknownBuiltin, "unknown builtin or graphical function %q", c.Func).At(ctx.model.Name, "", start, end)
	}
	if len(c.Args) != 1 {
		return nil, errs.Newf(errs.BadBuiltinArgs, "graphical function %q expects exactly one argument, got %d", c.Func, len(c.Args)).
			At(ctx.model.Name, "", start, end)
	}
	argInsts, err := ctx.compileExpr(c.Args[0])
	if err != nil {
		return nil, err
	}
	tableID := ctx.registerTable(target, gf)
	return append(argInsts, Instruction{Op: OpLookupGF, TableID: tableID}), nil
}

func arityDesc(a arity) string {
	if a.Max < 0 {
		return fmt.Sprintf("at least %d arguments", a.Min)
	}
	if a.Min == a.Max {
		return fmt.Sprintf("exactly %d argument(s)", a.Min)
	}
	return fmt.Sprintf("between %d and %d arguments", a.Min, a.Max)
}
