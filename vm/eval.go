package vm

import (
	"math"

	"github.com/sdforge/sdengine/compile"
	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/parser"
)

// evalCtx is the per-call evaluation context: the register file being
// written, the graphical-function tables in scope, and a reference back to
// the owning VM for time, the stateful-builtin register file, and the RNG.
type evalCtx struct {
	slots  []float64
	tables []*datamodel.GraphicalFunction
	v      *VM
}

// execute runs insts (a top-level variable stream, ending in
// OpStoreOff+OpReturn) against v.Program's tables, discarding any residual
// stack value since the store already did the real work.
func (v *VM) execute(insts []compile.Instruction, slots []float64) {
	v.executeProg(insts, slots, v.Program)
}

func (v *VM) executeProg(insts []compile.Instruction, slots []float64, prog *compile.Program) {
	ctx := &evalCtx{slots: slots, tables: prog.Tables, v: v}
	evalBlock(insts, ctx)
}

// evalBlock interprets insts against ctx and returns the value left on top
// of the stack, or 0 if the block only performed stores (the top-level
// case). A block is either a full variable stream or a pure sub-expression
// (an If's then/else arm), both flat instruction sequences produced by
// compile.codegenCtx.compileExpr.
func evalBlock(insts []compile.Instruction, ctx *evalCtx) float64 {
	var stack []float64
	pop := func() float64 {
		n := len(stack) - 1
		if n < 0 {
			panic("vm: stack underflow")
		}
		val := stack[n]
		stack = stack[:n]
		return val
	}

	ip := 0
	for ip < len(insts) {
		in := insts[ip]
		switch in.Op {
		case compile.OpLoadConst:
			stack = append(stack, in.Const)
			ip++
		case compile.OpLoadOff:
			stack = append(stack, ctx.slots[in.Off])
			ip++
		case compile.OpStoreOff:
			ctx.slots[in.Off] = pop()
			ip++
		case compile.OpBinary:
			r := pop()
			l := pop()
			stack = append(stack, applyBinary(in.BinOp, l, r))
			ip++
		case compile.OpUnary:
			x := pop()
			stack = append(stack, applyUnary(in.UnOp, x))
			ip++
		case compile.OpIf:
			cond := pop()
			thenStart := ip + 1
			elseStart := thenStart + in.ThenLen
			blockEnd := elseStart + in.ElseLen
			var v float64
			if cond != 0 {
				v = evalBlock(insts[thenStart:elseStart], ctx)
			} else {
				v = evalBlock(insts[elseStart:blockEnd], ctx)
			}
			stack = append(stack, v)
			ip = blockEnd
		case compile.OpLookupGF:
			x := pop()
			stack = append(stack, lookupGF(ctx.tables[in.TableID], x))
			ip++
		case compile.OpCall:
			args := make([]float64, in.Argc)
			for i := in.Argc - 1; i >= 0; i-- {
				args[i] = pop()
			}
			stack = append(stack, ctx.v.callBuiltin(in.BuiltinID, in.StateID, args))
			ip++
		case compile.OpReturn:
			ip = len(insts)
		default:
			ip++
		}
	}
	if len(stack) == 0 {
		return 0
	}
	return stack[len(stack)-1]
}

func applyBinary(op parser.BinaryOp, l, r float64) float64 {
	switch op {
	case parser.Add:
		return l + r
	case parser.Sub:
		return l - r
	case parser.Mul:
		return l * r
	case parser.Div:
		return l / r
	case parser.Mod:
		return math.Mod(l, r)
	case parser.Pow:
		return math.Pow(l, r)
	case parser.Eq:
		return boolF(l == r)
	case parser.Neq:
		return boolF(l != r)
	case parser.Lt:
		return boolF(l < r)
	case parser.Lte:
		return boolF(l <= r)
	case parser.Gt:
		return boolF(l > r)
	case parser.Gte:
		return boolF(l >= r)
	case parser.And:
		return boolF(l != 0 && r != 0)
	case parser.Or:
		return boolF(l != 0 || r != 0)
	}
	return math.NaN()
}

func applyUnary(op parser.UnaryOp, x float64) float64 {
	switch op {
	case parser.Positive:
		return x
	case parser.Negative:
		return -x
	case parser.Not:
		return boolF(x == 0)
	}
	return math.NaN()
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// lookupGF evaluates a piecewise-linear graphical function at x, per
// spec.md §4.2/§4.6: Continuous interpolates linearly between bracketing
// points, Discrete steps to the left point's y value, and Extrapolate
// continues the boundary segment's slope past the table's domain instead
// of clamping.
func lookupGF(gf *datamodel.GraphicalFunction, x float64) float64 {
	n := len(gf.YPoints)
	if n == 0 {
		return math.NaN() // empty GF lookup, per §4.6 failure modes
	}
	if n == 1 {
		return gf.YPoints[0]
	}

	if x <= gf.XAt(0) {
		if gf.Kind == datamodel.GFExtrapolate {
			return extrapolate(gf, 0, 1, x)
		}
		return gf.YPoints[0]
	}
	last := n - 1
	if x >= gf.XAt(last) {
		if gf.Kind == datamodel.GFExtrapolate {
			return extrapolate(gf, last-1, last, x)
		}
		return gf.YPoints[last]
	}

	for i := 0; i < last; i++ {
		x0, x1 := gf.XAt(i), gf.XAt(i+1)
		if x >= x0 && x <= x1 {
			if gf.Kind == datamodel.GFDiscrete {
				return gf.YPoints[i]
			}
			if x1 == x0 {
				return gf.YPoints[i]
			}
			frac := (x - x0) / (x1 - x0)
			return gf.YPoints[i] + frac*(gf.YPoints[i+1]-gf.YPoints[i])
		}
	}
	return gf.YPoints[last]
}

func extrapolate(gf *datamodel.GraphicalFunction, i, j int, x float64) float64 {
	x0, x1 := gf.XAt(i), gf.XAt(j)
	if x1 == x0 {
		return gf.YPoints[i]
	}
	slope := (gf.YPoints[j] - gf.YPoints[i]) / (x1 - x0)
	return gf.YPoints[i] + slope*(x-x0)
}
