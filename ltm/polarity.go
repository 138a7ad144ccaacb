package ltm

import (
	"github.com/sdforge/sdengine/compile"
	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/vm"
)

// Polarity is the sign of a causal link's partial derivative at initial
// conditions.
type Polarity int

const (
	Undetermined Polarity = iota
	Positive
	Negative
)

func (p Polarity) String() string {
	switch p {
	case Positive:
		return "+"
	case Negative:
		return "-"
	default:
		return "Undetermined"
	}
}

// probeDelta is the relative perturbation LoopPolarity applies to u's
// initial-slot value (spec.md §4.7: "sign of the partial derivative ...
// evaluated at initial conditions"). `original_source`'s Rust engine
// computes this analytically over the AST; this is the numeric
// finite-difference stand-in recorded as an Open Question resolution in
// DESIGN.md.
const probeDelta = 1e-4

// LoopPolarity evaluates the sign of d(v)/d(u) at t=start by running the
// compiled program's initial pass twice — once unperturbed, once with u's
// initial value nudged by a small relative amount — and comparing v's
// resulting value. u and v are canonical variable names.
func LoopPolarity(program *compile.Program, spec datamodel.SimSpec, u, v string) Polarity {
	base, err := vm.New(program, spec)
	if err != nil {
		return Undetermined
	}
	baseline, ok := base.GetSeries(v)
	if !ok || len(baseline) == 0 {
		return Undetermined
	}
	v0 := baseline[0]

	if _, ok := program.Offsets[u]; !ok {
		return Undetermined
	}
	uVal, ok := base.GetSeries(u)
	if !ok || len(uVal) == 0 {
		return Undetermined
	}
	baseU := uVal[0]

	delta := probeDelta * baseU
	if delta == 0 {
		delta = probeDelta
	}

	perturbed, err := vm.New(program, spec, vm.WithOverrides(overridesWith(u, baseU+delta)))
	if err != nil {
		return Undetermined
	}
	vSeries, ok := perturbed.GetSeries(v)
	if !ok || len(vSeries) == 0 {
		return Undetermined
	}
	v1 := vSeries[0]

	switch {
	case v1 > v0:
		return Positive
	case v1 < v0:
		return Negative
	default:
		return Undetermined
	}
}

func overridesWith(name string, value float64) *vm.Overrides {
	o := vm.NewOverrides()
	o.Set(name, value)
	return o
}

// LoopSign folds a Loop's edge polarities into a single loop polarity: the
// product rule from spec.md §4.7 (an even number of Negative edges makes
// the loop Positive, an odd number Negative; any Undetermined edge makes
// the whole loop Undetermined).
func LoopSign(edgePolarity map[[2]string]Polarity, loop Loop) Polarity {
	sign := Positive
	for _, e := range loop.Edges() {
		p, ok := edgePolarity[e]
		if !ok || p == Undetermined {
			return Undetermined
		}
		if p == Negative {
			if sign == Positive {
				sign = Negative
			} else {
				sign = Positive
			}
		}
	}
	return sign
}
