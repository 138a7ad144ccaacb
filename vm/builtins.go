package vm

import (
	"math"

	"github.com/sdforge/sdengine/compile"
)

// callBuiltin dispatches one OpCall by builtin id, per the abstract
// instruction set in spec.md §4.5. Stateless builtins are pure functions
// of args and the VM's current time; stateful ones (INTEG/SMTH1/SMTH3/
// DELAY1/DELAY3) read and advance their reserved cells in v.state,
// identified by stateID (-1 for stateless builtins).
func (v *VM) callBuiltin(id, stateID int, args []float64) float64 {
	name := ""
	if id >= 0 && id < len(compile.BuiltinNames) {
		name = compile.BuiltinNames[id]
	}
	dt := v.Spec.Dt.Seconds()

	switch name {
	case "MIN":
		m := args[0]
		for _, a := range args[1:] {
			if a < m {
				m = a
			}
		}
		return m
	case "MAX":
		m := args[0]
		for _, a := range args[1:] {
			if a > m {
				m = a
			}
		}
		return m
	case "SQRT":
		return math.Sqrt(args[0])
	case "EXP":
		return math.Exp(args[0])
	case "LN":
		return math.Log(args[0])
	case "SIN":
		return math.Sin(args[0])
	case "COS":
		return math.Cos(args[0])
	case "TAN":
		return math.Tan(args[0])
	case "ARCSIN":
		return math.Asin(args[0])
	case "ARCCOS":
		return math.Acos(args[0])
	case "ARCTAN":
		return math.Atan(args[0])
	case "ABS":
		return math.Abs(args[0])
	case "INT":
		return math.Trunc(args[0])
	case "MOD":
		return math.Mod(args[0], args[1])
	case "SAFEDIV":
		if args[1] == 0 {
			if len(args) == 3 {
				return args[2]
			}
			return 0
		}
		return args[0] / args[1]
	case "TIME":
		return v.t
	case "STEP":
		height, start := args[0], args[1]
		if v.t >= start {
			return height
		}
		return 0
	case "RAMP":
		slope, start := args[0], args[1]
		if v.t < start {
			return 0
		}
		end := math.Inf(1)
		if len(args) == 3 {
			end = args[2]
		}
		t := v.t
		if t > end {
			t = end
		}
		return slope * (t - start)
	case "PULSE":
		return pulse(v.t, dt, args)
	case "RANDOM":
		lo, hi := 0.0, 1.0
		if len(args) == 2 {
			lo, hi = args[0], args[1]
		}
		return lo + v.rng.Float64()*(hi-lo)
	case "INTEG":
		return v.stateAccumulate(stateID, args[0], args[1], dt)
	case "SMTH1":
		return v.smooth1(stateID, args, dt)
	case "SMTH3":
		return v.smooth3(stateID, args, dt)
	case "DELAY1":
		return v.delay1(stateID, args, dt)
	case "DELAY3":
		return v.delay3(stateID, args, dt)
	}
	return math.NaN()
}

// pulse implements the classic Vensim-style repeating pulse: height args[0]
// held for one dt-width window starting at args[1], optionally repeating
// every args[2] time units.
func pulse(t, dt float64, args []float64) float64 {
	height, start := args[0], args[1]
	repeat := 0.0
	if len(args) == 3 {
		repeat = args[2]
	}
	if t < start {
		return 0
	}
	since := t - start
	if repeat > 0 {
		since = math.Mod(since, repeat)
	} else if since >= dt {
		return 0
	}
	if since < dt {
		return height
	}
	return 0
}

// stateAccumulate backs INTEG when it appears outside its usual role as a
// Stock's top-level constructor (see DESIGN.md): the cell is seeded
// with init on first evaluation, then Euler-integrated by rate*dt every
// step after, independent of the outer simulation's chosen method. This is
// a deliberate simplification recorded in DESIGN.md.
func (v *VM) stateAccumulate(stateID int, rate, init, dt float64) float64 {
	if !v.stateInit[stateID] {
		v.state[stateID] = init
		v.stateInit[stateID] = true
	}
	result := v.state[stateID]
	v.state[stateID] += rate * dt
	return result
}

// smooth1 is first-order exponential smoothing: state approaches input
// with time constant args[1]. Optional args[2] seeds the initial state
// (defaults to input at t=start).
func (v *VM) smooth1(stateID int, args []float64, dt float64) float64 {
	input, timeConst := args[0], args[1]
	if !v.stateInit[stateID] {
		init := input
		if len(args) == 3 {
			init = args[2]
		}
		v.state[stateID] = init
		v.stateInit[stateID] = true
	}
	cur := v.state[stateID]
	if timeConst > 0 {
		v.state[stateID] = cur + dt*(input-cur)/timeConst
	}
	return cur
}

// smooth3 cascades three first-order smooths, each running at one third of
// the nominal time constant so the cascade's overall response time still
// matches args[1] (the standard SMTH3 construction).
func (v *VM) smooth3(stateID int, args []float64, dt float64) float64 {
	input, timeConst := args[0], args[1]
	stageConst := timeConst / 3
	var init float64 = input
	if len(args) >= 3 {
		init = args[2]
	}
	for i := 0; i < 3; i++ {
		cell := stateID + i
		if !v.stateInit[cell] {
			v.state[cell] = init
			v.stateInit[cell] = true
		}
	}
	prevInput := input
	for i := 0; i < 3; i++ {
		cell := stateID + i
		cur := v.state[cell]
		if stageConst > 0 {
			v.state[cell] = cur + dt*(prevInput-cur)/stageConst
		}
		prevInput = cur
	}
	return v.state[stateID+2]
}

// delay1 is a first-order material delay: identical recurrence to smooth1,
// but args[2] is an optional explicit initial output (defaulting to input,
// matching simlin's convention for a delay with no backlog at t=start).
func (v *VM) delay1(stateID int, args []float64, dt float64) float64 {
	return v.smooth1(stateID, args, dt)
}

// delay3 is the three-stage material-delay cascade, structurally identical
// to smooth3.
func (v *VM) delay3(stateID int, args []float64, dt float64) float64 {
	return v.smooth3(stateID, args, dt)
}
