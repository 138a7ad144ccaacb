// Package vm is the stack-based evaluator that advances a compiled
// Program through Euler or RK4 integration steps, per spec.md §4.6. It
// owns one State per running simulation (two f64 register files plus a
// temporary stack) and exposes the override mechanism external callers use
// for parameter sweeps without recompiling.
package vm

import (
	"math/rand"

	"github.com/sdforge/sdengine/compile"
	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/errs"
)

// Option configures a VM at construction, mirroring the teacher's
// functional-options style (analyzer/option.go).
type Option func(*VM)

// WithSeed fixes the RNG seed RANDOM() draws from. Without this option the
// VM seeds from a fixed default so runs are deterministic by default,
// matching §5's ordering guarantee ("deterministic functions of (project,
// overrides, dt, method, seed=none)" — "none" means the default seed, not
// an unseeded source).
func WithSeed(seed int64) Option {
	return func(v *VM) { v.rngSeed = seed }
}

// WithOverrides installs a pre-populated Overrides map at construction.
func WithOverrides(o *Overrides) Option {
	return func(v *VM) { v.overrides = o }
}

const defaultSeed = 1

// VM runs one compiled Program to completion. It is not safe for
// concurrent use by more than one goroutine (§5: "A running Simulation
// owns its VM and state buffers exclusively").
type VM struct {
	Program *compile.Program
	Spec    datamodel.SimSpec

	cur  []float64
	next []float64

	state     []float64
	stateInit []bool

	overrides *Overrides
	series    *Series

	t       float64
	step    int
	rngSeed int64
	rng     *rand.Rand
}

// New builds a VM over a compiled Program, ready for Reset.
func New(program *compile.Program, spec datamodel.SimSpec, opts ...Option) (*VM, error) {
	if program == nil {
		return nil, errs.New(errs.NotSimulatable, "cannot simulate a nil program")
	}
	if verr := spec.Validate(); verr != nil {
		return nil, verr
	}
	v := &VM{
		Program: program,
		Spec:    spec,
		rngSeed: defaultSeed,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.overrides == nil {
		v.overrides = NewOverrides()
	}
	v.Reset()
	return v, nil
}

// Reset reinitializes the register files, runs every stock's initial
// stream in InitialsOrder, re-applies overrides (which persist across
// Reset per §4.6), and captures the t=start save point. The RNG is
// reseeded so a Reset simulation reproduces byte-identical series.
func (v *VM) Reset() {
	p := v.Program
	v.cur = make([]float64, p.Slots)
	v.next = make([]float64, p.Slots)
	v.state = make([]float64, p.StateSlots)
	v.stateInit = make([]bool, p.StateSlots)
	v.rng = rand.New(rand.NewSource(v.rngSeed))
	v.t = v.Spec.Start
	v.step = 0
	v.series = newSeries(p, v.Spec)

	v.cur[p.TimeOffset] = v.t
	for _, name := range p.InitialsOrder {
		if val, overridden := v.overrides.get(name); overridden {
			if off, ok := p.Offsets[name]; ok {
				v.cur[off] = val
			}
			continue
		}
		if insts, ok := p.Initial[name]; ok {
			v.execute(insts, v.cur)
			continue
		}
		if insts, ok := p.FlowAuxStreams[name]; ok {
			v.execute(insts, v.cur)
		}
	}
	v.runSubmoduleInitials(p, v.cur)
	v.overrides.apply(p, v.cur) // stocks and anything InitialsOrder didn't cover
	v.series.capture(p, v.t, v.cur)
}

// RunToEnd advances the VM from its current step through Spec.Stop,
// returning the captured Series. The VM does not yield mid-run (§5:
// "Suspension points: none").
func (v *VM) RunToEnd() *Series {
	for v.t < v.Spec.Stop-1e-9 {
		v.Step()
	}
	return v.series
}

// Series returns the capture buffer built up since the last Reset.
func (v *VM) Series() *Series { return v.series }

// GetSeries extracts one variable's captured time series by name, the API
// LTM augmentation (§4.7) and ordinary callers both use to read results.
func (v *VM) GetSeries(name string) ([]float64, bool) {
	return v.series.get(name)
}

// Overrides returns the VM's live override map so a caller can Set/Clear
// entries between steps.
func (v *VM) Overrides() *Overrides { return v.overrides }

// Step performs one integration step per §4.6: evaluate flows/auxes,
// compute derivatives, integrate stocks (Euler or RK4), clamp
// non-negative stocks, re-apply overrides, advance time, then save the new
// state if due.
func (v *VM) Step() {
	p := v.Program
	dt := v.Spec.Dt.Seconds()

	switch v.Spec.Method {
	case datamodel.RungeKutta4:
		v.stepRK4(dt)
	default:
		v.stepEuler(dt)
	}

	v.clampNonNegative(p, dt)
	v.overrides.apply(p, v.next)

	v.cur, v.next = v.next, v.cur
	v.t += dt
	v.step++
	v.cur[p.TimeOffset] = v.t

	if v.isSaveStep() {
		v.series.capture(p, v.t, v.cur)
	}
}

func (v *VM) isSaveStep() bool {
	stride := v.Spec.SaveStride()
	return stride <= 1 || v.step%stride == 0
}

// evalFlows executes every non-stock stream (in FlowsOrder) and every
// submodule instance into dst, leaving dst's stock slots untouched (the
// caller seeds those before calling). A variable under override has its
// forced value written instead of running its own equation, so that
// every other stream evaluated later in FlowsOrder that depends on it
// reads the override — not a value its own (unexecuted) equation would
// have produced, which is what makes overrides an actual parameter-sweep
// mechanism rather than a post-hoc cosmetic overwrite.
func (v *VM) evalFlows(dst []float64) {
	p := v.Program
	for _, name := range p.FlowsOrder {
		if val, overridden := v.overrides.get(name); overridden {
			if off, ok := p.Offsets[name]; ok {
				dst[off] = val
			}
			continue
		}
		if insts, ok := p.FlowAuxStreams[name]; ok {
			v.execute(insts, dst)
		}
	}
	v.runSubmodules(p, dst)
}

func (v *VM) computeDerivatives(src []float64) {
	p := v.Program
	for _, name := range p.Stocks {
		if insts, ok := p.DerivStreams[name]; ok {
			v.execute(insts, src)
		}
	}
}

func (v *VM) stepEuler(dt float64) {
	p := v.Program
	copy(v.next, v.cur)
	v.evalFlows(v.next)
	v.computeDerivatives(v.next)
	for _, name := range p.Stocks {
		off := p.Offsets[name]
		dOff := p.DerivOffsets[name]
		v.next[off] = v.cur[off] + dt*v.next[dOff]
	}
}

// stepRK4 evaluates the flow block four times with perturbed stock values
// (k1 at the current state, k2/k3 at half-step perturbations, k4 at a
// full-step perturbation) and combines the weighted sum, per §4.6. Each
// evaluation reuses the same `t` mapping; only the stock slots are
// perturbed between evaluations.
func (v *VM) stepRK4(dt float64) {
	p := v.Program
	scratch := make([]float64, p.Slots)

	evalDeriv := func(stocks map[string]float64) map[string]float64 {
		copy(scratch, v.cur)
		for name, val := range stocks {
			scratch[p.Offsets[name]] = val
		}
		v.evalFlows(scratch)
		v.computeDerivatives(scratch)
		out := make(map[string]float64, len(p.Stocks))
		for _, name := range p.Stocks {
			out[name] = scratch[p.DerivOffsets[name]]
		}
		return out
	}

	s0 := make(map[string]float64, len(p.Stocks))
	for _, name := range p.Stocks {
		s0[name] = v.cur[p.Offsets[name]]
	}

	k1 := evalDeriv(s0)

	s2 := perturb(s0, k1, dt/2)
	k2 := evalDeriv(s2)

	s3 := perturb(s0, k2, dt/2)
	k3 := evalDeriv(s3)

	s4 := perturb(s0, k3, dt)
	k4 := evalDeriv(s4)

	copy(v.next, v.cur)
	v.evalFlows(v.next) // final flow values reported at the unperturbed state
	for _, name := range p.Stocks {
		off := p.Offsets[name]
		d := (k1[name] + 2*k2[name] + 2*k3[name] + k4[name]) / 6
		v.next[off] = s0[name] + dt*d
	}
}

func perturb(base, deriv map[string]float64, scale float64) map[string]float64 {
	out := make(map[string]float64, len(base))
	for name, val := range base {
		out[name] = val + scale*deriv[name]
	}
	return out
}

// clampNonNegative enforces §4.6 step 5: a non-negative stock's next value
// is floored at zero, and any outflow that overshot is attenuated
// proportionally so the stock's mass balance still closes (it just removed
// exactly what was available, not more).
func (v *VM) clampNonNegative(p *compile.Program, dt float64) {
	for _, name := range p.Stocks {
		if !p.StockNonNegative[name] {
			continue
		}
		off := p.Offsets[name]
		if v.next[off] >= 0 {
			continue
		}
		outflows := p.StockOutflows[name]
		if len(outflows) == 0 || dt <= 0 {
			v.next[off] = 0
			continue
		}
		var totalOut float64
		for _, flow := range outflows {
			totalOut += v.next[p.Offsets[flow]]
		}
		if totalOut <= 0 {
			v.next[off] = 0
			continue
		}
		overshoot := -v.next[off]
		scale := (totalOut*dt - overshoot) / (totalOut * dt)
		if scale < 0 {
			scale = 0
		}
		for _, flow := range outflows {
			v.next[p.Offsets[flow]] *= scale
		}
		v.next[off] = 0
	}
}

// runSubmoduleInitials runs each module instance's child flow/aux streams
// once at t=start, alongside the top-level InitialsOrder pass; see
// runSubmodules for what that run does and does not produce.
func (v *VM) runSubmoduleInitials(p *compile.Program, dst []float64) {
	v.runSubmodules(p, dst)
}

// runSubmodules, for each module instance, copies its (src, dst) bindings
// from the parent's slots into a fresh child register file and runs the
// child's flow/aux streams in the child's FlowsOrder. The child's stocks
// are not initialized or integrated (their slots read 0), the child
// register file is discarded afterwards, and no child value is written
// back to dst. Stateful builtins inside the child use the parent VM's
// state register file.
func (v *VM) runSubmodules(p *compile.Program, dst []float64) {
	for _, sub := range p.Submodules {
		child := sub.Child
		childSlots := make([]float64, child.Slots)
		for _, b := range sub.Bindings {
			childSlots[b.ChildOffset] = dst[b.ParentOffset]
		}
		for _, name := range child.FlowsOrder {
			if insts, ok := child.FlowAuxStreams[name]; ok {
				v.executeProg(insts, childSlots, child)
			}
		}
	}
}
