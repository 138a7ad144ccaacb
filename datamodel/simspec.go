package datamodel

import "github.com/sdforge/sdengine/errs"

// IntegrationMethod selects the numerical stepper the VM uses.
type IntegrationMethod string

const (
	Euler      IntegrationMethod = "Euler"
	RungeKutta4 IntegrationMethod = "RungeKutta4"
)

// Dt represents a timestep either as an absolute value or as the
// reciprocal of an integer (e.g. "1/4" meaning dt = 0.25), matching
// spec.md §3.
type Dt struct {
	Value       float64
	IsReciprocal bool
}

// Seconds returns the effective dt as an absolute float64.
func (d Dt) Seconds() float64 {
	if d.IsReciprocal {
		if d.Value == 0 {
			return 0
		}
		return 1.0 / d.Value
	}
	return d.Value
}

// SimSpec is the simulation control block: time range, step size,
// optional save cadence, and integration method.
type SimSpec struct {
	Start    float64
	Stop     float64
	Dt       Dt
	SaveStep *Dt
	Method   IntegrationMethod
	TimeUnit string
}

// EffectiveSaveStep returns the save cadence, defaulting to Dt when
// SaveStep is unset.
func (s SimSpec) EffectiveSaveStep() float64 {
	if s.SaveStep == nil {
		return s.Dt.Seconds()
	}
	return s.SaveStep.Seconds()
}

// Validate enforces the invariants from spec.md §3: stop > start, dt > 0,
// and save_step (when present) is an integer multiple of dt within
// floating tolerance.
func (s SimSpec) Validate() *errs.Error {
	if s.Stop <= s.Start {
		return errs.Newf(errs.BadSimSpecs, "stop (%v) must be greater than start (%v)", s.Stop, s.Start)
	}
	dt := s.Dt.Seconds()
	if dt <= 0 {
		return errs.Newf(errs.BadSimSpecs, "dt must be positive, got %v", dt)
	}
	if s.Method != "" && s.Method != Euler && s.Method != RungeKutta4 {
		return errs.Newf(errs.BadSimSpecs, "unknown integration method %q", s.Method)
	}
	if s.SaveStep != nil {
		save := s.SaveStep.Seconds()
		if save <= 0 {
			return errs.Newf(errs.BadSimSpecs, "save_step must be positive, got %v", save)
		}
		ratio := save / dt
		rounded := float64(int64(ratio + 0.5))
		if abs(ratio-rounded) > 1e-6 {
			return errs.Newf(errs.BadSimSpecs, "save_step (%v) must be an integer multiple of dt (%v)", save, dt)
		}
	}
	return nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// Steps returns the number of dt-sized steps from Start to Stop.
func (s SimSpec) Steps() int {
	dt := s.Dt.Seconds()
	if dt <= 0 {
		return 0
	}
	n := (s.Stop - s.Start) / dt
	return int(n + 0.5)
}

// SaveStride is the number of dt-steps between successive saved points.
func (s SimSpec) SaveStride() int {
	dt := s.Dt.Seconds()
	save := s.EffectiveSaveStep()
	if dt <= 0 || save <= 0 {
		return 1
	}
	n := save / dt
	r := int(n + 0.5)
	if r < 1 {
		return 1
	}
	return r
}
