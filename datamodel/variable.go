package datamodel

import "github.com/sdforge/sdengine/errs"

// Variable is the tagged union of the four kinds of model variable: Stock,
// Flow, Aux, Module. Concrete types implement it with an unexported marker
// method so the set of variants is closed to this package.
type Variable interface {
	Ident() string
	Equation() Equation // nil for Module
	isVariable()
}

// Stock is a state variable: its value at step n is determined by its
// history (the integral of its net flow), not by other step-n values.
type Stock struct {
	Name         string
	Init         Equation // the initial-value equation; INTEG(...)'s second argument
	Inflows      []string
	Outflows     []string
	NonNegative  bool
	GF           *GraphicalFunction
}

func (s *Stock) Ident() string      { return s.Name }
func (s *Stock) Equation() Equation { return s.Init }
func (*Stock) isVariable()          {}

// Flow is a rate variable contributing (with sign) to the stocks that name
// it as an inflow or outflow.
type Flow struct {
	Name        string
	Eqn         Equation
	GF          *GraphicalFunction
	NonNegative bool
}

func (f *Flow) Ident() string      { return f.Name }
func (f *Flow) Equation() Equation { return f.Eqn }
func (*Flow) isVariable()          {}

// Aux is a pure algebraic variable with no state.
type Aux struct {
	Name string
	Eqn  Equation
	GF   *GraphicalFunction
}

func (a *Aux) Ident() string      { return a.Name }
func (a *Aux) Equation() Equation { return a.Eqn }
func (*Aux) isVariable()          {}

// ModuleBinding binds a parent-exposed variable (Src) to a child input
// variable (Dst) for one Module instance.
type ModuleBinding struct {
	Src string
	Dst string
}

// Module is a variable whose value is a submodel instance.
type Module struct {
	Name     string
	ModelName string
	Bindings []ModuleBinding
}

func (m *Module) Ident() string      { return m.Name }
func (m *Module) Equation() Equation { return nil }
func (*Module) isVariable()          {}

// GraphicalFunctionKind selects how a GF interpolates between table points.
type GraphicalFunctionKind string

const (
	GFContinuous  GraphicalFunctionKind = "Continuous"
	GFExtrapolate GraphicalFunctionKind = "Extrapolate"
	GFDiscrete    GraphicalFunctionKind = "Discrete"
)

// GraphicalFunction is a piecewise-linear lookup table applied to a scalar
// argument.
type GraphicalFunction struct {
	Kind    GraphicalFunctionKind
	XPoints []float64 // optional; uniform spacing implied when absent
	YPoints []float64
	XScale  [2]float64
	YScale  [2]float64
}

// Validate enforces spec.md §3's GF invariant: y_points non-empty, and
// x_points (when present) the same length as y_points.
func (g *GraphicalFunction) Validate() *errs.Error {
	if len(g.YPoints) == 0 {
		return errs.New(errs.BadTable, "graphical function has no y points")
	}
	if len(g.XPoints) > 0 && len(g.XPoints) != len(g.YPoints) {
		return errs.Newf(errs.BadTable, "graphical function has %d x points but %d y points", len(g.XPoints), len(g.YPoints))
	}
	return nil
}

// XAt returns the x-coordinate of point i, using uniform spacing over
// XScale when XPoints was not supplied.
func (g *GraphicalFunction) XAt(i int) float64 {
	if len(g.XPoints) > 0 {
		return g.XPoints[i]
	}
	n := len(g.YPoints)
	if n <= 1 {
		return g.XScale[0]
	}
	span := g.XScale[1] - g.XScale[0]
	return g.XScale[0] + span*float64(i)/float64(n-1)
}
