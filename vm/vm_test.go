package vm_test

import (
	"math"
	"testing"

	"github.com/sdforge/sdengine/compile"
	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileMain(t *testing.T, model *datamodel.Model) *compile.Program {
	t.Helper()
	project, err := datamodel.NewProject(datamodel.Project{Name: "p", Models: []*datamodel.Model{model}})
	require.NoError(t, err)
	prog, errList := compile.Compile(project, project.MainModel())
	require.Nil(t, errList)
	return prog
}

// Scenario A — SIR epidemic (spec.md §8).
func TestSIREpidemic(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "susceptible", Init: datamodel.Scalar{RHS: "999"}, Outflows: []string{"succumbing"}},
			&datamodel.Stock{Name: "infected", Init: datamodel.Scalar{RHS: "1"}, Inflows: []string{"succumbing"}, Outflows: []string{"recovering"}},
			&datamodel.Stock{Name: "recovered", Init: datamodel.Scalar{RHS: "0"}, Inflows: []string{"recovering"}},
			&datamodel.Flow{Name: "succumbing", Eqn: datamodel.Scalar{RHS: "susceptible * infected * 0.0005"}},
			&datamodel.Flow{Name: "recovering", Eqn: datamodel.Scalar{RHS: "infected * 0.1"}},
		},
	}
	prog := compileMain(t, model)
	spec := datamodel.SimSpec{Start: 0, Stop: 10, Dt: datamodel.Dt{Value: 0.25}, Method: datamodel.Euler}
	machine, err := vm.New(prog, spec)
	require.NoError(t, err)
	machine.RunToEnd()

	sus, ok := machine.GetSeries("susceptible")
	require.True(t, ok)
	inf, ok := machine.GetSeries("infected")
	require.True(t, ok)
	rec, ok := machine.GetSeries("recovered")
	require.True(t, ok)

	for i := range sus {
		total := sus[i] + inf[i] + rec[i]
		assert.InDelta(t, 1000.0, total, 1e-6, "conservation at save step %d", i)
	}
	assert.Greater(t, inf[len(inf)-1], 1.0)
}

// Scenario B — pure growth.
func TestPureGrowth(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "p", Init: datamodel.Scalar{RHS: "100"}, Inflows: []string{"births"}},
			&datamodel.Flow{Name: "births", Eqn: datamodel.Scalar{RHS: "p * 0.02"}},
		},
	}
	prog := compileMain(t, model)
	spec := datamodel.SimSpec{Start: 0, Stop: 10, Dt: datamodel.Dt{Value: 1}, Method: datamodel.Euler}
	machine, err := vm.New(prog, spec)
	require.NoError(t, err)
	series := machine.RunToEnd()

	p, ok := series.At("p", 0)
	require.True(t, ok)
	assert.InDelta(t, 100, p, 1e-9)

	last, ok := series.At("p", series.Len()-1)
	require.True(t, ok)
	assert.InDelta(t, 100*math.Pow(1.02, 10), last, 1e-6)
}

// Scenario C — non-negative clamp.
func TestNonNegativeClamp(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "tank", Init: datamodel.Scalar{RHS: "10"}, Outflows: []string{"drain"}, NonNegative: true},
			&datamodel.Flow{Name: "drain", Eqn: datamodel.Scalar{RHS: "3"}},
		},
	}
	prog := compileMain(t, model)
	spec := datamodel.SimSpec{Start: 0, Stop: 5, Dt: datamodel.Dt{Value: 1}, Method: datamodel.Euler}
	machine, err := vm.New(prog, spec)
	require.NoError(t, err)
	machine.RunToEnd()

	tank, ok := machine.GetSeries("tank")
	require.True(t, ok)
	want := []float64{10, 7, 4, 1, 0, 0}
	require.Len(t, tank, len(want))
	for i, w := range want {
		assert.InDelta(t, w, tank[i], 1e-9, "step %d", i)
	}
}

// Scenario D — parameter override.
func TestParameterOverride(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "p", Init: datamodel.Scalar{RHS: "100"}, Inflows: []string{"births"}},
			&datamodel.Flow{Name: "births", Eqn: datamodel.Scalar{RHS: "p * birth_rate"}},
			&datamodel.Aux{Name: "birth_rate", Eqn: datamodel.Scalar{RHS: "0.02"}},
		},
	}
	prog := compileMain(t, model)
	spec := datamodel.SimSpec{Start: 0, Stop: 10, Dt: datamodel.Dt{Value: 1}, Method: datamodel.Euler}
	machine, err := vm.New(prog, spec)
	require.NoError(t, err)
	machine.Overrides().Set("birth_rate", 0.05)
	machine.Reset()
	series := machine.RunToEnd()

	last, ok := series.At("p", series.Len()-1)
	require.True(t, ok)
	assert.InDelta(t, 100*math.Pow(1.05, 10), last, 1e-6)
}

func TestOverridesValidateRejectsUnknownName(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Aux{Name: "x", Eqn: datamodel.Scalar{RHS: "1"}},
		},
	}
	prog := compileMain(t, model)
	o := vm.NewOverrides()
	o.Set("nonexistent", 1)
	errList := o.Validate(prog)
	require.NotNil(t, errList)
	assert.NotEmpty(t, errList.ByKind("BadOverride"))
}

func TestSnapshotRoundTrips(t *testing.T) {
	o := vm.NewOverrides()
	o.Set("a", 1.5)
	o.Set("b", -2)
	snap := o.Snapshot()
	restored := vm.LoadSnapshot(snap)
	assert.Equal(t, snap, restored.Snapshot())
}
