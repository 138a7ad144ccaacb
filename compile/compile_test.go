package compile_test

import (
	"testing"

	"github.com/sdforge/sdengine/compile"
	"github.com/sdforge/sdengine/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sirProject(t *testing.T) *datamodel.Project {
	t.Helper()
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "susceptible", Init: datamodel.Scalar{RHS: "999"}, Outflows: []string{"infection"}},
			&datamodel.Stock{Name: "infected", Init: datamodel.Scalar{RHS: "1"}, Inflows: []string{"infection"}, Outflows: []string{"recovery"}},
			&datamodel.Stock{Name: "recovered", Init: datamodel.Scalar{RHS: "0"}, Inflows: []string{"recovery"}},
			&datamodel.Flow{Name: "infection", Eqn: datamodel.Scalar{RHS: "susceptible * infected * contact_rate"}},
			&datamodel.Flow{Name: "recovery", Eqn: datamodel.Scalar{RHS: "infected * recovery_rate"}},
			&datamodel.Aux{Name: "contact_rate", Eqn: datamodel.Scalar{RHS: "0.0005"}},
			&datamodel.Aux{Name: "recovery_rate", Eqn: datamodel.Scalar{RHS: "0.1"}},
		},
	}
	p, err := datamodel.NewProject(datamodel.Project{Name: "sir", Models: []*datamodel.Model{model}})
	require.NoError(t, err)
	return p
}

func TestCompileSIRProducesAllStreams(t *testing.T) {
	project := sirProject(t)
	prog, errList := compile.Compile(project, project.MainModel())
	require.Nil(t, errList)
	require.NotNil(t, prog)

	assert.ElementsMatch(t, []string{"susceptible", "infected", "recovered"}, prog.Stocks)
	assert.Contains(t, prog.FlowAuxStreams, "infection")
	assert.Contains(t, prog.FlowAuxStreams, "contact_rate")
	assert.Contains(t, prog.DerivStreams, "susceptible")
	assert.Contains(t, prog.Initial, "susceptible")
	assert.NotZero(t, prog.Slots)
	assert.NotEqual(t, prog.Offsets["susceptible"], prog.Offsets["infected"])
}

func TestCompileBadBuiltinArgs(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Aux{Name: "x", Eqn: datamodel.Scalar{RHS: "SQRT(1, 2)"}},
		},
	}
	project, err := datamodel.NewProject(datamodel.Project{Name: "p", Models: []*datamodel.Model{model}})
	require.NoError(t, err)
	_, errList := compile.Compile(project, project.MainModel())
	require.NotNil(t, errList)
	found := errList.ByKind("BadBuiltinArgs")
	assert.NotEmpty(t, found)
}

func TestCompileUnknownVariableReference(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Aux{Name: "x", Eqn: datamodel.Scalar{RHS: "nonexistent + 1"}},
		},
	}
	project, err := datamodel.NewProject(datamodel.Project{Name: "p", Models: []*datamodel.Model{model}})
	require.NoError(t, err)
	_, errList := compile.Compile(project, project.MainModel())
	require.NotNil(t, errList)
	assert.NotEmpty(t, errList.ByKind("UnknownDependency"))
}

func TestFingerprintStableForEqualStreams(t *testing.T) {
	project := sirProject(t)
	prog, errList := compile.Compile(project, project.MainModel())
	require.Nil(t, errList)
	a := compile.Fingerprint(prog.FlowAuxStreams["infection"])
	b := compile.Fingerprint(prog.FlowAuxStreams["infection"])
	assert.Equal(t, a, b)
	c := compile.Fingerprint(prog.FlowAuxStreams["recovery"])
	assert.NotEqual(t, a, c)
}
