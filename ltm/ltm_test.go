package ltm_test

import (
	"math"
	"testing"

	"github.com/sdforge/sdengine/compile"
	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/depgraph"
	"github.com/sdforge/sdengine/ltm"
	"github.com/sdforge/sdengine/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// goodLoopModel is a minimal reinforcing loop: p -> births -> p.
func goodLoopModel() *datamodel.Model {
	return &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "p", Init: datamodel.Scalar{RHS: "100"}, Inflows: []string{"births"}},
			&datamodel.Flow{Name: "births", Eqn: datamodel.Scalar{RHS: "p * 0.02"}},
		},
	}
}

func TestEnumerateLoopsFindsSingleCycle(t *testing.T) {
	g, errList := depgraph.Build(goodLoopModel())
	require.Nil(t, errList)
	loops := ltm.EnumerateLoops(g)
	require.Len(t, loops, 1)
	assert.ElementsMatch(t, []string{"p", "births"}, loops[0].Vertices)
}

func TestEnumerateLoopsKeepsDistinctOverlappingCycles(t *testing.T) {
	// Two genuinely distinct 2-cycles sharing vertex "a": a<->ab and a<->ca.
	// They must NOT collapse into one loop — only rotations/reversals of the
	// *same* vertex set should dedup.
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "a", Init: datamodel.Scalar{RHS: "1"}, Inflows: []string{"ab"}, Outflows: []string{"ca"}},
			&datamodel.Flow{Name: "ab", Eqn: datamodel.Scalar{RHS: "a"}},
			&datamodel.Flow{Name: "ca", Eqn: datamodel.Scalar{RHS: "a"}},
		},
	}
	g, errList := depgraph.Build(model)
	require.Nil(t, errList)
	loops := ltm.EnumerateLoops(g)
	assert.Len(t, loops, 2)
}

func TestAugmentSynthesizesScoreAndRelVariables(t *testing.T) {
	result := ltm.Augment(goodLoopModel(), 1)
	require.Len(t, result.Loops, 1)

	names := map[string]bool{}
	for _, v := range result.Model.Variables {
		names[v.Ident()] = true
	}
	assert.True(t, names[ltm.ScoreVarName("p", "births")] || names[ltm.ScoreVarName("births", "p")])
	assert.True(t, names[ltm.RelScoreVarName(result.Loops[0].ID)])
	assert.True(t, names["$ltmloop_total"])
}

// Scenario F — loop dominance (spec.md §8): one reinforcing loop
// (pop -> births -> pop, rate 0.02) against one balancing loop
// (pop -> deaths -> pop, rate 0.01). The reinforcing loop must carry
// the larger relative score, both must be finite past the lag rollout,
// and the two must sum to one at every defined step.
func TestLoopDominanceReinforcingVsBalancing(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "pop", Init: datamodel.Scalar{RHS: "100"}, Inflows: []string{"births"}, Outflows: []string{"deaths"}},
			&datamodel.Flow{Name: "births", Eqn: datamodel.Scalar{RHS: "pop * 0.02"}},
			&datamodel.Flow{Name: "deaths", Eqn: datamodel.Scalar{RHS: "pop * 0.01"}},
		},
	}
	result := ltm.Augment(model, 1)
	require.Len(t, result.Loops, 2)

	var reinforcing, balancing string
	for _, l := range result.Loops {
		isReinforcing := false
		for _, vtx := range l.Vertices {
			if vtx == "births" {
				isReinforcing = true
			}
		}
		if isReinforcing {
			reinforcing = ltm.RelScoreVarName(l.ID)
		} else {
			balancing = ltm.RelScoreVarName(l.ID)
		}
	}
	require.NotEmpty(t, reinforcing)
	require.NotEmpty(t, balancing)

	project, err := datamodel.NewProject(datamodel.Project{Name: "p", Models: []*datamodel.Model{result.Model}})
	require.NoError(t, err)
	prog, errList := compile.Compile(project, project.MainModel())
	require.Nil(t, errList)

	spec := datamodel.SimSpec{Start: 0, Stop: 10, Dt: datamodel.Dt{Value: 1}, Method: datamodel.Euler}
	machine, err := vm.New(prog, spec)
	require.NoError(t, err)
	machine.RunToEnd()

	rSeries, ok := machine.GetSeries(reinforcing)
	require.True(t, ok)
	bSeries, ok := machine.GetSeries(balancing)
	require.True(t, ok)
	require.Equal(t, len(rSeries), len(bSeries))

	for i := 3; i < len(rSeries); i++ {
		require.False(t, math.IsNaN(rSeries[i]) || math.IsInf(rSeries[i], 0), "step %d", i)
		require.False(t, math.IsNaN(bSeries[i]) || math.IsInf(bSeries[i], 0), "step %d", i)
		assert.Greater(t, rSeries[i], 0.5, "step %d", i)
		assert.InDelta(t, 1.0, rSeries[i]+bSeries[i], 1e-9, "step %d", i)
	}
}

func TestLoopSignUndeterminedOnMissingEdge(t *testing.T) {
	loop := ltm.Loop{Vertices: []string{"a", "b"}}
	sign := ltm.LoopSign(map[[2]string]ltm.Polarity{}, loop)
	assert.Equal(t, ltm.Undetermined, sign)
}
