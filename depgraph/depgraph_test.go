package depgraph_test

import (
	"testing"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/depgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sirModel() *datamodel.Model {
	return &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "susceptible", Init: datamodel.Scalar{RHS: "1000"}, Outflows: []string{"infection"}},
			&datamodel.Stock{Name: "infected", Init: datamodel.Scalar{RHS: "1"}, Inflows: []string{"infection"}, Outflows: []string{"recovery"}},
			&datamodel.Stock{Name: "recovered", Init: datamodel.Scalar{RHS: "0"}, Inflows: []string{"recovery"}},
			&datamodel.Flow{Name: "infection", Eqn: datamodel.Scalar{RHS: "susceptible * infected * contact_rate"}},
			&datamodel.Flow{Name: "recovery", Eqn: datamodel.Scalar{RHS: "infected * recovery_rate"}},
			&datamodel.Aux{Name: "contact_rate", Eqn: datamodel.Scalar{RHS: "0.0005"}},
			&datamodel.Aux{Name: "recovery_rate", Eqn: datamodel.Scalar{RHS: "0.1"}},
		},
	}
}

func TestBuildGraphBasicDeps(t *testing.T) {
	g, errList := depgraph.Build(sirModel())
	require.Nil(t, errList)
	assert.ElementsMatch(t, []string{"susceptible", "infected", "contact_rate"}, g.Deps["infection"])
	assert.True(t, g.Stocks["susceptible"])
	assert.False(t, g.Stocks["infection"])
}

func TestDetectCyclesNoCycleInSIR(t *testing.T) {
	g, errList := depgraph.Build(sirModel())
	require.Nil(t, errList)
	errs := depgraph.DetectCycles(g, "main")
	assert.Nil(t, errs)
}

func TestDetectCyclesStockBreaksCycle(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "inventory", Init: datamodel.Scalar{RHS: "0"}, Inflows: []string{"restock"}, Outflows: []string{"usage"}},
			&datamodel.Flow{Name: "restock", Eqn: datamodel.Scalar{RHS: "MAX(0, target - inventory)"}},
			&datamodel.Flow{Name: "usage", Eqn: datamodel.Scalar{RHS: "inventory * 0.1"}},
			&datamodel.Aux{Name: "target", Eqn: datamodel.Scalar{RHS: "100"}},
		},
	}
	g, errList := depgraph.Build(model)
	require.Nil(t, errList)
	errs := depgraph.DetectCycles(g, "main")
	assert.Nil(t, errs, "flow->stock edges should not create a circular-dependency error")
}

func TestDetectCyclesGenuineCircular(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Aux{Name: "a", Eqn: datamodel.Scalar{RHS: "b + 1"}},
			&datamodel.Aux{Name: "b", Eqn: datamodel.Scalar{RHS: "a + 1"}},
		},
	}
	g, errList := depgraph.Build(model)
	require.Nil(t, errList)
	errs := depgraph.DetectCycles(g, "main")
	require.NotNil(t, errs)
	assert.Len(t, errs.Errors, 1)
}

func TestFlowsOrderExcludesStocksAndRespectsDeps(t *testing.T) {
	g, errList := depgraph.Build(sirModel())
	require.Nil(t, errList)
	order := depgraph.FlowsOrder(g)
	assert.NotContains(t, order, "susceptible")
	assert.NotContains(t, order, "infected")

	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	assert.Less(t, pos["contact_rate"], pos["infection"])
	assert.Less(t, pos["recovery_rate"], pos["recovery"])
}

func TestInitialsOrderIncludesStocksAsLeavesWhenUnconstrained(t *testing.T) {
	g, errList := depgraph.Build(sirModel())
	require.Nil(t, errList)
	order := depgraph.InitialsOrder(g)
	assert.Contains(t, order, "susceptible")
	assert.Len(t, order, 7)
}

func TestInitialsOrderSchedulesAuxBeforeStockWhenStockInitDependsOnIt(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "inventory", Init: datamodel.Scalar{RHS: "starting_level"}},
			&datamodel.Aux{Name: "starting_level", Eqn: datamodel.Scalar{RHS: "50"}},
		},
	}
	g, errList := depgraph.Build(model)
	require.Nil(t, errList)
	order := depgraph.InitialsOrder(g)
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	assert.Less(t, pos["starting_level"], pos["inventory"])
}

func TestResolveDependencyThroughModuleBinding(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Module{Name: "births_module", ModelName: "births", Bindings: []datamodel.ModuleBinding{
				{Src: "population", Dst: "pop_input"},
			}},
			&datamodel.Aux{Name: "population", Eqn: datamodel.Scalar{RHS: "1000"}},
		},
	}
	got := depgraph.ResolveDependency(model, "births_module.pop_input")
	assert.Equal(t, "population", got)

	gotOutput := depgraph.ResolveDependency(model, "births_module.birth_rate_out")
	assert.Equal(t, "births_module", gotOutput)
}
