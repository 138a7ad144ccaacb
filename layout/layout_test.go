package layout_test

import (
	"testing"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sirProject() *datamodel.Project {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "susceptible", Init: datamodel.Scalar{RHS: "999"}, Outflows: []string{"succumbing"}},
			&datamodel.Stock{Name: "infected", Init: datamodel.Scalar{RHS: "1"}, Inflows: []string{"succumbing"}, Outflows: []string{"recovering"}},
			&datamodel.Stock{Name: "recovered", Init: datamodel.Scalar{RHS: "0"}, Inflows: []string{"recovering"}},
			&datamodel.Flow{Name: "succumbing", Eqn: datamodel.Scalar{RHS: "susceptible * infected * contact_rate"}},
			&datamodel.Flow{Name: "recovering", Eqn: datamodel.Scalar{RHS: "infected * 0.1"}},
			&datamodel.Aux{Name: "contact_rate", Eqn: datamodel.Scalar{RHS: "0.0005"}},
		},
	}
	project, err := datamodel.NewProject(datamodel.Project{Name: "p", Models: []*datamodel.Model{model}})
	if err != nil {
		panic(err)
	}
	return project
}

func TestComputeMetadataDetectsChain(t *testing.T) {
	md, astOK := layout.ComputeMetadata(sirProject(), "main")
	require.NotNil(t, md)
	assert.True(t, astOK)
	require.NotEmpty(t, md.Chains)
	assert.Equal(t, 3, len(md.Chains[0].Stocks))
}

func TestComputeMetadataDetectsFeedbackLoops(t *testing.T) {
	md, astOK := layout.ComputeMetadata(sirProject(), "main")
	require.NotNil(t, md)
	require.True(t, astOK)
	// susceptible<->succumbing, infected<->succumbing, infected<->recovering.
	assert.Len(t, md.Loops, 3)
	for _, l := range md.Loops {
		assert.NotEmpty(t, l.ID)
		assert.NotEmpty(t, l.Variables)
	}
}

func TestComputeMetadataFallsBackToLoopMetadata(t *testing.T) {
	model := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Stock{Name: "pop", Init: datamodel.Scalar{RHS: "100"}, Inflows: []string{"births"}},
			&datamodel.Flow{Name: "births", Eqn: datamodel.Scalar{RHS: "pop * (("}},
		},
		LoopMetadata: []datamodel.LoopMetadata{
			{ID: "r1", Name: "growth", Variables: []string{"pop", "births"}},
			{ID: "r2", Name: "stale", Variables: []string{"pop"}, Deleted: true},
		},
	}
	project, err := datamodel.NewProject(datamodel.Project{Name: "p", Models: []*datamodel.Model{model}})
	require.NoError(t, err)

	md, astOK := layout.ComputeMetadata(project, "main")
	require.NotNil(t, md)
	assert.False(t, astOK)
	require.Len(t, md.Loops, 1)
	assert.Equal(t, "r1", md.Loops[0].ID)
	assert.Equal(t, []string{"pop", "births"}, md.Loops[0].Variables)
}

func TestGenerateLayoutPlacesEveryVariable(t *testing.T) {
	cfg := layout.NewConfig(layout.WithMaxIterations(20))
	view := layout.GenerateLayout(sirProject(), "main", 42, cfg)
	require.NotEmpty(t, view.Elements)

	idents := map[string]bool{}
	for _, el := range view.Elements {
		switch e := el.(type) {
		case *datamodel.StockElement:
			idents[e.Ident] = true
		case *datamodel.FlowElement:
			idents[e.Ident] = true
		case *datamodel.AuxElement:
			idents[e.Ident] = true
		}
	}
	for _, name := range []string{"susceptible", "infected", "recovered", "succumbing", "recovering", "contact_rate"} {
		assert.True(t, idents[name], "missing %s", name)
	}
}

func TestGenerateBestLayoutIsDeterministic(t *testing.T) {
	cfg := layout.NewConfig(layout.WithMaxIterations(10))
	v1 := layout.GenerateBestLayout(sirProject(), "main", cfg)
	v2 := layout.GenerateBestLayout(sirProject(), "main", cfg)
	assert.Equal(t, layout.CountViewCrossings(v1), layout.CountViewCrossings(v2))
}

func TestCountViewCrossingsNoOverlap(t *testing.T) {
	view := &datamodel.View{
		Elements: []datamodel.ViewElement{
			&datamodel.FlowElement{Uid: 1, Points: []datamodel.FlowPoint{{X: 0, Y: 0}, {X: 10, Y: 0}}},
			&datamodel.FlowElement{Uid: 2, Points: []datamodel.FlowPoint{{X: 0, Y: 10}, {X: 10, Y: 10}}},
		},
	}
	assert.Equal(t, 0, layout.CountViewCrossings(view))
}

func TestCountViewCrossingsDetectsCross(t *testing.T) {
	view := &datamodel.View{
		Elements: []datamodel.ViewElement{
			&datamodel.FlowElement{Uid: 1, Points: []datamodel.FlowPoint{{X: 0, Y: 0}, {X: 10, Y: 10}}},
			&datamodel.FlowElement{Uid: 2, Points: []datamodel.FlowPoint{{X: 0, Y: 10}, {X: 10, Y: 0}}},
		},
	}
	assert.Equal(t, 1, layout.CountViewCrossings(view))
}
