package datamodel_test

import (
	"testing"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectDefaultsSchemaVersion(t *testing.T) {
	p, err := datamodel.NewProject(datamodel.Project{Name: "demo"})
	require.NoError(t, err)
	assert.Equal(t, datamodel.DefaultSchemaVersion, p.SchemaVersion)
}

func TestNewProjectRejectsBadSchemaVersion(t *testing.T) {
	_, err := datamodel.NewProject(datamodel.Project{Name: "demo", SchemaVersion: "not-a-version"})
	require.Error(t, err)
}

func TestNewProjectRejectsDuplicateModelNames(t *testing.T) {
	_, err := datamodel.NewProject(datamodel.Project{
		Models: []*datamodel.Model{
			{Name: "Sub"},
			{Name: "sub"}, // canonically identical
		},
	})
	require.Error(t, err)
	sdErr, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.BadModelName, sdErr.Kind)
}

func TestMainModelPrefersNamedMain(t *testing.T) {
	main := &datamodel.Model{Name: "main"}
	other := &datamodel.Model{Name: "sub"}
	p, err := datamodel.NewProject(datamodel.Project{Models: []*datamodel.Model{other, main}})
	require.NoError(t, err)
	assert.Same(t, main, p.MainModel())
}

func TestMainModelFallsBackToFirst(t *testing.T) {
	first := &datamodel.Model{Name: "alpha"}
	second := &datamodel.Model{Name: "beta"}
	p, err := datamodel.NewProject(datamodel.Project{Models: []*datamodel.Model{first, second}})
	require.NoError(t, err)
	assert.Same(t, first, p.MainModel())
}

func TestModelValidateDuplicateVariable(t *testing.T) {
	m := &datamodel.Model{
		Name: "main",
		Variables: []datamodel.Variable{
			&datamodel.Aux{Name: "Birth Rate"},
			&datamodel.Aux{Name: "birth_rate"},
		},
	}
	list := m.Validate()
	require.False(t, list.Empty())
	assert.Equal(t, errs.DuplicateVariable, list.Errors[0].Kind)
}
