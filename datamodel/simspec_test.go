package datamodel_test

import (
	"testing"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/stretchr/testify/assert"
)

func TestSimSpecValidate(t *testing.T) {
	good := datamodel.SimSpec{Start: 0, Stop: 10, Dt: datamodel.Dt{Value: 0.25}, Method: datamodel.Euler}
	assert.Nil(t, good.Validate())

	badOrder := good
	badOrder.Start, badOrder.Stop = 10, 0
	assert.NotNil(t, badOrder.Validate())

	badDt := good
	badDt.Dt = datamodel.Dt{Value: 0}
	assert.NotNil(t, badDt.Validate())

	save := datamodel.Dt{Value: 1}
	withSave := good
	withSave.SaveStep = &save
	assert.Nil(t, withSave.Validate())

	badSave := datamodel.Dt{Value: 0.3}
	withBadSave := good
	withBadSave.SaveStep = &badSave
	assert.NotNil(t, withBadSave.Validate())
}

func TestDtReciprocal(t *testing.T) {
	d := datamodel.Dt{Value: 4, IsReciprocal: true}
	assert.InDelta(t, 0.25, d.Seconds(), 1e-12)
}

func TestSimSpecSteps(t *testing.T) {
	s := datamodel.SimSpec{Start: 0, Stop: 10, Dt: datamodel.Dt{Value: 1}}
	assert.Equal(t, 10, s.Steps())
	assert.Equal(t, 1, s.SaveStride())
}
