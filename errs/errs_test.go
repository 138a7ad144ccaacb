package errs_test

import (
	"errors"
	"testing"

	"github.com/sdforge/sdengine/errs"
	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	e := errs.New(errs.CircularDependency, "x depends on y depends on x").At("main", "x", 0, 5)
	assert.Contains(t, e.Error(), "CircularDependency")
	assert.Contains(t, e.Error(), "main::x")
	assert.Contains(t, e.Error(), "@0-5")
}

func TestErrorIsKind(t *testing.T) {
	e := errs.New(errs.BadBuiltinArgs, "wrong arity")
	assert.True(t, errors.Is(e, errs.New(errs.BadBuiltinArgs, "")))
	assert.False(t, errors.Is(e, errs.New(errs.Generic, "")))
}

func TestErrorWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := errs.New(errs.Generic, "wrapped").Wrap(cause)
	assert.Same(t, cause, errors.Unwrap(e))
}

func TestListCollectsAll(t *testing.T) {
	var list errs.List
	list.Add(errs.New(errs.EmptyEquation, "a"))
	list.Add(errs.New(errs.ExpectedNumber, "b"))
	list.Add(nil)
	assert.Len(t, list.Errors, 2)
	assert.False(t, list.Empty())
	assert.Len(t, list.ByKind(errs.EmptyEquation), 1)
}
