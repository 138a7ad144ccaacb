package ident_test

import (
	"testing"

	"github.com/sdforge/sdengine/ident"
	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Susceptible", "susceptible"},
		{"spaces", "birth rate", "birth_rate"},
		{"multi space", "net   flow   rate", "net_flow_rate"},
		{"quoted", `"my var"`, "my_var"},
		{"single quoted", "'my var'", "my_var"},
		{"trailing space", "foo ", "foo"},
		{"tabs and newlines", "a\tb\nc", "a_b_c"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ident.Canonical(tc.in))
		})
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	inputs := []string{"Susceptible", "birth rate", `"my var"`, "a_b_c", ""}
	for _, in := range inputs {
		once := ident.Canonical(in)
		twice := ident.Canonical(once)
		assert.Equal(t, once, twice, "canonical(%q) not idempotent", in)
	}
}

func TestSourceRepr(t *testing.T) {
	assert.Equal(t, "\"birth rate\"", ident.SourceRepr("birth_rate"))
	assert.Equal(t, "susceptible", ident.SourceRepr("susceptible"))
}

func TestEqual(t *testing.T) {
	assert.True(t, ident.Equal("Birth Rate", "birth_rate"))
	assert.False(t, ident.Equal("Birth Rate", "death_rate"))
}
