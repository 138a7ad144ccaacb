package vm

import (
	"sort"

	"github.com/sdforge/sdengine/compile"
	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/ident"
)

// Overrides is the VM's parameter-sweep mechanism: a map from variable
// name to a forced f64 value, re-applied after the initial pass and after
// every integration step, before saving (§4.6). Overrides persist across
// Reset.
type Overrides struct {
	values map[string]float64
}

// NewOverrides returns an empty override set.
func NewOverrides() *Overrides {
	return &Overrides{values: map[string]float64{}}
}

// Set forces name to value on every subsequent step.
func (o *Overrides) Set(name string, value float64) {
	o.values[ident.Canonical(name)] = value
}

// Clear removes a forced value, letting name's compiled equation resume
// driving it.
func (o *Overrides) Clear(name string) {
	delete(o.values, ident.Canonical(name))
}

// ClearAll removes every override.
func (o *Overrides) ClearAll() {
	o.values = map[string]float64{}
}

// Entry is one name/value pair of a Snapshot, yaml-tagged so scenario
// fixtures round-trip through gopkg.in/yaml.v3 as a flat list (a plain map
// would serialize fine too, but a list preserves a stable key order across
// marshal/unmarshal cycles for diff-friendly fixture files).
type Entry struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

// Snapshot returns the current overrides as an ordered, yaml-serializable
// slice.
func (o *Overrides) Snapshot() []Entry {
	names := make([]string, 0, len(o.values))
	for n := range o.values {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		out = append(out, Entry{Name: n, Value: o.values[n]})
	}
	return out
}

// LoadSnapshot replaces the override set with entries (the inverse of
// Snapshot), e.g. after unmarshaling a yaml fixture.
func LoadSnapshot(entries []Entry) *Overrides {
	o := NewOverrides()
	for _, e := range entries {
		o.Set(e.Name, e.Value)
	}
	return o
}

// Validate reports a BadOverride error for every override name program
// does not declare, so a caller can surface a misspelled parameter-sweep
// target before running rather than have it silently ignored.
func (o *Overrides) Validate(p *compile.Program) *errs.List {
	var names []string
	for n := range o.values {
		names = append(names, n)
	}
	sort.Strings(names)
	list := &errs.List{}
	for _, n := range names {
		if _, ok := p.Offsets[n]; !ok {
			list.Add(errs.Newf(errs.BadOverride, "override names unknown variable %q", n).At(p.ModelName, n, 0, 0))
		}
	}
	if list.Empty() {
		return nil
	}
	return list
}

// get returns the forced value for name, canonicalizing first.
func (o *Overrides) get(name string) (float64, bool) {
	v, ok := o.values[ident.Canonical(name)]
	return v, ok
}

// apply writes every override's value into slots, resolving each name
// against the program's offset table. Names the program doesn't declare
// are silently ignored rather than erroring, so an override set crafted
// for a richer model still runs against a smaller one during testing.
func (o *Overrides) apply(p *compile.Program, slots []float64) {
	for name, val := range o.values {
		if off, ok := p.Offsets[name]; ok {
			slots[off] = val
		}
	}
}
