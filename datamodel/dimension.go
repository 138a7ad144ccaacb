package datamodel

import "github.com/sdforge/sdengine/errs"

// Dimension is a named set of ordered element identifiers, or an integer
// size (for anonymous numeric subranges), optionally paired with an
// equivalence partner via MapsTo.
type Dimension struct {
	Name     string
	Elements []string // empty when Size is used instead
	Size     int       // 0 when Elements is used instead
	MapsTo   string    // optional equivalence partner dimension name
}

// Len returns the number of elements in the dimension, whichever form it
// was declared in.
func (d Dimension) Len() int {
	if len(d.Elements) > 0 {
		return len(d.Elements)
	}
	return d.Size
}

// Keys returns the ordered subscript keys for this dimension: either the
// declared element identifiers, or "1".."N" for a sized dimension.
func (d Dimension) Keys() []string {
	if len(d.Elements) > 0 {
		return d.Elements
	}
	out := make([]string, d.Size)
	for i := range out {
		out[i] = itoa(i + 1)
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Validate enforces that element identifiers are unique within the
// dimension (spec.md §3 invariant).
func (d Dimension) Validate() *errs.Error {
	seen := make(map[string]bool, len(d.Elements))
	for _, e := range d.Elements {
		if seen[e] {
			return errs.Newf(errs.BadDimensionName, "duplicate element %q in dimension %q", e, d.Name)
		}
		seen[e] = true
	}
	return nil
}

// DimensionSet resolves dimension names to their definitions. A name
// declared more than once keeps its first declaration. MapsTo is stored
// with each Dimension but not consulted, so divergent maps_to targets are
// not reconciled.
type DimensionSet struct {
	byName map[string]Dimension
	order  []string
}

// NewDimensionSet builds a DimensionSet from an ordered dimension list,
// keeping the first declaration of any name encountered twice.
func NewDimensionSet(dims []Dimension) *DimensionSet {
	ds := &DimensionSet{byName: make(map[string]Dimension, len(dims))}
	for _, d := range dims {
		if _, exists := ds.byName[d.Name]; exists {
			continue // first declaration wins
		}
		ds.byName[d.Name] = d
		ds.order = append(ds.order, d.Name)
	}
	return ds
}

// Get returns the dimension by name and whether it was found.
func (ds *DimensionSet) Get(name string) (Dimension, bool) {
	d, ok := ds.byName[name]
	return d, ok
}

// Names returns the dimension names in first-declaration order.
func (ds *DimensionSet) Names() []string {
	return ds.order
}
