package datamodel

// Equation is the tagged union of the three equation shapes a variable can
// carry: a plain scalar formula, a formula applied identically across a
// dimension, or a fully arrayed table keyed by subscript.
type Equation interface {
	isEquation()
}

// Scalar is a single right-hand-side expression, with an optional separate
// initial-value expression (used by Stock.Init when the stock has a
// distinct INTEG init clause already split out by the parser).
type Scalar struct {
	RHS  string
	Init string // optional; empty when not applicable
}

func (Scalar) isEquation() {}

// ApplyToAll is syntactic sugar (per spec.md §9) for the same RHS expanded
// across every element of one or more dimensions; the compiler lowers it
// to an Arrayed table.
type ApplyToAll struct {
	Dimensions []string
	RHS        string
	Init       string
}

func (ApplyToAll) isEquation() {}

// ArrayedEntry is one subscript-keyed row of an Arrayed equation.
type ArrayedEntry struct {
	Key  []string // subscript tuple, one element per dimension, row-major order
	RHS  string
	Init string
	GF   *GraphicalFunction
}

// Arrayed is a fully explicit per-subscript table of equations.
type Arrayed struct {
	Dimensions []string
	Entries    []ArrayedEntry
}

func (Arrayed) isEquation() {}

// ExpandApplyToAll lowers an ApplyToAll equation into an equivalent Arrayed
// equation via the Cartesian product of its dimensions, first dimension
// outermost (row-major), per spec.md §9.
func ExpandApplyToAll(a ApplyToAll, dims *DimensionSet) (*Arrayed, bool) {
	keyTuples := cartesianProduct(a.Dimensions, dims)
	if keyTuples == nil {
		return nil, false
	}
	out := &Arrayed{Dimensions: a.Dimensions}
	for _, key := range keyTuples {
		out.Entries = append(out.Entries, ArrayedEntry{Key: key, RHS: a.RHS, Init: a.Init})
	}
	return out, true
}

func cartesianProduct(dimNames []string, dims *DimensionSet) [][]string {
	keysPerDim := make([][]string, len(dimNames))
	for i, name := range dimNames {
		d, ok := dims.Get(name)
		if !ok {
			return nil
		}
		keysPerDim[i] = d.Keys()
	}
	result := [][]string{{}}
	for _, keys := range keysPerDim {
		var next [][]string
		for _, prefix := range result {
			for _, k := range keys {
				tuple := append(append([]string{}, prefix...), k)
				next = append(next, tuple)
			}
		}
		result = next
	}
	return result
}
