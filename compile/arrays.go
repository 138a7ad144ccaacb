package compile

import (
	"strings"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/ident"
)

// arraySep joins a base variable name and its subscript key tuple into the
// synthesized scalar variable name the rest of the pipeline compiles
// against, e.g. "inventory" x ["east", "retail"] -> "inventory#east,retail".
const arraySep = "#"

func synthName(base string, key []string) string {
	return base + arraySep + strings.Join(key, ",")
}

// expandModel flattens every ApplyToAll/Arrayed variable in model into one
// synthetic Scalar variable per subscript entry, so the rest of the
// compiler (and depgraph) only ever has to deal with scalar equations.
// It also returns, for every base name that was arrayed, the declared
// dimension names — used to validate `ident[a, b]` subscript references
// at their use site.
func expandModel(model *datamodel.Model, dims *datamodel.DimensionSet) (*datamodel.Model, map[string][]string) {
	dimensionsOf := map[string][]string{}
	out := &datamodel.Model{Name: model.Name, Views: model.Views, LoopMetadata: model.LoopMetadata, SimSpecs: model.SimSpecs}

	for _, v := range model.Variables {
		switch t := v.(type) {
		case *datamodel.Stock:
			arr, dimNames, ok := arrayedOf(t.Init, dims)
			if !ok {
				out.Variables = append(out.Variables, t)
				continue
			}
			dimensionsOf[ident.Canonical(t.Name)] = dimNames
			for _, entry := range arr.Entries {
				name := synthName(ident.Canonical(t.Name), entry.Key)
				out.Variables = append(out.Variables, &datamodel.Stock{
					Name: name, Init: datamodel.Scalar{RHS: entry.Init, Init: entry.Init},
					Inflows: t.Inflows, Outflows: t.Outflows, NonNegative: t.NonNegative, GF: entry.GF,
				})
			}
		case *datamodel.Flow:
			arr, dimNames, ok := arrayedOf(t.Eqn, dims)
			if !ok {
				out.Variables = append(out.Variables, t)
				continue
			}
			dimensionsOf[ident.Canonical(t.Name)] = dimNames
			for _, entry := range arr.Entries {
				name := synthName(ident.Canonical(t.Name), entry.Key)
				out.Variables = append(out.Variables, &datamodel.Flow{
					Name: name, Eqn: datamodel.Scalar{RHS: entry.RHS, Init: entry.Init}, GF: coalesceGF(entry.GF, t.GF), NonNegative: t.NonNegative,
				})
			}
		case *datamodel.Aux:
			arr, dimNames, ok := arrayedOf(t.Eqn, dims)
			if !ok {
				out.Variables = append(out.Variables, t)
				continue
			}
			dimensionsOf[ident.Canonical(t.Name)] = dimNames
			for _, entry := range arr.Entries {
				name := synthName(ident.Canonical(t.Name), entry.Key)
				out.Variables = append(out.Variables, &datamodel.Aux{
					Name: name, Eqn: datamodel.Scalar{RHS: entry.RHS, Init: entry.Init}, GF: coalesceGF(entry.GF, t.GF),
				})
			}
		default:
			out.Variables = append(out.Variables, v)
		}
	}
	return out, dimensionsOf
}

func coalesceGF(entryGF, fallback *datamodel.GraphicalFunction) *datamodel.GraphicalFunction {
	if entryGF != nil {
		return entryGF
	}
	return fallback
}

// arrayedOf normalizes an equation to its fully expanded Arrayed form,
// reporting ok=false for a plain Scalar equation.
func arrayedOf(eq datamodel.Equation, dims *datamodel.DimensionSet) (*datamodel.Arrayed, []string, bool) {
	switch e := eq.(type) {
	case datamodel.Arrayed:
		return &e, e.Dimensions, true
	case datamodel.ApplyToAll:
		if dims == nil {
			return nil, nil, false
		}
		arr, ok := datamodel.ExpandApplyToAll(e, dims)
		if !ok {
			return nil, nil, false
		}
		return arr, e.Dimensions, true
	}
	return nil, nil, false
}
