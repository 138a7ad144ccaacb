package depgraph

import "github.com/sdforge/sdengine/datamodel"

// rhsTexts returns every right-hand-side expression string an equation
// contributes (one for Scalar/ApplyToAll, one per row for Arrayed).
func rhsTexts(eq datamodel.Equation) []string {
	switch e := eq.(type) {
	case datamodel.Scalar:
		return []string{e.RHS}
	case datamodel.ApplyToAll:
		return []string{e.RHS}
	case datamodel.Arrayed:
		out := make([]string, 0, len(e.Entries))
		for _, row := range e.Entries {
			out = append(out, row.RHS)
		}
		return out
	}
	return nil
}

// initTexts returns every initial-value expression string an equation
// contributes, mirroring rhsTexts but reading the Init field.
func initTexts(eq datamodel.Equation) []string {
	switch e := eq.(type) {
	case datamodel.Scalar:
		if e.Init == "" {
			return nil
		}
		return []string{e.Init}
	case datamodel.ApplyToAll:
		if e.Init == "" {
			return nil
		}
		return []string{e.Init}
	case datamodel.Arrayed:
		var out []string
		for _, row := range e.Entries {
			if row.Init != "" {
				out = append(out, row.Init)
			}
		}
		return out
	}
	return nil
}
