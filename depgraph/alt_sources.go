package depgraph

import (
	"regexp"
	"sort"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/ident"
)

// FromCompiled builds a Graph from a model whose equations parse cleanly,
// i.e. the AST-derived path `original_source`'s compute_metadata prefers
// whenever the model actually compiles. It is Build under another name:
// the two are the same operation, but the layout engine (§4.8 step 1)
// calls this one to make the "AST path, not the text fallback" choice
// explicit at the call site.
func FromCompiled(model *datamodel.Model) (*Graph, *errs.List) {
	return Build(model)
}

// FromEquationText builds a best-effort Graph by word-boundary string
// search instead of parsing, for a model whose equations don't all parse
// (Build returned a non-empty error list). It never fails: a name that
// can't be found anywhere just gets no edges. This mirrors
// `original_source`'s extract_equation_deps/contains_ident fallback,
// which compute_metadata uses so the layout engine still has *some*
// adjacency to work with for a model that doesn't fully compile.
func FromEquationText(model *datamodel.Model) *Graph {
	g := &Graph{
		Deps:   map[string][]string{},
		RDeps:  map[string][]string{},
		Init:   map[string][]string{},
		Stocks: map[string]bool{},
	}

	names := make([]string, 0, len(model.Variables))
	for _, v := range model.Variables {
		name := ident.Canonical(v.Ident())
		g.Names = append(g.Names, name)
		names = append(names, name)
		if _, ok := v.(*datamodel.Stock); ok {
			g.Stocks[name] = true
		}
	}
	sort.Strings(names)

	wordRe := make(map[string]*regexp.Regexp, len(names))
	for _, n := range names {
		wordRe[n] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(n) + `\b`)
	}

	addDep := func(from, to string) {
		if to == from {
			return
		}
		for _, existing := range g.Deps[from] {
			if existing == to {
				return
			}
		}
		g.Deps[from] = append(g.Deps[from], to)
		g.RDeps[to] = append(g.RDeps[to], from)
	}

	containsIdent := func(text, name string) bool {
		return wordRe[name].MatchString(text)
	}

	scan := func(name string, texts []string) {
		for _, text := range texts {
			for _, candidate := range names {
				if candidate == name || builtinNames[candidate] {
					continue
				}
				if containsIdent(text, candidate) {
					addDep(name, candidate)
				}
			}
		}
	}

	for _, v := range model.Variables {
		name := ident.Canonical(v.Ident())
		switch t := v.(type) {
		case *datamodel.Stock:
			for _, flow := range t.Inflows {
				addDep(name, ident.Canonical(flow))
			}
			for _, flow := range t.Outflows {
				addDep(name, ident.Canonical(flow))
			}
			if t.Init != nil {
				scan(name, rhsTexts(t.Init))
			}
		case *datamodel.Flow:
			scan(name, rhsTexts(t.Eqn))
		case *datamodel.Aux:
			scan(name, rhsTexts(t.Eqn))
		case *datamodel.Module:
			for _, b := range t.Bindings {
				addDep(name, ident.Canonical(b.Src))
			}
		}
	}

	return g
}
