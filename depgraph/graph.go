// Package depgraph resolves variable equations into a dependency graph,
// detects circular dependencies via Tarjan's SCC algorithm, and produces
// the two evaluation orderings (Initials, Flows) the compiler and VM rely
// on. Grounded on the teacher's own adjacency-map-and-BFS style used to
// build and traverse its IRGraph (analyzer/graph_exporter.go,
// analyzer/analyzer.go's computeTransitiveClosure), generalized here from
// identifier data-flow edges to SD variable dependency edges.
package depgraph

import (
	"sort"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/errs"
	"github.com/sdforge/sdengine/ident"
	"github.com/sdforge/sdengine/parser"
)

// Graph holds the direct-dependency adjacency for one model and its
// transpose, plus which canonical names are stocks.
type Graph struct {
	Deps   map[string][]string // v -> direct dependencies of v (regular/derivative equation)
	RDeps  map[string][]string // transpose of Deps
	Init   map[string][]string // v -> direct dependencies of v's initial-value equation
	Stocks map[string]bool
	Names  []string // all canonical variable names, stable input order
}

// Build collects free identifiers from every variable's equation(s),
// resolves module-qualified references, and assembles the dependency
// graph for model. Parse errors on any equation are collected into the
// returned list rather than aborting early.
func Build(model *datamodel.Model) (*Graph, *errs.List) {
	g := &Graph{
		Deps:   map[string][]string{},
		RDeps:  map[string][]string{},
		Init:   map[string][]string{},
		Stocks: map[string]bool{},
	}
	errList := &errs.List{}

	for _, v := range model.Variables {
		name := ident.Canonical(v.Ident())
		g.Names = append(g.Names, name)
		if _, ok := v.(*datamodel.Stock); ok {
			g.Stocks[name] = true
		}
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
	addInitDep := func(from, to string) {
		if to == from {
			return
		}
		for _, existing := range g.Init[from] {
			if existing == to {
				return
			}
		}
		g.Init[from] = append(g.Init[from], to)
	}

	collect := func(model *datamodel.Model, name, text string) []string {
		expr, perr := parser.Parse(text, parser.Origin{Model: model.Name, Variable: name})
		if perr != nil {
			errList.Add(perr)
			return nil
		}
		free := FreeIdents(expr)
		out := make([]string, 0, len(free))
		for _, f := range free {
			out = append(out, ResolveDependency(model, f))
		}
		return out
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
				for _, text := range initOrRhsTexts(t.Init) {
					for _, dep := range collect(model, name, text) {
						addInitDep(name, dep)
					}
				}
			}
		case *datamodel.Flow:
			for _, text := range rhsTexts(t.Eqn) {
				for _, dep := range collect(model, name, text) {
					addDep(name, dep)
				}
			}
			for _, text := range initTextsOrFallback(t.Eqn) {
				for _, dep := range collect(model, name, text) {
					addInitDep(name, dep)
				}
			}
		case *datamodel.Aux:
			for _, text := range rhsTexts(t.Eqn) {
				for _, dep := range collect(model, name, text) {
					addDep(name, dep)
				}
			}
			for _, text := range initTextsOrFallback(t.Eqn) {
				for _, dep := range collect(model, name, text) {
					addInitDep(name, dep)
				}
			}
		case *datamodel.Module:
			for _, b := range t.Bindings {
				addDep(name, ResolveDependency(model, b.Src))
				addInitDep(name, ResolveDependency(model, b.Src))
			}
		}
	}

	if errList.Empty() {
		return g, nil
	}
	return g, errList
}

// initOrRhsTexts returns a Stock's Init equation RHS/rows; stocks only
// ever carry an Init equation (no separate RHS), so this is just rhsTexts
// on that equation.
func initOrRhsTexts(eq datamodel.Equation) []string {
	return rhsTexts(eq)
}

// initTextsOrFallback returns a non-stock variable's distinct Init
// expressions, falling back to its regular RHS when no Init override was
// given (the common case: initial value is the same formula evaluated at
// t=start).
func initTextsOrFallback(eq datamodel.Equation) []string {
	if texts := initTexts(eq); len(texts) > 0 {
		return texts
	}
	return rhsTexts(eq)
}

// sortedNames returns names sorted for deterministic iteration.
func sortedNames(names map[string]bool) []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
