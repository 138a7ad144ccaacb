package depgraph

import (
	"sort"
	"strings"

	"github.com/sdforge/sdengine/errs"
)

// tarjanSCC returns the strongly connected components of g.Deps, each as a
// slice of canonical variable names, in the order Tarjan's algorithm
// discovers them (reverse topological order of the condensation).
func tarjanSCC(g *Graph) [][]string {
	index := 0
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var sccs [][]string

	// process nodes in sorted order for deterministic output, even though
	// SCC membership itself never depends on visitation order.
	nodes := append([]string{}, g.Names...)
	sort.Strings(nodes)

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Deps[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, v := range nodes {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}
	return sccs
}

// DetectCycles runs Tarjan's SCC over the dependency graph and reports a
// CircularDependency error for each nontrivial component whose cycle is
// not entirely broken by stock references, per §4.4: an edge whose target
// is a stock carries no same-step ordering constraint, since the stock's
// value going into this step was already fixed by the previous
// integration, not by anything computed this step.
func DetectCycles(g *Graph, modelName string) *errs.List {
	out := &errs.List{}
	for _, scc := range tarjanSCC(g) {
		if len(scc) == 1 {
			v := scc[0]
			if hasSelfLoop(g, v) && !g.Stocks[v] {
				out.Add(errs.Newf(errs.CircularDependency, "variable %q depends on itself", v).At(modelName, v, 0, 0))
			}
			continue
		}
		if cycleSurvivesStockBreaking(g, scc) {
			out.Add(errs.Newf(errs.CircularDependency, "circular dependency among variables: %s", strings.Join(scc, ", ")).
				At(modelName, scc[0], 0, 0))
		}
	}
	if out.Empty() {
		return nil
	}
	return out
}

func hasSelfLoop(g *Graph, v string) bool {
	for _, w := range g.Deps[v] {
		if w == v {
			return true
		}
	}
	return false
}

// cycleSurvivesStockBreaking reports whether a cycle remains among scc's
// members once every edge targeting a stock is removed.
func cycleSurvivesStockBreaking(g *Graph, scc []string) bool {
	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}
	reduced := map[string][]string{}
	for _, n := range scc {
		for _, w := range g.Deps[n] {
			if !members[w] {
				continue
			}
			if g.Stocks[w] {
				continue // edge broken: dependency on a stock's known-already value
			}
			reduced[n] = append(reduced[n], w)
		}
	}

	visiting := map[string]int{} // 0 unvisited, 1 in progress, 2 done
	var hasCycle bool
	var dfs func(v string)
	dfs = func(v string) {
		visiting[v] = 1
		for _, w := range reduced[v] {
			switch visiting[w] {
			case 0:
				dfs(w)
			case 1:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		visiting[v] = 2
	}
	for _, n := range scc {
		if visiting[n] == 0 {
			dfs(n)
		}
		if hasCycle {
			return true
		}
	}
	return hasCycle
}
