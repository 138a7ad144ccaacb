package depgraph

import "sort"

// FlowsOrder returns the non-stock variables of g in an order such that
// each appears after all of its direct (non-stock) dependencies, per
// §4.4's Flows ordering. Stocks are excluded: a reference to a stock's
// current value needs no ordering edge, since that value was already
// fixed by the prior integration step.
func FlowsOrder(g *Graph) []string {
	nonStock := map[string]bool{}
	for _, n := range g.Names {
		if !g.Stocks[n] {
			nonStock[n] = true
		}
	}
	edges := map[string][]string{}
	for n := range nonStock {
		for _, dep := range g.Deps[n] {
			if nonStock[dep] {
				edges[n] = append(edges[n], dep)
			}
		}
	}
	return topoSort(sortedNames(nonStock), edges)
}

// InitialsOrder returns every variable of g ordered so that each appears
// after all of its initial-value dependencies, per §4.4's Initials
// ordering. In the common case a stock's Init expression references only
// parameters/auxiliaries with no remaining dependencies, so it sorts to
// the front as a de facto leaf; when a stock's Init does reference an
// auxiliary, that auxiliary is correctly scheduled first instead of
// unconditionally pinning every stock to position zero.
func InitialsOrder(g *Graph) []string {
	all := map[string]bool{}
	for _, n := range g.Names {
		all[n] = true
	}
	edges := map[string][]string{}
	for n := range all {
		for _, dep := range g.Init[n] {
			if all[dep] {
				edges[n] = append(edges[n], dep)
			}
		}
	}
	return topoSort(sortedNames(all), edges)
}

// topoSort performs Kahn's algorithm with deterministic tie-breaking
// (lowest name first) so the same graph always yields the same order.
// Nodes involved in an unresolved cycle (which DetectCycles should have
// already reported) are appended in sorted order at the end rather than
// causing a panic, so ordering remains total even over a model with
// reported errors.
func topoSort(nodes []string, edges map[string][]string) []string {
	// remaining[n] counts how many not-yet-emitted dependencies n still
	// has; n becomes ready once every dependency it names has been
	// emitted.
	remaining := map[string]int{}
	dependents := map[string][]string{} // dep -> nodes that require dep
	for _, n := range nodes {
		remaining[n] = len(edges[n])
		for _, dep := range edges[n] {
			dependents[dep] = append(dependents[dep], n)
		}
	}

	var ready []string
	for _, n := range nodes {
		if remaining[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	var out []string
	emitted := map[string]bool{}
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		if emitted[n] {
			continue
		}
		emitted[n] = true
		out = append(out, n)
		for _, dependent := range dependents[n] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}
	if len(out) < len(nodes) {
		for _, n := range nodes {
			if !emitted[n] {
				out = append(out, n)
			}
		}
	}
	return out
}
