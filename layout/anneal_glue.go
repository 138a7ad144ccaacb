package layout

import (
	"sort"

	"github.com/sdforge/sdengine/datamodel"
)

// annealView runs simulated annealing over b's current node positions,
// re-rendering the view on every candidate move to recount crossings (via
// CountViewCrossings), and returns the view for the best arrangement
// found (§4.8 step 5).
func annealView(b *builder, _ *datamodel.View, cfg Config, seed int64) *datamodel.View {
	names := make([]string, 0, len(b.pos))
	for n := range b.pos {
		names = append(names, n)
	}
	sort.Strings(names)

	nodes := make([]annealNode, len(names))
	for i, n := range names {
		nodes[i] = annealNode{ID: n, Pos: b.pos[n], IsChain: b.chain[n] >= 0}
	}

	render := func(candidate []annealNode) *datamodel.View {
		scratch := map[string]point{}
		for _, c := range candidate {
			scratch[c.ID] = c.Pos
		}
		sub := &builder{project: b.project, model: b.model, md: b.md, pos: scratch, chain: b.chain, cfg: b.cfg}
		return sub.render()
	}

	best := anneal(nodes, render, cfg, seed)
	for _, c := range best {
		b.pos[c.ID] = c.Pos
	}
	return b.render()
}
