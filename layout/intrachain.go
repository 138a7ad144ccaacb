package layout

import (
	"math"
	"sort"

	"github.com/sdforge/sdengine/datamodel"
)

// layoutChains places every stock and flow belonging to a chain, given
// the chain's own center position from positionChains (§4.8 step 3): BFS
// from the alphabetically-first stock, downstream stocks offset
// horizontally by stock_width+horizontal_spacing, flows at the midpoint
// of their connected stocks. Returns each variable's position and which
// chain (rigid group) it belongs to, keyed by canonical variable name.
func layoutChains(md *Metadata, chainCenters []point, cfg Config) (map[string]point, map[string]int) {
	pos := map[string]point{}
	group := map[string]int{}

	for ci, chain := range md.Chains {
		center := point{0, 0}
		if ci < len(chainCenters) {
			center = chainCenters[ci]
		}
		if len(chain.Stocks) == 0 {
			// isolated flow(s) with no stock neighbor: place at the chain
			// center directly.
			for _, f := range chain.Flows {
				pos[f] = center
				group[f] = ci
			}
			continue
		}

		adj := map[string][]string{}
		for _, s := range chain.Stocks {
			for _, f := range md.StockToOutflows[s] {
				adj[s] = append(adj[s], f)
				adj[f] = append(adj[f], s)
			}
			for _, f := range md.StockToInflows[s] {
				adj[s] = append(adj[s], f)
				adj[f] = append(adj[f], s)
			}
		}

		stocks := append([]string(nil), chain.Stocks...)
		sort.Strings(stocks)
		start := stocks[0]

		visited := map[string]bool{start: true}
		order := []string{start}
		queue := []string{start}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			neighbors := append([]string(nil), adj[n]...)
			sort.Strings(neighbors)
			for _, nb := range neighbors {
				if !visited[nb] {
					visited[nb] = true
					order = append(order, nb)
					queue = append(queue, nb)
				}
			}
		}

		offset := cfg.StockWidth + cfg.HorizontalSpacing
		idx := 0
		for _, n := range order {
			if !isStock(n, md) {
				continue
			}
			pos[n] = point{center.X + float64(idx)*offset, center.Y}
			group[n] = ci
			idx++
		}

		for _, f := range chain.Flows {
			src, hasSrc := pos[nearestStock(f, md, true)]
			dst, hasDst := pos[nearestStock(f, md, false)]
			switch {
			case hasSrc && hasDst:
				pos[f] = point{X: (src.X + dst.X) / 2, Y: center.Y}
			case hasSrc:
				pos[f] = point{X: src.X + offset/2, Y: center.Y}
			case hasDst:
				pos[f] = point{X: dst.X - offset/2, Y: center.Y}
			default:
				pos[f] = center
			}
			group[f] = ci
		}
	}

	return pos, group
}

func isStock(name string, md *Metadata) bool {
	_, a := md.StockToInflows[name]
	_, b := md.StockToOutflows[name]
	return a || b
}

// nearestStock returns the stock a flow f drains (fromSource=true, the
// flow's source) or fills (fromSource=false, the flow's sink) by
// scanning the chain adjacency tables; returns "" if f has no such stock
// (the clamp placement for absent source/sink is a CloudElement, added
// during rendering).
func nearestStock(f string, md *Metadata, fromSource bool) string {
	for stock, flows := range md.StockToOutflows {
		for _, fl := range flows {
			if fl == f && fromSource {
				return stock
			}
		}
	}
	for stock, flows := range md.StockToInflows {
		for _, fl := range flows {
			if fl == f && !fromSource {
				return stock
			}
		}
	}
	return ""
}

// placeAuxiliaries seeds a ring position for every Aux and Module variable
// not already placed by layoutChains: HorizontalSpacing away from its first
// already-placed dependency (else its first already-placed dependent), or
// from the global origin when neither is placed, at an angle spread over
// all unplaced variables in name order. The ring is not centered on a
// chain's center.
func placeAuxiliaries(model *datamodel.Model, md *Metadata, pos map[string]point, group map[string]int, cfg Config) {
	var unplaced []string
	for _, v := range model.Variables {
		name := v.Ident()
		switch v.(type) {
		case *datamodel.Aux, *datamodel.Module:
			if _, ok := pos[name]; !ok {
				unplaced = append(unplaced, name)
			}
		}
	}
	sort.Strings(unplaced)

	for i, name := range unplaced {
		center := nearestChainCenter(name, md, pos, group)
		angle := 2 * math.Pi * float64(i) / float64(max(1, len(unplaced)))
		r := cfg.HorizontalSpacing
		pos[name] = point{center.X + r*math.Cos(angle), center.Y + r*math.Sin(angle)}
		group[name] = -1
	}
}

func nearestChainCenter(name string, md *Metadata, pos map[string]point, group map[string]int) point {
	for _, dep := range md.Graph.Deps[name] {
		if p, ok := pos[dep]; ok {
			return p
		}
	}
	for _, dep := range md.Graph.RDeps[name] {
		if p, ok := pos[dep]; ok {
			return p
		}
	}
	return point{0, 0}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// runAuxSFDP runs SFDP a second time over every placed node, with each
// chain's members rigidly grouped (translation only), so auxiliaries
// settle relative to fixed chains rather than dragging chains apart
// (§4.8 step 4).
func runAuxSFDP(model *datamodel.Model, md *Metadata, pos map[string]point, group map[string]int, cfg Config) {
	var names []string
	for _, v := range model.Variables {
		if _, ok := pos[v.Ident()]; ok {
			names = append(names, v.Ident())
		}
	}
	sort.Strings(names)
	index := make(map[string]int, len(names))
	nodes := make([]sfdpNode, len(names))
	for i, n := range names {
		index[n] = i
		nodes[i] = sfdpNode{ID: n, Pos: pos[n], RigidGroup: group[n]}
	}

	var edges []sfdpEdge
	seen := map[[2]int]bool{}
	for from, deps := range md.Graph.Deps {
		fi, ok := index[from]
		if !ok {
			continue
		}
		for _, to := range deps {
			ti, ok := index[to]
			if !ok || fi == ti {
				continue
			}
			key := [2]int{minInt(fi, ti), maxInt(fi, ti)}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, sfdpEdge{A: fi, B: ti, Weight: 1})
		}
	}

	placed := runSFDP(nodes, edges, cfg, cfg.MaxIterations/2)
	for i, n := range names {
		pos[n] = placed[i].Pos
	}
}
