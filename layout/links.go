package layout

import (
	"math"
	"sort"

	"github.com/sdforge/sdengine/datamodel"
)

// routeLinks emits one Link element per non-structural dependency edge in
// the metadata graph (§4.8 step 7): structural stock<->flow pairs are
// already drawn by the flow's polyline/attachment, so only the remaining
// causal edges (aux reads, cross-chain references) get an explicit Link.
// Links point in causal direction (dependency -> dependent). Each gets an
// Arc whose angle reflects the endpoints' relative position; an edge on a
// detected feedback loop has its arc biased away from the loop's centroid,
// scaled by LoopCurvatureFactor and the loop's importance rank (rank 0
// curves hardest).
func (b *builder) routeLinks() []datamodel.ViewElement {
	structural := structuralPairs(b.md)

	type edgeKey struct{ from, to string }
	seen := map[edgeKey]bool{}
	var keys []edgeKey
	for dependent, deps := range b.md.Graph.Deps {
		if _, ok := b.pos[dependent]; !ok {
			continue
		}
		for _, dep := range deps {
			if _, ok := b.pos[dep]; !ok {
				continue
			}
			if structural[edgeKey{dependent, dep}] || structural[edgeKey{dep, dependent}] {
				continue
			}
			k := edgeKey{dep, dependent}
			if seen[k] {
				continue
			}
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})

	loopEdges := b.loopEdgeBias()

	var links []datamodel.ViewElement
	for _, k := range keys {
		from, to := b.pos[k.from], b.pos[k.to]
		angle := math.Atan2(to.Y-from.Y, to.X-from.X) * 180 / math.Pi
		angle += loopEdges[[2]string{k.from, k.to}]
		links = append(links, &datamodel.LinkElement{
			Uid:     b.uidFor("$link_" + k.from + "_" + k.to),
			FromUid: b.uidFor(k.from),
			ToUid:   b.uidFor(k.to),
			Shape:   datamodel.Arc{AngleDegrees: angle},
		})
	}
	return links
}

// loopEdgeBias computes, per causal edge belonging to a detected feedback
// loop, the arc-angle offset that curves the connector away from the
// loop's centroid. An edge shared by several loops takes the bias of the
// most important one (lowest rank).
func (b *builder) loopEdgeBias() map[[2]string]float64 {
	bias := map[[2]string]float64{}
	for rank, loop := range b.md.Loops {
		centroid, ok := b.loopCentroid(loop)
		if !ok {
			continue
		}
		magnitude := b.cfg.LoopCurvatureFactor * 45 / float64(rank+1)
		n := len(loop.Variables)
		for i := 0; i < n; i++ {
			// Loop traversal is dependent -> dependency; the causal edge
			// runs the other way.
			u := loop.Variables[(i+1)%n]
			v := loop.Variables[i]
			key := [2]string{u, v}
			if _, done := bias[key]; done {
				continue
			}
			up, ok1 := b.pos[u]
			vp, ok2 := b.pos[v]
			if !ok1 || !ok2 {
				continue
			}
			mid := point{(up.X + vp.X) / 2, (up.Y + vp.Y) / 2}
			cross := (vp.X-up.X)*(centroid.Y-mid.Y) - (vp.Y-up.Y)*(centroid.X-mid.X)
			if cross > 0 {
				bias[key] = -magnitude
			} else {
				bias[key] = magnitude
			}
		}
	}
	return bias
}

func (b *builder) loopCentroid(loop FeedbackLoop) (point, bool) {
	var c point
	n := 0
	for _, name := range loop.Variables {
		if p, ok := b.pos[name]; ok {
			c.X += p.X
			c.Y += p.Y
			n++
		}
	}
	if n == 0 {
		return point{}, false
	}
	c.X /= float64(n)
	c.Y /= float64(n)
	return c, true
}

// structuralPairs returns every stock<->flow adjacency edge already drawn
// by a flow's own polyline, so routeLinks doesn't double-draw it as a
// separate Link.
func structuralPairs(md *Metadata) map[struct{ from, to string }]bool {
	out := map[struct{ from, to string }]bool{}
	for stock, flows := range md.StockToInflows {
		for _, f := range flows {
			out[struct{ from, to string }{stock, f}] = true
		}
	}
	for stock, flows := range md.StockToOutflows {
		for _, f := range flows {
			out[struct{ from, to string }{stock, f}] = true
		}
	}
	return out
}
