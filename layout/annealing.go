package layout

import (
	"math"
	"math/rand"

	"github.com/sdforge/sdengine/datamodel"
)

// segment is one straight line-segment of a rendered View, used by
// CountViewCrossings; flows contribute one segment per consecutive pair
// of polyline points, links contribute one segment per endpoint pair (an
// Arc/MultiPoint's approximate chord, since exact crossing counting on
// curved paths is a rendering-fidelity concern out of this package's
// scope).
type segment struct{ X1, Y1, X2, Y2 float64 }

// CountViewCrossings counts the pairwise intersections between every
// segment-shaped element of view: Flow polylines and Link connectors.
// Exposed standalone since `original_source` exposes
// `count_view_crossings` as a public analysis helper, not only a private
// selector (§4.8).
func CountViewCrossings(view *datamodel.View) int {
	var segs []segment
	positions := map[int32]point{}
	for _, el := range view.Elements {
		switch e := el.(type) {
		case *datamodel.StockElement:
			positions[e.Uid] = point{e.X, e.Y}
		case *datamodel.AuxElement:
			positions[e.Uid] = point{e.X, e.Y}
		case *datamodel.ModuleElement:
			positions[e.Uid] = point{e.X, e.Y}
		case *datamodel.CloudElement:
			positions[e.Uid] = point{e.X, e.Y}
		}
	}
	for _, el := range view.Elements {
		switch e := el.(type) {
		case *datamodel.FlowElement:
			for i := 0; i+1 < len(e.Points); i++ {
				a, b := e.Points[i], e.Points[i+1]
				segs = append(segs, segment{a.X, a.Y, b.X, b.Y})
			}
		case *datamodel.LinkElement:
			from, ok1 := positions[e.FromUid]
			to, ok2 := positions[e.ToUid]
			if ok1 && ok2 {
				segs = append(segs, segment{from.X, from.Y, to.X, to.Y})
			}
		}
	}

	count := 0
	for i := 0; i < len(segs); i++ {
		for j := i + 1; j < len(segs); j++ {
			if segmentsIntersect(segs[i], segs[j]) {
				count++
			}
		}
	}
	return count
}

func segmentsIntersect(a, b segment) bool {
	d1 := cross(b.X2-b.X1, b.Y2-b.Y1, a.X1-b.X1, a.Y1-b.Y1)
	d2 := cross(b.X2-b.X1, b.Y2-b.Y1, a.X2-b.X1, a.Y2-b.Y1)
	d3 := cross(a.X2-a.X1, a.Y2-a.Y1, b.X1-a.X1, b.Y1-a.Y1)
	d4 := cross(a.X2-a.X1, a.Y2-a.Y1, b.X2-a.X1, b.Y2-a.Y1)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(ax, ay, bx, by float64) float64 { return ax*by - ay*bx }

// annealNode is one candidate-move node: auxiliaries/clouds accept large
// moves (maxDeltaAux), chain members accept small moves (maxDeltaChain),
// per §4.8 step 5.
type annealNode struct {
	ID        string
	Pos       point
	IsChain   bool
}

// anneal runs simulated-annealing crossing reduction over positions
// (keyed by variable id), returning the lowest-crossing arrangement found
// across cfg.AnnealingRounds rounds, rebuilding the view with render each
// round to recount crossings. Move acceptance follows Metropolis
// (exp(-ΔE/T)); the best-seen arrangement is kept even if later rounds
// regress (§4.8 step 5's "keep the lowest-crossing layout found across
// rounds even if later SFDP iterations increase crossings").
func anneal(nodes []annealNode, render func([]annealNode) *datamodel.View, cfg Config, seed int64) []annealNode {
	rng := rand.New(rand.NewSource(seed))
	current := cloneNodes(nodes)
	currentView := render(current)
	currentCrossings := CountViewCrossings(currentView)

	best := cloneNodes(current)
	bestCrossings := currentCrossings

	temperature := 1.0
	for round := 0; round < cfg.AnnealingRounds; round++ {
		candidate := cloneNodes(current)
		idx := rng.Intn(len(candidate))
		maxDelta := cfg.MaxDeltaAux
		if candidate[idx].IsChain {
			maxDelta = cfg.MaxDeltaChain
		}
		candidate[idx].Pos.X += (rng.Float64()*2 - 1) * maxDelta
		candidate[idx].Pos.Y += (rng.Float64()*2 - 1) * maxDelta

		candidateView := render(candidate)
		candidateCrossings := CountViewCrossings(candidateView)

		deltaE := float64(candidateCrossings - currentCrossings)
		if deltaE <= 0 || rng.Float64() < math.Exp(-deltaE/temperature) {
			current = candidate
			currentCrossings = candidateCrossings
		}
		if currentCrossings < bestCrossings {
			best = cloneNodes(current)
			bestCrossings = currentCrossings
		}
		temperature *= cfg.CoolingRate
		if temperature < 1e-3 {
			temperature = 1e-3
		}
	}

	return best
}

func cloneNodes(nodes []annealNode) []annealNode {
	out := make([]annealNode, len(nodes))
	copy(out, nodes)
	return out
}
