package layout

import (
	"math"
	"sort"

	"github.com/sdforge/sdengine/datamodel"
)

// computeLabelSides picks, for every placed variable, the side with the
// fewest incident-edge neighbors in that angular half-plane (§4.8 step 6):
// Top/Bottom preferred when neighbors cluster horizontally, Left/Right
// when they cluster vertically. Stocks additionally block the side their
// flows attach to (flows sit on the horizontal chain axis, so stocks
// default away from Left/Right toward Top/Bottom). Flows prefer the side
// opposite their dominant orientation (since flows run horizontally here,
// that's Top or Bottom, picked by whichever has fewer neighbors).
func computeLabelSides(model *datamodel.Model, md *Metadata, pos map[string]point) map[string]datamodel.LabelSide {
	sides := map[string]datamodel.LabelSide{}
	names := make([]string, 0, len(pos))
	for n := range pos {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		neighbors := neighborAngles(n, md, pos)
		kind := classifyVariable(model, n)
		sides[n] = pickSide(neighbors, kind)
	}
	return sides
}

func neighborAngles(name string, md *Metadata, pos map[string]point) []float64 {
	origin, ok := pos[name]
	if !ok {
		return nil
	}
	var angles []float64
	add := func(other string) {
		p, ok := pos[other]
		if !ok || other == name {
			return
		}
		angles = append(angles, math.Atan2(p.Y-origin.Y, p.X-origin.X))
	}
	for _, d := range md.Graph.Deps[name] {
		add(d)
	}
	for _, d := range md.Graph.RDeps[name] {
		add(d)
	}
	return angles
}

// pickSide buckets neighbor angles into four quadrants and returns the
// side with the fewest neighbors, since that's the least visually
// crowded place for a label. A Flow, which already runs along the
// horizontal axis by construction, is restricted to Top/Bottom so its
// label never collides with the polyline itself; a Stock is restricted
// away from Left/Right for the same reason (its flows attach
// horizontally).
func pickSide(angles []float64, kind varKind) datamodel.LabelSide {
	counts := map[datamodel.LabelSide]int{
		datamodel.LabelTop: 0, datamodel.LabelBottom: 0,
		datamodel.LabelLeft: 0, datamodel.LabelRight: 0,
	}
	for _, a := range angles {
		switch sideOf(a) {
		case datamodel.LabelTop:
			counts[datamodel.LabelTop]++
		case datamodel.LabelBottom:
			counts[datamodel.LabelBottom]++
		case datamodel.LabelLeft:
			counts[datamodel.LabelLeft]++
		case datamodel.LabelRight:
			counts[datamodel.LabelRight]++
		}
	}

	candidates := []datamodel.LabelSide{datamodel.LabelTop, datamodel.LabelBottom, datamodel.LabelLeft, datamodel.LabelRight}
	if kind == kindFlow || kind == kindStock {
		candidates = []datamodel.LabelSide{datamodel.LabelTop, datamodel.LabelBottom}
	}

	best := candidates[0]
	bestCount := counts[best]
	for _, c := range candidates[1:] {
		if counts[c] < bestCount {
			best = c
			bestCount = counts[c]
		}
	}
	if len(angles) == 0 {
		return datamodel.LabelBottom
	}
	return best
}

func sideOf(angle float64) datamodel.LabelSide {
	const quarter = math.Pi / 4
	switch {
	case angle > -quarter && angle <= quarter:
		return datamodel.LabelRight
	case angle > quarter && angle <= 3*quarter:
		return datamodel.LabelBottom
	case angle > 3*quarter || angle <= -3*quarter:
		return datamodel.LabelLeft
	default:
		return datamodel.LabelTop
	}
}
