package layout

import (
	"math"
	"strconv"

	"github.com/sdforge/sdengine/datamodel"
)

// GenerateLayout runs the full pipeline (§4.8 steps 1-8) for one seed:
// metadata extraction, chain positioning, intra-chain layout, auxiliary
// placement with rigid chain groups, annealing, label placement,
// connector routing, and normalization.
func GenerateLayout(project *datamodel.Project, modelName string, seed int64, cfg Config) *datamodel.View {
	md, _ := ComputeMetadata(project, modelName)
	model := findModel(project, modelName)
	if model == nil || md == nil {
		return &datamodel.View{}
	}

	chainPos := positionChains(md, cfg)
	nodePos, rigidGroup := layoutChains(md, chainPos, cfg)
	placeAuxiliaries(model, md, nodePos, rigidGroup, cfg)
	runAuxSFDP(model, md, nodePos, rigidGroup, cfg)

	b := &builder{
		project: project,
		model:   model,
		md:      md,
		pos:     nodePos,
		chain:   rigidGroup,
		cfg:     cfg,
	}
	view := b.render()

	view = annealView(b, view, cfg, seed)
	normalizeView(view, cfg.Margin)
	return view
}

func findModel(project *datamodel.Project, modelName string) *datamodel.Model {
	for _, m := range project.Models {
		if m.Name == modelName {
			return m
		}
	}
	return nil
}

// positionChains runs SFDP with one node per chain (§4.8 step 2), edges
// weighted by the count of cross-chain dependency edges between their
// members.
func positionChains(md *Metadata, cfg Config) []point {
	n := len(md.Chains)
	nodes := make([]sfdpNode, n)
	memberOf := map[string]int{}
	for i, c := range md.Chains {
		nodes[i] = sfdpNode{ID: chainID(i), Pos: ringStart(i, n), RigidGroup: -1}
		for _, s := range c.Stocks {
			memberOf[s] = i
		}
		for _, f := range c.Flows {
			memberOf[f] = i
		}
	}

	weights := map[[2]int]float64{}
	for from, deps := range md.Graph.Deps {
		ci, ok1 := memberOf[from]
		if !ok1 {
			continue
		}
		for _, to := range deps {
			cj, ok2 := memberOf[to]
			if !ok2 || ci == cj {
				continue
			}
			key := [2]int{minInt(ci, cj), maxInt(ci, cj)}
			weights[key]++
		}
	}
	var edges []sfdpEdge
	for k, w := range weights {
		edges = append(edges, sfdpEdge{A: k[0], B: k[1], Weight: w})
	}

	placed := runSFDP(nodes, edges, cfg, cfg.MaxIterations)
	out := make([]point, n)
	for i, p := range placed {
		out[i] = p.Pos
	}
	return out
}

func chainID(i int) string { return "chain" + strconv.Itoa(i) }

func ringStart(i, n int) point {
	if n <= 1 {
		return point{0, 0}
	}
	angle := 2 * math.Pi * float64(i) / float64(n)
	r := 300.0
	return point{r * math.Cos(angle), r * math.Sin(angle)}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
