package layout

import (
	"sort"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/depgraph"
	"github.com/sdforge/sdengine/ltm"
)

// Chain is a connected component of the stock<->flow subgraph: a run of
// stocks linked end-to-end by flows, scored by spec.md §4.8 step 1's
// `10*stocks + 5*flows` formula (an isolated flow with no stock neighbor
// scores `5` on its own).
type Chain struct {
	Stocks []string
	Flows  []string
	Score  float64
}

// FeedbackLoop is one detected causal cycle the connector-routing step
// biases arc curvature for. Variables are the loop's members in traversal
// order; slice position in Metadata.Loops is the loop's importance rank
// (rank 0 curves hardest).
type FeedbackLoop struct {
	ID        string
	Variables []string
}

// Metadata is everything the layout pipeline's later steps read off the
// model: the dependency graph, stock/flow adjacency, detected chains
// (sorted by descending Score), and the model's feedback loops, mirroring
// `original_source`'s `compute_metadata` return value.
type Metadata struct {
	Graph            *depgraph.Graph
	StockToInflows   map[string][]string
	StockToOutflows  map[string][]string
	FlowToStocks     map[string][]string
	Chains           []Chain
	Loops            []FeedbackLoop
}

// ComputeMetadata builds a Metadata for modelName within project,
// preferring the AST-derived dependency graph and falling back to
// word-boundary text search when the model's equations don't all parse
// (depgraph.FromCompiled/FromEquationText), per §4.8 step 1. The bool
// result reports whether the AST path succeeded (false means the
// text-search fallback was used).
func ComputeMetadata(project *datamodel.Project, modelName string) (*Metadata, bool) {
	var model *datamodel.Model
	for _, m := range project.Models {
		if m.Name == modelName {
			model = m
			break
		}
	}
	if model == nil {
		return nil, false
	}

	g, errList := depgraph.FromCompiled(model)
	astOK := errList == nil || errList.Empty()
	if !astOK {
		g = depgraph.FromEquationText(model)
	}

	md := &Metadata{
		Graph:           g,
		StockToInflows:  map[string][]string{},
		StockToOutflows: map[string][]string{},
		FlowToStocks:    map[string][]string{},
	}

	for _, v := range model.Variables {
		stock, ok := v.(*datamodel.Stock)
		if !ok {
			continue
		}
		name := stock.Name
		md.StockToInflows[name] = append(md.StockToInflows[name], stock.Inflows...)
		md.StockToOutflows[name] = append(md.StockToOutflows[name], stock.Outflows...)
		for _, f := range stock.Inflows {
			md.FlowToStocks[f] = append(md.FlowToStocks[f], name)
		}
		for _, f := range stock.Outflows {
			md.FlowToStocks[f] = append(md.FlowToStocks[f], name)
		}
	}

	md.Chains = detectChains(model, md)
	md.Loops = detectLoops(model, md, astOK)
	return md, astOK
}

// detectLoops enumerates feedback loops off the dependency graph when the
// AST path succeeded, and falls back to the model's persisted LoopMetadata
// bookkeeping otherwise — the degraded-mode path that keeps connector
// routing loop-aware even for a model that no longer compiles.
func detectLoops(model *datamodel.Model, md *Metadata, astOK bool) []FeedbackLoop {
	if astOK {
		var out []FeedbackLoop
		for _, l := range ltm.EnumerateLoops(md.Graph) {
			out = append(out, FeedbackLoop{ID: l.ID, Variables: l.Vertices})
		}
		return out
	}
	return buildFeedbackLoopsFromMetadata(model)
}

func buildFeedbackLoopsFromMetadata(model *datamodel.Model) []FeedbackLoop {
	var out []FeedbackLoop
	for _, lm := range model.LoopMetadata {
		if lm.Deleted || len(lm.Variables) == 0 {
			continue
		}
		out = append(out, FeedbackLoop{ID: lm.ID, Variables: lm.Variables})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// detectChains finds connected components of the stock<->flow adjacency
// via BFS union, scores each by spec.md's `10*stocks + 5*flows` (isolated
// flows with no stock neighbor score `5` alone), and sorts descending.
func detectChains(model *datamodel.Model, md *Metadata) []Chain {
	adj := map[string]map[string]bool{}
	link := func(a, b string) {
		if adj[a] == nil {
			adj[a] = map[string]bool{}
		}
		adj[a][b] = true
		if adj[b] == nil {
			adj[b] = map[string]bool{}
		}
		adj[b][a] = true
	}

	var flowNames []string
	for _, v := range model.Variables {
		if f, ok := v.(*datamodel.Flow); ok {
			flowNames = append(flowNames, f.Name)
		}
	}
	sort.Strings(flowNames)

	for stock, flows := range md.StockToInflows {
		for _, f := range flows {
			link(stock, f)
		}
	}
	for stock, flows := range md.StockToOutflows {
		for _, f := range flows {
			link(stock, f)
		}
	}
	for _, f := range flowNames {
		if _, ok := adj[f]; !ok {
			adj[f] = map[string]bool{}
		}
	}

	visited := map[string]bool{}
	var order []string
	for s := range md.StockToInflows {
		order = append(order, s)
	}
	for s := range md.StockToOutflows {
		if _, ok := md.StockToInflows[s]; !ok {
			order = append(order, s)
		}
	}
	order = append(order, flowNames...)
	sort.Strings(order)

	var chains []Chain
	for _, start := range order {
		if visited[start] {
			continue
		}
		queue := []string{start}
		visited[start] = true
		var members []string
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			members = append(members, n)
			neighbors := make([]string, 0, len(adj[n]))
			for nb := range adj[n] {
				neighbors = append(neighbors, nb)
			}
			sort.Strings(neighbors)
			for _, nb := range neighbors {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}

		chain := classify(members, md)
		chains = append(chains, chain)
	}

	sort.SliceStable(chains, func(i, j int) bool {
		return chains[i].Score > chains[j].Score
	})
	return chains
}

func classify(members []string, md *Metadata) Chain {
	var chain Chain
	for _, m := range members {
		_, isInflowStock := md.StockToInflows[m]
		_, isOutflowStock := md.StockToOutflows[m]
		if isInflowStock || isOutflowStock {
			chain.Stocks = append(chain.Stocks, m)
		} else {
			chain.Flows = append(chain.Flows, m)
		}
	}
	sort.Strings(chain.Stocks)
	sort.Strings(chain.Flows)
	if len(chain.Stocks) == 0 && len(chain.Flows) == 1 {
		chain.Score = 5
	} else {
		chain.Score = 10*float64(len(chain.Stocks)) + 5*float64(len(chain.Flows))
	}
	return chain
}
