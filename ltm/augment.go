package ltm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sdforge/sdengine/datamodel"
	"github.com/sdforge/sdengine/depgraph"
	"github.com/sdforge/sdengine/ident"
)

// Result is the outcome of augmenting a model: the rewritten model (with
// synthesized score variables appended) plus the loop list the caller
// reads `$ltmrel_loop_score<id>` series against.
type Result struct {
	Model *datamodel.Model
	Loops []Loop
}

// scorePrefix/relPrefix/productPrefix/totalName name the synthesized
// variables per spec.md §4.7's `$ltmscore_<u>_<v>` / `$ltmrel_loop_score
// <id>` convention. productPrefix/totalName are this engine's own
// intermediate variables (not named in spec.md) needed so the per-loop
// relative score's denominator — the sum of every loop's edge-score
// product — is computed once and shared, rather than recomputed inline
// inside every loop's equation.
const (
	scorePrefix   = "$ltmscore_"
	relPrefix     = "$ltmrel_loop_score"
	productPrefix = "$ltmloop_product_"
	totalName     = "$ltmloop_total"
)

// ScoreVarName returns the canonical name of the synthesized score
// variable for causal link u->v.
func ScoreVarName(u, v string) string {
	return scorePrefix + ident.Canonical(u) + "_" + ident.Canonical(v)
}

// RelScoreVarName returns the canonical name of loop id's relative-score
// variable.
func RelScoreVarName(id string) string {
	return relPrefix + id
}

// Augment detects model's feedback loops and appends one Aux variable per
// causal link score and one per loop relative score, per spec.md §4.7.
// The augmented project then runs through the ordinary VM (compile.Compile
// + vm.New): augmentation is pure datamodel rewriting, not a separate
// evaluator.
func Augment(model *datamodel.Model, dt float64) *Result {
	g, errList := depgraph.Build(model)
	if errList != nil && !errList.Empty() {
		g = depgraph.FromEquationText(model)
	}
	loops := EnumerateLoops(g)

	// Loop.Edges follows the adjacency's dependent->dependency orientation;
	// score variables name the causal direction (influencer -> influenced),
	// so each edge flips to (e[1], e[0]) here and stays causal from now on.
	edgeSet := map[[2]string]bool{}
	var edges [][2]string
	for _, l := range loops {
		for _, e := range l.Edges() {
			causal := [2]string{e[1], e[0]}
			if !edgeSet[causal] {
				edgeSet[causal] = true
				edges = append(edges, causal)
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})

	stocks := g.Stocks
	flowSign := stockFlowSigns(model)

	out := &datamodel.Model{
		Name:         model.Name,
		Views:        model.Views,
		LoopMetadata: model.LoopMetadata,
		SimSpecs:     model.SimSpecs,
	}
	out.Variables = append(out.Variables, model.Variables...)

	for _, e := range edges {
		u, v := e[0], e[1]
		sign := 0
		if stocks[v] {
			sign = flowSign[[2]string{u, v}]
		}
		out.Variables = append(out.Variables, &datamodel.Aux{
			Name: ScoreVarName(u, v),
			Eqn:  datamodel.Scalar{RHS: scoreExpr(u, v, dt, sign)},
		})
	}

	var productNames []string
	for _, l := range loops {
		terms := make([]string, 0, len(l.Vertices))
		for _, e := range l.Edges() {
			terms = append(terms, ScoreVarName(e[1], e[0]))
		}
		productVar := productPrefix + l.ID
		productNames = append(productNames, productVar)
		out.Variables = append(out.Variables, &datamodel.Aux{
			Name: productVar,
			Eqn:  datamodel.Scalar{RHS: strings.Join(terms, " * ")},
		})
	}

	totalExpr := "0"
	if len(productNames) > 0 {
		totalExpr = strings.Join(productNames, " + ")
	}
	out.Variables = append(out.Variables, &datamodel.Aux{
		Name: totalName,
		Eqn:  datamodel.Scalar{RHS: totalExpr},
	})

	for i, l := range loops {
		out.Variables = append(out.Variables, &datamodel.Aux{
			Name: RelScoreVarName(l.ID),
			Eqn:  datamodel.Scalar{RHS: fmt.Sprintf("SAFEDIV(%s, %s, 0)", productNames[i], totalName)},
		})
	}

	return &Result{Model: out, Loops: loops}
}

// scoreExpr builds the RHS text for $ltmscore_<u>_<v>, the causal link
// u->v's elasticity-like contribution (∂v/∂u)·(Δu/u_previous). DELAY1
// with delay time dt is an exact one-step lag under the VM's internal
// Euler recurrence, which is what makes these expressions computable by
// ordinary aux variables.
//
// Two cases:
//   - v is an aux or flow (sign == 0): Δv/u_previous — the Δv/Δu and Δu
//     factors cancel algebraically, leaving a one-step finite difference
//     of v normalized by u's previous value. Exact when u is v's only
//     changing input; an approximation otherwise (see DESIGN.md).
//   - v is a stock fed or drained by flow u (sign == ±1): ∂v/∂u per step
//     is ±dt, so the score is ±dt·Δu/u_previous — crediting only this
//     link's own contribution, since Δv pools every inflow and outflow.
//     The denominator uses the two-step-previous value (DELAY1 applied
//     twice), the convention for links into an integral.
func scoreExpr(u, v string, dt float64, sign int) string {
	uPrev := fmt.Sprintf("DELAY1(%s, %g)", u, dt)
	if sign != 0 {
		uPrev2 := fmt.Sprintf("DELAY1(%s, %g)", uPrev, dt)
		return fmt.Sprintf("SAFEDIV(%g * (%s - %s), %s, 0)", dt*float64(sign), u, uPrev, uPrev2)
	}
	vPrev := fmt.Sprintf("DELAY1(%s, %g)", v, dt)
	return fmt.Sprintf("SAFEDIV(%s - %s, %s, 0)", v, vPrev, uPrev)
}

// stockFlowSigns maps each causal (flow, stock) link to +1 when the flow
// is one of the stock's inflows, -1 for an outflow, and 0 when a flow
// appears on both sides (a degenerate declaration; the generic Δv formula
// applies rather than guessing a net sign).
func stockFlowSigns(model *datamodel.Model) map[[2]string]int {
	signs := map[[2]string]int{}
	for _, v := range model.Variables {
		stock, ok := v.(*datamodel.Stock)
		if !ok {
			continue
		}
		s := ident.Canonical(stock.Name)
		for _, f := range stock.Inflows {
			signs[[2]string{ident.Canonical(f), s}]++
		}
		for _, f := range stock.Outflows {
			signs[[2]string{ident.Canonical(f), s}]--
		}
	}
	for k, v := range signs {
		switch {
		case v > 0:
			signs[k] = 1
		case v < 0:
			signs[k] = -1
		}
	}
	return signs
}
