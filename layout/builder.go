package layout

import (
	"sort"

	"github.com/sdforge/sdengine/datamodel"
)

// builder assembles a View from a position map and chain-membership map,
// assigning stable UIDs and determining label sides and connector shapes.
type builder struct {
	project *datamodel.Project
	model   *datamodel.Model
	md      *Metadata
	pos     map[string]point
	chain   map[string]int
	cfg     Config

	uids map[string]int32
	next int32
}

func (b *builder) uidFor(name string) int32 {
	if b.uids == nil {
		b.uids = map[string]int32{}
	}
	if id, ok := b.uids[name]; ok {
		return id
	}
	b.next++
	b.uids[name] = b.next
	return b.next
}

// render builds the full View from the current position map: one element
// per placed variable, a cloud for any flow missing a source/sink stock,
// and a link per non-structural dependency edge.
func (b *builder) render() *datamodel.View {
	view := &datamodel.View{}
	b.uids = map[string]int32{}
	b.next = 0

	names := make([]string, 0, len(b.pos))
	for n := range b.pos {
		names = append(names, n)
	}
	sort.Strings(names)

	sides := computeLabelSides(b.model, b.md, b.pos)

	for _, n := range names {
		p := b.pos[n]
		uid := b.uidFor(n)
		side := sides[n]
		switch classifyVariable(b.model, n) {
		case kindStock:
			view.Elements = append(view.Elements, &datamodel.StockElement{Uid: uid, Ident: n, X: p.X, Y: p.Y, Label: side})
		case kindAux:
			view.Elements = append(view.Elements, &datamodel.AuxElement{Uid: uid, Ident: n, X: p.X, Y: p.Y, Label: side})
		case kindModule:
			view.Elements = append(view.Elements, &datamodel.ModuleElement{Uid: uid, Ident: n, X: p.X, Y: p.Y, Label: side})
		case kindFlow:
			flowEl, clouds := b.flowElement(n, p, side)
			view.Elements = append(view.Elements, flowEl)
			view.Elements = append(view.Elements, clouds...)
		}
	}

	view.Elements = append(view.Elements, b.routeLinks()...)
	return view
}

type varKind int

const (
	kindAux varKind = iota
	kindStock
	kindFlow
	kindModule
)

func classifyVariable(model *datamodel.Model, name string) varKind {
	for _, v := range model.Variables {
		if v.Ident() != name {
			continue
		}
		switch v.(type) {
		case *datamodel.Stock:
			return kindStock
		case *datamodel.Flow:
			return kindFlow
		case *datamodel.Module:
			return kindModule
		}
	}
	return kindAux
}

// flowElement builds a two-point polyline for flow f, attaching to its
// source/sink stock's UID when present, or a freshly-minted CloudElement
// at the flow's own offset end when absent (§4.8 step 3).
func (b *builder) flowElement(f string, p point, side datamodel.LabelSide) (*datamodel.FlowElement, []datamodel.ViewElement) {
	src := nearestStock(f, b.md, true)
	dst := nearestStock(f, b.md, false)

	var clouds []datamodel.ViewElement
	start := datamodel.FlowPoint{X: p.X - 20, Y: p.Y}
	end := datamodel.FlowPoint{X: p.X + 20, Y: p.Y}
	if sp, ok := b.pos[src]; ok {
		start = datamodel.FlowPoint{X: sp.X, Y: sp.Y, AttachedUid: b.uidFor(src)}
	} else {
		cloudUid := b.uidFor(f + "$cloud_src")
		clouds = append(clouds, &datamodel.CloudElement{Uid: cloudUid, X: start.X, Y: start.Y})
		start.AttachedUid = cloudUid
	}
	if dp, ok := b.pos[dst]; ok {
		end = datamodel.FlowPoint{X: dp.X, Y: dp.Y, AttachedUid: b.uidFor(dst)}
	} else {
		cloudUid := b.uidFor(f + "$cloud_dst")
		clouds = append(clouds, &datamodel.CloudElement{Uid: cloudUid, X: end.X, Y: end.Y})
		end.AttachedUid = cloudUid
	}
	return &datamodel.FlowElement{
		Uid:    b.uidFor(f),
		Ident:  f,
		Points: []datamodel.FlowPoint{start, end},
		Label:  side,
	}, clouds
}
