package layout

import (
	"math"

	"github.com/sdforge/sdengine/datamodel"
)

// normalizeView translates every coordinate in view so its bounding box's
// minimum corner sits margin units from the origin (§4.8 step 8), then
// sets ViewBox to the resulting extent.
func normalizeView(view *datamodel.View, margin float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	visit := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}

	for _, el := range view.Elements {
		switch e := el.(type) {
		case *datamodel.StockElement:
			visit(e.X, e.Y)
		case *datamodel.AuxElement:
			visit(e.X, e.Y)
		case *datamodel.ModuleElement:
			visit(e.X, e.Y)
		case *datamodel.CloudElement:
			visit(e.X, e.Y)
		case *datamodel.FlowElement:
			for _, p := range e.Points {
				visit(p.X, p.Y)
			}
		}
	}

	if math.IsInf(minX, 1) {
		return
	}

	dx := margin - minX
	dy := margin - minY
	for _, el := range view.Elements {
		switch e := el.(type) {
		case *datamodel.StockElement:
			e.X += dx
			e.Y += dy
		case *datamodel.AuxElement:
			e.X += dx
			e.Y += dy
		case *datamodel.ModuleElement:
			e.X += dx
			e.Y += dy
		case *datamodel.CloudElement:
			e.X += dx
			e.Y += dy
		case *datamodel.FlowElement:
			for i := range e.Points {
				e.Points[i].X += dx
				e.Points[i].Y += dy
			}
		}
	}

	view.ViewBox = datamodel.Rect{
		X:      0,
		Y:      0,
		Width:  maxX + dx + margin,
		Height: maxY + dy + margin,
	}
}
