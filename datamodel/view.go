package datamodel

// View is the drawing layer for one model: an ordered list of rendered
// elements. UIDs are stable across one View's lifetime but are reassigned
// whenever the view is regenerated (spec.md §3).
type View struct {
	Elements []ViewElement
	ViewBox  Rect
	Zoom     float64
}

// Rect is an axis-aligned bounding box used for a View's coordinate frame.
type Rect struct {
	X, Y, Width, Height float64
}

// ViewElement is the tagged union of everything a View can contain.
type ViewElement interface {
	UID() int32
	isViewElement()
}

// LabelSide is the side of a node a variable's name label is drawn on.
type LabelSide string

const (
	LabelTop    LabelSide = "Top"
	LabelBottom LabelSide = "Bottom"
	LabelLeft   LabelSide = "Left"
	LabelRight  LabelSide = "Right"
	LabelCenter LabelSide = "Center"
)

// StockElement renders a Stock variable at a point.
type StockElement struct {
	Uid   int32
	Ident string
	X, Y  float64
	Label LabelSide
}

func (e *StockElement) UID() int32  { return e.Uid }
func (*StockElement) isViewElement() {}

// FlowPoint is one vertex of a Flow's polyline. AttachedUid anchors an
// endpoint to a stock or cloud's UID; zero means unattached.
type FlowPoint struct {
	X, Y        float64
	AttachedUid int32
}

// FlowElement renders a Flow variable as a polyline with a labeled valve
// at its midpoint.
type FlowElement struct {
	Uid    int32
	Ident  string
	Points []FlowPoint
	Label  LabelSide
}

func (e *FlowElement) UID() int32  { return e.Uid }
func (*FlowElement) isViewElement() {}

// AuxElement renders an Aux variable at a point.
type AuxElement struct {
	Uid   int32
	Ident string
	X, Y  float64
	Label LabelSide
}

func (e *AuxElement) UID() int32  { return e.Uid }
func (*AuxElement) isViewElement() {}

// ModuleElement renders a Module variable at a point.
type ModuleElement struct {
	Uid   int32
	Ident string
	X, Y  float64
	Label LabelSide
}

func (e *ModuleElement) UID() int32  { return e.Uid }
func (*ModuleElement) isViewElement() {}

// CloudElement is the infinite source/sink attached to one end of a flow
// whose corresponding stock is absent.
type CloudElement struct {
	Uid  int32
	X, Y float64
}

func (e *CloudElement) UID() int32  { return e.Uid }
func (*CloudElement) isViewElement() {}

// AliasElement is a second rendering of an already-placed variable, used
// when a variable needs to appear in more than one place on a diagram.
type AliasElement struct {
	Uid       int32
	AliasOf   int32
	X, Y      float64
	Label     LabelSide
}

func (e *AliasElement) UID() int32  { return e.Uid }
func (*AliasElement) isViewElement() {}

// GroupElement is a named visual grouping of other elements (by UID).
type GroupElement struct {
	Uid      int32
	Name     string
	Elements []int32
}

func (e *GroupElement) UID() int32  { return e.Uid }
func (*GroupElement) isViewElement() {}

// LinkShape is the tagged union of how a Link is drawn.
type LinkShape interface{ isLinkShape() }

// Straight draws the link as a direct line between its endpoints.
type Straight struct{}

func (Straight) isLinkShape() {}

// Arc draws the link as a circular arc with the given angle in degrees.
type Arc struct{ AngleDegrees float64 }

func (Arc) isLinkShape() {}

// MultiPoint draws the link through an explicit polyline.
type MultiPoint struct{ Points []FlowPoint }

func (MultiPoint) isLinkShape() {}

// LinkElement is a causal edge drawn between two UIDs.
type LinkElement struct {
	Uid     int32
	FromUid int32
	ToUid   int32
	Shape   LinkShape
}

func (e *LinkElement) UID() int32  { return e.Uid }
func (*LinkElement) isViewElement() {}
