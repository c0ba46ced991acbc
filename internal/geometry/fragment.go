package geometry

import (
	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
)

// PrimitiveKind tells the renderer how to draw a vertex list.
type PrimitiveKind string

const (
	Polyline PrimitiveKind = "polyline" // open path, stroked
	Polygon  PrimitiveKind = "polygon"  // closed path, stroked and optionally filled
)

// Stroke is the resolved outline style of a primitive.
type Stroke struct {
	Color   object.Color `json:"color"`
	Width   float64      `json:"width"`
	Opacity float64      `json:"opacity"`
}

// Fill is the resolved fill style of a closed primitive.
type Fill struct {
	Color   object.Color `json:"color"`
	Opacity float64      `json:"opacity"`
}

// Primitive is a screen-space vertex list plus how to paint it.
type Primitive struct {
	Kind   PrimitiveKind `json:"kind"`
	Points []geom.Vec2   `json:"points"`
	Stroke Stroke        `json:"stroke"`
	Fill   *Fill         `json:"fill,omitempty"`
}

// Align is the horizontal alignment of a label around its anchor.
type Align string

const (
	AlignCenter Align = "center"
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
)

// Label is a text anchor point. Laying out the text is up to the renderer.
type Label struct {
	Text   string       `json:"text"`
	Anchor geom.Vec2    `json:"anchor"`
	Align  Align        `json:"align"`
	Size   float64      `json:"size"`
	Color  object.Color `json:"color"`
}

// Fragment is the renderable output for one object.
type Fragment struct {
	ObjectID   object.ID   `json:"objectId"`
	Layer      int         `json:"layer"`
	Primitives []Primitive `json:"primitives"`
	Labels     []Label     `json:"labels,omitempty"`
	Bounds     geom.Rect   `json:"bounds"`
}

// IsEmpty reports whether the fragment draws nothing.
func (f *Fragment) IsEmpty() bool {
	return len(f.Primitives) == 0 && len(f.Labels) == 0
}

// Vertices returns the total number of vertices across all primitives.
func (f *Fragment) Vertices() int {
	n := 0
	for _, p := range f.Primitives {
		n += len(p.Points)
	}
	return n
}

func (f *Fragment) add(kind PrimitiveKind, pts []geom.Vec2, stroke Stroke, fill *Fill) {
	if len(pts) < 2 {
		return
	}
	f.Primitives = append(f.Primitives, Primitive{Kind: kind, Points: pts, Stroke: stroke, Fill: fill})
}

func (f *Fragment) computeBounds() {
	pts := make([]geom.Vec2, 0, f.Vertices()+len(f.Labels))
	for _, p := range f.Primitives {
		pts = append(pts, p.Points...)
	}
	for _, l := range f.Labels {
		pts = append(pts, l.Anchor)
	}
	f.Bounds, _ = geom.Bounds(pts)
}
