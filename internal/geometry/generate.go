// Package geometry turns objects into screen-space primitives.
//
// Generation is a pure function of the object snapshot, the view and the
// options: the same inputs always produce the same fragment, which is what
// lets the frame loop cache fragments per object. Degenerate parameters
// produce an empty fragment instead of an error, since they routinely occur
// while a value is being edited.
package geometry

import (
	"math"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
)

const (
	MinSegments = 8
	MaxSegments = 256
	MinSamples  = 2
	MaxSamples  = 10000
)

// View is the read side of the coordinate transform.
type View interface {
	Scale() float64
	WorldToScreen(p geom.Vec2) geom.Vec2
	VisibleWorld() geom.Rect
}

// Options are the pixel-space tuning constants of generation.
type Options struct {
	MinTickPixels   float64 // minimum on-screen distance between ticks
	CircleTolerance float64 // max distance in px between a circle and its polygon
	TickLength      float64 // half length of a tick mark in px
	ArrowLength     float64 // px
	ArrowAngle      float64 // half-angle of the arrowhead in radians
	OriginRadius    float64 // px
	MaxTicks        int     // per axis
	MaxGridLines    int     // per direction and class (major or minor)
	DefaultSamples  int
}

// DefaultOptions returns the constants used by the interactive front ends.
func DefaultOptions() Options {
	return Options{
		MinTickPixels:   40,
		CircleTolerance: 0.5,
		TickLength:      8,
		ArrowLength:     15,
		ArrowAngle:      math.Pi / 6,
		OriginRadius:    4,
		MaxTicks:        500,
		MaxGridLines:    1000,
		DefaultSamples:  100,
	}
}

// generator carries the per-call state of Generate.
type generator struct {
	obj    object.Object
	view   View
	opts   Options
	local  geom.Matrix2D
	stroke Stroke
	fill   *Fill
	frag   Fragment
}

func (g *generator) screen(p geom.Vec2) geom.Vec2 {
	return g.view.WorldToScreen(g.local.Apply(p))
}

// pixelScale is the number of pixels per unit of the object's own
// coordinates.
func (g *generator) pixelScale() float64 {
	return g.view.Scale() * g.obj.Placement.Scale
}

// Generate produces the fragment for obj as seen through view.
// Visibility is not considered; the caller decides what to emit.
func Generate(obj object.Object, view View, opts Options) Fragment {
	g := generator{
		obj:   obj,
		view:  view,
		opts:  opts,
		local: obj.Placement.Matrix(),
		frag:  Fragment{ObjectID: obj.ID, Layer: obj.Layer},
	}

	reveal := obj.Placement.Reveal
	s := obj.Placement.Scale
	if !geom.IsFinite(reveal) || reveal <= 0 || !geom.IsFinite(s) || s <= 0 || !obj.Placement.Position.IsFinite() {
		return g.frag
	}
	if !geom.IsFinite(view.Scale()) || view.Scale() <= 0 {
		return g.frag
	}

	st := obj.Style
	opacity := geom.Clamp(st.Opacity, 0, 1)
	if !geom.IsFinite(st.Opacity) {
		opacity = 0
	}
	g.stroke = Stroke{Color: st.Stroke, Width: st.StrokeWidth, Opacity: opacity}
	if st.Fill != nil {
		g.fill = &Fill{Color: *st.Fill, Opacity: opacity}
	}

	switch k := obj.Kind.(type) {
	case object.Axes:
		g.axes(k)
	case object.Grid:
		g.grid(k)
	case object.Circle:
		g.circle(k)
	case object.Line:
		g.line(k)
	case object.Rectangle:
		g.rectangle(k)
	case object.FunctionGraph:
		g.functionGraph(k)
	case object.ParametricCurve:
		g.parametricCurve(k)
	}

	if reveal < 1 {
		g.reveal(reveal)
	}
	g.frag.computeBounds()
	return g.frag
}

// reveal truncates every primitive to the first frac of its arc length.
// Truncated closed shapes become open, unfilled paths and labels are hidden
// until the reveal completes.
func (g *generator) reveal(frac float64) {
	prims := g.frag.Primitives[:0]
	for _, p := range g.frag.Primitives {
		pts := truncate(p.Points, p.Kind == Polygon, frac)
		if len(pts) < 2 {
			continue
		}
		prims = append(prims, Primitive{Kind: Polyline, Points: pts, Stroke: p.Stroke})
	}
	g.frag.Primitives = prims
	g.frag.Labels = nil
}

func truncate(pts []geom.Vec2, closed bool, frac float64) []geom.Vec2 {
	if len(pts) < 2 {
		return nil
	}
	path := pts
	if closed {
		path = make([]geom.Vec2, 0, len(pts)+1)
		path = append(path, pts...)
		path = append(path, pts[0])
	}
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i-1].Dist(path[i])
	}
	if total == 0 {
		return nil
	}
	target := total * frac
	out := []geom.Vec2{path[0]}
	acc := 0.0
	for i := 1; i < len(path); i++ {
		seg := path[i-1].Dist(path[i])
		if seg > 0 && acc+seg >= target {
			out = append(out, path[i-1].Lerp(path[i], (target-acc)/seg))
			return out
		}
		acc += seg
		out = append(out, path[i])
	}
	return out
}

// CircleSegments returns how many segments approximate a circle of the given
// on-screen radius so that the polygon stays within tolerance pixels of the
// true circle. The result is within [MinSegments, MaxSegments] and never
// decreases as the radius grows.
func CircleSegments(pixelRadius, tolerance float64) int {
	if !(pixelRadius > tolerance) || !(tolerance > 0) {
		return MinSegments
	}
	n := math.Ceil(math.Pi / math.Acos(1-tolerance/pixelRadius))
	if !geom.IsFinite(n) {
		return MaxSegments
	}
	return int(geom.Clamp(n, MinSegments, MaxSegments))
}

func (g *generator) circle(c object.Circle) {
	if !(c.Radius > 0) || !geom.IsFinite(c.Radius) || !c.Center.IsFinite() {
		return
	}
	n := c.Resolution
	if n > 0 {
		n = geom.Clamp(n, 3, MaxSegments)
	} else {
		n = CircleSegments(c.Radius*g.pixelScale(), g.opts.CircleTolerance)
	}
	pts := make([]geom.Vec2, n)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = g.screen(geom.Vec2{
			X: c.Center.X + c.Radius*math.Cos(theta),
			Y: c.Center.Y + c.Radius*math.Sin(theta),
		})
	}
	g.frag.add(Polygon, pts, g.stroke, g.fill)
}

func (g *generator) line(l object.Line) {
	if !l.Start.IsFinite() || !l.End.IsFinite() || l.Start == l.End {
		return
	}
	g.frag.add(Polyline, []geom.Vec2{g.screen(l.Start), g.screen(l.End)}, g.stroke, nil)
}

func (g *generator) rectangle(r object.Rectangle) {
	if !(r.Width > 0) || !(r.Height > 0) || !geom.IsFinite(r.Width) || !geom.IsFinite(r.Height) || !r.Center.IsFinite() {
		return
	}
	hw, hh := r.Width/2, r.Height/2
	c := r.Center
	pts := []geom.Vec2{
		g.screen(geom.V(c.X-hw, c.Y-hh)),
		g.screen(geom.V(c.X+hw, c.Y-hh)),
		g.screen(geom.V(c.X+hw, c.Y+hh)),
		g.screen(geom.V(c.X-hw, c.Y+hh)),
	}
	g.frag.add(Polygon, pts, g.stroke, g.fill)
}

func (g *generator) samples(n int) int {
	if n <= 0 {
		n = g.opts.DefaultSamples
	}
	return geom.Clamp(n, MinSamples, MaxSamples)
}

// sampled emits one polyline per run of finite samples.
func (g *generator) sampled(n int, r object.Range, at func(t float64) geom.Vec2) {
	if !r.Valid() {
		return
	}
	var run []geom.Vec2
	for i := 0; i < n; i++ {
		t := r.Min + r.Span()*float64(i)/float64(n-1)
		p := at(t)
		if !p.IsFinite() {
			g.frag.add(Polyline, run, g.stroke, nil)
			run = nil
			continue
		}
		run = append(run, g.screen(p))
	}
	g.frag.add(Polyline, run, g.stroke, nil)
}

func (g *generator) functionGraph(f object.FunctionGraph) {
	g.sampled(g.samples(f.Samples), f.Domain, func(x float64) geom.Vec2 {
		return geom.V(x, f.Func.Eval(x))
	})
}

func (g *generator) parametricCurve(c object.ParametricCurve) {
	g.sampled(g.samples(c.Samples), c.Param, func(t float64) geom.Vec2 {
		return geom.V(c.X.Eval(t), c.Y.Eval(t))
	})
}
