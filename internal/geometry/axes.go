package geometry

import (
	"math"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
)

const (
	TickLabelSize   = 14
	AxisLabelSize   = 24
	OriginLabelSize = 18

	labelOffset   = 12 // px between a tick mark and its label
	originSegment = 16
)

// tickStep picks the tick spacing of an axes object: the explicit step if
// one is set, otherwise a nice step for the current zoom.
func (g *generator) tickStep(explicit float64) float64 {
	if explicit > 0 && geom.IsFinite(explicit) {
		return explicit
	}
	return NiceStep(g.pixelScale(), g.opts.MinTickPixels)
}

func (g *generator) axes(a object.Axes) {
	if !a.X.Valid() || !a.Y.Valid() {
		return
	}
	xs, xe := g.screen(geom.V(a.X.Min, 0)), g.screen(geom.V(a.X.Max, 0))
	ys, ye := g.screen(geom.V(0, a.Y.Min)), g.screen(geom.V(0, a.Y.Max))
	g.frag.add(Polyline, []geom.Vec2{xs, xe}, g.stroke, nil)
	g.frag.add(Polyline, []geom.Vec2{ys, ye}, g.stroke, nil)

	if a.ShowArrows {
		g.arrow(xs, xe)
		g.arrow(ys, ye)
	}

	step := g.tickStep(a.TickStep)
	if a.ShowTicks && step > 0 {
		g.ticks(a.X, step, a.ShowLabels, func(v float64) geom.Vec2 { return geom.V(v, 0) }, geom.V(0, 1))
		g.ticks(a.Y, step, a.ShowLabels, func(v float64) geom.Vec2 { return geom.V(0, v) }, geom.V(1, 0))
	}

	origin := g.screen(geom.Vec2{})
	if a.X.Min <= 0 && a.X.Max >= 0 && a.Y.Min <= 0 && a.Y.Max >= 0 {
		g.originMarker(origin)
	}

	if !a.ShowLabels {
		return
	}
	color := g.stroke.Color
	if a.XLabel != "" {
		g.frag.Labels = append(g.frag.Labels, Label{
			Text:   a.XLabel,
			Anchor: xe.Add(geom.V(labelOffset, labelOffset)),
			Align:  AlignLeft,
			Size:   AxisLabelSize,
			Color:  color,
		})
	}
	if a.YLabel != "" {
		g.frag.Labels = append(g.frag.Labels, Label{
			Text:   a.YLabel,
			Anchor: ye.Add(geom.V(labelOffset, -labelOffset)),
			Align:  AlignLeft,
			Size:   AxisLabelSize,
			Color:  color,
		})
	}
	g.frag.Labels = append(g.frag.Labels, Label{
		Text:   "O",
		Anchor: origin.Add(geom.V(-labelOffset, labelOffset)),
		Align:  AlignRight,
		Size:   OriginLabelSize,
		Color:  color,
	})
}

// ticks emits a screen-space tick mark across the axis at every multiple of
// step inside r except zero. across is the screen direction of the mark.
func (g *generator) ticks(r object.Range, step float64, labels bool, at func(float64) geom.Vec2, across geom.Vec2) {
	first, last, step := tickRange(r, step, g.opts.MaxTicks)
	half := across.Scale(g.opts.TickLength)
	for i := first; i <= last; i++ {
		if i == 0 {
			continue
		}
		v := float64(i) * step
		p := g.screen(at(v))
		g.frag.add(Polyline, []geom.Vec2{p.Sub(half), p.Add(half)}, g.stroke, nil)
		if !labels {
			continue
		}
		l := Label{
			Text:  FormatTick(v, step),
			Size:  TickLabelSize,
			Color: g.stroke.Color,
		}
		if across.Y != 0 {
			l.Anchor = p.Add(geom.V(0, g.opts.TickLength+labelOffset))
			l.Align = AlignCenter
		} else {
			l.Anchor = p.Sub(geom.V(g.opts.TickLength+labelOffset, 0))
			l.Align = AlignRight
		}
		g.frag.Labels = append(g.frag.Labels, l)
	}
}

// arrow emits a filled arrowhead at tip, pointing away from from.
func (g *generator) arrow(from, tip geom.Vec2) {
	d := tip.Sub(from).Norm()
	if d == (geom.Vec2{}) || g.opts.ArrowLength <= 0 {
		return
	}
	back := d.Scale(-g.opts.ArrowLength)
	sin, cos := math.Sincos(g.opts.ArrowAngle)
	left := geom.V(back.X*cos-back.Y*sin, back.X*sin+back.Y*cos)
	right := geom.V(back.X*cos+back.Y*sin, -back.X*sin+back.Y*cos)
	fill := &Fill{Color: g.stroke.Color, Opacity: g.stroke.Opacity}
	g.frag.add(Polygon, []geom.Vec2{tip, tip.Add(left), tip.Add(right)}, g.stroke, fill)
}

func (g *generator) originMarker(c geom.Vec2) {
	r := g.opts.OriginRadius
	if r <= 0 {
		return
	}
	pts := make([]geom.Vec2, originSegment)
	for i := range pts {
		theta := 2 * math.Pi * float64(i) / originSegment
		pts[i] = c.Add(geom.V(r*math.Cos(theta), r*math.Sin(theta)))
	}
	fill := &Fill{Color: g.stroke.Color, Opacity: g.stroke.Opacity}
	g.frag.add(Polygon, pts, g.stroke, fill)
}

// grid covers the visible world area. Placement position and scale do not
// apply; the grid is anchored at the world origin.
func (g *generator) grid(gr object.Grid) {
	spacing := gr.Spacing
	if !(spacing > 0) || !geom.IsFinite(spacing) {
		spacing = NiceStep(g.view.Scale(), g.opts.MinTickPixels)
	}
	if spacing <= 0 {
		return
	}
	vw := g.view.VisibleWorld()
	xr := object.Range{Min: vw.X, Max: vw.X + vw.Width}
	yr := object.Range{Min: vw.Y, Max: vw.Y + vw.Height}
	if !xr.Valid() || !yr.Valid() {
		return
	}

	major := g.stroke
	g.gridLines(xr, yr, spacing, 0, major)

	if !gr.ShowMinor || gr.Subdivisions < 2 {
		return
	}
	minor := major
	minor.Opacity = geom.Clamp(major.Opacity*gr.MinorOpacity, 0, 1)
	minor.Width = major.Width / 2
	g.gridLines(xr, yr, spacing/float64(gr.Subdivisions), gr.Subdivisions, minor)
}

// gridLines emits vertical and horizontal lines at multiples of step. When
// skip is non-zero, every skip-th line is left out because a major line
// already covers it. If the line count had to be coarsened the minor set is
// dropped entirely.
func (g *generator) gridLines(xr, yr object.Range, step float64, skip int, st Stroke) {
	emit := func(r object.Range, line func(v float64) (geom.Vec2, geom.Vec2)) {
		first, last, used := tickRange(r, step, g.opts.MaxGridLines)
		if skip > 0 && used != step {
			return
		}
		for i := first; i <= last; i++ {
			if skip > 0 && i%int64(skip) == 0 {
				continue
			}
			a, b := line(float64(i) * used)
			g.frag.add(Polyline, []geom.Vec2{g.view.WorldToScreen(a), g.view.WorldToScreen(b)}, st, nil)
		}
	}
	emit(xr, func(x float64) (geom.Vec2, geom.Vec2) { return geom.V(x, yr.Min), geom.V(x, yr.Max) })
	emit(yr, func(y float64) (geom.Vec2, geom.Vec2) { return geom.V(xr.Min, y), geom.V(xr.Max, y) })
}
