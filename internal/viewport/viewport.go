// Package viewport maps between mathematical (world) coordinates and output
// pixel (screen) coordinates and owns zoom and pan semantics.
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/rim/internal/geom"
)

// ErrInvalidTransform reports options that would make the transform
// non-invertible or leave the scale outside its bounds.
var ErrInvalidTransform = errors.New("invalid viewport transform")

// Options configures a Transform.
type Options struct {
	Width, Height float64 // viewport size in pixels
	Scale         float64 // default pixels per world unit
	MinScale      float64
	MaxScale      float64
	ZoomFactor    float64 // scale multiplier per unit of zoom delta
}

// DefaultOptions matches a 1200x800 window at 50 pixels per unit, zoomable
// between 0.1x and 10x of that.
func DefaultOptions() Options {
	return Options{
		Width:      1200,
		Height:     800,
		Scale:      50,
		MinScale:   5,
		MaxScale:   500,
		ZoomFactor: 1.1,
	}
}

func (o Options) validate() error {
	for _, f := range []float64{o.Width, o.Height, o.Scale, o.MinScale, o.MaxScale, o.ZoomFactor} {
		if !geom.IsFinite(f) {
			return fmt.Errorf("%w: non-finite option", ErrInvalidTransform)
		}
	}
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: viewport size %vx%v", ErrInvalidTransform, o.Width, o.Height)
	case o.MinScale <= 0 || o.MinScale > o.MaxScale:
		return fmt.Errorf("%w: zoom bounds [%v, %v]", ErrInvalidTransform, o.MinScale, o.MaxScale)
	case o.Scale < o.MinScale || o.Scale > o.MaxScale:
		return fmt.Errorf("%w: scale %v outside [%v, %v]", ErrInvalidTransform, o.Scale, o.MinScale, o.MaxScale)
	case o.ZoomFactor <= 1:
		return fmt.Errorf("%w: zoom factor %v", ErrInvalidTransform, o.ZoomFactor)
	}
	return nil
}

// Transform is the world<->screen mapping:
//
//	screen = center + (world.x, -world.y) * scale + pan
//
// The Y axis is flipped because pixel rows grow downward.
// Transform is not safe for concurrent use; it is mutated only by the
// goroutine that ticks the scene.
type Transform struct {
	opts     Options
	width    float64
	height   float64
	scale    float64
	pan      geom.Vec2
	revision uint64
}

// New creates a transform at its default scale with no pan.
func New(opts Options) (*Transform, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Transform{
		opts:   opts,
		width:  opts.Width,
		height: opts.Height,
		scale:  opts.Scale,
	}, nil
}

// Scale returns the current number of pixels per world unit.
func (t *Transform) Scale() float64 { return t.scale }

// PanOffset returns the current screen-space pan offset.
func (t *Transform) PanOffset() geom.Vec2 { return t.pan }

// Bounds returns the zoom bounds.
func (t *Transform) Bounds() (lo, hi float64) { return t.opts.MinScale, t.opts.MaxScale }

// Size returns the viewport size in pixels.
func (t *Transform) Size() (w, h float64) { return t.width, t.height }

// Center returns the screen position of the world origin before panning.
func (t *Transform) Center() geom.Vec2 { return geom.V(t.width/2, t.height/2) }

// Revision increases every time the mapping changes. Cached screen-space
// geometry is stale whenever the revision it was built at differs.
func (t *Transform) Revision() uint64 { return t.revision }

// WorldToScreen maps a world point to pixels.
func (t *Transform) WorldToScreen(p geom.Vec2) geom.Vec2 {
	c := t.Center()
	return geom.Vec2{
		X: c.X + p.X*t.scale + t.pan.X,
		Y: c.Y - p.Y*t.scale + t.pan.Y,
	}
}

// ScreenToWorld maps a pixel position to world coordinates.
// It is the exact inverse of WorldToScreen.
func (t *Transform) ScreenToWorld(s geom.Vec2) geom.Vec2 {
	c := t.Center()
	return geom.Vec2{
		X: (s.X - c.X - t.pan.X) / t.scale,
		Y: -(s.Y - c.Y - t.pan.Y) / t.scale,
	}
}

// Matrix returns the world->screen mapping as an affine matrix.
func (t *Transform) Matrix() geom.Matrix2D {
	c := t.Center()
	return geom.Translate(c.X+t.pan.X, c.Y+t.pan.Y).Multiply(geom.Scale(t.scale, -t.scale))
}

// VisibleWorld returns the world-space rectangle covered by the viewport.
func (t *Transform) VisibleWorld() geom.Rect {
	a := t.ScreenToWorld(geom.V(0, 0))
	b := t.ScreenToWorld(geom.V(t.width, t.height))
	return geom.RectFromPoints(a, b)
}

// Zoom multiplies the scale by ZoomFactor^delta, clamped to the zoom bounds,
// keeping the world point under anchor fixed on screen. When the new scale
// had to be clamped, the pan is left alone so repeated zooming against a
// bound cannot drift the view. Non-finite input is ignored.
// It reports whether the transform changed.
func (t *Transform) Zoom(delta float64, anchor geom.Vec2) bool {
	if !geom.IsFinite(delta) || !anchor.IsFinite() {
		return false
	}

	want := t.scale * math.Pow(t.opts.ZoomFactor, delta)
	if !geom.IsFinite(want) || want <= 0 {
		want = t.opts.MaxScale
		if delta < 0 {
			want = t.opts.MinScale
		}
	}
	scale := geom.Clamp(want, t.opts.MinScale, t.opts.MaxScale)
	if scale == t.scale {
		return false
	}

	if scale == want {
		w := t.ScreenToWorld(anchor)
		c := t.Center()
		t.pan = geom.Vec2{
			X: anchor.X - c.X - w.X*scale,
			Y: anchor.Y - c.Y + w.Y*scale,
		}
	}
	t.scale = scale
	t.revision++
	return true
}

// ZoomTo sets an absolute scale around anchor, with the same clamping and
// anchoring rules as Zoom.
func (t *Transform) ZoomTo(scale float64, anchor geom.Vec2) bool {
	if !geom.IsFinite(scale) || scale <= 0 {
		return false
	}
	return t.Zoom(math.Log(scale/t.scale)/math.Log(t.opts.ZoomFactor), anchor)
}

// Pan moves the view by a screen-space offset.
func (t *Transform) Pan(offset geom.Vec2) bool {
	if !offset.IsFinite() || offset == (geom.Vec2{}) {
		return false
	}
	t.pan = t.pan.Add(offset)
	t.revision++
	return true
}

// Reset restores the default scale and removes any pan.
func (t *Transform) Reset() {
	if t.scale == t.opts.Scale && t.pan == (geom.Vec2{}) {
		return
	}
	t.scale = t.opts.Scale
	t.pan = geom.Vec2{}
	t.revision++
}

// Resize changes the viewport size. Non-positive sizes are ignored.
func (t *Transform) Resize(w, h float64) bool {
	if !geom.IsFinite(w) || !geom.IsFinite(h) || w <= 0 || h <= 0 {
		return false
	}
	if w == t.width && h == t.height {
		return false
	}
	t.width, t.height = w, h
	t.revision++
	return true
}
