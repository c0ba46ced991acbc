// Package engine is the per-frame composition root of a scene. It applies
// commands, advances animations, regenerates the geometry of changed objects
// and assembles the batch handed to the renderer.
package engine

import (
	"encoding/json"
	"log/slog"

	"github.com/inamate/rim/internal/animation"
	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/geometry"
	"github.com/inamate/rim/internal/object"
	"github.com/inamate/rim/internal/viewport"
)

// hitSlop widens fragment bounds for hit testing so thin lines can be picked.
const hitSlop = 4

// Options configures an Engine.
type Options struct {
	Geometry geometry.Options
	Paused   bool // start with animation playback paused
}

// DefaultOptions returns the default geometry options with playback running.
func DefaultOptions() Options {
	return Options{Geometry: geometry.DefaultOptions()}
}

// Engine owns the object registry, the viewport and the animation engine of
// one scene. It keeps the last generated fragment of every visible object
// and regenerates a fragment only when its object changed or the viewport
// moved.
//
// Engine is not safe for concurrent use. All calls, including Tick, must come
// from the goroutine that owns it.
type Engine struct {
	objects *object.Registry
	view    *viewport.Transform
	anim    *animation.Engine
	opts    Options

	cache   map[object.ID]geometry.Fragment
	viewRev uint64

	frame   uint64
	playing bool
	created []object.ID
}

// New creates an empty scene rendered through view.
func New(view *viewport.Transform, opts Options) *Engine {
	objects := object.NewRegistry()
	return &Engine{
		objects: objects,
		view:    view,
		anim:    animation.New(objects),
		opts:    opts,
		cache:   make(map[object.ID]geometry.Fragment),
		viewRev: view.Revision(),
		playing: !opts.Paused,
	}
}

// --- Frame ---

// Tick runs one frame: it applies cmds in order, advances animations by dt
// seconds unless playback is paused, regenerates changed geometry and
// returns the frame's batch.
func (e *Engine) Tick(dt float64, cmds []Command) *Batch {
	for _, c := range cmds {
		c.apply(e)
	}
	if e.playing {
		e.anim.Advance(dt)
	}

	stats := e.regenerate()
	b := e.assemble(stats)
	e.frame++
	return b
}

// regenerate brings the fragment cache up to date and clears the registry's
// change set.
func (e *Engine) regenerate() Stats {
	var stats Stats
	if rev := e.view.Revision(); rev != e.viewRev {
		e.viewRev = rev
		e.objects.MarkAllChanged()
		stats.ViewChanged = true
	}

	for _, id := range e.objects.Changed() {
		obj, ok := e.objects.Get(id)
		if !ok || !obj.Visible {
			delete(e.cache, id)
			continue
		}
		e.cache[id] = geometry.Generate(obj, e.view, e.opts.Geometry)
		stats.Regenerated++
	}
	e.objects.ClearChanged()
	return stats
}

func (e *Engine) assemble(stats Stats) *Batch {
	b := &Batch{
		Frame:   e.frame,
		View:    e.viewState(),
		Created: e.created,
	}
	e.created = nil

	for _, obj := range e.objects.Ordered() {
		if !obj.Visible {
			continue
		}
		frag, ok := e.cache[obj.ID]
		if !ok || frag.IsEmpty() {
			continue
		}
		stats.Drawn++
		stats.Vertices += frag.Vertices()
		for _, p := range frag.Primitives {
			b.Items = append(b.Items, Item{
				Layer:    obj.Layer,
				ObjectID: obj.ID,
				Kind:     p.Kind,
				Points:   p.Points,
				Stroke:   p.Stroke,
				Fill:     p.Fill,
			})
		}
		b.Labels = append(b.Labels, frag.Labels...)
	}
	stats.Objects = e.objects.Len()
	stats.Tracks = e.anim.Active()
	b.Stats = stats
	return b
}

// --- Objects ---

// CreateObject adds an object and returns its ID, or 0 when kind is nil.
func (e *Engine) CreateObject(kind object.Kind, style object.Style, layer int) object.ID {
	if kind == nil {
		return 0
	}
	id := e.objects.Create(kind, style)
	e.objects.SetLayer(id, layer)
	e.created = append(e.created, id)
	return id
}

// RemoveObject removes an object and its animation tracks. Removing an
// unknown or already removed object does nothing.
func (e *Engine) RemoveObject(id object.ID) bool {
	e.anim.Stop(id)
	return e.objects.Remove(id)
}

// SetVisible shows or hides an object.
func (e *Engine) SetVisible(id object.ID, visible bool) bool {
	return e.objects.SetVisible(id, visible)
}

// SetLayer changes an object's paint order.
func (e *Engine) SetLayer(id object.ID, layer int) bool {
	return e.objects.SetLayer(id, layer)
}

// UpdateStyle replaces an object's style.
func (e *Engine) UpdateStyle(id object.ID, style object.Style) bool {
	return e.objects.UpdateStyle(id, style)
}

// UpdateParams replaces an object's kind parameters. The kind type must
// match the object's.
func (e *Engine) UpdateParams(id object.ID, kind object.Kind) bool {
	return e.objects.UpdateKind(id, kind)
}

// PatchParams merges JSON parameters into an object's current parameters.
func (e *Engine) PatchParams(id object.ID, params json.RawMessage) bool {
	obj, ok := e.objects.Get(id)
	if !ok {
		return false
	}
	kind, err := object.MergeParams(obj.Kind, params)
	if err != nil {
		slog.Debug("engine: params rejected", "object", id, "error", err)
		return false
	}
	return e.objects.UpdateKind(id, kind)
}

// ClearKind removes every object of a kind and returns how many were
// removed.
func (e *Engine) ClearKind(t object.KindType) int {
	for _, obj := range e.objects.Ordered() {
		if obj.Kind.Type() == t {
			e.anim.Stop(obj.ID)
		}
	}
	return e.objects.ClearKind(t)
}

// Clear removes every object and animation track.
func (e *Engine) Clear() {
	e.anim.Clear()
	e.objects.Clear()
}

// Object returns a copy of an object.
func (e *Engine) Object(id object.ID) (object.Object, bool) {
	return e.objects.Get(id)
}

// Objects returns copies of all objects in paint order.
func (e *Engine) Objects() []object.Object {
	return e.objects.Ordered()
}

// --- View ---

// Zoom zooms by delta steps keeping anchor fixed on screen.
func (e *Engine) Zoom(delta float64, anchor geom.Vec2) bool {
	return e.view.Zoom(delta, anchor)
}

// Pan moves the view by a screen-space offset.
func (e *Engine) Pan(offset geom.Vec2) bool {
	return e.view.Pan(offset)
}

// ResetView restores the default zoom and pan.
func (e *Engine) ResetView() {
	e.view.Reset()
}

// Resize changes the output size in pixels.
func (e *Engine) Resize(width, height float64) bool {
	return e.view.Resize(width, height)
}

// Viewport returns the engine's coordinate transform.
func (e *Engine) Viewport() *viewport.Transform {
	return e.view
}

// --- Animation ---

// PlayAnimation starts a track on an object and returns the track ID, or ""
// when the object or spec is invalid.
func (e *Engine) PlayAnimation(id object.ID, spec animation.TrackSpec) string {
	return e.anim.Play(id, spec)
}

// StopAnimation removes every track of an object.
func (e *Engine) StopAnimation(id object.ID) int {
	return e.anim.Stop(id)
}

// StopTrack removes a single track.
func (e *Engine) StopTrack(trackID string) bool {
	return e.anim.StopTrack(trackID)
}

// Animations returns snapshots of all tracks.
func (e *Engine) Animations() []animation.Track {
	return e.anim.Tracks()
}

// SetPlaying starts or pauses animation playback. Paused tracks keep their
// elapsed time.
func (e *Engine) SetPlaying(playing bool) {
	e.playing = playing
}

// TogglePlaying flips playback and returns the new state.
func (e *Engine) TogglePlaying() bool {
	e.playing = !e.playing
	return e.playing
}

// Playing reports whether animations advance on Tick.
func (e *Engine) Playing() bool {
	return e.playing
}

// --- Queries ---

// Frame returns the number of completed ticks.
func (e *Engine) Frame() uint64 {
	return e.frame
}

// HitTest returns the topmost visible object whose geometry, as of the last
// Tick, covers the screen point (x, y).
func (e *Engine) HitTest(x, y float64) (object.ID, bool) {
	p := geom.V(x, y)
	ordered := e.objects.Ordered()
	for i := len(ordered) - 1; i >= 0; i-- {
		obj := ordered[i]
		if !obj.Visible {
			continue
		}
		frag, ok := e.cache[obj.ID]
		if !ok || frag.IsEmpty() {
			continue
		}
		if frag.Bounds.Expand(hitSlop).Contains(p) {
			return obj.ID, true
		}
	}
	return 0, false
}

// State is a serialisable snapshot of the scene.
type State struct {
	Frame   uint64            `json:"frame"`
	Playing bool              `json:"playing"`
	View    ViewState         `json:"view"`
	Objects []object.Object   `json:"objects"`
	Tracks  []animation.Track `json:"tracks"`
}

// State returns a snapshot of the scene.
func (e *Engine) State() State {
	return State{
		Frame:   e.frame,
		Playing: e.playing,
		View:    e.viewState(),
		Objects: e.objects.Ordered(),
		Tracks:  e.anim.Tracks(),
	}
}

func (e *Engine) viewState() ViewState {
	w, h := e.view.Size()
	return ViewState{
		Scale:    e.view.Scale(),
		Pan:      e.view.PanOffset(),
		Width:    w,
		Height:   h,
		Revision: e.view.Revision(),
	}
}
