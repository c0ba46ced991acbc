// Package animation advances time-driven interpolation of object
// attributes and writes the results back into the scene.
package animation

import (
	"log/slog"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
	"github.com/inamate/rim/internal/typeid"
)

// Scene is the part of the object registry the engine reads and writes.
// *object.Registry satisfies it.
type Scene interface {
	Get(id object.ID) (object.Object, bool)
	SetPosition(id object.ID, p geom.Vec2) bool
	SetScale(id object.ID, s float64) bool
	SetOpacity(id object.ID, a float64) bool
	SetReveal(id object.ID, f float64) bool
}

// Engine owns the animation tracks of a scene. Tracks are advanced in the
// order they were started, so when two tracks drive the same attribute of
// the same object the later one wins.
//
// Engine is not safe for concurrent use.
type Engine struct {
	scene  Scene
	tracks []*Track
}

// New creates an engine writing through scene.
func New(scene Scene) *Engine {
	return &Engine{scene: scene}
}

// Play starts a track on an object. The track is Pending until the next
// Advance, which captures its start value. It returns the track ID, or ""
// when the object is unknown or the spec is invalid.
func (e *Engine) Play(id object.ID, spec TrackSpec) string {
	if _, ok := e.scene.Get(id); !ok {
		slog.Debug("animation: play on unknown object", "object", id)
		return ""
	}
	if !spec.valid() {
		slog.Debug("animation: invalid track spec", "object", id, "target", spec.Target)
		return ""
	}
	if spec.Easing == "" {
		spec.Easing = Linear
	}
	tr := &Track{
		ID:       typeid.NewTrackID(),
		Object:   id,
		Target:   spec.Target,
		Easing:   spec.Easing,
		Duration: max(spec.Duration, 0),
		Loop:     spec.Loop,
		State:    Pending,
		To:       spec.To,
	}
	if spec.From != nil {
		tr.From = *spec.From
		tr.fixedFrom = true
	}
	e.tracks = append(e.tracks, tr)
	return tr.ID
}

// Stop removes every track of an object. The object keeps its current
// values. It returns the number of tracks removed.
func (e *Engine) Stop(id object.ID) int {
	n := len(e.tracks)
	e.tracks = filter(e.tracks, func(t *Track) bool { return t.Object != id })
	return n - len(e.tracks)
}

// StopTrack removes a single track.
func (e *Engine) StopTrack(trackID string) bool {
	n := len(e.tracks)
	e.tracks = filter(e.tracks, func(t *Track) bool { return t.ID != trackID })
	return n != len(e.tracks)
}

// Clear removes all tracks.
func (e *Engine) Clear() {
	e.tracks = nil
}

// Advance moves every track forward by dt seconds and writes the
// interpolated values. Negative or non-finite dt counts as zero.
//
// Tracks that finished during the previous Advance are discarded first, so a
// finished track remains observable for exactly one frame. Tracks whose
// object no longer exists are discarded too.
func (e *Engine) Advance(dt float64) {
	if !geom.IsFinite(dt) || dt < 0 {
		dt = 0
	}
	e.tracks = filter(e.tracks, func(t *Track) bool {
		if t.State == Finished {
			return false
		}
		if _, ok := e.scene.Get(t.Object); !ok {
			slog.Debug("animation: dropping track of removed object", "track", t.ID, "object", t.Object)
			return false
		}
		return true
	})

	for _, t := range e.tracks {
		if t.State == Pending {
			if !t.fixedFrom {
				t.From = e.current(t)
			}
			t.State = Playing
		}

		t.Elapsed = min(t.Elapsed+dt, t.Duration)
		e.write(t, t.value())

		if t.Elapsed < t.Duration {
			continue
		}
		if t.Loop && t.Duration > 0 {
			t.Elapsed = 0
			t.State = Looping
		} else {
			t.State = Finished
		}
	}
}

func (e *Engine) current(t *Track) Value {
	o, _ := e.scene.Get(t.Object)
	switch t.Target {
	case TargetPosition:
		return Value(o.Placement.Position)
	case TargetScale:
		return Scalar(o.Placement.Scale)
	case TargetOpacity:
		return Scalar(o.Style.Opacity)
	case TargetReveal:
		return Scalar(o.Placement.Reveal)
	}
	return Value{}
}

func (e *Engine) write(t *Track, v Value) {
	switch t.Target {
	case TargetPosition:
		e.scene.SetPosition(t.Object, v.vec())
	case TargetScale:
		e.scene.SetScale(t.Object, v.X)
	case TargetOpacity:
		e.scene.SetOpacity(t.Object, v.X)
	case TargetReveal:
		e.scene.SetReveal(t.Object, v.X)
	}
}

// Tracks returns snapshots of all tracks in start order.
func (e *Engine) Tracks() []Track {
	out := make([]Track, len(e.tracks))
	for i, t := range e.tracks {
		out[i] = *t
	}
	return out
}

// Track returns a snapshot of one track.
func (e *Engine) Track(trackID string) (Track, bool) {
	for _, t := range e.tracks {
		if t.ID == trackID {
			return *t, true
		}
	}
	return Track{}, false
}

// Active returns the number of tracks that will write on the next Advance.
func (e *Engine) Active() int {
	n := 0
	for _, t := range e.tracks {
		if t.State != Finished {
			n++
		}
	}
	return n
}

func filter(tracks []*Track, keep func(*Track) bool) []*Track {
	out := tracks[:0]
	for _, t := range tracks {
		if keep(t) {
			out = append(out, t)
		}
	}
	clear(tracks[len(out):])
	return out
}
