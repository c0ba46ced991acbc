package animation

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
)

// Target is the object attribute a track drives.
type Target string

const (
	TargetPosition Target = "position"
	TargetScale    Target = "scale"
	TargetOpacity  Target = "opacity"
	TargetReveal   Target = "reveal"
)

func (t Target) valid() bool {
	switch t {
	case TargetPosition, TargetScale, TargetOpacity, TargetReveal:
		return true
	}
	return false
}

func (t *Target) UnmarshalText(text []byte) error {
	v := Target(text)
	if !v.valid() {
		return fmt.Errorf("unknown animation target %q", text)
	}
	*t = v
	return nil
}

// State is the lifecycle stage of a track.
type State string

const (
	Pending  State = "pending" // waiting for its first Advance
	Playing  State = "playing"
	Looping  State = "looping"  // wrapped at least once
	Finished State = "finished" // end value written, no further writes
)

// Value is an animated quantity. Scalar targets use X only; in JSON a scalar
// may be written as a bare number.
type Value geom.Vec2

// Scalar returns a Value for a scalar target.
func Scalar(f float64) Value { return Value{X: f} }

func (v Value) vec() geom.Vec2 { return geom.Vec2(v) }

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(geom.Vec2(v))
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*v = Scalar(f)
		return nil
	}
	var p geom.Vec2
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("animation value: %w", err)
	}
	*v = Value(p)
	return nil
}

// TrackSpec describes a track to start.
type TrackSpec struct {
	Target   Target  `json:"target"`
	Duration float64 `json:"duration"` // seconds
	Easing   Easing  `json:"easing,omitempty"`
	Loop     bool    `json:"loop,omitempty"`
	From     *Value  `json:"from,omitempty"` // nil starts from the attribute's value when the track starts
	To       Value   `json:"to"`
}

func (s TrackSpec) valid() bool {
	if !s.Target.valid() || !s.Easing.Valid() || !geom.IsFinite(s.Duration) {
		return false
	}
	if s.From != nil && !s.From.vec().IsFinite() {
		return false
	}
	return s.To.vec().IsFinite()
}

// Track is a snapshot of a running interpolation.
type Track struct {
	ID       string    `json:"id"`
	Object   object.ID `json:"object"`
	Target   Target    `json:"target"`
	Easing   Easing    `json:"easing"`
	Duration float64   `json:"duration"`
	Elapsed  float64   `json:"elapsed"`
	Loop     bool      `json:"loop"`
	State    State     `json:"state"`
	From     Value     `json:"from"`
	To       Value     `json:"to"`

	fixedFrom bool
}

// Progress returns Elapsed/Duration, or 1 for a zero-length track.
func (t *Track) Progress() float64 {
	if t.Duration <= 0 {
		return 1
	}
	return t.Elapsed / t.Duration
}

// value returns the interpolated value at the current elapsed time. Easing
// overshoot is kept.
func (t *Track) value() Value {
	if t.Elapsed >= t.Duration {
		return t.To
	}
	k := t.Easing.Apply(t.Progress())
	return Value(t.From.vec().Lerp(t.To.vec(), k))
}
