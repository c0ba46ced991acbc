package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixAxes      = "axes"
	PrefixGrid      = "grid"
	PrefixCircle    = "circle"
	PrefixLine      = "line"
	PrefixRectangle = "rect"
	PrefixFunction  = "function"
	PrefixCurve     = "curve"
	PrefixTrack     = "anim"
	PrefixSession   = "sess"
	PrefixPreset    = "preset"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewTrackID() string   { return New(PrefixTrack) }
func NewSessionID() string { return New(PrefixSession) }
func NewPresetID() string  { return New(PrefixPreset) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
