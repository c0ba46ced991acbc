package object

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a straight-alpha RGBA colour with components in [0, 1].
// It marshals to and from "#rrggbb" / "#rrggbbaa" text.
type Color struct {
	R, G, B, A float64
}

var (
	White = Color{1, 1, 1, 1}
	Black = Color{0, 0, 0, 1}
	Gray  = Color{0.3, 0.3, 0.3, 1}
	Green = Color{0.2, 0.8, 0.2, 1}
)

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}

func channel(f float64) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}

// Hex formats c as "#rrggbbaa".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B), channel(c.A))
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.Hex()), nil }

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Style is how an object is stroked and filled.
type Style struct {
	Stroke      Color   `json:"stroke" toml:"stroke"`
	Fill        *Color  `json:"fill,omitempty" toml:"fill,omitempty"`
	StrokeWidth float64 `json:"strokeWidth" toml:"stroke_width"`
	Opacity     float64 `json:"opacity" toml:"opacity"`
}

// DefaultStyle is a 2px white stroke without fill.
func DefaultStyle() Style {
	return Style{
		Stroke:      White,
		StrokeWidth: 2,
		Opacity:     1,
	}
}

// Equal reports whether two styles are identical, comparing fill colours by
// value.
func (s Style) Equal(o Style) bool {
	if s.Stroke != o.Stroke || s.StrokeWidth != o.StrokeWidth || s.Opacity != o.Opacity {
		return false
	}
	switch {
	case s.Fill == nil && o.Fill == nil:
		return true
	case s.Fill == nil || o.Fill == nil:
		return false
	}
	return *s.Fill == *o.Fill
}

// WithFill returns a copy of s filled with c.
func (s Style) WithFill(c Color) Style {
	s.Fill = &c
	return s
}
