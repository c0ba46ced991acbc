package animation

import (
	"fmt"
	"math"
)

// Easing names a time-remapping function applied to the normalized progress
// of a track.
type Easing string

const (
	Linear     Easing = "linear"
	EaseIn     Easing = "easeIn"
	EaseOut    Easing = "easeOut"
	EaseInOut  Easing = "easeInOut"
	CubicIn    Easing = "cubicIn"
	CubicOut   Easing = "cubicOut"
	CubicInOut Easing = "cubicInOut"
	BackIn     Easing = "backIn"
	BackOut    Easing = "backOut"
	BackInOut  Easing = "backInOut"
	Elastic    Easing = "elastic"
	Bounce     Easing = "bounce"
)

// Easings lists every supported easing.
var Easings = []Easing{
	Linear, EaseIn, EaseOut, EaseInOut,
	CubicIn, CubicOut, CubicInOut,
	BackIn, BackOut, BackInOut,
	Elastic, Bounce,
}

// Valid reports whether e is a known easing. The empty easing is treated as
// Linear.
func (e Easing) Valid() bool {
	if e == "" {
		return true
	}
	for _, k := range Easings {
		if e == k {
			return true
		}
	}
	return false
}

func (e *Easing) UnmarshalText(text []byte) error {
	v := Easing(text)
	if !v.Valid() {
		return fmt.Errorf("unknown easing %q", text)
	}
	*e = v
	return nil
}

// Apply maps progress t in [0, 1] through the easing. Apply(0) is exactly 0
// and Apply(1) exactly 1; in between Back and Elastic curves leave [0, 1].
func (e Easing) Apply(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	switch e {
	case EaseIn:
		return t * t

	case EaseOut:
		return t * (2 - t)

	case EaseInOut:
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t

	case CubicIn:
		return t * t * t

	case CubicOut:
		t2 := 1 - t
		return 1 - t2*t2*t2

	case CubicInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		t2 := -2*t + 2
		return 1 - t2*t2*t2/2

	case BackIn:
		c1 := 1.70158
		c3 := c1 + 1
		return c3*t*t*t - c1*t*t

	case BackOut:
		c1 := 1.70158
		c3 := c1 + 1
		t2 := t - 1
		return 1 + c3*t2*t2*t2 + c1*t2*t2

	case BackInOut:
		c1 := 1.70158
		c2 := c1 * 1.525
		if t < 0.5 {
			return (math.Pow(2*t, 2) * ((c2+1)*2*t - c2)) / 2
		}
		return (math.Pow(2*t-2, 2)*((c2+1)*(t*2-2)+c2) + 2) / 2

	case Elastic:
		c4 := (2 * math.Pi) / 3
		return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1

	case Bounce:
		return bounceOut(t)

	default: // linear
		return t
	}
}

// bounceOut implements the standard 4-segment parabolic bounce curve.
func bounceOut(t float64) float64 {
	n1 := 7.5625
	d1 := 2.75
	if t < 1/d1 {
		return n1 * t * t
	} else if t < 2/d1 {
		t -= 1.5 / d1
		return n1*t*t + 0.75
	} else if t < 2.5/d1 {
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	} else {
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}
