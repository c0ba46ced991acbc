package geometry

import (
	"math"
	"strconv"

	"github.com/inamate/rim/internal/geom"
	"github.com/inamate/rim/internal/object"
)

var niceMantissas = [...]float64{1, 2, 5}

// NiceStep returns the smallest step from the {1, 2, 5} x 10^k family whose
// on-screen spacing at scale pixels per unit is at least minPixels.
// It returns 0 for non-positive or non-finite input.
//
// Multiplying scale by 10 divides the result by 10.
func NiceStep(scale, minPixels float64) float64 {
	if !(scale > 0) || !(minPixels > 0) || !geom.IsFinite(scale) || !geom.IsFinite(minPixels) {
		return 0
	}
	raw := minPixels / scale
	if !geom.IsFinite(raw) || raw == 0 {
		return 0
	}
	const rel = 1 - 1e-12
	start := int(math.Floor(math.Log10(raw)))
	for k := start; k <= start+1; k++ {
		p := math.Pow10(k)
		for _, m := range niceMantissas {
			step := m * p
			if step > 0 && step*scale >= minPixels*rel {
				return step
			}
		}
	}
	return 0
}

// tickRange returns the first and last multiples of step inside r. If there
// would be more than limit of them, step is coarsened by factors of 10 until
// there are not; the step actually used is returned.
func tickRange(r object.Range, step float64, limit int) (first, last int64, used float64) {
	for i := 0; i < 32; i++ {
		lo := math.Ceil(r.Min/step - 1e-9)
		hi := math.Floor(r.Max/step + 1e-9)
		if n := hi - lo + 1; n <= float64(limit) {
			return int64(lo), int64(hi), step
		}
		step *= 10
	}
	return 1, 0, step
}

// stepDecimals returns how many decimals are needed to print multiples of
// step exactly.
func stepDecimals(step float64) int {
	for d := 0; d < 12; d++ {
		s := step * math.Pow10(d)
		if math.Abs(s-math.Round(s)) < 1e-9*max(1, math.Abs(s)) {
			return d
		}
	}
	return 12
}

// FormatTick formats a tick value with the precision its step calls for.
func FormatTick(v, step float64) string {
	s := strconv.FormatFloat(v, 'f', stepDecimals(step), 64)
	if neg := s[0] == '-'; neg {
		zero := true
		for _, c := range s[1:] {
			if c != '0' && c != '.' {
				zero = false
				break
			}
		}
		if zero {
			return s[1:]
		}
	}
	return s
}
