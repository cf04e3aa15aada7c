package locomotion

import "math"

const (
	radPerDeg = math.Pi / 180.0
	degPerRad = 180.0 / math.Pi

	// epsilon guards divisions and near-zero comparisons.
	epsilon = 1e-4
)

// NormalizeDegrees maps an angle into (-180, 180].
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}

// DeltaDegrees returns the shortest signed angular difference to-from,
// normalized into (-180, 180].
func DeltaDegrees(from, to float64) float64 {
	return NormalizeDegrees(to - from)
}

// InterpTo moves current toward target with a frame-rate-independent
// exponential step: the remaining distance decays by e^(-speed*dt). The
// result never overshoots. A non-positive speed snaps to the target.
func InterpTo(current, target, dt, speed float64) float64 {
	if speed <= 0 {
		return target
	}
	return current + (target-current)*(1-math.Exp(-speed*dt))
}

// clamp restricts v to the range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
