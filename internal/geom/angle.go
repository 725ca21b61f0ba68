package geom

import "math"

// NormalizeDeg maps an angle in degrees to the half-open interval (-180, 180].
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// AngleDiffDeg returns the signed angular distance from base to target in
// degrees, normalized to (-180, 180]. A positive result means target lies
// clockwise of base on screen.
func AngleDiffDeg(target, base float64) float64 {
	return NormalizeDeg(target - base)
}
