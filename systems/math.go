package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// epsilon below which a vector is treated as zero length.
const epsilon = 1e-9

// unit returns the unit vector of v and false when v has no direction.
// Callers treat a zero vector as "no movement".
func unit(v r2.Vec) (r2.Vec, bool) {
	n := r2.Norm(v)
	if n < epsilon {
		return r2.Vec{}, false
	}
	return r2.Scale(1/n, v), true
}

// toward returns a velocity of the given speed pointing from -> to.
func toward(from, to r2.Vec, speed float64) r2.Vec {
	dir, ok := unit(r2.Sub(to, from))
	if !ok {
		return r2.Vec{}
	}
	return r2.Scale(speed, dir)
}

// awayFrom returns a velocity of the given speed pointing from threat -> pos.
func awayFrom(pos, threat r2.Vec, speed float64) r2.Vec {
	return toward(threat, pos, speed)
}

// perpendicular rotates v by +90 degrees.
func perpendicular(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// distance returns the Euclidean distance between a and b.
func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// fromAngle returns the unit vector at angle a.
func fromAngle(a float64) r2.Vec {
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}

// rotate rotates v by alpha radians about the origin.
func rotate(v r2.Vec, alpha float64) r2.Vec {
	return r2.Rotate(v, alpha, r2.Vec{})
}

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// floorMod returns a modulo b in [0, b).
func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
