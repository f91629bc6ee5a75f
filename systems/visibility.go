package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/config"
)

// Rect is an axis-aligned box.
type Rect struct {
	Min, Max r2.Vec
}

// NewRect creates a rect from its top-left corner and size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Min: r2.Vec{X: x, Y: y}, Max: r2.Vec{X: x + w, Y: y + h}}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p r2.Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Intersects reports whether r and o overlap, edges included.
func (r Rect) Intersects(o Rect) bool {
	return r.Min.X <= o.Max.X && o.Min.X <= r.Max.X && r.Min.Y <= o.Max.Y && o.Min.Y <= r.Max.Y
}

// Center returns the centre of r.
func (r Rect) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(r.Min, r.Max))
}

// Blocker is static geometry that blocks sight and movement.
type Blocker interface {
	// Blocks reports whether the box of half-extent half around p
	// overlaps any occluder.
	Blocks(p r2.Vec, half float64) bool
}

// OccluderSet is a list of occluder bounds.
type OccluderSet []Rect

// Blocks implements Blocker.
func (s OccluderSet) Blocks(p r2.Vec, half float64) bool {
	box := Rect{
		Min: r2.Vec{X: p.X - half, Y: p.Y - half},
		Max: r2.Vec{X: p.X + half, Y: p.Y + half},
	}
	for _, r := range s {
		if r.Intersects(box) {
			return true
		}
	}
	return false
}

// BlocksSegment reports whether the segment from -> to, widened by half on
// each side, crosses any occluder. Each rect is tested exactly with the slab
// method.
func (s OccluderSet) BlocksSegment(from, to r2.Vec, half float64) bool {
	for _, r := range s {
		grown := Rect{
			Min: r2.Vec{X: r.Min.X - half, Y: r.Min.Y - half},
			Max: r2.Vec{X: r.Max.X + half, Y: r.Max.Y + half},
		}
		if segmentIntersectsRect(from, to, grown) {
			return true
		}
	}
	return false
}

// segmentIntersectsRect clips the parametric segment against both slabs of r.
func segmentIntersectsRect(from, to r2.Vec, r Rect) bool {
	d := r2.Sub(to, from)
	tmin, tmax := 0.0, 1.0

	// X slab
	if d.X != 0 {
		t1 := (r.Min.X - from.X) / d.X
		t2 := (r.Max.X - from.X) / d.X
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	} else if from.X < r.Min.X || from.X > r.Max.X {
		return false
	}

	// Y slab
	if d.Y != 0 {
		t1 := (r.Min.Y - from.Y) / d.Y
		t2 := (r.Max.Y - from.Y) / d.Y
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return false
		}
	} else if from.Y < r.Min.Y || from.Y > r.Max.Y {
		return false
	}

	return true
}

// SegmentBlocker is a Blocker that can test a whole segment exactly.
type SegmentBlocker interface {
	Blocker
	BlocksSegment(from, to r2.Vec, half float64) bool
}

// Blockers combines several blockers. Nil entries are skipped.
type Blockers []Blocker

// Blocks implements Blocker.
func (bs Blockers) Blocks(p r2.Vec, half float64) bool {
	for _, b := range bs {
		if b != nil && b.Blocks(p, half) {
			return true
		}
	}
	return false
}

// VisibilityOracle answers line-of-sight queries against static blockers.
type VisibilityOracle struct {
	Step     float64 // Distance between samples
	Probe    float64 // Half-extent of the box tested at each sample
	Interval int64   // Ticks a cached result stays valid
}

// NewVisibilityOracle creates an oracle from config.
func NewVisibilityOracle(cfg config.VisibilityConfig) *VisibilityOracle {
	o := &VisibilityOracle{Step: cfg.Step, Probe: cfg.Probe, Interval: int64(cfg.Interval)}
	if o.Step <= 0 {
		o.Step = 10
	}
	if o.Interval < 1 {
		o.Interval = 1
	}
	return o
}

// IsVisible reports whether the segment from -> to is unobstructed.
// It is false when the segment is longer than maxDistance (maxDistance <= 0
// disables the limit). Occluder sets are tested exactly; other blockers are
// sampled every Step units with both endpoints and the midpoint included.
func (o *VisibilityOracle) IsVisible(from, to r2.Vec, blocker Blocker, maxDistance float64) bool {
	dist := r2.Norm(r2.Sub(to, from))
	if maxDistance > 0 && dist > maxDistance {
		return false
	}
	return !o.obstructed(from, to, dist, blocker)
}

func (o *VisibilityOracle) obstructed(from, to r2.Vec, dist float64, blocker Blocker) bool {
	switch b := blocker.(type) {
	case nil:
		return false
	case Blockers:
		for _, inner := range b {
			if inner != nil && o.obstructed(from, to, dist, inner) {
				return true
			}
		}
		return false
	case SegmentBlocker:
		return b.BlocksSegment(from, to, o.Probe)
	}

	d := r2.Sub(to, from)
	steps := int(math.Ceil(dist / o.Step))
	if steps == 0 {
		return blocker.Blocks(from, o.Probe)
	}
	for i := 0; i <= steps; i++ {
		p := r2.Add(from, r2.Scale(float64(i)/float64(steps), d))
		if blocker.Blocks(p, o.Probe) {
			return true
		}
	}
	// An odd step count straddles the midpoint
	if steps%2 == 1 && blocker.Blocks(r2.Add(from, r2.Scale(0.5, d)), o.Probe) {
		return true
	}
	return false
}

// Check returns the cached visibility in sight, recomputing it only when the
// cache is empty or at least Interval ticks old.
func (o *VisibilityOracle) Check(sight *components.Sight, tick int64, from, to r2.Vec, blocker Blocker, maxDistance float64) bool {
	if sight.Valid && tick-sight.CheckedAt < o.Interval {
		return sight.Visible
	}
	sight.Visible = o.IsVisible(from, to, blocker, maxDistance)
	sight.CheckedAt = tick
	sight.Valid = true
	return sight.Visible
}
