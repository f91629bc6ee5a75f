package game

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/systems"
)

// separationWeight scales the neighbor push relative to actor speed.
const separationWeight = 0.5

// integrate moves active actors by their velocity plus a separation push,
// resolving collisions against blockers per axis.
func (s *Simulation) integrate(blocker systems.Blocker) {
	s.spatialGrid.Clear()
	query := s.actorFilter.Query()
	for query.Next() {
		pos, _, _, _, _, _, _, lod := query.Get()
		if lod.State == components.LODCulled {
			continue
		}
		s.spatialGrid.Insert(query.Entity(), pos.Vec())
	}

	query = s.actorFilter.Query()
	for query.Next() {
		pos, vel, _, actor, behavior, _, _, lod := query.Get()
		if lod.State != components.LODActive {
			continue
		}
		e := query.Entity()
		body := s.bodyMap.Get(e)

		minDist := 2 * body.Radius
		s.neighbors = s.spatialGrid.QueryRadiusInto(s.neighbors[:0], pos.Vec(), minDist, e, s.posMap)
		push := systems.Separation(s.neighbors, minDist)
		step := r2.Add(vel.Vec(), r2.Scale(actor.Stats.Speed*separationWeight, push))

		if moveWithCollision(pos, step, body, blocker) {
			dir := unstick(pos, actor.Stats.Speed, body, blocker, s.rng)
			behavior.WanderDir = dir
			vel.Set(r2.Scale(actor.Stats.Speed, dir))
		}
	}
}

// unstick rolls a new random direction for a body that could not move and
// tries it once at full speed. It returns the new direction.
func unstick(pos *components.Position, speed float64, body *components.Body, blocker systems.Blocker, rng *rand.Rand) r2.Vec {
	angle := rng.Float64() * 2 * math.Pi
	dir := r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
	moveWithCollision(pos, r2.Scale(speed, dir), body, blocker)
	return dir
}

// moveWithCollision applies step one axis at a time; a solid body keeps its
// coordinate on any axis whose move would end inside a blocker. A body that
// already overlaps a blocker moves freely so it can escape. It reports
// whether a non-zero step left the body where it was.
func moveWithCollision(pos *components.Position, step r2.Vec, body *components.Body, blocker systems.Blocker) (stuck bool) {
	if step.X == 0 && step.Y == 0 {
		return false
	}
	if !body.Solid || blocker == nil || blocker.Blocks(pos.Vec(), body.Radius) {
		pos.X += step.X
		pos.Y += step.Y
		return false
	}

	start := *pos
	if next := (r2.Vec{X: pos.X + step.X, Y: pos.Y}); !blocker.Blocks(next, body.Radius) {
		pos.X = next.X
	}
	if next := (r2.Vec{X: pos.X, Y: pos.Y + step.Y}); !blocker.Blocks(next, body.Radius) {
		pos.Y = next.Y
	}
	return *pos == start
}
