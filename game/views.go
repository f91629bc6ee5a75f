package game

import (
	"iter"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/systems"
)

// ActorView is a read-only copy of an actor's state for renderers and tests.
type ActorView struct {
	Handle    ecs.Entity
	ID        uint32
	Type      components.ActorType
	Pos       r2.Vec
	Velocity  r2.Vec
	Health    components.Health
	Radius    float64
	State     components.BehaviorState
	LOD       components.LODState
	Updated   bool
	Group     uint32 // 0 when ungrouped
	Role      components.GroupRole
	BossPhase int // 0 for non-boss actors
	Pattern   components.BossPattern
	Waypoints []r2.Vec // Remaining planned waypoints, shared with the actor
}

// Actors iterates over every living actor.
func (s *Simulation) Actors() iter.Seq[ActorView] {
	return func(yield func(ActorView) bool) {
		query := s.actorFilter.Query()
		for query.Next() {
			if !yield(s.view(query.Entity())) {
				query.Close()
				return
			}
		}
	}
}

// Actor returns the view of a single actor.
func (s *Simulation) Actor(e ecs.Entity) (ActorView, bool) {
	if !s.world.Alive(e) {
		return ActorView{}, false
	}
	return s.view(e), true
}

func (s *Simulation) view(e ecs.Entity) ActorView {
	pos, vel, health, actor, behavior, path, _, lod := s.actorMapper.Get(e)
	v := ActorView{
		Handle:   e,
		ID:       actor.ID,
		Type:     actor.Type,
		Pos:      pos.Vec(),
		Velocity: vel.Vec(),
		Health:   *health,
		State:    behavior.State,
		LOD:      lod.State,
		Updated:  lod.Updated,
	}
	if !path.Empty() {
		v.Waypoints = path.Waypoints[path.Cursor:]
	}
	if s.bodyMap.Has(e) {
		v.Radius = s.bodyMap.Get(e).Radius
	}
	if s.groupMap.Has(e) {
		g := s.groupMap.Get(e)
		v.Group, v.Role = g.ID, g.Role
	}
	if s.bossMap.Has(e) {
		b := s.bossMap.Get(e)
		v.BossPhase = b.Phase
		v.Pattern = systems.CurrentPattern(b)
	}
	return v
}
