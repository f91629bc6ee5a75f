package game

import (
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/systems"
)

// removal is an actor scheduled for removal by cleanup.
type removal struct {
	entity ecs.Entity
	id     uint32
	killed bool
}

// Populate creates the level population around center: the configured number
// of regular actors, some of them in groups, plus the boss group when enabled.
func (s *Simulation) Populate(center r2.Vec) {
	pop := s.cfg.Population

	groups := 0
	for n := 0; n < pop.Initial; {
		pos := s.spawnPoint(center)
		if pop.GroupSize > 1 && s.rng.Float64() < pop.GroupChance {
			size := min(pop.GroupSize, pop.Initial-n)
			n += len(s.SpawnGroup(pos, size))
			groups++
			continue
		}
		s.Spawn(systems.PickActorType(s.cfg, s.rng), pos)
		n++
	}

	if pop.Boss {
		s.SpawnBoss(s.spawnPoint(center), pop.GroupSize-1)
	}

	slog.Info("level populated",
		"actors", s.aliveCount,
		"groups", groups,
		"boss", pop.Boss,
	)
}

// spawnPoint picks a random point in the spawn ring around center, clamped
// into world bounds.
func (s *Simulation) spawnPoint(center r2.Vec) r2.Vec {
	pop := s.cfg.Population
	angle := s.rng.Float64() * 2 * math.Pi
	dist := pop.MinSpawnDistance + s.rng.Float64()*math.Max(0, pop.SpawnRadius-pop.MinSpawnDistance)
	p := r2.Add(center, r2.Scale(dist, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}))
	p.X = math.Min(math.Max(p.X, 0), s.cfg.World.Width)
	p.Y = math.Min(math.Max(p.Y, 0), s.cfg.World.Height)
	return p
}

// Spawn creates one ungrouped actor of the given type.
func (s *Simulation) Spawn(t components.ActorType, pos r2.Vec) ecs.Entity {
	if t == components.TypeBoss {
		return s.SpawnBoss(pos, 0)
	}
	return s.spawnActor(t, pos)
}

// SpawnGroup creates a group of n actors around pos: a leader, then
// alternating flankers and supports. Returns the members, leader first.
func (s *Simulation) SpawnGroup(pos r2.Vec, n int) []ecs.Entity {
	if n <= 0 {
		return nil
	}
	gid := s.newGroupID()
	members := make([]ecs.Entity, 0, n)

	leader := s.spawnActor(systems.PickActorType(s.cfg, s.rng), pos)
	s.groupMap.Add(leader, &components.Group{ID: gid, Role: components.RoleLeader})
	members = append(members, leader)

	for i := 1; i < n; i++ {
		role := components.RoleFlanker
		if i%2 == 0 {
			role = components.RoleSupport
		}
		e := s.spawnActor(systems.PickActorType(s.cfg, s.rng), s.formationPoint(pos, i, n))
		s.groupMap.Add(e, &components.Group{ID: gid, Role: role})
		members = append(members, e)
	}
	return members
}

// SpawnBoss creates a boss. With escorts > 0 the boss leads a group of that
// many support actors.
func (s *Simulation) SpawnBoss(pos r2.Vec, escorts int) ecs.Entity {
	e := s.spawnActor(components.TypeBoss, pos)

	boss := components.Boss{}
	s.controller.EvaluateBossPhase(&boss, *s.healthMap.Get(e), s.nextID-1, pos, s.tick)
	s.bossMap.Add(e, &boss)
	s.bodyMap.Get(e).Radius *= 2

	if escorts <= 0 {
		return e
	}
	gid := s.newGroupID()
	s.groupMap.Add(e, &components.Group{ID: gid, Role: components.RoleLeader})
	for i := 1; i <= escorts; i++ {
		m := s.spawnActor(systems.PickActorType(s.cfg, s.rng), s.formationPoint(pos, i, escorts+1))
		s.groupMap.Add(m, &components.Group{ID: gid, Role: components.RoleSupport})
	}

	slog.Info("boss spawned", "x", pos.X, "y", pos.Y, "escorts", escorts)
	return e
}

// formationPoint places member i of n on a ring around the leader.
func (s *Simulation) formationPoint(center r2.Vec, i, n int) r2.Vec {
	radius := 3 * s.cfg.Actor.BodyRadius
	angle := 2 * math.Pi * float64(i) / float64(max(1, n-1))
	return r2.Add(center, r2.Scale(radius, r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}))
}

func (s *Simulation) newGroupID() uint32 {
	s.nextGroup++
	return s.nextGroup
}

// spawnActor creates an actor entity with rolled stats.
func (s *Simulation) spawnActor(t components.ActorType, p r2.Vec) ecs.Entity {
	stats, maxHealth := systems.RollStats(s.cfg, t, s.rng)

	id := s.nextID
	s.nextID++

	pos := components.Position{X: p.X, Y: p.Y}
	vel := components.Velocity{}
	health := components.Health{Current: maxHealth, Max: maxHealth}
	actor := components.Actor{ID: id, Type: t, Stats: stats}
	behavior := components.Behavior{State: components.StateIdle}
	path := components.Path{}
	sight := components.Sight{}
	lod := components.LOD{State: components.LODActive}

	e := s.actorMapper.NewEntity(&pos, &vel, &health, &actor, &behavior, &path, &sight, &lod)
	s.bodyMap.Add(e, &components.Body{Radius: s.cfg.Actor.BodyRadius, Solid: true})

	s.aliveCount++
	s.spawned++
	s.pending.Spawned++
	return e
}

// SetSolid toggles whether the actor's movement is blocked by occluders.
func (s *Simulation) SetSolid(e ecs.Entity, solid bool) {
	if !s.world.Alive(e) || !s.bodyMap.Has(e) {
		return
	}
	s.bodyMap.Get(e).Solid = solid
}

// Damage reduces the actor's health. It reports whether the hit was lethal;
// the actor itself is removed by the next tick's cleanup.
func (s *Simulation) Damage(e ecs.Entity, amount float64) bool {
	if !s.world.Alive(e) || amount <= 0 {
		return false
	}
	h := s.healthMap.Get(e)
	if h.Dead() {
		return false
	}
	h.Current = math.Max(0, h.Current-amount)
	return h.Dead()
}

// Progress returns the cleared share of every actor spawned this level.
// An empty level counts as fully cleared.
func (s *Simulation) Progress() float64 {
	if s.aliveCount == 0 || s.spawned == 0 {
		return 1
	}
	return float64(s.cleared) / float64(s.spawned)
}

// cleanup removes dead and out-of-bounds actors. Returns kill and
// out-of-bounds counts.
func (s *Simulation) cleanup() (kills, removed int) {
	w := s.cfg.World
	minX, minY := -w.OutOfBoundsMargin, -w.OutOfBoundsMargin
	maxX, maxY := w.Width+w.OutOfBoundsMargin, w.Height+w.OutOfBoundsMargin

	// First pass: collect entities to remove
	s.removals = s.removals[:0]
	query := s.actorFilter.Query()
	for query.Next() {
		pos, _, health, actor, _, _, _, _ := query.Get()
		switch {
		case health.Dead():
			s.removals = append(s.removals, removal{entity: query.Entity(), id: actor.ID, killed: true})
		case pos.X < minX || pos.X > maxX || pos.Y < minY || pos.Y > maxY:
			s.removals = append(s.removals, removal{entity: query.Entity(), id: actor.ID})
		}
	}

	// Second pass: remove them
	for _, r := range s.removals {
		s.world.RemoveEntity(r.entity)
		s.aliveCount--
		s.cleared++
		if r.killed {
			kills++
		} else {
			removed++
			slog.Debug("actor left the world", "actor", r.id, "tick", s.tick)
		}
	}
	return kills, removed
}
