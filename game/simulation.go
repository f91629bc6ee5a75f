package game

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/systems"
	"github.com/pthm-cable/horde/telemetry"
)

// TickInput is everything the simulation needs from the outside for one tick.
type TickInput struct {
	Tick         int64
	Viewpoint    r2.Vec
	ViewW, ViewH float64
	CostMS       float64 // Measured cost of the previous frame
	Occluders    systems.OccluderSet
	Target       systems.Target
}

// ActorIntent is the result of one behavior update.
type ActorIntent struct {
	Handle   ecs.Entity
	Velocity r2.Vec
	Fired    int // Fire requests issued this tick
}

// TickOutput summarizes one tick. Its slices are reused by the next Advance.
type TickOutput struct {
	Intents []ActorIntent
	Fires   []systems.FireRequest
	Cues    []Cue

	LOD         systems.LODCounts
	Tier        systems.Tier
	TierChanged bool
	Stream      systems.StreamStats

	BossPhaseChanges int
	Kills            int
	Removed          int
}

// Advance runs one tick: governor, LOD, behavior, terrain, motion and
// cleanup, in that order.
func (s *Simulation) Advance(in TickInput) TickOutput {
	s.perfCollector.StartTick()
	s.tick = in.Tick
	s.viewpoint = in.Viewpoint
	s.intents = s.intents[:0]
	s.tickFires = s.tickFires[:0]
	s.tickCues = s.tickCues[:0]

	var out TickOutput

	s.perfCollector.StartPhase(telemetry.PhaseGovernor)
	out.Tier, out.TierChanged = s.governor.Record(in.CostMS, in.Tick)
	settings := s.governor.Settings()

	s.perfCollector.StartPhase(telemetry.PhaseLOD)
	out.LOD = s.classify(in, settings)

	s.perfCollector.StartPhase(telemetry.PhaseBehavior)
	// Sight checks on the first tick need terrain under the viewpoint
	if s.terrainOccludes && s.terrain.Loaded() == 0 {
		s.terrain.Update(in.Viewpoint, in.ViewW, in.ViewH, in.Tick)
	}
	blocker := s.blocker(in.Occluders)
	out.BossPhaseChanges = s.updateBehavior(in, blocker)

	s.perfCollector.StartPhase(telemetry.PhaseTerrain)
	out.Stream = s.terrain.Update(in.Viewpoint, in.ViewW, in.ViewH, in.Tick)

	s.perfCollector.StartPhase(telemetry.PhaseMotion)
	s.integrate(blocker)

	s.perfCollector.StartPhase(telemetry.PhaseCleanup)
	out.Kills, out.Removed = s.cleanup()

	out.Intents = s.intents
	out.Fires = s.tickFires
	out.Cues = s.tickCues

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.recordTick(&out, in.CostMS)
	s.flushTelemetry()
	if s.summaryEvery > 0 && in.Tick > 0 && in.Tick%s.summaryEvery == 0 {
		s.logSummary(&out)
	}

	s.perfCollector.EndTick()
	return out
}

// blocker combines the frame occluders with loaded terrain.
func (s *Simulation) blocker(occluders systems.OccluderSet) systems.Blocker {
	if !s.terrainOccludes {
		return occluders
	}
	s.blockers = append(s.blockers[:0], occluders, s.terrain)
	return s.blockers
}

// classify assigns every actor its LOD state for this tick.
func (s *Simulation) classify(in TickInput, settings systems.TierSettings) systems.LODCounts {
	s.lodEntries = s.lodEntries[:0]

	query := s.actorFilter.Query()
	for query.Next() {
		pos, _, _, _, _, _, _, lod := query.Get()
		s.lodEntries = append(s.lodEntries, systems.LODEntry{
			Entity: query.Entity(),
			Pos:    pos.Vec(),
			LOD:    lod,
		})
	}

	return s.lod.Classify(s.lodEntries, in.Viewpoint, in.Tick, settings)
}

// updateBehavior evaluates boss phases for every boss and runs the behavior
// controller for actors whose LOD bucket is due. Returns the number of boss
// phase changes.
func (s *Simulation) updateBehavior(in TickInput, blocker systems.Blocker) int {
	s.collectAlerts(in.Tick)

	bin := systems.BehaviorInput{
		Tick:    in.Tick,
		Target:  in.Target,
		Blocker: blocker,
	}

	phaseChanges := 0
	query := s.actorFilter.Query()
	for query.Next() {
		pos, vel, health, actor, behavior, path, sight, lod := query.Get()
		e := query.Entity()

		var boss *components.Boss
		if s.bossMap.Has(e) {
			boss = s.bossMap.Get(e)
			// Phase follows health even while the boss is asleep
			if s.controller.EvaluateBossPhase(boss, *health, actor.ID, pos.Vec(), in.Tick) {
				phaseChanges++
			}
		}

		state := systems.ActorState{
			Pos:      pos,
			Health:   health,
			Actor:    actor,
			Behavior: behavior,
			Path:     path,
			Sight:    sight,
			Boss:     boss,
		}
		switch {
		case lod.State != components.LODActive:
			vel.X, vel.Y = 0, 0
			continue
		case !lod.Updated:
			// Bosses keep their last velocity between updates
			if boss == nil {
				vel.Set(s.controller.UpdateSimplified(state, in.Target.Pos))
			}
			continue
		}

		if s.groupMap.Has(e) {
			g := s.groupMap.Get(e)
			state.Alerted = s.alerted[g.ID]
			if g.Role == components.RoleFlanker {
				state.FlankSide = flankSide(actor.ID)
			}
		}

		intent := s.controller.Update(state, bin)
		vel.Set(intent.Velocity)
		s.intents = append(s.intents, ActorIntent{
			Handle:   e,
			Velocity: intent.Velocity,
			Fired:    intent.Shots,
		})
	}
	return phaseChanges
}

// collectAlerts marks every group in which some active member saw the target
// within the last visibility interval. Sleeping and culled members keep a
// cached sight that is never refreshed, so they do not count.
func (s *Simulation) collectAlerts(tick int64) {
	clear(s.alerted)

	query := s.actorFilter.Query()
	for query.Next() {
		_, _, _, _, _, _, sight, lod := query.Get()
		if lod.State != components.LODActive || !sight.Valid || !sight.Visible {
			continue
		}
		if tick-sight.CheckedAt >= s.oracle.Interval {
			continue
		}
		e := query.Entity()
		if s.groupMap.Has(e) {
			s.alerted[s.groupMap.Get(e).ID] = true
		}
	}
}

// flankSide splits flankers between the two sides of the approach line.
func flankSide(id uint32) float64 {
	if id%2 == 0 {
		return 1
	}
	return -1
}
