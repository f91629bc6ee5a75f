package game

import (
	"log/slog"

	"github.com/pthm-cable/horde/components"
)

// logSummary logs the world state at a glance.
func (s *Simulation) logSummary(out *TickOutput) {
	states := s.StateCounts()
	slog.Info("simulation summary",
		"tick", s.tick,
		"actors", s.aliveCount,
		"progress", s.Progress(),
		"tier", out.Tier.String(),
		"avg_cost_ms", s.governor.AverageCost(),
		"active", out.LOD.Active,
		"sleeping", out.LOD.Sleeping,
		"culled", out.LOD.Culled,
		"idle", states[components.StateIdle],
		"chase", states[components.StateChase],
		"attack", states[components.StateAttack],
		"retreat", states[components.StateRetreat],
		"pathfinding", states[components.StatePathfinding],
		"chunks_loaded", out.Stream.Loaded,
	)
}
