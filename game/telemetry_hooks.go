package game

import (
	"log/slog"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/telemetry"
)

// recordTick adds this tick's sample to the stats window.
func (s *Simulation) recordTick(out *TickOutput, costMS float64) {
	sample := s.pending
	sample.Active = out.LOD.Active
	sample.Sleeping = out.LOD.Sleeping
	sample.Culled = out.LOD.Culled
	sample.Updated = out.LOD.Updated
	sample.Fires = len(out.Fires)
	sample.Kills = out.Kills
	sample.Removed = out.Removed
	sample.BossPhaseChanges = out.BossPhaseChanges
	sample.ChunksGenerated = out.Stream.Generated
	sample.ChunksEvicted = out.Stream.Evicted
	sample.OverCapacity = out.Stream.OverCapacity
	sample.TierChanged = out.TierChanged
	sample.CostMS = costMS

	s.collector.Record(sample)
	s.pending = telemetry.TickSample{}
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.windowEnd())
	perfStats := s.perfCollector.Stats()

	// Call stats callback if provided
	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.outputManager != nil {
		if err := s.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	// Check for bookmarks
	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.outputManager != nil {
			if err := s.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
		if s.snapshotDir != "" {
			path, err := telemetry.SaveSnapshot(s.Snapshot(&bm), s.snapshotDir)
			if err != nil {
				slog.Error("failed to save snapshot", "error", err)
			} else if s.logStats {
				slog.Info("snapshot saved", "path", path)
			}
		}
	}
}

// windowEnd snapshots the population at the end of a stats window.
func (s *Simulation) windowEnd() telemetry.WindowEnd {
	end := telemetry.WindowEnd{
		Actors:       s.aliveCount,
		Progress:     s.Progress(),
		ChunksLoaded: s.terrain.Loaded(),
		Tier:         s.governor.Tier().String(),
	}

	query := s.actorFilter.Query()
	for query.Next() {
		_, _, _, _, behavior, _, _, _ := query.Get()
		if behavior.State.Valid() {
			end.States[behavior.State]++
		}
	}
	return end
}

// StateCounts returns the number of living actors in each behavior state.
func (s *Simulation) StateCounts() [components.NumBehaviorStates]int {
	return s.windowEnd().States
}

// Snapshot captures the arena state. bm may be nil.
func (s *Simulation) Snapshot(bm *telemetry.Bookmark) *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:      telemetry.SnapshotVersion,
		RNGSeed:      s.seed,
		WorldWidth:   s.cfg.World.Width,
		WorldHeight:  s.cfg.World.Height,
		Tick:         s.tick,
		Tier:         s.governor.Tier().String(),
		Progress:     s.Progress(),
		Viewpoint:    [2]float64{s.viewpoint.X, s.viewpoint.Y},
		ChunksLoaded: s.terrain.Loaded(),
		Actors:       make([]telemetry.ActorState, 0, s.aliveCount),
		Bookmark:     bm,
	}

	for v := range s.Actors() {
		a := telemetry.ActorState{
			ID:        v.ID,
			Type:      v.Type.String(),
			X:         v.Pos.X,
			Y:         v.Pos.Y,
			VelX:      v.Velocity.X,
			VelY:      v.Velocity.Y,
			Health:    v.Health.Current,
			MaxHealth: v.Health.Max,
			State:     v.State.String(),
			LOD:       v.LOD.String(),
			Group:     v.Group,
			BossPhase: v.BossPhase,
			Waypoints: len(v.Waypoints),
		}
		if v.Group != 0 {
			a.Role = v.Role.String()
		}
		snap.Actors = append(snap.Actors, a)
	}
	return snap
}
