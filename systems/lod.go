package systems

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
)

// LODEntry is one actor submitted for classification.
// LOD must point at the actor's live component.
type LODEntry struct {
	Entity   ecs.Entity
	Pos      r2.Vec
	LOD      *components.LOD
	Distance float64
}

// LODCounts holds classification totals for one tick.
type LODCounts struct {
	Active   int
	Sleeping int
	Culled   int
	Updated  int // Active actors whose behavior runs this tick
}

// Total returns the number of classified actors.
func (c LODCounts) Total() int {
	return c.Active + c.Sleeping + c.Culled
}

// LODCoordinator classifies actors by distance to the viewpoint.
type LODCoordinator struct {
	warned [len(tierNames)]bool
}

// NewLODCoordinator creates a coordinator.
func NewLODCoordinator() *LODCoordinator {
	return &LODCoordinator{}
}

// Classify sorts entries by distance to viewpoint and assigns each a state:
// culled beyond the cull distance, sleeping beyond the sleep distance or
// once the active cap is full, active otherwise. Active actors are marked
// Updated when their frequency bucket has elapsed.
func (c *LODCoordinator) Classify(entries []LODEntry, viewpoint r2.Vec, tick int64, s TierSettings) LODCounts {
	if s.Clamped && int(s.Tier) < len(c.warned) && !c.warned[s.Tier] {
		c.warned[s.Tier] = true
		slog.Warn("lod sleep distance exceeds cull distance after tier scaling, clamped",
			"tier", s.Tier.String(),
			"cull_distance", s.CullDistance,
		)
	}

	for i := range entries {
		entries[i].Distance = distance(entries[i].Pos, viewpoint)
	}
	slices.SortStableFunc(entries, func(a, b LODEntry) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	nearLimit := s.SleepDistance / 2

	var counts LODCounts
	for i := range entries {
		e := &entries[i]
		l := e.LOD
		l.Distance = e.Distance
		l.Updated = false

		switch {
		case e.Distance > s.CullDistance:
			l.State = components.LODCulled
			counts.Culled++
		case e.Distance > s.SleepDistance || counts.Active >= s.MaxActive:
			l.State = components.LODSleeping
			counts.Sleeping++
		default:
			l.State = components.LODActive
			counts.Active++
			if e.Distance <= nearLimit {
				l.Frequency = s.NearFrequency
			} else {
				l.Frequency = s.FarFrequency
			}
			if !l.HasUpdated || tick-l.LastUpdate >= int64(l.Frequency) {
				l.Updated = true
				l.HasUpdated = true
				l.LastUpdate = tick
				counts.Updated++
			}
		}
	}
	return counts
}
