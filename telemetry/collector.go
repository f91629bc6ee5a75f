package telemetry

import "math"

// TickSample is what one simulation tick contributes to the current window.
type TickSample struct {
	Active, Sleeping, Culled, Updated int

	Fires            int
	Spawned          int
	Kills            int
	Removed          int
	BossPhaseChanges int

	ChunksGenerated int
	ChunksEvicted   int
	OverCapacity    bool

	TierChanged bool
	CostMS      float64
}

// WindowEnd is the population snapshot taken when a window is flushed.
type WindowEnd struct {
	Actors       int
	Progress     float64
	States       [5]int // Indexed by behavior state
	ChunksLoaded int
	Tier         string
}

// Collector accumulates per-tick samples within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int64
	dt                  float64

	// Current window tracking
	windowStartTick int64
	ticks           int

	// Sums for the current window
	active, sleeping, culled, updated int
	fires, spawned, kills, removed    int
	bossPhaseChanges                  int
	chunksGenerated, chunksEvicted    int
	overCapacity                      bool
	tierChanges                       int
	costs                             []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float64) *Collector {
	ticksPerWindow := int64(math.Round(windowDurationSec / dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		costs:               make([]float64, 0, ticksPerWindow),
	}
}

// Record adds one tick to the current window.
func (c *Collector) Record(s TickSample) {
	c.ticks++
	c.active += s.Active
	c.sleeping += s.Sleeping
	c.culled += s.Culled
	c.updated += s.Updated
	c.fires += s.Fires
	c.spawned += s.Spawned
	c.kills += s.Kills
	c.removed += s.Removed
	c.bossPhaseChanges += s.BossPhaseChanges
	c.chunksGenerated += s.ChunksGenerated
	c.chunksEvicted += s.ChunksEvicted
	c.overCapacity = c.overCapacity || s.OverCapacity
	if s.TierChanged {
		c.tierChanges++
	}
	c.costs = append(c.costs, s.CostMS)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int64, end WindowEnd) WindowStats {
	mean := func(sum int) float64 {
		if c.ticks == 0 {
			return 0
		}
		return float64(sum) / float64(c.ticks)
	}
	costMean, costP50, costP90, costMax := ComputeCostStats(c.costs)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Actors:   end.Actors,
		Progress: end.Progress,

		Idle:        end.States[0],
		Chase:       end.States[1],
		Attack:      end.States[2],
		Retreat:     end.States[3],
		Pathfinding: end.States[4],

		ActiveMean:   mean(c.active),
		SleepingMean: mean(c.sleeping),
		CulledMean:   mean(c.culled),
		UpdatedMean:  mean(c.updated),

		Fires:            c.fires,
		Spawned:          c.spawned,
		Kills:            c.kills,
		Removed:          c.removed,
		BossPhaseChanges: c.bossPhaseChanges,

		ChunksGenerated: c.chunksGenerated,
		ChunksEvicted:   c.chunksEvicted,
		ChunksLoaded:    end.ChunksLoaded,
		OverCapacity:    c.overCapacity,

		Tier:        end.Tier,
		TierChanges: c.tierChanges,
		CostMean:    costMean,
		CostP50:     costP50,
		CostP90:     costP90,
		CostMax:     costMax,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.ticks = 0
	c.active, c.sleeping, c.culled, c.updated = 0, 0, 0, 0
	c.fires, c.spawned, c.kills, c.removed = 0, 0, 0, 0
	c.bossPhaseChanges = 0
	c.chunksGenerated, c.chunksEvicted = 0, 0
	c.overCapacity = false
	c.tierChanges = 0
	c.costs = c.costs[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
