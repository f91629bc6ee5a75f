package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Actors   int     `csv:"actors"`
	Progress float64 `csv:"progress"`

	// Behavior states at window end
	Idle        int `csv:"idle"`
	Chase       int `csv:"chase"`
	Attack      int `csv:"attack"`
	Retreat     int `csv:"retreat"`
	Pathfinding int `csv:"pathfinding"`

	// LOD classification, mean per tick over the window
	ActiveMean   float64 `csv:"active_mean"`
	SleepingMean float64 `csv:"sleeping_mean"`
	CulledMean   float64 `csv:"culled_mean"`
	UpdatedMean  float64 `csv:"updated_mean"`

	// Events during window
	Fires            int `csv:"fires"`
	Spawned          int `csv:"spawned"`
	Kills            int `csv:"kills"`
	Removed          int `csv:"removed"` // Out-of-bounds cleanup
	BossPhaseChanges int `csv:"boss_phase_changes"`

	// Terrain churn
	ChunksGenerated int  `csv:"chunks_generated"`
	ChunksEvicted   int  `csv:"chunks_evicted"`
	ChunksLoaded    int  `csv:"chunks_loaded"` // At window end
	OverCapacity    bool `csv:"over_capacity"`

	// Performance tier
	Tier        string  `csv:"tier"` // At window end
	TierChanges int     `csv:"tier_changes"`
	CostMean    float64 `csv:"cost_mean_ms"`
	CostP50     float64 `csv:"cost_p50_ms"`
	CostP90     float64 `csv:"cost_p90_ms"`
	CostMax     float64 `csv:"cost_max_ms"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeCostStats calculates mean, median, p90 and max of tick costs.
func ComputeCostStats(values []float64) (mean, p50, p90, maxVal float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)
	maxVal = sorted[len(sorted)-1]

	return mean, p50, p90, maxVal
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("actors", s.Actors),
		slog.Float64("progress", s.Progress),
		slog.Int("idle", s.Idle),
		slog.Int("chase", s.Chase),
		slog.Int("attack", s.Attack),
		slog.Int("retreat", s.Retreat),
		slog.Int("pathfinding", s.Pathfinding),
		slog.Float64("active_mean", s.ActiveMean),
		slog.Float64("sleeping_mean", s.SleepingMean),
		slog.Float64("culled_mean", s.CulledMean),
		slog.Float64("updated_mean", s.UpdatedMean),
		slog.Int("fires", s.Fires),
		slog.Int("spawned", s.Spawned),
		slog.Int("kills", s.Kills),
		slog.Int("removed", s.Removed),
		slog.Int("boss_phase_changes", s.BossPhaseChanges),
		slog.Int("chunks_generated", s.ChunksGenerated),
		slog.Int("chunks_evicted", s.ChunksEvicted),
		slog.Int("chunks_loaded", s.ChunksLoaded),
		slog.Bool("over_capacity", s.OverCapacity),
		slog.String("tier", s.Tier),
		slog.Int("tier_changes", s.TierChanges),
		slog.Float64("cost_mean_ms", s.CostMean),
		slog.Float64("cost_p90_ms", s.CostP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"actors", s.Actors,
		"progress", s.Progress,
		"active_mean", s.ActiveMean,
		"sleeping_mean", s.SleepingMean,
		"culled_mean", s.CulledMean,
		"updated_mean", s.UpdatedMean,
		"chase", s.Chase,
		"attack", s.Attack,
		"pathfinding", s.Pathfinding,
		"fires", s.Fires,
		"kills", s.Kills,
		"chunks_loaded", s.ChunksLoaded,
		"chunks_generated", s.ChunksGenerated,
		"chunks_evicted", s.ChunksEvicted,
		"tier", s.Tier,
		"tier_changes", s.TierChanges,
		"cost_mean_ms", s.CostMean,
		"cost_p90_ms", s.CostP90,
	)
}
