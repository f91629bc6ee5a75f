package game

import (
	"math/rand"

	"github.com/pthm-cable/horde/systems"
	"github.com/pthm-cable/horde/telemetry"
)

// Simulation constants
const (
	DT           = 1.0 / 60.0 // seconds per tick
	GridCellSize = 64.0       // spatial grid cell size
)

// Options holds collaborators and run settings for a Simulation.
type Options struct {
	Seed int64
	RNG  *rand.Rand // Used instead of Seed when set

	Fire systems.FireSink // Projectile system, may be nil
	Cues systems.CueSink  // Audio cues, may be nil

	// TerrainOccludes makes wall tiles of loaded chunks block sight and
	// movement in addition to the per-tick occluders.
	TerrainOccludes bool

	// Telemetry
	Output        *telemetry.OutputManager
	LogStats      bool
	StatsCallback func(telemetry.WindowStats)
	SummaryEvery  int64  // Ticks between summary logs, 0 disables
	SnapshotDir   string // Bookmarked windows save a snapshot here when set
}

// DefaultOptions returns the options used by the headless runner.
func DefaultOptions() Options {
	return Options{
		Seed:            42,
		TerrainOccludes: true,
		SummaryEvery:    600,
	}
}
