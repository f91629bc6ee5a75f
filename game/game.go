// Package game runs the per-tick simulation over the actor arena.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/config"
	"github.com/pthm-cable/horde/systems"
	"github.com/pthm-cable/horde/telemetry"
)

// Cue is an audio event emitted during a tick.
type Cue struct {
	Name string
	At   r2.Vec
}

// Simulation holds the actor arena and the systems that drive it.
type Simulation struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand

	// Entity mapper for the components every actor carries
	actorMapper *ecs.Map8[
		components.Position,
		components.Velocity,
		components.Health,
		components.Actor,
		components.Behavior,
		components.Path,
		components.Sight,
		components.LOD,
	]
	actorFilter *ecs.Filter8[
		components.Position,
		components.Velocity,
		components.Health,
		components.Actor,
		components.Behavior,
		components.Path,
		components.Sight,
		components.LOD,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	healthMap *ecs.Map1[components.Health]

	// Optional capabilities
	bodyMap  *ecs.Map[components.Body]
	groupMap *ecs.Map[components.Group]
	bossMap  *ecs.Map[components.Boss]

	// Systems
	oracle      *systems.VisibilityOracle
	planner     *systems.WaypointPlanner
	controller  *systems.BehaviorController
	governor    *systems.PerformanceGovernor
	lod         *systems.LODCoordinator
	terrain     *systems.TerrainStreamer
	spatialGrid *systems.SpatialGrid

	// Collaborators
	fire            systems.FireSink
	cues            systems.CueSink
	terrainOccludes bool

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	statsCallback    func(telemetry.WindowStats)
	summaryEvery     int64
	snapshotDir      string

	// Per-tick scratch, reused across ticks
	lodEntries []systems.LODEntry
	neighbors  []systems.Neighbor
	alerted    map[uint32]bool
	blockers   systems.Blockers
	removals   []removal
	intents    []ActorIntent
	tickFires  []systems.FireRequest
	tickCues   []Cue
	pending    telemetry.TickSample

	// State
	tick       int64
	seed       int64
	viewpoint  r2.Vec
	nextID     uint32
	nextGroup  uint32
	aliveCount int
	spawned    int
	cleared    int
}

// New creates a simulation with an empty arena.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	terrain, err := systems.NewTerrainStreamer(cfg.Terrain, cfg.Biome)
	if err != nil {
		return nil, fmt.Errorf("creating terrain streamer: %w", err)
	}

	rng := opts.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(opts.Seed))
	}

	world := ecs.NewWorld()

	s := &Simulation{
		cfg:   cfg,
		world: world,
		rng:   rng,

		actorMapper: ecs.NewMap8[
			components.Position,
			components.Velocity,
			components.Health,
			components.Actor,
			components.Behavior,
			components.Path,
			components.Sight,
			components.LOD,
		](world),
		actorFilter: ecs.NewFilter8[
			components.Position,
			components.Velocity,
			components.Health,
			components.Actor,
			components.Behavior,
			components.Path,
			components.Sight,
			components.LOD,
		](world),

		posMap:    ecs.NewMap1[components.Position](world),
		healthMap: ecs.NewMap1[components.Health](world),
		bodyMap:   ecs.NewMap[components.Body](world),
		groupMap:  ecs.NewMap[components.Group](world),
		bossMap:   ecs.NewMap[components.Boss](world),

		governor:    systems.NewPerformanceGovernor(cfg.Governor, cfg.LOD),
		lod:         systems.NewLODCoordinator(),
		terrain:     terrain,
		spatialGrid: systems.NewSpatialGrid(cfg.World.Width, cfg.World.Height, GridCellSize),

		fire:            opts.Fire,
		cues:            opts.Cues,
		terrainOccludes: opts.TerrainOccludes,

		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindow, DT),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		outputManager:    opts.Output,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,
		summaryEvery:     opts.SummaryEvery,
		snapshotDir:      opts.SnapshotDir,

		seed: opts.Seed,

		alerted: make(map[uint32]bool),
	}

	s.oracle = systems.NewVisibilityOracle(cfg.Visibility)
	s.planner = systems.NewWaypointPlanner(cfg.Waypoint, s.oracle)
	s.controller = systems.NewBehaviorController(cfg, s.oracle, s.planner, rng,
		systems.FireFunc(s.onFire), systems.CueFunc(s.onCue))

	slog.Info("simulation created",
		"world_width", cfg.World.Width,
		"world_height", cfg.World.Height,
		"noise", cfg.Terrain.Noise,
		"terrain_seed", cfg.Terrain.Seed,
		"cache_capacity", cfg.Terrain.CacheCapacity,
		"terrain_occludes", opts.TerrainOccludes,
	)

	return s, nil
}

// onFire records a fire request and forwards it to the projectile system.
func (s *Simulation) onFire(r systems.FireRequest) {
	s.tickFires = append(s.tickFires, r)
	if s.fire != nil {
		s.fire.Fire(r)
	}
}

// onCue records a cue and forwards it to the audio collaborator.
func (s *Simulation) onCue(name string, at r2.Vec) {
	s.tickCues = append(s.tickCues, Cue{Name: name, At: at})
	if s.cues != nil {
		s.cues.Cue(name, at)
	}
}

// Close stops the terrain workers.
func (s *Simulation) Close() {
	s.terrain.Close()
}

// Config returns the simulation configuration.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Tick returns the tick of the most recent Advance.
func (s *Simulation) Tick() int64 {
	return s.tick
}

// Count returns the number of living actors.
func (s *Simulation) Count() int {
	return s.aliveCount
}

// Terrain returns the terrain streamer.
func (s *Simulation) Terrain() *systems.TerrainStreamer {
	return s.terrain
}

// Governor returns the performance governor.
func (s *Simulation) Governor() *systems.PerformanceGovernor {
	return s.governor
}

// TileAt returns the tile at world tile coordinates. Unloaded tiles read as wall.
func (s *Simulation) TileAt(tx, ty int) systems.Tile {
	return s.terrain.TileAt(tx, ty)
}

// PerfStats returns tick timing over the perf window.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perfCollector.Stats()
}

// LastTickMS returns the measured duration of the last Advance.
func (s *Simulation) LastTickMS() float64 {
	return s.perfCollector.LastTickMS()
}

// RecordFrame records frame timing for viewers.
func (s *Simulation) RecordFrame() {
	s.perfCollector.RecordFrame()
}
