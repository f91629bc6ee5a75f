// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Target     TargetConfig     `yaml:"target"`
	Actor      ActorConfig      `yaml:"actor"`
	Types      TypesConfig      `yaml:"types"`
	Boss       BossConfig       `yaml:"boss"`
	Visibility VisibilityConfig `yaml:"visibility"`
	Waypoint   WaypointConfig   `yaml:"waypoint"`
	Governor   GovernorConfig   `yaml:"governor"`
	LOD        LODConfig        `yaml:"lod"`
	Terrain    TerrainConfig    `yaml:"terrain"`
	Biome      BiomeConfig      `yaml:"biome"`
	Population PopulationConfig `yaml:"population"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds world bounds used by cleanup and spawning.
type WorldConfig struct {
	Width             float64 `yaml:"width"`
	Height            float64 `yaml:"height"`
	OutOfBoundsMargin float64 `yaml:"out_of_bounds_margin"` // Actors beyond bounds+margin are removed
}

// TargetConfig holds the player stand-in used by headless runs.
type TargetConfig struct {
	Health float64 `yaml:"health"`
}

// ActorConfig holds base stats shared by every actor type.
type ActorConfig struct {
	BaseSpeed          float64 `yaml:"base_speed"` // World units per tick
	BaseHealth         float64 `yaml:"base_health"`
	BaseDamage         float64 `yaml:"base_damage"`
	FireCooldown       int     `yaml:"fire_cooldown"` // Ticks between shots before type scaling
	DetectionRadius    float64 `yaml:"detection_radius"`
	PreferredRange     float64 `yaml:"preferred_range"`
	RetreatThreshold   float64 `yaml:"retreat_threshold"`    // Health fraction below which actors retreat
	RetreatSpeed       float64 `yaml:"retreat_speed"`        // Speed multiplier while retreating
	PathfindRadiusMult float64 `yaml:"pathfind_radius_mult"` // Pathfinding engages within detection*this
	PredictionMin      float64 `yaml:"prediction_min"`
	PredictionMax      float64 `yaml:"prediction_max"`
	WanderSpeed        float64 `yaml:"wander_speed"`
	WanderMinTicks     int     `yaml:"wander_min_ticks"`
	WanderMaxTicks     int     `yaml:"wander_max_ticks"`
	WanderChance       float64 `yaml:"wander_chance"` // Per-tick chance of an early re-roll
	BodyRadius         float64 `yaml:"body_radius"`
	ProjectileSpeed    float64 `yaml:"projectile_speed"`
}

// TypeConfig holds per-type modifiers applied at creation.
// Zero multipliers are treated as 1.
type TypeConfig struct {
	Weight          float64 `yaml:"weight"`
	SpeedAdd        float64 `yaml:"speed_add"`
	HealthMult      float64 `yaml:"health_mult"`
	DamageMult      float64 `yaml:"damage_mult"`
	FireRateMult    float64 `yaml:"fire_rate_mult"` // Scales the fire cooldown
	PreferredRange  float64 `yaml:"preferred_range"`
	DetectionRadius float64 `yaml:"detection_radius"` // 0 = actor default
	Aggression      float64 `yaml:"aggression"`
	NeverRetreat    bool    `yaml:"never_retreat"`
	FlankChance     float64 `yaml:"flank_chance"`
	LeadMult        float64 `yaml:"lead_mult"` // Aim lead multiplier, 0 = aim directly
}

// TypesConfig holds modifiers for each regular actor type.
type TypesConfig struct {
	Normal    TypeConfig `yaml:"normal"`
	Fast      TypeConfig `yaml:"fast"`
	Tank      TypeConfig `yaml:"tank"`
	Sniper    TypeConfig `yaml:"sniper"`
	Berserker TypeConfig `yaml:"berserker"`
}

// BossConfig holds boss stats, movement and attack-pattern timing.
type BossConfig struct {
	HealthMult          float64 `yaml:"health_mult"`
	DamageMult          float64 `yaml:"damage_mult"`
	SpeedAdd            float64 `yaml:"speed_add"`
	FireCooldown        int     `yaml:"fire_cooldown"`
	EngageMult          float64 `yaml:"engage_mult"`
	ProjectileSpeedMult float64 `yaml:"projectile_speed_mult"`
	PatternTicks        int     `yaml:"pattern_ticks"`
	OrbitRadius         float64 `yaml:"orbit_radius"`
	OrbitSpeed          float64 `yaml:"orbit_speed"` // Radians per tick
	OrbitSpeedMult      float64 `yaml:"orbit_speed_mult"`
	FigureEightSpeed    float64 `yaml:"figure_eight_speed"`
	ChargeCycle         int     `yaml:"charge_cycle"` // First half figure-eight, second half charge
	ChargeSpeedMult     float64 `yaml:"charge_speed_mult"`
	PursuitSpeedMult    float64 `yaml:"pursuit_speed_mult"`
	BurstShots          int     `yaml:"burst_shots"`
	BurstGap            int     `yaml:"burst_gap"`
	SpiralGap           int     `yaml:"spiral_gap"`
	RapidGap            int     `yaml:"rapid_gap"`
}

// VisibilityConfig holds line-of-sight sampling parameters.
type VisibilityConfig struct {
	Interval int     `yaml:"interval"` // Ticks between recomputes per actor
	Step     float64 `yaml:"step"`     // Sample spacing along the segment
	Probe    float64 `yaml:"probe"`    // Half-extent of the box tested at each sample
}

// WaypointConfig holds fallback planner parameters.
type WaypointConfig struct {
	Radius      float64 `yaml:"radius"`
	Cooldown    int     `yaml:"cooldown"`
	ReachRadius float64 `yaml:"reach_radius"`
}

// GovernorConfig holds performance tier parameters.
type GovernorConfig struct {
	Window            int     `yaml:"window"`
	TargetMS          float64 `yaml:"target_ms"`
	AdjustThresholdMS float64 `yaml:"adjust_threshold_ms"`
	Cooldown          int     `yaml:"cooldown"`
}

// LODConfig holds tier-high LOD thresholds; lower tiers scale these down.
type LODConfig struct {
	MaxActive     int     `yaml:"max_active"`
	SleepDistance float64 `yaml:"sleep_distance"`
	CullDistance  float64 `yaml:"cull_distance"`
	NearFrequency int     `yaml:"near_frequency"`
	FarFrequency  int     `yaml:"far_frequency"`
}

// TerrainConfig holds chunk streaming and generation parameters.
type TerrainConfig struct {
	Seed              int64   `yaml:"seed"`
	Noise             string  `yaml:"noise"` // simplex or perlin
	ChunkSize         int     `yaml:"chunk_size"`
	TileSize          float64 `yaml:"tile_size"`
	BufferTiles       int     `yaml:"buffer_tiles"`
	CacheCapacity     int     `yaml:"cache_capacity"`
	NoiseScale        float64 `yaml:"noise_scale"`
	SmoothingPasses   int     `yaml:"smoothing_passes"`
	DecorationDensity float64 `yaml:"decoration_density"`
	FeatureDensity    float64 `yaml:"feature_density"`
	Workers           int     `yaml:"workers"` // 0 = GOMAXPROCS
}

// BiomeConfig holds biome noise parameters.
type BiomeConfig struct {
	Scale   float64 `yaml:"scale"`
	Octaves int     `yaml:"octaves"`
}

// PopulationConfig holds level population parameters.
type PopulationConfig struct {
	Initial          int     `yaml:"initial"`
	GroupSize        int     `yaml:"group_size"`
	GroupChance      float64 `yaml:"group_chance"`
	Boss             bool    `yaml:"boss"`
	SpawnRadius      float64 `yaml:"spawn_radius"`
	MinSpawnDistance float64 `yaml:"min_spawn_distance"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ChunkWorldSize float64 // ChunkSize * TileSize
	BufferWorld    float64 // BufferTiles * TileSize
	TypeWeights    []float64
	StatsTicks     int // Telemetry window in ticks at the target frame rate
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Set replaces the global configuration.
func Set(cfg *Config) {
	global = cfg
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. It panics if they do not parse,
// which only happens when defaults.yaml is broken at build time.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// All returns the type modifiers in actor-type order
// (normal, fast, tank, sniper, berserker).
func (t *TypesConfig) All() []*TypeConfig {
	return []*TypeConfig{&t.Normal, &t.Fast, &t.Tank, &t.Sniper, &t.Berserker}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ChunkWorldSize = float64(c.Terrain.ChunkSize) * c.Terrain.TileSize
	c.Derived.BufferWorld = float64(c.Terrain.BufferTiles) * c.Terrain.TileSize

	types := c.Types.All()
	c.Derived.TypeWeights = make([]float64, len(types))
	for i, tc := range types {
		c.Derived.TypeWeights[i] = tc.Weight
	}

	fps := c.Screen.TargetFPS
	if fps <= 0 {
		fps = 60
	}
	c.Derived.StatsTicks = max(1, int(c.Telemetry.StatsWindow*float64(fps)))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
