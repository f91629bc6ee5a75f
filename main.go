package main

import (
	"flag"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	charmlog "github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/camera"
	"github.com/pthm-cable/horde/config"
	"github.com/pthm-cable/horde/game"
	"github.com/pthm-cable/horde/systems"
	"github.com/pthm-cable/horde/telemetry"
)

// runOptions are read from HORDE_* environment variables; flags override them.
type runOptions struct {
	ConfigPath string  `env:"CONFIG"`
	Seed       int64   `env:"SEED" envDefault:"0"`
	MaxTicks   int64   `env:"MAX_TICKS" envDefault:"3600"`
	OutputDir  string  `env:"OUTPUT_DIR"`
	Compress   bool    `env:"COMPRESS"`
	LogStats   bool    `env:"LOG_STATS"`
	LogFormat  string  `env:"LOG_FORMAT" envDefault:"json"`
	PatrolRate float64 `env:"PATROL_RATE" envDefault:"0.002"` // Radians per tick of the scripted target
}

func main() {
	var ro runOptions
	if err := env.ParseWithOptions(&ro, env.Options{Prefix: "HORDE_"}); err != nil {
		slog.Error("failed to parse environment", "error", err)
		os.Exit(1)
	}

	overrides := config.Overrides{}

	// CLI flags
	flag.StringVar(&ro.ConfigPath, "config", ro.ConfigPath, "Path to config.yaml (empty = use defaults)")
	flag.Int64Var(&ro.Seed, "seed", ro.Seed, "RNG seed (0 = time-based)")
	flag.Int64Var(&ro.MaxTicks, "max-ticks", ro.MaxTicks, "Stop after N ticks (0 = unlimited)")
	flag.StringVar(&ro.OutputDir, "output-dir", ro.OutputDir, "Output directory for CSV logs and config snapshot")
	flag.BoolVar(&ro.Compress, "compress", ro.Compress, "Write gzip-compressed CSV files")
	flag.BoolVar(&ro.LogStats, "log-stats", ro.LogStats, "Output window stats via slog")
	flag.StringVar(&ro.LogFormat, "log-format", ro.LogFormat, "Log format: json or text")
	flag.Var(overrides, "set", "Override a config value, e.g. -set lod.sleep_distance=900 (repeatable)")
	flag.Parse()

	setupLogging(ro.LogFormat)

	// Initialize config before anything else
	if err := config.Init(ro.ConfigPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if err := cfg.ApplyOverrides(overrides); err != nil {
		slog.Error("invalid override", "error", err)
		os.Exit(1)
	}

	if ro.Seed == 0 {
		ro.Seed = time.Now().UnixNano()
	}

	if err := run(cfg, ro); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(format string) {
	var handler slog.Handler
	switch format {
	case "text":
		handler = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			ReportTimestamp: true,
			Prefix:          "horde",
		})
	default:
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

// run drives a headless simulation with a target patrolling a circle around
// the world center.
func run(cfg *config.Config, ro runOptions) error {
	opts := game.DefaultOptions()
	opts.Seed = ro.Seed
	opts.LogStats = ro.LogStats

	if ro.OutputDir != "" {
		om, err := telemetry.NewOutputManager(ro.OutputDir, ro.Compress)
		if err != nil {
			return err
		}
		defer om.Close()
		if err := om.WriteConfig(cfg); err != nil {
			return err
		}
		opts.Output = om
	}

	sim, err := game.New(cfg, opts)
	if err != nil {
		return err
	}
	defer sim.Close()

	center := r2.Vec{X: cfg.World.Width / 2, Y: cfg.World.Height / 2}
	sim.Populate(center)

	cam := camera.New(float64(cfg.Screen.Width), float64(cfg.Screen.Height), cfg.World.Width, cfg.World.Height)
	patrol := math.Min(cfg.World.Width, cfg.World.Height) / 4

	slog.Info("starting headless simulation",
		"seed", ro.Seed,
		"max_ticks", ro.MaxTicks,
		"actors", sim.Count(),
	)

	for tick := int64(0); ro.MaxTicks == 0 || tick < ro.MaxTicks; tick++ {
		angle := float64(tick) * ro.PatrolRate
		target := r2.Add(center, r2.Vec{X: patrol * math.Cos(angle), Y: patrol * math.Sin(angle)})
		cam.Follow(target)

		viewW, viewH := cam.ViewSize()
		sim.Advance(game.TickInput{
			Tick:      tick,
			Viewpoint: cam.Viewpoint(),
			ViewW:     viewW,
			ViewH:     viewH,
			CostMS:    sim.LastTickMS(),
			Target:    systems.Target{Pos: target, Health: cfg.Target.Health},
		})

		if sim.Count() == 0 {
			slog.Info("level cleared", "tick", tick)
			break
		}
	}

	slog.Info("simulation finished",
		"tick", sim.Tick(),
		"actors", sim.Count(),
		"progress", sim.Progress(),
		"tier", sim.Governor().Tier().String(),
	)
	return nil
}
