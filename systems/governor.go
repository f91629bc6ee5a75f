package systems

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/horde/config"
)

// Tier is the global performance level.
type Tier uint8

const (
	TierHigh Tier = iota
	TierMedium
	TierLow
)

var tierNames = [...]string{"high", "medium", "low"}

func (t Tier) String() string {
	if int(t) < len(tierNames) {
		return tierNames[t]
	}
	return fmt.Sprintf("Tier(%d)", t)
}

// tierScale holds per-tier multipliers for the tier-high LOD thresholds.
type tierScale struct {
	active, sleep, cull, freq float64
}

var tierScales = [...]tierScale{
	TierHigh:   {active: 1.0, sleep: 1.0, cull: 1.0, freq: 1.0},
	TierMedium: {active: 0.8, sleep: 0.85, cull: 0.8, freq: 1.5},
	TierLow:    {active: 0.6, sleep: 0.7, cull: 0.6, freq: 2.0},
}

// TierSettings are the LOD thresholds in force for a tier.
type TierSettings struct {
	Tier          Tier
	MaxActive     int
	SleepDistance float64
	CullDistance  float64
	NearFrequency int
	FarFrequency  int
	Clamped       bool // Sleep distance was clamped down to the cull distance
}

// PerformanceGovernor derives the performance tier from recent tick cost.
type PerformanceGovernor struct {
	cfg  config.GovernorConfig
	base config.LODConfig

	samples    []float64 // Ring buffer of per-tick cost in ms
	writeIndex int
	count      int

	tier       Tier
	lastChange int64
}

// NewPerformanceGovernor creates a governor starting at TierHigh.
func NewPerformanceGovernor(cfg config.GovernorConfig, lod config.LODConfig) *PerformanceGovernor {
	window := cfg.Window
	if window < 1 {
		window = 60
	}
	return &PerformanceGovernor{
		cfg:     cfg,
		base:    lod,
		samples: make([]float64, window),
	}
}

// Record adds the cost of one tick and, outside the cooldown, moves the
// tier one step. It returns the current tier and whether it changed.
func (g *PerformanceGovernor) Record(costMS float64, tick int64) (Tier, bool) {
	g.samples[g.writeIndex] = costMS
	g.writeIndex = (g.writeIndex + 1) % len(g.samples)
	if g.count < len(g.samples) {
		g.count++
	}

	if tick-g.lastChange < int64(g.cfg.Cooldown) {
		return g.tier, false
	}

	avg := g.AverageCost()
	prev := g.tier
	switch {
	case avg > g.cfg.AdjustThresholdMS && g.tier < TierLow:
		g.tier++
	case avg < 0.9*g.cfg.TargetMS && g.tier > TierHigh:
		g.tier--
	default:
		return g.tier, false
	}
	g.lastChange = tick

	slog.Info("performance tier changed",
		"tick", tick,
		"from", prev.String(),
		"to", g.tier.String(),
		"avg_cost_ms", avg,
	)
	return g.tier, true
}

// AverageCost returns the mean cost of the buffered ticks.
func (g *PerformanceGovernor) AverageCost() float64 {
	if g.count == 0 {
		return 0
	}
	return stat.Mean(g.samples[:g.count], nil)
}

// Tier returns the current tier.
func (g *PerformanceGovernor) Tier() Tier {
	return g.tier
}

// ForceTier sets the tier directly and restarts the cooldown.
func (g *PerformanceGovernor) ForceTier(t Tier, tick int64) {
	if t > TierLow {
		t = TierLow
	}
	g.tier = t
	g.lastChange = tick
}

// Settings returns the LOD thresholds scaled for the current tier.
func (g *PerformanceGovernor) Settings() TierSettings {
	return ScaleSettings(g.base, g.tier)
}

// ScaleSettings scales tier-high thresholds for tier t. A scaled sleep
// distance above the cull distance is clamped to it.
func ScaleSettings(base config.LODConfig, t Tier) TierSettings {
	s := tierScales[min(int(t), len(tierScales)-1)]
	out := TierSettings{
		Tier:          t,
		MaxActive:     int(math.Floor(float64(base.MaxActive)*s.active + 1e-9)),
		SleepDistance: base.SleepDistance * s.sleep,
		CullDistance:  base.CullDistance * s.cull,
		NearFrequency: scaleFrequency(base.NearFrequency, s.freq),
		FarFrequency:  scaleFrequency(base.FarFrequency, s.freq),
	}
	if out.SleepDistance > out.CullDistance {
		out.SleepDistance = out.CullDistance
		out.Clamped = true
	}
	return out
}

// scaleFrequency truncates, so a near bucket of 1 stays 1 at tier medium.
func scaleFrequency(f int, mult float64) int {
	return max(1, int(float64(f)*mult+1e-9))
}
