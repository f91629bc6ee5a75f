package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/config"
)

// PickWeighted returns an index drawn with probability proportional to its
// weight, or -1 when no weight is positive. Negative weights count as zero.
func PickWeighted(weights []float64, rng *rand.Rand) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	r := rng.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if r < w {
			return i
		}
		r -= w
	}
	// Rounding can leave r just above the final bucket
	return last
}

// PickActorType draws a regular actor type using the configured weights.
func PickActorType(cfg *config.Config, rng *rand.Rand) components.ActorType {
	i := PickWeighted(cfg.Derived.TypeWeights, rng)
	if i < 0 {
		return components.TypeNormal
	}
	return components.ActorType(i)
}

// typeConfig returns the modifiers for a regular type.
func typeConfig(cfg *config.Config, t components.ActorType) config.TypeConfig {
	all := cfg.Types.All()
	if int(t) < len(all) {
		return *all[t]
	}
	return cfg.Types.Normal
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// RollStats computes creation-time stats and max health for an actor type.
// The only random roll is the prediction accuracy.
func RollStats(cfg *config.Config, t components.ActorType, rng *rand.Rand) (components.Stats, float64) {
	a := cfg.Actor
	accuracy := a.PredictionMin + rng.Float64()*(a.PredictionMax-a.PredictionMin)

	if t == components.TypeBoss {
		b := cfg.Boss
		return components.Stats{
			Speed:              math.Max(0.1, a.BaseSpeed+b.SpeedAdd),
			Damage:             a.BaseDamage * orOne(b.DamageMult),
			FireCooldown:       max(1, b.FireCooldown),
			Detection:          a.DetectionRadius,
			PreferredRange:     a.PreferredRange,
			Aggression:         1,
			PredictionAccuracy: accuracy,
			LeadMult:           2,
			NeverRetreat:       true,
		}, a.BaseHealth * orOne(b.HealthMult)
	}

	tc := typeConfig(cfg, t)
	detection := a.DetectionRadius
	if tc.DetectionRadius > 0 {
		detection = tc.DetectionRadius
	}
	preferred := a.PreferredRange
	if tc.PreferredRange > 0 {
		preferred = tc.PreferredRange
	}
	aggression := tc.Aggression
	if aggression == 0 {
		aggression = 0.5
	}

	return components.Stats{
		Speed:              math.Max(0.1, a.BaseSpeed+tc.SpeedAdd),
		Damage:             a.BaseDamage * orOne(tc.DamageMult),
		FireCooldown:       max(1, int(math.Round(float64(a.FireCooldown)*orOne(tc.FireRateMult)))),
		Detection:          detection,
		PreferredRange:     preferred,
		Aggression:         aggression,
		PredictionAccuracy: accuracy,
		FlankChance:        tc.FlankChance,
		LeadMult:           tc.LeadMult,
		NeverRetreat:       tc.NeverRetreat,
	}, a.BaseHealth * orOne(tc.HealthMult)
}
