package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/horde/components"
)

func TestPickWeighted(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	if got := PickWeighted([]float64{0, 0}, rng); got != -1 {
		t.Errorf("all-zero weights = %d, want -1", got)
	}
	if got := PickWeighted(nil, rng); got != -1 {
		t.Errorf("nil weights = %d, want -1", got)
	}
	for i := 0; i < 100; i++ {
		if got := PickWeighted([]float64{0, 1, -3}, rng); got != 1 {
			t.Fatalf("single positive weight picked %d", got)
		}
	}
}

func TestPickWeighted_Distribution(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 20000
	counts := make([]int, 2)
	for i := 0; i < n; i++ {
		counts[PickWeighted([]float64{1, 3}, rng)]++
	}
	frac := float64(counts[1]) / n
	if math.Abs(frac-0.75) > 0.02 {
		t.Errorf("weight 3 of 4 picked %.3f of the time, want ~0.75", frac)
	}
}

func TestPickActorType_DeterministicForSeed(t *testing.T) {
	cfg := testConfig(t)
	a := rand.New(rand.NewSource(99))
	b := rand.New(rand.NewSource(99))
	for i := 0; i < 200; i++ {
		ta, tb := PickActorType(cfg, a), PickActorType(cfg, b)
		if ta != tb {
			t.Fatalf("draw %d differs: %v vs %v", i, ta, tb)
		}
		if ta == components.TypeBoss {
			t.Fatalf("draw %d picked the boss", i)
		}
	}
}

func TestRollStats(t *testing.T) {
	cfg := testConfig(t)
	rng := rand.New(rand.NewSource(5))

	tests := []struct {
		ty           components.ActorType
		health       float64
		detection    float64
		fireCooldown int
		neverRetreat bool
	}{
		{components.TypeNormal, 100, 300, 60, false},
		{components.TypeFast, 60, 300, 48, false},
		{components.TypeTank, 200, 300, 90, false},
		{components.TypeSniper, 80, 400, 120, false},
		{components.TypeBerserker, 120, 300, 36, true},
		{components.TypeBoss, 1000, 300, 45, true},
	}

	for _, tt := range tests {
		t.Run(tt.ty.String(), func(t *testing.T) {
			stats, health := RollStats(cfg, tt.ty, rng)
			if !near(health, tt.health) {
				t.Errorf("health = %v, want %v", health, tt.health)
			}
			if stats.Detection != tt.detection {
				t.Errorf("detection = %v, want %v", stats.Detection, tt.detection)
			}
			if stats.FireCooldown != tt.fireCooldown {
				t.Errorf("fire cooldown = %d, want %d", stats.FireCooldown, tt.fireCooldown)
			}
			if stats.NeverRetreat != tt.neverRetreat {
				t.Errorf("never retreat = %v, want %v", stats.NeverRetreat, tt.neverRetreat)
			}
			if stats.PredictionAccuracy < 0.1 || stats.PredictionAccuracy >= 0.8 {
				t.Errorf("prediction accuracy %v outside [0.1, 0.8)", stats.PredictionAccuracy)
			}
			if stats.Speed < 0.1 {
				t.Errorf("speed %v below floor", stats.Speed)
			}
		})
	}
}
