package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/config"
)

// testConfig returns the embedded defaults.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

// testActor is a regular actor with every component backed by the struct.
type testActor struct {
	pos      components.Position
	health   components.Health
	actor    components.Actor
	behavior components.Behavior
	path     components.Path
	sight    components.Sight
	boss     *components.Boss
}

func newTestActor(cfg *config.Config, ty components.ActorType, pos r2.Vec, rng *rand.Rand) *testActor {
	stats, maxHealth := RollStats(cfg, ty, rng)
	a := &testActor{
		health: components.Health{Current: maxHealth, Max: maxHealth},
		actor:  components.Actor{ID: 1, Type: ty, Stats: stats},
	}
	a.pos.Set(pos)
	if ty == components.TypeBoss {
		a.boss = &components.Boss{Phase: 1}
	}
	return a
}

func (a *testActor) state() ActorState {
	return ActorState{
		Pos:      &a.pos,
		Health:   &a.health,
		Actor:    &a.actor,
		Behavior: &a.behavior,
		Path:     &a.path,
		Sight:    &a.sight,
		Boss:     a.boss,
	}
}

// fireRecorder collects fire requests and cues.
type fireRecorder struct {
	fires []FireRequest
	cues  []string
}

func (r *fireRecorder) Fire(req FireRequest)         { r.fires = append(r.fires, req) }
func (r *fireRecorder) Cue(name string, _ r2.Vec)    { r.cues = append(r.cues, name) }
func (r *fireRecorder) countCue(name string) (n int) {
	for _, c := range r.cues {
		if c == name {
			n++
		}
	}
	return n
}

func newTestController(cfg *config.Config, seed int64, rec *fireRecorder) *BehaviorController {
	oracle := NewVisibilityOracle(cfg.Visibility)
	planner := NewWaypointPlanner(cfg.Waypoint, oracle)
	return NewBehaviorController(cfg, oracle, planner, rand.New(rand.NewSource(seed)), rec, rec)
}
