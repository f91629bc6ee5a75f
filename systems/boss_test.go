package systems

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
)

func TestBossPhaseFor(t *testing.T) {
	tests := []struct {
		frac float64
		want int
	}{
		{1.0, 1},
		{0.67, 1},
		{0.66, 2},
		{0.5, 2},
		{0.34, 2},
		{0.33, 3},
		{0.0, 3},
	}
	for _, tt := range tests {
		if got := BossPhaseFor(tt.frac); got != tt.want {
			t.Errorf("BossPhaseFor(%v) = %d, want %d", tt.frac, got, tt.want)
		}
	}
}

func TestEvaluateBossPhase_FlipsOnce(t *testing.T) {
	cfg := testConfig(t)
	rec := &fireRecorder{}
	b := newTestController(cfg, 1, rec)
	boss := &components.Boss{Phase: 1, PatternIndex: 2}

	steps := []struct {
		current float64
		changed bool
		phase   int
	}{
		{700, false, 1},
		{600, true, 2},
		{600, false, 2},
		{650, false, 2},
		{300, true, 3},
		{300, false, 3},
	}
	for i, s := range steps {
		got := b.EvaluateBossPhase(boss, components.Health{Current: s.current, Max: 1000}, 1, r2.Vec{}, int64(i))
		if got != s.changed {
			t.Errorf("step %d: changed = %v, want %v", i, got, s.changed)
		}
		if boss.Phase != s.phase {
			t.Errorf("step %d: phase = %d, want %d", i, boss.Phase, s.phase)
		}
	}
	if n := rec.countCue(CueBossPhase); n != 2 {
		t.Errorf("expected 2 phase cues, got %d", n)
	}
	if boss.PatternIndex != 0 {
		t.Errorf("pattern index not reset on phase change: %d", boss.PatternIndex)
	}
	// The last change happened at step 4
	if boss.PatternStartedAt != 4 || boss.PhaseStartedAt != 4 {
		t.Errorf("pattern started at %d, phase at %d, want 4", boss.PatternStartedAt, boss.PhaseStartedAt)
	}
}

func TestEvaluateBossPhase_InitialAssignmentSilent(t *testing.T) {
	cfg := testConfig(t)
	rec := &fireRecorder{}
	b := newTestController(cfg, 1, rec)
	boss := &components.Boss{}

	if !b.EvaluateBossPhase(boss, components.Health{Current: 1000, Max: 1000}, 1, r2.Vec{}, 0) {
		t.Fatal("expected initial phase assignment")
	}
	if boss.Phase != 1 {
		t.Errorf("phase = %d, want 1", boss.Phase)
	}
	if len(rec.cues) != 0 {
		t.Errorf("initial assignment emitted cues: %v", rec.cues)
	}
}

func TestBoss_PatternRotation(t *testing.T) {
	cfg := testConfig(t)
	b := newTestController(cfg, 2, &fireRecorder{})
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(2)))
	in := BehaviorInput{Target: Target{Pos: r2.Vec{X: 300}}}

	for tick := int64(0); tick < 180; tick++ {
		in.Tick = tick
		b.Update(a.state(), in)
	}
	if got := CurrentPattern(a.boss); got != components.PatternSingle {
		t.Fatalf("pattern at tick 179 = %v, want single", got)
	}
	in.Tick = 180
	b.Update(a.state(), in)
	if got := CurrentPattern(a.boss); got != components.PatternBurst {
		t.Errorf("pattern at tick 180 = %v, want burst", got)
	}
}

func TestBoss_PatternRotationIndependentOfUpdateRate(t *testing.T) {
	tests := []struct {
		every     int64
		last      int64 // Last update tick before the switch
		switchAt  int64 // First update tick at or after 180
		wantStart int64
	}{
		{4, 176, 180, 180},
		{7, 175, 182, 180},
		{50, 150, 200, 180},
	}
	for _, tt := range tests {
		cfg := testConfig(t)
		b := newTestController(cfg, 2, &fireRecorder{})
		a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(2)))
		in := BehaviorInput{Target: Target{Pos: r2.Vec{X: 300}}}

		for tick := int64(0); tick <= tt.last; tick += tt.every {
			in.Tick = tick
			b.Update(a.state(), in)
		}
		if got := CurrentPattern(a.boss); got != components.PatternSingle {
			t.Fatalf("every %d: pattern at tick %d = %v, want single", tt.every, tt.last, got)
		}
		in.Tick = tt.switchAt
		b.Update(a.state(), in)
		if got := CurrentPattern(a.boss); got != components.PatternBurst {
			t.Errorf("every %d: pattern at tick %d = %v, want burst", tt.every, tt.switchAt, got)
		}
		if a.boss.PatternStartedAt != tt.wantStart {
			t.Errorf("every %d: pattern started at %d, want %d", tt.every, a.boss.PatternStartedAt, tt.wantStart)
		}
	}
}

func TestBoss_RotationSkipsElapsedPatterns(t *testing.T) {
	cfg := testConfig(t)
	b := newTestController(cfg, 2, &fireRecorder{})
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(2)))

	b.Update(a.state(), BehaviorInput{Tick: 0, Target: Target{Pos: r2.Vec{X: 300}}})
	// Two full periods pass between updates
	b.Update(a.state(), BehaviorInput{Tick: 400, Target: Target{Pos: r2.Vec{X: 300}}})
	if got := CurrentPattern(a.boss); got != components.PatternSpread {
		t.Errorf("pattern = %v, want spread", got)
	}
	if a.boss.PatternStartedAt != 360 {
		t.Errorf("pattern started at %d, want 360", a.boss.PatternStartedAt)
	}
}

func TestBoss_RapidCadence(t *testing.T) {
	cfg := testConfig(t)
	rec := &fireRecorder{}
	b := newTestController(cfg, 8, rec)
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(8)))
	a.boss.Phase = 3
	a.health.Current = 100

	var fired []int64
	for tick := int64(0); tick < 40; tick++ {
		if b.Update(a.state(), BehaviorInput{Tick: tick, Target: Target{Pos: r2.Vec{X: 300}}}).Shots > 0 {
			fired = append(fired, tick)
		}
	}
	want := []int64{8, 16, 24, 32}
	if len(fired) != len(want) {
		t.Fatalf("rapid fired at %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Fatalf("rapid fired at %v, want %v", fired, want)
		}
	}
}

func TestBoss_VolleyPatterns(t *testing.T) {
	tests := []struct {
		name    string
		phase   int
		pattern int
		health  float64
		shots   int
	}{
		{"single", 1, 0, 1000, 1},
		{"spread", 1, 2, 1000, 3},
		{"shotgun", 3, 1, 200, 5},
		{"homing", 3, 2, 200, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			rec := &fireRecorder{}
			b := newTestController(cfg, 3, rec)
			a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(3)))
			a.boss.Phase = tt.phase
			a.boss.PatternIndex = tt.pattern
			a.health.Current = tt.health

			intent := b.Update(a.state(), BehaviorInput{Target: Target{Pos: r2.Vec{X: 300}}})
			if intent.Shots != tt.shots || len(rec.fires) != tt.shots {
				t.Fatalf("shots = %d (%d requests), want %d", intent.Shots, len(rec.fires), tt.shots)
			}
			for _, f := range rec.fires {
				if !near(f.Speed, 12) {
					t.Errorf("projectile speed = %v, want 12", f.Speed)
				}
				if f.OwnerIsPlayer {
					t.Error("boss projectile marked as player-owned")
				}
			}
			if a.behavior.NextFireTick != int64(a.actor.Stats.FireCooldown) {
				t.Errorf("next fire tick = %d, want %d", a.behavior.NextFireTick, a.actor.Stats.FireCooldown)
			}
		})
	}
}

func TestBoss_SpreadCentredOnTarget(t *testing.T) {
	cfg := testConfig(t)
	rec := &fireRecorder{}
	b := newTestController(cfg, 4, rec)
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(4)))
	a.boss.PatternIndex = 2

	b.Update(a.state(), BehaviorInput{Target: Target{Pos: r2.Vec{X: 300}}})
	if len(rec.fires) != 3 {
		t.Fatalf("expected 3 shots, got %d", len(rec.fires))
	}
	mid := rec.fires[1].Direction
	if !near(mid.X, 1) || !near(mid.Y, 0) {
		t.Errorf("middle shot direction = %v, want (1,0)", mid)
	}
	if rec.fires[0].Direction.Y >= 0 || rec.fires[2].Direction.Y <= 0 {
		t.Errorf("outer shots not spread: %v, %v", rec.fires[0].Direction, rec.fires[2].Direction)
	}
}

func TestBoss_PursuitSpeedInFinalPhase(t *testing.T) {
	cfg := testConfig(t)
	b := newTestController(cfg, 5, &fireRecorder{})
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(5)))
	a.boss.Phase = 3
	a.health.Current = 100

	intent := b.Update(a.state(), BehaviorInput{Target: Target{Pos: r2.Vec{X: 300}}})
	if !near(intent.Velocity.X, 3.75) || !near(intent.Velocity.Y, 0) {
		t.Errorf("velocity = %v, want (3.75,0)", intent.Velocity)
	}
}

func TestBoss_IdleBeyondEngageRange(t *testing.T) {
	cfg := testConfig(t)
	rec := &fireRecorder{}
	b := newTestController(cfg, 6, rec)
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(6)))

	intent := b.Update(a.state(), BehaviorInput{Target: Target{Pos: r2.Vec{X: 1000}}})
	if a.behavior.State != components.StateIdle {
		t.Errorf("state = %v, want idle", a.behavior.State)
	}
	if intent.Shots != 0 || len(rec.fires) != 0 {
		t.Errorf("boss fired beyond engage range")
	}
}

func TestBoss_HiddenTargetChasesWithoutFiring(t *testing.T) {
	cfg := testConfig(t)
	rec := &fireRecorder{}
	b := newTestController(cfg, 7, rec)
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{}, rand.New(rand.NewSource(7)))

	b.Update(a.state(), BehaviorInput{Target: Target{Pos: r2.Vec{X: 400}}, Blocker: shortWall})
	if a.behavior.State != components.StateChase {
		t.Errorf("state = %v, want chase", a.behavior.State)
	}
	if len(rec.fires) != 0 {
		t.Errorf("boss fired without line of sight")
	}
}

func TestBoss_OrbitInFirstPhase(t *testing.T) {
	cfg := testConfig(t)
	b := newTestController(cfg, 9, &fireRecorder{})
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{X: 300}, rand.New(rand.NewSource(9)))
	target := r2.Vec{}

	var intent Intent
	for tick := int64(0); tick <= 10; tick++ {
		intent = b.Update(a.state(), BehaviorInput{Tick: tick, Target: Target{Pos: target}})
	}
	// 11 updates at 0.02 rad each
	if !near(a.boss.MoveAngle, 0.22) {
		t.Fatalf("orbit angle = %v, want 0.22", a.boss.MoveAngle)
	}
	orbit := r2.Scale(100, fromAngle(0.22))
	want := toward(a.pos.Vec(), orbit, a.actor.Stats.Speed*0.7)
	if !nearVec(intent.Velocity, want) {
		t.Errorf("velocity = %v, want %v toward the orbit point", intent.Velocity, want)
	}
	if !near(r2.Norm(intent.Velocity), 1.75) {
		t.Errorf("orbit speed = %v, want 1.75", r2.Norm(intent.Velocity))
	}
}

func TestBoss_OrbitIndependentOfUpdateRate(t *testing.T) {
	cfg := testConfig(t)
	b := newTestController(cfg, 9, &fireRecorder{})
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{X: 300}, rand.New(rand.NewSource(9)))

	for _, tick := range []int64{0, 5, 10} {
		b.Update(a.state(), BehaviorInput{Tick: tick, Target: Target{}})
	}
	if !near(a.boss.MoveAngle, 0.22) {
		t.Errorf("orbit angle = %v, want 0.22", a.boss.MoveAngle)
	}
}

func TestBoss_SecondPhaseDutyCycle(t *testing.T) {
	cfg := testConfig(t)
	b := newTestController(cfg, 10, &fireRecorder{})
	a := newTestActor(cfg, components.TypeBoss, r2.Vec{X: 300}, rand.New(rand.NewSource(10)))
	a.boss.Phase = 2
	a.health.Current = a.health.Max / 2
	speed := a.actor.Stats.Speed

	tests := []struct {
		tick   int64
		charge bool
	}{
		{0, false},
		{119, false},
		{120, true},
		{239, true},
		{240, false},
		{360, true},
	}
	for _, tt := range tests {
		intent := b.Update(a.state(), BehaviorInput{Tick: tt.tick, Target: Target{}})
		if tt.charge {
			if !nearVec(intent.Velocity, r2.Vec{X: -speed * 1.2}) {
				t.Errorf("tick %d: velocity = %v, want charge at %v", tt.tick, intent.Velocity, speed*1.2)
			}
			continue
		}
		if !near(r2.Norm(intent.Velocity), speed) {
			t.Errorf("tick %d: figure-eight speed = %v, want %v", tt.tick, r2.Norm(intent.Velocity), speed)
		}
		if nearVec(intent.Velocity, r2.Vec{X: -speed}) {
			t.Errorf("tick %d: figure-eight heads straight at the target", tt.tick)
		}
	}
}
