package systems

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/config"
)

// Cue names sent to the audio sink.
const (
	CueEnemyShoot = "enemy_shoot"
	CueBossPhase  = "boss_phase"
)

// FireRequest asks the projectile system to spawn a projectile.
type FireRequest struct {
	Shooter       uint32 // Actor ID
	Origin        r2.Vec
	Direction     r2.Vec // Unit vector
	Speed         float64
	Damage        float64
	OwnerIsPlayer bool
}

// FireSink accepts fire requests.
type FireSink interface {
	Fire(FireRequest)
}

// FireFunc adapts a function to FireSink.
type FireFunc func(FireRequest)

// Fire implements FireSink.
func (f FireFunc) Fire(r FireRequest) { f(r) }

// CueSink accepts fire-and-forget audio cues.
type CueSink interface {
	Cue(name string, at r2.Vec)
}

// CueFunc adapts a function to CueSink.
type CueFunc func(name string, at r2.Vec)

// Cue implements CueSink.
func (f CueFunc) Cue(name string, at r2.Vec) { f(name, at) }

// Target is the actor's target for this tick.
type Target struct {
	Pos    r2.Vec
	Health float64
}

// BehaviorInput is the per-tick context shared by every actor.
type BehaviorInput struct {
	Tick    int64
	Target  Target
	Blocker Blocker
}

// ActorState points at one actor's live components. Boss is nil for
// regular actors.
type ActorState struct {
	Pos      *components.Position
	Health   *components.Health
	Actor    *components.Actor
	Behavior *components.Behavior
	Path     *components.Path
	Sight    *components.Sight
	Boss     *components.Boss

	Alerted   bool    // A group member currently sees the target
	FlankSide float64 // -1 or +1 for group flankers, 0 otherwise
}

// Intent is the outcome of one behavior update.
type Intent struct {
	Velocity r2.Vec
	Shots    int
}

// BehaviorController runs the per-actor AI state machine.
type BehaviorController struct {
	actor   config.ActorConfig
	boss    config.BossConfig
	oracle  *VisibilityOracle
	planner *WaypointPlanner
	rng     *rand.Rand
	fire    FireSink
	cues    CueSink
}

// NewBehaviorController creates a controller. fire and cues may be nil.
func NewBehaviorController(cfg *config.Config, oracle *VisibilityOracle, planner *WaypointPlanner, rng *rand.Rand, fire FireSink, cues CueSink) *BehaviorController {
	return &BehaviorController{
		actor:   cfg.Actor,
		boss:    cfg.Boss,
		oracle:  oracle,
		planner: planner,
		rng:     rng,
		fire:    fire,
		cues:    cues,
	}
}

// Decide picks the behavior state in priority order: retreat, attack or
// chase when the target is seen within detection range, pathfinding when it
// is hidden within the extended range (or a group member sees it), idle
// otherwise.
func Decide(healthFraction, retreatThreshold float64, stats *components.Stats, dist float64, visible, alerted bool, pathfindMult float64) components.BehaviorState {
	if healthFraction < retreatThreshold && !stats.NeverRetreat {
		return components.StateRetreat
	}
	if dist <= stats.Detection && visible {
		if dist <= stats.PreferredRange {
			return components.StateAttack
		}
		return components.StateChase
	}
	if !visible && (dist <= stats.Detection*pathfindMult || alerted) {
		return components.StatePathfinding
	}
	return components.StateIdle
}

// Update runs one AI step for the actor and returns its desired velocity.
func (b *BehaviorController) Update(a ActorState, in BehaviorInput) Intent {
	if a.Boss != nil {
		return b.updateBoss(a, in)
	}

	st := &a.Actor.Stats
	pos := a.Pos.Vec()
	target := in.Target.Pos
	dist := distance(pos, target)
	sightRange := st.Detection * b.actor.PathfindRadiusMult
	visible := b.oracle.Check(a.Sight, in.Tick, pos, target, in.Blocker, sightRange)

	state := Decide(a.Health.Fraction(), b.actor.RetreatThreshold, st, dist, visible, a.Alerted, b.actor.PathfindRadiusMult)

	var intent Intent
	switch state {
	case components.StateRetreat:
		intent.Velocity = awayFrom(pos, target, st.Speed*b.actor.RetreatSpeed)
		if visible && dist <= st.Detection {
			intent.Shots = b.tryFire(a, in.Tick, target)
		}
	case components.StateAttack:
		intent.Velocity = b.attackMove(a, pos, target, dist)
		intent.Shots = b.tryFire(a, in.Tick, target)
	case components.StateChase:
		intent.Velocity = b.chase(a, pos, target)
	case components.StatePathfinding:
		// An alerted actor may be beyond its own sight range, so it plans
		// without a distance limit and heads straight in when no detour exists
		planRange := sightRange
		if a.Alerted {
			planRange = 0
		}
		if b.planner.Replan(a.Path, in.Tick, pos, target, in.Blocker, planRange) {
			if wp, ok := b.planner.Follow(a.Path, pos); ok {
				intent.Velocity = toward(pos, wp, st.Speed)
				break
			}
		}
		if a.Alerted {
			intent.Velocity = toward(pos, target, st.Speed)
			break
		}
		state = components.StateIdle
		intent.Velocity = b.wander(a, in.Tick)
	default:
		intent.Velocity = b.wander(a, in.Tick)
	}

	a.Behavior.State = state
	a.Behavior.PrevTarget = target
	a.Behavior.HasPrevTarget = true
	return intent
}

// UpdateSimplified is the cheap step for an active actor between full
// updates: close in at half speed within the extended detection range,
// otherwise stand still. Behavior state and timers are left untouched.
func (b *BehaviorController) UpdateSimplified(a ActorState, target r2.Vec) r2.Vec {
	st := &a.Actor.Stats
	pos := a.Pos.Vec()
	if distance(pos, target) > st.Detection*b.actor.PathfindRadiusMult {
		return r2.Vec{}
	}
	return toward(pos, target, st.Speed*0.5)
}

// predict extrapolates the target by its last per-tick displacement.
func predict(bh *components.Behavior, target r2.Vec, weight float64) r2.Vec {
	if !bh.HasPrevTarget {
		return target
	}
	return r2.Add(target, r2.Scale(weight, r2.Sub(target, bh.PrevTarget)))
}

func (b *BehaviorController) chase(a ActorState, pos, target r2.Vec) r2.Vec {
	st := &a.Actor.Stats
	aim := predict(a.Behavior, target, st.PredictionAccuracy)

	if a.FlankSide != 0 {
		if dir, ok := unit(r2.Sub(aim, pos)); ok {
			aim = r2.Add(aim, r2.Scale(a.FlankSide*st.PreferredRange*0.5, perpendicular(dir)))
		}
	}

	vel := toward(pos, aim, st.Speed)
	if st.FlankChance > 0 && b.rng.Float64() < st.FlankChance {
		if dir, ok := unit(vel); ok {
			vel = r2.Add(vel, r2.Scale(st.Speed*0.5, perpendicular(dir)))
		}
	}
	return vel
}

func (b *BehaviorController) attackMove(a ActorState, pos, target r2.Vec, dist float64) r2.Vec {
	st := &a.Actor.Stats
	switch a.Actor.Type {
	case components.TypeSniper:
		if dist < st.PreferredRange*0.8 {
			return awayFrom(pos, target, st.Speed*0.7)
		}
		return r2.Vec{}
	case components.TypeBerserker:
		return toward(pos, target, st.Speed)
	case components.TypeFast:
		if b.rng.Float64() < 0.3 {
			if dir, ok := unit(r2.Sub(target, pos)); ok {
				return r2.Scale(st.Speed, perpendicular(dir))
			}
			return r2.Vec{}
		}
	}

	switch {
	case dist < st.PreferredRange*0.7:
		return awayFrom(pos, target, st.Speed*0.5)
	case dist > st.PreferredRange*1.2:
		return toward(pos, target, st.Speed*0.8)
	default:
		return r2.Vec{}
	}
}

// tryFire fires one projectile at target when the cooldown has elapsed.
func (b *BehaviorController) tryFire(a ActorState, tick int64, target r2.Vec) int {
	if tick < a.Behavior.NextFireTick {
		return 0
	}
	st := &a.Actor.Stats
	aim := target
	if st.LeadMult > 0 {
		aim = predict(a.Behavior, target, st.LeadMult)
	}
	pos := a.Pos.Vec()
	dir, ok := unit(r2.Sub(aim, pos))
	if !ok {
		return 0
	}
	b.emit(a, dir, b.actor.ProjectileSpeed)
	a.Behavior.NextFireTick = tick + int64(st.FireCooldown)
	return 1
}

// emit sends one fire request along dir.
func (b *BehaviorController) emit(a ActorState, dir r2.Vec, speed float64) {
	pos := a.Pos.Vec()
	if b.fire != nil {
		b.fire.Fire(FireRequest{
			Shooter:   a.Actor.ID,
			Origin:    pos,
			Direction: dir,
			Speed:     speed,
			Damage:    a.Actor.Stats.Damage,
		})
	}
	b.cue(CueEnemyShoot, pos)
}

func (b *BehaviorController) cue(name string, at r2.Vec) {
	if b.cues != nil {
		b.cues.Cue(name, at)
	}
}

// wander moves in a random direction, re-rolled when the timer expires or
// with a small chance each tick.
func (b *BehaviorController) wander(a ActorState, tick int64) r2.Vec {
	bh := a.Behavior
	if tick >= bh.WanderUntil || b.rng.Float64() < b.actor.WanderChance || r2.Norm(bh.WanderDir) < epsilon {
		bh.WanderDir = fromAngle(b.rng.Float64() * 2 * math.Pi)
		span := max(0, b.actor.WanderMaxTicks-b.actor.WanderMinTicks)
		bh.WanderUntil = tick + int64(b.actor.WanderMinTicks+b.rng.Intn(span+1))
	}
	return r2.Scale(a.Actor.Stats.Speed*b.actor.WanderSpeed, bh.WanderDir)
}
