package systems

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
)

// bossPatterns lists the attack rotation of each phase.
var bossPatterns = [3][3]components.BossPattern{
	{components.PatternSingle, components.PatternBurst, components.PatternSpread},
	{components.PatternBurst, components.PatternSpiral, components.PatternRapid},
	{components.PatternRapid, components.PatternShotgun, components.PatternHoming},
}

var (
	spreadAngles  = []float64{-0.3, 0, 0.3}
	shotgunAngles = []float64{-0.6, -0.3, 0, 0.3, 0.6}
)

// BossPhaseFor maps a health fraction to a boss phase.
func BossPhaseFor(healthFraction float64) int {
	switch {
	case healthFraction > 0.66:
		return 1
	case healthFraction > 0.33:
		return 2
	default:
		return 3
	}
}

// CurrentPattern returns the active attack pattern of a boss.
func CurrentPattern(boss *components.Boss) components.BossPattern {
	phase := min(max(boss.Phase, 1), 3)
	return bossPatterns[phase-1][boss.PatternIndex%3]
}

// EvaluateBossPhase sets the boss phase from its health. On an actual change
// it restarts the pattern rotation at tick, emits a cue and logs; evaluating
// again at the same health does nothing.
func (b *BehaviorController) EvaluateBossPhase(boss *components.Boss, health components.Health, id uint32, pos r2.Vec, tick int64) bool {
	phase := BossPhaseFor(health.Fraction())
	if phase == boss.Phase {
		return false
	}
	prev := boss.Phase
	boss.Phase = phase
	boss.PhaseStartedAt = tick
	startPattern(boss, 0, tick)

	// The initial assignment at spawn is not a transition
	if prev != 0 {
		b.cue(CueBossPhase, pos)
		slog.Info("boss phase changed",
			"actor", id,
			"from", prev,
			"to", phase,
			"health", health.Fraction(),
		)
	}
	return true
}

func startPattern(boss *components.Boss, index int, tick int64) {
	boss.PatternIndex = index % 3
	boss.PatternStartedAt = tick
	boss.LastShotTick = tick
	boss.BurstLeft = 0
}

// advancePattern rotates past every pattern whose duration has elapsed by
// tick, however many ticks passed since the last update.
func (b *BehaviorController) advancePattern(boss *components.Boss, tick int64) {
	period := int64(max(1, b.boss.PatternTicks))
	elapsed := tick - boss.PatternStartedAt
	if elapsed < period {
		return
	}
	n := elapsed / period
	startPattern(boss, boss.PatternIndex+int(n%3), boss.PatternStartedAt+n*period)
}

func (b *BehaviorController) updateBoss(a ActorState, in BehaviorInput) Intent {
	boss := a.Boss
	st := &a.Actor.Stats
	pos := a.Pos.Vec()
	target := in.Target.Pos
	dist := distance(pos, target)

	b.EvaluateBossPhase(boss, *a.Health, a.Actor.ID, pos, in.Tick)

	engage := st.Detection * b.boss.EngageMult
	visible := b.oracle.Check(a.Sight, in.Tick, pos, target, in.Blocker, engage)

	var intent Intent
	if dist > engage {
		a.Behavior.State = components.StateIdle
		intent.Velocity = b.wander(a, in.Tick)
	} else {
		if visible {
			a.Behavior.State = components.StateAttack
		} else {
			a.Behavior.State = components.StateChase
		}
		intent.Velocity = b.bossMove(boss, st, in.Tick, pos, target)
		intent.Shots = b.bossAttack(a, in.Tick, pos, target, visible)
	}

	a.Behavior.PrevTarget = target
	a.Behavior.HasPrevTarget = true
	return intent
}

// advanceAngle turns the movement angle by rate for every tick since the
// last movement update.
func advanceAngle(boss *components.Boss, tick int64, rate float64) {
	elapsed := int64(1)
	if boss.Moved {
		elapsed = max(0, tick-boss.LastMoveTick)
	}
	boss.MoveAngle += rate * float64(elapsed)
	boss.LastMoveTick = tick
	boss.Moved = true
}

// bossMove returns the phase movement: orbit, figure-eight/charge cycle,
// or fast pursuit.
func (b *BehaviorController) bossMove(boss *components.Boss, st *components.Stats, tick int64, pos, target r2.Vec) r2.Vec {
	switch boss.Phase {
	case 1:
		advanceAngle(boss, tick, b.boss.OrbitSpeed)
		orbit := r2.Add(target, r2.Scale(b.boss.OrbitRadius, fromAngle(boss.MoveAngle)))
		return toward(pos, orbit, st.Speed*b.boss.OrbitSpeedMult)
	case 2:
		cycle := int64(max(2, b.boss.ChargeCycle))
		if (tick-boss.PhaseStartedAt)%cycle < cycle/2 {
			advanceAngle(boss, tick, b.boss.FigureEightSpeed)
			r := b.boss.OrbitRadius
			offset := r2.Vec{
				X: math.Cos(boss.MoveAngle) * r,
				Y: math.Sin(2*boss.MoveAngle) * r / 2,
			}
			return toward(pos, r2.Add(target, offset), st.Speed)
		}
		boss.LastMoveTick = tick
		return toward(pos, target, st.Speed*b.boss.ChargeSpeedMult)
	default:
		return toward(pos, target, st.Speed*b.boss.PursuitSpeedMult)
	}
}

// bossAttack advances the pattern rotation and fires the current pattern.
func (b *BehaviorController) bossAttack(a ActorState, tick int64, pos, target r2.Vec, visible bool) int {
	boss := a.Boss
	b.advancePattern(boss, tick)

	if !visible {
		return 0
	}
	dir, ok := unit(r2.Sub(target, pos))
	if !ok {
		return 0
	}

	speed := b.actor.ProjectileSpeed * b.boss.ProjectileSpeedMult
	bh := a.Behavior
	ready := tick >= bh.NextFireTick
	sinceShot := tick - boss.LastShotTick
	shots := 0
	shoot := func(d r2.Vec) {
		b.emit(a, d, speed)
		boss.LastShotTick = tick
		shots++
	}

	switch CurrentPattern(boss) {
	case components.PatternSingle:
		if ready {
			shoot(dir)
		}
	case components.PatternBurst:
		if boss.BurstLeft > 0 {
			if sinceShot >= int64(b.boss.BurstGap) {
				shoot(dir)
				boss.BurstLeft--
			}
		} else if ready {
			shoot(dir)
			boss.BurstLeft = b.boss.BurstShots - 1
		}
	case components.PatternSpread:
		if ready {
			for _, ang := range spreadAngles {
				shoot(rotate(dir, ang))
			}
		}
	case components.PatternSpiral:
		if sinceShot >= int64(b.boss.SpiralGap) {
			shoot(fromAngle(float64(tick) * 0.2))
		}
	case components.PatternRapid:
		if sinceShot >= int64(b.boss.RapidGap) {
			shoot(dir)
		}
	case components.PatternShotgun:
		if ready {
			for _, ang := range shotgunAngles {
				shoot(rotate(dir, ang))
			}
		}
	case components.PatternHoming:
		if ready {
			if lead, ok := unit(r2.Sub(predict(bh, target, a.Actor.Stats.LeadMult), pos)); ok {
				shoot(lead)
			}
		}
	}

	// Cooldown-gated patterns restart the cooldown after a volley
	if ready && shots > 0 {
		switch CurrentPattern(boss) {
		case components.PatternSingle, components.PatternBurst, components.PatternSpread,
			components.PatternShotgun, components.PatternHoming:
			bh.NextFireTick = tick + int64(a.Actor.Stats.FireCooldown)
		}
	}
	return shots
}
