package components

import "fmt"

// ActorType identifies an actor archetype.
type ActorType uint8

const (
	TypeNormal ActorType = iota
	TypeFast
	TypeTank
	TypeSniper
	TypeBerserker
	TypeBoss
)

// NumRegularTypes is the number of spawnable non-boss types.
const NumRegularTypes = 5

var actorTypeNames = [...]string{"normal", "fast", "tank", "sniper", "berserker", "boss"}

func (t ActorType) String() string {
	if int(t) < len(actorTypeNames) {
		return actorTypeNames[t]
	}
	return fmt.Sprintf("ActorType(%d)", t)
}

// ParseActorType returns the type with the given name.
func ParseActorType(s string) (ActorType, error) {
	for i, name := range actorTypeNames {
		if name == s {
			return ActorType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown actor type %q", s)
}

// BehaviorState is the AI state of an actor.
type BehaviorState uint8

const (
	StateIdle BehaviorState = iota
	StateChase
	StateAttack
	StateRetreat
	StatePathfinding
)

// NumBehaviorStates is the number of behavior states.
const NumBehaviorStates = 5

var behaviorStateNames = [...]string{"idle", "chase", "attack", "retreat", "pathfinding"}

func (s BehaviorState) String() string {
	if int(s) < len(behaviorStateNames) {
		return behaviorStateNames[s]
	}
	return fmt.Sprintf("BehaviorState(%d)", s)
}

// Valid reports whether s is one of the defined states.
func (s BehaviorState) Valid() bool {
	return s < NumBehaviorStates
}

// LODState is the level-of-detail classification of an actor.
type LODState uint8

const (
	LODActive   LODState = iota // Simulated at its frequency bucket
	LODSleeping                 // Visible, frozen
	LODCulled                   // Invisible, skipped
)

var lodStateNames = [...]string{"active", "sleeping", "culled"}

func (s LODState) String() string {
	if int(s) < len(lodStateNames) {
		return lodStateNames[s]
	}
	return fmt.Sprintf("LODState(%d)", s)
}

// GroupRole is an actor's role inside a group.
type GroupRole uint8

const (
	RoleLeader GroupRole = iota
	RoleFlanker
	RoleSupport
)

var groupRoleNames = [...]string{"leader", "flanker", "support"}

func (r GroupRole) String() string {
	if int(r) < len(groupRoleNames) {
		return groupRoleNames[r]
	}
	return fmt.Sprintf("GroupRole(%d)", r)
}

// BossPattern is a boss attack pattern.
type BossPattern uint8

const (
	PatternSingle BossPattern = iota
	PatternBurst
	PatternSpread
	PatternSpiral
	PatternRapid
	PatternShotgun
	PatternHoming
)

var bossPatternNames = [...]string{"single", "burst", "spread", "spiral", "rapid", "shotgun", "homing"}

func (p BossPattern) String() string {
	if int(p) < len(bossPatternNames) {
		return bossPatternNames[p]
	}
	return fmt.Sprintf("BossPattern(%d)", p)
}
