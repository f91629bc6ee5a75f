// Package components defines ECS components for the simulation.
package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents an actor's world position.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// Set assigns the position from a vector.
func (p *Position) Set(v r2.Vec) {
	p.X, p.Y = v.X, v.Y
}

// Velocity represents an actor's desired velocity in world units per tick.
type Velocity struct {
	X, Y float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() r2.Vec {
	return r2.Vec{X: v.X, Y: v.Y}
}

// Set assigns the velocity from a vector.
func (v *Velocity) Set(u r2.Vec) {
	v.X, v.Y = u.X, u.Y
}

// Body holds collision properties.
// Solid marks actors whose movement is blocked by occluders.
type Body struct {
	Radius float64
	Solid  bool
}

// Health tracks hit points.
type Health struct {
	Current float64
	Max     float64
}

// Fraction returns Current/Max, or 0 when Max is not positive.
func (h Health) Fraction() float64 {
	if h.Max <= 0 {
		return 0
	}
	return h.Current / h.Max
}

// Dead reports whether the actor has no health left.
func (h Health) Dead() bool {
	return h.Current <= 0
}

// Stats are rolled once at creation and never change.
type Stats struct {
	Speed              float64 // World units per tick
	Damage             float64
	FireCooldown       int // Ticks between shots
	Detection          float64
	PreferredRange     float64
	Aggression         float64
	PredictionAccuracy float64 // Weight in (0,1) applied to the target's last displacement
	FlankChance        float64
	LeadMult           float64 // Aim lead multiplier, 0 = aim directly
	NeverRetreat       bool
}

// Actor holds identity and creation-time stats.
type Actor struct {
	ID    uint32
	Type  ActorType
	Stats Stats
}

// Behavior holds the AI state machine state.
type Behavior struct {
	State         BehaviorState
	WanderDir     r2.Vec
	WanderUntil   int64 // Tick at which the wander direction is re-rolled
	PrevTarget    r2.Vec
	HasPrevTarget bool
	NextFireTick  int64 // First tick at which the next shot is allowed
}

// Path is a cached waypoint list with a cursor.
type Path struct {
	Waypoints []r2.Vec
	Cursor    int
	PlannedAt int64
	Planned   bool // True once any plan was attempted
}

// Current returns the waypoint under the cursor.
func (p *Path) Current() (r2.Vec, bool) {
	if p.Cursor < 0 || p.Cursor >= len(p.Waypoints) {
		return r2.Vec{}, false
	}
	return p.Waypoints[p.Cursor], true
}

// Advance moves the cursor to the next waypoint.
func (p *Path) Advance() {
	p.Cursor++
}

// Clear drops the waypoints but keeps the plan timestamp.
func (p *Path) Clear() {
	p.Waypoints = p.Waypoints[:0]
	p.Cursor = 0
}

// Empty reports whether no waypoints remain.
func (p *Path) Empty() bool {
	return p.Cursor >= len(p.Waypoints)
}

// Sight caches the last line-of-sight result to the target.
type Sight struct {
	CheckedAt int64
	Visible   bool
	Valid     bool
}

// LOD holds the level-of-detail classification for the current tick.
type LOD struct {
	State      LODState
	Distance   float64
	Frequency  int // Ticks between behavior updates while active
	LastUpdate int64
	HasUpdated bool
	Updated    bool // True if behavior runs this tick
}

// Group links an actor to a coordinated group.
type Group struct {
	ID   uint32
	Role GroupRole
}

// Boss holds boss-only phase and attack-pattern state.
type Boss struct {
	Phase        int // 1..3
	PatternIndex     int   // Index into the phase's pattern list
	PatternStartedAt int64 // Tick the current pattern began
	PhaseStartedAt   int64 // Tick the current phase began
	MoveAngle        float64
	LastMoveTick     int64
	Moved            bool  // True once MoveAngle has been advanced
	LastShotTick     int64 // Tick of the last shot of the current pattern
	BurstLeft        int
}
