package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/config"
)

// waypointDirs are the 8 candidate directions: the four cardinals first,
// then the diagonals.
var waypointDirs = [8]r2.Vec{
	{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1},
	{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}, {X: -math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
	{X: math.Sqrt2 / 2, Y: -math.Sqrt2 / 2}, {X: -math.Sqrt2 / 2, Y: -math.Sqrt2 / 2},
}

// WaypointPlanner builds a greedy two-point detour when the target is not
// directly visible.
type WaypointPlanner struct {
	oracle      *VisibilityOracle
	Radius      float64
	Cooldown    int64
	ReachRadius float64
}

// NewWaypointPlanner creates a planner from config.
func NewWaypointPlanner(cfg config.WaypointConfig, oracle *VisibilityOracle) *WaypointPlanner {
	return &WaypointPlanner{
		oracle:      oracle,
		Radius:      cfg.Radius,
		Cooldown:    int64(cfg.Cooldown),
		ReachRadius: cfg.ReachRadius,
	}
}

// Plan returns [candidate, target] for the first candidate that is clear,
// visible from the actor and has sight of the target, or nil.
func (p *WaypointPlanner) Plan(from, target r2.Vec, blocker Blocker, maxDistance float64) []r2.Vec {
	for _, dir := range waypointDirs {
		c := r2.Add(from, r2.Scale(p.Radius, dir))
		if blocker != nil && blocker.Blocks(c, 0) {
			continue
		}
		if !p.oracle.IsVisible(from, c, blocker, 0) {
			continue
		}
		if p.oracle.IsVisible(c, target, blocker, maxDistance) {
			return []r2.Vec{c, target}
		}
	}
	return nil
}

// Replan refreshes path unless the last plan is younger than Cooldown.
// It reports whether the path has waypoints left to follow.
func (p *WaypointPlanner) Replan(path *components.Path, tick int64, from, target r2.Vec, blocker Blocker, maxDistance float64) bool {
	if path.Planned && tick-path.PlannedAt < p.Cooldown {
		return !path.Empty()
	}
	path.Clear()
	path.Waypoints = append(path.Waypoints, p.Plan(from, target, blocker, maxDistance)...)
	path.PlannedAt = tick
	path.Planned = true
	return !path.Empty()
}

// Follow advances past reached waypoints and returns the current one.
func (p *WaypointPlanner) Follow(path *components.Path, pos r2.Vec) (r2.Vec, bool) {
	for {
		wp, ok := path.Current()
		if !ok {
			return r2.Vec{}, false
		}
		if distance(pos, wp) > p.ReachRadius {
			return wp, true
		}
		path.Advance()
	}
}
