package systems

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/config"
)

func testPlanner() *WaypointPlanner {
	return NewWaypointPlanner(config.WaypointConfig{Radius: 100, Cooldown: 30, ReachRadius: 10}, testOracle())
}

// shortWall sits between the origin and (400,0), low enough to see around.
var shortWall = OccluderSet{NewRect(190, -20, 20, 40)}

// longWall cannot be seen around from within one waypoint radius.
var longWall = OccluderSet{NewRect(50, -1000, 10, 2000)}

func TestPlan_PicksFirstClearCandidate(t *testing.T) {
	p := testPlanner()
	target := r2.Vec{X: 400}

	path := p.Plan(r2.Vec{}, target, shortWall, 450)
	if len(path) != 2 {
		t.Fatalf("expected two-point path, got %v", path)
	}
	// East and west cannot see the target; (0,100) is the first cardinal
	// that can, ahead of the diagonal (70.7,70.7) which also qualifies
	if !nearVec(path[0], r2.Vec{X: 0, Y: 100}) {
		t.Errorf("expected cardinal waypoint (0,100), got %v", path[0])
	}
	if d := distance(r2.Vec{}, path[0]); d < 99.9 || d > 100.1 {
		t.Errorf("waypoint distance = %v, want 100", d)
	}
	if path[1] != target {
		t.Errorf("last waypoint = %v, want target", path[1])
	}
}

func TestPlan_DiagonalsAfterCardinals(t *testing.T) {
	p := testPlanner()
	// Boxes the origin in on all four cardinal candidates
	blocker := OccluderSet{
		NewRect(95, -5, 10, 10), NewRect(-105, -5, 10, 10),
		NewRect(-5, 95, 10, 10), NewRect(-5, -105, 10, 10),
	}
	target := r2.Vec{X: 300, Y: 300}

	path := p.Plan(r2.Vec{}, target, blocker, 0)
	if len(path) != 2 {
		t.Fatalf("expected two-point path, got %v", path)
	}
	want := r2.Scale(100, r2.Vec{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2})
	if !nearVec(path[0], want) {
		t.Errorf("expected first diagonal %v, got %v", want, path[0])
	}
}

func TestPlan_NoCandidate(t *testing.T) {
	p := testPlanner()
	if path := p.Plan(r2.Vec{}, r2.Vec{X: 400}, longWall, 450); path != nil {
		t.Errorf("expected nil path, got %v", path)
	}
}

func TestPlan_RespectsMaxDistance(t *testing.T) {
	p := testPlanner()
	// Every candidate is more than 250 from the target
	if path := p.Plan(r2.Vec{}, r2.Vec{X: 400}, shortWall, 250); path != nil {
		t.Errorf("expected nil path beyond max distance, got %v", path)
	}
}

func TestReplan_Cooldown(t *testing.T) {
	p := testPlanner()
	var path components.Path

	if !p.Replan(&path, 0, r2.Vec{}, r2.Vec{X: 400}, shortWall, 450) {
		t.Fatal("expected a path at tick 0")
	}
	first := path.Waypoints[0]

	// Within the cooldown the existing path is kept even if the world changed
	if !p.Replan(&path, 29, r2.Vec{}, r2.Vec{X: 400}, longWall, 450) {
		t.Error("expected cached path within cooldown")
	}
	if path.Waypoints[0] != first {
		t.Error("path changed within cooldown")
	}

	if p.Replan(&path, 30, r2.Vec{}, r2.Vec{X: 400}, longWall, 450) {
		t.Error("expected replan at tick 30 to find no path")
	}
	if path.PlannedAt != 30 {
		t.Errorf("PlannedAt = %d, want 30", path.PlannedAt)
	}
}

func TestFollow_AdvancesPastReached(t *testing.T) {
	p := testPlanner()
	path := components.Path{Waypoints: []r2.Vec{{X: 5}, {X: 100}}}

	wp, ok := p.Follow(&path, r2.Vec{})
	if !ok || wp.X != 100 {
		t.Errorf("expected second waypoint, got %v ok=%v", wp, ok)
	}

	_, ok = p.Follow(&path, r2.Vec{X: 95})
	if ok {
		t.Error("expected path exhausted once last waypoint reached")
	}
}
