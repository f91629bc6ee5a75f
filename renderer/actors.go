package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/horde/camera"
	"github.com/pthm-cable/horde/components"
	"github.com/pthm-cable/horde/game"
)

var lodColors = [...]rl.Color{
	components.LODActive:   rl.Red,
	components.LODSleeping: rl.Orange,
	components.LODCulled:   rl.Gray,
}

// ActorRenderer draws actors colored by LOD state.
type ActorRenderer struct {
	ShowPaths  bool
	ShowHealth bool
}

// NewActorRenderer creates an actor renderer with paths and health bars on.
func NewActorRenderer() *ActorRenderer {
	return &ActorRenderer{ShowPaths: true, ShowHealth: true}
}

// Draw renders every visible actor.
func (r *ActorRenderer) Draw(sim *game.Simulation, cam *camera.Camera) {
	for v := range sim.Actors() {
		if !cam.IsVisible(v.Pos, v.Radius) {
			continue
		}
		s := cam.WorldToScreen(v.Pos)
		center := rl.Vector2{X: float32(s.X), Y: float32(s.Y)}
		radius := float32(v.Radius * cam.Zoom)

		c := lodColors[v.LOD]
		if v.BossPhase > 0 {
			c = rl.Purple
		}
		rl.DrawCircleV(center, radius, c)
		if v.Updated {
			rl.DrawCircleLines(int32(s.X), int32(s.Y), radius+2, rl.White)
		}

		if r.ShowHealth {
			barW := 2 * radius
			x, y := int32(center.X-barW/2), int32(center.Y-radius-6)
			rl.DrawRectangle(x, y, int32(barW), 3, rl.DarkGray)
			rl.DrawRectangle(x, y, int32(barW*float32(v.Health.Fraction())), 3, rl.Green)
		}

		if r.ShowPaths && len(v.Waypoints) > 0 {
			prev := center
			for _, wp := range v.Waypoints {
				ws := cam.WorldToScreen(wp)
				next := rl.Vector2{X: float32(ws.X), Y: float32(ws.Y)}
				rl.DrawLineV(prev, next, rl.Lime)
				prev = next
			}
		}
	}
}
