// Simulation preview tool - interactive debug viewer for LOD, terrain and
// actor behavior.
//
// Usage: go run ./cmd/preview [-config path] [-seed n]
//
// WASD moves the target, the mouse wheel zooms and a left click damages
// actors under the cursor.
package main

import (
	"flag"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/camera"
	"github.com/pthm-cable/horde/config"
	"github.com/pthm-cable/horde/game"
	"github.com/pthm-cable/horde/renderer"
	"github.com/pthm-cable/horde/systems"
	"github.com/pthm-cable/horde/ui"
)

const (
	panelWidth   = 280
	targetSpeed  = 4.0
	clickRadius  = 40.0
	clickDamage  = 50.0
	projectileTT = 120 // Ticks a projectile lives
)

// projectile is the viewer's stand-in for the projectile system.
type projectile struct {
	pos, vel r2.Vec
	damage   float64
	ttl      int
}

func main() {
	configPath := flag.String("config", "", "Path to config YAML file (uses embedded defaults if empty)")
	seed := flag.Int64("seed", 42, "RNG seed")
	flag.Parse()

	config.MustInit(*configPath)
	cfg := config.Cfg()

	var projectiles []projectile
	opts := game.DefaultOptions()
	opts.Seed = *seed
	opts.Fire = systems.FireFunc(func(r systems.FireRequest) {
		projectiles = append(projectiles, projectile{
			pos:    r.Origin,
			vel:    r2.Scale(r.Speed, r.Direction),
			damage: r.Damage,
			ttl:    projectileTT,
		})
	})

	sim, err := game.New(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer sim.Close()

	width, height := int32(cfg.Screen.Width), int32(cfg.Screen.Height)
	rl.InitWindow(width+panelWidth, height, "Horde Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	cam := camera.New(float64(width), float64(height), cfg.World.Width, cfg.World.Height)
	target := cam.Pos
	targetHealth := cfg.Target.Health
	sim.Populate(target)

	var (
		tick       int64
		paused     bool
		tierChoice float32 // 0 = automatic, 1..3 = forced high/medium/low
		out        game.TickOutput

		terrainRenderer = renderer.NewTerrainRenderer(cfg.Terrain.Seed)
		actorRenderer   = renderer.NewActorRenderer()
		panel           = ui.NewRenderer()
		hud             = ui.NewHUD(width, 0, panelWidth)
		perfPanel       = ui.NewPerfPanel(width, 0)
	)

	for !rl.WindowShouldClose() {
		sim.RecordFrame()

		// Input
		move := r2.Vec{}
		if rl.IsKeyDown(rl.KeyW) {
			move.Y--
		}
		if rl.IsKeyDown(rl.KeyS) {
			move.Y++
		}
		if rl.IsKeyDown(rl.KeyA) {
			move.X--
		}
		if rl.IsKeyDown(rl.KeyD) {
			move.X++
		}
		if n := r2.Norm(move); n > 0 {
			target = r2.Add(target, r2.Scale(targetSpeed/n, move))
		}
		if wheel := rl.GetMouseWheelMove(); wheel != 0 {
			cam.ZoomBy(1 + 0.1*float64(wheel))
		}
		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		mouse := rl.GetMousePosition()
		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && mouse.X < float32(width) {
			hit := cam.ScreenToWorld(r2.Vec{X: float64(mouse.X), Y: float64(mouse.Y)})
			for v := range sim.Actors() {
				if r2.Norm(r2.Sub(v.Pos, hit)) <= clickRadius {
					sim.Damage(v.Handle, clickDamage)
				}
			}
		}

		cam.Follow(target)

		// Simulation
		if !paused {
			if tierChoice >= 1 {
				sim.Governor().ForceTier(systems.Tier(int(tierChoice)-1), tick)
			}
			viewW, viewH := cam.ViewSize()
			out = sim.Advance(game.TickInput{
				Tick:      tick,
				Viewpoint: cam.Viewpoint(),
				ViewW:     viewW,
				ViewH:     viewH,
				CostMS:    sim.LastTickMS(),
				Target:    systems.Target{Pos: target, Health: targetHealth},
			})
			projectiles, targetHealth = stepProjectiles(projectiles, target, targetHealth)
			tick++
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		terrainRenderer.Draw(sim.Terrain(), cam)
		actorRenderer.Draw(sim, cam)
		for _, p := range projectiles {
			s := cam.WorldToScreen(p.pos)
			rl.DrawCircleV(rl.Vector2{X: float32(s.X), Y: float32(s.Y)}, 3, rl.Yellow)
		}
		ts := cam.WorldToScreen(target)
		rl.DrawCircleV(rl.Vector2{X: float32(ts.X), Y: float32(ts.Y)}, float32(10*cam.Zoom), rl.SkyBlue)

		// Control panel
		panelX := float32(width + 10)
		panelY := float32(10)
		panel.DrawPanel(width, 0, panelWidth, height)

		rl.DrawText("Horde Preview", int32(panelX), int32(panelY), 20, rl.White)
		panelY += 35

		rl.DrawText("Tier (0 = auto)", int32(panelX), int32(panelY), 14, rl.LightGray)
		panelY += 18
		tierChoice = float32(int(gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 80, Height: 20},
			"0", "3",
			tierChoice, 0, 3,
		) + 0.5))
		rl.DrawText(tierLabel(tierChoice), int32(panelX+panelWidth-70), int32(panelY+2), 16, rl.White)
		panelY += 35

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(actorRenderer.ShowPaths, "Hide paths", "Show paths")) {
			actorRenderer.ShowPaths = !actorRenderer.ShowPaths
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, toggleText(terrainRenderer.ShowGrid, "Hide chunks", "Show chunks")) {
			terrainRenderer.ShowGrid = !terrainRenderer.ShowGrid
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(paused, "Resume", "Pause")) {
			paused = !paused
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Spawn Group") {
			sim.SpawnGroup(r2.Add(target, r2.Vec{X: 400}), cfg.Population.GroupSize)
		}
		panelY += 40

		hud.SetPosition(width, int32(panelY))
		panelY = float32(hud.Draw(ui.HUDData{
			Tick:         tick,
			Paused:       paused,
			Tier:         out.Tier,
			Forced:       tierChoice >= 1,
			AvgCostMS:    sim.Governor().AverageCost(),
			Actors:       sim.Count(),
			Progress:     sim.Progress(),
			LOD:          out.LOD,
			Stream:       out.Stream,
			TargetHealth: targetHealth,
			TargetMax:    cfg.Target.Health,
			Projectiles:  len(projectiles),
		}))
		perfPanel.SetPosition(width, int32(panelY))
		perfPanel.Draw(sim.PerfStats())

		rl.DrawText("WASD move, wheel zoom, click damage", int32(panelX), height-30, 12, rl.Gray)
		rl.EndDrawing()
	}
}

// stepProjectiles advances projectiles and applies hits to the target.
func stepProjectiles(ps []projectile, target r2.Vec, health float64) ([]projectile, float64) {
	kept := ps[:0]
	for _, p := range ps {
		p.pos = r2.Add(p.pos, p.vel)
		p.ttl--
		if r2.Norm(r2.Sub(p.pos, target)) <= 10 {
			health = max(0, health-p.damage)
			continue
		}
		if p.ttl > 0 {
			kept = append(kept, p)
		}
	}
	return kept, health
}

func tierLabel(choice float32) string {
	if choice < 1 {
		return "auto"
	}
	return systems.Tier(int(choice) - 1).String()
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
