// Package renderer draws streamed terrain and actors for the preview viewer.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/camera"
	"github.com/pthm-cable/horde/systems"
)

var tileColors = [systems.NumTiles]rl.Color{
	systems.TileFloor:  {R: 90, G: 90, B: 100, A: 255},
	systems.TileWall:   {R: 30, G: 30, B: 35, A: 255},
	systems.TileGrass:  {R: 70, G: 130, B: 60, A: 255},
	systems.TileDirt:   {R: 120, G: 90, B: 60, A: 255},
	systems.TileStone:  {R: 110, G: 110, B: 115, A: 255},
	systems.TileWater:  {R: 50, G: 90, B: 160, A: 255},
	systems.TileWood:   {R: 100, G: 70, B: 40, A: 255},
	systems.TileSand:   {R: 200, G: 180, B: 120, A: 255},
	systems.TileGravel: {R: 140, G: 130, B: 120, A: 255},
}

// TerrainRenderer renders loaded chunks with per-tile shade variation.
type TerrainRenderer struct {
	noise    systems.NoiseSource
	ShowGrid bool
}

// NewTerrainRenderer creates a new terrain renderer.
func NewTerrainRenderer(seed int64) *TerrainRenderer {
	return &TerrainRenderer{noise: systems.NewSimplexNoise(seed)}
}

// TileColor returns the base color of a tile, or magenta for unknown tags.
func TileColor(t systems.Tile) rl.Color {
	if !t.Valid() {
		return rl.Magenta
	}
	return tileColors[t]
}

// Draw renders every loaded chunk that intersects the view.
func (r *TerrainRenderer) Draw(terrain *systems.TerrainStreamer, cam *camera.Camera) {
	ts := terrain.TileSize()
	size := float32(ts * cam.Zoom)

	for chunk := range terrain.Chunks() {
		ox, oy := chunk.Origin()
		span := float64(chunk.Size) * ts
		chunkCenter := r2.Vec{X: float64(ox)*ts + span/2, Y: float64(oy)*ts + span/2}
		if !cam.IsVisible(chunkCenter, span) {
			continue
		}

		for y := 0; y < chunk.Size; y++ {
			for x := 0; x < chunk.Size; x++ {
				tx, ty := ox+x, oy+y
				s := cam.WorldToScreen(r2.Vec{X: float64(tx) * ts, Y: float64(ty) * ts})
				c := shade(TileColor(chunk.Tile(x, y)), r.noise.Eval2(float64(tx)*0.3, float64(ty)*0.3))
				rl.DrawRectangleRec(rl.Rectangle{X: float32(s.X), Y: float32(s.Y), Width: size, Height: size}, c)
			}
		}

		for _, d := range chunk.Decorations {
			w := r2.Vec{X: (float64(ox+d.X) + 0.5) * ts, Y: (float64(oy+d.Y) + 0.5) * ts}
			s := cam.WorldToScreen(w)
			rl.DrawCircleV(rl.Vector2{X: float32(s.X), Y: float32(s.Y)}, size/4, TileColor(d.Tile))
		}

		if r.ShowGrid {
			s := cam.WorldToScreen(r2.Vec{X: float64(ox) * ts, Y: float64(oy) * ts})
			px := int32(span * cam.Zoom)
			rl.DrawRectangleLines(int32(s.X), int32(s.Y), px, px, rl.Fade(rl.White, 0.3))
		}
	}
}

// shade brightens or darkens c by up to 12% for n in [-1, 1].
func shade(c rl.Color, n float64) rl.Color {
	f := 1 + 0.12*n
	scale := func(v uint8) uint8 {
		return uint8(min(max(float64(v)*f, 0), 255))
	}
	return rl.Color{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}
