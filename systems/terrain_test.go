package systems

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/config"
)

func newTestStreamer(t *testing.T, mutate func(*config.TerrainConfig)) *TerrainStreamer {
	t.Helper()
	cfg := testConfig(t)
	tc := cfg.Terrain
	tc.Workers = 1
	if mutate != nil {
		mutate(&tc)
	}
	ts, err := NewTerrainStreamer(tc, cfg.Biome)
	if err != nil {
		t.Fatalf("NewTerrainStreamer: %v", err)
	}
	t.Cleanup(ts.Close)
	return ts
}

func loadedCoords(ts *TerrainStreamer) map[ChunkCoord]bool {
	out := make(map[ChunkCoord]bool)
	for c := range ts.Chunks() {
		out[c.Coord] = true
	}
	return out
}

// ---------- Required set ----------

func TestRequiredSet_CoversViewportAndBuffer(t *testing.T) {
	ts := newTestStreamer(t, nil)

	got := ts.RequiredSet(r2.Vec{}, 1280, 720)
	if len(got) != 8 {
		t.Fatalf("expected 8 required chunks, got %d: %v", len(got), got)
	}
	for _, c := range got {
		if c.X < -2 || c.X > 1 || c.Y < -1 || c.Y > 0 {
			t.Errorf("unexpected chunk %v in required set", c)
		}
	}
}

func TestRequiredSet_NegativeCoordinatesFloor(t *testing.T) {
	ts := newTestStreamer(t, func(c *config.TerrainConfig) { c.BufferTiles = 0 })

	// A tiny viewport just left of the origin lies in chunk -1
	got := ts.RequiredSet(r2.Vec{X: -1, Y: -1}, 0.5, 0.5)
	if len(got) != 1 || got[0] != (ChunkCoord{X: -1, Y: -1}) {
		t.Errorf("expected [{-1 -1}], got %v", got)
	}
}

// ---------- Update ----------

func TestUpdate_Idempotent(t *testing.T) {
	ts := newTestStreamer(t, nil)
	vp := r2.Vec{X: 100, Y: 200}

	first := ts.Update(vp, 1280, 720, 1)
	if first.Generated != first.Required {
		t.Errorf("first update generated %d of %d required", first.Generated, first.Required)
	}
	before := loadedCoords(ts)

	second := ts.Update(vp, 1280, 720, 2)
	if second.Generated != 0 || second.Evicted != 0 {
		t.Errorf("second update should be a no-op, got %+v", second)
	}
	after := loadedCoords(ts)
	if len(before) != len(after) {
		t.Fatalf("loaded set changed size: %d -> %d", len(before), len(after))
	}
	for c := range before {
		if !after[c] {
			t.Errorf("chunk %v disappeared on repeated update", c)
		}
	}
}

func TestUpdate_RequiredChunksLoaded(t *testing.T) {
	ts := newTestStreamer(t, nil)
	vp := r2.Vec{X: -3000, Y: 4000}
	ts.Update(vp, 1280, 720, 1)

	for _, c := range ts.RequiredSet(vp, 1280, 720) {
		if _, ok := ts.Chunk(c); !ok {
			t.Errorf("required chunk %v not loaded", c)
		}
	}
}

func TestUpdate_TilesAreDeclared(t *testing.T) {
	ts := newTestStreamer(t, nil)
	ts.Update(r2.Vec{}, 1280, 720, 1)

	for c := range ts.Chunks() {
		for y := 0; y < c.Size; y++ {
			for x := 0; x < c.Size; x++ {
				if tile := c.Tile(x, y); !tile.Valid() {
					t.Fatalf("chunk %v cell (%d,%d) has undeclared tile %d", c.Coord, x, y, tile)
				}
			}
		}
	}
}

func TestUpdate_DecorationsNotOnWalls(t *testing.T) {
	ts := newTestStreamer(t, func(c *config.TerrainConfig) { c.DecorationDensity = 0.5 })
	ts.Update(r2.Vec{}, 1280, 720, 1)

	for c := range ts.Chunks() {
		for _, d := range c.Decorations {
			if c.Tile(d.X, d.Y) == TileWall {
				t.Errorf("chunk %v decoration at wall cell (%d,%d)", c.Coord, d.X, d.Y)
			}
		}
	}
}

// ---------- Eviction ----------

func TestUpdate_EvictsOldestBeyondCapacity(t *testing.T) {
	ts := newTestStreamer(t, func(c *config.TerrainConfig) { c.CacheCapacity = 10 })

	ts.Update(r2.Vec{}, 1280, 720, 1)
	stats := ts.Update(r2.Vec{X: 5000}, 1280, 720, 2)

	if stats.Loaded != 10 {
		t.Errorf("expected 10 loaded chunks, got %d", stats.Loaded)
	}
	if stats.Evicted != 6 {
		t.Errorf("expected 6 evictions, got %d", stats.Evicted)
	}
	if stats.OverCapacity {
		t.Error("should not report over capacity")
	}
	for _, c := range ts.Required() {
		if _, ok := ts.Chunk(c); !ok {
			t.Errorf("required chunk %v was evicted", c)
		}
	}
	// Ties on access tick are broken by row-major coordinate order
	for _, c := range []ChunkCoord{{X: 0, Y: 0}, {X: 1, Y: 0}} {
		if _, ok := ts.Chunk(c); !ok {
			t.Errorf("expected chunk %v to survive eviction", c)
		}
	}
}

func TestUpdate_RequiredNeverEvicted(t *testing.T) {
	ts := newTestStreamer(t, func(c *config.TerrainConfig) { c.CacheCapacity = 4 })

	stats := ts.Update(r2.Vec{}, 1280, 720, 1)
	if stats.Loaded != 8 {
		t.Errorf("expected all 8 required chunks loaded, got %d", stats.Loaded)
	}
	if stats.Evicted != 0 {
		t.Errorf("expected no evictions, got %d", stats.Evicted)
	}
	if !stats.OverCapacity {
		t.Error("expected over-capacity to be reported")
	}
}

func TestUpdate_CacheBoundedWhileMoving(t *testing.T) {
	ts := newTestStreamer(t, func(c *config.TerrainConfig) { c.CacheCapacity = 20 })

	for i := int64(0); i < 40; i++ {
		vp := r2.Vec{X: float64(i) * 300, Y: float64(i%5) * 200}
		stats := ts.Update(vp, 1280, 720, i)
		if stats.Loaded > 20 {
			t.Fatalf("tick %d: %d chunks loaded, capacity 20", i, stats.Loaded)
		}
	}
}

// ---------- Tile lookup ----------

func TestTileAt_UnloadedIsWall(t *testing.T) {
	ts := newTestStreamer(t, nil)
	if got := ts.TileAt(100000, -100000); got != TileWall {
		t.Errorf("expected wall for unloaded tile, got %v", got)
	}
	if ts.Blocks(r2.Vec{X: 1e6, Y: 1e6}, 1) {
		t.Error("unloaded terrain should not block")
	}
}

func TestBlocks_LoadedWallsOnly(t *testing.T) {
	ts := newTestStreamer(t, nil)
	ts.Update(r2.Vec{}, 1280, 720, 1)

	size := ts.TileSize()
	for c := range ts.Chunks() {
		ox, oy := c.Origin()
		for y := 0; y < c.Size; y++ {
			for x := 0; x < c.Size; x++ {
				p := r2.Vec{X: (float64(ox+x) + 0.5) * size, Y: (float64(oy+y) + 0.5) * size}
				if got, want := ts.Blocks(p, 0), c.Tile(x, y).Blocking(); got != want {
					t.Fatalf("Blocks at tile (%d,%d) = %v, tile %v", ox+x, oy+y, got, c.Tile(x, y))
				}
			}
		}
	}
}

func TestTileAt_MatchesChunkCells(t *testing.T) {
	ts := newTestStreamer(t, nil)
	ts.Update(r2.Vec{}, 1280, 720, 1)

	for c := range ts.Chunks() {
		ox, oy := c.Origin()
		for y := 0; y < c.Size; y++ {
			for x := 0; x < c.Size; x++ {
				if got, want := ts.TileAt(ox+x, oy+y), c.Tile(x, y); got != want {
					t.Fatalf("TileAt(%d,%d) = %v, chunk %v cell = %v", ox+x, oy+y, got, c.Coord, want)
				}
			}
		}
	}
}

// ---------- Generation ----------

func TestGenerate_WallsFollowFractalNoise(t *testing.T) {
	cfg := testConfig(t)
	tc := cfg.Terrain
	tc.SmoothingPasses = 0
	tc.FeatureDensity = 0
	noise, err := NewNoiseSource(tc.Noise, tc.Seed)
	if err != nil {
		t.Fatalf("NewNoiseSource: %v", err)
	}
	gen := newChunkGenerator(tc, noise, NewBiomeField(noise, cfg.Biome.Scale, cfg.Biome.Octaves))

	c := gen.generate(ChunkCoord{X: 2, Y: -3})
	ox, oy := c.Origin()
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			v := Fractal(noise, float64(ox+x)*tc.NoiseScale, float64(oy+y)*tc.NoiseScale, 4)
			if wall := c.Tile(x, y) == TileWall; wall != (v > 0.3) {
				t.Fatalf("cell (%d,%d): wall=%v with 4-octave noise %v", x, y, wall, v)
			}
		}
	}
}

// ---------- Determinism ----------

func TestGeneration_DeterministicAcrossWorkers(t *testing.T) {
	serial := newTestStreamer(t, nil)
	parallel := newTestStreamer(t, func(c *config.TerrainConfig) { c.Workers = 4 })

	vp := r2.Vec{X: 777, Y: -333}
	serial.Update(vp, 1280, 720, 1)
	parallel.Update(vp, 1280, 720, 1)

	for a := range serial.Chunks() {
		b, ok := parallel.Chunk(a.Coord)
		if !ok {
			t.Fatalf("chunk %v missing from parallel streamer", a.Coord)
		}
		if a.Biome != b.Biome {
			t.Errorf("chunk %v biome %v vs %v", a.Coord, a.Biome, b.Biome)
		}
		for y := 0; y < a.Size; y++ {
			for x := 0; x < a.Size; x++ {
				if a.Tile(x, y) != b.Tile(x, y) {
					t.Fatalf("chunk %v cell (%d,%d) differs", a.Coord, x, y)
				}
			}
		}
		if len(a.Decorations) != len(b.Decorations) {
			t.Errorf("chunk %v decoration count %d vs %d", a.Coord, len(a.Decorations), len(b.Decorations))
		}
	}
}

func TestGeneration_RegeneratedChunkIdentical(t *testing.T) {
	ts := newTestStreamer(t, func(c *config.TerrainConfig) { c.CacheCapacity = 8 })
	ts.Update(r2.Vec{}, 1280, 720, 1)

	orig, ok := ts.Chunk(ChunkCoord{X: 0, Y: 0})
	if !ok {
		t.Fatal("chunk {0 0} not loaded")
	}

	// Move away so the chunk is evicted, then come back
	ts.Update(r2.Vec{X: 20000}, 1280, 720, 2)
	if _, ok := ts.Chunk(ChunkCoord{X: 0, Y: 0}); ok {
		t.Fatal("chunk {0 0} should have been evicted")
	}
	ts.Update(r2.Vec{}, 1280, 720, 3)

	again, ok := ts.Chunk(ChunkCoord{X: 0, Y: 0})
	if !ok {
		t.Fatal("chunk {0 0} not reloaded")
	}
	for y := 0; y < orig.Size; y++ {
		for x := 0; x < orig.Size; x++ {
			if orig.Tile(x, y) != again.Tile(x, y) {
				t.Fatalf("cell (%d,%d) changed after regeneration", x, y)
			}
		}
	}
}

// ---------- Smoothing ----------

func TestSmooth_WallNeighborThreshold(t *testing.T) {
	tests := []struct {
		name  string
		walls int
		want  Tile
	}{
		{"four walls keep floor", 4, TileFloor},
		{"five walls become wall", 5, TileWall},
		{"eight walls become wall", 8, TileWall},
	}
	neighbors := []int{0, 1, 2, 3, 5, 6, 7, 8}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := make([]Tile, 9)
			for i := range tiles {
				tiles[i] = TileFloor
			}
			for _, idx := range neighbors[:tt.walls] {
				tiles[idx] = TileWall
			}
			out := smooth(tiles, 3)
			if out[4] != tt.want {
				t.Errorf("centre = %v, want %v", out[4], tt.want)
			}
		})
	}
}

func TestSmooth_BorderUntouched(t *testing.T) {
	tiles := make([]Tile, 9)
	for i := range tiles {
		tiles[i] = TileWall
	}
	tiles[0] = TileGrass
	out := smooth(tiles, 3)
	if out[0] != TileGrass {
		t.Errorf("border cell changed to %v", out[0])
	}
}

func TestNewTerrainStreamer_RejectsBadConfig(t *testing.T) {
	cfg := testConfig(t)
	tc := cfg.Terrain
	tc.Noise = "value"
	if _, err := NewTerrainStreamer(tc, cfg.Biome); err == nil {
		t.Error("expected error for unknown noise source")
	}
	tc = cfg.Terrain
	tc.ChunkSize = 0
	if _, err := NewTerrainStreamer(tc, cfg.Biome); err == nil {
		t.Error("expected error for zero chunk size")
	}
}
