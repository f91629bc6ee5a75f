package systems

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/config"
)

// StreamStats summarizes one streaming update.
type StreamStats struct {
	Required     int
	Generated    int
	Evicted      int
	Loaded       int
	OverCapacity bool // Required set alone exceeds cache capacity
}

// TerrainStreamer generates, caches and evicts terrain chunks around a
// moving viewpoint. All methods must be called from one goroutine; chunk
// generation fans out to an internal worker pool and is merged before
// Update returns.
type TerrainStreamer struct {
	gen      *chunkGenerator
	pool     *chunkPool
	field    *BiomeField
	size     int
	tileSize float64
	buffer   float64 // World units added around the viewport
	capacity int

	chunks   map[ChunkCoord]*Chunk
	required map[ChunkCoord]struct{}
	reqList  []ChunkCoord
	missing  []ChunkCoord

	overCapacity bool
}

// NewTerrainStreamer creates a streamer from terrain and biome config.
func NewTerrainStreamer(cfg config.TerrainConfig, biome config.BiomeConfig) (*TerrainStreamer, error) {
	if cfg.ChunkSize <= 0 || cfg.TileSize <= 0 {
		return nil, fmt.Errorf("terrain: invalid chunk size %d / tile size %v", cfg.ChunkSize, cfg.TileSize)
	}
	noise, err := NewNoiseSource(cfg.Noise, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	// Biome noise is decorrelated from tile noise
	biomeNoise, err := NewNoiseSource(cfg.Noise, cfg.Seed^0x5bd1e995)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	field := NewBiomeField(biomeNoise, biome.Scale, biome.Octaves)
	gen := newChunkGenerator(cfg, noise, field)

	return &TerrainStreamer{
		gen:      gen,
		pool:     newChunkPool(gen, cfg.Workers),
		field:    field,
		size:     cfg.ChunkSize,
		tileSize: cfg.TileSize,
		buffer:   float64(cfg.BufferTiles) * cfg.TileSize,
		capacity: cfg.CacheCapacity,
		chunks:   make(map[ChunkCoord]*Chunk),
		required: make(map[ChunkCoord]struct{}),
	}, nil
}

// Close stops the generation workers.
func (t *TerrainStreamer) Close() {
	t.pool.stop()
}

// Field returns the biome field used for generation.
func (t *TerrainStreamer) Field() *BiomeField {
	return t.field
}

// ChunkSize returns the chunk edge length in tiles.
func (t *TerrainStreamer) ChunkSize() int {
	return t.size
}

// TileSize returns the tile edge length in world units.
func (t *TerrainStreamer) TileSize() float64 {
	return t.tileSize
}

// RequiredSet returns the chunk coordinates covering a viewport of the given
// size centred on viewpoint, expanded by the load buffer.
func (t *TerrainStreamer) RequiredSet(viewpoint r2.Vec, viewW, viewH float64) []ChunkCoord {
	return t.requiredInto(nil, viewpoint, viewW, viewH)
}

func (t *TerrainStreamer) requiredInto(dst []ChunkCoord, viewpoint r2.Vec, viewW, viewH float64) []ChunkCoord {
	chunkWorld := float64(t.size) * t.tileSize
	minX := viewpoint.X - viewW/2 - t.buffer
	minY := viewpoint.Y - viewH/2 - t.buffer
	maxX := viewpoint.X + viewW/2 + t.buffer
	maxY := viewpoint.Y + viewH/2 + t.buffer

	cx0 := int(math.Floor(minX / chunkWorld))
	cy0 := int(math.Floor(minY / chunkWorld))
	cx1 := int(math.Floor(maxX / chunkWorld))
	cy1 := int(math.Floor(maxY / chunkWorld))

	dst = dst[:0]
	for cy := cy0; cy <= cy1; cy++ {
		for cx := cx0; cx <= cx1; cx++ {
			dst = append(dst, ChunkCoord{X: cx, Y: cy})
		}
	}
	return dst
}

// Update streams terrain for the given viewpoint: generates missing required
// chunks, marks required chunks as accessed at tick, then evicts.
func (t *TerrainStreamer) Update(viewpoint r2.Vec, viewW, viewH float64, tick int64) StreamStats {
	t.reqList = t.requiredInto(t.reqList, viewpoint, viewW, viewH)
	clear(t.required)
	for _, c := range t.reqList {
		t.required[c] = struct{}{}
	}

	t.missing = t.missing[:0]
	for _, c := range t.reqList {
		if _, ok := t.chunks[c]; !ok {
			t.missing = append(t.missing, c)
		}
	}

	// Generated chunks become visible together, after all workers finish
	generated := t.pool.generate(t.missing)
	for _, c := range generated {
		t.chunks[c.Coord] = c
	}

	for _, c := range t.reqList {
		t.chunks[c].lastAccess = tick
	}

	evicted := t.evict()

	return StreamStats{
		Required:     len(t.reqList),
		Generated:    len(generated),
		Evicted:      evicted,
		Loaded:       len(t.chunks),
		OverCapacity: t.overCapacity,
	}
}

// evict removes least-recently-accessed chunks outside the required set
// until the cache fits its capacity. Required chunks are never removed.
func (t *TerrainStreamer) evict() int {
	excess := len(t.chunks) - t.capacity
	if excess <= 0 {
		t.setOverCapacity(false)
		return 0
	}

	candidates := make([]*Chunk, 0, len(t.chunks))
	for coord, c := range t.chunks {
		if _, req := t.required[coord]; !req {
			candidates = append(candidates, c)
		}
	}
	slices.SortFunc(candidates, func(a, b *Chunk) int {
		if n := cmp.Compare(a.lastAccess, b.lastAccess); n != 0 {
			return n
		}
		return compareCoord(a.Coord, b.Coord)
	})

	n := min(excess, len(candidates))
	for _, c := range candidates[:n] {
		delete(t.chunks, c.Coord)
	}

	t.setOverCapacity(len(t.chunks) > t.capacity)
	return n
}

func (t *TerrainStreamer) setOverCapacity(over bool) {
	if over && !t.overCapacity {
		slog.Warn("terrain cache capacity below required set",
			"capacity", t.capacity,
			"required", len(t.required),
			"loaded", len(t.chunks),
		)
	}
	t.overCapacity = over
}

func compareCoord(a, b ChunkCoord) int {
	if n := cmp.Compare(a.Y, b.Y); n != 0 {
		return n
	}
	return cmp.Compare(a.X, b.X)
}

// Loaded returns the number of cached chunks.
func (t *TerrainStreamer) Loaded() int {
	return len(t.chunks)
}

// Required returns a copy of the most recent required set.
func (t *TerrainStreamer) Required() []ChunkCoord {
	return slices.Clone(t.reqList)
}

// Chunk returns the cached chunk at coord.
func (t *TerrainStreamer) Chunk(coord ChunkCoord) (*Chunk, bool) {
	c, ok := t.chunks[coord]
	return c, ok
}

// Chunks iterates over cached chunks in row-major coordinate order.
func (t *TerrainStreamer) Chunks() iter.Seq[*Chunk] {
	return func(yield func(*Chunk) bool) {
		for _, coord := range slices.SortedFunc(maps.Keys(t.chunks), compareCoord) {
			if !yield(t.chunks[coord]) {
				return
			}
		}
	}
}

// TileAt returns the tile at world tile coordinate (tx, ty).
// Tiles in chunks that are not loaded read as wall.
func (t *TerrainStreamer) TileAt(tx, ty int) Tile {
	coord := ChunkCoord{X: floorDiv(tx, t.size), Y: floorDiv(ty, t.size)}
	c, ok := t.chunks[coord]
	if !ok {
		return TileWall
	}
	return c.Tile(floorMod(tx, t.size), floorMod(ty, t.size))
}

// TileAtWorld returns the tile under world position (wx, wy).
func (t *TerrainStreamer) TileAtWorld(wx, wy float64) Tile {
	return t.TileAt(int(math.Floor(wx/t.tileSize)), int(math.Floor(wy/t.tileSize)))
}

// Blocks reports whether any loaded wall tile overlaps the box of
// half-extent half around p. Chunks that are not loaded do not block, so
// actors past the streamed edge keep their sight.
func (t *TerrainStreamer) Blocks(p r2.Vec, half float64) bool {
	tx0 := int(math.Floor((p.X - half) / t.tileSize))
	ty0 := int(math.Floor((p.Y - half) / t.tileSize))
	tx1 := int(math.Floor((p.X + half) / t.tileSize))
	ty1 := int(math.Floor((p.Y + half) / t.tileSize))
	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			c, ok := t.chunks[ChunkCoord{X: floorDiv(tx, t.size), Y: floorDiv(ty, t.size)}]
			if ok && c.Tile(floorMod(tx, t.size), floorMod(ty, t.size)).Blocking() {
				return true
			}
		}
	}
	return false
}
