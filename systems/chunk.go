package systems

import (
	"math/rand"

	"github.com/pthm-cable/horde/config"
)

// ChunkCoord identifies a chunk. Chunk (cx, cy) covers tiles
// [cx*size, cx*size+size) x [cy*size, cy*size+size).
type ChunkCoord struct {
	X, Y int
}

// Decoration is a decorative tile placed on top of a chunk cell.
type Decoration struct {
	X, Y int // Local cell offset
	Tile Tile
}

// Chunk is a fixed-size block of generated terrain.
type Chunk struct {
	Coord       ChunkCoord
	Size        int
	Biome       Biome // Biome at the chunk centre, drives feature scattering
	Decorations []Decoration

	tiles      []Tile // Row-major, Size*Size
	lastAccess int64
}

// Tile returns the tile at local cell (x, y), or wall outside the chunk.
func (c *Chunk) Tile(x, y int) Tile {
	if x < 0 || y < 0 || x >= c.Size || y >= c.Size {
		return TileWall
	}
	return c.tiles[y*c.Size+x]
}

// Origin returns the world tile coordinate of local cell (0, 0).
func (c *Chunk) Origin() (tx, ty int) {
	return c.Coord.X * c.Size, c.Coord.Y * c.Size
}

// LastAccess returns the tick at which the chunk was last required.
func (c *Chunk) LastAccess() int64 {
	return c.lastAccess
}

// terrainOctaves is the fractal depth of the base terrain noise.
const terrainOctaves = 4

// chunkGenerator builds chunks from immutable inputs, so one generator can
// serve several workers at once.
type chunkGenerator struct {
	noise             NoiseSource
	field             *BiomeField
	seed              int64
	size              int
	noiseScale        float64
	smoothingPasses   int
	decorationDensity float64
	featureDensity    float64
}

func newChunkGenerator(cfg config.TerrainConfig, noise NoiseSource, field *BiomeField) *chunkGenerator {
	return &chunkGenerator{
		noise:             noise,
		field:             field,
		seed:              cfg.Seed,
		size:              cfg.ChunkSize,
		noiseScale:        cfg.NoiseScale,
		smoothingPasses:   cfg.SmoothingPasses,
		decorationDensity: cfg.DecorationDensity,
		featureDensity:    cfg.FeatureDensity,
	}
}

// chunkSeed mixes the world seed with the chunk coordinate (splitmix64 finalizer).
func chunkSeed(seed int64, coord ChunkCoord) int64 {
	z := uint64(seed) ^ uint64(int64(coord.X))*0x9E3779B97F4A7C15 ^ uint64(int64(coord.Y))*0xC2B2AE3D27D4EB4F
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return int64(z ^ (z >> 31))
}

// generate builds the chunk at coord. The result depends only on the
// generator inputs and coord.
func (g *chunkGenerator) generate(coord ChunkCoord) *Chunk {
	size := g.size
	c := &Chunk{
		Coord: coord,
		Size:  size,
		tiles: make([]Tile, size*size),
	}
	ox, oy := c.Origin()
	rng := rand.New(rand.NewSource(chunkSeed(g.seed, coord)))

	c.Biome = g.field.BiomeAt(float64(ox)+float64(size)/2, float64(oy)+float64(size)/2)

	// Base terrain by noise banding
	var decorations []Decoration
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			tx, ty := float64(ox+x), float64(oy+y)
			v := Fractal(g.noise, tx*g.noiseScale, ty*g.noiseScale, terrainOctaves)
			style := g.field.BiomeAt(tx, ty).Style()

			var tile Tile
			switch {
			case v > 0.3:
				tile = TileWall
			case v > 0.1:
				tile = style.Secondary
			default:
				tile = style.Primary
			}
			c.tiles[y*size+x] = tile

			if tile != TileWall && rng.Float64() < g.decorationDensity {
				decorations = append(decorations, Decoration{X: x, Y: y, Tile: style.Decoration})
			}
		}
	}

	for i := 0; i < g.smoothingPasses; i++ {
		c.tiles = smooth(c.tiles, size)
	}

	decorations = g.scatterFeatures(c, rng, decorations)

	// Drop decorations that ended up on walls, keep the last per cell
	seen := make(map[int]int, len(decorations))
	for _, d := range decorations {
		if c.Tile(d.X, d.Y) == TileWall {
			continue
		}
		idx := d.Y*size + d.X
		if i, ok := seen[idx]; ok {
			c.Decorations[i] = d
			continue
		}
		seen[idx] = len(c.Decorations)
		c.Decorations = append(c.Decorations, d)
	}

	return c
}

// smooth runs one cellular-automata pass: an interior cell becomes wall when
// at least 5 of its 8 neighbors are wall, otherwise it keeps its tile.
func smooth(tiles []Tile, size int) []Tile {
	next := make([]Tile, len(tiles))
	copy(next, tiles)
	for y := 1; y < size-1; y++ {
		for x := 1; x < size-1; x++ {
			walls := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					if tiles[(y+dy)*size+x+dx] == TileWall {
						walls++
					}
				}
			}
			if walls >= 5 {
				next[y*size+x] = TileWall
			}
		}
	}
	return next
}

// scatterFeatures places biome-specific features at a fixed density.
func (g *chunkGenerator) scatterFeatures(c *Chunk, rng *rand.Rand, decorations []Decoration) []Decoration {
	size := c.Size
	attempts := int(float64(size*size) * g.featureDensity)
	for i := 0; i < attempts; i++ {
		x, y := rng.Intn(size), rng.Intn(size)
		roll := rng.Float64()

		switch c.Biome {
		case BiomeForest:
			if roll < 0.3 {
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						cx, cy := x+dx, y+dy
						if cx < 0 || cy < 0 || cx >= size || cy >= size {
							continue
						}
						decorations = append(decorations, Decoration{X: cx, Y: cy, Tile: TileWood})
					}
				}
			}
		case BiomeSwamp:
			if roll < 0.4 && c.tiles[y*size+x] != TileWall {
				c.tiles[y*size+x] = TileWater
			}
		case BiomeCave:
			if roll < 0.2 && c.tiles[y*size+x] != TileWall {
				c.tiles[y*size+x] = TileStone
			}
		}
	}
	return decorations
}
