package systems

import "fmt"

// Tile is a terrain tile tag.
type Tile uint8

const (
	TileFloor Tile = iota
	TileWall
	TileGrass
	TileDirt
	TileStone
	TileWater
	TileWood
	TileSand
	TileGravel
)

// NumTiles is the number of declared tile tags.
const NumTiles = 9

var tileNames = [...]string{"floor", "wall", "grass", "dirt", "stone", "water", "wood", "sand", "gravel"}

func (t Tile) String() string {
	if int(t) < len(tileNames) {
		return tileNames[t]
	}
	return fmt.Sprintf("Tile(%d)", t)
}

// Valid reports whether t is a declared tile tag.
func (t Tile) Valid() bool {
	return t < NumTiles
}

// Blocking reports whether the tile blocks sight and movement.
func (t Tile) Blocking() bool {
	return t == TileWall
}

// Biome is a named terrain style.
type Biome uint8

const (
	BiomeSwamp Biome = iota
	BiomeCave
	BiomeDungeon
	BiomeForest
	BiomeRuins
)

var biomeNames = [...]string{"swamp", "cave", "dungeon", "forest", "ruins"}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return fmt.Sprintf("Biome(%d)", b)
}

// BiomeStyle is the tile palette of a biome.
type BiomeStyle struct {
	Primary    Tile
	Secondary  Tile
	Decoration Tile
}

var biomeStyles = [...]BiomeStyle{
	BiomeSwamp:   {Primary: TileWater, Secondary: TileGrass, Decoration: TileWood},
	BiomeCave:    {Primary: TileStone, Secondary: TileGravel, Decoration: TileStone},
	BiomeDungeon: {Primary: TileFloor, Secondary: TileStone, Decoration: TileGravel},
	BiomeForest:  {Primary: TileGrass, Secondary: TileDirt, Decoration: TileWood},
	BiomeRuins:   {Primary: TileFloor, Secondary: TileGravel, Decoration: TileSand},
}

// Style returns the tile palette of b.
func (b Biome) Style() BiomeStyle {
	if int(b) < len(biomeStyles) {
		return biomeStyles[b]
	}
	return biomeStyles[BiomeDungeon]
}

// biomeFromValue bands a noise value into a biome.
func biomeFromValue(v float64) Biome {
	switch {
	case v < -0.3:
		return BiomeSwamp
	case v < -0.1:
		return BiomeCave
	case v < 0.1:
		return BiomeDungeon
	case v < 0.3:
		return BiomeForest
	default:
		return BiomeRuins
	}
}

// BiomeField maps world tile coordinates to biomes. It holds no mutable
// state, so the same seed and coordinate always yield the same biome.
type BiomeField struct {
	noise   NoiseSource
	scale   float64
	octaves int
}

// NewBiomeField creates a biome field over the given noise source.
func NewBiomeField(noise NoiseSource, scale float64, octaves int) *BiomeField {
	if octaves < 1 {
		octaves = 1
	}
	return &BiomeField{noise: noise, scale: scale, octaves: octaves}
}

// BiomeAt returns the biome at the given coordinate.
func (f *BiomeField) BiomeAt(x, y float64) Biome {
	return biomeFromValue(Fractal(f.noise, x*f.scale, y*f.scale, f.octaves))
}

// BiomeAt is the one-shot form of BiomeField.BiomeAt using simplex noise
// and the default biome scale.
func BiomeAt(x, y float64, seed int64) Biome {
	return NewBiomeField(NewSimplexNoise(seed), 0.01, 3).BiomeAt(x, y)
}
