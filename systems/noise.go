package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/horde/config"
)

// NoiseSource is a seeded 2D coherent noise function returning values in
// roughly [-1, 1]. Implementations must be safe for concurrent reads.
type NoiseSource interface {
	Eval2(x, y float64) float64
}

// NewNoiseSource returns the noise provider named by kind.
func NewNoiseSource(kind string, seed int64) (NoiseSource, error) {
	switch kind {
	case config.NoiseSimplex, "":
		return NewSimplexNoise(seed), nil
	case config.NoisePerlin:
		return NewPerlinNoise(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise source %q", kind)
	}
}

// SimplexNoise wraps OpenSimplex noise.
type SimplexNoise struct {
	n opensimplex.Noise
}

// NewSimplexNoise creates a simplex noise generator.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{n: opensimplex.New(seed)}
}

// Eval2 returns a noise value in [-1, 1].
func (s *SimplexNoise) Eval2(x, y float64) float64 {
	return s.n.Eval2(x, y)
}

// Fractal sums octaves of src with lacunarity 2 and gain 0.5, normalized
// back to the source range.
func Fractal(src NoiseSource, x, y float64, octaves int) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, norm float64
	freq, amp := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += src.Eval2(x*freq, y*freq) * amp
		norm += amp
		freq *= 2
		amp *= 0.5
	}
	return sum / norm
}

// PerlinNoise is 2D gradient noise over a seeded permutation table.
type PerlinNoise struct {
	perm [512]uint8
}

// perlinGrads are the corner gradients, picked by hash.
var perlinGrads = [8]struct{ x, y float64 }{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

// NewPerlinNoise creates a Perlin noise generator.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{}
	for i, v := range rand.New(rand.NewSource(seed)).Perm(256) {
		p.perm[i] = uint8(v)
		p.perm[i+256] = uint8(v)
	}
	return p
}

// Eval2 implements NoiseSource. Values are zero on integer lattice points.
func (p *PerlinNoise) Eval2(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	cx, cy := int(x0)&255, int(y0)&255
	fx, fy := x-x0, y-y0
	u, v := fade(fx), fade(fy)

	n00 := p.corner(cx, cy, fx, fy)
	n10 := p.corner(cx+1, cy, fx-1, fy)
	n01 := p.corner(cx, cy+1, fx, fy-1)
	n11 := p.corner(cx+1, cy+1, fx-1, fy-1)
	return lerp(v, lerp(u, n00, n10), lerp(u, n01, n11))
}

// corner dots the hashed gradient at lattice cell (cx, cy) with the offset
// (dx, dy) from that corner.
func (p *PerlinNoise) corner(cx, cy int, dx, dy float64) float64 {
	g := perlinGrads[p.perm[int(p.perm[cx])+cy]&7]
	return g.x*dx + g.y*dy
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}
