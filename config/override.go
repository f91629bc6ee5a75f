package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ApplyOverrides applies a flat option map (dotted YAML path -> number)
// on top of the loaded configuration, e.g. {"lod.sleep_distance": 250}.
// Unknown keys are rejected. Derived values are recomputed and the result
// is validated.
func (c *Config) ApplyOverrides(overrides map[string]float64) error {
	if len(overrides) == 0 {
		return nil
	}

	tree := make(map[string]any)
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		node := tree
		for i, part := range parts {
			if part == "" {
				return fmt.Errorf("override %q: empty path segment", key)
			}
			if i == len(parts)-1 {
				node[part] = yamlNumber(overrides[key])
				break
			}
			child, ok := node[part].(map[string]any)
			if !ok {
				if _, leaf := node[part]; leaf {
					return fmt.Errorf("override %q: conflicts with another key", key)
				}
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
	}

	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("marshaling overrides: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("applying overrides: %w", err)
	}

	c.computeDerived()
	return c.Validate()
}

// yamlNumber keeps integral values integral so they decode into int fields.
func yamlNumber(v float64) any {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}

// ParseOverride parses a "key=value" flag argument.
func ParseOverride(s string) (string, float64, error) {
	key, raw, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, fmt.Errorf("override %q: expected key=value", s)
	}
	key = strings.TrimSpace(key)
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("override %q: %w", s, err)
	}
	return key, v, nil
}

// Overrides collects repeated -set flags into a flat option map.
// It implements flag.Value.
type Overrides map[string]float64

func (o Overrides) String() string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + strconv.FormatFloat(o[k], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (o Overrides) Set(s string) error {
	k, v, err := ParseOverride(s)
	if err != nil {
		return err
	}
	o[k] = v
	return nil
}

// Validate checks cross-field constraints. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Terrain.ChunkSize > 0, "terrain.chunk_size must be positive, got %d", c.Terrain.ChunkSize)
	check(c.Terrain.TileSize > 0, "terrain.tile_size must be positive, got %v", c.Terrain.TileSize)
	check(c.Terrain.CacheCapacity > 0, "terrain.cache_capacity must be positive, got %d", c.Terrain.CacheCapacity)
	check(c.Terrain.SmoothingPasses >= 0, "terrain.smoothing_passes must not be negative")
	check(c.Terrain.Noise == NoiseSimplex || c.Terrain.Noise == NoisePerlin,
		"terrain.noise must be %q or %q, got %q", NoiseSimplex, NoisePerlin, c.Terrain.Noise)
	check(c.Terrain.DecorationDensity >= 0 && c.Terrain.DecorationDensity <= 1,
		"terrain.decoration_density must be in [0,1], got %v", c.Terrain.DecorationDensity)
	check(c.Biome.Octaves > 0, "biome.octaves must be positive, got %d", c.Biome.Octaves)
	check(c.Governor.Window > 0, "governor.window must be positive, got %d", c.Governor.Window)
	check(c.Governor.Cooldown >= 0, "governor.cooldown must not be negative")
	check(c.LOD.MaxActive >= 0, "lod.max_active must not be negative")
	check(c.LOD.SleepDistance <= c.LOD.CullDistance,
		"lod.sleep_distance (%v) must not exceed lod.cull_distance (%v)", c.LOD.SleepDistance, c.LOD.CullDistance)
	check(c.Visibility.Step > 0, "visibility.step must be positive, got %v", c.Visibility.Step)
	check(c.Visibility.Interval >= 1, "visibility.interval must be at least 1, got %d", c.Visibility.Interval)
	check(c.Actor.PredictionMin >= 0 && c.Actor.PredictionMax <= 1 && c.Actor.PredictionMin <= c.Actor.PredictionMax,
		"actor.prediction_min/max must satisfy 0 <= min <= max <= 1")
	check(c.Actor.WanderMinTicks > 0 && c.Actor.WanderMinTicks <= c.Actor.WanderMaxTicks,
		"actor.wander_min_ticks must be positive and not exceed wander_max_ticks")

	var total float64
	for _, w := range c.Derived.TypeWeights {
		check(w >= 0, "types: negative spawn weight %v", w)
		total += w
	}
	check(total > 0, "types: spawn weights must not all be zero")

	return errors.Join(errs...)
}

// Noise provider names accepted by terrain.noise.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
)
