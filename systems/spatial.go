// Package systems provides the simulation systems: terrain streaming, visibility,
// waypoint planning, actor behavior, and level-of-detail control.
package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/horde/components"
)

// Neighbor holds a nearby actor with its offset from the query origin.
type Neighbor struct {
	E      ecs.Entity
	Delta  r2.Vec // Neighbor position minus query origin
	DistSq float64
}

// SpatialGrid provides neighbor lookups over a bounded world. Positions
// outside the bounds are clamped into the border cells.
type SpatialGrid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float64) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity to the grid at the given position.
func (g *SpatialGrid) Insert(e ecs.Entity, p r2.Vec) {
	col, row := g.cell(p)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], e)
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
const MaxQueryResults = 64

// QueryRadiusInto appends entities within radius of p to dst, up to
// MaxQueryResults. Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, p r2.Vec, radius float64, exclude ecs.Entity, posMap *ecs.Map1[components.Position]) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1
	centerCol, centerRow := g.cell(p)
	radiusSq := radius * radius

	for row := max(0, centerRow-cellRadius); row <= min(g.rows-1, centerRow+cellRadius); row++ {
		for col := max(0, centerCol-cellRadius); col <= min(g.cols-1, centerCol+cellRadius); col++ {
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				pos := posMap.Get(e)
				if pos == nil {
					continue
				}
				delta := r2.Sub(pos.Vec(), p)
				distSq := delta.X*delta.X + delta.Y*delta.Y
				if distSq <= radiusSq {
					dst = append(dst, Neighbor{E: e, Delta: delta, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}
	return dst
}

// cell returns the clamped cell of a world position.
func (g *SpatialGrid) cell(p r2.Vec) (col, row int) {
	col = int(p.X / g.cellSize)
	row = int(p.Y / g.cellSize)
	col = min(max(col, 0), g.cols-1)
	row = min(max(row, 0), g.rows-1)
	return col, row
}

// Separation returns a push away from neighbors closer than minDist,
// scaled by overlap. Coincident neighbors contribute nothing.
func Separation(neighbors []Neighbor, minDist float64) r2.Vec {
	var push r2.Vec
	for _, n := range neighbors {
		if n.DistSq >= minDist*minDist {
			continue
		}
		dir, ok := unit(n.Delta)
		if !ok {
			continue
		}
		d := r2.Norm(n.Delta)
		push = r2.Sub(push, r2.Scale((minDist-d)/minDist, dir))
	}
	return push
}
