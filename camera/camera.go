// Package camera provides a 2D follow camera that supplies the viewpoint and
// viewport for terrain streaming and LOD.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Camera controls the viewport into a bounded world.
type Camera struct {
	// Pos is the camera center in world coordinates
	Pos r2.Vec

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// World dimensions; the view is kept inside them
	WorldW, WorldH float64

	// Zoom constraints
	MinZoom, MaxZoom float64

	// Follow smoothing in (0,1]; 1 snaps to the target
	Smoothing float64
}

// New creates a camera centered on the world with 1:1 zoom.
func New(viewportW, viewportH, worldW, worldH float64) *Camera {
	c := &Camera{
		Pos:       r2.Vec{X: worldW / 2, Y: worldH / 2},
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   4.0,
		Smoothing: 0.1,
	}
	c.MinZoom = c.minZoom()
	return c
}

// minZoom keeps the visible area from exceeding the world.
// At zoom Z the visible area is (viewportW/Z, viewportH/Z).
func (c *Camera) minZoom() float64 {
	return math.Max(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
}

// Viewpoint returns the camera center.
func (c *Camera) Viewpoint() r2.Vec {
	return c.Pos
}

// ViewSize returns the visible area in world units.
func (c *Camera) ViewSize() (w, h float64) {
	return c.ViewportW / c.Zoom, c.ViewportH / c.Zoom
}

// Follow moves the camera toward target by the smoothing factor and keeps
// the view inside the world.
func (c *Camera) Follow(target r2.Vec) {
	s := c.Smoothing
	if s <= 0 || s > 1 {
		s = 1
	}
	c.Pos = r2.Add(c.Pos, r2.Scale(s, r2.Sub(target, c.Pos)))
	c.clampToWorld()
}

// clampToWorld keeps the visible area inside the world bounds.
func (c *Camera) clampToWorld() {
	w, h := c.ViewSize()
	c.Pos.X = clampAxis(c.Pos.X, w/2, c.WorldW)
	c.Pos.Y = clampAxis(c.Pos.Y, h/2, c.WorldH)
}

// clampAxis restricts a center coordinate to [half, size-half], or centers it
// when the view is wider than the world.
func clampAxis(v, half, size float64) float64 {
	if 2*half >= size {
		return size / 2
	}
	return math.Min(math.Max(v, half), size-half)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(w r2.Vec) r2.Vec {
	d := r2.Sub(w, c.Pos)
	return r2.Vec{
		X: c.ViewportW/2 + d.X*c.Zoom,
		Y: c.ViewportH/2 + d.Y*c.Zoom,
	}
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(s r2.Vec) r2.Vec {
	return r2.Vec{
		X: c.Pos.X + (s.X-c.ViewportW/2)/c.Zoom,
		Y: c.Pos.Y + (s.Y-c.ViewportH/2)/c.Zoom,
	}
}

// IsVisible returns true if a circle at p with the given radius could be
// visible on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	d := r2.Sub(p, c.Pos)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return math.Abs(d.X) <= halfW && math.Abs(d.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float64) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.minZoom()
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	c.clampToWorld()
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float64) {
	c.Pos.X += dx / c.Zoom
	c.Pos.Y += dy / c.Zoom
	c.clampToWorld()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = math.Min(math.Max(zoom, c.MinZoom), c.MaxZoom)
	c.clampToWorld()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.Pos = r2.Vec{X: c.WorldW / 2, Y: c.WorldH / 2}
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float64) {
	w, h := c.ViewSize()
	return c.Pos.X - w/2, c.Pos.Y - h/2, c.Pos.X + w/2, c.Pos.Y + h/2
}
