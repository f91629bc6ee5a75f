package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/horde/systems"
	"github.com/pthm-cable/horde/telemetry"
)

// HUDData holds all the data needed to render the status panel.
type HUDData struct {
	Tick         int64
	Paused       bool
	Tier         systems.Tier
	Forced       bool
	AvgCostMS    float64
	Actors       int
	Progress     float64
	LOD          systems.LODCounts
	Stream       systems.StreamStats
	TargetHealth float64
	TargetMax    float64
	Projectiles  int
}

// HUD renders the simulation status panel.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a status panel at the given position.
func NewHUD(x, y, width int32) *HUD {
	return &HUD{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (h *HUD) SetPosition(x, y int32) {
	h.x = x
	h.y = y
}

// Draw renders the panel and returns the Y below it.
func (h *HUD) Draw(data HUDData) int32 {
	r := h.renderer
	x := h.x + r.Theme.Padding
	y := h.y + r.Theme.Padding
	w := h.width - 2*r.Theme.Padding

	status := "running"
	if data.Paused {
		status = "PAUSED"
	}
	tier := data.Tier.String()
	if data.Forced {
		tier += " (forced)"
	}

	y = r.DrawSectionHeader(x, y, "Simulation")
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d %s", data.Tick, status))
	y = r.DrawLabelValue(x, y, "Tier", tier)
	y = r.DrawLabelValue(x, y, "Avg cost", fmt.Sprintf("%.2f ms", data.AvgCostMS))
	y = r.DrawLabelValue(x, y, "Actors", fmt.Sprintf("%d", data.Actors))
	y = r.DrawBar(x, y, "Progress", data.Progress, w)
	y = r.DrawSpacer(y, 4)

	y = r.DrawSectionHeader(x, y, "LOD")
	y = r.DrawLabelValue(x, y, "Active", fmt.Sprintf("%d (%d updated)", data.LOD.Active, data.LOD.Updated))
	y = r.DrawLabelValue(x, y, "Sleeping", fmt.Sprintf("%d", data.LOD.Sleeping))
	y = r.DrawLabelValue(x, y, "Culled", fmt.Sprintf("%d", data.LOD.Culled))
	y = r.DrawSpacer(y, 4)

	y = r.DrawSectionHeader(x, y, "Terrain")
	y = r.DrawLabelValue(x, y, "Chunks", fmt.Sprintf("%d loaded / %d required", data.Stream.Loaded, data.Stream.Required))
	if data.Stream.OverCapacity {
		rl.DrawText("cache over capacity", x, y, r.Theme.FontSize, r.Theme.BarFillLow)
		y += r.Theme.LineHeight
	}
	y = r.DrawSpacer(y, 4)

	y = r.DrawSectionHeader(x, y, "Target")
	y = r.DrawHealthBar(x, y, "Health", data.TargetHealth, data.TargetMax, w)
	y = r.DrawLabelValue(x, y, "Projectiles", fmt.Sprintf("%d", data.Projectiles))

	return y + r.Theme.Padding
}

// PerfPanel renders tick phase timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x + p.renderer.Theme.Padding
	y := p.y

	y = p.renderer.DrawSectionHeader(x, y, "Tick phases")

	rl.DrawText(fmt.Sprintf("Avg: %s  FPS: %.0f", stats.AvgTickDuration.Round(time.Microsecond), stats.FPS),
		x, y, 12, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
