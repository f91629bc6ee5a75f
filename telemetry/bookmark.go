package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkTierShift     BookmarkType = "tier_shift"
	BookmarkCostSpike     BookmarkType = "cost_spike"
	BookmarkCachePressure BookmarkType = "cache_pressure"
	BookmarkBossPhase     BookmarkType = "boss_phase"
	BookmarkLevelCleared  BookmarkType = "level_cleared"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in a run from window stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	lastTier     string
	lastOverCap  bool
	clearedFired bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for the cost spike average
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkTierShift,
		bd.checkCostSpike,
		bd.checkCachePressure,
		bd.checkBossPhase,
		bd.checkLevelCleared,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	bd.lastTier = stats.Tier
	bd.lastOverCap = stats.OverCapacity

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkTierShift(stats WindowStats) *Bookmark {
	if bd.lastTier == "" || stats.Tier == bd.lastTier {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkTierShift,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Tier %s -> %s after %d changes", bd.lastTier, stats.Tier, stats.TierChanges),
	}
}

func (bd *BookmarkDetector) checkCostSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.CostMean
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if stats.CostP90 > avg*2.0 && stats.CostP90 > 1 {
		return &Bookmark{
			Type:        BookmarkCostSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Cost p90 %.2fms is %.1fx average (%.2fms)", stats.CostP90, stats.CostP90/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCachePressure(stats WindowStats) *Bookmark {
	if !stats.OverCapacity || bd.lastOverCap {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkCachePressure,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Required chunks exceed cache capacity (%d loaded)", stats.ChunksLoaded),
	}
}

func (bd *BookmarkDetector) checkBossPhase(stats WindowStats) *Bookmark {
	if stats.BossPhaseChanges == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkBossPhase,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d boss phase change(s) at progress %.0f%%", stats.BossPhaseChanges, stats.Progress*100),
	}
}

func (bd *BookmarkDetector) checkLevelCleared(stats WindowStats) *Bookmark {
	if bd.clearedFired || stats.Actors > 0 || stats.Progress < 1 {
		return nil
	}
	bd.clearedFired = true
	return &Bookmark{
		Type:        BookmarkLevelCleared,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Level cleared with %d kills in the final window", stats.Kills),
	}
}
