package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:      SnapshotVersion,
		RNGSeed:      42,
		WorldWidth:   6400,
		WorldHeight:  6400,
		Tick:         1000,
		Tier:         "medium",
		Progress:     0.5,
		Viewpoint:    [2]float64{3200, 3100},
		ChunksLoaded: 12,
		Actors: []ActorState{
			{ID: 1, Type: "grunt", X: 150, Y: 250, VelX: 0.5, VelY: -0.3, Health: 40, MaxHealth: 100, State: "chasing", LOD: "active"},
			{ID: 2, Type: "boss", X: 3000, Y: 3000, Health: 900, MaxHealth: 1000, State: "attacking", LOD: "culled", Group: 3, Role: "leader", BossPhase: 1},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkBossPhase,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Tick != snapshot.Tick || loaded.Tier != snapshot.Tier {
		t.Errorf("header mismatch: got tick %d tier %s", loaded.Tick, loaded.Tier)
	}
	if len(loaded.Actors) != 2 {
		t.Fatalf("Actors count mismatch: got %d, want 2", len(loaded.Actors))
	}
	if loaded.Actors[1] != snapshot.Actors[1] {
		t.Errorf("actor mismatch: got %+v, want %+v", loaded.Actors[1], snapshot.Actors[1])
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkBossPhase {
		t.Errorf("Bookmark not loaded: %+v", loaded.Bookmark)
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		bookmark *Bookmark
		want     string
	}{
		{"plain", nil, "snapshot_5000.json"},
		{"bookmark", &Bookmark{Type: BookmarkLevelCleared, Tick: 5000}, "snapshot_5000_level_cleared.json"},
	}
	for _, tt := range tests {
		path, err := SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 5000, Bookmark: tt.bookmark}, tmpDir)
		if err != nil {
			t.Fatalf("%s: SaveSnapshot failed: %v", tt.name, err)
		}
		if want := filepath.Join(tmpDir, tt.want); path != want {
			t.Errorf("%s: path = %s, want %s", tt.name, path, want)
		}
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown version")
	}
}
