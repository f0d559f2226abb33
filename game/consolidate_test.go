package game

import (
	"testing"
)

type fakeTileStore struct {
	tiles   []Tile
	nextID  int64
	loadErr error
}

func (f *fakeTileStore) add(x, z, size float64) Tile {
	f.nextID++
	t := Tile{ID: f.nextID, Username: "alice", X: x, Z: z, Size: size, Color: "#FF0000"}
	f.tiles = append(f.tiles, t)
	return t
}

func (f *fakeTileStore) TilesByUsernameAsc(username string) ([]Tile, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	out := make([]Tile, len(f.tiles))
	copy(out, f.tiles)
	return out, nil
}

func (f *fakeTileStore) DeleteTiles(ids []int64) error {
	dead := make(map[int64]bool, len(ids))
	for _, id := range ids {
		dead[id] = true
	}
	var kept []Tile
	for _, t := range f.tiles {
		if !dead[t.ID] {
			kept = append(kept, t)
		}
	}
	f.tiles = kept
	return nil
}

func TestConsolidateIdenticalOverlay(t *testing.T) {
	fs := &fakeTileStore{}
	fs.add(0, 0, 10)
	b := fs.add(0, 0, 10)

	removed, err := NewConsolidator(fs).Consolidate("alice")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(fs.tiles) != 1 || fs.tiles[0].ID != b.ID {
		t.Fatalf("expected only tile %d to survive, have %+v", b.ID, fs.tiles)
	}
}

func TestConsolidatePartialOverlapKeepsBoth(t *testing.T) {
	fs := &fakeTileStore{}
	fs.add(0, 0, 10)
	fs.add(5, 0, 10) // covers A's right half only

	removed, err := NewConsolidator(fs).Consolidate("alice")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if len(fs.tiles) != 2 {
		t.Fatalf("expected both tiles kept, have %d", len(fs.tiles))
	}
}

func TestConsolidateUnionCoverage(t *testing.T) {
	// No single later tile covers the first one, but the union of four
	// quarter-offset tiles covers all 8 sample points.
	fs := &fakeTileStore{}
	first := fs.add(0, 0, 10)
	fs.add(5, 5, 10)
	fs.add(-5, 5, 10)
	fs.add(-5, -5, 10)
	fs.add(5, -5, 10)

	removed, err := NewConsolidator(fs).Consolidate("alice")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	for _, tile := range fs.tiles {
		if tile.ID == first.ID {
			t.Fatal("first tile should have been removed")
		}
	}
}

func TestConsolidateOrderMatters(t *testing.T) {
	// The covering tile is OLDER than the covered one, so nothing goes:
	// only strictly later tiles count.
	fs := &fakeTileStore{}
	fs.add(0, 0, 20)
	fs.add(0, 0, 10)

	removed, err := NewConsolidator(fs).Consolidate("alice")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
}

func TestConsolidateSmallerLaterTileRemovesContained(t *testing.T) {
	// A later BIGGER tile fully contains the older smaller one.
	fs := &fakeTileStore{}
	fs.add(0, 0, 10)
	fs.add(0, 0, 20)

	removed, err := NewConsolidator(fs).Consolidate("alice")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}

func TestConsolidateIdempotent(t *testing.T) {
	fs := &fakeTileStore{}
	fs.add(0, 0, 10)
	fs.add(0, 0, 10)
	fs.add(7, 0, 4)

	c := NewConsolidator(fs)
	if _, err := c.Consolidate("alice"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	after := len(fs.tiles)

	removed, err := c.Consolidate("alice")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if removed != 0 {
		t.Fatalf("second run removed %d tiles, want 0", removed)
	}
	if len(fs.tiles) != after {
		t.Fatalf("tile count changed between runs: %d -> %d", after, len(fs.tiles))
	}
}

func TestConsolidateSingleTileNoop(t *testing.T) {
	fs := &fakeTileStore{}
	fs.add(0, 0, 10)

	removed, err := NewConsolidator(fs).Consolidate("alice")
	if err != nil {
		t.Fatalf("Consolidate: %v", err)
	}
	if removed != 0 || len(fs.tiles) != 1 {
		t.Fatalf("single tile must be untouched, removed=%d len=%d", removed, len(fs.tiles))
	}
}

func TestContainsPointClosedBounds(t *testing.T) {
	tile := Tile{X: 0, Z: 0, Size: 10}
	if !containsPoint(tile, 5, 5) {
		t.Error("boundary corner should be contained (closed bounds)")
	}
	if !containsPoint(tile, -5, 0) {
		t.Error("boundary edge should be contained")
	}
	if containsPoint(tile, 5.0001, 0) {
		t.Error("point outside must not be contained")
	}
}
