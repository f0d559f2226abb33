package game

// TileStore is the persistence the consolidator needs.
type TileStore interface {
	// TilesByUsernameAsc returns a player's tiles oldest first.
	TilesByUsernameAsc(username string) ([]Tile, error)
	DeleteTiles(ids []int64) error
}

// Consolidator removes ground tiles that later tiles have fully painted
// over, bounding trail growth per player.
type Consolidator struct {
	tiles TileStore
}

func NewConsolidator(tiles TileStore) *Consolidator {
	return &Consolidator{tiles: tiles}
}

// Consolidate scans a player's tile trail oldest to newest and deletes every
// tile whose footprint is covered by strictly later tiles. Returns the
// number of tiles removed.
//
// Coverage is an 8-sample-point heuristic: a tile goes iff all 4 corners and
// all 4 edge midpoints of its square land inside the footprint of at least
// one later tile each. Different points may be covered by different tiles.
// The test can miss coverage for irregular overlaps and, with sample points
// exactly on later-tile boundaries, can remove a tile whose interior still
// peeks through; the rendered map tolerates both.
func (c *Consolidator) Consolidate(username string) (int, error) {
	all, err := c.tiles.TilesByUsernameAsc(username)
	if err != nil {
		return 0, err
	}
	if len(all) <= 1 {
		return 0, nil
	}

	marked := make(map[int64]bool)
	var toDelete []int64

	for i, cur := range all {
		if marked[cur.ID] {
			continue
		}
		later := all[i+1:]
		if len(later) == 0 {
			continue
		}
		if coveredBy(cur, later) {
			marked[cur.ID] = true
			toDelete = append(toDelete, cur.ID)
		}
	}

	if len(toDelete) == 0 {
		return 0, nil
	}
	if err := c.tiles.DeleteTiles(toDelete); err != nil {
		return 0, err
	}
	return len(toDelete), nil
}

// coveredBy reports whether every sample point of t lands inside some tile
// in later.
func coveredBy(t Tile, later []Tile) bool {
	for _, pt := range samplePoints(t) {
		covered := false
		for _, l := range later {
			if containsPoint(l, pt[0], pt[1]) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// samplePoints returns the 4 corners and 4 edge midpoints of a tile's
// square footprint.
func samplePoints(t Tile) [8][2]float64 {
	h := t.Size / 2
	return [8][2]float64{
		{t.X - h, t.Z - h},
		{t.X + h, t.Z - h},
		{t.X - h, t.Z + h},
		{t.X + h, t.Z + h},
		{t.X, t.Z - h},
		{t.X, t.Z + h},
		{t.X - h, t.Z},
		{t.X + h, t.Z},
	}
}

// containsPoint tests closed-bounds membership of (x,z) in t's footprint.
func containsPoint(t Tile, x, z float64) bool {
	h := t.Size / 2
	return x >= t.X-h && x <= t.X+h && z >= t.Z-h && z <= t.Z+h
}
