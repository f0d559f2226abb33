package game

// Position is a point in world space. Ground tiles only use X and Z.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlayerCube is a player's cube plus their game-clock state. One row per
// username, created lazily on first access.
type PlayerCube struct {
	ID             int64    `json:"id"`
	Username       string   `json:"username"`
	Position       Position `json:"position"`
	CameraPosition Position `json:"cameraPosition"`
	Color          string   `json:"color"`
	Size           float64  `json:"size"`
	RenderOrder    int      `json:"renderOrder"`

	TotalSeconds     int64 `json:"totalGameSeconds"`
	RemainingSeconds int64 `json:"remainingSeconds"`
	TimeExpired      bool  `json:"timeExpired"`
	Paused           bool  `json:"paused"`
}

// DefaultCube is the state handed to a player with no saved cube yet.
func DefaultCube(username string) *PlayerCube {
	return &PlayerCube{
		Username:       username,
		Position:       Position{X: 0, Y: 5, Z: 0},
		CameraPosition: Position{X: 0, Y: 35, Z: 50},
		Color:          "#FFFFFF",
		Size:           10,
	}
}

// Tile is one square of the ground trail a cube leaves behind. Tiles are
// append-only; the insertion id doubles as recency order.
type Tile struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	X           float64 `json:"x"`
	Z           float64 `json:"z"`
	Color       string  `json:"color"`
	Size        float64 `json:"size"`
	RenderOrder int     `json:"renderOrder"`
}

// Prop is a collectible cube spawned into the shared world. At most one live
// prop per quadrant exists across all players; the store's unique index on
// the quadrant column enforces that.
type Prop struct {
	ID            int64    `json:"id"`
	Position      Position `json:"position"`
	Color         string   `json:"color"`
	Size          float64  `json:"size"`
	RotationSpeed float64  `json:"rotationSpeed"`
	Quadrant      int      `json:"index"`
	Username      string   `json:"username"`
}

// QuadrantOf maps a position to its planar quadrant by coordinate sign.
func QuadrantOf(p Position) int {
	switch {
	case p.X >= 0 && p.Z >= 0:
		return 1
	case p.X < 0 && p.Z > 0:
		return 2
	case p.X < 0 && p.Z < 0:
		return 3
	default:
		return 4
	}
}
