package game

import "testing"

func TestQuadrantOf(t *testing.T) {
	cases := []struct {
		x, z float64
		want int
	}{
		{10, 10, 1},
		{-10, 10, 2},
		{-10, -10, 3},
		{10, -10, 4},
		{0.001, 0.001, 1},
		{-480, 480, 2},
		// Axis points resolve by the sign rule even though the spawner
		// never produces them.
		{0, 0, 1},
		{0, -5, 4},
		{-5, 0, 4},
	}
	for _, c := range cases {
		if got := QuadrantOf(Position{X: c.x, Z: c.z}); got != c.want {
			t.Errorf("QuadrantOf(%v,%v) = %d, want %d", c.x, c.z, got, c.want)
		}
	}
}

func TestDefaultCube(t *testing.T) {
	c := DefaultCube("alice")
	if c.Username != "alice" {
		t.Errorf("username = %q", c.Username)
	}
	if c.Position != (Position{X: 0, Y: 5, Z: 0}) {
		t.Errorf("position = %+v", c.Position)
	}
	if c.CameraPosition != (Position{X: 0, Y: 35, Z: 50}) {
		t.Errorf("camera = %+v", c.CameraPosition)
	}
	if c.Color != "#FFFFFF" || c.Size != 10 {
		t.Errorf("appearance = %q/%v", c.Color, c.Size)
	}
}
