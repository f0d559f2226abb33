package game

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeClockStore struct {
	cubes   map[string]*PlayerCube
	failFor map[string]bool
	saves   int
}

func newFakeClockStore() *fakeClockStore {
	return &fakeClockStore{cubes: make(map[string]*PlayerCube), failFor: make(map[string]bool)}
}

func (f *fakeClockStore) CubeByUsername(username string) (*PlayerCube, error) {
	c, ok := f.cubes[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClockStore) SaveCube(c *PlayerCube) error {
	cp := *c
	f.cubes[c.Username] = &cp
	return nil
}

func (f *fakeClockStore) ActiveCubes() ([]*PlayerCube, error) {
	var out []*PlayerCube
	for _, c := range f.cubes {
		if !c.Paused {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeClockStore) UpdateClock(c *PlayerCube) error {
	if f.failFor[c.Username] {
		return errors.New("disk on fire")
	}
	cur, ok := f.cubes[c.Username]
	if !ok {
		return ErrNotFound
	}
	cur.TotalSeconds = c.TotalSeconds
	cur.RemainingSeconds = c.RemainingSeconds
	cur.TimeExpired = c.TimeExpired
	cur.Paused = c.Paused
	f.saves++
	return nil
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestClockCountdownAndExpiry(t *testing.T) {
	fs := newFakeClockStore()
	clock := NewClock(fs, testLogger())
	if err := clock.Initialize("alice", 1); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	for i := 0; i < 60; i++ {
		clock.Tick()
	}

	cube := fs.cubes["alice"]
	if cube.RemainingSeconds != 0 {
		t.Fatalf("remaining = %d, want 0", cube.RemainingSeconds)
	}
	if !cube.TimeExpired {
		t.Fatal("session should be expired after 60 ticks")
	}

	// Further ticks are no-ops.
	clock.Tick()
	clock.Tick()
	cube = fs.cubes["alice"]
	if cube.RemainingSeconds != 0 || !cube.TimeExpired {
		t.Fatalf("expired session must stay at 0/expired, got %d/%v",
			cube.RemainingSeconds, cube.TimeExpired)
	}
}

func TestClockPauseFreezesTime(t *testing.T) {
	fs := newFakeClockStore()
	clock := NewClock(fs, testLogger())
	if err := clock.Initialize("alice", 1); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := clock.Pause("alice"); err != nil {
		t.Fatalf("Pause: %v", err)
	}

	clock.Tick()
	clock.Tick()
	if got := fs.cubes["alice"].RemainingSeconds; got != 60 {
		t.Fatalf("paused session lost time: remaining = %d, want 60", got)
	}

	if err := clock.Resume("alice"); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	clock.Tick()
	if got := fs.cubes["alice"].RemainingSeconds; got != 59 {
		t.Fatalf("resumed session should tick: remaining = %d, want 59", got)
	}
}

func TestClockReinitializeClearsExpired(t *testing.T) {
	fs := newFakeClockStore()
	clock := NewClock(fs, testLogger())
	if err := clock.Initialize("alice", 1); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	for i := 0; i < 60; i++ {
		clock.Tick()
	}
	if !fs.cubes["alice"].TimeExpired {
		t.Fatal("precondition: session expired")
	}

	if err := clock.Initialize("alice", 2); err != nil {
		t.Fatalf("reinitialize: %v", err)
	}
	cube := fs.cubes["alice"]
	if cube.TimeExpired {
		t.Fatal("reinitialize must clear the expired flag")
	}
	if cube.RemainingSeconds != 120 || cube.TotalSeconds != 120 {
		t.Fatalf("reinitialize set %d/%d, want 120/120", cube.RemainingSeconds, cube.TotalSeconds)
	}
}

func TestClockTickIsolatesSaveFailures(t *testing.T) {
	fs := newFakeClockStore()
	clock := NewClock(fs, testLogger())
	for _, name := range []string{"alice", "bob", "carol"} {
		if err := clock.Initialize(name, 1); err != nil {
			t.Fatalf("Initialize %s: %v", name, err)
		}
	}
	fs.failFor["bob"] = true

	clock.Tick()

	if got := fs.cubes["alice"].RemainingSeconds; got != 59 {
		t.Errorf("alice remaining = %d, want 59", got)
	}
	if got := fs.cubes["carol"].RemainingSeconds; got != 59 {
		t.Errorf("carol remaining = %d, want 59", got)
	}
	if got := fs.cubes["bob"].RemainingSeconds; got != 60 {
		t.Errorf("bob's failed save should leave stored state at 60, got %d", got)
	}
}

func TestClockInitializeRejectsBadMinutes(t *testing.T) {
	clock := NewClock(newFakeClockStore(), testLogger())
	if err := clock.Initialize("alice", 0); !IsValidation(err) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestFormatTime(t *testing.T) {
	cases := []struct {
		secs int64
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{3599, "59:59"},
	}
	for _, c := range cases {
		if got := FormatTime(c.secs); got != c.want {
			t.Errorf("FormatTime(%d) = %q, want %q", c.secs, got, c.want)
		}
	}
}
