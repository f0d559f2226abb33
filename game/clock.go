package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ClockStore is the persistence the game clock needs.
type ClockStore interface {
	CubeByUsername(username string) (*PlayerCube, error)
	SaveCube(c *PlayerCube) error
	// ActiveCubes returns every cube that is not paused.
	ActiveCubes() ([]*PlayerCube, error)
	// UpdateClock persists only the clock fields of a cube.
	UpdateClock(c *PlayerCube) error
}

// Clock counts down the remaining game time of every active player once per
// second.
type Clock struct {
	store ClockStore
	log   *zap.SugaredLogger
}

func NewClock(store ClockStore, log *zap.SugaredLogger) *Clock {
	return &Clock{store: store, log: log}
}

// Run ticks until ctx is cancelled.
func (c *Clock) Run(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Tick()
		}
	}
}

// Tick decrements remaining time for every unpaused, unexpired session and
// marks sessions whose time ran out. A persistence failure for one session
// is logged and does not abort the rest of the batch.
func (c *Clock) Tick() {
	cubes, err := c.store.ActiveCubes()
	if err != nil {
		c.log.Warnf("clock: load active sessions: %v", err)
		return
	}
	for _, cube := range cubes {
		if cube.TimeExpired || cube.Paused || cube.RemainingSeconds <= 0 {
			continue
		}
		cube.RemainingSeconds--
		if cube.RemainingSeconds <= 0 {
			cube.TimeExpired = true
		}
		if err := c.store.UpdateClock(cube); err != nil {
			c.log.Warnf("clock: save time for %s: %v", cube.Username, err)
		}
	}
}

// Initialize resets a player's clock to minutes of play and clears the
// expired flag.
func (c *Clock) Initialize(username string, minutes int) error {
	if minutes <= 0 {
		return Validationf("game minutes must be positive")
	}
	cube, err := c.loadOrCreate(username)
	if err != nil {
		return err
	}
	cube.TotalSeconds = int64(minutes) * 60
	cube.RemainingSeconds = cube.TotalSeconds
	cube.TimeExpired = false
	return c.store.UpdateClock(cube)
}

// Pause stops the countdown without touching remaining time.
func (c *Clock) Pause(username string) error {
	return c.setPaused(username, true)
}

// Resume restarts the countdown.
func (c *Clock) Resume(username string) error {
	return c.setPaused(username, false)
}

func (c *Clock) setPaused(username string, paused bool) error {
	cube, err := c.loadOrCreate(username)
	if err != nil {
		return err
	}
	cube.Paused = paused
	return c.store.UpdateClock(cube)
}

// RemainingTime returns the player's remaining seconds.
func (c *Clock) RemainingTime(username string) (int64, error) {
	cube, err := c.loadOrCreate(username)
	if err != nil {
		return 0, err
	}
	return cube.RemainingSeconds, nil
}

func (c *Clock) loadOrCreate(username string) (*PlayerCube, error) {
	return LoadOrCreateCube(c.store, username)
}

// LoadOrCreateCube fetches a player's cube, persisting the default one on
// first access.
func LoadOrCreateCube(store ClockStore, username string) (*PlayerCube, error) {
	cube, err := store.CubeByUsername(username)
	if errors.Is(err, ErrNotFound) {
		cube = DefaultCube(username)
		if err := store.SaveCube(cube); err != nil {
			return nil, err
		}
		return cube, nil
	}
	return cube, err
}

// FormatTime renders seconds as MM:SS for display.
func FormatTime(seconds int64) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
