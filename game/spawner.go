package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// World bounds for spawned props: magnitude on each axis is drawn from
// [50,480). Matches the playfield the client renders.
const (
	spawnMinCoord  = 50
	spawnCoordSpan = 431
)

// PropStore is the persistence the spawner needs. InsertProp must return
// ErrQuadrantTaken when the quadrant's unique index rejects the row.
type PropStore interface {
	QuadrantOccupied(quadrant int) (bool, error)
	InsertProp(p *Prop) error
	PropsByUsername(username string) ([]Prop, error)
	PropByQuadrant(quadrant int) (*Prop, error)
	DeleteProp(id int64) (bool, error)
}

type spawnTimer struct {
	interval  time.Duration
	lastCheck time.Time
}

// Spawner drops collectible props into the world on a randomized per-player
// cadence. It is driven entirely by cube saves; idle players never trigger
// spawns.
type Spawner struct {
	props  PropStore
	log    *zap.SugaredLogger
	notify func(*Prop)

	minInterval time.Duration
	maxInterval time.Duration
	now         func() time.Time

	mu     sync.Mutex
	timers map[string]*spawnTimer
}

// NewSpawner builds a spawner drawing intervals in [min,max]. notify is
// called after each successful spawn (nil is allowed).
func NewSpawner(props PropStore, min, max time.Duration, log *zap.SugaredLogger, notify func(*Prop)) *Spawner {
	return &Spawner{
		props:       props,
		log:         log,
		notify:      notify,
		minInterval: min,
		maxInterval: max,
		now:         time.Now,
		timers:      make(map[string]*spawnTimer),
	}
}

// OnCubeSave is the spawn-check hook, called once per cube save. The first
// call for a player only arms their timer. Later calls spawn a prop when the
// interval has elapsed and a free quadrant exists, then re-arm the timer
// with a fresh random interval either way.
//
// The mutex only keeps the timer map safe; the check-then-reset on a single
// player's timer is not serialized against concurrent saves by that player.
// Two racing saves can both see the timer due, which at worst fires one
// spawn check slightly early; the quadrant unique index absorbs the double
// insert.
func (s *Spawner) OnCubeSave(username string, cubePos Position, cubeSize float64) error {
	now := s.now()

	s.mu.Lock()
	st, ok := s.timers[username]
	if !ok {
		s.timers[username] = &spawnTimer{interval: s.randomInterval(), lastCheck: now}
		s.mu.Unlock()
		return nil
	}
	interval, last := st.interval, st.lastCheck
	s.mu.Unlock()

	if now.Sub(last) < interval {
		return nil
	}

	err := s.spawn(username, cubePos, cubeSize)

	// A skipped or failed spawn still consumes the interval.
	s.mu.Lock()
	st.interval = s.randomInterval()
	st.lastCheck = now
	s.mu.Unlock()

	return err
}

func (s *Spawner) spawn(username string, cubePos Position, cubeSize float64) error {
	userQuadrant := QuadrantOf(cubePos)

	var candidates []int
	for q := 1; q <= 4; q++ {
		if q == userQuadrant {
			continue
		}
		occupied, err := s.props.QuadrantOccupied(q)
		if err != nil {
			return err
		}
		if !occupied {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	quadrant := candidates[rand.Intn(len(candidates))]
	pos := randomPropPosition(quadrant)
	pos.Y = cubeSize / 2

	prop := &Prop{
		Position:      pos,
		Color:         randomColor(),
		Size:          cubeSize / 2,
		RotationSpeed: randomRotationSpeed(),
		Quadrant:      quadrant,
		Username:      username,
	}
	if err := validateProp(prop); err != nil {
		return err
	}

	if err := s.props.InsertProp(prop); err != nil {
		if errors.Is(err, ErrQuadrantTaken) {
			// Lost the race for the quadrant; treat as a skipped spawn.
			s.log.Infof("spawner: quadrant %d taken, skipping spawn for %s", quadrant, username)
			return nil
		}
		return err
	}
	s.log.Infof("spawner: prop %d spawned in quadrant %d for %s", prop.ID, quadrant, username)

	if s.notify != nil {
		s.notify(prop)
	}
	return nil
}

// DeleteByOwnerAndQuadrant removes the caller's prop in the given quadrant.
func (s *Spawner) DeleteByOwnerAndQuadrant(username string, quadrant int) error {
	if quadrant < 1 || quadrant > 4 {
		return Validationf("quadrant must be between 1 and 4")
	}
	prop, err := s.props.PropByQuadrant(quadrant)
	if err != nil {
		return err
	}
	if prop.Username != username {
		return ErrNotFound
	}
	if _, err := s.props.DeleteProp(prop.ID); err != nil {
		return err
	}
	return nil
}

// DeleteByID removes a prop by id, reporting whether a row was deleted.
// Not owner-scoped: any connected viewer may delete any prop.
func (s *Spawner) DeleteByID(id int64) (bool, error) {
	return s.props.DeleteProp(id)
}

// PropsFor lists a player's live props.
func (s *Spawner) PropsFor(username string) ([]Prop, error) {
	return s.props.PropsByUsername(username)
}

func validateProp(p *Prop) error {
	if p.Position.X == 0 || p.Position.Z == 0 {
		return Validationf("prop may not sit on a coordinate axis")
	}
	if strings.TrimSpace(p.Color) == "" {
		return Validationf("prop color must not be blank")
	}
	if p.Size <= 0 {
		return Validationf("prop size must be positive")
	}
	if math.Abs(p.RotationSpeed) < 0.5 {
		return Validationf("prop rotation speed too small")
	}
	if strings.TrimSpace(p.Username) == "" {
		return Validationf("prop owner must not be blank")
	}
	return nil
}

func (s *Spawner) randomInterval() time.Duration {
	span := int(s.maxInterval/time.Second) - int(s.minInterval/time.Second) + 1
	return s.minInterval + time.Duration(rand.Intn(span))*time.Second
}

// randomPropPosition draws the X/Z magnitudes and fixes their signs by
// quadrant. Y is filled in by the caller.
func randomPropPosition(quadrant int) Position {
	xAbs := float64(spawnMinCoord + rand.Intn(spawnCoordSpan))
	zAbs := float64(spawnMinCoord + rand.Intn(spawnCoordSpan))

	xSign, zSign := 1.0, 1.0
	if quadrant == 2 || quadrant == 3 {
		xSign = -1
	}
	if quadrant == 3 || quadrant == 4 {
		zSign = -1
	}
	return Position{X: xSign * xAbs, Z: zSign * zAbs}
}

func randomColor() string {
	return fmt.Sprintf("#%06X", rand.Intn(0x1000000))
}

// randomRotationSpeed draws from [-3,-0.5] or [0.5,3] with equal odds; the
// magnitude never drops below 0.5 so props visibly turn.
func randomRotationSpeed() float64 {
	if rand.Intn(2) == 0 {
		return -3 + rand.Float64()*2.5
	}
	return 0.5 + rand.Float64()*2.5
}
