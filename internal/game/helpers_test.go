package game

import (
	"sync"
	"time"
)

// manualClock fires timers only when Advance is called
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Unix(1000, 0)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward by d, running due callbacks in time order.
// Callbacks may schedule further timers.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.f()
	}
}

// pending counts timers that have neither fired nor been stopped
func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fixedRand always returns the same draw
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }

type panicRand struct{}

func (panicRand) Float64() float64 { panic("rng exploded") }

type countingSurface struct {
	renders int
	last    *GameSnapshot
}

func (s *countingSurface) Render(snap *GameSnapshot) {
	s.renders++
	s.last = snap
}

type fixedLevel int

func (l fixedLevel) Level() int { return int(l) }

// newTestLoop builds a loop with a manual clock and a random source that
// never lets enemies fire.
func newTestLoop(cfg Config) (*Loop, *manualClock) {
	clock := newManualClock()
	l, err := NewLoop(Options{
		Config:  cfg,
		Surface: &countingSurface{},
		Clock:   clock,
		Rand:    fixedRand(0.99),
	})
	if err != nil {
		panic(err)
	}
	return l, clock
}

// aimRight points the player along +X
var aimRight = Input{AimX: 900, AimY: 300}
