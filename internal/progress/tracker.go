package progress

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Service is the remote side of progression
type Service interface {
	Fetch(ctx context.Context, playerID string) (Progress, error)
	Save(ctx context.Context, r Result) (Progress, error)
}

// Tracker keeps the last good progression snapshot for one player. Refresh
// and Report run in the background; readers never block on the network and
// a failed call leaves the previous snapshot in place.
//
// Every call is numbered when it is issued. A response older than the one
// already stored is discarded, so a slow fetch cannot undo a later save.
type Tracker struct {
	svc      Service
	playerID string
	timeout  time.Duration

	current  atomic.Pointer[Progress]
	inflight sync.WaitGroup
	failures atomic.Uint64

	issued  atomic.Uint64
	storeMu sync.Mutex
	applied uint64 // generation of current

	onFailure func(op string, err error)
}

// NewTracker starts at level 1 until the first fetch succeeds
func NewTracker(svc Service, playerID string, timeout time.Duration) *Tracker {
	if playerID == "" {
		playerID = DefaultPlayerID
	}
	t := &Tracker{svc: svc, playerID: playerID, timeout: timeout}
	initial := New(playerID, time.Time{})
	t.current.Store(&initial)
	return t
}

// SetFailureHook is called with the operation name on every failed call
func (t *Tracker) SetFailureHook(fn func(op string, err error)) {
	t.onFailure = fn
}

// PlayerID returns the tracked player
func (t *Tracker) PlayerID() string {
	return t.playerID
}

// Current returns the latest snapshot
func (t *Tracker) Current() Progress {
	return *t.current.Load()
}

// Level returns the current level
func (t *Tracker) Level() int {
	return t.current.Load().Level
}

// Failures returns how many calls have failed
func (t *Tracker) Failures() uint64 {
	return t.failures.Load()
}

// Refresh re-fetches progression in the background
func (t *Tracker) Refresh() {
	gen := t.issued.Add(1)
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		t.fetch(gen)
	}()
}

// Report saves one session result in the background, then re-fetches
func (t *Tracker) Report(r Result) {
	if r.PlayerID == "" {
		r.PlayerID = t.playerID
	}
	gen := t.issued.Add(1)
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		p, err := t.svc.Save(ctx, r)
		cancel()
		if err != nil {
			t.fail("save", err)
			return
		}
		t.store(p, gen)
		log.Printf("💾 Progress saved for %s: level %d, %d xp", p.PlayerID, p.Level, p.Experience)
		t.fetch(t.issued.Add(1))
	}()
}

// Wait blocks until background calls have finished
func (t *Tracker) Wait() {
	t.inflight.Wait()
}

func (t *Tracker) fetch(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	p, err := t.svc.Fetch(ctx, t.playerID)
	if err != nil {
		t.fail("fetch", err)
		return
	}
	t.store(p, gen)
}

func (t *Tracker) store(p Progress, gen uint64) {
	if p.Level < 1 {
		p.Level = LevelFor(p.Experience)
	}
	t.storeMu.Lock()
	defer t.storeMu.Unlock()
	if gen < t.applied {
		log.Printf("⏭️ Discarding stale progress for %s (call %d, have %d)", p.PlayerID, gen, t.applied)
		return
	}
	t.applied = gen
	t.current.Store(&p)
}

func (t *Tracker) fail(op string, err error) {
	t.failures.Add(1)
	log.Printf("⚠️ Progress %s failed, keeping level %d: %v", op, t.Level(), err)
	if t.onFailure != nil {
		t.onFailure(op, err)
	}
}
