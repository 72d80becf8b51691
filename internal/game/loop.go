package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"
)

// ErrNoSurface is returned by NewLoop when there is nothing to draw on
var ErrNoSurface = errors.New("game: no render surface")

// Surface draws a published snapshot
type Surface interface {
	Render(snap *GameSnapshot)
}

// LevelSource reports the player's current progression level.
// It must not block.
type LevelSource interface {
	Level() int
}

// Options configures a Loop. Only Surface is required.
type Options struct {
	Config   Config
	Surface  Surface
	Clock    Clock       // defaults to SystemClock
	Rand     Rand        // defaults to a time-seeded math/rand source
	Levels   LevelSource // nil means level 1
	EventLog *EventLog   // optional, must already be started
	Limits   ResourceLimits // defaults to LimitsFor(Config)

	// ShareSnapshots keeps an immutable copy of every published snapshot
	// for readers on other goroutines. See Shared.
	ShareSnapshots bool
}

type intentKind uint8

const (
	intentRespawn intentKind = iota
)

// intent is deferred work produced off the tick and applied at its start
type intent struct {
	kind intentKind
	boss bool
}

// Loop owns one session: the arena, its timers and its lifecycle. Tick and
// Draw are called from a single goroutine; timers only enqueue intents.
type Loop struct {
	cfg     Config
	surface Surface
	clock   Clock
	rng     Rand
	levels  LevelSource
	events  *EventLog

	sessionID string
	state     State
	world     *World
	nextID    int
	tickCount uint64
	startedAt time.Time
	summary   *Summary
	ticking   bool

	inboxMu sync.Mutex
	inbox   []intent

	remaining atomic.Int64 // whole seconds left on the countdown
	timerMu   sync.Mutex
	countdown Timer
	stopped   atomic.Bool

	snapshots *SnapshotPool
	share     bool
	shared    atomic.Pointer[GameSnapshot]

	// Callbacks, invoked on the tick goroutine. They must not block.
	onTick func(elapsed time.Duration, snap *GameSnapshot)
	onEnd  func(Summary)
}

// NewLoop creates an Idle session
func NewLoop(opts Options) (*Loop, error) {
	if opts.Surface == nil {
		return nil, ErrNoSurface
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cfg := opts.Config
	if opts.Limits == (ResourceLimits{}) {
		opts.Limits = LimitsFor(cfg)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("game: invalid playfield %vx%v", cfg.Width, cfg.Height)
	}

	l := &Loop{
		cfg:       cfg,
		surface:   opts.Surface,
		clock:     opts.Clock,
		rng:       opts.Rand,
		levels:    opts.Levels,
		events:    opts.EventLog,
		sessionID: ksuid.New().String(),
		state:     StateIdle,
		nextID:    cfg.EnemyCount,
		snapshots: NewSnapshotPool(opts.Limits),
		share:     opts.ShareSnapshots,
	}
	if l.nextID < 1 {
		l.nextID = 1
	}
	l.world = NewWorld(&l.cfg, l.rng)
	l.remaining.Store(int64(cfg.Duration / time.Second))
	l.produceSnapshot()
	return l, nil
}

// SetCallbacks sets the per-tick and end-of-session hooks
func (l *Loop) SetCallbacks(onTick func(time.Duration, *GameSnapshot), onEnd func(Summary)) {
	l.onTick = onTick
	l.onEnd = onEnd
}

// SessionID returns the unique id of this session
func (l *Loop) SessionID() string {
	return l.sessionID
}

// State returns the lifecycle state
func (l *Loop) State() State {
	return l.state
}

// TimeLeft returns the whole seconds left on the countdown
func (l *Loop) TimeLeft() int {
	if r := l.remaining.Load(); r > 0 {
		return int(r)
	}
	return 0
}

// Summary returns the session result once it has ended
func (l *Loop) Summary() (Summary, bool) {
	if l.summary == nil {
		return Summary{}, false
	}
	return *l.summary, true
}

// Snapshot returns the latest published snapshot. The pool reuses it a
// few ticks later, so only the tick goroutine may hold on to it.
func (l *Loop) Snapshot() *GameSnapshot {
	return l.snapshots.AcquireRead()
}

// Shared returns the latest snapshot copy for other goroutines. It is nil
// unless the loop was created with ShareSnapshots.
func (l *Loop) Shared() *GameSnapshot {
	return l.shared.Load()
}

// Start moves Idle to Running and arms the countdown. It returns false in
// any other state.
func (l *Loop) Start() bool {
	if l.state != StateIdle || l.stopped.Load() {
		return false
	}
	l.state = StateRunning
	l.startedAt = l.clock.Now()
	l.armCountdown()

	l.emit(EventTypeSessionStart, SessionStartPayload{
		DurationSec: int(l.cfg.Duration / time.Second),
		Enemies:     len(l.world.Enemies),
		Ammo:        l.world.Arsenal.Ammo,
		Level:       l.level(),
	})
	log.Printf("🎮 Session %s started (%ds, %d enemies)", l.sessionID, l.TimeLeft(), len(l.world.Enemies))
	return true
}

// Stop tears the session down: the countdown is cancelled and pending
// respawn callbacks become no-ops. Stop is idempotent.
func (l *Loop) Stop() {
	if l.stopped.Swap(true) {
		return
	}
	l.stopCountdown()
	log.Printf("🛑 Session %s stopped", l.sessionID)
}

// Stopped reports whether Stop has been called
func (l *Loop) Stopped() bool {
	return l.stopped.Load()
}

// Tick advances the session by one frame. Gameplay only runs while Running;
// every tick publishes a snapshot.
func (l *Loop) Tick(in Input) {
	if l.ticking || l.stopped.Load() {
		return
	}
	l.ticking = true
	defer func() { l.ticking = false }()

	start := time.Now()
	l.tickCount++
	l.applyIntents()

	if l.state == StateRunning && l.remaining.Load() <= 0 {
		l.end()
	}
	if l.state == StateRunning {
		l.runStep(in)
	}

	snap := l.produceSnapshot()
	if l.onTick != nil {
		l.onTick(time.Since(start), snap)
	}
}

// Draw renders the latest snapshot onto the surface
func (l *Loop) Draw() {
	l.surface.Render(l.snapshots.AcquireRead())
}

// runStep executes the gameplay stages on a copy of the world and commits
// it only if every stage completed.
func (l *Loop) runStep(in Input) {
	next := l.world.clone()
	fx, err := l.step(next, in, l.clock.Now())
	if err != nil {
		log.Printf("⚠️ Tick %d dropped: %v", l.tickCount, err)
		return
	}
	l.world = next
	l.commit(fx)
}

func (l *Loop) step(w *World, in Input, now time.Time) (fx *tickEffects, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in tick: %v", r)
		}
	}()
	fx = &tickEffects{}

	w.Player.AimAt(in.AimX, in.AimY)
	if in.SelectWeapon > 0 {
		w.Arsenal.Select(in.SelectWeapon-1, l.level())
	}

	MovePlayer(&w.Player, in, &l.cfg)
	for i := 0; i < in.Fire; i++ {
		FirePlayer(w, now, fx)
	}
	ResolveProjectiles(w, &l.cfg, fx)
	UpdateEnemies(w, l.rng, l.cfg.Enemy, fx)
	return fx, nil
}

func (l *Loop) commit(fx *tickEffects) {
	for _, id := range fx.respawns {
		boss := id == BossID
		l.clock.AfterFunc(l.cfg.RespawnDelay, func() {
			l.enqueue(intent{kind: intentRespawn, boss: boss})
		})
	}
	for _, ev := range fx.events {
		l.emit(ev.typ, ev.payload)
	}
}

// enqueue is called from timer goroutines
func (l *Loop) enqueue(it intent) {
	if l.stopped.Load() {
		return
	}
	l.inboxMu.Lock()
	l.inbox = append(l.inbox, it)
	l.inboxMu.Unlock()
}

func (l *Loop) applyIntents() {
	l.inboxMu.Lock()
	pending := l.inbox
	l.inbox = nil
	l.inboxMu.Unlock()

	for _, it := range pending {
		switch it.kind {
		case intentRespawn:
			l.respawn(it.boss)
		}
	}
}

// respawn appends a replacement enemy. The boss keeps its identity.
func (l *Loop) respawn(boss bool) {
	id := BossID
	if !boss {
		id = l.nextID
		l.nextID++
	}
	enemy := SpawnEnemy(l.rng, l.cfg.EnemySpawn, id)
	l.world.Enemies = append(l.world.Enemies, enemy)
	l.emit(EventTypeRespawn, RespawnPayload{EnemyID: id, X: enemy.X, Y: enemy.Y})
}

func (l *Loop) armCountdown() {
	l.timerMu.Lock()
	defer l.timerMu.Unlock()
	if l.stopped.Load() {
		return
	}
	l.countdown = l.clock.AfterFunc(time.Second, l.onSecond)
}

func (l *Loop) onSecond() {
	if l.stopped.Load() {
		return
	}
	if l.remaining.Add(-1) > 0 {
		l.armCountdown()
	}
}

func (l *Loop) stopCountdown() {
	l.timerMu.Lock()
	defer l.timerMu.Unlock()
	if l.countdown != nil {
		l.countdown.Stop()
		l.countdown = nil
	}
}

// end freezes gameplay and computes the outcome exactly once
func (l *Loop) end() {
	l.state = StateEnded
	l.stopCountdown()

	stats := l.world.Stats
	sum := Summary{
		SessionID: l.sessionID,
		Kills:     stats.Kills,
		Deaths:    stats.Deaths,
		ScoreA:    stats.ScoreA,
		ScoreB:    stats.ScoreB,
		AmmoUsed:  l.world.Arsenal.Fired,
		Won:       stats.Won(),
		Duration:  l.clock.Now().Sub(l.startedAt),
	}
	l.summary = &sum

	l.emit(EventTypeSessionEnd, sum)
	log.Printf("🏁 Session %s ended: %d-%d, kills=%d deaths=%d won=%v",
		l.sessionID, sum.ScoreA, sum.ScoreB, sum.Kills, sum.Deaths, sum.Won)

	if l.onEnd != nil {
		l.onEnd(sum)
	}
}

func (l *Loop) level() int {
	if l.levels == nil {
		return 1
	}
	return l.levels.Level()
}

func (l *Loop) emit(typ EventType, payload interface{}) {
	if l.events == nil {
		return
	}
	l.events.Emit(NewEvent(typ, l.tickCount, l.sessionID, payload))
}

func (l *Loop) produceSnapshot() *GameSnapshot {
	snap := l.snapshots.AcquireWrite()
	snap.TickNumber = l.tickCount
	snap.SessionID = l.sessionID
	snap.State = l.state
	snap.TimeLeft = l.TimeLeft()
	snap.Width = l.cfg.Width
	snap.Height = l.cfg.Height
	snap.Obstacles = l.cfg.Obstacles
	snap.Level = l.level()
	l.snapshots.fill(snap, l.world)
	if l.summary != nil {
		sum := *l.summary
		snap.Summary = &sum
	}
	l.snapshots.PublishWrite()
	if l.share {
		l.shared.Store(snap.Clone())
	}
	return snap
}
