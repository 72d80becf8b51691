package game

import (
	"sync/atomic"
	"time"

	"arena-shooter/internal/game/spatial"
)

// ResourceLimits sizes the pre-allocated snapshot slices. A snapshot still
// carries every combatant and projectile; past these sizes it allocates.
type ResourceLimits struct {
	MaxEnemies     int
	MaxProjectiles int
}

// DefaultLimits covers a stock session without allocating
var DefaultLimits = ResourceLimits{
	MaxEnemies:     64,
	MaxProjectiles: 256,
}

// LimitsFor sizes the snapshot slices for a session with cfg's roster
func LimitsFor(cfg Config) ResourceLimits {
	limits := DefaultLimits
	if cfg.EnemyCount > limits.MaxEnemies {
		limits.MaxEnemies = cfg.EnemyCount
	}
	return limits
}

// GameSnapshot is a complete immutable copy of one tick for rendering and
// spectators. Slices are pre-allocated and reused.
type GameSnapshot struct {
	Sequence   uint64    `json:"sequence"`
	Timestamp  time.Time `json:"timestamp"`
	TickNumber uint64    `json:"tick"`
	SessionID  string    `json:"sessionId"`

	State    State `json:"state"`
	TimeLeft int   `json:"timeLeft"` // whole seconds

	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Obstacles []spatial.Rect `json:"obstacles"` // shared, read-only

	Player      Combatant    `json:"player"`
	Enemies     []Combatant  `json:"enemies"`
	Projectiles []Projectile `json:"projectiles"`

	Stats         Aggregates `json:"stats"`
	Weapon        WeaponSpec `json:"weapon"`
	WeaponIndex   int        `json:"weaponIndex"`
	Ammo          int        `json:"ammo"`
	UnlimitedAmmo bool       `json:"unlimitedAmmo"`
	Level         int        `json:"level"`

	Summary *Summary `json:"summary,omitempty"` // set once the session has ended
}

// Clone returns a deep copy that shares nothing mutable with s
func (s *GameSnapshot) Clone() *GameSnapshot {
	c := *s
	c.Enemies = append([]Combatant(nil), s.Enemies...)
	c.Projectiles = append([]Projectile(nil), s.Projectiles...)
	if s.Summary != nil {
		sum := *s.Summary
		c.Summary = &sum
	}
	return &c
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Uses triple buffering for lock-free producer/consumer.
type SnapshotPool struct {
	snapshots [3]GameSnapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := 0; i < 3; i++ {
		pool.snapshots[i] = GameSnapshot{
			Enemies:     make([]Combatant, 0, limits.MaxEnemies),
			Projectiles: make([]Projectile, 0, limits.MaxProjectiles),
		}
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from Tick).
// Returns a snapshot with reset slices but preserved capacity.
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Enemies = snap.Enemies[:0]
	snap.Projectiles = snap.Projectiles[:0]
	snap.Summary = nil

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite marks the write complete and advances the read pointer
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot (consumer side).
// Before the first publish this is the zero snapshot.
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// fill copies the whole world into snap
func (p *SnapshotPool) fill(snap *GameSnapshot, w *World) {
	snap.Player = w.Player
	snap.Enemies = append(snap.Enemies, w.Enemies...)
	snap.Projectiles = append(snap.Projectiles, w.Projectiles...)
	snap.Stats = w.Stats
	snap.Weapon = w.Arsenal.Weapon()
	snap.WeaponIndex = w.Arsenal.Active
	snap.Ammo = w.Arsenal.Ammo
	snap.UnlimitedAmmo = w.Arsenal.Unlimited
}
