package game

import (
	"math"
	"time"

	"arena-shooter/internal/game/spatial"
)

// Fixed gameplay constants. Anything a deployment may want to retune lives
// in Config instead.
const (
	MaxHealth        = 100
	PlayerRadius     = 15.0
	BossRadius       = 22.0
	ProjectileRadius = 3.0
	HitRadius        = 20.0
	BossHitRadius    = HitRadius
	PlayerSpeed      = 3.0
	EnemyFacing      = math.Pi
	PlayerID         = 0
	BossID           = -1
)

// EnemyTuning holds per-class firing parameters for AI combatants
type EnemyTuning struct {
	OrdinaryFireChance float64 // Bernoulli probability per tick
	BossFireChance     float64
	OrdinaryDamage     int
	BossDamage         int
	OrdinarySpeed      float64 // pixels per tick
	BossSpeed          float64
}

// DefaultEnemyTuning returns the stock enemy parameters
func DefaultEnemyTuning() EnemyTuning {
	return EnemyTuning{
		OrdinaryFireChance: 0.01,
		BossFireChance:     0.02,
		OrdinaryDamage:     15,
		BossDamage:         25,
		OrdinarySpeed:      6,
		BossSpeed:          8,
	}
}

// Config describes one session's arena and rules
type Config struct {
	Width, Height float64
	PlayerSpawn   spatial.Vec
	EnemySpawn    spatial.Rect // enemies spawn uniformly inside this area
	EnemyCount    int
	RespawnDelay  time.Duration
	Duration      time.Duration // countdown length
	StartingAmmo  int           // 0 means unlimited
	Obstacles     []spatial.Rect
	Enemy         EnemyTuning
}

// DefaultObstacles is the stock arena layout for a 1000x600 playfield
func DefaultObstacles() []spatial.Rect {
	return []spatial.Rect{
		{X: 300, Y: 150, Width: 80, Height: 80},
		{X: 500, Y: 300, Width: 100, Height: 60},
		{X: 700, Y: 100, Width: 60, Height: 120},
		{X: 200, Y: 450, Width: 120, Height: 40},
		{X: 600, Y: 450, Width: 80, Height: 80},
	}
}

// DefaultConfig returns the stock session configuration
func DefaultConfig() Config {
	return Config{
		Width:        1000,
		Height:       600,
		PlayerSpawn:  spatial.Vec{X: 100, Y: 300},
		EnemySpawn:   spatial.Rect{X: 700, Y: 100, Width: 100, Height: 400},
		EnemyCount:   5,
		RespawnDelay: 3000 * time.Millisecond,
		Duration:     180 * time.Second,
		StartingAmmo: 500,
		Obstacles:    DefaultObstacles(),
		Enemy:        DefaultEnemyTuning(),
	}
}
