package game

import (
	"fmt"

	"arena-shooter/internal/game/spatial"
)

// Team is one of the two sides of the arena
type Team uint8

const (
	TeamA Team = iota // human side
	TeamB             // AI side
)

func (t Team) String() string {
	if t == TeamA {
		return "blue"
	}
	return "red"
}

// MarshalText encodes the team by color name for JSON payloads
func (t Team) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Rand is the random source used by spawning and enemy decisions.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Combatant is any health-bearing actor: the player, an enemy, or the boss
type Combatant struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle"`
	Health int     `json:"health"`
	Team   Team    `json:"team"`
}

// NewPlayer creates the human-controlled combatant at its spawn point
func NewPlayer(spawn spatial.Vec) Combatant {
	return Combatant{
		ID:     PlayerID,
		Name:   "You",
		X:      spawn.X,
		Y:      spawn.Y,
		Health: MaxHealth,
		Team:   TeamA,
	}
}

// SpawnEnemy places a team B combatant uniformly inside area facing team A
func SpawnEnemy(rng Rand, area spatial.Rect, id int) Combatant {
	return Combatant{
		ID:     id,
		Name:   EnemyName(id),
		X:      area.X + rng.Float64()*area.Width,
		Y:      area.Y + rng.Float64()*area.Height,
		Angle:  EnemyFacing,
		Health: MaxHealth,
		Team:   TeamB,
	}
}

// EnemyName returns the cosmetic display name for an enemy id
func EnemyName(id int) string {
	if id == BossID {
		return "Boss"
	}
	return fmt.Sprintf("Bot-%d", id)
}

// IsBoss reports whether the combatant holds the reserved boss identity
func (c *Combatant) IsBoss() bool {
	return c.ID == BossID
}

// Radius returns the body radius used for drawing
func (c *Combatant) Radius() float64 {
	if c.IsBoss() {
		return BossRadius
	}
	return PlayerRadius
}

// HitRadius returns how close a projectile must come to land a hit.
// The boss is drawn larger but is no easier to hit.
func (c *Combatant) HitRadius() float64 {
	if c.IsBoss() {
		return BossHitRadius
	}
	return HitRadius
}

// TakeDamage subtracts amount and clamps health to [0, MaxHealth].
// Returns true when the hit was lethal.
func (c *Combatant) TakeDamage(amount int) bool {
	c.Health -= amount
	if c.Health > MaxHealth {
		c.Health = MaxHealth
	}
	if c.Health <= 0 {
		c.Health = 0
		return true
	}
	return false
}

// Respawn restores full health at the given point
func (c *Combatant) Respawn(at spatial.Vec) {
	c.Health = MaxHealth
	c.X = at.X
	c.Y = at.Y
}

// AimAt points the combatant toward (x, y)
func (c *Combatant) AimAt(x, y float64) {
	c.Angle = spatial.AngleTo(c.X, c.Y, x, y)
}

// DistanceTo returns the distance from the combatant's center to (x, y)
func (c *Combatant) DistanceTo(x, y float64) float64 {
	return spatial.Distance(c.X, c.Y, x, y)
}
