package game

import "math"

// Projectile is a bullet in flight. It lives until the first terminal event:
// leaving the playfield, entering an obstacle, or hitting a combatant.
type Projectile struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"` // pixels per tick
	VY     float64 `json:"vy"`
	Team   Team    `json:"team"`
	Damage int     `json:"damage"`
}

// NewProjectile fires from (x, y) along angle at speed pixels per tick
func NewProjectile(x, y, angle, speed float64, team Team, damage int) Projectile {
	return Projectile{
		X:      x,
		Y:      y,
		VX:     math.Cos(angle) * speed,
		VY:     math.Sin(angle) * speed,
		Team:   team,
		Damage: damage,
	}
}

// Advance integrates one tick of motion
func (p *Projectile) Advance() {
	p.X += p.VX
	p.Y += p.VY
}

// OutOfBounds reports whether the projectile has left [0,w]x[0,h]
func (p *Projectile) OutOfBounds(w, h float64) bool {
	return p.X < 0 || p.X > w || p.Y < 0 || p.Y > h
}
