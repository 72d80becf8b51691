package game

import (
	"time"

	"arena-shooter/internal/game/spatial"
)

// tickEffects collects side effects that only take place if the tick commits
type tickEffects struct {
	respawns []int // ids of enemies removed this tick
	events   []pendingEvent
}

type pendingEvent struct {
	typ     EventType
	payload interface{}
}

func (fx *tickEffects) emit(typ EventType, payload interface{}) {
	fx.events = append(fx.events, pendingEvent{typ: typ, payload: payload})
}

// MovePlayer applies one tick of input to p. Each axis is tested against the
// obstacles on its own so the player slides along walls, then the position is
// clamped to the playfield.
func MovePlayer(p *Combatant, in Input, cfg *Config) {
	dx, dy := in.Movement()

	newX := p.X + dx*PlayerSpeed
	if !spatial.CollidesAny(newX, p.Y, PlayerRadius, cfg.Obstacles) {
		p.X = newX
	}
	newY := p.Y + dy*PlayerSpeed
	if !spatial.CollidesAny(p.X, newY, PlayerRadius, cfg.Obstacles) {
		p.Y = newY
	}

	p.X = spatial.Clamp(p.X, PlayerRadius, cfg.Width-PlayerRadius)
	p.Y = spatial.Clamp(p.Y, PlayerRadius, cfg.Height-PlayerRadius)
}

// FirePlayer spawns one player projectile if the arsenal allows it
func FirePlayer(w *World, now time.Time, fx *tickEffects) bool {
	if !w.Arsenal.TryFire(now) {
		return false
	}
	weapon := w.Arsenal.Weapon()
	p := &w.Player
	w.Projectiles = append(w.Projectiles,
		NewProjectile(p.X, p.Y, p.Angle, weapon.Speed, p.Team, weapon.Damage))
	w.Stats.Shots = w.Arsenal.Fired
	emit(fx, EventTypeShot, ShotPayload{
		ShooterID: p.ID,
		Team:      p.Team,
		Weapon:    weapon.Name,
		X:         p.X,
		Y:         p.Y,
		Angle:     p.Angle,
	})
	return true
}

// ResolveProjectiles advances every live projectile one tick and applies the
// first terminal event each one meets. The surviving set is filtered in place.
func ResolveProjectiles(w *World, cfg *Config, fx *tickEffects) {
	live := w.Projectiles[:0]
	for _, proj := range w.Projectiles {
		if !resolveOne(w, cfg, &proj, fx) {
			live = append(live, proj)
		}
	}
	// Release references past the new length
	for i := len(live); i < len(w.Projectiles); i++ {
		w.Projectiles[i] = Projectile{}
	}
	w.Projectiles = live
}

// resolveOne returns true when the projectile is consumed
func resolveOne(w *World, cfg *Config, proj *Projectile, fx *tickEffects) bool {
	proj.Advance()

	if spatial.CollidesAny(proj.X, proj.Y, ProjectileRadius, cfg.Obstacles) {
		return true
	}
	if proj.OutOfBounds(cfg.Width, cfg.Height) {
		return true
	}

	for i := range w.Enemies {
		enemy := &w.Enemies[i]
		if enemy.Team == proj.Team || enemy.DistanceTo(proj.X, proj.Y) >= enemy.HitRadius() {
			continue
		}
		lethal := enemy.TakeDamage(proj.Damage)
		emit(fx, EventTypeHit, HitPayload{
			VictimID: enemy.ID,
			Team:     proj.Team,
			Damage:   proj.Damage,
			VictimHP: enemy.Health,
		})
		if lethal {
			killEnemy(w, i, proj.Team, fx)
		}
		return true
	}

	p := &w.Player
	if p.Team != proj.Team && p.DistanceTo(proj.X, proj.Y) < p.HitRadius() {
		lethal := p.TakeDamage(proj.Damage)
		emit(fx, EventTypeHit, HitPayload{
			VictimID: p.ID,
			Team:     proj.Team,
			Damage:   proj.Damage,
			VictimHP: p.Health,
		})
		if lethal {
			w.Stats.Award(proj.Team)
			w.Stats.Deaths++
			p.Respawn(cfg.PlayerSpawn)
			emit(fx, EventTypeDeath, DeathPayload{Deaths: w.Stats.Deaths})
		}
		return true
	}

	return false
}

// killEnemy removes roster entry i and queues its replacement
func killEnemy(w *World, i int, killer Team, fx *tickEffects) {
	victim := w.Enemies[i]
	w.Enemies = append(w.Enemies[:i], w.Enemies[i+1:]...)
	w.Stats.Award(killer)
	w.Stats.Kills++
	if fx != nil {
		fx.respawns = append(fx.respawns, victim.ID)
	}
	emit(fx, EventTypeKill, KillPayload{
		VictimID: victim.ID,
		Boss:     victim.IsBoss(),
		Kills:    w.Stats.Kills,
	})
}

func emit(fx *tickEffects, typ EventType, payload interface{}) {
	if fx != nil {
		fx.emit(typ, payload)
	}
}
