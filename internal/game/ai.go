package game

import "math"

// FireIntent is an enemy's decision to shoot this tick
type FireIntent struct {
	ShooterID int
	X, Y      float64
	Angle     float64
	Speed     float64
	Damage    int
	Team      Team
}

// Projectile builds the projectile the intent describes
func (f FireIntent) Projectile() Projectile {
	return NewProjectile(f.X, f.Y, f.Angle, f.Speed, f.Team, f.Damage)
}

// DecideFire aims enemy straight at the player and runs one Bernoulli trial
// with the class fire chance. Obstacles are ignored when aiming. The returned
// intent always carries the fresh facing angle; ok reports whether to shoot.
func DecideFire(enemy, player Combatant, rng Rand, tuning EnemyTuning) (intent FireIntent, ok bool) {
	angle := math.Atan2(player.Y-enemy.Y, player.X-enemy.X)

	chance, speed, damage := tuning.OrdinaryFireChance, tuning.OrdinarySpeed, tuning.OrdinaryDamage
	if enemy.IsBoss() {
		chance, speed, damage = tuning.BossFireChance, tuning.BossSpeed, tuning.BossDamage
	}

	intent = FireIntent{
		ShooterID: enemy.ID,
		X:         enemy.X,
		Y:         enemy.Y,
		Angle:     angle,
		Speed:     speed,
		Damage:    damage,
		Team:      enemy.Team,
	}
	return intent, rng.Float64() < chance
}

// UpdateEnemies turns every enemy toward the player and appends the
// projectiles of those that decide to fire.
func UpdateEnemies(w *World, rng Rand, tuning EnemyTuning, fx *tickEffects) {
	for i := range w.Enemies {
		enemy := &w.Enemies[i]
		intent, fire := DecideFire(*enemy, w.Player, rng, tuning)
		enemy.Angle = intent.Angle
		if !fire {
			continue
		}
		w.Projectiles = append(w.Projectiles, intent.Projectile())
		emit(fx, EventTypeShot, ShotPayload{
			ShooterID: intent.ShooterID,
			Team:      intent.Team,
			X:         intent.X,
			Y:         intent.Y,
			Angle:     intent.Angle,
		})
	}
}
