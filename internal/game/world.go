package game

// Aggregates are the per-session counters shown on the HUD and reported to
// progression when the session ends.
type Aggregates struct {
	Kills  int `json:"kills"`
	Deaths int `json:"deaths"`
	Shots  int `json:"shots"` // player rounds consumed
	ScoreA int `json:"scoreA"`
	ScoreB int `json:"scoreB"`
}

// Award credits one point to team t
func (a *Aggregates) Award(t Team) {
	if t == TeamA {
		a.ScoreA++
		return
	}
	a.ScoreB++
}

// Won reports the session outcome for team A. A tie is a loss.
func (a Aggregates) Won() bool {
	return a.ScoreA > a.ScoreB
}

// World is the mutable arena state advanced by one tick at a time
type World struct {
	Player      Combatant
	Enemies     []Combatant
	Projectiles []Projectile
	Arsenal     Arsenal
	Stats       Aggregates
}

// NewWorld seeds a fresh session: the player at spawn, a roster of
// cfg.EnemyCount enemies led by the boss, and a full arsenal.
func NewWorld(cfg *Config, rng Rand) *World {
	w := &World{
		Player:      NewPlayer(cfg.PlayerSpawn),
		Enemies:     make([]Combatant, 0, cfg.EnemyCount+1),
		Projectiles: make([]Projectile, 0, 64),
		Arsenal:     NewArsenal(cfg.StartingAmmo),
	}
	for i := 0; i < cfg.EnemyCount; i++ {
		id := i
		if i == 0 {
			id = BossID
		}
		w.Enemies = append(w.Enemies, SpawnEnemy(rng, cfg.EnemySpawn, id))
	}
	return w
}

// clone returns a deep copy a tick can mutate freely
func (w *World) clone() *World {
	c := *w
	c.Enemies = append(make([]Combatant, 0, len(w.Enemies)+1), w.Enemies...)
	c.Projectiles = append(make([]Projectile, 0, len(w.Projectiles)+8), w.Projectiles...)
	return &c
}

// HasBoss reports whether the boss identity is currently on the roster
func (w *World) HasBoss() bool {
	for i := range w.Enemies {
		if w.Enemies[i].IsBoss() {
			return true
		}
	}
	return false
}
