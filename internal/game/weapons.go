package game

import "time"

// WeaponSpec is a static firing profile
type WeaponSpec struct {
	Name        string        `json:"name"`
	Damage      int           `json:"damage"`
	Cooldown    time.Duration `json:"-"`     // minimum refire interval
	Speed       float64       `json:"speed"` // pixels per tick
	Magazine    int           `json:"magazine"`
	UnlockLevel int           `json:"unlockLevel"`
}

// Weapons is the catalog, ordered by unlock level.
// Index positions are what the digit keys select.
var Weapons = []WeaponSpec{
	{
		Name:        "Pistol",
		Damage:      25,
		Cooldown:    200 * time.Millisecond,
		Speed:       8,
		Magazine:    12,
		UnlockLevel: 1,
	},
	{
		Name:        "Rifle",
		Damage:      35,
		Cooldown:    350 * time.Millisecond,
		Speed:       10,
		Magazine:    30,
		UnlockLevel: 2,
	},
	{
		Name:        "Sniper",
		Damage:      80,
		Cooldown:    1200 * time.Millisecond,
		Speed:       16,
		Magazine:    5,
		UnlockLevel: 5,
	},
}

// GetWeapon returns a weapon by index, defaulting to the first entry
func GetWeapon(idx int) WeaponSpec {
	if idx < 0 || idx >= len(Weapons) {
		return Weapons[0]
	}
	return Weapons[idx]
}

// UnlockedWeapons returns the indices available at the given level
func UnlockedWeapons(level int) []int {
	out := make([]int, 0, len(Weapons))
	for i, w := range Weapons {
		if w.UnlockLevel <= level {
			out = append(out, i)
		}
	}
	return out
}

// Arsenal is the player's session-scoped weapon state: the active weapon,
// the shared ammunition pool and the time of the last successful shot.
type Arsenal struct {
	Active    int
	Ammo      int
	Unlimited bool
	Fired     int // successful shots, i.e. ammunition consumed
	LastShot  time.Time
}

// NewArsenal creates an arsenal holding ammo rounds; ammo <= 0 is unlimited
func NewArsenal(ammo int) Arsenal {
	return Arsenal{
		Ammo:      ammo,
		Unlimited: ammo <= 0,
	}
}

// Weapon returns the active weapon spec
func (a *Arsenal) Weapon() WeaponSpec {
	return GetWeapon(a.Active)
}

// Select switches to weapon idx if it exists and is unlocked at level.
// Rejected selections leave the arsenal unchanged.
func (a *Arsenal) Select(idx, level int) bool {
	if idx < 0 || idx >= len(Weapons) {
		return false
	}
	if Weapons[idx].UnlockLevel > level {
		return false
	}
	a.Active = idx
	return true
}

// TryFire consumes one round if ammunition remains and the active weapon's
// refire interval has elapsed since the last successful shot.
func (a *Arsenal) TryFire(now time.Time) bool {
	if !a.Unlimited && a.Ammo <= 0 {
		return false
	}
	if !a.LastShot.IsZero() && now.Sub(a.LastShot) < a.Weapon().Cooldown {
		return false
	}
	if !a.Unlimited {
		a.Ammo--
	}
	a.Fired++
	a.LastShot = now
	return true
}
