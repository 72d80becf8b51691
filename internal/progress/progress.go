// Package progress owns longitudinal player progression: the wire types
// shared by the client and the service, level derivation, an HTTP client,
// an async tracker used by the game loop, and the service-side store.
package progress

import (
	"errors"
	"time"
)

// DefaultPlayerID is used when a request names no player
const DefaultPlayerID = "guest"

// ExperiencePerKill is awarded for every kill in a reported session
const ExperiencePerKill = 10

// ExperiencePerLevel is the experience needed to gain one level
const ExperiencePerLevel = 100

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidResult  = errors.New("invalid session result")
)

// Progress is one player's cumulative record
type Progress struct {
	PlayerID    string    `json:"player_id"`
	TotalKills  int       `json:"total_kills"`
	TotalDeaths int       `json:"total_deaths"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Experience  int       `json:"experience"`
	Level       int       `json:"level"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Result is what a finished session reports
type Result struct {
	PlayerID string `json:"player_id"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	Won      bool   `json:"won"`
}

// Validate rejects negative counters
func (r Result) Validate() error {
	if r.Kills < 0 || r.Deaths < 0 {
		return ErrInvalidResult
	}
	return nil
}

// LevelFor derives the level from total experience
func LevelFor(experience int) int {
	if experience < 0 {
		experience = 0
	}
	return experience/ExperiencePerLevel + 1
}

// New returns an empty record at level 1
func New(playerID string, now time.Time) Progress {
	return Progress{PlayerID: playerID, Level: 1, UpdatedAt: now}
}

// Apply folds a session result into the record
func (p Progress) Apply(r Result, now time.Time) Progress {
	p.TotalKills += r.Kills
	p.TotalDeaths += r.Deaths
	if r.Won {
		p.Wins++
	} else {
		p.Losses++
	}
	p.Experience += r.Kills * ExperiencePerKill
	p.Level = LevelFor(p.Experience)
	p.UpdatedAt = now
	return p
}
