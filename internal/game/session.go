package game

import "time"

// State is the session lifecycle: Idle -> Running -> Ended
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name for JSON payloads
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Summary is the final result of an ended session
type Summary struct {
	SessionID string        `json:"sessionId"`
	Kills     int           `json:"kills"`
	Deaths    int           `json:"deaths"`
	ScoreA    int           `json:"scoreA"`
	ScoreB    int           `json:"scoreB"`
	AmmoUsed  int           `json:"ammoUsed"`
	Won       bool          `json:"won"`
	Duration  time.Duration `json:"-"`
}

// Experience is what this session is worth to progression
func (s Summary) Experience() int {
	return s.Kills * ExperiencePerKill
}

// ExperiencePerKill is the progression reward for one enemy kill
const ExperiencePerKill = 10
