package game

import (
	"encoding/json"
	"time"
)

// EventType classifies session events
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeSessionStart
	EventTypeShot
	EventTypeHit
	EventTypeKill
	EventTypeDeath
	EventTypeRespawn
	EventTypeSessionEnd
)

// EventVersion is bumped when payload shapes change
const EventVersion uint8 = 1

// Event is one line of the JSONL session log
type Event struct {
	Version   uint8           `json:"version"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"` // Unix nano
	Sequence  uint64          `json:"sequence"`
	TickNum   uint64          `json:"tickNum"`
	SessionID string          `json:"sessionId"`
	Payload   json.RawMessage `json:"payload"`
}

func (t EventType) String() string {
	switch t {
	case EventTypeSessionStart:
		return "session_start"
	case EventTypeShot:
		return "shot"
	case EventTypeHit:
		return "hit"
	case EventTypeKill:
		return "kill"
	case EventTypeDeath:
		return "death"
	case EventTypeRespawn:
		return "respawn"
	case EventTypeSessionEnd:
		return "session_end"
	default:
		return "unknown"
	}
}

// SessionStartPayload is emitted on Idle -> Running
type SessionStartPayload struct {
	DurationSec int `json:"durationSec"`
	Enemies     int `json:"enemies"`
	Ammo        int `json:"ammo"`
	Level       int `json:"level"`
}

// ShotPayload records one spawned projectile
type ShotPayload struct {
	ShooterID int     `json:"shooterId"`
	Team      Team    `json:"team"`
	Weapon    string  `json:"weapon,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Angle     float64 `json:"angle"`
}

// HitPayload records non-lethal and lethal damage alike
type HitPayload struct {
	VictimID int  `json:"victimId"`
	Team     Team `json:"attackerTeam"`
	Damage   int  `json:"damage"`
	VictimHP int  `json:"victimHp"`
}

// KillPayload records an enemy removed from the roster
type KillPayload struct {
	VictimID int  `json:"victimId"`
	Boss     bool `json:"boss"`
	Kills    int  `json:"kills"`
}

// DeathPayload records the player being reset to spawn
type DeathPayload struct {
	Deaths int `json:"deaths"`
}

// RespawnPayload records an enemy re-entering the roster
type RespawnPayload struct {
	EnemyID int     `json:"enemyId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// NewEvent creates an event stamped with the current time
func NewEvent(eventType EventType, tickNum uint64, sessionID string, payload interface{}) Event {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	return Event{
		Version:   EventVersion,
		Type:      eventType.String(),
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		SessionID: sessionID,
		Payload:   data,
	}
}
