package game

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestEventLogStats(t *testing.T) {
	var nilLog *EventLog
	if got := nilLog.Stats(); got != (EventLogStats{}) {
		t.Errorf("Nil log stats = %+v, want zero", got)
	}

	el := NewEventLog()
	if el.Emit(NewEvent(EventTypeShot, 1, "s", nil)) {
		t.Error("Emit before Start should be refused")
	}
	if err := el.Start(""); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		el.Emit(NewEvent(EventTypeShot, uint64(i), "s", ShotPayload{ShooterID: PlayerID}))
	}

	stats := el.Stats()
	if stats.Total != 3 || !stats.Running || stats.Pending > 3 {
		t.Errorf("Unexpected running stats: %+v", stats)
	}

	el.Stop()
	stats = el.Stats()
	if stats.Running || stats.Pending != 0 || stats.Total != 3 {
		t.Errorf("Unexpected stopped stats: %+v", stats)
	}
}

func TestEventLogWritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	el := NewEventLog()
	if err := el.Start(path); err != nil {
		t.Fatal(err)
	}
	el.Emit(NewEvent(EventTypeShot, 1, "s1", ShotPayload{ShooterID: PlayerID}))
	el.Emit(NewEvent(EventTypeRespawn, 2, "s1", RespawnPayload{EnemyID: BossID}))
	el.Stop()

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var seqs []uint64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("Bad line %q: %v", scanner.Text(), err)
		}
		seqs = append(seqs, ev.Sequence)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Errorf("Expected sequences [1 2], got %v", seqs)
	}
}
