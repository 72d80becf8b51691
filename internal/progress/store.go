package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MemoryStore holds progression records in memory and, when given a path,
// persists them as a JSON file after every change.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Progress
	ranking *Ranking
	path    string
	now     func() time.Time
}

// NewMemoryStore loads records from path if it exists. An empty path keeps
// everything in memory.
func NewMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{
		records: make(map[string]Progress),
		ranking: NewRanking(),
		path:    path,
		now:     time.Now,
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress file: %w", err)
	}

	var rows []Progress
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse progress file: %w", err)
	}
	for _, p := range rows {
		s.records[p.PlayerID] = p
		s.ranking.Set(p.PlayerID, p.Experience)
	}
	log.Printf("📂 Loaded %d progress records from %s", len(rows), path)
	return s, nil
}

// Get returns the record for playerID
func (s *MemoryStore) Get(playerID string) (Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.records[playerID]
	return p, ok
}

// GetOrCreate returns the record for playerID, creating an empty one first
func (s *MemoryStore) GetOrCreate(playerID string) (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.records[playerID]; ok {
		return p, nil
	}
	p := New(playerID, s.now())
	if err := s.persistLocked(p); err != nil {
		return Progress{}, err
	}
	s.commitLocked(p)
	return p, nil
}

// Apply folds r into an existing record. Unknown players get
// ErrPlayerNotFound; records are only created by GetOrCreate.
func (s *MemoryStore) Apply(r Result) (Progress, error) {
	if err := r.Validate(); err != nil {
		return Progress{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.records[r.PlayerID]
	if !ok {
		return Progress{}, ErrPlayerNotFound
	}
	p = p.Apply(r, s.now())
	if err := s.persistLocked(p); err != nil {
		return Progress{}, err
	}
	s.commitLocked(p)
	return p, nil
}

// Len returns the number of records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Top returns the n most experienced players
func (s *MemoryStore) Top(n int) []Standing {
	if n <= 0 {
		n = DefaultTopPlayers
	}
	if n > MaxTopPlayers {
		n = MaxTopPlayers
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.ranking.Range(1, n)
	out := make([]Standing, len(ids))
	for i, id := range ids {
		out[i] = Standing{Rank: i + 1, Progress: s.records[id]}
	}
	return out
}

// Rank returns the 1-based leaderboard position of playerID, 0 if unknown
func (s *MemoryStore) Rank(playerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ranking.Rank(playerID)
}

func (s *MemoryStore) commitLocked(p Progress) {
	s.records[p.PlayerID] = p
	s.ranking.Set(p.PlayerID, p.Experience)
}

// persistLocked writes all records, with next in place of its stored
// version, through a temp file and rename. Memory is only updated once
// the file is on disk, so a failed save changes nothing.
func (s *MemoryStore) persistLocked(next Progress) error {
	if s.path == "" {
		return nil
	}

	rows := make([]Progress, 0, len(s.records)+1)
	for id, p := range s.records {
		if id != next.PlayerID {
			rows = append(rows, p)
		}
	}
	rows = append(rows, next)
	sort.Slice(rows, func(i, j int) bool { return rows[i].PlayerID < rows[j].PlayerID })

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".progress-*.json")
	if err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("persist progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist progress: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}
	return nil
}
