package progress

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		exp  int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{250, 3},
		{1000, 11},
		{-50, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.exp), "experience %d", tt.exp)
	}
}

func TestProgressApply(t *testing.T) {
	now := time.Unix(2000, 0)
	p := New("alice", time.Unix(1000, 0))

	p = p.Apply(Result{PlayerID: "alice", Kills: 12, Deaths: 3, Won: true}, now)
	assert.Equal(t, 12, p.TotalKills)
	assert.Equal(t, 3, p.TotalDeaths)
	assert.Equal(t, 1, p.Wins)
	assert.Equal(t, 0, p.Losses)
	assert.Equal(t, 120, p.Experience)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, now, p.UpdatedAt)

	p = p.Apply(Result{PlayerID: "alice", Kills: 0, Deaths: 5}, now)
	assert.Equal(t, 1, p.Losses)
	assert.Equal(t, 120, p.Experience)
}

func TestMemoryStore(t *testing.T) {
	s, err := NewMemoryStore("")
	require.NoError(t, err)

	_, err = s.Apply(Result{PlayerID: "ghost", Kills: 1})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	p, err := s.GetOrCreate("bob")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 1, s.Len())

	p, err = s.Apply(Result{PlayerID: "bob", Kills: 10, Won: true})
	require.NoError(t, err)
	assert.Equal(t, 100, p.Experience)
	assert.Equal(t, 2, p.Level)

	again, err := s.GetOrCreate("bob")
	require.NoError(t, err)
	assert.Equal(t, p, again)

	_, err = s.Apply(Result{PlayerID: "bob", Kills: -1})
	assert.ErrorIs(t, err, ErrInvalidResult)
}

// TestMemoryStorePersistence reopens a store from its file
func TestMemoryStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")

	s, err := NewMemoryStore(path)
	require.NoError(t, err)
	_, err = s.GetOrCreate("carol")
	require.NoError(t, err)
	_, err = s.Apply(Result{PlayerID: "carol", Kills: 4, Deaths: 2})
	require.NoError(t, err)

	reopened, err := NewMemoryStore(path)
	require.NoError(t, err)
	p, ok := reopened.Get("carol")
	require.True(t, ok)
	assert.Equal(t, 4, p.TotalKills)
	assert.Equal(t, 1, p.Losses)
	assert.Equal(t, 40, p.Experience)
}

// TestMemoryStoreFailedSaveKeepsState checks a write that never reaches
// disk leaves memory untouched, so a retried result is counted once.
func TestMemoryStoreFailedSaveKeepsState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.Mkdir(dir, 0755))

	s, err := NewMemoryStore(filepath.Join(dir, "progress.json"))
	require.NoError(t, err)
	_, err = s.GetOrCreate("ivy")
	require.NoError(t, err)
	_, err = s.Apply(Result{PlayerID: "ivy", Kills: 2})
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(dir))

	_, err = s.Apply(Result{PlayerID: "ivy", Kills: 5})
	require.Error(t, err)
	p, ok := s.Get("ivy")
	require.True(t, ok)
	assert.Equal(t, 2, p.TotalKills)
	assert.Equal(t, 20, s.Top(1)[0].Experience)

	_, err = s.GetOrCreate("jack")
	require.Error(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Rank("jack"))

	require.NoError(t, os.Mkdir(dir, 0755))
	p, err = s.Apply(Result{PlayerID: "ivy", Kills: 5})
	require.NoError(t, err)
	assert.Equal(t, 7, p.TotalKills)
}

func TestMemoryStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewMemoryStore(path)
	assert.Error(t, err)
}

// fakeService records calls and can be told to fail
type fakeService struct {
	mu       sync.Mutex
	record   Progress
	fail     error
	saved    []Result
	fetches  int
	fetchErr error
}

func (f *fakeService) Fetch(ctx context.Context, playerID string) (Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return Progress{}, f.fetchErr
	}
	p := f.record
	p.PlayerID = playerID
	return p, nil
}

func (f *fakeService) Save(ctx context.Context, r Result) (Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return Progress{}, f.fail
	}
	f.saved = append(f.saved, r)
	f.record = f.record.Apply(r, time.Now())
	return f.record, nil
}

func TestTrackerRefresh(t *testing.T) {
	svc := &fakeService{record: Progress{Experience: 420, Level: 5}}
	tr := NewTracker(svc, "dave", time.Second)
	assert.Equal(t, 1, tr.Level())

	tr.Refresh()
	tr.Wait()

	assert.Equal(t, 5, tr.Level())
	assert.Equal(t, "dave", tr.Current().PlayerID)
}

// TestTrackerKeepsSnapshotOnFailure checks a failing service does not reset progression
func TestTrackerKeepsSnapshotOnFailure(t *testing.T) {
	svc := &fakeService{record: Progress{Experience: 420, Level: 5}}
	tr := NewTracker(svc, "erin", time.Second)
	tr.Refresh()
	tr.Wait()
	require.Equal(t, 5, tr.Level())

	var ops []string
	tr.SetFailureHook(func(op string, err error) { ops = append(ops, op) })

	svc.mu.Lock()
	svc.fetchErr = errors.New("connection refused")
	svc.fail = errors.New("connection refused")
	svc.mu.Unlock()

	tr.Refresh()
	tr.Wait()
	tr.Report(Result{Kills: 3})
	tr.Wait()

	assert.Equal(t, 5, tr.Level())
	assert.Equal(t, uint64(2), tr.Failures())
	assert.Equal(t, []string{"fetch", "save"}, ops)
}

func TestTrackerReportRefetches(t *testing.T) {
	svc := &fakeService{record: Progress{Experience: 90, Level: 1}}
	tr := NewTracker(svc, "frank", time.Second)

	tr.Report(Result{Kills: 2, Deaths: 1, Won: true})
	tr.Wait()

	require.Len(t, svc.saved, 1)
	assert.Equal(t, "frank", svc.saved[0].PlayerID)
	assert.Equal(t, 1, svc.fetches)
	assert.Equal(t, 2, tr.Level())
	assert.Equal(t, 110, tr.Current().Experience)
}

// stallingService holds its first fetch until release is closed and then
// answers with stale, the record as it was before any save.
type stallingService struct {
	*fakeService
	stale   Progress
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (s *stallingService) Fetch(ctx context.Context, playerID string) (Progress, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
		<-s.release
		p := s.stale
		p.PlayerID = playerID
		return p, nil
	}
	return s.fakeService.Fetch(ctx, playerID)
}

func TestTrackerDiscardsStaleFetch(t *testing.T) {
	old := Progress{Experience: 90, Level: 1}
	svc := &stallingService{
		fakeService: &fakeService{record: old},
		stale:       old,
		started:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	tr := NewTracker(svc, "kim", time.Second)

	tr.Refresh()
	<-svc.started
	tr.Report(Result{Kills: 2, Won: true})
	require.Eventually(t, func() bool { return tr.Current().Experience == 110 }, time.Second, 5*time.Millisecond)

	close(svc.release)
	tr.Wait()

	assert.Equal(t, 110, tr.Current().Experience)
	assert.Equal(t, 2, tr.Level())
}

// TestClientRoundTrip runs the client against a stub server
func TestClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "gina", r.URL.Query().Get("player_id"))
			w.Write([]byte(`{"player_id":"gina","experience":250,"level":3}`))
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"Player not found"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)

	p, err := c.Fetch(context.Background(), "gina")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Level)
	assert.Equal(t, 250, p.Experience)

	_, err = c.Save(context.Background(), Result{PlayerID: "gina", Kills: 1})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), "hal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
