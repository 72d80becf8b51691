package game

import (
	"math"
	"math/rand"
	"sort"
	"testing"
	"time"
)

// =============================================================================
// SOAK TESTS: FULL SESSIONS UNDER RANDOM INPUT
// Run with: go test -v -run=TestSoak ./internal/game/...
// =============================================================================

const soakFrame = time.Second / 60

// soakResult summarizes one simulated session
type soakResult struct {
	Ticks       int
	MaxEnemies  int
	MaxBullets  int
	AvgTickTime time.Duration
	P99TickTime time.Duration
	Summary     Summary
}

// randomInput mashes keys, sweeps the aim and clicks often
func randomInput(rng *rand.Rand, cfg Config) Input {
	in := Input{
		Up:    rng.Intn(3) == 0,
		Down:  rng.Intn(3) == 0,
		Left:  rng.Intn(3) == 0,
		Right: rng.Intn(3) == 0,
		AimX:  rng.Float64() * cfg.Width,
		AimY:  rng.Float64() * cfg.Height,
	}
	if rng.Intn(4) == 0 {
		in.Fire = 1 + rng.Intn(2)
	}
	if rng.Intn(200) == 0 {
		in.SelectWeapon = 1 + rng.Intn(len(Weapons)+1)
	}
	if rng.Intn(10) == 0 {
		in.JoystickActive = true
		in.JoystickX = rng.Float64()*4 - 2
		in.JoystickY = rng.Float64()*4 - 2
	}
	return in
}

// checkInvariants fails the test on any impossible arena state
func checkInvariants(t *testing.T, tick int, cfg Config, snap *GameSnapshot) {
	t.Helper()

	p := snap.Player
	if p.Health <= 0 || p.Health > MaxHealth {
		t.Fatalf("tick %d: player health %d", tick, p.Health)
	}
	if p.X < PlayerRadius || p.X > cfg.Width-PlayerRadius || p.Y < PlayerRadius || p.Y > cfg.Height-PlayerRadius {
		t.Fatalf("tick %d: player outside playfield at (%.1f, %.1f)", tick, p.X, p.Y)
	}

	if len(snap.Enemies) > cfg.EnemyCount {
		t.Fatalf("tick %d: %d enemies, roster is %d", tick, len(snap.Enemies), cfg.EnemyCount)
	}
	seen := make(map[int]bool, len(snap.Enemies))
	for _, e := range snap.Enemies {
		if seen[e.ID] {
			t.Fatalf("tick %d: duplicate enemy id %d", tick, e.ID)
		}
		seen[e.ID] = true
		if e.Health <= 0 || e.Health > MaxHealth {
			t.Fatalf("tick %d: enemy %d health %d", tick, e.ID, e.Health)
		}
		if e.Team != TeamB {
			t.Fatalf("tick %d: enemy %d on team %v", tick, e.ID, e.Team)
		}
	}

	for _, proj := range snap.Projectiles {
		if proj.X < 0 || proj.X > cfg.Width || proj.Y < 0 || proj.Y > cfg.Height {
			t.Fatalf("tick %d: projectile survived outside the playfield at (%.1f, %.1f)", tick, proj.X, proj.Y)
		}
		if math.IsNaN(proj.X) || math.IsNaN(proj.Y) {
			t.Fatalf("tick %d: projectile position is NaN", tick)
		}
	}

	st := snap.Stats
	if st.ScoreA != st.Kills || st.ScoreB != st.Deaths {
		t.Fatalf("tick %d: scores %d-%d do not match kills %d deaths %d", tick, st.ScoreA, st.ScoreB, st.Kills, st.Deaths)
	}
	if !snap.UnlimitedAmmo && snap.Ammo < 0 {
		t.Fatalf("tick %d: ammo %d", tick, snap.Ammo)
	}
}

func runSoak(t *testing.T, cfg Config, seed int64) soakResult {
	t.Helper()

	clock := newManualClock()
	rng := rand.New(rand.NewSource(seed))
	loop, err := NewLoop(Options{
		Config:  cfg,
		Surface: &countingSurface{},
		Clock:   clock,
		Rand:    rand.New(rand.NewSource(seed + 1)),
		Levels:  fixedLevel(5),
	})
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	defer loop.Stop()

	var ended []Summary
	loop.SetCallbacks(nil, func(s Summary) { ended = append(ended, s) })
	loop.Start()

	var res soakResult
	var tickTimes []time.Duration
	limit := int(cfg.Duration/soakFrame) + 120

	for res.Ticks = 0; res.Ticks < limit && loop.State() != StateEnded; res.Ticks++ {
		start := time.Now()
		loop.Tick(randomInput(rng, cfg))
		tickTimes = append(tickTimes, time.Since(start))
		clock.Advance(soakFrame)

		snap := loop.Snapshot()
		checkInvariants(t, res.Ticks, cfg, snap)
		if n := len(snap.Enemies); n > res.MaxEnemies {
			res.MaxEnemies = n
		}
		if n := len(snap.Projectiles); n > res.MaxBullets {
			res.MaxBullets = n
		}
	}

	if loop.State() != StateEnded {
		t.Fatalf("session still %v after %d ticks", loop.State(), res.Ticks)
	}
	if len(ended) != 1 {
		t.Fatalf("OnEnd called %d times, want 1", len(ended))
	}
	res.Summary = ended[0]

	var total time.Duration
	for _, d := range tickTimes {
		total += d
	}
	sort.Slice(tickTimes, func(i, j int) bool { return tickTimes[i] < tickTimes[j] })
	res.AvgTickTime = total / time.Duration(len(tickTimes))
	res.P99TickTime = tickTimes[len(tickTimes)*99/100]
	return res
}

func TestSoak_FullSession(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping soak test in short mode")
	}

	cfg := DefaultConfig()
	cfg.Duration = 60 * time.Second

	for _, seed := range []int64{1, 2, 3} {
		res := runSoak(t, cfg, seed)
		sum := res.Summary

		if sum.AmmoUsed > cfg.StartingAmmo {
			t.Errorf("seed %d: used %d of %d rounds", seed, sum.AmmoUsed, cfg.StartingAmmo)
		}
		if sum.Won != (sum.ScoreA > sum.ScoreB) {
			t.Errorf("seed %d: won=%v with score %d-%d", seed, sum.Won, sum.ScoreA, sum.ScoreB)
		}

		t.Logf("seed %d: %d ticks, kills=%d deaths=%d, peak %d enemies / %d projectiles, avg %v p99 %v",
			seed, res.Ticks, sum.Kills, sum.Deaths, res.MaxEnemies, res.MaxBullets, res.AvgTickTime, res.P99TickTime)
	}
}

func TestSoak_UnlimitedAmmoCrowd(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping soak test in short mode")
	}

	cfg := DefaultConfig()
	cfg.Duration = 30 * time.Second
	cfg.StartingAmmo = 0
	cfg.EnemyCount = 20
	cfg.RespawnDelay = 500 * time.Millisecond

	res := runSoak(t, cfg, 42)
	if res.MaxEnemies > cfg.EnemyCount {
		t.Errorf("peak enemies %d exceeds roster %d", res.MaxEnemies, cfg.EnemyCount)
	}
	if res.AvgTickTime > 5*time.Millisecond {
		t.Errorf("average tick %v is too slow for 60 TPS headroom", res.AvgTickTime)
	}
}
