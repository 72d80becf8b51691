package game

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
)

// =============================================================================
// BENCHMARK SUITE: CRITICAL PATH PERFORMANCE TESTS
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

// -----------------------------------------------------------------------------
// LOOP TICK BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkLoopTick_5Enemies(b *testing.B)  { benchmarkLoopTick(b, 5) }
func BenchmarkLoopTick_20Enemies(b *testing.B) { benchmarkLoopTick(b, 20) }
func BenchmarkLoopTick_64Enemies(b *testing.B) { benchmarkLoopTick(b, 64) }

func benchmarkLoopTick(b *testing.B, enemies int) {
	cfg := DefaultConfig()
	cfg.EnemyCount = enemies
	cfg.StartingAmmo = 0
	cfg.Duration = time.Hour

	clock := newManualClock()
	loop, err := NewLoop(Options{
		Config:  cfg,
		Surface: &countingSurface{},
		Clock:   clock,
		Rand:    rand.New(rand.NewSource(1)),
	})
	if err != nil {
		b.Fatal(err)
	}
	defer loop.Stop()
	loop.Start()

	in := Input{AimX: 800, AimY: 300, Fire: 1}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		loop.Tick(in)
		clock.Advance(soakFrame)
	}
}

// -----------------------------------------------------------------------------
// PROJECTILE RESOLUTION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkResolveProjectiles_50(b *testing.B)  { benchmarkResolve(b, 50) }
func BenchmarkResolveProjectiles_250(b *testing.B) { benchmarkResolve(b, 250) }

func benchmarkResolve(b *testing.B, count int) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(1))
	base := NewWorld(&cfg, rng)
	for i := 0; i < count; i++ {
		team := TeamA
		if i%2 == 1 {
			team = TeamB
		}
		// Slow projectiles so most survive the whole benchmark iteration
		base.Projectiles = append(base.Projectiles,
			NewProjectile(rng.Float64()*cfg.Width, rng.Float64()*cfg.Height, rng.Float64()*6.28, 0.01, team, 1))
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		w := base.clone()
		ResolveProjectiles(w, &cfg, nil)
	}
}

// -----------------------------------------------------------------------------
// SNAPSHOT GENERATION BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkProduceSnapshot(b *testing.B) {
	for _, n := range []int{5, 64} {
		b.Run(fmt.Sprintf("%dEnemies", n), func(b *testing.B) {
			cfg := DefaultConfig()
			cfg.EnemyCount = n
			loop, err := NewLoop(Options{
				Config:  cfg,
				Surface: &countingSurface{},
				Clock:   newManualClock(),
				Rand:    rand.New(rand.NewSource(1)),
			})
			if err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				loop.produceSnapshot()
			}
		})
	}
}

// -----------------------------------------------------------------------------
// EVENT LOG BENCHMARKS
// -----------------------------------------------------------------------------

func BenchmarkEventLogEmit(b *testing.B) {
	el := NewEventLog()
	if err := el.Start(""); err != nil {
		b.Fatal(err)
	}
	defer el.Stop()

	ev := NewEvent(EventTypeShot, 1, "bench", ShotPayload{ShooterID: PlayerID, Weapon: "Pistol"})

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		el.Emit(ev)
	}
}
