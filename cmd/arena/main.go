package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"arena-shooter/internal/api"
	"arena-shooter/internal/client"
	"arena-shooter/internal/config"
	"arena-shooter/internal/game"
	"arena-shooter/internal/progress"
	"arena-shooter/internal/render"
)

func main() {
	configPath := flag.String("config", "arena.toml", "path to the TOML configuration file")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  ARENA SHOOTER")
	log.Println("🎮 ================================")

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Printf("❌ Invalid configuration: %v", err)
		os.Exit(1)
	}
	videoCfg := appConfig.Video
	sessionCfg := appConfig.Session
	log.Printf("🎮 Config: %dx%d at %d TPS, %ds session, %d enemies",
		videoCfg.Width, videoCfg.Height, videoCfg.TPS, sessionCfg.DurationSec, sessionCfg.EnemyCount)

	if appConfig.Debug.Enabled {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = appConfig.Debug.Addr
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	// Event log
	events := game.NewEventLog()
	if err := events.Start(sessionCfg.EventLogPath); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
		events = nil
	} else if sessionCfg.EventLogPath != "" {
		log.Printf("📝 Event log: %s", sessionCfg.EventLogPath)
	}
	api.RegisterStats("event_log", func() interface{} { return events.Stats() })

	// Progression; without a service URL everyone plays at level 1
	var tracker *progress.Tracker
	var levels game.LevelSource
	if appConfig.Progress.URL != "" {
		svc := progress.NewClient(appConfig.Progress.URL, appConfig.Progress.Timeout())
		tracker = progress.NewTracker(svc, appConfig.Progress.PlayerID, appConfig.Progress.Timeout())
		tracker.SetFailureHook(api.RecordProgressFailure)
		tracker.Refresh()
		levels = tracker
		log.Printf("🏆 Progress service: %s (player %s)", appConfig.Progress.URL, tracker.PlayerID())
	} else {
		log.Println("⚠️ PROGRESS_URL not set - progression disabled")
	}

	renderer, err := render.New(videoCfg.Width, videoCfg.Height)
	if err != nil {
		log.Printf("❌ Renderer: %v", err)
		os.Exit(1)
	}

	seed := sessionCfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	loop, err := game.NewLoop(game.Options{
		Config:   appConfig.GameConfig(),
		Surface:  renderer,
		Rand:     rand.New(rand.NewSource(seed)),
		Levels:   levels,
		EventLog: events,

		ShareSnapshots: appConfig.Spectator.Addr != "",
	})
	if err != nil {
		log.Printf("❌ Cannot create session: %v", err)
		os.Exit(1)
	}

	var eventStats api.EventLogStatsTracker
	loop.SetCallbacks(
		func(elapsed time.Duration, snap *game.GameSnapshot) {
			api.RecordTick(elapsed, snap)
			if snap.TickNumber%uint64(videoCfg.TPS) == 0 {
				eventStats.Update(events.Totals())
			}
		},
		func(sum game.Summary) {
			api.RecordSession(sum)
			if tracker == nil {
				return
			}
			tracker.Report(progress.Result{
				PlayerID: tracker.PlayerID(),
				Kills:    sum.Kills,
				Deaths:   sum.Deaths,
				Won:      sum.Won,
			})
		},
	)

	// Spectator feed
	var spectator *api.Server
	if addr := appConfig.Spectator.Addr; addr != "" {
		spectator = api.NewSpectatorServer(loop)
		api.RegisterStats("spectator", func() interface{} { return spectator.Stats() })
		go func() {
			if err := spectator.Start(addr); err != nil {
				log.Printf("⚠️ Spectator feed error: %v", err)
			}
		}()
	}

	g := client.New(loop, renderer, videoCfg.Width, videoCfg.Height)
	g.OnRender = api.RecordRender
	runErr := client.Run(g, "Arena Shooter", videoCfg.Scale, videoCfg.TPS, videoCfg.VSync)

	// Shutdown
	log.Println("🛑 Shutting down...")
	loop.Stop()
	if spectator != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		spectator.Shutdown(ctx)
		cancel()
	}
	if tracker != nil {
		tracker.Wait()
	}
	events.Stop()

	if runErr != nil {
		log.Printf("❌ %v", runErr)
		os.Exit(1)
	}
	log.Println("👋 Goodbye!")
}
