package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"arena-shooter/internal/api"
	"arena-shooter/internal/config"
	"arena-shooter/internal/progress"
)

func main() {
	configPath := flag.String("config", "arena.toml", "path to the TOML configuration file")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	appConfig, err := config.Load(*configPath)
	if err != nil {
		log.Printf("❌ Invalid configuration: %v", err)
		os.Exit(1)
	}
	serverCfg := appConfig.Server

	store, err := progress.NewMemoryStore(serverCfg.DataFile)
	if err != nil {
		log.Printf("❌ Progress store: %v", err)
		os.Exit(1)
	}
	if serverCfg.DataFile == "" {
		log.Println("⚠️ No data file configured - progress is kept in memory only")
	}

	if appConfig.Debug.Enabled {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = appConfig.Debug.Addr
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	server := api.NewProgressServer(store, api.RateLimitConfig{
		RequestsPerSecond: serverCfg.RateLimit,
		Burst:             serverCfg.RateBurst,
		WritesPerSecond:   serverCfg.WriteRateLimit,
		WriteBurst:        serverCfg.WriteBurst,
		CleanupInterval:   api.DefaultRateLimitConfig.CleanupInterval,
	})
	api.RegisterStats("progress", func() interface{} { return server.Stats() })
	api.RegisterStats("store", func() interface{} { return map[string]int{"players": store.Len()} })

	addr := ":" + strconv.Itoa(serverCfg.Port)
	go func() {
		if err := server.Start(addr); err != nil {
			log.Printf("❌ Server error: %v", err)
			os.Exit(1)
		}
	}()
	log.Printf("🏆 Progress service ready with %d players", store.Len())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Shutdown: %v", err)
	}
	log.Println("👋 Goodbye!")
}
