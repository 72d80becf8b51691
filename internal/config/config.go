// Package config provides centralized configuration management.
//
// Values are layered: built-in defaults, then an optional TOML file, then
// environment variables (which may come from a .env file loaded by main).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/segmentio/ksuid"

	"arena-shooter/internal/game"
)

// =============================================================================
// VIDEO CONFIGURATION
// =============================================================================

// VideoConfig holds the playfield and window settings
type VideoConfig struct {
	Width  int  `toml:"width"`  // playfield width in pixels
	Height int  `toml:"height"` // playfield height in pixels
	TPS    int  `toml:"tps"`    // ticks (and frames) per second
	Scale  int  `toml:"scale"`  // window scale factor
	VSync  bool `toml:"vsync"`
}

// DefaultVideo returns the default video configuration
func DefaultVideo() VideoConfig {
	return VideoConfig{
		Width:  1000,
		Height: 600,
		TPS:    60,
		Scale:  1,
		VSync:  true,
	}
}

// VideoFromEnv applies environment overrides to cfg
func VideoFromEnv(cfg VideoConfig) VideoConfig {
	if w := getEnvInt("ARENA_WIDTH", 0); w > 0 {
		cfg.Width = w
	}
	if h := getEnvInt("ARENA_HEIGHT", 0); h > 0 {
		cfg.Height = h
	}
	if tps := getEnvInt("ARENA_TPS", 0); tps > 0 {
		cfg.TPS = tps
	}
	if s := getEnvInt("ARENA_SCALE", 0); s > 0 {
		cfg.Scale = s
	}
	return cfg
}

// =============================================================================
// SESSION CONFIGURATION
// =============================================================================

// SessionConfig holds the rules of one session
type SessionConfig struct {
	DurationSec    int    `toml:"duration_sec"` // countdown length
	Ammo           int    `toml:"ammo"`         // shared pool, 0 for unlimited
	EnemyCount     int    `toml:"enemy_count"`  // initial roster size, boss included
	RespawnDelayMs int    `toml:"respawn_delay_ms"`
	Seed           int64  `toml:"seed"` // 0 picks a time-based seed
	EventLogPath   string `toml:"event_log_path"`
}

// DefaultSession returns the default session configuration
func DefaultSession() SessionConfig {
	return SessionConfig{
		DurationSec:    180,
		Ammo:           500,
		EnemyCount:     5,
		RespawnDelayMs: 3000,
		EventLogPath:   "",
	}
}

// SessionFromEnv applies environment overrides to cfg
func SessionFromEnv(cfg SessionConfig) SessionConfig {
	if d := getEnvInt("SESSION_DURATION_SEC", 0); d > 0 {
		cfg.DurationSec = d
	}
	if a := getEnvInt("SESSION_AMMO", -1); a >= 0 {
		cfg.Ammo = a
	}
	if n := getEnvInt("SESSION_ENEMIES", 0); n > 0 {
		cfg.EnemyCount = n
	}
	if ms := getEnvInt("SESSION_RESPAWN_DELAY_MS", 0); ms > 0 {
		cfg.RespawnDelayMs = ms
	}
	if s := getEnvInt("SESSION_SEED", 0); s != 0 {
		cfg.Seed = int64(s)
	}
	if p := os.Getenv("EVENT_LOG_PATH"); p != "" {
		cfg.EventLogPath = p
	}
	return cfg
}

// =============================================================================
// ENEMY CONFIGURATION
// =============================================================================

// EnemyConfig holds the AI firing parameters per class
type EnemyConfig struct {
	FireChance     float64 `toml:"fire_chance"`
	BossFireChance float64 `toml:"boss_fire_chance"`
	Damage         int     `toml:"damage"`
	BossDamage     int     `toml:"boss_damage"`
	Speed          float64 `toml:"speed"`
	BossSpeed      float64 `toml:"boss_speed"`
}

// DefaultEnemy returns the default enemy configuration
func DefaultEnemy() EnemyConfig {
	t := game.DefaultEnemyTuning()
	return EnemyConfig{
		FireChance:     t.OrdinaryFireChance,
		BossFireChance: t.BossFireChance,
		Damage:         t.OrdinaryDamage,
		BossDamage:     t.BossDamage,
		Speed:          t.OrdinarySpeed,
		BossSpeed:      t.BossSpeed,
	}
}

// =============================================================================
// PROGRESS CONFIGURATION
// =============================================================================

// ProgressConfig tells the client where progression lives
type ProgressConfig struct {
	URL       string `toml:"url"` // empty disables progression
	PlayerID  string `toml:"player_id"`
	TimeoutMs int    `toml:"timeout_ms"`
}

// DefaultProgress returns the default progress configuration
func DefaultProgress() ProgressConfig {
	return ProgressConfig{
		URL:       "http://localhost:3000",
		TimeoutMs: 5000,
	}
}

// ProgressFromEnv applies environment overrides to cfg
func ProgressFromEnv(cfg ProgressConfig) ProgressConfig {
	if u, ok := os.LookupEnv("PROGRESS_URL"); ok {
		cfg.URL = u
	}
	if id := os.Getenv("PLAYER_ID"); id != "" {
		cfg.PlayerID = id
	}
	if ms := getEnvInt("PROGRESS_TIMEOUT_MS", 0); ms > 0 {
		cfg.TimeoutMs = ms
	}
	return cfg
}

// Timeout returns the per-call timeout
func (c ProgressConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds progress service settings
type ServerConfig struct {
	Port      int     `toml:"port"`
	DataFile  string  `toml:"data_file"`  // empty keeps records in memory
	RateLimit float64 `toml:"rate_limit"` // reads per second per IP
	RateBurst int     `toml:"rate_burst"`

	WriteRateLimit float64 `toml:"write_rate_limit"` // result POSTs per second per IP
	WriteBurst     int     `toml:"write_burst"`
}

// DefaultServer returns the default server configuration
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:      3000,
		DataFile:  "progress.json",
		RateLimit: 10,
		RateBurst: 20,

		WriteRateLimit: 1,
		WriteBurst:     5,
	}
}

// ServerFromEnv applies environment overrides to cfg
func ServerFromEnv(cfg ServerConfig) ServerConfig {
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if f, ok := os.LookupEnv("PROGRESS_DATA_FILE"); ok {
		cfg.DataFile = f
	}
	if r := getEnvFloat("RATE_LIMIT", 0); r > 0 {
		cfg.RateLimit = r
	}
	if r := getEnvFloat("WRITE_RATE_LIMIT", 0); r > 0 {
		cfg.WriteRateLimit = r
	}
	return cfg
}

// =============================================================================
// SPECTATOR & DEBUG CONFIGURATION
// =============================================================================

// SpectatorConfig enables the read-only session feed
type SpectatorConfig struct {
	Addr string `toml:"addr"` // empty disables the feed
}

// DebugConfig controls the metrics/pprof listener
type DebugConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// DefaultDebug returns the default debug configuration
func DefaultDebug() DebugConfig {
	return DebugConfig{
		Enabled: true,
		Addr:    "127.0.0.1:6060",
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration
type AppConfig struct {
	Video     VideoConfig     `toml:"video"`
	Session   SessionConfig   `toml:"session"`
	Enemy     EnemyConfig     `toml:"enemy"`
	Progress  ProgressConfig  `toml:"progress"`
	Server    ServerConfig    `toml:"server"`
	Spectator SpectatorConfig `toml:"spectator"`
	Debug     DebugConfig     `toml:"debug"`
}

// Default returns the built-in configuration
func Default() AppConfig {
	return AppConfig{
		Video:    DefaultVideo(),
		Session:  DefaultSession(),
		Enemy:    DefaultEnemy(),
		Progress: DefaultProgress(),
		Server:   DefaultServer(),
		Debug:    DefaultDebug(),
	}
}

// Load layers defaults, the TOML file at path (skipped when path is empty
// or the file does not exist) and the environment, then validates.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	if path != "" {
		if err := ReadTOML(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	cfg.Video = VideoFromEnv(cfg.Video)
	cfg.Session = SessionFromEnv(cfg.Session)
	cfg.Progress = ProgressFromEnv(cfg.Progress)
	cfg.Server = ServerFromEnv(cfg.Server)
	if a, ok := os.LookupEnv("SPECTATOR_ADDR"); ok {
		cfg.Spectator.Addr = a
	}
	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Debug.Enabled = false
	}

	if cfg.Progress.PlayerID == "" {
		cfg.Progress.PlayerID = ksuid.New().String()
	}
	return cfg, cfg.Validate()
}

// ReadTOML overlays the file at path onto cfg. Keys absent from the file
// keep their current values.
func ReadTOML(path string, cfg *AppConfig) error {
	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(file, cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the game cannot run with
func (c AppConfig) Validate() error {
	switch {
	case c.Video.Width <= 0 || c.Video.Height <= 0:
		return fmt.Errorf("config: invalid playfield %dx%d", c.Video.Width, c.Video.Height)
	case c.Video.TPS <= 0:
		return fmt.Errorf("config: tps must be positive, got %d", c.Video.TPS)
	case c.Session.DurationSec <= 0:
		return fmt.Errorf("config: duration_sec must be positive, got %d", c.Session.DurationSec)
	case c.Session.Ammo < 0:
		return fmt.Errorf("config: ammo must not be negative, got %d", c.Session.Ammo)
	case c.Session.EnemyCount <= 0:
		return fmt.Errorf("config: enemy_count must be positive, got %d", c.Session.EnemyCount)
	case c.Enemy.FireChance < 0 || c.Enemy.FireChance > 1 || c.Enemy.BossFireChance < 0 || c.Enemy.BossFireChance > 1:
		return errors.New("config: fire chances must be within [0, 1]")
	}
	return nil
}

// GameConfig builds the session rules for the game loop. The obstacle layout
// and spawn points are those of the stock arena, scaled to the playfield.
func (c AppConfig) GameConfig() game.Config {
	g := game.DefaultConfig()
	sx := float64(c.Video.Width) / g.Width
	sy := float64(c.Video.Height) / g.Height

	g.Width = float64(c.Video.Width)
	g.Height = float64(c.Video.Height)
	g.PlayerSpawn.X *= sx
	g.PlayerSpawn.Y *= sy
	g.EnemySpawn.X *= sx
	g.EnemySpawn.Y *= sy
	g.EnemySpawn.Width *= sx
	g.EnemySpawn.Height *= sy
	for i := range g.Obstacles {
		g.Obstacles[i].X *= sx
		g.Obstacles[i].Y *= sy
		g.Obstacles[i].Width *= sx
		g.Obstacles[i].Height *= sy
	}

	g.EnemyCount = c.Session.EnemyCount
	g.RespawnDelay = time.Duration(c.Session.RespawnDelayMs) * time.Millisecond
	g.Duration = time.Duration(c.Session.DurationSec) * time.Second
	g.StartingAmmo = c.Session.Ammo
	g.Enemy = game.EnemyTuning{
		OrdinaryFireChance: c.Enemy.FireChance,
		BossFireChance:     c.Enemy.BossFireChance,
		OrdinaryDamage:     c.Enemy.Damage,
		BossDamage:         c.Enemy.BossDamage,
		OrdinarySpeed:      c.Enemy.Speed,
		BossSpeed:          c.Enemy.BossSpeed,
	}
	return g
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
