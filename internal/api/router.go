package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"arena-shooter/internal/game"
	"arena-shooter/internal/progress"
)

// ProgressStore is the persistence the progress service needs.
// *progress.MemoryStore satisfies it.
type ProgressStore interface {
	GetOrCreate(playerID string) (progress.Progress, error)
	Apply(r progress.Result) (progress.Progress, error)
	Top(n int) []progress.Standing
}

// SessionSource publishes the live session for spectators.
// *game.Loop satisfies it.
type SessionSource interface {
	Shared() *game.GameSnapshot
}

// ProgressRouterConfig contains the dependencies of the progress service.
//
// Example usage in tests:
//
//	router := api.NewProgressRouter(api.ProgressRouterConfig{
//	    Store:           store,
//	    RateLimitConfig: &api.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
//	    DisableLogging:  true,
//	})
//	ts := httptest.NewServer(router)
type ProgressRouterConfig struct {
	// Store holds the progress records (required)
	Store ProgressStore

	// RateLimiter is an optional pre-configured rate limiter.
	// If nil, a new one will be created using RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is only used if RateLimiter is nil.
	// If both are nil, uses DefaultRateLimitConfig.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins defaults to any origin
	CORSOrigins []string

	// DisableLogging disables the request logger middleware
	DisableLogging bool
}

// SpectatorRouterConfig contains the dependencies of the read-only feed
type SpectatorRouterConfig struct {
	// Session is the live session (required)
	Session SessionSource

	// Hub serves /ws when set
	Hub *WebSocketHub

	RateLimiter     *IPRateLimiter
	RateLimitConfig *RateLimitConfig
	DisableLogging  bool
}

type progressHandlers struct {
	store ProgressStore
}

type spectatorHandlers struct {
	session SessionSource
}

// NewProgressRouter constructs the progress service router.
//
// It is PURE: no listeners are opened and no goroutines started, so it is
// safe to use with httptest.NewServer.
func NewProgressRouter(cfg ProgressRouterConfig) *chi.Mux {
	r := newBaseRouter("progress", cfg.DisableLogging, cfg.RateLimiter, cfg.RateLimitConfig)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         int((24 * time.Hour).Seconds()),
	}))

	h := &progressHandlers{store: cfg.Store}
	r.Get("/health", handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/progress", h.handleGetProgress)
		r.Post("/progress", h.handlePostProgress)
		r.Get("/leaderboard", h.handleGetLeaderboard)
	})
	return r
}

// NewSpectatorRouter constructs the read-only session feed router
func NewSpectatorRouter(cfg SpectatorRouterConfig) *chi.Mux {
	r := newBaseRouter("spectator", cfg.DisableLogging, cfg.RateLimiter, cfg.RateLimitConfig)

	h := &spectatorHandlers{session: cfg.Session}
	r.Get("/health", handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/session", h.handleGetSession)
		r.Get("/weapons", handleGetWeapons)
	})
	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.HandleWebSocket)
	}
	return r
}

// newBaseRouter installs the middleware shared by both routers.
// Order matters: rate limiting runs before anything expensive.
func newBaseRouter(surface string, disableLogging bool, limiter *IPRateLimiter, limitCfg *RateLimitConfig) *chi.Mux {
	r := chi.NewRouter()
	if !disableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	if limiter == nil {
		c := DefaultRateLimitConfig
		if limitCfg != nil {
			c = *limitCfg
		}
		limiter = NewIPRateLimiter(surface, c)
	}
	r.Use(limiter.Middleware)
	return r
}

// metricsMiddleware records latency and status by route pattern, never by
// raw URL, to keep label cardinality bounded.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RecordRequest(r.Method, endpoint, status, time.Since(start))
	})
}
