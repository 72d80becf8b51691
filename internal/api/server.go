package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server wraps one of the routers with its listener and background workers.
type Server struct {
	name        string
	router      *chi.Mux
	wsHub       *WebSocketHub
	session     SessionSource
	rateLimiter *IPRateLimiter

	mu         sync.Mutex
	httpServer *http.Server
}

// NewProgressServer creates the progress service.
//
// IMPORTANT: nothing listens until Start() is called. For testing HTTP
// endpoints use Router() with httptest.
func NewProgressServer(store ProgressStore, limit RateLimitConfig) *Server {
	s := &Server{
		name:        "Progress service",
		rateLimiter: NewIPRateLimiter("progress", limit),
	}
	s.router = NewProgressRouter(ProgressRouterConfig{
		Store:       store,
		RateLimiter: s.rateLimiter,
	})
	return s
}

// NewSpectatorServer creates the read-only live session feed
func NewSpectatorServer(session SessionSource) *Server {
	s := &Server{
		name:        "Spectator feed",
		wsHub:       NewWebSocketHub(),
		session:     session,
		rateLimiter: NewIPRateLimiter("spectator", DefaultRateLimitConfig),
	}
	s.router = NewSpectatorRouter(SpectatorRouterConfig{
		Session:     session,
		Hub:         s.wsHub,
		RateLimiter: s.rateLimiter,
	})
	return s
}

// Start begins serving AND starts background workers. It blocks until the
// listener fails or Shutdown is called, in which case it returns nil.
func (s *Server) Start(addr string) error {
	if s.wsHub != nil {
		go s.wsHub.Run()
		s.wsHub.StartBroadcastLoop(s.session)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()
	log.Printf("🌐 %s starting on %s", s.name, addr)

	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Router returns the HTTP handler for use with httptest.
//
// Example:
//
//	server := api.NewProgressServer(store, api.DefaultRateLimitConfig)
//	ts := httptest.NewServer(server.Router())
//	defer ts.Close()
//	resp, _ := http.Get(ts.URL + "/api/progress")
func (s *Server) Router() http.Handler {
	return s.router
}

// ServerStats is what a server contributes to /debug/stats
type ServerStats struct {
	Limiter    LimiterStats `json:"limiter"`
	Spectators *HubStats    `json:"spectators,omitempty"`
}

// Stats returns the server's limiter and feed counters
func (s *Server) Stats() ServerStats {
	st := ServerStats{Limiter: s.rateLimiter.Stats()}
	if s.wsHub != nil {
		hub := s.wsHub.Stats()
		st.Spectators = &hub
	}
	return st
}

// Shutdown stops accepting requests, waits for in-flight ones and stops the
// background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.wsHub != nil {
		s.wsHub.Stop()
	}
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	log.Printf("🛑 %s shutting down", s.name)
	return srv.Shutdown(ctx)
}
