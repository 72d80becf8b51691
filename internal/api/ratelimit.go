package api

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the per-IP token buckets. Reads and writes are
// metered separately so polling the leaderboard never eats into the budget
// for saving a session result.
type RateLimitConfig struct {
	RequestsPerSecond float64 // reads per second per IP
	Burst             int
	WritesPerSecond   float64 // POSTs per second per IP; 0 uses RequestsPerSecond
	WriteBurst        int     // 0 uses Burst
	CleanupInterval   time.Duration
}

// DefaultRateLimitConfig suits one arena client per address: it saves at
// most once per session and polls a little more often.
var DefaultRateLimitConfig = RateLimitConfig{
	RequestsPerSecond: 10,
	Burst:             20,
	WritesPerSecond:   1,
	WriteBurst:        5,
	CleanupInterval:   5 * time.Minute,
}

type requestClass uint8

const (
	classRead requestClass = iota
	classWrite
	numClasses
)

func (c requestClass) String() string {
	if c == classWrite {
		return "write"
	}
	return "read"
}

func classify(r *http.Request) requestClass {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return classWrite
	}
	return classRead
}

type bucketKey struct {
	ip    string
	class requestClass
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter meters one HTTP surface. Idle buckets are swept on the
// request path once per CleanupInterval, so there is nothing to stop.
type IPRateLimiter struct {
	surface string // "progress" or "spectator"
	limits  [numClasses]rate.Limit
	bursts  [numClasses]int
	idleTTL time.Duration

	mu        sync.Mutex
	buckets   map[bucketKey]*bucket
	lastSweep time.Time

	allowed  [numClasses]atomic.Uint64
	rejected [numClasses]atomic.Uint64
}

// NewIPRateLimiter creates the limiter for one surface
func NewIPRateLimiter(surface string, cfg RateLimitConfig) *IPRateLimiter {
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultRateLimitConfig.CleanupInterval
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.WritesPerSecond <= 0 {
		cfg.WritesPerSecond = cfg.RequestsPerSecond
	}
	if cfg.WriteBurst <= 0 {
		cfg.WriteBurst = cfg.Burst
	}

	rl := &IPRateLimiter{
		surface:   surface,
		idleTTL:   cfg.CleanupInterval,
		buckets:   make(map[bucketKey]*bucket),
		lastSweep: time.Now(),
	}
	rl.limits[classRead], rl.bursts[classRead] = rate.Limit(cfg.RequestsPerSecond), cfg.Burst
	rl.limits[classWrite], rl.bursts[classWrite] = rate.Limit(cfg.WritesPerSecond), cfg.WriteBurst
	return rl
}

func (rl *IPRateLimiter) allow(ip string, class requestClass) bool {
	now := time.Now()

	rl.mu.Lock()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweepLocked(now)
	}
	key := bucketKey{ip: ip, class: class}
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limits[class], rl.bursts[class])}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	ok = b.limiter.AllowN(now, 1)
	rl.mu.Unlock()

	if ok {
		rl.allowed[class].Add(1)
	} else {
		rl.rejected[class].Add(1)
	}
	return ok
}

// sweepLocked drops buckets idle for two intervals
func (rl *IPRateLimiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-2 * rl.idleTTL)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
	rl.lastSweep = now
}

// Middleware rejects requests over the caller's bucket with 429
func (rl *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		class := classify(r)
		if !rl.allow(GetClientIP(r), class) {
			RecordRateLimited(rl.surface, class.String())
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClassStats counts decisions for one request class
type ClassStats struct {
	Allowed  uint64 `json:"allowed"`
	Rejected uint64 `json:"rejected"`
}

// LimiterStats is served on /debug/stats
type LimiterStats struct {
	Surface string     `json:"surface"`
	Buckets int        `json:"buckets"` // live per-IP buckets
	Reads   ClassStats `json:"reads"`
	Writes  ClassStats `json:"writes"`
}

// Stats returns the limiter's counters
func (rl *IPRateLimiter) Stats() LimiterStats {
	rl.mu.Lock()
	n := len(rl.buckets)
	rl.mu.Unlock()
	return LimiterStats{
		Surface: rl.surface,
		Buckets: n,
		Reads:   ClassStats{Allowed: rl.allowed[classRead].Load(), Rejected: rl.rejected[classRead].Load()},
		Writes:  ClassStats{Allowed: rl.allowed[classWrite].Load(), Rejected: rl.rejected[classWrite].Load()},
	}
}

// GetClientIP extracts the client IP from an HTTP request.
// X-Forwarded-For can be spoofed unless a trusted proxy sets it.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// spectatorSlots caps live feed connections overall and per address.
// Both counts are reserved together so concurrent upgrades cannot overshoot.
type spectatorSlots struct {
	maxTotal int
	maxPerIP int

	mu       sync.Mutex
	total    int
	perIP    map[string]int
	rejected atomic.Uint64
}

func newSpectatorSlots(maxTotal, maxPerIP int) *spectatorSlots {
	return &spectatorSlots{maxTotal: maxTotal, maxPerIP: maxPerIP, perIP: make(map[string]int)}
}

// acquire reserves a slot for ip. On refusal it returns the metric reason.
func (s *spectatorSlots) acquire(ip string) (reason string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.total >= s.maxTotal:
		reason = "ws_total_limit"
	case s.perIP[ip] >= s.maxPerIP:
		reason = "ws_ip_limit"
	default:
		s.total++
		s.perIP[ip]++
		return "", true
	}
	s.rejected.Add(1)
	return reason, false
}

func (s *spectatorSlots) release(ip string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.perIP[ip]
	if !ok {
		log.Printf("⚠️ Spectator slot released twice for %s", ip)
		return
	}
	if n <= 1 {
		delete(s.perIP, ip)
	} else {
		s.perIP[ip] = n - 1
	}
	s.total--
}

// SlotStats is served on /debug/stats
type SlotStats struct {
	Active   int    `json:"active"`
	Peers    int    `json:"peers"` // distinct addresses
	Rejected uint64 `json:"rejected"`
}

func (s *spectatorSlots) stats() SlotStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SlotStats{Active: s.total, Peers: len(s.perIP), Rejected: s.rejected.Load()}
}

// AllowedOrigins lists the exact origins accepted besides loopback ones
var AllowedOrigins = []string{
	"http://localhost",
	"http://127.0.0.1",
}

// IsAllowedOrigin checks if an origin is in the allowed list.
// Any port on localhost or 127.0.0.1 is accepted.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	if strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:") {
		return true
	}

	for _, allowed := range AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}
