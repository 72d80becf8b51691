package api

import (
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arena-shooter/internal/game"
)

// Metrics with bounded cardinality (no per-player or per-session labels)
var (
	// Session loop metrics
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Time spent in one session tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025},
	})

	renderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_render_duration_seconds",
		Help:    "Time spent rendering a frame",
		Buckets: []float64{0.001, 0.005, 0.01, 0.016, 0.033, 0.05},
	})

	enemyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_enemy_count",
		Help: "Enemies currently in the arena",
	})

	projectileCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arena_projectile_count",
		Help: "Live projectiles",
	})

	sessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_sessions_total",
		Help: "Finished sessions by outcome",
	}, []string{"outcome"}) // Bounded: "won", "lost"

	killsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_kills_total",
		Help: "Enemies destroyed across finished sessions",
	})

	progressFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "progress_failures_total",
		Help: "Failed calls to the progress service",
	}, []string{"op"}) // Bounded: "fetch", "save"

	// Event log metrics
	eventLogTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_total",
		Help: "Total events logged",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Events dropped due to rate limiting or buffer full",
	})

	// DoS detection metrics - use ONLY bounded label values
	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // Bounded: "rate_limit", "origin", "ws_total_limit", "ws_ip_limit"

	rateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Requests refused with 429 by surface and request class",
	}, []string{"surface", "class"}) // Bounded: progress|spectator x read|write

	// HTTP metrics with bounded labels
	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"}) // endpoint is path pattern, not full URL

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	// WebSocket metrics
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total WebSocket messages sent",
	})
)

// ObservabilityConfig configures the debug server
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // loopback only unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultObservabilityConfig returns safe defaults
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// isLoopback reports whether addr binds to a loopback interface
func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// StartDebugServer starts the internal observability server.
// pprof must never be reachable from outside the machine.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("📊 Debug server disabled")
		return nil
	}

	if !isLoopback(cfg.ListenAddr) && os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
		log.Printf("⚠️ Debug server forced to localhost (requested %s)", cfg.ListenAddr)
		cfg.ListenAddr = DefaultObservabilityConfig().ListenAddr
	}

	var handler http.Handler = debugMux()
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, handler)
	}

	go func() {
		log.Printf("📊 Debug server starting on %s", cfg.ListenAddr)
		log.Printf("   - pprof:   http://%s/debug/pprof/", cfg.ListenAddr)
		log.Printf("   - metrics: http://%s/metrics", cfg.ListenAddr)
		log.Printf("   - stats:   http://%s/debug/stats", cfg.ListenAddr)

		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("⚠️ Debug server error: %v", err)
		}
	}()

	return nil
}

func debugMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/debug/stats", handleDebugStats)
	mux.HandleFunc("/health", handleHealth)
	return mux
}

var (
	statsMu      sync.RWMutex
	statsSources = map[string]func() interface{}{}
)

// RegisterStats publishes fn's result under name on /debug/stats.
// Registering a name again replaces the previous source.
func RegisterStats(name string, fn func() interface{}) {
	statsMu.Lock()
	defer statsMu.Unlock()
	statsSources[name] = fn
}

func handleDebugStats(w http.ResponseWriter, r *http.Request) {
	statsMu.RLock()
	names := make([]string, 0, len(statsSources))
	for name := range statsSources {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make(map[string]interface{}, len(names))
	for _, name := range names {
		out[name] = statsSources[name]()
	}
	statsMu.RUnlock()

	writeJSON(w, out)
}

// basicAuthMiddleware adds basic authentication to the handler
func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick records tick timing and arena population.
// It matches the loop's per-tick callback.
func RecordTick(duration time.Duration, snap *game.GameSnapshot) {
	tickDuration.Observe(duration.Seconds())
	if snap == nil {
		return
	}
	enemyCount.Set(float64(len(snap.Enemies)))
	projectileCount.Set(float64(len(snap.Projectiles)))
}

// RecordRender records render timing for metrics
func RecordRender(duration time.Duration) {
	renderDuration.Observe(duration.Seconds())
}

// RecordSession counts a finished session
func RecordSession(sum game.Summary) {
	outcome := "lost"
	if sum.Won {
		outcome = "won"
	}
	sessionsTotal.WithLabelValues(outcome).Inc()
	killsTotal.Add(float64(sum.Kills))
}

// RecordProgressFailure counts a failed progress call.
// op must be "fetch" or "save".
func RecordProgressFailure(op string, err error) {
	progressFailures.WithLabelValues(op).Inc()
}

// EventLogStatsTracker turns the event log's cumulative totals into counter
// increments. It is not safe for concurrent use.
type EventLogStatsTracker struct {
	lastTotal   uint64
	lastDropped uint64
}

// Update adds the growth since the previous call
func (t *EventLogStatsTracker) Update(total, dropped uint64) {
	if total > t.lastTotal {
		eventLogTotal.Add(float64(total - t.lastTotal))
	}
	if dropped > t.lastDropped {
		eventLogDropped.Add(float64(dropped - t.lastDropped))
	}
	t.lastTotal, t.lastDropped = total, dropped
}

// RecordConnectionRejected increments the rejection counter
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRateLimited counts a 429 on one surface
func RecordRateLimited(surface, class string) {
	rateLimited.WithLabelValues(surface, class).Inc()
	connectionRejected.WithLabelValues("rate_limit").Inc()
}

// RecordRequest records HTTP request metrics
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections updates WebSocket connection count
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages increments WebSocket message counter
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
