package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trading daemon.
type Metrics struct {
	QuotesIngested prometheus.Counter
	FetchErrors    prometheus.Counter
	SkippedQuotes  prometheus.Counter

	DecisionDur     prometheus.Histogram
	Recommendations *prometheus.CounterVec // labels: action

	HoldingsErrors prometheus.Counter
	FlushDur       prometheus.Histogram

	RetainedPoints prometheus.Gauge
	WSClients      prometheus.Gauge
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		QuotesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traderd_quotes_ingested_total",
			Help: "Total bid/ask quotes appended to the price window",
		}),
		FetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traderd_quote_fetch_errors_total",
			Help: "Failed best-bid-ask fetch cycles",
		}),
		SkippedQuotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traderd_quotes_skipped_total",
			Help: "Quotes dropped (malformed price or unknown symbol)",
		}),
		DecisionDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "traderd_decision_duration_seconds",
			Help:    "Decision cycle latency over all symbols",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		Recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "traderd_recommendations_total",
			Help: "Recommendations produced (by action)",
		}, []string{"action"}),
		HoldingsErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "traderd_holdings_fetch_errors_total",
			Help: "Failed holdings fetches during decision cycles",
		}),
		FlushDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "traderd_history_flush_duration_seconds",
			Help:    "SQLite history flush latency",
			Buckets: prometheus.DefBuckets,
		}),
		RetainedPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traderd_retained_price_points",
			Help: "Price points currently held in the sliding window",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "traderd_ws_clients",
			Help: "Connected WebSocket clients",
		}),
	}

	prometheus.MustRegister(
		m.QuotesIngested,
		m.FetchErrors,
		m.SkippedQuotes,
		m.DecisionDur,
		m.Recommendations,
		m.HoldingsErrors,
		m.FlushDur,
		m.RetainedPoints,
		m.WSClients,
	)

	return m
}

// HealthStatus represents the daemon's health.
type HealthStatus struct {
	mu sync.RWMutex

	LastQuoteTime  time.Time
	RedisConnected bool
	SQLiteOK       bool
	Symbols        []string

	RedisLatencyMs  float64
	SQLiteLatencyMs float64
	LastCheckAt     time.Time
	StartedAt       time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus(symbols []string) *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
		Symbols:   symbols,
	}
}

func (h *HealthStatus) SetLastQuoteTime(t time.Time) {
	h.mu.Lock()
	h.LastQuoteTime = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// CheckSQLite runs a trivial query and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db *sql.DB) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.SQLiteOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
// Either client may be nil; the corresponding probe is skipped.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(probeCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(probeCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK

	quoteAge := ""
	stale := false
	if !h.LastQuoteTime.IsZero() {
		age := time.Since(h.LastQuoteTime)
		quoteAge = age.Round(time.Millisecond).String()
		stale = age > time.Minute
	}
	if stale || !h.SQLiteOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	status := struct {
		Status          string   `json:"status"`
		Uptime          string   `json:"uptime"`
		Symbols         []string `json:"symbols"`
		LastQuoteTime   string   `json:"last_quote_time"`
		QuoteAge        string   `json:"quote_age"`
		RedisConnected  bool     `json:"redis_connected"`
		RedisLatencyMs  float64  `json:"redis_latency_ms"`
		SQLiteOK        bool     `json:"sqlite_ok"`
		SQLiteLatencyMs float64  `json:"sqlite_latency_ms"`
		LastCheckAt     string   `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		Symbols:         h.Symbols,
		LastQuoteTime:   h.LastQuoteTime.Format(time.RFC3339),
		QuoteAge:        quoteAge,
		RedisConnected:  h.RedisConnected,
		SQLiteOK:        h.SQLiteOK,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		RedisLatencyMs:  h.RedisLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server.
func NewServer(addr string, health *HealthStatus) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
