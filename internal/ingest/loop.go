// Package ingest drives the daemon's three periodic cycles: a fast quote
// fetch, a slower decision pass, and a history flush. Cycles are cron
// jobs guarded by SkipIfStillRunning, so a slow upstream call delays the
// next run of that job instead of stacking a second one on top of it.
package ingest

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"cryptotrader/internal/decision"
	"cryptotrader/internal/holdings"
	"cryptotrader/internal/metrics"
	"cryptotrader/internal/model"
	"cryptotrader/internal/store/redis"
	"cryptotrader/internal/window"
	"cryptotrader/pkg/robinhood"

	"github.com/robfig/cron/v3"
)

// QuoteSource provides best bid/ask quotes for a set of trading pairs.
type QuoteSource interface {
	GetBestBidAsk(ctx context.Context, symbols []string) ([]model.Quote, error)
}

// HoldingsSource provides current account holdings.
type HoldingsSource interface {
	GetHoldings(ctx context.Context, assetCodes ...string) ([]robinhood.Holding, error)
}

// Publisher receives the output of each decision cycle.
type Publisher interface {
	PublishRecommendations(recs map[string]model.Recommendation)
	PublishHoldings(snaps []model.HoldingsSnapshot)
}

// HistoryStore persists the full window snapshot.
type HistoryStore interface {
	Flush(points []model.PricePoint) error
}

// Config holds cycle cadences for the ingestion loop.
type Config struct {
	Symbols []string

	QuoteEvery   time.Duration // default 1s
	DecideEvery  time.Duration // default 15s
	FlushEvery   time.Duration // default 5m
	FetchTimeout time.Duration // default 5s, per upstream call
}

func (c *Config) applyDefaults() {
	if c.QuoteEvery <= 0 {
		c.QuoteEvery = time.Second
	}
	if c.DecideEvery <= 0 {
		c.DecideEvery = 15 * time.Second
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 5 * time.Minute
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 5 * time.Second
	}
}

// Loop owns the scheduler and the latest-price map.
type Loop struct {
	cfg    Config
	cron   *cron.Cron
	win    *window.Window
	engine *decision.Engine
	quotes QuoteSource
	pub    Publisher

	// Optional collaborators; nil disables the corresponding step.
	Holdings HoldingsSource
	Cache    *redis.Cache
	Store    HistoryStore
	Metrics  *metrics.Metrics
	Health   *metrics.HealthStatus

	ctx    context.Context
	cancel context.CancelFunc

	latestMu sync.RWMutex
	latest   map[string]float64
	symbols  map[string]bool

	now func() time.Time
}

// New creates an ingestion loop. Optional collaborators are assigned on
// the returned Loop before Start.
func New(cfg Config, win *window.Window, engine *decision.Engine, quotes QuoteSource, pub Publisher) *Loop {
	cfg.applyDefaults()
	symbols := make(map[string]bool, len(cfg.Symbols))
	for _, s := range cfg.Symbols {
		symbols[s] = true
	}
	return &Loop{
		cfg: cfg,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		win:     win,
		engine:  engine,
		quotes:  quotes,
		pub:     pub,
		latest:  make(map[string]float64),
		symbols: symbols,
		now:     time.Now,
	}
}

// Start registers the cycles and starts the scheduler.
func (l *Loop) Start(ctx context.Context) error {
	l.ctx, l.cancel = context.WithCancel(ctx)

	if _, err := l.cron.AddFunc(every(l.cfg.QuoteEvery), l.quoteCycle); err != nil {
		return fmt.Errorf("register quote cycle: %w", err)
	}
	if _, err := l.cron.AddFunc(every(l.cfg.DecideEvery), l.decideCycle); err != nil {
		return fmt.Errorf("register decision cycle: %w", err)
	}
	if l.Store != nil {
		if _, err := l.cron.AddFunc(every(l.cfg.FlushEvery), l.flushCycle); err != nil {
			return fmt.Errorf("register flush cycle: %w", err)
		}
	}

	l.cron.Start()
	log.Printf("[ingest] scheduler started: quotes every %s, decisions every %s, flush every %s",
		l.cfg.QuoteEvery, l.cfg.DecideEvery, l.cfg.FlushEvery)
	return nil
}

// Stop halts the scheduler and waits for in-flight cycles to finish.
// A final flush runs so a clean shutdown never loses window state.
func (l *Loop) Stop() {
	l.cancel()
	<-l.cron.Stop().Done()
	if l.Store != nil {
		l.flush()
	}
	log.Println("[ingest] scheduler stopped")
}

func every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}

// LatestPrice returns the most recent known price for a symbol.
func (l *Loop) LatestPrice(symbol string) (float64, bool) {
	l.latestMu.RLock()
	defer l.latestMu.RUnlock()
	p, ok := l.latest[symbol]
	return p, ok
}

// LatestPrices returns a copy of the latest-price map.
func (l *Loop) LatestPrices() map[string]float64 {
	l.latestMu.RLock()
	defer l.latestMu.RUnlock()
	out := make(map[string]float64, len(l.latest))
	for k, v := range l.latest {
		out[k] = v
	}
	return out
}

func (l *Loop) quoteCycle() {
	ctx, cancel := context.WithTimeout(l.ctx, l.cfg.FetchTimeout)
	defer cancel()

	quotes, err := l.quotes.GetBestBidAsk(ctx, l.cfg.Symbols)
	if err != nil {
		log.Printf("[ingest] quote fetch failed, skipping cycle: %v", err)
		if l.Metrics != nil {
			l.Metrics.FetchErrors.Inc()
		}
		return
	}

	now := l.now()
	accepted := make([]model.Quote, 0, len(quotes))
	l.latestMu.Lock()
	for _, q := range quotes {
		if !l.symbols[q.Symbol] {
			if l.Metrics != nil {
				l.Metrics.SkippedQuotes.Inc()
			}
			continue
		}
		l.win.Append(model.PricePoint{TS: now, Symbol: q.Symbol, Price: q.Price})
		l.latest[q.Symbol] = q.Price
		accepted = append(accepted, q)
	}
	l.latestMu.Unlock()

	l.win.Prune(now)

	if l.Cache != nil && len(accepted) > 0 {
		l.Cache.SetLatest(ctx, accepted)
	}
	if l.Metrics != nil {
		l.Metrics.QuotesIngested.Add(float64(len(accepted)))
		l.Metrics.RetainedPoints.Set(float64(l.win.Size()))
	}
	if l.Health != nil && len(accepted) > 0 {
		l.Health.SetLastQuoteTime(now)
	}
}

func (l *Loop) decideCycle() {
	start := time.Now()
	recs := l.engine.EvaluateAll(l.win, l.cfg.Symbols, l.now())
	if l.Metrics != nil {
		l.Metrics.DecisionDur.Observe(time.Since(start).Seconds())
		for _, r := range recs {
			l.Metrics.Recommendations.WithLabelValues(string(r.Action)).Inc()
		}
	}

	l.pub.PublishRecommendations(recs)
	if l.Cache != nil {
		ctx, cancel := context.WithTimeout(l.ctx, l.cfg.FetchTimeout)
		l.Cache.PublishRecommendations(ctx, recs)
		cancel()
	}

	l.publishHoldings()
}

// publishHoldings fetches holdings and pushes valued snapshots. A fetch
// failure only skips this topic; recommendations already went out.
func (l *Loop) publishHoldings() {
	if l.Holdings == nil {
		return
	}

	ctx, cancel := context.WithTimeout(l.ctx, l.cfg.FetchTimeout)
	defer cancel()

	held, err := l.Holdings.GetHoldings(ctx, assetCodes(l.cfg.Symbols)...)
	if err != nil {
		log.Printf("[ingest] holdings fetch failed, publishing recommendations only: %v", err)
		if l.Metrics != nil {
			l.Metrics.HoldingsErrors.Inc()
		}
		return
	}

	l.pub.PublishHoldings(holdings.Build(held, l.LatestPrices()))
}

func (l *Loop) flushCycle() { l.flush() }

func (l *Loop) flush() {
	points := l.win.Snapshot()
	start := time.Now()
	if err := l.Store.Flush(points); err != nil {
		log.Printf("[ingest] history flush failed: %v", err)
		return
	}
	if l.Metrics != nil {
		l.Metrics.FlushDur.Observe(time.Since(start).Seconds())
	}
	log.Printf("[ingest] flushed %d price points", len(points))
}

// assetCodes maps trading pair symbols ("BTC-USD") to asset codes ("BTC").
func assetCodes(symbols []string) []string {
	codes := make([]string, 0, len(symbols))
	for _, s := range symbols {
		codes = append(codes, strings.TrimSuffix(s, "-USD"))
	}
	return codes
}
