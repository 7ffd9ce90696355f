package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"cryptotrader/config"
	"cryptotrader/internal/decision"
	"cryptotrader/internal/gateway"
	"cryptotrader/internal/ingest"
	"cryptotrader/internal/logger"
	"cryptotrader/internal/metrics"
	redisstore "cryptotrader/internal/store/redis"
	sqlitestore "cryptotrader/internal/store/sqlite"
	"cryptotrader/internal/window"
	"cryptotrader/pkg/robinhood"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[traderd] starting...")

	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	// ---- Load and validate config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[traderd] config load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[traderd] config invalid: %v", err)
	}
	logger.Init("traderd", logger.ParseLevel(cfg.LogLevel))
	log.Printf("[traderd] tracking %v, retention=%s analysis=%s",
		cfg.Trading.Symbols, cfg.Trading.RetentionHorizon.Std(), cfg.Trading.AnalysisHorizon.Std())

	// ---- Trading API client (fatal on bad credentials) ----
	broker, err := robinhood.New(robinhood.Config{
		APIKey:           cfg.Robinhood.APIKey,
		Base64PrivateKey: cfg.Robinhood.Base64PrivateKey,
		BaseURL:          cfg.Robinhood.BaseURL,
	})
	if err != nil {
		log.Fatalf("[traderd] trading api init failed: %v", err)
	}

	// ---- Core state ----
	win := window.New(cfg.Trading.RetentionHorizon.Std())
	engine := decision.New(cfg.Trading.AnalysisHorizon.Std())
	hub := gateway.NewHub()

	// ---- Durable history: open, restore previous window ----
	os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755)
	hist, err := sqlitestore.Open(sqlitestore.HistoryConfig{DBPath: cfg.Database.SQLitePath})
	if err != nil {
		log.Fatalf("[traderd] sqlite init failed: %v", err)
	}
	defer hist.Close()

	restored, err := hist.LoadAll()
	if err != nil {
		log.Fatalf("[traderd] history restore failed: %v", err)
	}
	win.Restore(restored)
	log.Printf("[traderd] restored %d price points from %s", len(restored), cfg.Database.SQLitePath)

	// ---- Redis latest-price cache (optional) ----
	cache, err := redisstore.New(redisstore.CacheConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Printf("[traderd] WARNING: redis init failed: %v (continuing without redis)", err)
		cache = nil
	}

	// ---- Metrics and health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus(cfg.Trading.Symbols)
	health.SetLastQuoteTime(time.Now())
	metricsSrv := metrics.NewServer(cfg.Server.MetricsAddr, health)
	metricsSrv.Start()
	hub.Metrics = prom

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cache != nil {
		health.StartLivenessChecker(ctx, cache.Client(), hist.DB(), 10*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, hist.DB(), 10*time.Second)
	}

	// ---- Ingestion loop ----
	loop := ingest.New(ingest.Config{
		Symbols:     cfg.Trading.Symbols,
		QuoteEvery:  cfg.Trading.QuoteEvery.Std(),
		DecideEvery: cfg.Trading.DecideEvery.Std(),
		FlushEvery:  cfg.Trading.FlushEvery.Std(),
	}, win, engine, broker, hub)
	loop.Holdings = broker
	loop.Cache = cache
	loop.Store = hist
	loop.Metrics = prom
	loop.Health = health

	if err := loop.Start(ctx); err != nil {
		log.Fatalf("[traderd] ingest start failed: %v", err)
	}

	// ---- HTTP gateway ----
	mux := http.NewServeMux()
	gateway.RegisterRoutes(mux, hub, broker, loop, cfg.Trading.Symbols, time.Now())
	srv := &http.Server{Addr: cfg.Server.ListenAddr, Handler: mux}
	go func() {
		log.Printf("[traderd] gateway listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[traderd] gateway server error: %v", err)
		}
	}()

	// ---- Wait for shutdown signal ----
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[traderd] shutdown signal received, cleaning up...")
	cancel()

	loop.Stop() // final history flush happens here

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	if cache != nil {
		cache.Close()
	}

	log.Println("[traderd] shutdown complete.")
}
