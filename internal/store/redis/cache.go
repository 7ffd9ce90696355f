// Package redis caches the latest observed quote per symbol and fans out
// recommendation updates over pub/sub for external consumers.
//
// The daemon runs fine without Redis; callers hold a nil *Cache in that
// case and skip it.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"cryptotrader/internal/model"

	goredis "github.com/go-redis/redis/v8"
)

const (
	latestTTL = 30 * time.Minute

	// RecommendationsChannel carries the full recommendation mapping,
	// JSON-encoded, once per decision cycle.
	RecommendationsChannel = "pub:recommendations"
)

// CacheConfig configures the Redis connection.
type CacheConfig struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int
}

// Cache wraps a Redis client for quote caching and rec pub/sub.
type Cache struct {
	client *goredis.Client
}

// Client returns the underlying Redis client for health checks.
func (c *Cache) Client() *goredis.Client { return c.client }

// New connects and pings the server.
func New(cfg CacheConfig) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Cache{client: client}, nil
}

// SetLatest writes each quote to its TTL'd latest key in one pipeline.
func (c *Cache) SetLatest(ctx context.Context, quotes []model.Quote) {
	if len(quotes) == 0 {
		return
	}
	pipe := c.client.Pipeline()
	for _, q := range quotes {
		key := "quote:latest:" + q.Symbol
		pipe.Set(ctx, key, strconv.FormatFloat(q.Price, 'f', -1, 64), latestTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[redis] latest-quote pipeline error (%d quotes): %v", len(quotes), err)
	}
}

// GetLatest returns the cached price for a symbol.
// ok is false when the key is missing, expired, or unreadable.
func (c *Cache) GetLatest(ctx context.Context, symbol string) (float64, bool) {
	v, err := c.client.Get(ctx, "quote:latest:"+symbol).Result()
	if err != nil {
		if err != goredis.Nil {
			log.Printf("[redis] get latest %s: %v", symbol, err)
		}
		return 0, false
	}
	price, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return price, true
}

// PublishRecommendations broadcasts the cycle's full mapping.
func (c *Cache) PublishRecommendations(ctx context.Context, recs map[string]model.Recommendation) {
	data, err := json.Marshal(recs)
	if err != nil {
		log.Printf("[redis] encode recommendations: %v", err)
		return
	}
	if err := c.client.Publish(ctx, RecommendationsChannel, data).Err(); err != nil {
		log.Printf("[redis] publish recommendations: %v", err)
	}
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
