// Package cache stores rendered download responses in Redis so repeated
// requests for the same galley skip the rewrite pipeline. Redis being
// down never breaks a download: every failure reads as a cache miss.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"galleyd/internal/config"
)

const keyPrefix = "galleyd:cache:"

// Entry is one cached download response, including the metadata needed
// to replay it and to record a usage event for the replay.
type Entry struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type"`
	Disposition string    `json:"disposition"`
	FileName    string    `json:"file_name"`
	Kind        string    `json:"kind"`
	StatusCode  int       `json:"status_code"`
	Timestamp   time.Time `json:"timestamp"`
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg config.RedisConfig, ttl time.Duration) (*Cache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Cache{client: client, ttl: ttl}, nil
}

// Close releases the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// generateKey derives the cache key from the request path and query, so
// locale and inline variants cache separately.
func (c *Cache) generateKey(r *http.Request) string {
	h := xxhash.New()
	h.WriteString(r.URL.Path)
	h.WriteString("?")
	h.WriteString(r.URL.RawQuery)
	return fmt.Sprintf("%s%016x", keyPrefix, h.Sum64())
}

// Get returns the cached entry for r, or nil on a miss. Redis errors
// and undecodable entries also read as misses.
func (c *Cache) Get(r *http.Request) *Entry {
	data, err := c.client.Get(r.Context(), c.generateKey(r)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("Cache read failed", "error", err)
		}
		return nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Debug("Discarding undecodable cache entry", "error", err)
		return nil
	}
	return &entry
}

// Set stores entry under r's key for the configured TTL.
func (c *Cache) Set(r *http.Request, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := c.client.Set(r.Context(), c.generateKey(r), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}
