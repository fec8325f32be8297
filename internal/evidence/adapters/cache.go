package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"veridex/internal/evidence"
	"veridex/internal/listing"
)

// EvidenceCacheTTL enforces retention for cached source responses.
var EvidenceCacheTTL = 5 * time.Minute

// CachedAdapter wraps an adapter with a Redis-backed result cache keyed by
// (source, record). ERROR outcomes are never cached so transient failures
// do not stick for the TTL.
type CachedAdapter struct {
	inner  Adapter
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedAdapter(inner Adapter, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedAdapter {
	if ttl == 0 {
		ttl = EvidenceCacheTTL
	}
	return &CachedAdapter{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *CachedAdapter) Name() string        { return c.inner.Name() }
func (c *CachedAdapter) Weight() float64     { return c.inner.Weight() }
func (c *CachedAdapter) Authoritative() bool { return c.inner.Authoritative() }

func (c *CachedAdapter) key(rec listing.Record) string {
	return fmt.Sprintf("veridex:evidence:%s:%s", c.inner.Name(), rec.ID)
}

func (c *CachedAdapter) Query(ctx context.Context, rec listing.Record) evidence.Entry {
	key := c.key(rec)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var cached evidence.Entry
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached
		}
		// Corrupt payloads fall through to a fresh query.
		c.client.Del(ctx, key)
	}

	entry := c.inner.Query(ctx, rec)
	if entry.Outcome == evidence.OutcomeError {
		return entry
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return entry
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "evidence cache write failed",
			"source", c.inner.Name(),
			"record_id", rec.ID,
			"error", err,
		)
	}
	return entry
}
