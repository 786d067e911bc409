// Package cache memoizes filtered ticket lists in Redis, one entry per
// (identity, category, tab, page, page size).
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/lanoanh-osi/ServiceOps/internal/domain"
)

// Query identifies one cached list.
type Query struct {
	Type     domain.TicketType
	Bucket   domain.Bucket
	Page     int
	PageSize int
}

// TicketCache is safe for concurrent use. A nil cache, a nil client or a zero
// TTL disables it.
type TicketCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewTicketCache builds a cache under prefix.
func NewTicketCache(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *TicketCache {
	if prefix == "" {
		prefix = "fieldops"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketCache{client: client, prefix: strings.TrimRight(prefix, ":"), ttl: ttl, logger: logger}
}

// Enabled reports whether entries are stored.
func (c *TicketCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns a cached page. Misses and Redis failures both report false.
func (c *TicketCache) Get(ctx context.Context, id domain.Identity, q Query) (domain.TicketPage, bool) {
	if !c.Enabled() || id.IsZero() {
		return domain.TicketPage{}, false
	}
	raw, err := c.client.Get(ctx, c.entryKey(id, q)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("ticket cache read failed", zap.Error(err))
		}
		return domain.TicketPage{}, false
	}
	var page domain.TicketPage
	if err := json.Unmarshal(raw, &page); err != nil {
		c.logger.Warn("discarding unreadable ticket cache entry", zap.Error(err))
		return domain.TicketPage{}, false
	}
	return page, true
}

// Set stores page and records its key in the identity's index.
func (c *TicketCache) Set(ctx context.Context, id domain.Identity, q Query, page domain.TicketPage) {
	if !c.Enabled() || id.IsZero() {
		return
	}
	encoded, err := json.Marshal(page)
	if err != nil {
		c.logger.Warn("ticket cache encode failed", zap.Error(err))
		return
	}
	key := c.entryKey(id, q)
	index := c.indexKey(id)

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, encoded, c.ttl)
		pipe.SAdd(ctx, index, key)
		pipe.Expire(ctx, index, c.ttl)
		return nil
	})
	if err != nil {
		c.logger.Warn("ticket cache write failed", zap.Error(err))
	}
}

// Invalidate drops every list cached for id.
func (c *TicketCache) Invalidate(ctx context.Context, id domain.Identity) error {
	if !c.Enabled() || id.IsZero() {
		return nil
	}
	index := c.indexKey(id)
	keys, err := c.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("read ticket cache index: %w", err)
	}
	keys = append(keys, index)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("drop ticket cache: %w", err)
	}
	return nil
}

func (c *TicketCache) entryKey(id domain.Identity, q Query) string {
	return fmt.Sprintf("%s:tickets:%s:%s:%s:%d:%d", c.prefix, identityKey(id), q.Type, q.Bucket, q.Page, q.PageSize)
}

func (c *TicketCache) indexKey(id domain.Identity) string {
	return fmt.Sprintf("%s:tickets:%s:index", c.prefix, identityKey(id))
}

// identityKey hashes the identity so keys carry no email addresses.
func identityKey(id domain.Identity) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(id.Email) + "\x00" + id.StaffCode))
	return hex.EncodeToString(sum[:16])
}
