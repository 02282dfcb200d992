package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	dom "Sweetshop/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyListPrefix   = "sweet:list:"
	keySearchPrefix = "sweet:search:"
)

// SweetCache caches catalog list and search results in Redis.
type SweetCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSweetCache returns a new SweetCache.
func NewSweetCache(rdb *redis.Client, ttl time.Duration) *SweetCache {
	return &SweetCache{rdb: rdb, ttl: ttl}
}

// ListKey builds the cache key for a list page.
func ListKey(skip, limit int) string {
	return fmt.Sprintf("%d:%d", skip, limit)
}

// SearchKey builds the cache key for a search filter.
func SearchKey(f dom.SweetFilter) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(f.Name)))
	b.WriteByte('|')
	b.WriteString(strings.ToLower(strings.TrimSpace(f.Category)))
	b.WriteByte('|')
	if f.MinPrice != nil {
		fmt.Fprintf(&b, "%g", *f.MinPrice)
	}
	b.WriteByte('|')
	if f.MaxPrice != nil {
		fmt.Fprintf(&b, "%g", *f.MaxPrice)
	}
	return b.String()
}

// GetList returns the cached page or nil on miss.
func (c *SweetCache) GetList(ctx context.Context, key string) ([]dom.Sweet, error) {
	return c.get(ctx, keyListPrefix+key)
}

// SetList stores a list page in cache.
func (c *SweetCache) SetList(ctx context.Context, key string, list []dom.Sweet) error {
	return c.set(ctx, keyListPrefix+key, list)
}

// GetSearch returns the cached search result or nil on miss.
func (c *SweetCache) GetSearch(ctx context.Context, key string) ([]dom.Sweet, error) {
	return c.get(ctx, keySearchPrefix+key)
}

// SetSearch stores a search result in cache.
func (c *SweetCache) SetSearch(ctx context.Context, key string, list []dom.Sweet) error {
	return c.set(ctx, keySearchPrefix+key, list)
}

// InvalidateAll removes every cached list page and search result
// (cache invalidation on write).
func (c *SweetCache) InvalidateAll(ctx context.Context) error {
	for _, prefix := range []string{keyListPrefix, keySearchPrefix} {
		iter := c.rdb.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *SweetCache) get(ctx context.Context, key string) ([]dom.Sweet, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []dom.Sweet
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *SweetCache) set(ctx context.Context, key string, list []dom.Sweet) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
