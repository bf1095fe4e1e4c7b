package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = 7 * 24 * time.Hour
	redisKeyPrefix  = "careerflow:company:"
)

// Cache stores researched company info by normalized company name.
type Cache interface {
	Get(ctx context.Context, key string) (*CompanyInfo, bool, error)
	Set(ctx context.Context, key string, info *CompanyInfo) error
}

// CacheKey normalizes a company name so "Google", " google " and "GOOGLE" share an entry.
func CacheKey(company string) string {
	return strings.Join(strings.Fields(strings.ToLower(company)), " ")
}

type memoryItem struct {
	info    CompanyInfo
	expires time.Time
}

// MemoryCache is a process-local cache with a fixed TTL.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &MemoryCache{items: make(map[string]memoryItem), ttl: ttl, now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string) (*CompanyInfo, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[key]
	if !ok || m.now().After(item.expires) {
		return nil, false, nil
	}
	info := item.info.clone()
	return &info, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, info *CompanyInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = memoryItem{info: info.clone(), expires: m.now().Add(m.ttl)}
	return nil
}

// RedisCache keeps company info as JSON strings with an expiry.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) (*CompanyInfo, bool, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get company %q: %w", key, err)
	}

	var info CompanyInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, false, fmt.Errorf("decode cached company %q: %w", key, err)
	}
	return &info, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, info *CompanyInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode company %q: %w", key, err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set company %q: %w", key, err)
	}
	return nil
}
