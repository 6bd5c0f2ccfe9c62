package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/shorty/internal/shortener"
)

// AccountCache wraps an AccountRepository with Redis caching for API key
// lookups. Misses are not cached, so a newly provisioned key works at once.
// A non-positive TTL disables caching and every call goes to the store.
type AccountCache struct {
	store  shortener.AccountRepository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewAccountCache creates a new Redis-cached account repository decorator.
func NewAccountCache(
	store shortener.AccountRepository, client *redis.Client, ttl time.Duration,
) *AccountCache {
	return &AccountCache{
		store:  store,
		client: client,
		prefix: "account:key:",
		ttl:    ttl,
	}
}

// FindByAPIKey checks the cache first, then the underlying store.
func (c *AccountCache) FindByAPIKey(ctx context.Context, apiKey string) (*shortener.Account, error) {
	if !c.enabled() {
		return c.store.FindByAPIKey(ctx, apiKey)
	}

	if account, err := c.getFromCache(ctx, apiKey); err == nil {
		return account, nil
	}

	account, err := c.store.FindByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	c.cacheAccount(ctx, account)

	return account, nil
}

// Ensure delegates to the store and drops any cached entry for the key.
func (c *AccountCache) Ensure(ctx context.Context, account *shortener.Account) error {
	if err := c.store.Ensure(ctx, account); err != nil {
		return err
	}

	if c.enabled() {
		c.client.Del(ctx, c.prefix+account.APIKey)
	}

	return nil
}

func (c *AccountCache) enabled() bool {
	return c.client != nil && c.ttl > 0
}

func (c *AccountCache) getFromCache(ctx context.Context, apiKey string) (*shortener.Account, error) {
	result, err := c.client.HGetAll(ctx, c.prefix+apiKey).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	account := &shortener.Account{
		ID:     result["id"],
		APIKey: apiKey,
	}

	if nanos, err := strconv.ParseInt(result["created_at"], 10, 64); err == nil {
		account.CreatedAt = time.Unix(0, nanos)
	}

	if nanos, err := strconv.ParseInt(result["updated_at"], 10, 64); err == nil {
		account.UpdatedAt = time.Unix(0, nanos)
	}

	return account, nil
}

func (c *AccountCache) cacheAccount(ctx context.Context, account *shortener.Account) {
	key := c.prefix + account.APIKey

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"id":         account.ID,
		"created_at": account.CreatedAt.UnixNano(),
		"updated_at": account.UpdatedAt.UnixNano(),
	})
	pipe.Expire(ctx, key, c.ttl)

	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ shortener.AccountRepository = (*AccountCache)(nil)
