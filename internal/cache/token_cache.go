package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the token is not cached.
var ErrMiss = errors.New("token not cached")

// CachedToken is what the cache remembers about a live access token.
type CachedToken struct {
	UserID uint
	Hash   string
}

// TokenCache keeps live access tokens in Redis so authenticated requests
// can skip the database. A nil client turns every call into a no-op
// (Get always misses).
type TokenCache struct {
	client *redis.Client
}

func NewTokenCache(client *redis.Client) *TokenCache {
	return &TokenCache{client: client}
}

func (c *TokenCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Set caches the token until ttl elapses.
func (c *TokenCache) Set(ctx context.Context, tokenID string, token CachedToken, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Set(ctx, key(tokenID), encode(token), ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

func (c *TokenCache) Get(ctx context.Context, tokenID string) (*CachedToken, error) {
	if !c.Enabled() {
		return nil, ErrMiss
	}
	val, err := c.client.Get(ctx, key(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached token: %w", err)
	}
	token, err := decode(val)
	if err != nil {
		return nil, ErrMiss
	}
	return token, nil
}

// Delete evicts the token. Evicting an uncached token is not an error.
func (c *TokenCache) Delete(ctx context.Context, tokenID string) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Del(ctx, key(tokenID)).Err(); err != nil {
		return fmt.Errorf("failed to evict token: %w", err)
	}
	return nil
}

func key(tokenID string) string {
	return "access_token:" + tokenID
}

func encode(t CachedToken) string {
	return strconv.FormatUint(uint64(t.UserID), 10) + ":" + t.Hash
}

func decode(val string) (*CachedToken, error) {
	idPart, hash, ok := strings.Cut(val, ":")
	if !ok || hash == "" {
		return nil, fmt.Errorf("malformed cached token %q", val)
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("malformed cached token %q", val)
	}
	return &CachedToken{UserID: uint(id), Hash: hash}, nil
}
