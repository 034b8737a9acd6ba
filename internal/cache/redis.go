package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oggyb/movienight/internal/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	Client   *redis.Client
	TokenTTL time.Duration
}

// NewRedisCache initializes Redis client from config.
// Only Addr is mandatory, Password/DB are optional.
func NewRedisCache(cfg *config.Config) *RedisCache {
	opts := &redis.Options{
		Addr: cfg.Redis.Addr,
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}
	ttl := cfg.Redis.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{Client: redis.NewClient(opts), TokenTTL: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}

// KeyForToken generates the Redis key holding the owner of a valid token.
func (c *RedisCache) KeyForToken(token string) string {
	return "auth:token:" + token
}

// KeyForUserTokens generates the Redis key of the set of a user's cached tokens.
func (c *RedisCache) KeyForUserTokens(userID uint64) string {
	return fmt.Sprintf("auth:user:%d:tokens", userID)
}

// CacheToken remembers that token is valid for userID.
// The token is also indexed per user so PurgeUserTokens can find it.
func (c *RedisCache) CacheToken(ctx context.Context, token string, userID uint64) error {
	setKey := c.KeyForUserTokens(userID)
	_, err := c.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, c.KeyForToken(token), userID, c.TokenTTL)
		p.SAdd(ctx, setKey, token)
		p.Expire(ctx, setKey, c.TokenTTL)
		return nil
	})
	return err
}

// TokenUser returns the cached owner of token. ok is false on a cache miss.
func (c *RedisCache) TokenUser(ctx context.Context, token string) (userID uint64, ok bool, err error) {
	key := c.KeyForToken(token)
	val, err := c.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil // cache miss
	} else if err != nil {
		return 0, false, err
	}
	userID, err = strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt token cache entry: %w", err)
	}
	// refresh TTL on access; the index must outlive the token key or a purge misses it
	_, err = c.Client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Expire(ctx, key, c.TokenTTL)
		p.Expire(ctx, c.KeyForUserTokens(userID), c.TokenTTL)
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("refresh token ttl: %w", err)
	}
	return userID, true, nil
}

// EvictToken drops a single cached token of userID.
func (c *RedisCache) EvictToken(ctx context.Context, token string, userID uint64) error {
	_, err := c.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, c.KeyForToken(token))
		p.SRem(ctx, c.KeyForUserTokens(userID), token)
		return nil
	})
	return err
}

// PurgeUserTokens drops every cached token of userID.
func (c *RedisCache) PurgeUserTokens(ctx context.Context, userID uint64) error {
	setKey := c.KeyForUserTokens(userID)
	tokens, err := c.Client.SMembers(ctx, setKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, c.KeyForToken(t))
	}
	keys = append(keys, setKey)
	return c.Client.Del(ctx, keys...).Err()
}

// PurgeAuthKeys drops every cached token and token index. Used when the
// token table is wiped underneath the cache.
func (c *RedisCache) PurgeAuthKeys(ctx context.Context) error {
	var keys []string
	iter := c.Client.Scan(ctx, 0, "auth:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan auth keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}
