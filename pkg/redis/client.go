package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/somonity/accounts/config"
	"github.com/somonity/accounts/pkg/logger"
	"go.uber.org/zap"
)

// Client caches per-role claim lists so token issuance does not hit the
// database for every login. All methods are no-ops when caching is disabled.
type Client struct {
	rdb *redis.Client
}

func roleClaimsKey(roleID uint) string {
	return fmt.Sprintf("role:claims:%d", roleID)
}

// NewClient connects to Redis, or returns a disabled client when the
// configuration turns caching off.
func NewClient(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	client := &Client{rdb: rdb}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		logger.GetLogger().Error("Failed to connect to Redis",
			zap.String("address", cfg.RedisAddress()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.GetLogger().Info("Successfully connected to Redis",
		zap.String("address", cfg.RedisAddress()),
		zap.Int("database", cfg.Redis.Database),
	)

	return client, nil
}

// Enabled reports whether the cache is backed by a live connection
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// GetRoleClaims retrieves a cached claim list. The second return reports a
// cache hit; errors degrade to a miss so issuance falls back to the store.
func (c *Client) GetRoleClaims(ctx context.Context, roleID uint) ([]string, bool) {
	if !c.Enabled() {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, roleClaimsKey(roleID)).Result()
	if err != nil {
		if err != redis.Nil {
			logger.GetLogger().Error("Failed to get cached role claims",
				zap.Uint("role_id", roleID),
				zap.Error(err),
			)
		}
		return nil, false
	}

	var claims []string
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		logger.GetLogger().Error("Failed to unmarshal cached role claims",
			zap.Uint("role_id", roleID),
			zap.Error(err),
		)
		return nil, false
	}

	return claims, true
}

// SetRoleClaims caches a claim list with the given TTL
func (c *Client) SetRoleClaims(ctx context.Context, roleID uint, claims []string, ttl time.Duration) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(claims)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, roleClaimsKey(roleID), data, ttl).Err(); err != nil {
		logger.GetLogger().Error("Failed to cache role claims",
			zap.Uint("role_id", roleID),
			zap.Duration("ttl", ttl),
			zap.Error(err),
		)
	}
}

// InvalidateRoleClaims drops a cached claim list
func (c *Client) InvalidateRoleClaims(ctx context.Context, roleID uint) {
	if !c.Enabled() {
		return
	}
	if err := c.rdb.Del(ctx, roleClaimsKey(roleID)).Err(); err != nil {
		logger.GetLogger().Error("Failed to invalidate cached role claims",
			zap.Uint("role_id", roleID),
			zap.Error(err),
		)
	}
}
