package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"teams-meeting-bridge/internal/config"
)

const (
	lockKeyPrefix     = "msauth:lock:"
	lockRetryInterval = 100 * time.Millisecond
)

// ErrLockTimeout is returned when a lock could not be taken within the wait budget
var ErrLockTimeout = errors.New("redis: timed out waiting for lock")

// releaseScript deletes the lock only if it is still held by the caller
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisClient struct {
	Client   *redis.Client
	lockTTL  time.Duration
	lockWait time.Duration
	logger   *zap.Logger
}

func NewRedisClient(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*RedisClient, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected successfully",
		zap.String("addr", addr),
		zap.Int("db", cfg.Redis.DB),
	)

	r := &RedisClient{
		Client:   client,
		lockTTL:  cfg.Redis.LockTTL,
		lockWait: cfg.Redis.LockWait,
		logger:   logger,
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return r.Close()
		},
	})

	return r, nil
}

// LockKey returns the redis key guarding a user's auth flow.
func LockKey(userID string) string {
	return lockKeyPrefix + userID
}

// LockUser takes the per-user auth lock, polling until lockWait elapses.
// The returned func releases the lock if it is still ours.
func (r *RedisClient) LockUser(ctx context.Context, userID string) (func(context.Context) error, error) {
	key := LockKey(userID)
	owner := uuid.NewString()
	deadline := time.Now().Add(r.lockWait)

	for {
		ok, err := r.Client.SetNX(ctx, key, owner, r.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			r.logger.Debug("Lock acquired", zap.String("key", key))
			return func(ctx context.Context) error {
				return releaseScript.Run(ctx, r.Client, []string{key}, owner).Err()
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}
