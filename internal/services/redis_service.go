package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omerg864/SecuRent-sub001/internal/database"
	"github.com/omerg864/SecuRent-sub001/internal/models"
)

type RedisService struct {
	client *database.RedisClient
}

func NewRedisService(client *database.RedisClient) *RedisService {
	return &RedisService{
		client: client,
	}
}

func presenceKey(role models.Role, identity string) string {
	return fmt.Sprintf("presence:%s:%s", role, identity)
}

func onlineSetKey(role models.Role) string {
	return fmt.Sprintf("online:%s", role)
}

// =============================================================================
// Presence
// =============================================================================

func (r *RedisService) SetOnline(ctx context.Context, role models.Role, identity string) error {
	pipe := r.client.GetClient().Pipeline()

	pipe.SAdd(ctx, onlineSetKey(role), identity)
	pipe.HSet(ctx, presenceKey(role, identity), map[string]interface{}{
		"status":    "online",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, presenceKey(role, identity), 5*time.Minute)

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("Failed to set principal online", "role", role, "identity", identity, "error", err)
		return err
	}
	return nil
}

func (r *RedisService) SetOffline(ctx context.Context, role models.Role, identity string) error {
	pipe := r.client.GetClient().Pipeline()

	pipe.SRem(ctx, onlineSetKey(role), identity)
	pipe.HSet(ctx, presenceKey(role, identity), map[string]interface{}{
		"status":    "offline",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, presenceKey(role, identity), 5*time.Minute)

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("Failed to set principal offline", "role", role, "identity", identity, "error", err)
		return err
	}
	return nil
}

func (r *RedisService) IsOnline(ctx context.Context, role models.Role, identity string) (bool, error) {
	return r.client.GetClient().SIsMember(ctx, onlineSetKey(role), identity).Result()
}

func (r *RedisService) OnlineCount(ctx context.Context, role models.Role) (int64, error) {
	return r.client.GetClient().SCard(ctx, onlineSetKey(role)).Result()
}

// =============================================================================
// Rate limiting (sliding window)
// =============================================================================

func (r *RedisService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).Unix()

	pipe := r.client.GetClient().Pipeline()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))

	// Count current entries
	pipe.ZCard(ctx, key)

	// Add current request
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})

	// Set expiration
	pipe.Expire(ctx, key, window)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}

	count := results[1].(*redis.IntCmd).Val()

	return count < int64(limit), nil
}
