package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const presenceKeyPrefix = "presence:"

// presenceTTL bounds how long a mirror entry outlives a crashed instance.
const presenceTTL = 24 * time.Hour

// PresenceCache mirrors online identities per group into redis so that every
// instance can answer the online-users query.
type PresenceCache interface {
	SetOnline(ctx context.Context, groupID, userID string) error
	SetOffline(ctx context.Context, groupID, userID string) error
	OnlineUsers(ctx context.Context, groupID string) ([]string, error)
}

type redisPresenceCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPresenceCache(rdb *redis.Client, logger *zap.Logger) PresenceCache {
	return &redisPresenceCache{rdb: rdb, logger: logger}
}

func presenceKey(groupID, userID string) string {
	return presenceKeyPrefix + groupID + ":" + userID
}

func (c *redisPresenceCache) SetOnline(ctx context.Context, groupID, userID string) error {
	if err := c.rdb.Set(ctx, presenceKey(groupID, userID), time.Now().UTC().Format(time.RFC3339), presenceTTL).Err(); err != nil {
		return fmt.Errorf("set presence: %w", err)
	}
	return nil
}

func (c *redisPresenceCache) SetOffline(ctx context.Context, groupID, userID string) error {
	if err := c.rdb.Del(ctx, presenceKey(groupID, userID)).Err(); err != nil {
		return fmt.Errorf("delete presence: %w", err)
	}
	return nil
}

// OnlineUsers scans the group's presence keys and returns the user ids.
func (c *redisPresenceCache) OnlineUsers(ctx context.Context, groupID string) ([]string, error) {
	prefix := presenceKeyPrefix + groupID + ":"
	var (
		cursor uint64
		users  []string
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("scan presence: %w", err)
		}
		for _, key := range keys {
			users = append(users, strings.TrimPrefix(key, prefix))
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return users, nil
}
