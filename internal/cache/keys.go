package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix       = "user:%d"
	ProjectKeyPrefix    = "project:%d"
	RankingKeyPrefix    = "ranking:%s:%d:%d"
	MyPositionKeyPrefix = "ranking:position:%d"
)

const (
	UserTTL     = 5 * time.Minute
	ProjectTTL  = 30 * time.Minute
	RankingTTL  = 2 * time.Minute
	PositionTTL = 2 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ProjectKey(projectID uint) string {
	return fmt.Sprintf(ProjectKeyPrefix, projectID)
}

// RankingKey caches one ranking page keyed by scope and pagination window.
func RankingKey(scope string, skip, limit int) string {
	return fmt.Sprintf(RankingKeyPrefix, scope, skip, limit)
}

func MyPositionKey(userID uint) string {
	return fmt.Sprintf(MyPositionKeyPrefix, userID)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which must populate dest),
// then stores the result with ttl. Cache writes are best-effort.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err == nil && found {
		return nil
	}

	if err := fetch(); err != nil {
		return err
	}

	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateProject(ctx context.Context, projectID uint) {
	Invalidate(ctx, ProjectKey(projectID))
}
