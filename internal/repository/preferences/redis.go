package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis"

	"github.com/xpanvictor/liveslides/internal/domains/preferences"
)

// RedisRepo keeps the preferences blob as one JSON string under a fixed key.
type RedisRepo struct {
	rc  *redis.Client
	key string
}

func NewRedisRepo(rc *redis.Client, key string) *RedisRepo {
	if key == "" {
		key = preferences.StorageKey
	}
	return &RedisRepo{rc: rc, key: key}
}

// Load implements preferences.Repository.
func (r *RedisRepo) Load(ctx context.Context) (preferences.Preferences, error) {
	raw, err := r.rc.WithContext(ctx).Get(r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return preferences.Preferences{}, preferences.ErrNotFound
		}
		return preferences.Preferences{}, fmt.Errorf("failed to get %s: %w", r.key, err)
	}
	var p preferences.Preferences
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return preferences.Preferences{}, fmt.Errorf("failed to decode %s: %w", r.key, err)
	}
	return p, nil
}

// Save implements preferences.Repository.
func (r *RedisRepo) Save(ctx context.Context, p preferences.Preferences) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := r.rc.WithContext(ctx).Set(r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", r.key, err)
	}
	return nil
}
