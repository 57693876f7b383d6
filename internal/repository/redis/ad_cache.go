package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// AdCache shares position lists between instances. Like the in-process
// cache it is only a shortcut in front of Postgres.
type AdCache struct {
	client *redis.Client
	prefix string
}

func NewAdCache(client *redis.Client, prefix string) *AdCache {
	if prefix == "" {
		prefix = "ads"
	}
	return &AdCache{client: client, prefix: prefix}
}

func (r *AdCache) key(position domain.Position) string {
	return fmt.Sprintf("%s:position:%s", r.prefix, position)
}

func (r *AdCache) GetPositionAds(ctx context.Context, position domain.Position) ([]*domain.Advertisement, error) {
	data, err := r.client.Get(ctx, r.key(position)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var ads []*domain.Advertisement
	if err := json.Unmarshal(data, &ads); err != nil {
		return nil, err
	}

	return ads, nil
}

func (r *AdCache) SetPositionAds(ctx context.Context, position domain.Position, ads []*domain.Advertisement, ttl time.Duration) error {
	data, err := json.Marshal(ads)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(position), data, ttl).Err()
}

func (r *AdCache) DeletePosition(ctx context.Context, position domain.Position) error {
	return r.client.Del(ctx, r.key(position)).Err()
}
