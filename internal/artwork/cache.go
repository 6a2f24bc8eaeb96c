package artwork

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const galleryKey = "gallery:approved"

// Cache keeps the default gallery page warm in Redis. Misses and redis
// failures fall through to Postgres; the caller treats every error as a miss.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: 60 * time.Second}
}

func (c *Cache) GetGallery(ctx context.Context) ([]Artwork, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, galleryKey).Result()
	if err != nil {
		return nil, false
	}
	var items []Artwork
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, false
	}
	return items, true
}

func (c *Cache) SetGallery(ctx context.Context, items []Artwork) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, galleryKey, data, c.ttl).Err()
}

// Invalidate drops the cached page after any write that changes what the
// gallery shows (new submission, sale).
func (c *Cache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, galleryKey).Err()
}
