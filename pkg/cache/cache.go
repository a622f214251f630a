package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLStories = 30 * time.Second // public story listings refresh often
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixPublicStories = "stories:public:"
)

// ErrCacheMiss key not present in the cache
var ErrCacheMiss = errors.New("cache miss")

// Service Redis-backed cache for read-side listings
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	GetPublicStories(ctx context.Context, limit int, dest interface{}) error
	SetPublicStories(ctx context.Context, limit int, value interface{}) error
	InvalidatePublicStories(ctx context.Context) error
}

type service struct {
	client *redis.Client
}

// NewService creates a cache service backed by the given Redis client
func NewService(client *redis.Client) Service {
	return &service{client: client}
}

// Get reads and unmarshals a cached value
func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set marshals and stores a value with the given TTL
func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = TTLDefault
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes keys from the cache
func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// GetPublicStories reads the cached first page of public stories
func (s *service) GetPublicStories(ctx context.Context, limit int, dest interface{}) error {
	return s.Get(ctx, publicStoriesKey(limit), dest)
}

// SetPublicStories caches the first page of public stories
func (s *service) SetPublicStories(ctx context.Context, limit int, value interface{}) error {
	return s.Set(ctx, publicStoriesKey(limit), value, TTLStories)
}

// InvalidatePublicStories drops every cached public story page
func (s *service) InvalidatePublicStories(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, PrefixPublicStories+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return s.Delete(ctx, keys...)
}

func publicStoriesKey(limit int) string {
	return fmt.Sprintf("%slimit:%d", PrefixPublicStories, limit)
}
