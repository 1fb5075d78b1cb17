package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"recipebox/internal/model"
)

// ErrNotFound is returned when a draft does not exist or has expired.
var ErrNotFound = errors.New("draft not found")

const keyPrefix = "recipebox:draft:"

// DefaultTTL applies when a Store is created with a non-positive ttl.
const DefaultTTL = 24 * time.Hour

// Client is the subset of the go-redis API used by Store.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Store keeps freshly extracted recipes in Redis until they are saved or
// expire.
type Store struct {
	rdb Client
	ttl time.Duration
}

func New(rdb Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

// Put stores r under its id and refreshes the TTL.
func (s *Store) Put(ctx context.Context, r model.Recipe) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.rdb.Set(ctx, key(r.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft to Redis: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Recipe, error) {
	data, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Recipe{}, ErrNotFound
	}
	if err != nil {
		return model.Recipe{}, fmt.Errorf("failed to get draft from Redis: %w", err)
	}

	var r model.Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return model.Recipe{}, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return r, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete draft from Redis: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
