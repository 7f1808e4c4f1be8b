package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const catalogKey = "schedule:catalog"

// Store persists the catalog as JSON in Redis. When nothing is configured
// yet, Get falls back to DefaultCatalog.
type Store struct {
	redis *redis.Client
}

// NewStore creates a catalog store.
func NewStore(redisClient *redis.Client) *Store {
	return &Store{redis: redisClient}
}

// Get retrieves the catalog, returning the default when none is configured.
func (s *Store) Get(ctx context.Context) (*Catalog, error) {
	data, err := s.redis.Get(ctx, catalogKey).Bytes()
	if err == redis.Nil {
		return DefaultCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: get catalog: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("schedule: unmarshal catalog: %w", err)
	}
	return &catalog, nil
}

// Set validates and saves the catalog.
func (s *Store) Set(ctx context.Context, catalog *Catalog) error {
	if err := catalog.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(catalog)
	if err != nil {
		return fmt.Errorf("schedule: marshal catalog: %w", err)
	}
	if err := s.redis.Set(ctx, catalogKey, data, 0).Err(); err != nil {
		return fmt.Errorf("schedule: set catalog: %w", err)
	}
	return nil
}
