// Package fieldcache provides a Redis read-through cache for the
// ordered list of custom field definitions. Handlers read field lists
// on nearly every request (forms, exports, record detail assembly)
// while admins change them rarely, so the list is cached under a
// single key and explicitly invalidated on create, move and delete.
// The cache is an injected component, not ambient global state; with a
// nil Redis client every read falls through to the registry.
package fieldcache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jmwangi/casetrack/internal/model"
	"github.com/jmwangi/casetrack/internal/repository"
)

const cacheKey = "casetrack:fields"

// Cache wraps a FieldRepo with a Redis-backed list cache.
type Cache struct {
	repo *repository.FieldRepo
	rdb  *redis.Client
	ttl  time.Duration
}

// New builds a Cache. rdb may be nil, in which case every call
// delegates straight to the repository.
func New(repo *repository.FieldRepo, rdb *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{repo: repo, rdb: rdb, ttl: ttl}
}

// List returns the ordered field definitions, serving from Redis when
// a fresh copy exists. Cache failures are logged and degrade to a
// registry read; they never fail the request.
func (c *Cache) List(ctx context.Context) ([]model.FieldDefinition, error) {
	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var fields []model.FieldDefinition
			if jsonErr := json.Unmarshal(raw, &fields); jsonErr == nil {
				return fields, nil
			}
			// corrupt entry: drop it and fall through
			_ = c.rdb.Del(ctx, cacheKey).Err()
		} else if err != redis.Nil {
			log.Printf("fieldcache: get failed: %v", err)
		}
	}
	fields, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if c.rdb != nil {
		if raw, err := json.Marshal(fields); err == nil {
			if err := c.rdb.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
				log.Printf("fieldcache: set failed: %v", err)
			}
		}
	}
	return fields, nil
}

// Create adds a field definition and invalidates the cached list.
func (c *Cache) Create(ctx context.Context, name, fieldType string, createdBy uint64) (*model.FieldDefinition, error) {
	f, err := c.repo.Create(ctx, name, fieldType, createdBy)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return f, nil
}

// Move reorders a field and invalidates the cached list, no-op moves
// included.
func (c *Cache) Move(ctx context.Context, id uint64, direction string) error {
	if err := c.repo.Move(ctx, id, direction); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// Delete removes a field definition (cascading its values) and
// invalidates the cached list.
func (c *Cache) Delete(ctx context.Context, id uint64) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *Cache) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey).Err(); err != nil {
		log.Printf("fieldcache: invalidate failed: %v", err)
	}
}
