package redisclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inventory-service/internal/docstore"

	"github.com/go-redis/redis/v8"
)

const (
	// InventoryKey prefixes the cached inventory list. Each list lives under
	// InventoryKey:<generation>.
	InventoryKey = "inventory:all"

	// GenerationKey counts inventory writes. Bumping it retires every list
	// cached under an older generation.
	GenerationKey = "inventory:gen"
)

func inventoryKey(generation int64) string {
	return fmt.Sprintf("%s:%d", InventoryKey, generation)
}

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client and verifies the connection
func NewClient(addr, password string, db int, ttl time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewClientFromRedis(rdb, ttl), nil
}

// NewClientFromRedis wraps an existing connection
func NewClientFromRedis(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetInventory returns the inventory list cached for the current generation.
// ok is false on a cache miss; generation is then the value to hand to
// SetInventory once the list has been loaded.
func (c *Client) GetInventory(ctx context.Context) (docs []docstore.Document, generation int64, ok bool, err error) {
	generation, err = c.generation(ctx, c.rdb)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := c.rdb.Get(ctx, inventoryKey(generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, false, nil
	}
	if err != nil {
		return nil, generation, false, fmt.Errorf("failed to read inventory cache: %w", err)
	}

	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, generation, false, fmt.Errorf("failed to decode inventory cache: %w", err)
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	return docs, generation, true, nil
}

// SetInventory caches docs for generation with the configured TTL. Nothing is
// written when a write has bumped the generation since docs were loaded.
func (c *Client) SetInventory(ctx context.Context, generation int64, docs []docstore.Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("failed to encode inventory cache: %w", err)
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, inventoryKey(generation), raw, c.ttl)
			return nil
		})
		return err
	}, GenerationKey)

	if errors.Is(err, errStaleGeneration) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write inventory cache: %w", err)
	}
	return nil
}

// InvalidateInventory bumps the generation so no list cached before the call
// is served again.
func (c *Client) InvalidateInventory(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, GenerationKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate inventory cache: %w", err)
	}
	return nil
}

var errStaleGeneration = errors.New("inventory generation changed")

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Client) generation(ctx context.Context, cmd getter) (int64, error) {
	n, err := cmd.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read inventory generation: %w", err)
	}
	return n, nil
}
