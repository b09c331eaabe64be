package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheKeyPrefix = "query:"

	// docKeyPrefix holds, per document, the set of query keys whose results cite it.
	docKeyPrefix = "doc:"
)

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) GetQueryResult(ctx context.Context, key string) (*QueryResult, error) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result QueryResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RedisCache) SetQueryResult(ctx context.Context, key string, result *QueryResult, ttl time.Duration) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, cacheKeyPrefix+key, data, ttl)
	for _, docID := range documentIDs(result) {
		pipe.SAdd(ctx, docKeyPrefix+docID, key)
		pipe.Expire(ctx, docKeyPrefix+docID, ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) InvalidateDocument(ctx context.Context, docID string) error {
	keys, err := c.client.SMembers(ctx, docKeyPrefix+docID).Result()
	if err != nil {
		return err
	}

	pipe := c.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, cacheKeyPrefix+key)
	}
	pipe.Del(ctx, docKeyPrefix+docID)
	_, err = pipe.Exec(ctx)
	return err
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func documentIDs(result *QueryResult) []string {
	if result == nil {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, h := range result.Hits {
		if h.DocumentID == "" || seen[h.DocumentID] {
			continue
		}
		seen[h.DocumentID] = true
		ids = append(ids, h.DocumentID)
	}
	return ids
}
