package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "progress:"
	defaultTTL    = 24 * time.Hour
	reportTimeout = 500 * time.Millisecond
)

type RedisReporter struct {
	client *redis.Client
	log    *slog.Logger
	ttl    time.Duration
}

func NewRedisReporter(log *slog.Logger, addr, password string) (*RedisReporter, error) {
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
	return &RedisReporter{client: client, log: log, ttl: defaultTTL}, nil
}

func (r *RedisReporter) Report(ctx context.Context, u Update) {
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(u)
	if err != nil {
		r.log.Warn("encode progress", "document_id", u.DocumentID, "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()
	if err := r.client.Set(ctx, keyPrefix+u.DocumentID, data, r.ttl).Err(); err != nil {
		r.log.Warn("progress heartbeat dropped", "document_id", u.DocumentID, "stage", u.Stage, "err", err)
	}
}

func (r *RedisReporter) Latest(ctx context.Context, docID string) (*Update, error) {
	data, err := r.client.Get(ctx, keyPrefix+docID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *RedisReporter) Close() error {
	return r.client.Close()
}
