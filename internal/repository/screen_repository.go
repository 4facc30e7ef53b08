package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/eventx-studio/internal/logger"
)

// ScreenRepository holds the transient state of a session's screens (the
// admin edit draft, the creation draft, the booking board).  Each session
// owns one namespace; values are JSON documents addressed by a screen key.
// Every write refreshes the namespace's TTL.
type ScreenRepository interface {
	Load(ctx context.Context, sessionID, key string, dst any) error
	Store(ctx context.Context, sessionID, key string, v any) error
	Delete(ctx context.Context, sessionID, key string) error
	Clear(ctx context.Context, sessionID string) error
}

const screenKeyPrefix = "eventx:screen:"

type redisScreenRepository struct {
	cli *redis.Client
	ttl time.Duration
	l   logger.Logger
}

// NewRedisScreenRepository stores each session's screens in one Redis hash.
func NewRedisScreenRepository(cli *redis.Client, ttl time.Duration, l logger.Logger) ScreenRepository {
	return &redisScreenRepository{cli: cli, ttl: ttl, l: l}
}

func (r *redisScreenRepository) Load(ctx context.Context, sessionID, key string, dst any) error {
	data, err := r.cli.HGet(ctx, screenKeyPrefix+sessionID, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		r.l.Error("redisScreenRepository.Load", "key", key, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.l.Warn("redisScreenRepository.Load: discarding unreadable state", "key", key, "error", err)
		return ErrNotFound
	}
	return nil
}

func (r *redisScreenRepository) Store(ctx context.Context, sessionID, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal screen state: %w", err)
	}
	hash := screenKeyPrefix + sessionID
	pipe := r.cli.TxPipeline()
	pipe.HSet(ctx, hash, key, data)
	pipe.Expire(ctx, hash, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		r.l.Error("redisScreenRepository.Store", "key", key, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *redisScreenRepository) Delete(ctx context.Context, sessionID, key string) error {
	if err := r.cli.HDel(ctx, screenKeyPrefix+sessionID, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *redisScreenRepository) Clear(ctx context.Context, sessionID string) error {
	if err := r.cli.Del(ctx, screenKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// MemoryScreenRepository is the in-process ScreenRepository.
type MemoryScreenRepository struct {
	mu      sync.Mutex
	screens map[string]map[string][]byte
}

func NewMemoryScreenRepository() *MemoryScreenRepository {
	return &MemoryScreenRepository{screens: make(map[string]map[string][]byte)}
}

func (r *MemoryScreenRepository) Load(_ context.Context, sessionID, key string, dst any) error {
	r.mu.Lock()
	data, ok := r.screens[sessionID][key]
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return ErrNotFound
	}
	return nil
}

func (r *MemoryScreenRepository) Store(_ context.Context, sessionID, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal screen state: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screens[sessionID] == nil {
		r.screens[sessionID] = make(map[string][]byte)
	}
	r.screens[sessionID][key] = data
	return nil
}

func (r *MemoryScreenRepository) Delete(_ context.Context, sessionID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.screens[sessionID], key)
	return nil
}

func (r *MemoryScreenRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.screens, sessionID)
	return nil
}
