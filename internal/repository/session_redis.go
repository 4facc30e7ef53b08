package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/model"
)

const sessionKeyPrefix = "eventx:session:"

type redisSessionRepository struct {
	cli *redis.Client
	l   logger.Logger
}

func NewRedisSessionRepository(cli *redis.Client, l logger.Logger) SessionRepository {
	return &redisSessionRepository{cli: cli, l: l}
}

func (r *redisSessionRepository) Save(ctx context.Context, sessionID string, rec model.SessionRecord, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.cli.Set(ctx, sessionKeyPrefix+sessionID, data, ttl).Err(); err != nil {
		r.l.Error("redisSessionRepository.Save", "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *redisSessionRepository) Load(ctx context.Context, sessionID string) (model.SessionRecord, error) {
	var rec model.SessionRecord
	data, err := r.cli.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return rec, ErrNotFound
	}
	if err != nil {
		r.l.Error("redisSessionRepository.Load", "error", err)
		return rec, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt record is as good as no record.
		r.l.Warn("redisSessionRepository.Load: discarding unreadable record", "error", err)
		return model.SessionRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.cli.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		r.l.Error("redisSessionRepository.Delete", "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
