package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fundflow-lending-core/internal/config"
	"github.com/fundflow-lending-core/internal/domain/loan"
)

// ScheduleCache stores computed repayment schedules in Redis so repeated
// schedule reads do not recompute the amortization table. The cache is
// advisory: every failure degrades to a recompute, never to an error.
type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewScheduleCache(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*ScheduleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info("Connected to Redis")

	return &ScheduleCache{
		client: client,
		ttl:    cfg.TTL,
		logger: logger,
	}, nil
}

func scheduleKey(loanID uuid.UUID) string {
	return fmt.Sprintf("schedule:%s", loanID)
}

// Get returns the cached schedule for the loan, or ok=false on a miss or any
// Redis error.
func (c *ScheduleCache) Get(ctx context.Context, loanID uuid.UUID) ([]loan.Installment, bool) {
	raw, err := c.client.Get(ctx, scheduleKey(loanID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Schedule cache read failed", "loan_id", loanID, "error", err)
		}
		return nil, false
	}

	var schedule []loan.Installment
	if err := json.Unmarshal(raw, &schedule); err != nil {
		c.logger.Warn("Schedule cache entry malformed, dropping", "loan_id", loanID, "error", err)
		_ = c.client.Del(ctx, scheduleKey(loanID)).Err()
		return nil, false
	}

	return schedule, true
}

// Set caches the schedule with the configured TTL.
func (c *ScheduleCache) Set(ctx context.Context, loanID uuid.UUID, schedule []loan.Installment) {
	raw, err := json.Marshal(schedule)
	if err != nil {
		c.logger.Warn("Failed to encode schedule for cache", "loan_id", loanID, "error", err)
		return
	}

	if err := c.client.Set(ctx, scheduleKey(loanID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Schedule cache write failed", "loan_id", loanID, "error", err)
	}
}

// Invalidate removes the cached schedule, e.g. after a rate config update
// changes the terms future loans will see.
func (c *ScheduleCache) Invalidate(ctx context.Context, loanID uuid.UUID) {
	if err := c.client.Del(ctx, scheduleKey(loanID)).Err(); err != nil {
		c.logger.Warn("Schedule cache invalidation failed", "loan_id", loanID, "error", err)
	}
}

// InvalidateAll drops every cached schedule. Used after a rate config update
// changes the compound frequency schedules are computed with.
func (c *ScheduleCache) InvalidateAll(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, "schedule:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("Schedule cache invalidation failed", "key", iter.Val(), "error", err)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Schedule cache scan failed", "error", err)
	}
}

func (c *ScheduleCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	c.logger.Info("Closed Redis connection")
	return nil
}
