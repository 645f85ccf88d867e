package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/saulo-duarte/quizdeck/internal/config"
)

// TakeViewCache is a read cache for published quiz take views. Misses return
// (nil, nil); cache failures are reported but callers treat them as misses.
type TakeViewCache interface {
	Get(ctx context.Context, quizID uuid.UUID) (*QuizTakeView, error)
	Set(ctx context.Context, view *QuizTakeView) error
	Invalidate(ctx context.Context, quizID uuid.UUID) error
}

type redisTakeViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTakeViewCache(client *redis.Client, ttl time.Duration) TakeViewCache {
	return &redisTakeViewCache{client: client, ttl: ttl}
}

func takeViewKey(quizID uuid.UUID) string {
	return fmt.Sprintf("quiz:take:%s", quizID)
}

func (c *redisTakeViewCache) Get(ctx context.Context, quizID uuid.UUID) (*QuizTakeView, error) {
	raw, err := c.client.Get(ctx, takeViewKey(quizID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var view QuizTakeView
	if err := json.Unmarshal(raw, &view); err != nil {
		// A corrupt entry is dropped rather than served.
		config.WithContext(ctx).WithError(err).Warn("Dropping corrupt take-view cache entry")
		_ = c.client.Del(ctx, takeViewKey(quizID)).Err()
		return nil, nil
	}
	return &view, nil
}

func (c *redisTakeViewCache) Set(ctx context.Context, view *QuizTakeView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, takeViewKey(view.ID), raw, c.ttl).Err()
}

func (c *redisTakeViewCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	return c.client.Del(ctx, takeViewKey(quizID)).Err()
}

type noopTakeViewCache struct{}

// NewNoopTakeViewCache backs deployments without a redis instance.
func NewNoopTakeViewCache() TakeViewCache {
	return noopTakeViewCache{}
}

func (noopTakeViewCache) Get(ctx context.Context, quizID uuid.UUID) (*QuizTakeView, error) {
	return nil, nil
}

func (noopTakeViewCache) Set(ctx context.Context, view *QuizTakeView) error {
	return nil
}

func (noopTakeViewCache) Invalidate(ctx context.Context, quizID uuid.UUID) error {
	return nil
}
