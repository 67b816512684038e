package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arnold/goalmate-api/internal/cache"
	"github.com/arnold/goalmate-api/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// AnalyticsService serves Aggregate results through the cache. Concurrent
// misses for the same user share one computation.
type AnalyticsService struct {
	goals *repository.GoalRepository
	cache *cache.Cache
	loc   *time.Location
	group singleflight.Group
	now   func() time.Time
}

func NewAnalyticsService(store *repository.Store, c *cache.Cache, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsService{
		goals: store.Goals,
		cache: c,
		loc:   loc,
		now:   time.Now,
	}
}

func generationKey(userID uuid.UUID) string {
	return "analytics-gen:" + userID.String()
}

// analyticsKey names one user's analytics for one generation and one local
// day. Invalidate moves the user to a new generation, so a computation that
// started before it writes under a key no later Get reads. The day keeps
// streaks and overdue counts from outliving midnight.
func analyticsKey(userID uuid.UUID, gen int64, day time.Time) string {
	return fmt.Sprintf("analytics:%s:%d:%s", userID, gen, day.Format(time.DateOnly))
}

func (s *AnalyticsService) Get(ctx context.Context, userID uuid.UUID) (*Analytics, error) {
	now := s.now()

	gen, err := s.cache.Generation(ctx, generationKey(userID))
	if err != nil {
		slog.Warn("analytics cache generation read failed", "user_id", userID, "error", err)
		return s.compute(ctx, userID, now)
	}
	key := analyticsKey(userID, gen, now.In(s.loc))

	var cached Analytics
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		slog.Warn("analytics cache read failed", "user_id", userID, "error", err)
	}
	if hit {
		return &cached, nil
	}

	// The flight outlives any single caller sharing it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		result, err := s.compute(flightCtx, userID, now)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(flightCtx, key, result); err != nil {
			slog.Warn("analytics cache write failed", "user_id", userID, "error", err)
		}
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Analytics), nil
}

func (s *AnalyticsService) compute(ctx context.Context, userID uuid.UUID, now time.Time) (*Analytics, error) {
	goals, err := s.goals.ByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := Aggregate(goals, now, s.loc)
	return &result, nil
}

// Invalidate retires the cached analytics of userID. Failures are logged
// only; the entry then expires with its TTL.
func (s *AnalyticsService) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s == nil {
		return
	}
	if err := s.cache.Bump(ctx, generationKey(userID)); err != nil {
		slog.Warn("analytics cache invalidation failed", "user_id", userID, "error", err)
	}
}
