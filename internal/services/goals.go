package services

import (
	"context"
	"math"
	"time"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/arnold/goalmate-api/internal/repository"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const DefaultProgressRetries = 5

type GoalService struct {
	store      *repository.Store
	analytics  *AnalyticsService
	maxRetries int
	now        func() time.Time
}

// NewGoalService builds the goal service. analytics may be nil, in which
// case nothing is invalidated after writes.
func NewGoalService(store *repository.Store, analytics *AnalyticsService, maxRetries int) *GoalService {
	if maxRetries < 0 {
		maxRetries = DefaultProgressRetries
	}
	return &GoalService{
		store:      store,
		analytics:  analytics,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

func (s *GoalService) CreateGoal(ctx context.Context, owner uuid.UUID, in models.GoalInput) (*models.Goal, error) {
	goal, err := models.NewGoal(owner, in)
	if err != nil {
		return nil, err
	}
	if err := s.store.Goals.Create(ctx, goal); err != nil {
		return nil, err
	}
	s.analytics.Invalidate(ctx, owner)
	return goal, nil
}

// ListGoals returns owner's goals newest first with aggregate stats. Status
// is re-derived for the current time and not written back.
func (s *GoalService) ListGoals(ctx context.Context, owner uuid.UUID) (*models.GoalList, error) {
	goals, err := s.store.Goals.ByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := models.GoalStats{TotalGoals: len(goals)}
	sum := 0
	for i := range goals {
		goals[i].Refresh(now)
		sum += goals[i].CurrentProgress

		if goals[i].CurrentProgress == models.MaxProgress {
			stats.CompletedGoals++
		}
		switch goals[i].Status {
		case models.StatusInProgress:
			stats.InProgressGoals++
		case models.StatusBehindSchedule:
			stats.BehindSchedule++
		}
	}
	if len(goals) > 0 {
		stats.AverageProgress = int(math.Round(float64(sum) / float64(len(goals))))
	}

	return &models.GoalList{Goals: goals, Stats: stats}, nil
}

// RecordProgress appends a ledger entry, updates the goal and credits the
// owner's score in one transaction. A concurrent write to the same goal makes
// the attempt start over from a fresh read.
func (s *GoalService) RecordProgress(ctx context.Context, owner, goalID uuid.UUID, progress int, notes string) (*models.Goal, error) {
	const op = "goal.RecordProgress"

	if err := models.ValidateProgress(progress, notes); err != nil {
		return nil, err
	}

	var updated *models.Goal
	attempt := func() error {
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			goal, err := tx.Goals.ByID(ctx, owner, goalID)
			if err != nil {
				return err
			}

			expected := goal.Version
			entry, err := goal.RecordProgress(progress, notes, s.now())
			if err != nil {
				return err
			}
			if err := tx.Goals.SaveProgress(ctx, goal, entry, expected); err != nil {
				return err
			}
			if err := accrue(ctx, tx, owner, progress); err != nil {
				return err
			}
			updated = goal
			return nil
		})
		if err != nil && !repository.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if err := backoff.Retry(attempt, s.retryPolicy(ctx)); err != nil {
		if repository.IsRetryable(err) {
			return nil, apperr.Conflict(op, "Goal was updated by another request, please retry", err)
		}
		return nil, err
	}

	s.analytics.Invalidate(ctx, owner)
	return updated, nil
}

func (s *GoalService) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 3 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.maxRetries)), ctx)
}

func (s *GoalService) AddMilestone(ctx context.Context, owner, goalID uuid.UUID, title string, targetDate *time.Time) (*models.Goal, error) {
	goal, err := s.store.Goals.ByID(ctx, owner, goalID)
	if err != nil {
		return nil, err
	}

	m, err := goal.AddMilestone(title, targetDate)
	if err != nil {
		return nil, err
	}
	if err := s.store.Goals.AddMilestone(ctx, m); err != nil {
		return nil, err
	}

	goal.Refresh(s.now())
	s.analytics.Invalidate(ctx, owner)
	return goal, nil
}

func (s *GoalService) SetMilestoneCompleted(ctx context.Context, owner, goalID, milestoneID uuid.UUID, completed bool) (*models.Goal, error) {
	if _, err := s.store.Goals.ByID(ctx, owner, goalID); err != nil {
		return nil, err
	}
	if err := s.store.Goals.SetMilestoneCompleted(ctx, goalID, milestoneID, completed); err != nil {
		return nil, err
	}

	goal, err := s.store.Goals.ByID(ctx, owner, goalID)
	if err != nil {
		return nil, err
	}
	goal.Refresh(s.now())
	s.analytics.Invalidate(ctx, owner)
	return goal, nil
}
