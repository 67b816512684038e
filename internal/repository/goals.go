package repository

import (
	"context"
	"errors"

	"github.com/arnold/goalmate-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func withChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("ProgressUpdates", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// Create inserts the goal together with its initial milestones.
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

// ByID loads a goal only if owner owns it.
func (r *GoalRepository) ByID(ctx context.Context, owner, id uuid.UUID) (*models.Goal, error) {
	var goal models.Goal
	err := withChildren(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", id, owner).
		First(&goal).Error
	if err != nil {
		return nil, notFound(err, "goal.ByID", "Goal")
	}
	return &goal, nil
}

// ByOwner lists every goal of owner, newest first.
func (r *GoalRepository) ByOwner(ctx context.Context, owner uuid.UUID) ([]models.Goal, error) {
	var goals []models.Goal
	err := withChildren(r.db.WithContext(ctx)).
		Where("user_id = ?", owner).
		Order("created_at DESC").
		Find(&goals).Error
	return goals, err
}

// PublicByOwner lists owner's goals marked public, newest first.
func (r *GoalRepository) PublicByOwner(ctx context.Context, owner uuid.UUID) ([]models.Goal, error) {
	var goals []models.Goal
	err := withChildren(r.db.WithContext(ctx)).
		Where("user_id = ? AND is_public = ?", owner, true).
		Order("created_at DESC").
		Find(&goals).Error
	return goals, err
}

// SaveProgress writes goal's progress and status and appends entry, provided
// the stored version still equals expectedVersion. On success goal.Version is
// advanced. A moved version or a taken ledger position yields ErrStaleGoal.
func (r *GoalRepository) SaveProgress(ctx context.Context, goal *models.Goal, entry *models.ProgressUpdate, expectedVersion int) error {
	db := r.db.WithContext(ctx)

	res := db.Model(&models.Goal{}).
		Where("id = ? AND user_id = ? AND version = ?", goal.ID, goal.UserID, expectedVersion).
		Updates(map[string]any{
			"current_progress": goal.CurrentProgress,
			"status":           goal.Status,
			"version":          gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleGoal
	}

	entry.GoalID = goal.ID
	if err := db.Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrStaleGoal
		}
		return err
	}

	goal.Version = expectedVersion + 1
	return nil
}

func (r *GoalRepository) AddMilestone(ctx context.Context, m *models.Milestone) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// SetMilestoneCompleted flips one milestone of goalID. Ownership of the goal
// must already be established by the caller.
func (r *GoalRepository) SetMilestoneCompleted(ctx context.Context, goalID, milestoneID uuid.UUID, completed bool) error {
	res := r.db.WithContext(ctx).Model(&models.Milestone{}).
		Where("id = ? AND goal_id = ?", milestoneID, goalID).
		Update("completed", completed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "goal.SetMilestone", "Milestone")
	}
	return nil
}
