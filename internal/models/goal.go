package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinProgress = 0
	MaxProgress = 100

	MaxTitleLength       = 100
	MaxDescriptionLength = 500
	MaxNotesLength       = 300
)

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryCareer       Category = "career"
	CategoryEducation    Category = "education"
	CategoryFinance      Category = "finance"
	CategoryPersonal     Category = "personal"
	CategoryRelationship Category = "relationship"
	CategoryOther        Category = "other"
)

var Categories = []Category{
	CategoryHealth, CategoryCareer, CategoryEducation, CategoryFinance,
	CategoryPersonal, CategoryRelationship, CategoryOther,
}

func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Goal struct {
	ID              uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID        `json:"user" gorm:"type:uuid;index;not null"`
	Title           string           `json:"title" gorm:"size:100;not null"`
	Description     string           `json:"description" gorm:"size:500"`
	Category        Category         `json:"category" gorm:"not null;default:'personal'"`
	TargetDate      time.Time        `json:"targetDate" gorm:"not null"`
	CurrentProgress int              `json:"currentProgress" gorm:"not null;default:0"`
	Status          GoalStatus       `json:"status" gorm:"not null;default:'not-started'"`
	Priority        Priority         `json:"priority" gorm:"not null;default:'medium'"`
	IsPublic        bool             `json:"isPublic" gorm:"default:false"`
	ProgressUpdates []ProgressUpdate `json:"progressUpdates" gorm:"foreignKey:GoalID"`
	Milestones      []Milestone      `json:"milestones" gorm:"foreignKey:GoalID"`
	Version         int              `json:"-" gorm:"not null;default:0"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// ProgressUpdate is one entry of a goal's append-only progress ledger.
// Position is unique per goal so two writers cannot commit the same append.
type ProgressUpdate struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID   uuid.UUID `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_goal_position"`
	Position int       `json:"-" gorm:"not null;uniqueIndex:idx_goal_position"`
	Date     time.Time `json:"date" gorm:"not null;index"`
	Progress int       `json:"progress" gorm:"not null"`
	Notes    string    `json:"notes" gorm:"size:300"`
}

func (p *ProgressUpdate) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Milestone struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	GoalID     uuid.UUID  `json:"-" gorm:"type:uuid;index;not null"`
	Position   int        `json:"-" gorm:"not null"`
	Title      string     `json:"title" gorm:"not null"`
	TargetDate *time.Time `json:"targetDate"`
	Completed  bool       `json:"completed" gorm:"default:false"`
}

func (m *Milestone) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Goal DTOs
type GoalInput struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    Category         `json:"category"`
	TargetDate  *time.Time       `json:"targetDate"`
	Priority    Priority         `json:"priority"`
	IsPublic    bool             `json:"isPublic"`
	Milestones  []MilestoneInput `json:"milestones"`
}

type MilestoneInput struct {
	Title      string     `json:"title"`
	TargetDate *time.Time `json:"targetDate"`
}

type ProgressRequest struct {
	Progress *int   `json:"progress"`
	Notes    string `json:"notes"`
}

type MilestoneUpdateRequest struct {
	Completed *bool `json:"completed"`
}

type GoalStats struct {
	TotalGoals      int `json:"totalGoals"`
	CompletedGoals  int `json:"completedGoals"`
	AverageProgress int `json:"averageProgress"`
	InProgressGoals int `json:"inProgressGoals"`
	BehindSchedule  int `json:"behindSchedule"`
}

type GoalList struct {
	Goals []Goal    `json:"goals"`
	Stats GoalStats `json:"stats"`
}

// NewGoal validates input and builds an unsaved goal with an empty ledger.
func NewGoal(owner uuid.UUID, in GoalInput) (*Goal, error) {
	const op = "goal.Create"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation(op, "Please provide a goal title")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, apperr.Validation(op, fmt.Sprintf("Title cannot be more than %d characters", MaxTitleLength))
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		return nil, apperr.Validation(op, fmt.Sprintf("Description cannot be more than %d characters", MaxDescriptionLength))
	}
	if in.TargetDate == nil || in.TargetDate.IsZero() {
		return nil, apperr.Validation(op, "Please provide a target date")
	}

	category := in.Category
	if category == "" {
		category = CategoryPersonal
	}
	if !category.IsValid() {
		return nil, apperr.Validation(op, fmt.Sprintf("%q is not a valid category", in.Category))
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.IsValid() {
		return nil, apperr.Validation(op, fmt.Sprintf("%q is not a valid priority", in.Priority))
	}

	goal := &Goal{
		ID:              uuid.New(),
		UserID:          owner,
		Title:           title,
		Description:     in.Description,
		Category:        category,
		TargetDate:      *in.TargetDate,
		CurrentProgress: 0,
		Status:          StatusNotStarted,
		Priority:        priority,
		IsPublic:        in.IsPublic,
		ProgressUpdates: []ProgressUpdate{},
		Milestones:      []Milestone{},
	}

	for _, m := range in.Milestones {
		if _, err := goal.AddMilestone(m.Title, m.TargetDate); err != nil {
			return nil, err
		}
	}

	return goal, nil
}

// ValidateProgress checks a progress observation before anything is read
// or written.
func ValidateProgress(progress int, notes string) error {
	const op = "goal.RecordProgress"
	if progress < MinProgress || progress > MaxProgress {
		return apperr.Validation(op, fmt.Sprintf("Progress must be between %d and %d", MinProgress, MaxProgress))
	}
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return apperr.Validation(op, fmt.Sprintf("Notes cannot be more than %d characters", MaxNotesLength))
	}
	return nil
}

// RecordProgress appends a ledger entry, moves CurrentProgress to it and
// re-derives Status. Progress may move backward; the ledger keeps the full
// history either way. The returned entry is the one appended.
func (g *Goal) RecordProgress(progress int, notes string, now time.Time) (*ProgressUpdate, error) {
	if err := ValidateProgress(progress, notes); err != nil {
		return nil, err
	}

	entry := ProgressUpdate{
		GoalID:   g.ID,
		Position: g.nextLedgerPosition(),
		Date:     now,
		Progress: progress,
		Notes:    notes,
	}
	g.ProgressUpdates = append(g.ProgressUpdates, entry)
	g.CurrentProgress = progress
	g.Status = DeriveStatus(g.CurrentProgress, g.TargetDate, now)

	return &g.ProgressUpdates[len(g.ProgressUpdates)-1], nil
}

// LatestProgress is the progress of the newest ledger entry, or 0 for an
// empty ledger.
func (g *Goal) LatestProgress() int {
	latest := -1
	progress := 0
	for _, u := range g.ProgressUpdates {
		if u.Position > latest {
			latest = u.Position
			progress = u.Progress
		}
	}
	return progress
}

func (g *Goal) nextLedgerPosition() int {
	next := 0
	for _, u := range g.ProgressUpdates {
		if u.Position >= next {
			next = u.Position + 1
		}
	}
	return next
}

// Refresh re-derives Status for now without touching the ledger. Used on
// read paths; the result is never persisted on its own.
func (g *Goal) Refresh(now time.Time) {
	g.Status = DeriveStatus(g.CurrentProgress, g.TargetDate, now)
}

// IsOverdue reports a passed target date on a goal that is not completed.
func (g *Goal) IsOverdue(now time.Time) bool {
	return g.TargetDate.Before(now) && g.Status != StatusCompleted
}

// AddMilestone appends a milestone at the end of the goal's list.
func (g *Goal) AddMilestone(title string, targetDate *time.Time) (*Milestone, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("goal.AddMilestone", "Milestone title is required")
	}

	position := 0
	for _, m := range g.Milestones {
		if m.Position >= position {
			position = m.Position + 1
		}
	}

	g.Milestones = append(g.Milestones, Milestone{
		GoalID:     g.ID,
		Position:   position,
		Title:      title,
		TargetDate: targetDate,
	})
	return &g.Milestones[len(g.Milestones)-1], nil
}
