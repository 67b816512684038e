package models

import "time"

type GoalStatus string

const (
	StatusNotStarted     GoalStatus = "not-started"
	StatusInProgress     GoalStatus = "in-progress"
	StatusCompleted      GoalStatus = "completed"
	StatusBehindSchedule GoalStatus = "behind-schedule"
)

// GoalStatuses lists every status in display order.
var GoalStatuses = []GoalStatus{StatusNotStarted, StatusInProgress, StatusCompleted, StatusBehindSchedule}

func (s GoalStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusBehindSchedule:
		return true
	default:
		return false
	}
}

const (
	// behindScheduleWindow is how close to the deadline a goal below
	// behindScheduleProgress counts as behind.
	behindScheduleWindow   = 7.0
	behindScheduleProgress = 50
)

// DeriveStatus computes a goal's lifecycle status. Completion wins over an
// elapsed target date, so a finished goal never reads as behind schedule.
func DeriveStatus(progress int, targetDate, now time.Time) GoalStatus {
	if progress >= MaxProgress {
		return StatusCompleted
	}
	if progress <= 0 {
		return StatusNotStarted
	}

	daysLeft := targetDate.Sub(now).Hours() / 24
	if daysLeft < 0 || (progress < behindScheduleProgress && daysLeft < behindScheduleWindow) {
		return StatusBehindSchedule
	}
	return StatusInProgress
}
