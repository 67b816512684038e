// Package repository wraps gorm access to users, partner requests and goals.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrStaleGoal means the goal changed between read and write.
var ErrStaleGoal = errors.New("goal was modified concurrently")

// IsRetryable reports whether a failed write may succeed when run again:
// an optimistic-lock miss or SQLite refusing the lock.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrStaleGoal) {
		return true
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}

// Store groups the repositories over one *gorm.DB, so a transaction can hand
// the same set to its callback.
type Store struct {
	db    *gorm.DB
	Users *UserRepository
	Goals *GoalRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		Users: NewUserRepository(db),
		Goals: NewGoalRepository(db),
	}
}

// Transaction runs fn with a Store bound to a single transaction. A non-nil
// error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func notFound(err error, op, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(op, entity)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with s's own
// wildcards taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
