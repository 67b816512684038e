package services

import (
	"context"

	"github.com/arnold/goalmate-api/internal/models"
	"github.com/arnold/goalmate-api/internal/repository"
	"github.com/google/uuid"
)

// ScoreDelta is the score awarded for recording progress: progress/10
// rounded half up, so 45 and 47 both earn 5.
func ScoreDelta(progress int) int {
	if progress <= models.MinProgress {
		return 0
	}
	return (progress + 5) / 10
}

// accrue credits the owner for a recorded progress value. It must run on the
// same store (transaction) as the ledger append.
func accrue(ctx context.Context, store *repository.Store, owner uuid.UUID, progress int) error {
	delta := ScoreDelta(progress)
	if delta == 0 {
		return nil
	}
	return store.Users.AddScore(ctx, owner, delta)
}
