package services

import (
	"context"
	"testing"
	"time"

	"github.com/arnold/goalmate-api/internal/cache"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/arnold/goalmate-api/internal/repository"
	"github.com/arnold/goalmate-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store     *repository.Store
	auth      *AuthService
	goals     *GoalService
	partners  *PartnerService
	analytics *AnalyticsService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnv(t, testutil.NewDB(t))
}

func newTestEnv(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()

	store := repository.NewStore(db)
	clock := func() time.Time { return fixedNow }

	analytics := NewAnalyticsService(store, cache.New(nil, "", time.Minute), time.UTC)
	analytics.now = clock

	auth := NewAuthService(store)
	auth.cost = bcrypt.MinCost

	goals := NewGoalService(store, analytics, DefaultProgressRetries)
	goals.now = clock

	partners := NewPartnerService(store)
	partners.now = clock

	return &testEnv{store: store, auth: auth, goals: goals, partners: partners, analytics: analytics}
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), models.RegisterRequest{
		Name:     name,
		Email:    name + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) goal(t *testing.T, owner uuid.UUID, title string, target time.Time) *models.Goal {
	t.Helper()
	g, err := e.goals.CreateGoal(context.Background(), owner, models.GoalInput{
		Title:      title,
		TargetDate: &target,
	})
	require.NoError(t, err)
	return g
}

func (e *testEnv) score(t *testing.T, id uuid.UUID) int {
	t.Helper()
	u, err := e.store.Users.ByID(context.Background(), id)
	require.NoError(t, err)
	return u.Score
}
