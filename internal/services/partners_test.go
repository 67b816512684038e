package services

import (
	"context"
	"testing"
	"time"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) partnerOf(t *testing.T, id uuid.UUID) *uuid.UUID {
	t.Helper()
	u, err := e.store.Users.ByID(context.Background(), id)
	require.NoError(t, err)
	return u.AccountabilityPartnerID
}

func TestSendRequest(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")

	_, err := env.partners.SendRequest(ctx, ann.ID, ann.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.partners.SendRequest(ctx, ann.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	req, err := env.partners.SendRequest(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)

	_, err = env.partners.SendRequest(ctx, ann.ID, bob.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRequest)

	// The reverse direction lives in ann's collection and is allowed.
	_, err = env.partners.SendRequest(ctx, bob.ID, ann.ID)
	assert.NoError(t, err)

	views, err := env.partners.ListRequests(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, ann.ID, views[0].User.ID)
	assert.Equal(t, "ann", views[0].User.Name)
	assert.Equal(t, "ann@example.com", views[0].User.Email)
}

func TestDuplicateAfterResolution(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")

	req, err := env.partners.SendRequest(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.partners.Respond(ctx, bob.ID, req.ID, models.RequestRejected)
	require.NoError(t, err)

	_, err = env.partners.SendRequest(ctx, ann.ID, bob.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicateRequest)
}

func TestAcceptLinksBothSides(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")

	req, err := env.partners.SendRequest(ctx, ann.ID, bob.ID)
	require.NoError(t, err)

	resolved, err := env.partners.Respond(ctx, bob.ID, req.ID, models.RequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, resolved.Status)

	require.NotNil(t, env.partnerOf(t, ann.ID))
	require.NotNil(t, env.partnerOf(t, bob.ID))
	assert.Equal(t, bob.ID, *env.partnerOf(t, ann.ID))
	assert.Equal(t, ann.ID, *env.partnerOf(t, bob.ID))

	partner, err := env.partners.CurrentPartner(ctx, ann.ID)
	require.NoError(t, err)
	require.NotNil(t, partner)
	assert.Equal(t, "bob", partner.Name)
}

func TestRespondRejects(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")

	req, err := env.partners.SendRequest(ctx, ann.ID, bob.ID)
	require.NoError(t, err)

	_, err = env.partners.Respond(ctx, bob.ID, req.ID, models.RequestPending)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.partners.Respond(ctx, bob.ID, req.ID, "maybe")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = env.partners.Respond(ctx, ann.ID, req.ID, models.RequestAccepted)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "only the target can answer")

	_, err = env.partners.Respond(ctx, bob.ID, uuid.New(), models.RequestAccepted)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.partners.Respond(ctx, bob.ID, req.ID, models.RequestRejected)
	require.NoError(t, err)
	assert.Nil(t, env.partnerOf(t, ann.ID))
	assert.Nil(t, env.partnerOf(t, bob.ID))

	_, err = env.partners.Respond(ctx, bob.ID, req.ID, models.RequestAccepted)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Nil(t, env.partnerOf(t, ann.ID), "a resolved request cannot be flipped")
}

func TestAcceptReplacesExistingPartner(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")
	cat := env.user(t, "cat")

	first, err := env.partners.SendRequest(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.partners.Respond(ctx, bob.ID, first.ID, models.RequestAccepted)
	require.NoError(t, err)

	second, err := env.partners.SendRequest(ctx, cat.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.partners.Respond(ctx, bob.ID, second.ID, models.RequestAccepted)
	require.NoError(t, err)

	assert.Equal(t, cat.ID, *env.partnerOf(t, bob.ID))
	assert.Equal(t, bob.ID, *env.partnerOf(t, cat.ID))
	assert.Equal(t, bob.ID, *env.partnerOf(t, ann.ID), "the displaced partner keeps a one-sided link")
}

func TestAcceptRollsBackWhenSenderMissing(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	bob := env.user(t, "bob")

	req := &models.PartnerRequest{FromUserID: uuid.New(), ToUserID: bob.ID}
	require.NoError(t, env.store.Users.CreateRequest(ctx, req))

	_, err := env.partners.Respond(ctx, bob.ID, req.ID, models.RequestAccepted)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Nil(t, env.partnerOf(t, bob.ID), "responder link is rolled back")
	stored, err := env.store.Users.RequestByID(ctx, bob.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, stored.Status)
}

func TestPartnerGoals(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	ann := env.user(t, "ann")
	bob := env.user(t, "bob")

	goals, err := env.partners.PartnerGoals(ctx, ann.ID)
	require.NoError(t, err)
	assert.Empty(t, goals)

	partner, err := env.partners.CurrentPartner(ctx, ann.ID)
	require.NoError(t, err)
	assert.Nil(t, partner)

	target := fixedNow.Add(48 * time.Hour)
	_, err = env.goals.CreateGoal(ctx, bob.ID, models.GoalInput{Title: "Shared", TargetDate: &target, IsPublic: true})
	require.NoError(t, err)
	_, err = env.goals.CreateGoal(ctx, bob.ID, models.GoalInput{Title: "Private", TargetDate: &target})
	require.NoError(t, err)

	req, err := env.partners.SendRequest(ctx, ann.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.partners.Respond(ctx, bob.ID, req.ID, models.RequestAccepted)
	require.NoError(t, err)

	goals, err = env.partners.PartnerGoals(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Shared", goals[0].Title)
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	env := setupServices(t)
	ann := env.user(t, "ann")
	env.user(t, "annabel")
	env.user(t, "bob")

	users, err := env.partners.SearchUsers(ctx, ann.ID, "   ")
	require.NoError(t, err)
	assert.Empty(t, users)

	users, err = env.partners.SearchUsers(ctx, ann.ID, "ANN")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "annabel", users[0].Name)

	users, err = env.partners.SearchUsers(ctx, ann.ID, "example.com")
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
