package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/arnold/goalmate-api/internal/repository"
	"github.com/google/uuid"
)

// PartnerService runs the partner request lifecycle: pending, then accepted
// or rejected exactly once. Acceptance links both users.
type PartnerService struct {
	store *repository.Store
	now   func() time.Time
}

func NewPartnerService(store *repository.Store) *PartnerService {
	return &PartnerService{store: store, now: time.Now}
}

// SendRequest files a pending request from fromID into toID's collection.
func (s *PartnerService) SendRequest(ctx context.Context, fromID, toID uuid.UUID) (*models.PartnerRequest, error) {
	const op = "partner.SendRequest"

	if fromID == toID {
		return nil, apperr.Validation(op, "Cannot send partner request to yourself")
	}
	if _, err := s.store.Users.ByID(ctx, toID); err != nil {
		return nil, err
	}

	exists, err := s.store.Users.RequestExists(ctx, toID, fromID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Duplicate(op, "Partner request already sent")
	}

	req := &models.PartnerRequest{
		ToUserID:   toID,
		FromUserID: fromID,
		Status:     models.RequestPending,
	}
	if err := s.store.Users.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *PartnerService) ListRequests(ctx context.Context, userID uuid.UUID) ([]models.PartnerRequestView, error) {
	requests, err := s.store.Users.Requests(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]models.PartnerRequestView, 0, len(requests))
	for i := range requests {
		views = append(views, requests[i].View())
	}
	return views, nil
}

// Respond resolves a pending request in userID's collection. Accepting sets
// the partner link on both users in the same transaction as the status
// change.
func (s *PartnerService) Respond(ctx context.Context, userID, requestID uuid.UUID, decision models.RequestStatus) (*models.PartnerRequest, error) {
	const op = "partner.Respond"

	if !decision.IsDecision() {
		return nil, apperr.Validation(op, "Invalid status")
	}

	var resolved *models.PartnerRequest
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		req, err := tx.Users.RequestByID(ctx, userID, requestID)
		if err != nil {
			return err
		}
		if req.Status.IsTerminal() {
			return repository.ErrRequestResolved
		}

		if err := tx.Users.ResolveRequest(ctx, req.ID, decision); err != nil {
			return err
		}
		req.Status = decision

		if decision == models.RequestAccepted {
			if err := link(ctx, tx, req.ToUserID, req.FromUserID); err != nil {
				return err
			}
		}
		resolved = req
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrRequestResolved) {
			return nil, apperr.Conflict(op, "Partner request has already been answered", err)
		}
		return nil, err
	}
	return resolved, nil
}

// link points both users at each other. An existing partner on either side
// is replaced; the displaced partner keeps their own link.
func link(ctx context.Context, tx *repository.Store, a, b uuid.UUID) error {
	for _, pair := range [][2]uuid.UUID{{a, b}, {b, a}} {
		user, err := tx.Users.ByID(ctx, pair[0])
		if err != nil {
			return err
		}
		if user.HasPartner() && *user.AccountabilityPartnerID != pair[1] {
			slog.WarnContext(ctx, "replacing existing accountability partner",
				"user_id", user.ID,
				"previous_partner_id", *user.AccountabilityPartnerID,
				"new_partner_id", pair[1])
		}
		if err := tx.Users.SetPartner(ctx, pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}

// PartnerGoals lists the public goals of userID's partner, or nothing when
// unpaired.
func (s *PartnerService) PartnerGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	user, err := s.store.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasPartner() {
		return []models.Goal{}, nil
	}

	goals, err := s.store.Goals.PublicByOwner(ctx, *user.AccountabilityPartnerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range goals {
		goals[i].Refresh(now)
	}
	return goals, nil
}

// CurrentPartner returns the partner's public profile, or nil when unpaired.
func (s *PartnerService) CurrentPartner(ctx context.Context, userID uuid.UUID) (*models.PublicUser, error) {
	user, err := s.store.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasPartner() {
		return nil, nil
	}

	partner, err := s.store.Users.ByID(ctx, *user.AccountabilityPartnerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	public := partner.Public()
	return &public, nil
}

// SearchUsers finds other users by name or email. A blank query matches
// nobody.
func (s *PartnerService) SearchUsers(ctx context.Context, excluding uuid.UUID, query string) ([]models.PublicUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.PublicUser{}, nil
	}

	users, err := s.store.Users.Search(ctx, excluding, query)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}
