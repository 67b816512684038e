package repository

import (
	"context"
	"errors"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRequestResolved is returned when a partner request has already been
// accepted or rejected.
var ErrRequestResolved = errors.New("partner request already resolved")

const searchLimit = 20

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("user.Create", "Email already registered", nil)
	}
	return err
}

func (r *UserRepository) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user.ByID", "User")
	}
	return &user, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err, "user.ByEmail", "User")
	}
	return &user, nil
}

// Search matches query against name or email, case-insensitively, and never
// returns the excluded user.
func (r *UserRepository) Search(ctx context.Context, excluding uuid.UUID, query string) ([]models.User, error) {
	pattern := containsPattern(query)

	var users []models.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", excluding).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("name ASC").
		Limit(searchLimit).
		Find(&users).Error
	return users, err
}

// AddScore adds delta to the stored score in a single UPDATE.
func (r *UserRepository) AddScore(ctx context.Context, id uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("score", gorm.Expr("score + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return apperr.NotFound("user.AddScore", "User")
	}
	return nil
}

// SetPartner points userID's partner link at partnerID.
func (r *UserRepository) SetPartner(ctx context.Context, userID, partnerID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("accountability_partner_id", partnerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return apperr.NotFound("user.SetPartner", "User")
	}
	return nil
}

func (r *UserRepository) RequestExists(ctx context.Context, toUserID, fromUserID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PartnerRequest{}).
		Where("to_user_id = ? AND from_user_id = ?", toUserID, fromUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) CreateRequest(ctx context.Context, req *models.PartnerRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Duplicate("partner.SendRequest", "Partner request already sent")
	}
	return err
}

// Requests lists the requests in toUserID's collection, oldest first, with
// the sender preloaded.
func (r *UserRepository) Requests(ctx context.Context, toUserID uuid.UUID) ([]models.PartnerRequest, error) {
	var requests []models.PartnerRequest
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Where("to_user_id = ?", toUserID).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

// RequestByID finds a request only within toUserID's collection.
func (r *UserRepository) RequestByID(ctx context.Context, toUserID, requestID uuid.UUID) (*models.PartnerRequest, error) {
	var req models.PartnerRequest
	err := r.db.WithContext(ctx).
		Where("id = ? AND to_user_id = ?", requestID, toUserID).
		First(&req).Error
	if err != nil {
		return nil, notFound(err, "partner.Respond", "Partner request")
	}
	return &req, nil
}

// ResolveRequest moves a pending request to status. It fails with
// ErrRequestResolved when the request is no longer pending.
func (r *UserRepository) ResolveRequest(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) error {
	res := r.db.WithContext(ctx).Model(&models.PartnerRequest{}).
		Where("id = ? AND status = ?", requestID, models.RequestPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrRequestResolved
	}
	return nil
}
