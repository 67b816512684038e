package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestAccepted, RequestRejected:
		return true
	default:
		return false
	}
}

// IsDecision reports whether s is a valid response to a pending request.
func (s RequestStatus) IsDecision() bool {
	return s.IsTerminal()
}

// PartnerRequest lives in the target user's collection (ToUserID).
type PartnerRequest struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	ToUserID   uuid.UUID     `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_partner_request_pair"`
	FromUserID uuid.UUID     `json:"-" gorm:"type:uuid;not null;uniqueIndex:idx_partner_request_pair"`
	FromUser   *User         `json:"user,omitempty" gorm:"foreignKey:FromUserID"`
	Status     RequestStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

func (r *PartnerRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = RequestPending
	}
	return nil
}

type RespondRequest struct {
	Status RequestStatus `json:"status"`
}

// PartnerRequestView is the listing shape: the request plus the sender's
// public profile.
type PartnerRequestView struct {
	ID        uuid.UUID     `json:"id"`
	User      PublicUser    `json:"user"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (r *PartnerRequest) View() PartnerRequestView {
	v := PartnerRequestView{
		ID:        r.ID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
	if r.FromUser != nil {
		v.User = r.FromUser.Public()
	} else {
		v.User = PublicUser{ID: r.FromUserID}
	}
	return v
}
