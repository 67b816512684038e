package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                      uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	Name                    string           `json:"name" gorm:"not null"`
	Email                   string           `json:"email" gorm:"uniqueIndex;not null"`
	Password                string           `json:"-"`
	Avatar                  string           `json:"avatar"`
	Score                   int              `json:"score" gorm:"not null;default:0"`
	AccountabilityPartnerID *uuid.UUID       `json:"accountabilityPartner" gorm:"type:uuid;index"`
	PartnerRequests         []PartnerRequest `json:"partnerRequests,omitempty" gorm:"foreignKey:ToUserID"`
	CreatedAt               time.Time        `json:"createdAt"`
	UpdatedAt               time.Time        `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasPartner reports whether the user is currently linked to a partner.
func (u *User) HasPartner() bool {
	return u.AccountabilityPartnerID != nil && *u.AccountabilityPartnerID != uuid.Nil
}

// Public returns the profile fields other users may see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.Avatar,
		Score:  u.Score,
	}
}

type PublicUser struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Avatar string    `json:"avatar"`
	Score  int       `json:"score"`
}

// Auth DTOs
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
