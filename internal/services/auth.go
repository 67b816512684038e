package services

import (
	"context"
	"errors"
	"strings"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/arnold/goalmate-api/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type AuthService struct {
	users *repository.UserRepository
	cost  int
}

func NewAuthService(store *repository.Store) *AuthService {
	return &AuthService{users: store.Users, cost: bcrypt.DefaultCost}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	const op = "auth.Register"

	name := strings.TrimSpace(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, apperr.Validation(op, "Please provide all required fields")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Validation(op, "Password must be at least 6 characters")
	}

	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict(op, "Email already registered", nil)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials. Unknown email and wrong password are reported
// the same way.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	const op = "auth.Login"

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validation(op, "Email and password are required")
	}

	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorized(op, "Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized(op, "Invalid credentials")
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.users.ByID(ctx, userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
