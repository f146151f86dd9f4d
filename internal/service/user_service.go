package service

import (
	"context"
	"fmt"

	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/repository"
	"github.com/google/uuid"
)

// UserService handles account creation and lookup.
type UserService struct {
	users *repository.UserRepository
	auth  *AuthService
}

// NewUserService creates a new UserService.
func NewUserService(users *repository.UserRepository, auth *AuthService) *UserService {
	return &UserService{users: users, auth: auth}
}

// Register creates a student account. Returns model.ErrConflict when the
// email is already taken.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies credentials and returns the account.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, model.ErrNotFound
	}
	return user, nil
}

// GetByID retrieves an account by id.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
