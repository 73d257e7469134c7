package services

import (
	"context"
	"errors"
	"strings"

	"github.com/afisha-board/backend/internal/api/validate"
	"github.com/afisha-board/backend/internal/auth"
	"github.com/afisha-board/backend/internal/models"
	repo "github.com/afisha-board/backend/internal/repository"
)

// dummyHash is compared against when the username does not exist, so a failed
// lookup costs the same as a failed password check.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserService struct {
	r repo.Users
}

func NewUserService(r repo.Users) *UserService { return &UserService{r: r} }

// Register creates a new user. Usernames are case-sensitive and must be
// unique; the raw password is never persisted.
func (s *UserService) Register(ctx context.Context, username, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	var errs validate.Errs
	if ef := validate.Required("username", username); ef != nil {
		errs = append(errs, *ef)
	}
	if ef := validate.Required("password", password); ef != nil {
		errs = append(errs, *ef)
	}
	if len(errs) > 0 {
		return models.User{}, errs
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.r.Create(ctx, username, hash)
	if errors.Is(err, repo.ErrDuplicate) {
		return models.User{}, ErrDuplicateUsername
	}
	return u, err
}

// Authenticate verifies a login attempt. Unknown username and wrong password
// yield the same ErrInvalidCredentials, so callers cannot enumerate accounts.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.r.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			_ = auth.VerifyPassword(password, dummyHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if auth.VerifyPassword(password, u.PasswordHash) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (models.User, error) {
	u, err := s.r.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return models.User{}, ErrNotFound
	}
	return u, err
}
