package service

import (
	"context"
	"errors"
	"strings"

	dom "github.com/suchockipawel/nottodo/internal/domain"
	"github.com/suchockipawel/nottodo/internal/repo"
	"github.com/suchockipawel/nottodo/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email address already in use")
)

// UserService handles user auth logic.
type UserService struct {
	repo repo.UserRepo
}

// NewUserService returns a new UserService.
func NewUserService(repo repo.UserRepo) *UserService {
	return &UserService{repo: repo}
}

// ValidateCredentials checks username and password; returns user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new user with hashed password.
func (s *UserService) Register(ctx context.Context, username, email, password string) (dom.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" || email == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, username, email, string(hash))
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			if strings.Contains(utils.PGConstraintName(err), "email") {
				return dom.User{}, ErrEmailTaken
			}
			return dom.User{}, ErrUsernameTaken
		}
		return dom.User{}, err
	}
	return u, nil
}

// ChangeEmail updates where the user's reminders are sent.
func (s *UserService) ChangeEmail(ctx context.Context, userID int64, email string) (dom.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.repo.UpdateEmail(ctx, userID, email)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrEmailTaken
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}
