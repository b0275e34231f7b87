package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, token string) error
	Authorize(ctx context.Context, token string) (*Session, error)
}

type UserService struct {
	users      repository.UserRepository
	sessions   SessionStore
	sessionTTL time.Duration
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func NewUserService(users repository.UserRepository, sessions SessionStore, sessionTTL time.Duration) *UserService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &UserService{users: users, sessions: sessions, sessionTTL: sessionTTL}
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		return nil, domain.Invalid("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Invalid("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, domain.Invalid("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.users.Create(ctx, input.Name, email, input.Phone, string(hash))
}

// Login verifies the credentials and opens a session. Unknown addresses
// and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrEmailNotFound) {
		return nil, "", domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, Session{UserID: user.ID, Email: user.Email}, s.sessionTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *UserService) Authorize(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	return s.sessions.Resolve(ctx, token)
}

var _ UserUseCase = (*UserService)(nil)
