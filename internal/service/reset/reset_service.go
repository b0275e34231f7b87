package reset

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/kafka"
	"github.com/gdsingh/skybook/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type ResetUseCase interface {
	RequestReset(ctx context.Context, email string) (string, error)
	ValidateToken(ctx context.Context, token string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ResetService struct {
	tokens             repository.TokenRepository
	users              repository.UserRepository
	producer           Producer
	notificationsTopic string
	tokenTTL           time.Duration
	rateLimit          int
	rateWindow         time.Duration
	linkBase           string
	now                func() time.Time
}

func NewResetService(
	tokens repository.TokenRepository,
	users repository.UserRepository,
	producer Producer,
	notificationsTopic string,
	tokenTTL time.Duration,
	rateLimit int,
	rateWindow time.Duration,
	linkBase string,
) *ResetService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if rateLimit <= 0 {
		rateLimit = 3
	}
	if rateWindow <= 0 {
		rateWindow = time.Hour
	}
	return &ResetService{
		tokens:             tokens,
		users:              users,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		tokenTTL:           tokenTTL,
		rateLimit:          rateLimit,
		rateWindow:         rateWindow,
		linkBase:           linkBase,
		now:                time.Now,
	}
}

// RequestReset issues a single-use reset token for the account. At most
// rateLimit tokens may be issued per address within the trailing
// rateWindow, counting used and expired ones.
func (s *ResetService) RequestReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", domain.Invalid("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	issued, err := s.tokens.CountSince(ctx, email, s.now().Add(-s.rateWindow))
	if err != nil {
		return "", fmt.Errorf("count reset requests: %w", err)
	}
	if issued >= s.rateLimit {
		return "", domain.ErrRateLimited
	}

	token, err := newResetToken(email)
	if err != nil {
		return "", err
	}

	record := &domain.ResetToken{
		UserID:    user.ID,
		Email:     email,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokenTTL),
	}
	if err := s.tokens.Insert(ctx, record); err != nil {
		return "", err
	}

	link := s.linkBase + "?token=" + token
	event := kafka.NotificationEvent{
		Type:      kafka.EventResetRequested,
		Email:     email,
		ResetLink: link,
		ExpiresAt: record.ExpiresAt,
	}
	if err := s.publish(ctx, email, event); err != nil {
		log.Printf("WARNING: failed to publish reset_requested event for %s: %v", email, err)
	}
	return link, nil
}

// ValidateToken checks a token without consuming it, so a reset form can
// be rendered before the user submits a new password. It returns the
// address the token was issued for.
func (s *ResetService) ValidateToken(ctx context.Context, token string) (string, error) {
	record, err := s.lookup(ctx, token)
	if err != nil {
		return "", err
	}
	return record.Email, nil
}

// ResetPassword consumes the token and replaces the account password.
// The conditional update in Consume guarantees a token is spent at most
// once even under concurrent submissions.
func (s *ResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return domain.Invalid("password must be at least 8 characters")
	}

	record, err := s.lookup(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.tokens.Consume(ctx, token, s.now()); err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, record.UserID, record.Email, string(hash)); err != nil {
		return err
	}
	return nil
}

// CleanupExpired removes spent and expired tokens. The worker runs this
// on a timer.
func (s *ResetService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteStale(ctx)
}

func (s *ResetService) lookup(ctx context.Context, token string) (*domain.ResetToken, error) {
	if token == "" {
		return nil, domain.ErrInvalidResetToken
	}
	record, err := s.tokens.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if record.IsUsed || record.Expired(s.now()) {
		return nil, domain.ErrInvalidResetToken
	}
	return record, nil
}

func (s *ResetService) publish(ctx context.Context, key string, event kafka.NotificationEvent) error {
	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}
	return s.producer.Publish(ctx, s.notificationsTopic, key, event)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newResetToken derives an unguessable token from the address, 32 random
// bytes, and the current clock.
func newResetToken(email string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(email))
	h.Write(nonce)
	h.Write([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return hex.EncodeToString(h.Sum(nil)), nil
}

var _ ResetUseCase = (*ResetService)(nil)
