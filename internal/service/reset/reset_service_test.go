package reset

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Insert(ctx context.Context, token *domain.ResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByToken(ctx context.Context, token string) (*domain.ResetToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResetToken), args.Error(1)
}

func (m *MockTokenRepository) CountSince(ctx context.Context, email string, since time.Time) (int, error) {
	args := m.Called(ctx, email, since)
	return args.Int(0), args.Error(1)
}

func (m *MockTokenRepository) Consume(ctx context.Context, token string, usedAt time.Time) error {
	args := m.Called(ctx, token, usedAt)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteStale(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, name, email, phone, passwordHash string) (*domain.User, error) {
	args := m.Called(ctx, name, email, phone, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID int64, email, passwordHash string) error {
	args := m.Called(ctx, userID, email, passwordHash)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService(tokens *MockTokenRepository, users *MockUserRepository, producer *MockProducer, now time.Time) *ResetService {
	// assign through a plain interface variable so a nil *MockProducer
	// stays a nil Producer instead of a non-nil interface wrapping nil
	var p Producer
	if producer != nil {
		p = producer
	}
	return &ResetService{
		tokens:             tokens,
		users:              users,
		producer:           p,
		notificationsTopic: "notifications",
		tokenTTL:           time.Hour,
		rateLimit:          3,
		rateWindow:         time.Hour,
		linkBase:           "https://skybook.test/reset-password",
		now:                func() time.Time { return now },
	}
}

func TestResetService_RequestReset_Success(t *testing.T) {
	mockTokens := &MockTokenRepository{}
	mockUsers := &MockUserRepository{}
	mockProducer := &MockProducer{}

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	service := newTestService(mockTokens, mockUsers, mockProducer, now)

	ctx := context.Background()
	user := &domain.User{ID: 7, Email: "pat@example.com"}

	mockUsers.On("GetByEmail", ctx, "pat@example.com").Return(user, nil).Once()
	mockTokens.On("CountSince", ctx, "pat@example.com", now.Add(-time.Hour)).Return(0, nil).Once()

	var inserted *domain.ResetToken
	mockTokens.On("Insert", ctx, mock.AnythingOfType("*domain.ResetToken")).
		Run(func(args mock.Arguments) {
			inserted = args.Get(1).(*domain.ResetToken)
		}).Return(nil).Once()
	mockProducer.On("Publish", ctx, "notifications", "pat@example.com", mock.Anything).Return(nil).Once()

	link, err := service.RequestReset(ctx, "pat@example.com")

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://skybook.test/reset-password?token="))

	assert.NotNil(t, inserted)
	assert.Equal(t, int64(7), inserted.UserID)
	assert.Equal(t, "pat@example.com", inserted.Email)
	assert.Equal(t, now.Add(time.Hour), inserted.ExpiresAt)

	// sha256 hex digest
	assert.Len(t, inserted.Token, 64)
	_, err = hex.DecodeString(inserted.Token)
	assert.NoError(t, err)

	mockTokens.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestResetService_RequestReset_NormalizesEmail(t *testing.T) {
	mockTokens := &MockTokenRepository{}
	mockUsers := &MockUserRepository{}

	now := time.Now()
	service := newTestService(mockTokens, mockUsers, nil, now)

	ctx := context.Background()
	user := &domain.User{ID: 7, Email: "pat@example.com"}

	mockUsers.On("GetByEmail", ctx, "pat@example.com").Return(user, nil).Once()
	mockTokens.On("CountSince", ctx, "pat@example.com", mock.AnythingOfType("time.Time")).Return(0, nil).Once()
	mockTokens.On("Insert", ctx, mock.AnythingOfType("*domain.ResetToken")).Return(nil).Once()

	_, err := service.RequestReset(ctx, "  Pat@Example.COM ")

	assert.NoError(t, err)
	mockUsers.AssertExpectations(t)
}

func TestResetService_RequestReset_UnknownEmail(t *testing.T) {
	mockTokens := &MockTokenRepository{}
	mockUsers := &MockUserRepository{}

	service := newTestService(mockTokens, mockUsers, nil, time.Now())

	ctx := context.Background()
	mockUsers.On("GetByEmail", ctx, "ghost@example.com").Return(nil, domain.ErrEmailNotFound).Once()

	link, err := service.RequestReset(ctx, "ghost@example.com")

	assert.Empty(t, link)
	assert.ErrorIs(t, err, domain.ErrEmailNotFound)
	mockTokens.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestResetService_RequestReset_RateLimited(t *testing.T) {
	mockTokens := &MockTokenRepository{}
	mockUsers := &MockUserRepository{}

	service := newTestService(mockTokens, mockUsers, nil, time.Now())

	ctx := context.Background()
	user := &domain.User{ID: 7, Email: "pat@example.com"}

	mockUsers.On("GetByEmail", ctx, "pat@example.com").Return(user, nil).Once()
	mockTokens.On("CountSince", ctx, "pat@example.com", mock.AnythingOfType("time.Time")).Return(3, nil).Once()

	link, err := service.RequestReset(ctx, "pat@example.com")

	assert.Empty(t, link)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	mockTokens.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestResetService_ValidateToken(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	testCases := []struct {
		name        string
		record      *domain.ResetToken
		recordErr   error
		expectedErr error
	}{
		{
			name:   "Valid token",
			record: &domain.ResetToken{Token: "abc", Email: "pat@example.com", ExpiresAt: now.Add(30 * time.Minute)},
		},
		{
			name:        "Already used",
			record:      &domain.ResetToken{Token: "abc", IsUsed: true, ExpiresAt: now.Add(30 * time.Minute)},
			expectedErr: domain.ErrInvalidResetToken,
		},
		{
			name:        "Expired a second ago",
			record:      &domain.ResetToken{Token: "abc", ExpiresAt: now.Add(-time.Second)},
			expectedErr: domain.ErrInvalidResetToken,
		},
		{
			name:        "Unknown token",
			recordErr:   domain.ErrInvalidResetToken,
			expectedErr: domain.ErrInvalidResetToken,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockTokens := &MockTokenRepository{}
			service := newTestService(mockTokens, &MockUserRepository{}, nil, now)

			if tc.record != nil {
				mockTokens.On("GetByToken", ctx, "abc").Return(tc.record, nil).Once()
			} else {
				mockTokens.On("GetByToken", ctx, "abc").Return(nil, tc.recordErr).Once()
			}

			email, err := service.ValidateToken(ctx, "abc")
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Empty(t, email)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "pat@example.com", email)
			}
		})
	}
}

func TestResetService_ValidateToken_Empty(t *testing.T) {
	service := newTestService(&MockTokenRepository{}, &MockUserRepository{}, nil, time.Now())
	_, err := service.ValidateToken(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
}

func TestResetService_ResetPassword_Success(t *testing.T) {
	mockTokens := &MockTokenRepository{}
	mockUsers := &MockUserRepository{}

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	service := newTestService(mockTokens, mockUsers, nil, now)

	ctx := context.Background()
	record := &domain.ResetToken{Token: "abc", UserID: 7, Email: "pat@example.com", ExpiresAt: now.Add(30 * time.Minute)}

	mockTokens.On("GetByToken", ctx, "abc").Return(record, nil).Once()
	mockTokens.On("Consume", ctx, "abc", now).Return(nil).Once()

	var storedHash string
	mockUsers.On("UpdatePassword", ctx, int64(7), "pat@example.com", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			storedHash = args.String(3)
		}).Return(nil).Once()

	err := service.ResetPassword(ctx, "abc", "brand-new-secret")

	assert.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("brand-new-secret")))
	mockTokens.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestResetService_ResetPassword_ShortPassword(t *testing.T) {
	service := newTestService(&MockTokenRepository{}, &MockUserRepository{}, nil, time.Now())

	err := service.ResetPassword(context.Background(), "abc", "short")

	assert.ErrorContains(t, err, "at least 8 characters")
}

func TestResetService_ResetPassword_ConsumeRace(t *testing.T) {
	mockTokens := &MockTokenRepository{}
	mockUsers := &MockUserRepository{}

	now := time.Now()
	service := newTestService(mockTokens, mockUsers, nil, now)

	ctx := context.Background()
	record := &domain.ResetToken{Token: "abc", UserID: 7, Email: "pat@example.com", ExpiresAt: now.Add(30 * time.Minute)}

	// another request consumed the token between lookup and consume
	mockTokens.On("GetByToken", ctx, "abc").Return(record, nil).Once()
	mockTokens.On("Consume", ctx, "abc", now).Return(domain.ErrInvalidResetToken).Once()

	err := service.ResetPassword(ctx, "abc", "brand-new-secret")

	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
	mockUsers.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestResetService_CleanupExpired(t *testing.T) {
	mockTokens := &MockTokenRepository{}
	service := newTestService(mockTokens, &MockUserRepository{}, nil, time.Now())

	ctx := context.Background()
	mockTokens.On("DeleteStale", ctx).Return(int64(5), nil).Once()

	removed, err := service.CleanupExpired(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(5), removed)
}

func TestNewResetToken_Unique(t *testing.T) {
	first, err := newResetToken("pat@example.com")
	assert.NoError(t, err)

	second, err := newResetToken("pat@example.com")
	assert.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
