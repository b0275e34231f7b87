package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gdsingh/skybook/internal/domain"
	"github.com/gdsingh/skybook/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) Register(ctx context.Context, input users.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *MockUserUseCase) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockUserUseCase) Authorize(ctx context.Context, token string) (*users.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.Session), args.Error(1)
}

func newUserTestContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	raw, err := json.Marshal(body)
	assert.NoError(t, err)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestUserHandler_register_Success(t *testing.T) {
	mockService := &MockUserUseCase{}
	handler := NewUserHandler(mockService)

	input := users.RegisterInput{Name: "Pat", Email: "pat@example.com", Password: "hunter2hunter2"}
	c, w := newUserTestContext(t, "POST", "/api/register", input)

	created := &domain.User{ID: 7, Name: "Pat", Email: "pat@example.com"}
	mockService.On("Register", c.Request.Context(), input).Return(created, nil)

	handler.register(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(7), response["user_id"])
}

func TestUserHandler_register_EmailTaken(t *testing.T) {
	mockService := &MockUserUseCase{}
	handler := NewUserHandler(mockService)

	input := users.RegisterInput{Name: "Pat", Email: "pat@example.com", Password: "hunter2hunter2"}
	c, w := newUserTestContext(t, "POST", "/api/register", input)

	mockService.On("Register", c.Request.Context(), input).Return(nil, domain.ErrEmailTaken)

	handler.register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUserHandler_login_Success(t *testing.T) {
	mockService := &MockUserUseCase{}
	handler := NewUserHandler(mockService)

	c, w := newUserTestContext(t, "POST", "/api/login", loginRequest{Email: "pat@example.com", Password: "hunter2hunter2"})

	user := &domain.User{ID: 7, Name: "Pat", Email: "pat@example.com"}
	mockService.On("Login", c.Request.Context(), "pat@example.com", "hunter2hunter2").
		Return(user, "session-token", nil)

	handler.login(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "session-token", response["token"])
}

func TestUserHandler_login_BadCredentials(t *testing.T) {
	mockService := &MockUserUseCase{}
	handler := NewUserHandler(mockService)

	c, w := newUserTestContext(t, "POST", "/api/login", loginRequest{Email: "pat@example.com", Password: "wrong"})

	mockService.On("Login", c.Request.Context(), "pat@example.com", "wrong").
		Return(nil, "", domain.ErrInvalidCredentials)

	handler.login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RejectsMissingToken(t *testing.T) {
	mockService := &MockUserUseCase{}

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings", nil)

	mockService.On("Authorize", c.Request.Context(), "").Return(nil, domain.ErrSessionNotFound)

	Auth(mockService)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestAuthMiddleware_AcceptsBearerToken(t *testing.T) {
	mockService := &MockUserUseCase{}

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings", nil)
	c.Request.Header.Set("Authorization", "Bearer session-token")

	sess := &users.Session{UserID: 7, Email: "pat@example.com"}
	mockService.On("Authorize", c.Request.Context(), "session-token").Return(sess, nil)

	Auth(mockService)(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, sess, currentSession(c))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "", bearerToken("abc"))
	assert.Equal(t, "", bearerToken(""))
	assert.Equal(t, "", bearerToken("Basic abc"))
}
