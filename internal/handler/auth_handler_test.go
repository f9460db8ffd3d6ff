package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-activity-api/internal/middleware"
	"github.com/noah-isme/sma-activity-api/internal/models"
	appErrors "github.com/noah-isme/sma-activity-api/pkg/errors"
)

type authServiceMock struct {
	loggedOut *models.JWTClaims
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "password" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	return &models.LoginResponse{Token: "t", ExpiresIn: 3600, User: models.User{ID: 1, Username: req.Username}}, nil
}

func (m *authServiceMock) Logout(ctx context.Context, claims *models.JWTClaims) error {
	m.loggedOut = claims
	return nil
}

func TestAuthHandlerLogin(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := newTestContext(http.MethodPost, "/api/auth/login", `{"username":"ana","password":"password"}`)
	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"token":"t"`)
	assert.NotContains(t, w.Body.String(), "password_hash")

	c, w = newTestContext(http.MethodPost, "/api/auth/login", `{"username":"ana","password":"nope"}`)
	handler.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLogout(t *testing.T) {
	mockSvc := &authServiceMock{}
	handler := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/api/auth/logout", "")
	claims := &models.JWTClaims{UserID: 1}
	c.Set(middleware.ContextUserKey, claims)
	handler.Logout(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, claims, mockSvc.loggedOut)
}
