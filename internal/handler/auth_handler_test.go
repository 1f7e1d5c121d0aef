package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hostel/internal/errors"
	"hostel/internal/middleware"
	"hostel/internal/model"
	"hostel/internal/service"
)

func newAuthServer(svc *MockAuthService, p *middleware.Principal) *echo.Echo {
	h := NewAuthHandler(svc, NewCookieHelper(true, time.Hour, 24*time.Hour))
	e := newEcho()
	e.POST("/login", h.Login)
	e.POST("/refresh-token", h.Refresh)
	e.POST("/logout", h.Logout, asUser(p))
	return e
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*MockAuthService)
		wantStatus int
		wantCode   string
	}{
		{
			name: "success",
			body: `{"username":"ali","password":"secret"}`,
			setup: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "ali", "", "secret").
					Return(&service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, &model.User{Username: "ali"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "invalid credentials",
			body: `{"email":"ali@hostel.test","password":"wrong"}`,
			setup: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "", "ali@hostel.test", "wrong").Return(nil, nil, errors.ErrInvalidCredentials)
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "INVALID_CREDENTIALS",
		},
		{
			name:       "missing password",
			body:       `{"username":"ali"}`,
			setup:      func(*MockAuthService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			setup:      func(*MockAuthService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			tt.setup(svc)
			e := newAuthServer(svc, student())

			rec := serve(e, jsonRequest(http.MethodPost, "/login", tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_LoginSetsCookies(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, "ali", "", "secret").
		Return(&service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, &model.User{Username: "ali"}, nil)
	e := newAuthServer(svc, student())

	rec := serve(e, jsonRequest(http.MethodPost, "/login", `{"username":"ali","password":"secret"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var data AuthResponse
	env := decodeEnvelope(t, rec, &data)
	assert.True(t, env.Success)
	assert.Equal(t, "access", data.AccessToken)
	assert.Equal(t, "refresh", data.RefreshToken)
	assert.Equal(t, "ali", data.User.Username)

	access := cookieByName(rec, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "access", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, http.SameSiteNoneMode, access.SameSite)
	refresh := cookieByName(rec, middleware.RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh", refresh.Value)
}

func TestAuthHandler_RefreshFallsBackToCookie(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Refresh", mock.Anything, "old-refresh").
		Return(&service.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil)
	e := newAuthServer(svc, student())

	req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: middleware.RefreshTokenCookie, Value: "old-refresh"})
	rec := serve(e, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var data AuthResponse
	decodeEnvelope(t, rec, &data)
	assert.Equal(t, "new-refresh", data.RefreshToken)
	assert.Equal(t, "new-access", cookieByName(rec, middleware.AccessTokenCookie).Value)
	svc.AssertExpectations(t)
}

func TestAuthHandler_RefreshRejected(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Refresh", mock.Anything, "used").Return(nil, errors.ErrInvalidRefreshToken)
	e := newAuthServer(svc, student())

	rec := serve(e, jsonRequest(http.MethodPost, "/refresh-token", `{"refresh_token":"used"}`))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", decodeError(t, rec).Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	p := student()
	svc := new(MockAuthService)
	svc.On("Logout", mock.Anything, p.ID, p.TokenID, p.ExpiresAt).Return(nil)
	e := newAuthServer(svc, p)

	rec := serve(e, httptest.NewRequest(http.MethodPost, "/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	access := cookieByName(rec, middleware.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Less(t, access.MaxAge, 0)
	svc.AssertExpectations(t)
}
