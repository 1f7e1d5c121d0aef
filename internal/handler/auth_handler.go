package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hostel/internal/errors"
	"hostel/internal/middleware"
	"hostel/internal/model"
	"hostel/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookies     *CookieHelper
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, cookies *CookieHelper) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies}
}

// LoginRequest represents a user login request. Either username or email is required.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
// The refreshToken cookie is used when the body carries no token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *model.User `json:"user,omitempty"`
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=AuthResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	tokens, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	h.cookies.SetAuthCookies(c, tokens.AccessToken, tokens.RefreshToken)
	return respond(c, http.StatusOK, "User logged in successfully", AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	})
}

// Logout godoc
// @Summary Logout user
// @Description Revokes the access token and the stored refresh token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return respondError(c, errors.ErrUnauthenticated)
	}

	if err := h.authService.Logout(c.Request().Context(), p.ID, p.TokenID, p.ExpiresAt); err != nil {
		return respondError(c, err)
	}

	h.cookies.ClearAuthCookies(c)
	return respond(c, http.StatusOK, "User logged out", nil)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Rotates the refresh token. Each refresh token can be used once.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token"
// @Success 200 {object} Response{data=AuthResponse}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/refresh-token [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	token := req.RefreshToken
	if token == "" {
		token = h.cookies.RefreshToken(c)
	}

	tokens, err := h.authService.Refresh(c.Request().Context(), token)
	if err != nil {
		return respondError(c, err)
	}

	h.cookies.SetAuthCookies(c, tokens.AccessToken, tokens.RefreshToken)
	return respond(c, http.StatusOK, "Access token refreshed", AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}
