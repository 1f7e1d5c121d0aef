// Package middleware authenticates requests and enforces roles.
package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"hostel/internal/auth"
	"hostel/internal/errors"
	"hostel/internal/model"
)

const (
	// AccessTokenCookie carries the access token for browser clients.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie carries the refresh token for browser clients.
	RefreshTokenCookie = "refreshToken"

	tokenContextKey     = "token"
	principalContextKey = "principal"
)

// Principal is the authenticated caller.
type Principal struct {
	ID        uuid.UUID
	Role      model.Role
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the caller is an administrator.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// JWT verifies the access token from the Authorization header or the
// accessToken cookie, rejects revoked tokens and stores the Principal.
func JWT(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:    jwtService.AccessSecret(),
		SigningMethod: echojwt.AlgorithmHS256,
		TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + AccessTokenCookie,
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return new(auth.Claims) },
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized(errors.ErrUnauthenticated.Withf("invalid access token"))
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return unauthorized(errors.ErrUnauthenticated)
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return unauthorized(errors.ErrUnauthenticated)
			}
			userID, err := claims.UserID()
			if err != nil {
				return unauthorized(errors.ErrUnauthenticated.Withf("invalid access token"))
			}

			revoked, err := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil || revoked {
				return unauthorized(errors.ErrUnauthenticated.Withf("access token has been revoked"))
			}

			p := &Principal{ID: userID, Role: claims.Role, TokenID: claims.ID}
			if claims.ExpiresAt != nil {
				p.ExpiresAt = claims.ExpiresAt.Time
			}
			c.Set(principalContextKey, p)
			return next(c)
		})
	}
}

// RequireRole rejects callers whose role is not in roles with 403.
// It must run after JWT.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := PrincipalFrom(c)
			if !ok {
				return unauthorized(errors.ErrUnauthenticated)
			}
			if !allowed[p.Role] {
				return echo.NewHTTPError(http.StatusForbidden, errors.MapErrorToHTTP(errors.ErrForbidden).ToErrorResponse())
			}
			return next(c)
		}
	}
}

// PrincipalFrom returns the caller stored by JWT.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalContextKey).(*Principal)
	return p, ok && p != nil
}

// WithPrincipal stores p on the context. Tests use it to skip token parsing.
func WithPrincipal(c echo.Context, p *Principal) {
	c.Set(principalContextKey, p)
}

func unauthorized(err *errors.Error) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.MapErrorToHTTP(err).ToErrorResponse())
}
