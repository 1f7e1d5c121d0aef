package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"hostel/internal/middleware"
)

// CookieHelper writes the auth cookies used by browser clients.
type CookieHelper struct {
	secure        bool
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewCookieHelper creates a cookie helper.
func NewCookieHelper(secure bool, accessExpiry, refreshExpiry time.Duration) *CookieHelper {
	return &CookieHelper{secure: secure, accessExpiry: accessExpiry, refreshExpiry: refreshExpiry}
}

// SetAuthCookies stores both tokens as httpOnly cookies.
func (h *CookieHelper) SetAuthCookies(c echo.Context, accessToken, refreshToken string) {
	h.setCookie(c, middleware.AccessTokenCookie, accessToken, int(h.accessExpiry.Seconds()))
	h.setCookie(c, middleware.RefreshTokenCookie, refreshToken, int(h.refreshExpiry.Seconds()))
}

// ClearAuthCookies expires both token cookies.
func (h *CookieHelper) ClearAuthCookies(c echo.Context) {
	h.setCookie(c, middleware.AccessTokenCookie, "", -1)
	h.setCookie(c, middleware.RefreshTokenCookie, "", -1)
}

// RefreshToken returns the refresh token cookie value, if any.
func (h *CookieHelper) RefreshToken(c echo.Context) string {
	cookie, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *CookieHelper) setCookie(c echo.Context, name, value string, maxAge int) {
	// Browsers drop SameSite=None cookies that are not Secure.
	sameSite := http.SameSiteLaxMode
	if h.secure {
		sameSite = http.SameSiteNoneMode
	}
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: sameSite,
	})
}
