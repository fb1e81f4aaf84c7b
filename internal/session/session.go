// Package session wraps the browser-persisted token and role behind a small
// store interface so the guard and login flow never touch cookies directly.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	tokenCookie = "token"
	roleCookie  = "userRole"
)

type Store interface {
	Token(c echo.Context) string
	Role(c echo.Context) string
	SetToken(c echo.Context, token string, exp time.Time)
	SetRole(c echo.Context, role string, exp time.Time)
	// Clear removes both the token and the role. Logout always purges both.
	Clear(c echo.Context)
}

type CookieStore struct{}

func NewCookieStore() *CookieStore { return &CookieStore{} }

func createCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *CookieStore) Token(c echo.Context) string {
	cookie, err := c.Cookie(tokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *CookieStore) Role(c echo.Context) string {
	cookie, err := c.Cookie(roleCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (s *CookieStore) SetToken(c echo.Context, token string, exp time.Time) {
	c.SetCookie(createCookie(tokenCookie, token, "/", exp))
}

func (s *CookieStore) SetRole(c echo.Context, role string, exp time.Time) {
	c.SetCookie(createCookie(roleCookie, role, "/", exp))
}

func (s *CookieStore) Clear(c echo.Context) {
	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(createCookie(tokenCookie, "", "/", expired))
	c.SetCookie(createCookie(roleCookie, "", "/", expired))
}

// MemoryStore holds a single session in memory. Test double for the cookie
// store.
type MemoryStore struct {
	token string
	role  string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Token(echo.Context) string { return s.token }
func (s *MemoryStore) Role(echo.Context) string  { return s.role }

func (s *MemoryStore) SetToken(_ echo.Context, token string, _ time.Time) { s.token = token }
func (s *MemoryStore) SetRole(_ echo.Context, role string, _ time.Time)   { s.role = role }

func (s *MemoryStore) Clear(echo.Context) {
	s.token = ""
	s.role = ""
}
