package middleware

// identity.go holds helpers shared by the rate limit and cache middleware.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/session"
)

// currentUserID returns the signed-in identity's id, or "anon".
func currentUserID(c echo.Context) string {
	s := Store(c)
	if s == nil || s.State() != session.Authenticated {
		return "anon"
	}
	if id := s.Identity().ID; id != "" {
		return id
	}
	if email := s.Identity().Email; email != "" {
		return email
	}
	return "anon"
}
