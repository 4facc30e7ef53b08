package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/guard"
	"github.com/iliyamo/eventx-studio/internal/model"
)

// RequireRole runs the route guard for a subtree that needs role.  It
// assumes Session has already placed the store in the context.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := Store(c)
			if s == nil {
				return Decide(c, guard.Decision{Kind: guard.Placeholder})
			}
			d := guard.Evaluate(s.State(), s.Identity(), role)
			if d.Kind != guard.Render {
				return Decide(c, d)
			}
			return next(c)
		}
	}
}

// RequireSession guards screens open to any signed-in role.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := Store(c)
			if s == nil {
				return Decide(c, guard.Decision{Kind: guard.Placeholder})
			}
			d := guard.Evaluate(s.State(), s.Identity(), "")
			if d.Kind != guard.Render {
				return Decide(c, d)
			}
			return next(c)
		}
	}
}

// Decide writes the response for a guard decision other than Render.
//
// Page navigations (GET, HEAD) get a 302, which replaces the history entry
// the way the guard requires.  Other methods cannot follow a redirect
// meaningfully, so they get 401 (to login) or 403 (to root) with the
// target in the body.
func Decide(c echo.Context, d guard.Decision) error {
	switch d.Kind {
	case guard.Placeholder:
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	case guard.Redirect:
		method := c.Request().Method
		if method == http.MethodGet || method == http.MethodHead {
			return c.Redirect(http.StatusFound, d.Location)
		}
		status, code := http.StatusForbidden, "forbidden"
		if d.Location == guard.LoginPath {
			status, code = http.StatusUnauthorized, "unauthorized"
		}
		return c.JSON(status, map[string]any{
			"error":    code,
			"redirect": d.Location,
			"replace":  d.Replace,
		})
	}
	return nil
}
