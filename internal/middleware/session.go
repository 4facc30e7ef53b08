package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/session"
	"github.com/iliyamo/eventx-studio/internal/utils"
)

const storeKey = "session_store"

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secret string
	TTL    time.Duration
	Secure bool
}

// Session opens the request's session store from the cookie and
// bootstraps it before any handler or guard runs.  A cookie that fails
// verification is cleared and treated as absent.  If the session record
// cannot be read the store is left Loading; guards render the placeholder.
func Session(cfg CookieConfig, m *session.Manager, l logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID := ""
			if ck, err := c.Cookie(cfg.Name); err == nil && ck.Value != "" {
				sid, err := utils.ParseSessionToken(cfg.Secret, ck.Value)
				if err != nil {
					ClearCookie(c, cfg)
				} else {
					sessionID = sid
				}
			}

			store := m.Open(sessionID)
			if err := store.Bootstrap(c.Request().Context()); err != nil {
				l.Error("session bootstrap failed", "error", err, "path", c.Path())
			}
			c.Set(storeKey, store)
			return next(c)
		}
	}
}

// Store returns the session store opened by Session.
func Store(c echo.Context) *session.Store {
	s, _ := c.Get(storeKey).(*session.Store)
	return s
}

// IssueCookie sets the signed session cookie for sessionID.
func IssueCookie(c echo.Context, cfg CookieConfig, sessionID string) error {
	tok, err := utils.NewSessionToken(cfg.Secret, sessionID, cfg.TTL)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     cfg.Name,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearCookie expires the session cookie.
func ClearCookie(c echo.Context, cfg CookieConfig) {
	c.SetCookie(&http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
