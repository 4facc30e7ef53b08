package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/guard"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/model"
	"github.com/iliyamo/eventx-studio/internal/session"
)

const (
	loginFailed        = "Login failed. Check your email or password."
	registrationFailed = "Registration failed"
)

// AuthHandler serves the session operations and public screens.
type AuthHandler struct {
	Cookie middleware.CookieConfig
	Log    logger.Logger
}

func NewAuthHandler(cookie middleware.CookieConfig, l logger.Logger) *AuthHandler {
	return &AuthHandler{Cookie: cookie, Log: l}
}

type sessionView struct {
	State    string          `json:"state"`
	Identity *model.Identity `json:"identity,omitempty"`
}

func sessionOf(s *session.Store) sessionView {
	v := sessionView{State: s.State().String()}
	if s.State() == session.Authenticated {
		id := s.Identity()
		v.Identity = &id
	}
	return v
}

// Root sends the browser to the role's dashboard or to login.
func (h *AuthHandler) Root(c echo.Context) error {
	s := middleware.Store(c)
	return middleware.Decide(c, guard.Root(s.State(), s.Identity()))
}

// LoginScreen and RegisterScreen are public; they report the session so a
// signed-in browser can move on.
func (h *AuthHandler) LoginScreen(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"screen": "login", "session": sessionOf(middleware.Store(c))})
}

func (h *AuthHandler) RegisterScreen(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"screen": "register", "session": sessionOf(middleware.Store(c))})
}

// Session reports the current state and identity.
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionOf(middleware.Store(c)))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var creds model.Credentials
	if err := c.Bind(&creds); err != nil {
		return bindError(c)
	}
	s := middleware.Store(c)
	identity, err := s.Login(c.Request().Context(), creds)
	if err != nil {
		return fail(c, h.Log, err, loginFailed)
	}
	return h.signedIn(c, s, identity, "Login successful")
}

func (h *AuthHandler) Register(c echo.Context) error {
	var reg model.Registration
	if err := c.Bind(&reg); err != nil {
		return bindError(c)
	}
	s := middleware.Store(c)
	identity, err := s.Register(c.Request().Context(), reg)
	if err != nil {
		return fail(c, h.Log, err, registrationFailed)
	}
	return h.signedIn(c, s, identity, "Registration successful")
}

func (h *AuthHandler) signedIn(c echo.Context, s *session.Store, identity model.Identity, message string) error {
	if err := middleware.IssueCookie(c, h.Cookie, s.ID()); err != nil {
		h.Log.Error("issue session cookie", "error", err)
		return notice(c, http.StatusInternalServerError, KindError, loginFailed, nil)
	}
	h.Log.Info("signed in", "user_id", identity.ID, "role", identity.Role)
	return success(c, message, echo.Map{
		"identity": identity,
		"redirect": guard.DashboardFor(identity.Role),
	})
}

// Logout is local only: the record and cookie go, the backend is not told.
func (h *AuthHandler) Logout(c echo.Context) error {
	s := middleware.Store(c)
	if err := s.Logout(c.Request().Context()); err != nil {
		h.Log.Warn("logout: session record not deleted", "error", err)
	}
	middleware.ClearCookie(c, h.Cookie)
	return success(c, "Logged out", echo.Map{"redirect": guard.LoginPath})
}
