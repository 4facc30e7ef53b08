package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/backend"
	"github.com/iliyamo/eventx-studio/internal/guard"
	"github.com/iliyamo/eventx-studio/internal/inflight"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/repository"
	"github.com/iliyamo/eventx-studio/internal/seating"
	"github.com/iliyamo/eventx-studio/internal/session"
)

// Notice kinds.
const (
	KindSuccess = "success"
	KindWarning = "warning"
	KindError   = "error"
)

// Notice is the transient, dismissable message shown after an action.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func notice(c echo.Context, status int, kind, message string, extra echo.Map) error {
	body := echo.Map{"notice": Notice{Kind: kind, Message: message}}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(status, body)
}

func success(c echo.Context, message string, extra echo.Map) error {
	return notice(c, http.StatusOK, KindSuccess, message, extra)
}

// fail logs err and turns it into a notice.  fallback is shown when
// neither the backend nor the client gave a reason.
func fail(c echo.Context, l logger.Logger, err error, fallback string) error {
	if errors.Is(err, session.ErrNotReady) {
		l.Warn("session still loading", "method", c.Request().Method, "path", c.Path())
		return middleware.Decide(c, guard.Decision{Kind: guard.Placeholder})
	}
	status, kind, message := classify(err, fallback)
	l.Error("action failed",
		"method", c.Request().Method,
		"path", c.Path(),
		"status", status,
		"error", err,
	)
	return notice(c, status, kind, message, nil)
}

func classify(err error, fallback string) (int, string, string) {
	var (
		apiErr *backend.APIError
		valErr *backend.ValidationError
	)
	switch {
	case errors.Is(err, inflight.ErrInFlight):
		return http.StatusConflict, KindWarning, "already in progress"
	case errors.Is(err, seating.ErrSeatBooked):
		return http.StatusConflict, KindWarning, "Seat already booked"
	case errors.Is(err, seating.ErrNoEventSelected):
		return http.StatusBadRequest, KindWarning, "Select an event first"
	case errors.Is(err, seating.ErrSeatUnknown), errors.Is(err, seating.ErrSeatIndex):
		return http.StatusBadRequest, KindWarning, "No such seat"
	case errors.Is(err, seating.ErrSeatCountFixed):
		return http.StatusBadRequest, KindWarning, "Seat amount cannot be changed after creation"
	case errors.Is(err, session.ErrInvalidRole), errors.Is(err, session.ErrNoToken):
		return http.StatusUnauthorized, KindError, fallback
	case errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable, KindError, fallback
	case errors.As(err, &valErr):
		return http.StatusBadRequest, KindWarning, valErr.Message
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
		return status, KindError, backend.UserMessage(err, fallback)
	case backend.IsNetwork(err):
		return http.StatusBadGateway, KindError, fallback
	}
	return http.StatusInternalServerError, KindError, fallback
}

// bindError answers a request whose body could not be decoded.
func bindError(c echo.Context) error {
	return notice(c, http.StatusBadRequest, KindWarning, "invalid body", nil)
}
