package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/inflight"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/seating"
)

// NotificationHandler serves the bell shared by both dashboards.
type NotificationHandler struct {
	InFlight inflight.Guard
	Log      logger.Logger
}

func NewNotificationHandler(guard inflight.Guard, l logger.Logger) *NotificationHandler {
	return &NotificationHandler{InFlight: guard, Log: l}
}

func (h *NotificationHandler) List(c echo.Context) error {
	items, err := middleware.Store(c).API().Notifications(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err, "Failed to load notifications")
	}
	return c.JSON(http.StatusOK, inboxOf(&seating.Inbox{Items: items}))
}

// MarkRead marks one notification read once the backend confirms it.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	s := middleware.Store(c)
	ctx := c.Request().Context()
	id := c.Param("id")

	items, err := s.API().Notifications(ctx)
	if err != nil {
		return fail(c, h.Log, err, "Failed to load notifications")
	}
	inbox := &seating.Inbox{Items: items}
	err = inflight.Do(ctx, h.InFlight, inflight.Key(s.ID(), "mark-read", id), func() error {
		return inbox.MarkRead(ctx, s.API(), id)
	})
	if err != nil {
		return fail(c, h.Log, err, "Failed to mark notification as read")
	}
	return c.JSON(http.StatusOK, inboxOf(inbox))
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	s := middleware.Store(c)
	ctx := c.Request().Context()

	items, err := s.API().Notifications(ctx)
	if err != nil {
		return fail(c, h.Log, err, "Failed to load notifications")
	}
	inbox := &seating.Inbox{Items: items}
	err = inflight.Do(ctx, h.InFlight, inflight.Key(s.ID(), "mark-all-read", "*"), func() error {
		return inbox.MarkAllRead(ctx, s.API())
	})
	if err != nil {
		return fail(c, h.Log, err, "Failed to mark notifications as read")
	}
	return c.JSON(http.StatusOK, inboxOf(inbox))
}
