package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/backend"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/repository"
	"github.com/iliyamo/eventx-studio/internal/seating"
)

const createKey = "create"

func (h *AdminHandler) loadCreateDraft(ctx context.Context, sessionID string) (*seating.CreateDraft, error) {
	var d seating.CreateDraft
	err := h.Screens.Load(ctx, sessionID, createKey, &d)
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return seating.NewCreateDraft(), nil
}

// AddEvent shows the creation form.
func (h *AdminHandler) AddEvent(c echo.Context) error {
	d, err := h.loadCreateDraft(c.Request().Context(), middleware.Store(c).ID())
	if err != nil {
		return fail(c, h.Log, err, "Failed to load form")
	}
	return c.JSON(http.StatusOK, viewOf(d.Event))
}

// PatchNewEvent edits the creation form.  Changing totalSeats regenerates
// the grid, all unbooked, capped at seating.MaxSeats.
func (h *AdminHandler) PatchNewEvent(c echo.Context) error {
	var fields seating.EventFields
	if err := c.Bind(&fields); err != nil {
		return bindError(c)
	}
	if err := h.Validate.Struct(fields); err != nil {
		return fail(c, h.Log, backend.Declined("invalid event fields"), "")
	}
	s := middleware.Store(c)
	ctx := c.Request().Context()
	release, err := lockScreen(ctx, h.InFlight, s.ID(), createKey)
	if err != nil {
		return fail(c, h.Log, err, "Failed to update form")
	}
	defer release()

	d, err := h.loadCreateDraft(ctx, s.ID())
	if err != nil {
		return fail(c, h.Log, err, "Failed to load form")
	}
	d.Apply(fields)
	if err := h.Screens.Store(ctx, s.ID(), createKey, d); err != nil {
		return fail(c, h.Log, err, "Failed to update form")
	}
	return c.JSON(http.StatusOK, viewOf(d.Event))
}

func (h *AdminHandler) ToggleNewSeat(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, h.Log, seating.ErrSeatIndex, "")
	}
	s := middleware.Store(c)
	ctx := c.Request().Context()
	release, err := lockScreen(ctx, h.InFlight, s.ID(), createKey)
	if err != nil {
		return fail(c, h.Log, err, "Failed to update form")
	}
	defer release()

	d, err := h.loadCreateDraft(ctx, s.ID())
	if err != nil {
		return fail(c, h.Log, err, "Failed to load form")
	}
	if err := d.Toggle(index); err != nil {
		return fail(c, h.Log, err, "")
	}
	if err := h.Screens.Store(ctx, s.ID(), createKey, d); err != nil {
		return fail(c, h.Log, err, "Failed to update form")
	}
	return c.JSON(http.StatusOK, viewOf(d.Event))
}

// CreateEvent posts the form.  Only one create per session runs at a time.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	s := middleware.Store(c)
	ctx := c.Request().Context()
	release, err := lockScreen(ctx, h.InFlight, s.ID(), createKey)
	if err != nil {
		return fail(c, h.Log, err, "Failed to create event")
	}
	defer release()

	d, err := h.loadCreateDraft(ctx, s.ID())
	if err != nil {
		return fail(c, h.Log, err, "Failed to create event")
	}
	created := d.Event
	err = h.guarded(ctx, s.ID(), "create-event", "new", func() error {
		ev, err := s.API().CreateEvent(ctx, d.Event)
		if err != nil {
			return err
		}
		if ev.ID != "" {
			created = ev
		}
		return nil
	})
	if err != nil {
		return fail(c, h.Log, err, "Failed to create event")
	}
	if err := h.Screens.Delete(ctx, s.ID(), createKey); err != nil {
		h.Log.Warn("drop creation draft", "error", err)
	}
	return success(c, "Event created successfully", echo.Map{
		"event":    viewOf(created),
		"redirect": "/admin/manage-events",
	})
}
