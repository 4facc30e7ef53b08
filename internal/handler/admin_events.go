package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/backend"
	"github.com/iliyamo/eventx-studio/internal/guard"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/repository"
	"github.com/iliyamo/eventx-studio/internal/seating"
	"github.com/iliyamo/eventx-studio/internal/session"
)

func editKey(eventID string) string { return "edit:" + eventID }

type draftView struct {
	eventView
	Dirty bool `json:"dirty"`
}

func editViewOf(d *seating.EditDraft) draftView {
	return draftView{eventView: viewOf(d.Event), Dirty: d.Dirty}
}

// loadEditDraft returns the session's pending draft for eventID, starting
// one from the backend's copy when there is none or fresh is set.
func (h *AdminHandler) loadEditDraft(ctx context.Context, s *session.Store, eventID string, fresh bool) (*seating.EditDraft, error) {
	if !fresh {
		var d seating.EditDraft
		err := h.Screens.Load(ctx, s.ID(), editKey(eventID), &d)
		if err == nil {
			return &d, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	ev, err := s.API().GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	d := seating.NewEditDraft(ev)
	if err := h.Screens.Store(ctx, s.ID(), editKey(eventID), d); err != nil {
		return nil, err
	}
	return d, nil
}

// EditEvent shows the edit draft.  ?refresh=true discards local changes.
func (h *AdminHandler) EditEvent(c echo.Context) error {
	s := middleware.Store(c)
	ctx := c.Request().Context()
	id := c.Param("id")
	fresh, _ := strconv.ParseBool(c.QueryParam("refresh"))
	if fresh {
		release, err := lockScreen(ctx, h.InFlight, s.ID(), editKey(id))
		if err != nil {
			return fail(c, h.Log, err, "Failed to load event")
		}
		defer release()
	}
	d, err := h.loadEditDraft(ctx, s, id, fresh)
	if err != nil {
		return fail(c, h.Log, err, "Failed to load event")
	}
	return c.JSON(http.StatusOK, editViewOf(d))
}

// PatchEvent applies field edits to the draft.  Nothing is sent to the
// backend until SaveEvent.
func (h *AdminHandler) PatchEvent(c echo.Context) error {
	var fields seating.EventFields
	if err := c.Bind(&fields); err != nil {
		return bindError(c)
	}
	if err := h.Validate.Struct(fields); err != nil {
		return fail(c, h.Log, backend.Declined("invalid event fields"), "")
	}
	s := middleware.Store(c)
	ctx := c.Request().Context()
	id := c.Param("id")
	release, err := lockScreen(ctx, h.InFlight, s.ID(), editKey(id))
	if err != nil {
		return fail(c, h.Log, err, "Failed to update event")
	}
	defer release()

	d, err := h.loadEditDraft(ctx, s, id, false)
	if err != nil {
		return fail(c, h.Log, err, "Failed to load event")
	}
	if err := d.Apply(fields); err != nil {
		return fail(c, h.Log, err, "")
	}
	if err := h.Screens.Store(ctx, s.ID(), editKey(id), d); err != nil {
		return fail(c, h.Log, err, "Failed to update event")
	}
	return c.JSON(http.StatusOK, editViewOf(d))
}

// ToggleEditSeat flips one seat in the draft.
func (h *AdminHandler) ToggleEditSeat(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fail(c, h.Log, seating.ErrSeatIndex, "")
	}
	s := middleware.Store(c)
	ctx := c.Request().Context()
	id := c.Param("id")
	release, err := lockScreen(ctx, h.InFlight, s.ID(), editKey(id))
	if err != nil {
		return fail(c, h.Log, err, "Failed to update event")
	}
	defer release()

	d, err := h.loadEditDraft(ctx, s, id, false)
	if err != nil {
		return fail(c, h.Log, err, "Failed to load event")
	}
	if err := d.Toggle(index); err != nil {
		return fail(c, h.Log, err, "")
	}
	if err := h.Screens.Store(ctx, s.ID(), editKey(id), d); err != nil {
		return fail(c, h.Log, err, "Failed to update event")
	}
	return c.JSON(http.StatusOK, editViewOf(d))
}

// SaveEvent sends the whole draft in one update.  A second save for the
// same event while one is outstanding is refused.  The draft survives a
// failed save.
func (h *AdminHandler) SaveEvent(c echo.Context) error {
	s := middleware.Store(c)
	ctx := c.Request().Context()
	id := c.Param("id")
	release, err := lockScreen(ctx, h.InFlight, s.ID(), editKey(id))
	if err != nil {
		return fail(c, h.Log, err, "Failed to update event")
	}
	defer release()

	d, err := h.loadEditDraft(ctx, s, id, false)
	if err != nil {
		return fail(c, h.Log, err, "Failed to update event")
	}
	err = h.guarded(ctx, s.ID(), "save-event", id, func() error {
		saved, err := s.API().UpdateEvent(ctx, id, d.Event)
		if err != nil {
			return err
		}
		if saved.ID != "" {
			d.Event = saved
		}
		return nil
	})
	if err != nil {
		return fail(c, h.Log, err, "Failed to update event")
	}
	if err := h.Screens.Delete(ctx, s.ID(), editKey(id)); err != nil {
		h.Log.Warn("drop saved draft", "event_id", id, "error", err)
	}
	return success(c, "Event updated successfully", echo.Map{
		"event":    viewOf(d.Event),
		"redirect": "/admin/manage-events",
	})
}

// DeleteEvent deletes an event.  Non-admins are refused before any call;
// the backend makes the authoritative check.
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	s := middleware.Store(c)
	if !guard.CanDeleteEvent(s.Identity()) {
		h.Log.Warn("delete refused", "user_id", s.Identity().ID, "role", s.Identity().Role)
		return notice(c, http.StatusForbidden, KindWarning, guard.DeleteDeniedMessage, nil)
	}
	ctx := c.Request().Context()
	id := c.Param("id")

	var message string
	err := h.guarded(ctx, s.ID(), "delete-event", id, func() error {
		msg, err := s.API().DeleteEvent(ctx, id)
		message = msg.Message
		return err
	})
	if err != nil {
		return fail(c, h.Log, err, "Failed to delete event")
	}
	if err := h.Screens.Delete(ctx, s.ID(), editKey(id)); err != nil {
		h.Log.Warn("drop draft of deleted event", "event_id", id, "error", err)
	}
	if message == "" {
		message = "Event deleted successfully"
	}
	return success(c, message, echo.Map{"deleted": id})
}
