package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/eventx-studio/internal/inflight"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/model"
	"github.com/iliyamo/eventx-studio/internal/repository"
	"github.com/iliyamo/eventx-studio/internal/seating"
)

// AdminHandler serves the /admin screens.
type AdminHandler struct {
	Screens  repository.ScreenRepository
	InFlight inflight.Guard
	Validate *validator.Validate
	Log      logger.Logger
	Now      func() time.Time
}

func NewAdminHandler(screens repository.ScreenRepository, guard inflight.Guard, validate *validator.Validate, l logger.Logger) *AdminHandler {
	return &AdminHandler{Screens: screens, InFlight: guard, Validate: validate, Log: l, Now: time.Now}
}

// panels records which dashboard panels could not be loaded.
type panels struct {
	mu      sync.Mutex
	missing []string
}

func (p *panels) fail(l logger.Logger, name string, err error) {
	l.Warn("dashboard panel unavailable", "panel", name, "error", err)
	p.mu.Lock()
	p.missing = append(p.missing, name)
	p.mu.Unlock()
}

type adminDashboard struct {
	TotalEvents   int                `json:"totalEvents"`
	TotalBookings int                `json:"totalBookings"`
	Revenue       float64            `json:"revenue"`
	LatestEvent   *eventView         `json:"latestEvent,omitempty"`
	Upcoming      []eventView        `json:"upcoming"`
	Sales         []model.SalesPoint `json:"sales"`
	Notifications inboxView          `json:"notifications"`
	Unavailable   []string           `json:"unavailable,omitempty"`
}

// Dashboard loads every panel concurrently.  A failing panel is logged and
// left empty; the others still render.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	api := middleware.Store(c).API()
	ctx := c.Request().Context()

	var (
		view     adminDashboard
		events   []model.Event
		upcoming []model.Event
		inbox    seating.Inbox
		missing  panels
		g        errgroup.Group
	)
	g.Go(func() error {
		var err error
		if events, err = api.ListEvents(ctx, ""); err != nil {
			missing.fail(h.Log, "events", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if upcoming, err = api.ListEvents(ctx, model.StatusUpcoming); err != nil {
			missing.fail(h.Log, "upcoming", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if view.Sales, err = api.Sales(ctx); err != nil {
			missing.fail(h.Log, "sales", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if inbox.Items, err = api.Notifications(ctx); err != nil {
			missing.fail(h.Log, "notifications", err)
		}
		return nil
	})
	_ = g.Wait()

	view.TotalEvents = len(events)
	for _, ev := range events {
		view.TotalBookings += ev.BookedSeats()
		view.Revenue += ev.Revenue()
	}
	if len(events) > 0 {
		latest := viewOf(events[len(events)-1])
		view.LatestEvent = &latest
	}
	view.Upcoming = viewsOf(upcoming)
	if view.Sales == nil {
		view.Sales = []model.SalesPoint{}
	}
	view.Notifications = inboxOf(&inbox)
	view.Unavailable = missing.missing
	return c.JSON(http.StatusOK, view)
}

type groupedEvents struct {
	Upcoming []eventView `json:"upcoming"`
	Pending  []eventView `json:"pending"`
	Closed   []eventView `json:"closed"`
}

// ManageEvents lists events grouped by status.  Events whose date has
// passed and are not Closed are closed on the backend first; a close that
// fails is logged and the event keeps its status.
func (h *AdminHandler) ManageEvents(c echo.Context) error {
	api := middleware.Store(c).API()
	ctx := c.Request().Context()

	events, err := api.ListEvents(ctx, "")
	if err != nil {
		return fail(c, h.Log, err, "Failed to load events")
	}

	now := h.Now()
	var g errgroup.Group
	g.SetLimit(8)
	for i := range events {
		ev := &events[i]
		if ev.Status == model.StatusClosed || !ev.Passed(now) {
			continue
		}
		g.Go(func() error {
			if _, err := api.UpdateEvent(ctx, ev.ID, map[string]model.EventStatus{"status": model.StatusClosed}); err != nil {
				h.Log.Warn("auto-close failed", "event_id", ev.ID, "error", err)
				return nil
			}
			ev.Status = model.StatusClosed
			return nil
		})
	}
	_ = g.Wait()

	view := groupedEvents{Upcoming: []eventView{}, Pending: []eventView{}, Closed: []eventView{}}
	for _, ev := range events {
		switch ev.Status {
		case model.StatusUpcoming:
			view.Upcoming = append(view.Upcoming, viewOf(ev))
		case model.StatusPending:
			view.Pending = append(view.Pending, viewOf(ev))
		case model.StatusClosed:
			view.Closed = append(view.Closed, viewOf(ev))
		}
	}
	return c.JSON(http.StatusOK, view)
}

// Tickets lists every ticket.
func (h *AdminHandler) Tickets(c echo.Context) error {
	tickets, err := middleware.Store(c).API().AllTickets(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err, "Failed to load tickets")
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// Insights returns the attendee breakdown computed by the backend.
func (h *AdminHandler) Insights(c echo.Context) error {
	insights, err := middleware.Store(c).API().AttendeeInsights(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err, "Failed to load attendee insights")
	}
	return c.JSON(http.StatusOK, echo.Map{"insights": insights})
}

// EventInsights pairs one event with the attendee breakdown.
func (h *AdminHandler) EventInsights(c echo.Context) error {
	api := middleware.Store(c).API()
	id := c.Param("id")

	var (
		ev       model.Event
		insights model.AttendeeInsights
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		ev, err = api.GetEvent(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		insights, err = api.AttendeeInsights(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(c, h.Log, err, "Failed to load attendee insights")
	}
	return c.JSON(http.StatusOK, echo.Map{"event": viewOf(ev), "insights": insights})
}

func (h *AdminHandler) guarded(ctx context.Context, sessionID, op, resource string, fn func() error) error {
	return inflight.Do(ctx, h.InFlight, inflight.Key(sessionID, op, resource), fn)
}
