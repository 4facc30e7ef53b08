package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/eventx-studio/internal/inflight"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/model"
	"github.com/iliyamo/eventx-studio/internal/queue"
	"github.com/iliyamo/eventx-studio/internal/repository"
	"github.com/iliyamo/eventx-studio/internal/seating"
	"github.com/iliyamo/eventx-studio/internal/service"
	"github.com/iliyamo/eventx-studio/internal/session"
)

const boardKey = "board"

// UserHandler serves the /user screens.
type UserHandler struct {
	Screens  repository.ScreenRepository
	InFlight inflight.Guard
	Activity service.Publisher
	Log      logger.Logger
	Now      func() time.Time
}

func NewUserHandler(screens repository.ScreenRepository, guard inflight.Guard, activity service.Publisher, l logger.Logger) *UserHandler {
	return &UserHandler{Screens: screens, InFlight: guard, Activity: activity, Log: l, Now: time.Now}
}

type userDashboard struct {
	Events        []eventView `json:"events"`
	Upcoming      []eventView `json:"upcoming"`
	Notifications inboxView   `json:"notifications"`
	Unavailable   []string    `json:"unavailable,omitempty"`
}

func (h *UserHandler) Dashboard(c echo.Context) error {
	api := middleware.Store(c).API()
	ctx := c.Request().Context()

	var (
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
		if inbox.Items, err = api.Notifications(ctx); err != nil {
			missing.fail(h.Log, "notifications", err)
		}
		return nil
	})
	_ = g.Wait()

	return c.JSON(http.StatusOK, userDashboard{
		Events:        viewsOf(events),
		Upcoming:      viewsOf(upcoming),
		Notifications: inboxOf(&inbox),
		Unavailable:   missing.missing,
	})
}

// Events lists events read-only.
func (h *UserHandler) Events(c echo.Context) error {
	events, err := middleware.Store(c).API().ListEvents(c.Request().Context(), "")
	if err != nil {
		return fail(c, h.Log, err, "Failed to load events")
	}
	return c.JSON(http.StatusOK, echo.Map{"events": viewsOf(events)})
}

func (h *UserHandler) Event(c echo.Context) error {
	ev, err := middleware.Store(c).API().GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, h.Log, err, "Failed to load event")
	}
	return c.JSON(http.StatusOK, viewOf(ev))
}

func (h *UserHandler) loadBoard(ctx context.Context, sessionID string) (*seating.Board, error) {
	var b seating.Board
	err := h.Screens.Load(ctx, sessionID, boardKey, &b)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return &b, nil
}

type boardView struct {
	Events   []eventView    `json:"events,omitempty"`
	Selected *eventView     `json:"selected"`
	Tickets  []model.Ticket `json:"tickets"`
}

func boardViewOf(b *seating.Board, events []model.Event) boardView {
	v := boardView{Tickets: b.Tickets}
	if v.Tickets == nil {
		v.Tickets = []model.Ticket{}
	}
	if events != nil {
		v.Events = viewsOf(events)
	}
	if b.Event != nil {
		sel := viewOf(*b.Event)
		v.Selected = &sel
	}
	return v
}

// Tickets shows the booking screen: all events, the selected event's grid
// as last seen by this session, and the user's tickets.
func (h *UserHandler) Tickets(c echo.Context) error {
	s := middleware.Store(c)
	ctx := c.Request().Context()

	// A board busy with another action is rendered but not written back.
	release, lockErr := lockScreen(ctx, h.InFlight, s.ID(), boardKey)
	if lockErr == nil {
		defer release()
	}

	b, err := h.loadBoard(ctx, s.ID())
	if err != nil {
		return fail(c, h.Log, err, "Failed to load bookings")
	}
	var (
		events []model.Event
		g      errgroup.Group
	)
	g.Go(func() (err error) {
		events, err = s.API().ListEvents(ctx, "")
		return err
	})
	g.Go(func() (err error) {
		b.Tickets, err = s.API().MyTickets(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(c, h.Log, err, "Failed to load bookings")
	}
	if lockErr == nil {
		if err := h.Screens.Store(ctx, s.ID(), boardKey, b); err != nil {
			h.Log.Warn("store booking board", "error", err)
		}
	}
	return c.JSON(http.StatusOK, boardViewOf(b, events))
}

type selectRequest struct {
	EventID string `json:"eventId"`
}

// SelectEvent puts an event's grid on the board.
func (h *UserHandler) SelectEvent(c echo.Context) error {
	var req selectRequest
	if err := c.Bind(&req); err != nil || req.EventID == "" {
		return bindError(c)
	}
	s := middleware.Store(c)
	ctx := c.Request().Context()
	release, err := lockScreen(ctx, h.InFlight, s.ID(), boardKey)
	if err != nil {
		return fail(c, h.Log, err, "Failed to load bookings")
	}
	defer release()

	b, err := h.loadBoard(ctx, s.ID())
	if err != nil {
		return fail(c, h.Log, err, "Failed to load bookings")
	}
	ev, err := s.API().GetEvent(ctx, req.EventID)
	if err != nil {
		return fail(c, h.Log, err, "Failed to load event")
	}
	b.Select(ev)
	if err := h.Screens.Store(ctx, s.ID(), boardKey, b); err != nil {
		return fail(c, h.Log, err, "Failed to load bookings")
	}
	return c.JSON(http.StatusOK, boardViewOf(b, nil))
}

type bookRequest struct {
	SeatNo int `json:"seatNo"`
}

// Book books a seat on the selected event.  Booked seats are refused
// without calling the backend.
func (h *UserHandler) Book(c echo.Context) error {
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c)
	}
	s := middleware.Store(c)
	ctx := c.Request().Context()
	release, err := lockScreen(ctx, h.InFlight, s.ID(), boardKey)
	if err != nil {
		return fail(c, h.Log, err, "Booking failed")
	}
	defer release()

	b, err := h.loadBoard(ctx, s.ID())
	if err != nil {
		return fail(c, h.Log, err, "Booking failed")
	}
	if b.Event == nil {
		return fail(c, h.Log, seating.ErrNoEventSelected, "Booking failed")
	}

	var ticket model.Ticket
	err = inflight.Do(ctx, h.InFlight, inflight.Key(s.ID(), "book", b.Event.ID), func() error {
		var err error
		ticket, err = b.Book(ctx, s.API(), req.SeatNo)
		return err
	})
	if err != nil {
		return fail(c, h.Log, err, "Booking failed")
	}
	if err := h.Screens.Store(ctx, s.ID(), boardKey, b); err != nil {
		h.Log.Warn("store booking board", "error", err)
	}

	h.publish(s, queue.ActivityEvent{
		Type:       queue.TypeBookingConfirmed,
		EventID:    b.Event.ID,
		EventTitle: b.Event.Title,
		SeatNo:     req.SeatNo,
		TicketID:   ticket.ID,
		Amount:     float64(ticket.PricePaid),
	})
	msg := fmt.Sprintf("Seat %d booked for %q", req.SeatNo, b.Event.Title)
	v := boardViewOf(b, nil)
	return success(c, msg, echo.Map{"ticket": ticket, "selected": v.Selected, "tickets": v.Tickets})
}

// CancelTicket deletes a ticket.  The seat stays booked on the board until
// the event is selected again.
func (h *UserHandler) CancelTicket(c echo.Context) error {
	s := middleware.Store(c)
	ctx := c.Request().Context()
	id := c.Param("id")
	release, err := lockScreen(ctx, h.InFlight, s.ID(), boardKey)
	if err != nil {
		return fail(c, h.Log, err, "Delete failed")
	}
	defer release()

	b, err := h.loadBoard(ctx, s.ID())
	if err != nil {
		return fail(c, h.Log, err, "Delete failed")
	}
	var msg model.Message
	err = inflight.Do(ctx, h.InFlight, inflight.Key(s.ID(), "cancel", id), func() error {
		var err error
		msg, err = b.Cancel(ctx, s.API(), id)
		return err
	})
	if err != nil {
		return fail(c, h.Log, err, "Delete failed")
	}
	if err := h.Screens.Store(ctx, s.ID(), boardKey, b); err != nil {
		h.Log.Warn("store booking board", "error", err)
	}

	h.publish(s, queue.ActivityEvent{Type: queue.TypeTicketCancelled, TicketID: id})
	if msg.Message == "" {
		msg.Message = "Ticket cancelled"
	}
	return success(c, msg.Message, echo.Map{"tickets": boardViewOf(b, nil).Tickets})
}

// publish sends ev in the background; the response does not wait for the
// broker.
func (h *UserHandler) publish(s *session.Store, ev queue.ActivityEvent) {
	ev.UserID = s.Identity().ID
	ev.UserEmail = s.Identity().Email
	ev.OccurredAt = h.Now().UTC().Format(time.RFC3339)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Activity.Publish(ctx, ev); err != nil {
			h.Log.Warn("activity publish failed", "type", ev.Type, "error", err)
		}
	}()
}
