package seating

import (
	"context"
	"errors"

	"github.com/iliyamo/eventx-studio/internal/model"
)

var (
	ErrNoEventSelected = errors.New("no event selected")
	ErrSeatBooked      = errors.New("seat already booked")
)

// Booker issues booking calls.
type Booker interface {
	BookSeat(ctx context.Context, req model.BookingRequest) (model.Ticket, error)
}

// Canceller issues cancellation calls.
type Canceller interface {
	CancelTicket(ctx context.Context, id string) (model.Message, error)
}

// Board is a user's booking screen: the selected event's grid and the
// user's tickets.
type Board struct {
	Event   *model.Event   `json:"event,omitempty"`
	Tickets []model.Ticket `json:"tickets"`
}

// Select shows ev's grid.
func (b *Board) Select(ev model.Event) {
	ev.Seats = append([]model.Seat(nil), ev.Seats...)
	b.Event = &ev
}

// Book books seatNo of the selected event.  A booked or unknown seat is
// refused without calling the backend.  Local state changes only after the
// backend returns a ticket: the seat flips to booked and the ticket is
// appended.
func (b *Board) Book(ctx context.Context, api Booker, seatNo int) (model.Ticket, error) {
	if b.Event == nil {
		return model.Ticket{}, ErrNoEventSelected
	}
	i := find(b.Event, seatNo)
	if i < 0 {
		return model.Ticket{}, ErrSeatUnknown
	}
	if b.Event.Seats[i].IsBooked {
		return model.Ticket{}, ErrSeatBooked
	}
	ticket, err := api.BookSeat(ctx, model.BookingRequest{EventID: b.Event.ID, SeatNo: seatNo})
	if err != nil {
		return model.Ticket{}, err
	}
	b.Event.Seats[i].IsBooked = true
	b.Tickets = append(b.Tickets, ticket)
	return ticket, nil
}

// Cancel deletes a ticket and drops it from the list once the backend
// confirms.  The seat on the event grid stays booked until the event is
// fetched again.
func (b *Board) Cancel(ctx context.Context, api Canceller, ticketID string) (model.Message, error) {
	msg, err := api.CancelTicket(ctx, ticketID)
	if err != nil {
		return model.Message{}, err
	}
	kept := b.Tickets[:0]
	for _, t := range b.Tickets {
		if t.ID != ticketID {
			kept = append(kept, t)
		}
	}
	b.Tickets = kept
	return msg, nil
}
