package backend

import (
	"context"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// BookSeat books one seat.  The seat only counts as booked once this
// returns without error.
func (c *Client) BookSeat(ctx context.Context, req model.BookingRequest) (model.Ticket, error) {
	var out model.Ticket
	err := c.post(ctx, "/tickets/book", req, &out)
	return out, err
}

// MyTickets lists the tickets of the authenticated user.
func (c *Client) MyTickets(ctx context.Context) ([]model.Ticket, error) {
	var out []model.Ticket
	err := c.get(ctx, "/tickets/mine", &out)
	return out, err
}

// AllTickets lists every ticket; admin only on the backend.
func (c *Client) AllTickets(ctx context.Context) ([]model.Ticket, error) {
	var out []model.Ticket
	err := c.get(ctx, "/tickets", &out)
	return out, err
}

func (c *Client) CancelTicket(ctx context.Context, id string) (model.Message, error) {
	var out model.Message
	err := c.delete(ctx, "/tickets/"+segment(id), &out)
	return out, err
}
