// Package queue defines the activity messages exchanged over the broker and
// the consumer that writes them to the activity log.
package queue

// Activity types.
const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeTicketCancelled  = "ticket.cancelled"
)

// ActivityEvent is published after the backend confirms a booking or a
// cancellation.  It carries enough for the log line without another
// backend call.
type ActivityEvent struct {
	Type       string  `json:"type"`
	UserID     string  `json:"user_id"`
	UserEmail  string  `json:"user_email"`
	EventID    string  `json:"event_id,omitempty"`
	EventTitle string  `json:"event_title,omitempty"`
	SeatNo     int     `json:"seat_no,omitempty"`
	TicketID   string  `json:"ticket_id"`
	Amount     float64 `json:"amount,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}
