// Package seating keeps seat grids consistent with what admins and users do
// on the event screens: admin drafts that toggle seats locally until saved,
// a creation draft whose seats are regenerated from a count, the user's
// booking board, and the notification inbox.
package seating

import (
	"errors"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// MaxSeats caps the size of a generated seat grid.  Larger requests are
// clamped, not rejected.
const MaxSeats = 400

var (
	ErrSeatIndex   = errors.New("seat index out of range")
	ErrSeatUnknown = errors.New("no such seat")
)

// Clamp bounds a requested seat count to [0, MaxSeats].
func Clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > MaxSeats {
		return MaxSeats
	}
	return n
}

// Generate returns Clamp(n) unbooked seats numbered from 1.
func Generate(n int) []model.Seat {
	n = Clamp(n)
	seats := make([]model.Seat, n)
	for i := range seats {
		seats[i] = model.Seat{SeatNo: i + 1}
	}
	return seats
}

// Regenerate replaces the event's seats with Generate(n) and keeps
// TotalSeats equal to the new length.
func Regenerate(ev *model.Event, n int) {
	ev.Seats = Generate(n)
	ev.TotalSeats = len(ev.Seats)
}

// Toggle flips the booked flag of the seat at index (grid position, not
// seat number).
func Toggle(ev *model.Event, index int) error {
	if index < 0 || index >= len(ev.Seats) {
		return ErrSeatIndex
	}
	ev.Seats[index].IsBooked = !ev.Seats[index].IsBooked
	return nil
}

// find returns the grid position of seatNo, or -1.
func find(ev *model.Event, seatNo int) int {
	for i, s := range ev.Seats {
		if s.SeatNo == seatNo {
			return i
		}
	}
	return -1
}

// MarkBooked flags seatNo as booked.  Only that seat changes.
func MarkBooked(ev *model.Event, seatNo int) error {
	i := find(ev, seatNo)
	if i < 0 {
		return ErrSeatUnknown
	}
	ev.Seats[i].IsBooked = true
	return nil
}

// Counts is the derived seat summary shown next to a grid.
type Counts struct {
	Total     int `json:"totalSeats"`
	Booked    int `json:"bookedSeats"`
	Available int `json:"availableSeats"`
}

// CountsOf recomputes the summary from the seats every time.
func CountsOf(ev model.Event) Counts {
	return Counts{
		Total:     ev.TotalSeats,
		Booked:    ev.BookedSeats(),
		Available: ev.AvailableSeats(),
	}
}
