package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventStatus is the lifecycle label an admin assigns to an event.
type EventStatus string

const (
	StatusUpcoming EventStatus = "Upcoming"
	StatusPending  EventStatus = "Pending"
	StatusClosed   EventStatus = "Closed"
)

// Popularity labels offered on the creation screen.
const (
	PopularityNew      = "New"
	PopularityTrending = "Trending"
	PopularityPopular  = "Popular"
)

// Amount is a price.  The backend stores whatever the admin typed, so it
// may arrive as a JSON number or a numeric string; unparseable strings
// decode to zero the way parseFloat(...) || 0 did in the browser.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*a = 0
		return nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			*a = 0
			return nil
		}
		*a = Amount(f)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(f)
	return nil
}

// Event is the client's transient copy of a backend event.
type Event struct {
	ID          string      `json:"id,omitempty"`
	Title       string      `json:"title"`
	Venue       string      `json:"venue"`
	Date        string      `json:"date"`
	StartTime   string      `json:"startTime"`
	EndTime     string      `json:"endTime"`
	Description string      `json:"description"`
	Price       Amount      `json:"price"`
	TotalSeats  int         `json:"totalSeats"`
	Status      EventStatus `json:"status"`
	Seats       []Seat      `json:"seats"`
	Popularity  string      `json:"popularity"`
	Tags        string      `json:"tags,omitempty"`
	Attendance  string      `json:"attendance,omitempty"`
}

func (e *Event) UnmarshalJSON(b []byte) error {
	type alias Event
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = aux.MongoID
	}
	return nil
}

// BookedSeats counts seats flagged as booked.  It is recomputed on every
// call; no count is ever stored on the event.
func (e Event) BookedSeats() int {
	n := 0
	for _, s := range e.Seats {
		if s.IsBooked {
			n++
		}
	}
	return n
}

// AvailableSeats is TotalSeats minus BookedSeats.
func (e Event) AvailableSeats() int {
	return e.TotalSeats - e.BookedSeats()
}

// Revenue is price times booked seats, the figure the admin dashboard sums.
func (e Event) Revenue() float64 {
	return float64(e.Price) * float64(e.BookedSeats())
}

// StartsOn parses Date.  The backend returns RFC 3339 timestamps while the
// creation form submits plain yyyy-mm-dd dates; both are accepted.
func (e Event) StartsOn() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, e.Date); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", e.Date)
}

// Passed reports whether the event date lies before now.  Events with an
// unparseable date are never considered passed.
func (e Event) Passed(now time.Time) bool {
	t, err := e.StartsOn()
	if err != nil {
		return false
	}
	return t.Before(now)
}
