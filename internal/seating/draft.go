package seating

import (
	"errors"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// Defaults of the edit screen's free-text fields.
const (
	DefaultTags       = "#Music,#Festival"
	DefaultAttendance = "+1000"
)

// CreationSeats is the seat count a new event starts with.
const CreationSeats = 50

// ErrSeatCountFixed is returned when an edit tries to resize an existing
// event's grid.  Only the creation flow regenerates seats.
var ErrSeatCountFixed = errors.New("seat count cannot be changed on an existing event")

// EventFields is a partial form submission.  Nil fields are left alone.
type EventFields struct {
	Title       *string            `json:"title,omitempty"`
	Venue       *string            `json:"venue,omitempty"`
	Date        *string            `json:"date,omitempty"`
	StartTime   *string            `json:"startTime,omitempty"`
	EndTime     *string            `json:"endTime,omitempty"`
	Description *string            `json:"description,omitempty"`
	Price       *model.Amount      `json:"price,omitempty" validate:"omitempty,gte=0"`
	TotalSeats  *int               `json:"totalSeats,omitempty"`
	Status      *model.EventStatus `json:"status,omitempty" validate:"omitempty,oneof=Upcoming Pending Closed"`
	Popularity  *string            `json:"popularity,omitempty" validate:"omitempty,oneof=New Trending Popular"`
	Tags        *string            `json:"tags,omitempty"`
	Attendance  *string            `json:"attendance,omitempty"`
}

func (f EventFields) applyTo(ev *model.Event) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&ev.Title, f.Title)
	set(&ev.Venue, f.Venue)
	set(&ev.Date, f.Date)
	set(&ev.StartTime, f.StartTime)
	set(&ev.EndTime, f.EndTime)
	set(&ev.Description, f.Description)
	set(&ev.Popularity, f.Popularity)
	set(&ev.Tags, f.Tags)
	set(&ev.Attendance, f.Attendance)
	if f.Price != nil {
		ev.Price = *f.Price
	}
	if f.Status != nil {
		ev.Status = *f.Status
	}
}

// EditDraft is an admin's pending edit of an existing event.  Seat toggles
// and field edits stay in the draft until Save sends the whole record.
type EditDraft struct {
	Event model.Event `json:"event"`
	Dirty bool        `json:"dirty"`
}

// NewEditDraft starts a draft from the backend's copy of ev.
func NewEditDraft(ev model.Event) *EditDraft {
	if ev.Tags == "" {
		ev.Tags = DefaultTags
	}
	if ev.Attendance == "" {
		ev.Attendance = DefaultAttendance
	}
	ev.Seats = append([]model.Seat(nil), ev.Seats...)
	return &EditDraft{Event: ev}
}

func (d *EditDraft) Apply(f EventFields) error {
	if f.TotalSeats != nil && *f.TotalSeats != d.Event.TotalSeats {
		return ErrSeatCountFixed
	}
	f.applyTo(&d.Event)
	d.Dirty = true
	return nil
}

func (d *EditDraft) Toggle(index int) error {
	if err := Toggle(&d.Event, index); err != nil {
		return err
	}
	d.Dirty = true
	return nil
}

// CreateDraft is the add-event form.
type CreateDraft struct {
	Event model.Event `json:"event"`
}

// NewCreateDraft returns an empty form with CreationSeats unbooked seats.
func NewCreateDraft() *CreateDraft {
	d := &CreateDraft{Event: model.Event{
		Status:     model.StatusUpcoming,
		Popularity: model.PopularityNew,
	}}
	Regenerate(&d.Event, CreationSeats)
	return d
}

// Apply edits the form.  A TotalSeats value regenerates every seat as
// unbooked, clamped to MaxSeats.
func (d *CreateDraft) Apply(f EventFields) {
	f.applyTo(&d.Event)
	if f.TotalSeats != nil {
		Regenerate(&d.Event, *f.TotalSeats)
	}
}

func (d *CreateDraft) Toggle(index int) error {
	return Toggle(&d.Event, index)
}
