package model

import (
	"bytes"
	"encoding/json"
)

// TicketEvent is the event a ticket refers to.  The backend populates it
// on GET /tickets/mine but returns only the id from POST /tickets/book.
type TicketEvent struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Date  string `json:"date,omitempty"`
}

func (t *TicketEvent) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &t.ID)
	}
	var ev Event
	if err := json.Unmarshal(b, &ev); err != nil {
		return err
	}
	*t = TicketEvent{ID: ev.ID, Title: ev.Title, Date: ev.Date}
	return nil
}

// Ticket is a confirmed booking of one seat.
type Ticket struct {
	ID        string      `json:"id"`
	Event     TicketEvent `json:"event"`
	SeatNo    int         `json:"seatNo"`
	PricePaid Amount      `json:"pricePaid"`
	QRToken   string      `json:"qrToken"`
}

func (t *Ticket) UnmarshalJSON(b []byte) error {
	type alias Ticket
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = aux.MongoID
	}
	return nil
}

// BookingRequest is the body of POST /tickets/book.
type BookingRequest struct {
	EventID string `json:"eventId"`
	SeatNo  int    `json:"seatNo"`
}

// Message is the {message} body returned by delete calls.
type Message struct {
	Message string `json:"message"`
}
