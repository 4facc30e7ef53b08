package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_DecodesBackendShape(t *testing.T) {
	raw := `{"_id":"e1","title":"Jazz Night","price":"250","totalSeats":3,"status":"Upcoming",
		"seats":[{"seatNo":1,"isBooked":true},{"seatNo":2,"isBooked":false},{"seatNo":3,"isBooked":true}]}`

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	assert.Equal(t, "e1", ev.ID)
	assert.Equal(t, Amount(250), ev.Price)
	assert.Equal(t, 2, ev.BookedSeats())
	assert.Equal(t, 1, ev.AvailableSeats())
	assert.Equal(t, 500.0, ev.Revenue())
}

func TestAmount_Variants(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
	}{
		{`12.5`, 12.5},
		{`"99"`, 99},
		{`"free"`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(tt.in), &a), tt.in)
		assert.Equal(t, tt.want, a, tt.in)
	}
}

func TestTicket_EventAsIDOrObject(t *testing.T) {
	var bare Ticket
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t1","event":"e9","seatNo":4,"pricePaid":100,"qrToken":"q"}`), &bare))
	assert.Equal(t, "t1", bare.ID)
	assert.Equal(t, "e9", bare.Event.ID)

	var populated Ticket
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"t2","event":{"_id":"e9","title":"Expo","date":"2030-01-02"},"seatNo":5}`), &populated))
	assert.Equal(t, TicketEvent{ID: "e9", Title: "Expo", Date: "2030-01-02"}, populated.Event)
}

func TestIdentity_NormalisesRole(t *testing.T) {
	var id Identity
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"u1","name":"Sam","email":"s@x.io","role":"Admin"}`), &id))
	assert.Equal(t, "u1", id.ID)
	assert.Equal(t, RoleAdmin, id.Role)
	assert.True(t, id.Role.Valid())
	assert.False(t, Role("organizer").Valid())
}

func TestEvent_Passed(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	assert.True(t, Event{Date: "2026-10-01"}.Passed(now))
	assert.False(t, Event{Date: "2026-11-01T00:00:00Z"}.Passed(now))
	assert.False(t, Event{Date: ""}.Passed(now))
}

func TestSessionRecord_Complete(t *testing.T) {
	assert.False(t, SessionRecord{Token: "tok"}.Complete())
	assert.False(t, SessionRecord{Identity: Identity{ID: "u"}}.Complete())
	assert.True(t, SessionRecord{Token: "tok", Identity: Identity{ID: "u"}}.Complete())
}
