package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	line := FormatLine(ActivityEvent{
		Type:       TypeBookingConfirmed,
		UserID:     "u1",
		UserEmail:  "ada@x.io",
		EventID:    "e1",
		EventTitle: "Jazz Night",
		SeatNo:     7,
		TicketID:   "t1",
		Amount:     12.5,
		OccurredAt: "2026-10-15T10:00:00Z",
	})
	assert.Equal(t, `[2026-10-15T10:00:00Z] Booking confirmed | ticket_id=t1 | user_id=u1 | user="ada@x.io" | event_id=e1 | event="Jazz Night" | seat=7 | amount=12.50`+"\n", line)

	line = FormatLine(ActivityEvent{Type: TypeTicketCancelled, TicketID: "t1", UserID: "u1", UserEmail: "a", OccurredAt: "now"})
	assert.Equal(t, `[now] Ticket cancelled | ticket_id=t1 | user_id=u1 | user="a"`+"\n", line)
}

func TestHandleMessage_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "activity.log")
	for _, id := range []string{"t1", "t2"} {
		body, err := json.Marshal(ActivityEvent{Type: TypeTicketCancelled, TicketID: id, OccurredAt: "x"})
		require.NoError(t, err)
		require.NoError(t, HandleMessage(body, path))
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "ticket_id=t2")
}

func TestHandleMessage_Rejects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	assert.Error(t, HandleMessage([]byte("{"), path))
	assert.Error(t, HandleMessage([]byte(`{"ticket_id":"t1"}`), path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
