package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eventx-studio/internal/model"
)

func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := New(Config{BaseURL: server.URL + "/api", HTTPClient: server.Client()})
	require.NoError(t, err)
	return client
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:5000", "ftp://example.com", "http://"} {
		_, err := New(Config{BaseURL: raw})
		assert.Error(t, err, raw)
	}
}

func TestClient_BearerOnlyWithToken(t *testing.T) {
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	anon := newTestClient(t, server)
	authed := anon.WithToken("tok-1")

	_, err := authed.ListEvents(context.Background(), "")
	require.NoError(t, err)
	_, err = anon.ListEvents(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "Bearer tok-1", seen[0])
	assert.Empty(t, seen[1])
	assert.True(t, authed.Authorized())
	assert.False(t, anon.Authorized())
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var creds model.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "a@x.io", creds.Email)
		w.Write([]byte(`{"token":"t","user":{"_id":"u1","name":"A","email":"a@x.io","role":"Admin"}}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t, server).Login(context.Background(), model.Credentials{Email: "a@x.io", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "t", resp.Token)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)
}

func TestClient_ListEventsStatusQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events", r.URL.Path)
		assert.Equal(t, "Upcoming", r.URL.Query().Get("status"))
		w.Write([]byte(`[{"_id":"e1","title":"Gig","price":"12.5","totalSeats":2,"seats":[{"seatNo":1,"isBooked":true},{"seatNo":2,"isBooked":false}]}]`))
	}))
	defer server.Close()

	events, err := newTestClient(t, server).ListEvents(context.Background(), model.StatusUpcoming)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, 1, events[0].AvailableSeats())
	assert.InDelta(t, 12.5, events[0].Revenue(), 0.001)
}

func TestClient_PathEscaping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/notifications/a%2Fb/read", r.URL.EscapedPath())
		w.Write([]byte(`{"_id":"a/b","message":"m","isRead":true}`))
	}))
	defer server.Close()

	n, err := newTestClient(t, server).MarkNotificationRead(context.Background(), "a/b")
	require.NoError(t, err)
	assert.True(t, n.IsRead)
}

func TestClient_APIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Seat already booked"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).BookSeat(context.Background(), model.BookingRequest{EventID: "e1", SeatNo: 3})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Seat already booked", UserMessage(err, "Booking failed"))
}

func TestClient_APIErrorFallbacks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/events/missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()
	client := newTestClient(t, server)

	_, err := client.GetEvent(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "not found", UserMessage(err, "x"))

	_, err = client.MyTickets(context.Background())
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "Booking failed", UserMessage(err, "Booking failed"))
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server)
	server.Close()

	err := client.MarkAllNotificationsRead(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Equal(t, "fallback", UserMessage(err, "fallback"))
}

func TestClient_CallSurvivesCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"Ticket cancelled"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	msg, err := newTestClient(t, server).CancelTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Ticket cancelled", msg.Message)
}

func TestUserMessage_Declined(t *testing.T) {
	assert.Equal(t, "Only admins can delete events", UserMessage(Declined("Only admins can delete events"), "x"))
}
