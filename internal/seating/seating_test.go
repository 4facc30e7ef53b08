package seating

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eventx-studio/internal/model"
)

func TestGenerate_Clamps(t *testing.T) {
	for _, n := range []int{401, 500, 10000} {
		seats := Generate(n)
		require.Len(t, seats, MaxSeats)
		for _, s := range seats {
			assert.False(t, s.IsBooked)
		}
	}
	assert.Empty(t, Generate(-3))
	seats := Generate(3)
	assert.Equal(t, []model.Seat{{SeatNo: 1}, {SeatNo: 2}, {SeatNo: 3}}, seats)
}

func TestCountsInvariantUnderToggles(t *testing.T) {
	ev := model.Event{}
	Regenerate(&ev, 120)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		require.NoError(t, Toggle(&ev, r.Intn(len(ev.Seats))))
		c := CountsOf(ev)
		require.Equal(t, c.Total, c.Booked+c.Available)
		require.Equal(t, len(ev.Seats), c.Total)
	}
	assert.ErrorIs(t, Toggle(&ev, 120), ErrSeatIndex)
	assert.ErrorIs(t, Toggle(&ev, -1), ErrSeatIndex)
}

func TestCreateDraft(t *testing.T) {
	d := NewCreateDraft()
	assert.Len(t, d.Event.Seats, CreationSeats)
	assert.Equal(t, model.StatusUpcoming, d.Event.Status)
	assert.Equal(t, model.PopularityNew, d.Event.Popularity)

	require.NoError(t, d.Toggle(0))
	n := 500
	title := "Jazz Night"
	d.Apply(EventFields{TotalSeats: &n, Title: &title})
	assert.Equal(t, "Jazz Night", d.Event.Title)
	assert.Equal(t, 400, d.Event.TotalSeats)
	assert.Len(t, d.Event.Seats, 400)
	assert.Equal(t, 0, d.Event.BookedSeats())
}

func TestEditDraft(t *testing.T) {
	ev := model.Event{ID: "e1", Title: "Old", TotalSeats: 3, Seats: Generate(3)}
	d := NewEditDraft(ev)
	assert.Equal(t, DefaultTags, d.Event.Tags)
	assert.Equal(t, DefaultAttendance, d.Event.Attendance)

	require.NoError(t, d.Toggle(1))
	assert.True(t, d.Event.Seats[1].IsBooked)
	assert.False(t, ev.Seats[1].IsBooked, "draft must not alias the source grid")

	title := "New"
	status := model.StatusPending
	require.NoError(t, d.Apply(EventFields{Title: &title, Status: &status}))
	assert.Equal(t, "New", d.Event.Title)
	assert.Equal(t, model.StatusPending, d.Event.Status)
	assert.True(t, d.Dirty)

	same := 3
	require.NoError(t, d.Apply(EventFields{TotalSeats: &same}))
	more := 10
	assert.ErrorIs(t, d.Apply(EventFields{TotalSeats: &more}), ErrSeatCountFixed)
	assert.Len(t, d.Event.Seats, 3)
}

func TestEditDraft_KeepsExistingTags(t *testing.T) {
	d := NewEditDraft(model.Event{Tags: "#Tech", Attendance: "+50"})
	assert.Equal(t, "#Tech", d.Event.Tags)
	assert.Equal(t, "+50", d.Event.Attendance)
}

type fakeAPI struct {
	bookCalls   int
	cancelCalls int
	markCalls   []string
	fail        error
}

func (f *fakeAPI) BookSeat(_ context.Context, req model.BookingRequest) (model.Ticket, error) {
	f.bookCalls++
	if f.fail != nil {
		return model.Ticket{}, f.fail
	}
	return model.Ticket{ID: "t-" + req.EventID, SeatNo: req.SeatNo, QRToken: "qr"}, nil
}

func (f *fakeAPI) CancelTicket(_ context.Context, id string) (model.Message, error) {
	f.cancelCalls++
	if f.fail != nil {
		return model.Message{}, f.fail
	}
	return model.Message{Message: "Ticket cancelled"}, nil
}

func (f *fakeAPI) MarkNotificationRead(_ context.Context, id string) (model.Notification, error) {
	f.markCalls = append(f.markCalls, id)
	if f.fail != nil {
		return model.Notification{}, f.fail
	}
	return model.Notification{ID: id, IsRead: true}, nil
}

func (f *fakeAPI) MarkAllNotificationsRead(context.Context) error {
	f.markCalls = append(f.markCalls, "*")
	return f.fail
}

func selectedBoard() *Board {
	ev := model.Event{ID: "e1", TotalSeats: 4, Seats: Generate(4)}
	ev.Seats[2].IsBooked = true
	b := &Board{}
	b.Select(ev)
	return b
}

func TestBoard_BookFlipsExactlyOneSeat(t *testing.T) {
	b := selectedBoard()
	api := &fakeAPI{}
	before := append([]model.Seat(nil), b.Event.Seats...)

	ticket, err := b.Book(context.Background(), api, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, ticket.SeatNo)
	assert.Len(t, b.Tickets, 1)
	for i, s := range b.Event.Seats {
		if s.SeatNo == 2 {
			assert.True(t, s.IsBooked)
		} else {
			assert.Equal(t, before[i], s)
		}
	}
}

func TestBoard_BookedSeatIsInert(t *testing.T) {
	b := selectedBoard()
	api := &fakeAPI{}
	_, err := b.Book(context.Background(), api, 3)
	assert.ErrorIs(t, err, ErrSeatBooked)
	_, err = b.Book(context.Background(), api, 99)
	assert.ErrorIs(t, err, ErrSeatUnknown)
	assert.Zero(t, api.bookCalls)

	_, err = (&Board{}).Book(context.Background(), api, 1)
	assert.ErrorIs(t, err, ErrNoEventSelected)
}

func TestBoard_BookFailureLeavesState(t *testing.T) {
	b := selectedBoard()
	api := &fakeAPI{fail: errors.New("boom")}
	_, err := b.Book(context.Background(), api, 1)
	require.Error(t, err)
	assert.False(t, b.Event.Seats[0].IsBooked)
	assert.Empty(t, b.Tickets)
}

func TestBoard_CancelKeepsSeatBooked(t *testing.T) {
	b := selectedBoard()
	api := &fakeAPI{}
	ticket, err := b.Book(context.Background(), api, 1)
	require.NoError(t, err)

	msg, err := b.Cancel(context.Background(), api, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ticket cancelled", msg.Message)
	assert.Empty(t, b.Tickets)
	assert.True(t, b.Event.Seats[0].IsBooked)

	b.Tickets = []model.Ticket{{ID: "x"}}
	api.fail = errors.New("down")
	_, err = b.Cancel(context.Background(), api, "x")
	require.Error(t, err)
	assert.Len(t, b.Tickets, 1)
}

func TestInbox_MarkRead(t *testing.T) {
	in := &Inbox{Items: []model.Notification{{ID: "n1"}, {ID: "n2"}, {ID: "n3", IsRead: true}}}
	api := &fakeAPI{}
	assert.Equal(t, 2, in.UnreadCount())

	require.NoError(t, in.MarkRead(context.Background(), api, "n1"))
	assert.True(t, in.Items[0].IsRead)
	assert.False(t, in.Items[1].IsRead)
	assert.True(t, in.Items[2].IsRead)
	assert.Equal(t, 1, in.UnreadCount())

	require.NoError(t, in.MarkAllRead(context.Background(), api))
	assert.Zero(t, in.UnreadCount())
	assert.Equal(t, []string{"n1", "*"}, api.markCalls)
}

func TestInbox_FailureIsNotApplied(t *testing.T) {
	in := &Inbox{Items: []model.Notification{{ID: "n1"}, {ID: "n2"}}}
	api := &fakeAPI{fail: errors.New("offline")}
	require.Error(t, in.MarkRead(context.Background(), api, "n1"))
	require.Error(t, in.MarkAllRead(context.Background(), api))
	assert.Equal(t, 2, in.UnreadCount())
}
