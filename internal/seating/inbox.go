package seating

import (
	"context"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// Marker issues read-state calls.
type Marker interface {
	MarkNotificationRead(ctx context.Context, id string) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) error
}

// Inbox is the notification bell.  Read flags change only after the backend
// confirms them.
type Inbox struct {
	Items []model.Notification `json:"items"`
}

func (in *Inbox) UnreadCount() int {
	n := 0
	for _, item := range in.Items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// MarkRead marks one notification read.  Other items are untouched.
func (in *Inbox) MarkRead(ctx context.Context, api Marker, id string) error {
	if _, err := api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	for i := range in.Items {
		if in.Items[i].ID == id {
			in.Items[i].IsRead = true
		}
	}
	return nil
}

func (in *Inbox) MarkAllRead(ctx context.Context, api Marker) error {
	if err := api.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	for i := range in.Items {
		in.Items[i].IsRead = true
	}
	return nil
}
