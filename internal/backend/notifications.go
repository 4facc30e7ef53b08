package backend

import (
	"context"

	"github.com/iliyamo/eventx-studio/internal/model"
)

func (c *Client) Notifications(ctx context.Context) ([]model.Notification, error) {
	var out []model.Notification
	err := c.get(ctx, "/notifications/my", &out)
	return out, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (model.Notification, error) {
	var out model.Notification
	err := c.patch(ctx, "/notifications/"+segment(id)+"/read", nil, &out)
	return out, err
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.patch(ctx, "/notifications/mark-all-read", nil, nil)
}
