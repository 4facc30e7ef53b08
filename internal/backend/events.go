package backend

import (
	"context"
	"net/url"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// ListEvents returns all events, or only those with status when non-empty.
func (c *Client) ListEvents(ctx context.Context, status model.EventStatus) ([]model.Event, error) {
	path := "/events"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var out []model.Event
	err := c.get(ctx, path, &out)
	return out, err
}

func (c *Client) GetEvent(ctx context.Context, id string) (model.Event, error) {
	var out model.Event
	err := c.get(ctx, "/events/"+segment(id), &out)
	return out, err
}

// CreateEvent posts a new event; the id is assigned by the backend.
func (c *Client) CreateEvent(ctx context.Context, ev model.Event) (model.Event, error) {
	ev.ID = ""
	var out model.Event
	err := c.post(ctx, "/events", ev, &out)
	return out, err
}

// UpdateEvent PUTs update, which may be a whole model.Event or a partial
// map such as {"status": "Closed"}.
func (c *Client) UpdateEvent(ctx context.Context, id string, update any) (model.Event, error) {
	var out model.Event
	err := c.put(ctx, "/events/"+segment(id), update, &out)
	return out, err
}

func (c *Client) DeleteEvent(ctx context.Context, id string) (model.Message, error) {
	var out model.Message
	err := c.delete(ctx, "/events/"+segment(id), &out)
	return out, err
}
