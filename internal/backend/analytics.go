package backend

import (
	"context"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// Sales returns the revenue series plotted on the admin dashboard.
func (c *Client) Sales(ctx context.Context) ([]model.SalesPoint, error) {
	var out []model.SalesPoint
	err := c.get(ctx, "/analytics/sales", &out)
	return out, err
}

func (c *Client) AttendeeInsights(ctx context.Context) (model.AttendeeInsights, error) {
	var out model.AttendeeInsights
	err := c.get(ctx, "/attendee/insights", &out)
	return out, err
}
