package backend

import (
	"context"

	"github.com/iliyamo/eventx-studio/internal/model"
)

// Login exchanges credentials for a token and identity.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.post(ctx, "/auth/login", creds, &out)
	return out, err
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := c.post(ctx, "/auth/register", reg, &out)
	return out, err
}
