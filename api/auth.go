package api

import (
	"context"

	threadly "github.com/goliatone/threadly-client"
)

// Login exchanges credentials for a session token. The backend answers with
// the raw token string, sometimes wrapped in quote characters; callers strip
// those via threadly.NormalizeToken.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload := threadly.LoginRequest{Username: username, Password: password}

	var token string
	if err := c.post(ctx, "/auth/login", nil, payload, &token); err != nil {
		return "", err
	}

	return token, nil
}

// Register creates an account. No token is issued; log in afterwards.
func (c *Client) Register(ctx context.Context, req threadly.RegisterRequest) error {
	return c.post(ctx, "/auth/register", nil, req, nil)
}

var _ threadly.AuthAPI = (*Client)(nil)
