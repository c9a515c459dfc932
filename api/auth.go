package api

import (
	"context"
	"net/http"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
}

// Login exchanges credentials for a bearer token. The token is stored on
// the client and attached to subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	payload := map[string]string{"username": username, "password": password}
	var result LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", payload, &result); err != nil {
		return LoginResult{}, err
	}
	c.SetToken(result.AccessToken)
	return result, nil
}

// Register creates a new account. The backend does not issue a token on
// registration; callers log in afterwards.
func (c *Client) Register(ctx context.Context, username, password string) error {
	payload := map[string]string{"username": username, "password": password}
	return c.doJSON(ctx, http.MethodPost, "/auth/register", payload, nil)
}
