package api

import (
	"context"
	"net/http"
)

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with email and password. Both route conventions
// are tried; failures come back as *AuthError with per-field detail.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		paths:  []string{"/auth/login/", "/login/"},
		body:   LoginRequest{Email: email, Password: password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		paths:  []string{"/auth/register/", "/register/"},
		body:   req,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile partially updates the authenticated user's own fields
// and returns the fields the server echoed back for merging.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]interface{}) (map[string]interface{}, error) {
	var out map[string]interface{}
	err := c.do(ctx, request{
		method: http.MethodPatch,
		paths:  []string{"/auth/profile/"},
		body:   fields,
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Logout notifies the server, best-effort. Local logout never depends
// on the outcome.
func (c *Client) Logout(ctx context.Context) {
	_ = c.do(ctx, request{
		method:    http.MethodPost,
		paths:     []string{"/auth/logout/"},
		noRefresh: true,
	}, nil)
}
