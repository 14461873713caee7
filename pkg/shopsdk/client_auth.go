package shopsdk

import (
	"context"
	"net/http"
)

// SignUp registers an account. It does not log in.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*User, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/v1/sign-up", req)
	if err != nil {
		return nil, err
	}

	var out userEnvelope
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Login authenticates and stores the session cookie in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/v1/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var out userEnvelope
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout asks the server to clear the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/logout", nil, nil)
	if err != nil {
		return err
	}

	var out struct {
		Message string `json:"message"`
	}
	return decodeJSON(resp, &out, http.StatusOK)
}

// Me returns the user the current session belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var out userEnvelope
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}
