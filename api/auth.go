package api

import (
	"context"
	"net/http"
)

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new account and returns the user plus token pair
func (c *Client) Register(ctx context.Context, username, email, password, passwordConfirm string) (*AuthResponse, error) {
	req := registerRequest{
		Username:        username,
		Email:           email,
		Password:        password,
		PasswordConfirm: passwordConfirm,
	}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates an existing account and returns the user plus token pair
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	req := loginRequest{Username: username, Password: password}
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me returns the profile of the currently authenticated user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me/", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
