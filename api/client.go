package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"docchat-client/utils"
)

// Credential store keys. The access token is attached to every request;
// the refresh token is only read by the refresh-on-401 path; the user
// profile is a cached JSON blob for page-reload-free startup.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserProfile  = "user_profile"
)

// CredentialStore is the key-value capability the client needs for token
// persistence. Get returns the empty string when the key is absent.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// StatusError is returned for any non-2xx response so callers can branch
// on the HTTP status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("API error (status %d): %s", e.Code, e.Body)
	}
	return fmt.Sprintf("API error (status %d)", e.Code)
}

// Client issues authenticated JSON requests to the backend. It is the
// only component allowed to rewrite the stored access token outside of
// explicit login/register/logout.
type Client struct {
	baseURL       string
	http          *http.Client
	creds         CredentialStore
	logger        *utils.Logger
	onAuthExpired func()
}

// New creates a client for the given base URL (e.g. http://localhost:8000/api)
func New(baseURL string, timeout time.Duration, creds CredentialStore, logger *utils.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		creds:   creds,
		logger:  logger,
	}
}

// SetAuthExpiredHandler registers the callback invoked after a failed
// token refresh, once the stored credentials have been cleared. The UI
// uses it to route back to the login view.
func (c *Client) SetAuthExpiredHandler(fn func()) {
	c.onAuthExpired = fn
}

// do performs a JSON request against the backend. body is marshalled as
// JSON when non-nil; the response is decoded into out when non-nil.
//
// A 401 triggers at most one refresh-and-replay: the refresh token is
// exchanged for a new access token, the new token is persisted, and the
// original request is re-issued exactly once. Without a stored refresh
// token the original 401 is propagated untouched. A failed refresh
// clears all stored credentials and escalates to the auth-expired
// handler.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	token, err := c.creds.Get(KeyAccessToken)
	if err != nil {
		return fmt.Errorf("failed to read access token: %w", err)
	}

	resp, err := c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)

		refresh, err := c.creds.Get(KeyRefreshToken)
		if err != nil {
			return fmt.Errorf("failed to read refresh token: %w", err)
		}
		if refresh == "" {
			// Nothing to refresh with; the caller sees the original 401.
			return &StatusError{Code: http.StatusUnauthorized}
		}

		newToken, err := c.refreshAccessToken(ctx, refresh)
		if err != nil {
			c.expireSession()
			return fmt.Errorf("session refresh failed: %w", err)
		}

		if err := c.creds.Set(KeyAccessToken, newToken); err != nil {
			return fmt.Errorf("failed to persist access token: %w", err)
		}

		c.logger.Info("Access token refreshed, retrying %s %s", method, path)
		resp, err = c.send(ctx, method, path, query, payload, newToken)
		if err != nil {
			return err
		}
	}

	return decode(resp, out)
}

// send issues a single HTTP request, with no retry behavior
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// refreshAccessToken exchanges the refresh token for a new access token.
// The refresh endpoint is called unauthenticated.
func (c *Client) refreshAccessToken(ctx context.Context, refresh string) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, "/auth/refresh/", nil,
		mustMarshal(map[string]string{"refresh": refresh}), "")
	if err != nil {
		return "", err
	}

	var result struct {
		Access string `json:"access"`
	}
	if err := decode(resp, &result); err != nil {
		return "", err
	}
	if result.Access == "" {
		return "", fmt.Errorf("refresh response contained no access token")
	}
	return result.Access, nil
}

// expireSession clears all stored credentials and notifies the handler
func (c *Client) expireSession() {
	for _, key := range []string{KeyAccessToken, KeyRefreshToken, KeyUserProfile} {
		if err := c.creds.Delete(key); err != nil {
			c.logger.Error("Failed to clear credential %s: %v", key, err)
		}
	}
	if c.onAuthExpired != nil {
		c.onAuthExpired()
	}
}

// decode consumes the response body, turning non-2xx statuses into a
// StatusError and unmarshalling success bodies into out.
func decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func mustMarshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err) // only used for fixed-shape internal payloads
	}
	return data
}

// Health pings the backend health endpoint
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	var result map[string]interface{}
	if err := c.do(ctx, http.MethodGet, "/health/", nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
