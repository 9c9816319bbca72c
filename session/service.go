package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docchat-client/api"
	"docchat-client/utils"
)

// Service composes the auth endpoints with credential persistence. Login
// and register persist the returned tokens and profile before handing
// the payload back; logout is purely local.
type Service struct {
	api    *api.Client
	creds  api.CredentialStore
	logger *utils.Logger
}

// NewService creates an auth session service
func NewService(client *api.Client, creds api.CredentialStore, logger *utils.Logger) *Service {
	return &Service{api: client, creds: creds, logger: logger}
}

// Login authenticates and persists the token pair plus user profile
func (s *Service) Login(ctx context.Context, username, password string) (*api.AuthResponse, error) {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.persist(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Register creates an account and persists the token pair plus user profile
func (s *Service) Register(ctx context.Context, username, email, password, passwordConfirm string) (*api.AuthResponse, error) {
	resp, err := s.api.Register(ctx, username, email, password, passwordConfirm)
	if err != nil {
		return nil, err
	}
	if err := s.persist(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) persist(resp *api.AuthResponse) error {
	if err := s.creds.Set(api.KeyAccessToken, resp.Tokens.Access); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}
	if err := s.creds.Set(api.KeyRefreshToken, resp.Tokens.Refresh); err != nil {
		return fmt.Errorf("failed to persist refresh token: %w", err)
	}
	profile, err := json.Marshal(resp.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user profile: %w", err)
	}
	if err := s.creds.Set(api.KeyUserProfile, string(profile)); err != nil {
		return fmt.Errorf("failed to persist user profile: %w", err)
	}
	return nil
}

// Logout clears the stored credentials. No network call is made.
func (s *Service) Logout() {
	for _, key := range []string{api.KeyAccessToken, api.KeyRefreshToken, api.KeyUserProfile} {
		if err := s.creds.Delete(key); err != nil {
			s.logger.Error("Failed to clear credential %s: %v", key, err)
		}
	}
}

// IsAuthenticated reports whether an access token is stored. This is an
// existence check only; expiry is discovered on first use.
func (s *Service) IsAuthenticated() bool {
	token, err := s.creds.Get(api.KeyAccessToken)
	if err != nil {
		s.logger.Error("Failed to read access token: %v", err)
		return false
	}
	return token != ""
}

// CurrentUser returns the cached user profile, or nil when it is missing
// or unparsable. A corrupt profile is treated as "no user".
func (s *Service) CurrentUser() *api.User {
	raw, err := s.creds.Get(api.KeyUserProfile)
	if err != nil {
		s.logger.Error("Failed to read user profile: %v", err)
		return nil
	}
	if raw == "" {
		return nil
	}

	var user api.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("Cached user profile is unparsable, ignoring: %v", err)
		return nil
	}
	return &user
}

// TokenExpiry returns the access token's exp claim, for display only.
// The token is parsed without signature verification; nothing
// auth-related ever depends on this value.
func (s *Service) TokenExpiry() (time.Time, bool) {
	token, err := s.creds.Get(api.KeyAccessToken)
	if err != nil || token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
