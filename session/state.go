package session

import (
	"context"
	"sync"

	"docchat-client/api"
)

// State is the shared session state the view layer renders from: the
// current user and whether a session exists. It lives for the whole
// process and is initialized from storage so a restart picks up where
// the last run left off.
type State struct {
	mu            sync.RWMutex
	svc           *Service
	user          *api.User
	authenticated bool
	listeners     []func()
}

// NewState creates the session state, seeded from the credential store
func NewState(svc *Service) *State {
	s := &State{svc: svc}
	s.CheckAuth()
	return s
}

// OnChange registers a listener notified after every state mutation
func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// User returns the current user, nil when signed out
func (s *State) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a session is active
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// SetUser overrides the current user directly
func (s *State) SetUser(user *api.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.notify()
}

// Login delegates to the auth service and adopts the returned user.
// On failure the state is left untouched and the error propagates.
func (s *State) Login(ctx context.Context, username, password string) error {
	resp, err := s.svc.Login(ctx, username, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	user := resp.User
	s.user = &user
	s.authenticated = true
	s.mu.Unlock()
	s.notify()
	return nil
}

// Register delegates to the auth service and adopts the returned user.
// On failure the state is left untouched and the error propagates.
func (s *State) Register(ctx context.Context, username, email, password, passwordConfirm string) error {
	resp, err := s.svc.Register(ctx, username, email, password, passwordConfirm)
	if err != nil {
		return err
	}

	s.mu.Lock()
	user := resp.User
	s.user = &user
	s.authenticated = true
	s.mu.Unlock()
	s.notify()
	return nil
}

// Logout clears the stored credentials and the in-memory state
func (s *State) Logout() {
	s.svc.Logout()
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
	s.notify()
}

// ForceSignedOut drops the in-memory state without touching storage.
// Used when the API client has already cleared the credentials after a
// failed token refresh.
func (s *State) ForceSignedOut() {
	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()
	s.notify()
}

// CheckAuth re-derives the state from storage. Used once at startup; no
// network call is involved.
func (s *State) CheckAuth() {
	authenticated := s.svc.IsAuthenticated()
	var user *api.User
	if authenticated {
		user = s.svc.CurrentUser()
	}

	s.mu.Lock()
	s.user = user
	s.authenticated = authenticated
	s.mu.Unlock()
	s.notify()
}

func (s *State) notify() {
	s.mu.RLock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
