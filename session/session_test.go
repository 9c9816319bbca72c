package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"docchat-client/api"
	"docchat-client/utils"
)

// memStore is an in-memory credential store for tests
type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *memStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func newTestLogger(t *testing.T) *utils.Logger {
	t.Helper()
	logger, err := utils.NewLogger(filepath.Join(t.TempDir(), "test.log"))
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

func newTestService(t *testing.T, server *httptest.Server, store api.CredentialStore) *Service {
	t.Helper()
	logger := newTestLogger(t)
	client := api.New(server.URL, 5*time.Second, store, logger)
	return NewService(client, store, logger)
}

func TestLoginPersistsCredentialsAndState(t *testing.T) {
	var loginCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login/" {
			t.Errorf("unexpected call to %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		loginCalls++
		w.Write([]byte(`{
			"user": {"id": 1, "username": "alice", "email": "alice@example.com"},
			"tokens": {"access": "acc-1", "refresh": "ref-1"}
		}`))
	}))
	defer server.Close()

	store := newMemStore()
	svc := newTestService(t, server, store)
	state := NewState(svc)

	if state.IsAuthenticated() {
		t.Fatal("state authenticated before login")
	}

	if err := state.Login(context.Background(), "alice", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if tok, _ := store.Get(api.KeyAccessToken); tok != "acc-1" {
		t.Errorf("stored access token = %q, want acc-1", tok)
	}
	if tok, _ := store.Get(api.KeyRefreshToken); tok != "ref-1" {
		t.Errorf("stored refresh token = %q, want ref-1", tok)
	}
	if !svc.IsAuthenticated() {
		t.Error("IsAuthenticated = false after login")
	}
	if user := state.User(); user == nil || user.Username != "alice" {
		t.Errorf("state user = %+v, want alice", user)
	}

	// Re-deriving from storage yields the same user without a network call
	state.CheckAuth()
	if user := state.User(); user == nil || user.Username != "alice" {
		t.Errorf("user after CheckAuth = %+v, want alice", user)
	}
	if loginCalls != 1 {
		t.Errorf("server saw %d calls, want 1 (CheckAuth must not hit the network)", loginCalls)
	}
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "invalid credentials"}`))
	}))
	defer server.Close()

	store := newMemStore()
	state := NewState(newTestService(t, server, store))

	if err := state.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Fatal("expected login error")
	}
	if state.IsAuthenticated() {
		t.Error("state authenticated after failed login")
	}
	if tok, _ := store.Get(api.KeyAccessToken); tok != "" {
		t.Errorf("access token persisted after failed login: %q", tok)
	}
}

func TestLogoutClearsAllKeys(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("logout must not make network calls, saw %s", r.URL.Path)
	}))
	defer server.Close()

	store := newMemStore()
	store.Set(api.KeyAccessToken, "acc")
	store.Set(api.KeyRefreshToken, "ref")
	store.Set(api.KeyUserProfile, `{"id":1,"username":"alice"}`)

	state := NewState(newTestService(t, server, store))
	if !state.IsAuthenticated() {
		t.Fatal("state not authenticated despite stored token")
	}

	state.Logout()

	if state.IsAuthenticated() {
		t.Error("state authenticated after logout")
	}
	if state.User() != nil {
		t.Error("user survived logout")
	}
	for _, key := range []string{api.KeyAccessToken, api.KeyRefreshToken, api.KeyUserProfile} {
		if v, _ := store.Get(key); v != "" {
			t.Errorf("credential %s = %q, want cleared", key, v)
		}
	}
}

func TestCurrentUserUnparsableProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	store := newMemStore()
	store.Set(api.KeyUserProfile, "{not json")
	svc := newTestService(t, server, store)

	if user := svc.CurrentUser(); user != nil {
		t.Errorf("CurrentUser = %+v, want nil for corrupt profile", user)
	}
}

func TestTokenExpiry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
		"sub": "1",
	})
	signed, err := token.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	store := newMemStore()
	store.Set(api.KeyAccessToken, signed)
	svc := newTestService(t, server, store)

	got, ok := svc.TokenExpiry()
	if !ok {
		t.Fatal("TokenExpiry = not ok, want expiry")
	}
	if !got.Equal(exp) {
		t.Errorf("expiry = %v, want %v", got, exp)
	}

	// Opaque (non-JWT) tokens simply report no expiry
	store.Set(api.KeyAccessToken, "opaque-token")
	if _, ok := svc.TokenExpiry(); ok {
		t.Error("TokenExpiry reported an expiry for an opaque token")
	}
}
