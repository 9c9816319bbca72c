package files

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"docchat-client/api"
	"docchat-client/utils"
)

func newTestLogger(t *testing.T) *utils.Logger {
	t.Helper()
	logger, err := utils.NewLogger(filepath.Join(t.TempDir(), "test.log"))
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

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

func newTestAPI(t *testing.T, server *httptest.Server) *api.Client {
	t.Helper()
	return api.New(server.URL, 5*time.Second, newMemStore(), newTestLogger(t))
}

// fileListServer serves a mutable file list plus delete/update endpoints
type fileListServer struct {
	mu      sync.Mutex
	files   []api.FileAsset
	deletes int
	lists   int
}

func (s *fileListServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/files/":
			s.lists++
			resp := api.FileListResponse{
				Results:    s.files,
				Count:      len(s.files),
				Page:       1,
				PageSize:   20,
				TotalPages: 1,
			}
			json.NewEncoder(w).Encode(resp)
		case r.Method == http.MethodDelete:
			s.deletes++
			// Drop file 7 from the listing
			var kept []api.FileAsset
			for _, f := range s.files {
				if f.ID != 7 {
					kept = append(kept, f)
				}
			}
			s.files = kept
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestLoadPrunesSelection(t *testing.T) {
	backend := &fileListServer{files: []api.FileAsset{
		{ID: 7, Filename: "a.pdf", FileType: "application/pdf", Status: api.FileStatusReady},
		{ID: 8, Filename: "b.pdf", FileType: "application/pdf", Status: api.FileStatusReady},
	}}
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	syncer := NewSyncer(newTestAPI(t, server), newTestLogger(t), 20, nil)
	if _, err := syncer.Load(context.Background(), 1); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	syncer.Select(7)
	syncer.Select(8)
	syncer.Select(99) // not listed, must be ignored
	if len(syncer.Selected()) != 2 {
		t.Fatalf("selected %v, want exactly ids 7 and 8", syncer.Selected())
	}

	// Server-side removal of 7; reload must prune it from the selection
	backend.mu.Lock()
	backend.files = backend.files[1:]
	backend.mu.Unlock()

	if err := syncer.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if syncer.IsSelected(7) {
		t.Error("id 7 still selected after it vanished from the listing")
	}
	if !syncer.IsSelected(8) {
		t.Error("id 8 dropped from selection although still listed")
	}
}

func TestDeleteRemovesFromListAndSelection(t *testing.T) {
	backend := &fileListServer{files: []api.FileAsset{
		{ID: 7, Filename: "a.pdf", FileType: "application/pdf", Status: api.FileStatusReady},
		{ID: 8, Filename: "b.pdf", FileType: "application/pdf", Status: api.FileStatusReady},
	}}
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	syncer := NewSyncer(newTestAPI(t, server), newTestLogger(t), 20, nil)
	if _, err := syncer.Load(context.Background(), 1); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	syncer.Select(7)

	if err := syncer.Delete(context.Background(), 7); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if backend.deletes != 1 {
		t.Errorf("server saw %d deletes, want 1", backend.deletes)
	}
	for _, f := range syncer.Current().Results {
		if f.ID == 7 {
			t.Error("file 7 still in the displayed list after delete")
		}
	}
	if syncer.IsSelected(7) {
		t.Error("file 7 still selected after delete")
	}
}

func TestInFlightDetection(t *testing.T) {
	backend := &fileListServer{files: []api.FileAsset{
		{ID: 1, Status: api.FileStatusReady},
		{ID: 2, Status: api.FileStatusFailed},
	}}
	server := httptest.NewServer(backend.handler(t))
	defer server.Close()

	syncer := NewSyncer(newTestAPI(t, server), newTestLogger(t), 20, nil)

	// Before the first load a tick has nothing to do
	if syncer.hasInFlight() {
		t.Error("hasInFlight = true before first load")
	}

	if _, err := syncer.Load(context.Background(), 1); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if syncer.hasInFlight() {
		t.Error("hasInFlight = true with no file in {processing, uploaded}")
	}

	backend.mu.Lock()
	backend.files[0].Status = api.FileStatusProcessing
	backend.mu.Unlock()
	if err := syncer.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if !syncer.hasInFlight() {
		t.Error("hasInFlight = false with a processing file listed")
	}
}
