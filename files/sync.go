package files

import (
	"context"
	"sync"
	"time"

	"docchat-client/api"
	"docchat-client/utils"
)

// PollInterval is how often the syncer re-checks in-flight files
const PollInterval = 5 * time.Second

// Syncer keeps a page of the server's file listing mirrored locally.
// Consistency is polling-based: while any listed file is still uploading
// or processing, the current page is reloaded every PollInterval;
// otherwise the ticks are no-ops.
type Syncer struct {
	api    *api.Client
	logger *utils.Logger

	mu        sync.Mutex
	page      int
	pageSize  int
	last      *api.FileListResponse
	selection map[int64]struct{}
	onUpdate  func(*api.FileListResponse)

	stopOnce sync.Once
	stop     chan struct{}
}

// NewSyncer creates a file syncer. onUpdate is invoked after every
// successful load, including poll-triggered reloads; it may be nil.
func NewSyncer(client *api.Client, logger *utils.Logger, pageSize int, onUpdate func(*api.FileListResponse)) *Syncer {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Syncer{
		api:       client,
		logger:    logger,
		page:      1,
		pageSize:  pageSize,
		selection: make(map[int64]struct{}),
		onUpdate:  onUpdate,
		stop:      make(chan struct{}),
	}
}

// Load fetches the given page and makes it the current one. The
// selection set is pruned to ids that are still listed.
func (s *Syncer) Load(ctx context.Context, page int) (*api.FileListResponse, error) {
	s.mu.Lock()
	pageSize := s.pageSize
	s.mu.Unlock()

	resp, err := s.api.ListFiles(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.page = page
	s.last = resp
	s.pruneSelectionLocked()
	onUpdate := s.onUpdate
	s.mu.Unlock()

	if onUpdate != nil {
		onUpdate(resp)
	}
	return resp, nil
}

// Refresh reloads the currently viewed page
func (s *Syncer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	page := s.page
	s.mu.Unlock()
	_, err := s.Load(ctx, page)
	return err
}

// Start launches the poll loop. Stop must be called on view teardown.
func (s *Syncer) Start() {
	utils.SafeGo(s.logger, "file-sync-poll", func() {
		ticker := time.NewTicker(PollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if !s.hasInFlight() {
					continue
				}
				ctx, cancel := context.WithTimeout(context.Background(), PollInterval)
				if err := s.Refresh(ctx); err != nil {
					s.logger.Warn("File poll refresh failed: %v", err)
				}
				cancel()
			}
		}
	})
}

// Stop cancels the poll loop; safe to call more than once
func (s *Syncer) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// hasInFlight reports whether the last-fetched set contains a file that
// is still uploading or processing server-side.
func (s *Syncer) hasInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return false
	}
	for _, f := range s.last.Results {
		if f.Status == api.FileStatusProcessing || f.Status == api.FileStatusUploaded {
			return true
		}
	}
	return false
}

// Current returns the last-fetched page, or nil before the first load
func (s *Syncer) Current() *api.FileListResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Page returns the currently viewed page number
func (s *Syncer) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Select adds a listed file to the selection set. Ids that are not in
// the last-fetched set are ignored, so the selection never references
// a file that is not listed.
func (s *Syncer) Select(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return
	}
	for _, f := range s.last.Results {
		if f.ID == id {
			s.selection[id] = struct{}{}
			return
		}
	}
}

// Deselect removes a file from the selection set
func (s *Syncer) Deselect(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selection, id)
}

// Selected returns the selected file ids
func (s *Syncer) Selected() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	return ids
}

// IsSelected reports whether a file id is in the selection set
func (s *Syncer) IsSelected(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selection[id]
	return ok
}

// pruneSelectionLocked drops selected ids that are no longer listed
func (s *Syncer) pruneSelectionLocked() {
	if s.last == nil {
		return
	}
	listed := make(map[int64]struct{}, len(s.last.Results))
	for _, f := range s.last.Results {
		listed[f.ID] = struct{}{}
	}
	for id := range s.selection {
		if _, ok := listed[id]; !ok {
			delete(s.selection, id)
		}
	}
}

// Rename updates a file's name server-side, then reloads the page.
// There is no optimistic local mutation.
func (s *Syncer) Rename(ctx context.Context, id int64, filename string) error {
	if _, err := s.api.UpdateFile(ctx, id, api.FileUpdate{Filename: &filename}); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Delete removes a file server-side, drops it from the selection set and
// reloads the page. The explicit user confirmation happens at the view
// layer before this is called.
func (s *Syncer) Delete(ctx context.Context, id int64) error {
	if err := s.api.DeleteFile(ctx, id); err != nil {
		return err
	}
	s.Deselect(id)
	return s.Refresh(ctx)
}

// RetryFinalize asks the backend to retry a failed finalize, then reloads
func (s *Syncer) RetryFinalize(ctx context.Context, id int64) error {
	if err := s.api.RetryFinalize(ctx, id); err != nil {
		return err
	}
	return s.Refresh(ctx)
}
