package files

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"docchat-client/api"
	"docchat-client/utils"
)

// MaxUploadSize is the fixed client-side size cap
const MaxUploadSize = 10 * 1024 * 1024

// allowedMimeTypes is the fixed upload allow-list
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"text/plain":      true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"image/png":  true,
	"image/jpeg": true,
}

// UploadState tracks where an upload is in its lifecycle
type UploadState int

const (
	StateIdle UploadState = iota
	StateValidating
	StateRequestingTarget
	StateTransferring
	StateFinalizing
	StateComplete
	StateFailed
)

func (s UploadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRequestingTarget:
		return "requesting upload target"
	case StateTransferring:
		return "uploading"
	case StateFinalizing:
		return "finalizing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Uploader drives a single upload through validation, presigning,
// transfer and finalization. One upload is in flight at a time per
// Uploader.
type Uploader struct {
	api    *api.Client
	logger *utils.Logger

	mu    sync.Mutex
	state UploadState
}

// NewUploader creates an upload orchestrator
func NewUploader(client *api.Client, logger *utils.Logger) *Uploader {
	return &Uploader{api: client, logger: logger}
}

// State returns the current upload state
func (u *Uploader) State() UploadState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *Uploader) setState(s UploadState) {
	u.mu.Lock()
	u.state = s
	u.mu.Unlock()
}

// Upload validates the file, requests a pre-authorized destination,
// transfers the bytes with progress events, and registers the object
// with the backend. Validation failures are reported before any network
// call is made. On success progress is reset to zero and the canonical
// FileAsset is returned; no partial asset is ever reported.
func (u *Uploader) Upload(ctx context.Context, filePath string, progress func(float64)) (*api.FileAsset, error) {
	u.setState(StateValidating)

	size, mimeType, err := u.validate(filePath)
	if err != nil {
		u.setState(StateFailed)
		return nil, err
	}

	filename := filepath.Base(filePath)

	u.setState(StateRequestingTarget)
	target, err := u.api.PresignUpload(ctx, filename, mimeType, size)
	if err != nil {
		u.setState(StateFailed)
		return nil, fmt.Errorf("failed to request upload target: %w", err)
	}

	u.setState(StateTransferring)
	if err := u.api.UploadToPresigned(ctx, target, filePath, progress); err != nil {
		u.setState(StateFailed)
		return nil, err
	}

	u.setState(StateFinalizing)
	asset, err := u.api.FinalizeUpload(ctx, target.S3Key, filename, mimeType, size)
	if err != nil {
		u.setState(StateFailed)
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	if progress != nil {
		progress(0)
	}
	u.setState(StateComplete)
	u.logger.Info("Uploaded %s (%s, %s)", filename, mimeType, utils.FormatFileSize(size))
	return asset, nil
}

// validate checks the size cap and MIME allow-list. It runs entirely
// locally; nothing is sent before validation passes.
func (u *Uploader) validate(filePath string) (int64, string, error) {
	size, err := utils.GetFileSize(filePath)
	if err != nil {
		return 0, "", err
	}
	if size > MaxUploadSize {
		return 0, "", fmt.Errorf("File size exceeds 10MB limit")
	}

	mimeType, err := utils.DetectMimeType(filePath)
	if err != nil {
		return 0, "", err
	}
	if !allowedMimeTypes[mimeType] {
		return 0, "", fmt.Errorf("file type not supported: %s", mimeType)
	}

	return size, mimeType, nil
}
