package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListFiles returns one page of the user's file assets
func (c *Client) ListFiles(ctx context.Context, page, pageSize int) (*FileListResponse, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))

	var resp FileListResponse
	if err := c.do(ctx, http.MethodGet, "/files/", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type presignRequest struct {
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	Size     int64  `json:"size"`
}

// PresignUpload asks the backend for a pre-authorized upload destination
func (c *Client) PresignUpload(ctx context.Context, filename, fileType string, size int64) (*PresignResponse, error) {
	req := presignRequest{Filename: filename, FileType: fileType, Size: size}
	var resp PresignResponse
	if err := c.do(ctx, http.MethodPost, "/files/presign/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type finalizeRequest struct {
	S3Key    string `json:"s3_key"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
	Size     int64  `json:"size"`
}

// FinalizeUpload registers the uploaded object and returns the canonical
// FileAsset with its server-assigned id and initial status.
func (c *Client) FinalizeUpload(ctx context.Context, s3Key, filename, fileType string, size int64) (*FileAsset, error) {
	req := finalizeRequest{S3Key: s3Key, Filename: filename, FileType: fileType, Size: size}
	var asset FileAsset
	if err := c.do(ctx, http.MethodPost, "/files/finalize/", nil, req, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// UpdateFile applies a partial update (rename, metadata) to a file asset
func (c *Client) UpdateFile(ctx context.Context, id int64, update FileUpdate) (*FileAsset, error) {
	var asset FileAsset
	path := fmt.Sprintf("/files/%d/update/", id)
	if err := c.do(ctx, http.MethodPatch, path, nil, update, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// DeleteFile removes a file asset
func (c *Client) DeleteFile(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/files/%d/", id), nil, nil, nil)
}

// RetryFinalize asks the backend to retry a failed finalize step
func (c *Client) RetryFinalize(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/files/%d/retry-finalize/", id), nil, nil, nil)
}
