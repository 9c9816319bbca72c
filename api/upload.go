package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// progressReader reports the fraction of bytes read from the underlying
// reader. The multipart body is assembled up front (uploads are capped at
// 10 MiB), so total is known exactly.
type progressReader struct {
	r        io.Reader
	total    int64
	sent     int64
	progress func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.progress != nil && p.total > 0 {
			p.progress(float64(p.sent) / float64(p.total))
		}
	}
	return n, err
}

// UploadToPresigned performs the multipart form upload directly to the
// pre-authorized destination, bypassing the application server. The form
// fields returned by the presign call are written before the file part.
// 200 and 204 count as success; any other outcome is reported as a plain
// upload failure, with the transport detail left to the logs.
func (c *Client) UploadToPresigned(ctx context.Context, target *PresignResponse, filePath string, progress func(float64)) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for key, value := range target.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write form field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}

	total := int64(body.Len())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &progressReader{
		r:        &body,
		total:    total,
		progress: progress,
	})
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("Storage upload transport error: %v", err)
		return fmt.Errorf("upload failed")
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		c.logger.Error("Storage upload rejected with status %d", resp.StatusCode)
		return fmt.Errorf("upload failed")
	}
	return nil
}
