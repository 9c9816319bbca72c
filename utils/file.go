package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DetectMimeType detects the MIME type of a file by content, falling back
// to the extension when sniffing fails or is inconclusive.
func DetectMimeType(filePath string) (string, error) {
	mtype, err := mimetype.DetectFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	detected := mtype.String()
	// Strip any parameters (e.g. "; charset=utf-8")
	if idx := strings.Index(detected, ";"); idx > 0 {
		detected = detected[:idx]
	}

	// Content sniffing cannot distinguish some text formats; trust the
	// extension when the sniffer only saw generic bytes.
	if detected == "application/octet-stream" || detected == "text/plain" {
		if byExt := GetMimeType(filePath); byExt != "application/octet-stream" {
			return byExt, nil
		}
	}

	return detected, nil
}

// GetMimeType returns the MIME type based on file extension
func GetMimeType(filePath string) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	mimeTypes := map[string]string{
		".pdf":  "application/pdf",
		".txt":  "text/plain",
		".md":   "text/plain",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".png":  "image/png",
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
	}

	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsImageMime checks if the MIME type is an image type
func IsImageMime(mime string) bool {
	return strings.HasPrefix(mime, "image/")
}

// GetFileSize returns the file size in bytes
func GetFileSize(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to get file info: %w", err)
	}
	return info.Size(), nil
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
