package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetMimeType(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"report.pdf", "application/pdf"},
		{"notes.txt", "text/plain"},
		{"readme.md", "text/plain"},
		{"contract.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"chart.png", "image/png"},
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"archive.zip", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := GetMimeType(tt.path); got != tt.expected {
			t.Errorf("GetMimeType(%s) = %s, expected %s", tt.path, got, tt.expected)
		}
	}
}

func TestDetectMimeType_Content(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%test content\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	mime, err := DetectMimeType(path)
	if err != nil {
		t.Fatalf("DetectMimeType failed: %v", err)
	}
	if mime != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", mime)
	}
}

func TestDetectMimeType_ExtensionFallbackForPlainText(t *testing.T) {
	// Markdown sniffs as plain text; the extension map keeps it that way
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("# Heading\n\nBody text.\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	mime, err := DetectMimeType(path)
	if err != nil {
		t.Fatalf("DetectMimeType failed: %v", err)
	}
	if mime != "text/plain" {
		t.Errorf("Expected text/plain, got %s", mime)
	}
}

func TestIsImageMime(t *testing.T) {
	if !IsImageMime("image/png") {
		t.Error("image/png should be an image")
	}
	if IsImageMime("application/pdf") {
		t.Error("application/pdf should not be an image")
	}
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}

	for _, tt := range tests {
		if got := FormatFileSize(tt.bytes); got != tt.expected {
			t.Errorf("FormatFileSize(%d) = %s, expected %s", tt.bytes, got, tt.expected)
		}
	}
}
