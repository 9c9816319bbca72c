package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestUploadToPresignedSendsFieldsAndFile(t *testing.T) {
	var gotFields map[string]string
	var gotFile string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		gotFields = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			gotFields[key] = values[0]
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()
		buf := make([]byte, 64)
		n, _ := file.Read(buf)
		gotFile = string(buf[:n])
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server, newMemStore())
	target := &PresignResponse{
		URL:    server.URL,
		Fields: map[string]string{"key": "uploads/report.txt", "policy": "abc"},
		S3Key:  "uploads/report.txt",
	}

	var lastProgress float64
	path := writeTempFile(t, "report.txt", "hello world")
	err := client.UploadToPresigned(context.Background(), target, path, func(f float64) {
		lastProgress = f
	})
	if err != nil {
		t.Fatalf("UploadToPresigned failed: %v", err)
	}

	if gotFields["key"] != "uploads/report.txt" || gotFields["policy"] != "abc" {
		t.Errorf("form fields = %v, want presign fields included", gotFields)
	}
	if gotFile != "hello world" {
		t.Errorf("file content = %q, want %q", gotFile, "hello world")
	}
	if lastProgress != 1.0 {
		t.Errorf("final progress = %v, want 1.0", lastProgress)
	}
}

func TestUploadToPresignedRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server, newMemStore())
	target := &PresignResponse{URL: server.URL, Fields: map[string]string{}}

	path := writeTempFile(t, "report.txt", "hello")
	err := client.UploadToPresigned(context.Background(), target, path, nil)
	if err == nil {
		t.Fatal("expected error for rejected upload")
	}
	if err.Error() != "upload failed" {
		t.Errorf("err = %q, want generic upload failure", err.Error())
	}
}
