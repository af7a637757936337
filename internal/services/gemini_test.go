package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGeminiClient(t *testing.T, srv *httptest.Server) *geminiClient {
	t.Helper()
	return &geminiClient{
		log:        newTestLogger(t),
		baseURL:    srv.URL,
		apiKey:     "test-key",
		model:      "gemini-3-pro",
		httpClient: &http.Client{Timeout: 5 * time.Second},
		maxRetries: 2,
	}
}

func TestGeminiUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || !strings.HasPrefix(r.URL.Path, "/upload/v1beta/files") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/related") {
			t.Errorf("expected multipart/related content type, got %q", r.Header.Get("Content-Type"))
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"file": map[string]any{
				"name":     "files/abc123",
				"uri":      "https://files.example/abc123",
				"mimeType": "video/mp4",
				"state":    "PROCESSING",
			},
		})
	}))
	defer srv.Close()

	c := newTestGeminiClient(t, srv)
	file, err := c.UploadFile(context.Background(), strings.NewReader("clip-bytes"), "swing.mp4", "video/mp4")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if file.Name != "files/abc123" || file.State != GeminiFileProcessing {
		t.Fatalf("unexpected file: %+v", file)
	}
}

func TestGeminiGetFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/files/abc123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":  "files/abc123",
			"uri":   "https://files.example/abc123",
			"state": "ACTIVE",
		})
	}))
	defer srv.Close()

	c := newTestGeminiClient(t, srv)
	file, err := c.GetFile(context.Background(), "files/abc123")
	if err != nil {
		t.Fatalf("get file failed: %v", err)
	}
	if file.State != GeminiFileActive {
		t.Fatalf("expected ACTIVE state, got %q", file.State)
	}
}

func TestGeminiGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req generateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("expected one content with file and text parts, got %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "{\"technical_score\": "},
					{"text": "7}"},
				}}},
			},
		})
	}))
	defer srv.Close()

	c := newTestGeminiClient(t, srv)
	file := &GeminiFile{Name: "files/abc", URI: "https://files.example/abc", MimeType: "video/mp4", State: GeminiFileActive}
	text, err := c.GenerateContent(context.Background(), file, "analyze this")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if text != "{\"technical_score\": 7}" {
		t.Fatalf("expected concatenated candidate text, got %q", text)
	}
}

func TestGeminiRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"name": "files/x", "state": "ACTIVE"})
	}))
	defer srv.Close()

	c := newTestGeminiClient(t, srv)
	file, err := c.GetFile(context.Background(), "files/x")
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if file.State != GeminiFileActive {
		t.Fatalf("unexpected file state %q", file.State)
	}
}

func TestGeminiDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestGeminiClient(t, srv)
	if _, err := c.GetFile(context.Background(), "files/x"); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call for a 400, got %d", calls)
	}
}
