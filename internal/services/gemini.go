package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/formai-backend/internal/logger"
)

// Provider-side lifecycle of an uploaded clip.
const (
	GeminiFileProcessing = "PROCESSING"
	GeminiFileActive     = "ACTIVE"
	GeminiFileFailed     = "FAILED"
)

type GeminiFile struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	State    string `json:"state"`
}

// GeminiClient talks to the inference provider's file-ingestion and
// multimodal reasoning endpoints over plain REST.
type GeminiClient interface {
	UploadFile(ctx context.Context, r io.Reader, displayName, mimeType string) (*GeminiFile, error)
	GetFile(ctx context.Context, name string) (*GeminiFile, error)
	GenerateContent(ctx context.Context, file *GeminiFile, prompt string) (string, error)
}

type geminiClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
}

func NewGeminiClient(log *logger.Logger) (GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	baseURL := os.Getenv("GEMINI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-3-pro"
	}

	// video reasoning calls run long
	timeoutSec := 180
	if v := os.Getenv("GEMINI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	maxRetries := 4
	if v := os.Getenv("GEMINI_MAX_RETRIES"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed >= 0 {
			maxRetries = parsed
		}
	}

	return &geminiClient{
		log:        log.With("service", "GeminiClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type geminiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *geminiHTTPError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	if code >= 500 && code <= 599 {
		return true
	}
	return false
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}
	var httpErr *geminiHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	// +/- 20%
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

func (c *geminiClient) doOnce(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &geminiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *geminiClient) doJSON(ctx context.Context, method, path string, body any, out any) error {
	// exponential backoff: 1s, 2s, 4s, 8s (cap ~10s)
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var reader io.Reader
		if body != nil {
			var buf bytes.Buffer
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				return err
			}
			reader = &buf
		}

		resp, raw, err := c.doOnce(ctx, method, path, "application/json", reader)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("gemini decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryableErr(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			ra := strings.TrimSpace(resp.Header.Get("Retry-After"))
			if ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("Gemini request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

// ---- File API ----

type uploadFileResponse struct {
	File GeminiFile `json:"file"`
}

// UploadFile pushes the staged clip through the provider's multipart media
// upload. Not retried: the reader is consumed on the first attempt.
func (c *geminiClient) UploadFile(ctx context.Context, r io.Reader, displayName, mimeType string) (*GeminiFile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := mw.CreatePart(metaHeader)
	if err != nil {
		return nil, err
	}
	meta := map[string]any{"file": map[string]any{"display_name": displayName}}
	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return nil, err
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", mimeType)
	mediaPart, err := mw.CreatePart(mediaHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(mediaPart, r); err != nil {
		return nil, fmt.Errorf("failed to buffer upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	contentType := "multipart/related; boundary=" + mw.Boundary()
	_, raw, err := c.doOnce(ctx, "POST", "/upload/v1beta/files?uploadType=multipart", contentType, &buf)
	if err != nil {
		return nil, err
	}

	var out uploadFileResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("gemini decode error: %w; raw=%s", err, string(raw))
	}
	if out.File.Name == "" {
		return nil, fmt.Errorf("gemini upload returned no file name; raw=%s", string(raw))
	}
	return &out.File, nil
}

func (c *geminiClient) GetFile(ctx context.Context, name string) (*GeminiFile, error) {
	var out GeminiFile
	if err := c.doJSON(ctx, "GET", "/v1beta/"+name, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ---- Reasoning ----

type generateContentRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text     string        `json:"text,omitempty"`
	FileData *generateFile `json:"file_data,omitempty"`
}

type generateFile struct {
	FileURI  string `json:"file_uri"`
	MimeType string `json:"mime_type"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateContent issues one multimodal reasoning call combining the
// processed file handle and the prompt, and returns the raw model text.
func (c *geminiClient) GenerateContent(ctx context.Context, file *GeminiFile, prompt string) (string, error) {
	if file == nil || file.URI == "" {
		return "", errors.New("file with uri required")
	}

	req := generateContentRequest{
		Contents: []generateContent{
			{
				Parts: []generatePart{
					{FileData: &generateFile{FileURI: file.URI, MimeType: file.MimeType}},
					{Text: prompt},
				},
			},
		},
	}

	var resp generateContentResponse
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)
	if err := c.doJSON(ctx, "POST", path, req, &resp); err != nil {
		return "", err
	}

	var text string
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			text += p.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("no text found in gemini response")
	}
	return text, nil
}
