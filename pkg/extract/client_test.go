package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/utils"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(server.Client(), server.URL, "main, article", []string{"header", "footer"}, 30*time.Second, testLogger())
}

// decodeRequest reads an extractionRequest from the request body.
func decodeRequest(t *testing.T, r *http.Request) extractionRequest {
	t.Helper()
	var req extractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("decoding request body: %v", err)
	}
	return req
}

func TestFetchFit_Success(t *testing.T) {
	var gotReq extractionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fit" {
			t.Errorf("expected path /api/fit, got %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		gotReq = decodeRequest(t, r)
		json.NewEncoder(w).Encode(map[string]string{"markdown": "# Hello"})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server)
	markdown, err := client.FetchFit(context.Background(), "https://example.com/page")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if markdown != "# Hello" {
		t.Errorf("expected markdown '# Hello', got %q", markdown)
	}
	if gotReq.URL != "https://example.com/page" {
		t.Errorf("unexpected target URL: %q", gotReq.URL)
	}
	if !gotReq.ExtractMainContent {
		t.Error("fit request must set extractMainContent")
	}
	if !gotReq.IncludeLinks {
		t.Error("fit request must set includeLinks")
	}
	if gotReq.WaitForSelector != "main, article" {
		t.Errorf("unexpected waitForSelector: %q", gotReq.WaitForSelector)
	}
	if len(gotReq.RemoveSelectors) != 0 {
		t.Errorf("fit request must not carry removeSelectors, got %v", gotReq.RemoveSelectors)
	}
	if gotReq.Timeout != (30 * time.Second).Milliseconds() {
		t.Errorf("unexpected timeout: %d", gotReq.Timeout)
	}
}

func TestFetchFit_MissingMarkdownField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"html": "<p>not what we asked for</p>"})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server)
	_, err := client.FetchFit(context.Background(), "https://example.com/page")

	if err == nil {
		t.Fatal("expected error for missing markdown field, got nil")
	}
	if !errors.Is(err, utils.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got: %v", err)
	}
	if !strings.Contains(err.Error(), "markdown") {
		t.Errorf("expected 'markdown' in error message, got: %v", err)
	}
}

func TestFetchFit_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server)
	_, err := client.FetchFit(context.Background(), "https://example.com/page")

	if err == nil {
		t.Fatal("expected error for 502, got nil")
	}
	if !errors.Is(err, utils.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got: %v", err)
	}
}

func TestFetchFit_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"markdown": `)
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server)
	_, err := client.FetchFit(context.Background(), "https://example.com/page")

	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
	if !errors.Is(err, utils.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got: %v", err)
	}
}

func TestFetchFullPage_Success(t *testing.T) {
	var gotReq extractionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/extract" {
			t.Errorf("expected path /api/extract, got %s", r.URL.Path)
		}
		gotReq = decodeRequest(t, r)
		json.NewEncoder(w).Encode(map[string]string{"content": "full page text"})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server)
	content, err := client.FetchFullPage(context.Background(), "https://example.com/page")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != "full page text" {
		t.Errorf("expected content 'full page text', got %q", content)
	}
	if gotReq.ExtractMainContent {
		t.Error("fullpage request must not set extractMainContent")
	}
	if gotReq.WaitForSelector != "" {
		t.Errorf("fullpage request must not carry waitForSelector, got %q", gotReq.WaitForSelector)
	}
	if len(gotReq.RemoveSelectors) != 2 {
		t.Errorf("expected 2 removeSelectors, got %v", gotReq.RemoveSelectors)
	}
}

func TestFetchFullPage_MissingContentField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	t.Cleanup(server.Close)

	client := newTestClient(server)
	_, err := client.FetchFullPage(context.Background(), "https://example.com/page")

	if err == nil {
		t.Fatal("expected error for missing content field, got nil")
	}
	if !errors.Is(err, utils.ErrExtraction) {
		t.Errorf("expected ErrExtraction, got: %v", err)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("expected path /health, got %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			t.Cleanup(server.Close)

			client := newTestClient(server)
			err := client.Health(context.Background())

			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got: %v", err)
			}
		})
	}
}
