package sitemap

import (
	"context"
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

const sitemapXML = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/a</loc></url>
  <url><loc>https://example.com/b</loc></url>
</urlset>`

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestReader(server *httptest.Server) *Reader {
	return NewReader(server.Client(), server.URL+"/sitemap.xml", "test-agent", 5*time.Second, testLogger())
}

func TestFetchPage_Success(t *testing.T) {
	var gotQuery, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, sitemapXML)
	}))
	t.Cleanup(server.Close)

	reader := newTestReader(server)
	urls, err := reader.FetchPage(context.Background(), 3)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("expected 2 URLs, got %d", len(urls))
	}
	if gotQuery != "page=3" {
		t.Errorf("expected query 'page=3', got %q", gotQuery)
	}
	if gotUA != "test-agent" {
		t.Errorf("expected User-Agent 'test-agent', got %q", gotUA)
	}
}

func TestFetchPage_EmptyURLSetIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"></urlset>`)
	}))
	t.Cleanup(server.Close)

	reader := newTestReader(server)
	urls, err := reader.FetchPage(context.Background(), 1)

	if err != nil {
		t.Fatalf("expected nil error for empty urlset, got: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("expected empty URL list, got %v", urls)
	}
}

func TestFetchPage_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	reader := newTestReader(server)
	_, err := reader.FetchPage(context.Background(), 1)

	if err == nil {
		t.Fatal("expected error for 404, got nil")
	}
	if !errors.Is(err, utils.ErrSitemapFetch) {
		t.Errorf("expected ErrSitemapFetch, got: %v", err)
	}
	// The driver's end-of-sitemap heuristic depends on the status being
	// visible in the message.
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("expected '404' in error message, got: %v", err)
	}
}

func TestFetchPage_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	reader := newTestReader(server)
	_, err := reader.FetchPage(context.Background(), 1)

	if err == nil {
		t.Fatal("expected error for 500, got nil")
	}
	if !errors.Is(err, utils.ErrSitemapFetch) {
		t.Errorf("expected ErrSitemapFetch, got: %v", err)
	}
	if strings.Contains(err.Error(), "404") {
		t.Errorf("500 error must not look like end-of-sitemap, got: %v", err)
	}
}

func TestFetchPage_MalformedXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<urlset><url><loc>broken`)
	}))
	t.Cleanup(server.Close)

	reader := newTestReader(server)
	_, err := reader.FetchPage(context.Background(), 1)

	if err == nil {
		t.Fatal("expected error for malformed XML, got nil")
	}
	if !errors.Is(err, utils.ErrSitemapFetch) {
		t.Errorf("expected ErrSitemapFetch, got: %v", err)
	}
}

func TestFetchPage_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	reader := NewReader(&http.Client{Timeout: 2 * time.Second}, server.URL+"/sitemap.xml", "test-agent", 2*time.Second, testLogger())
	server.Close()

	_, err := reader.FetchPage(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error for closed server, got nil")
	}
	if !errors.Is(err, utils.ErrSitemapFetch) {
		t.Errorf("expected ErrSitemapFetch, got: %v", err)
	}
}

func TestPageURL(t *testing.T) {
	reader := NewReader(nil, "https://example.com/sitemap.xml", "ua", time.Second, testLogger())
	got := reader.PageURL(7)
	want := "https://example.com/sitemap.xml?page=7"
	if got != want {
		t.Errorf("PageURL(7) = %q, want %q", got, want)
	}
}
