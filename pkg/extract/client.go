package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/utils"
)

const healthTimeout = 10 * time.Second

// Client talks to the remote content-extraction service. The service renders
// a page and returns a markdown representation; this program never parses or
// transforms that markdown itself.
type Client struct {
	client          *http.Client
	host            string
	waitForSelector string
	removeSelectors []string
	timeout         time.Duration
	log             *logrus.Entry
}

// NewClient creates a new extraction service client.
func NewClient(httpClient *http.Client, host, waitForSelector string, removeSelectors []string, timeout time.Duration, log *logrus.Logger) *Client {
	return &Client{
		client:          httpClient,
		host:            host,
		waitForSelector: waitForSelector,
		removeSelectors: removeSelectors,
		timeout:         timeout,
		log:             log.WithField("component", "extractor"),
	}
}

// extractionRequest is the wire format shared by /api/fit and /api/extract.
type extractionRequest struct {
	URL                string   `json:"url"`
	OutputFormat       string   `json:"outputFormat"`
	IncludeLinks       bool     `json:"includeLinks"`
	ExtractMainContent bool     `json:"extractMainContent,omitempty"`
	RemoveSelectors    []string `json:"removeSelectors,omitempty"`
	FollowRedirects    bool     `json:"followRedirects"`
	EnableScripts      bool     `json:"enableScripts"`
	WaitForSelector    string   `json:"waitForSelector,omitempty"`
	Timeout            int64    `json:"timeout"`
}

type fitResponse struct {
	Markdown string `json:"markdown"`
}

type fullPageResponse struct {
	Content string `json:"content"`
}

// FetchFit requests structured main-content extraction ("fit" strategy) for
// pageURL. The response must carry a non-empty markdown field; its absence
// is a protocol error.
func (c *Client) FetchFit(ctx context.Context, pageURL string) (string, error) {
	payload := extractionRequest{
		URL:                pageURL,
		OutputFormat:       "markdown",
		IncludeLinks:       true,
		ExtractMainContent: true,
		FollowRedirects:    true,
		EnableScripts:      true,
		WaitForSelector:    c.waitForSelector,
		Timeout:            c.timeout.Milliseconds(),
	}

	var result fitResponse
	if err := c.post(ctx, "/api/fit", payload, &result); err != nil {
		return "", err
	}
	if result.Markdown == "" {
		return "", fmt.Errorf("%w: no markdown field in /api/fit response", utils.ErrExtraction)
	}
	return result.Markdown, nil
}

// FetchFullPage requests a full-page capture ("fullpage" strategy) for
// pageURL, with the configured boilerplate selectors removed. The response
// must carry a non-empty content field.
func (c *Client) FetchFullPage(ctx context.Context, pageURL string) (string, error) {
	payload := extractionRequest{
		URL:             pageURL,
		OutputFormat:    "markdown",
		IncludeLinks:    true,
		RemoveSelectors: c.removeSelectors,
		FollowRedirects: true,
		EnableScripts:   true,
		Timeout:         c.timeout.Milliseconds(),
	}

	var result fullPageResponse
	if err := c.post(ctx, "/api/extract", payload, &result); err != nil {
		return "", err
	}
	if result.Content == "" {
		return "", fmt.Errorf("%w: no content field in /api/extract response", utils.ErrExtraction)
	}
	return result.Content, nil
}

// Health probes the service's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.host+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: health check: %v", utils.ErrExtraction, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned status %d", utils.ErrExtraction, resp.StatusCode)
	}
	return nil
}

// post sends a JSON request to the given endpoint and decodes the JSON
// response into out. Non-2xx statuses and malformed bodies are wrapped with
// ErrExtraction.
func (c *Client) post(ctx context.Context, path string, payload extractionRequest, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshaling request for %s: %v", utils.ErrExtraction, path, err)
	}

	// The service needs headroom beyond its own render timeout
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout+15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.host+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", utils.ErrExtraction, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s returned status %d", utils.ErrExtraction, path, resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrResponseBodyRead, err)
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", utils.ErrExtraction, path, err)
	}

	c.log.WithFields(logrus.Fields{"url": payload.URL, "endpoint": path}).Debug("Extraction call succeeded")
	return nil
}
