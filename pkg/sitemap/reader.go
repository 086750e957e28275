package sitemap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/parse"
	"sitemap-harvester/pkg/utils"
)

// Reader fetches paginated sitemap documents and extracts their page URLs.
type Reader struct {
	client    *http.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	log       *logrus.Entry
}

// NewReader creates a new sitemap Reader.
func NewReader(client *http.Client, baseURL, userAgent string, timeout time.Duration, log *logrus.Logger) *Reader {
	return &Reader{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
		timeout:   timeout,
		log:       log.WithField("component", "sitemap_reader"),
	}
}

// PageURL returns the address of the given sitemap page number.
func (r *Reader) PageURL(page int) string {
	return fmt.Sprintf("%s?page=%d", r.baseURL, page)
}

// FetchPage retrieves one sitemap page and returns the page URLs it lists.
// An empty slice with a nil error means the sitemap page held no URLs; the
// driver treats that as the end of the sitemap. All failures are wrapped
// with ErrSitemapFetch, with the numeric HTTP status in the message when one
// was received.
func (r *Reader) FetchPage(ctx context.Context, page int) ([]string, error) {
	sitemapURL := r.PageURL(page)
	pageLog := r.log.WithField("sitemap_url", sitemapURL)

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrSitemapFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: sitemap returned status %d", utils.ErrSitemapFetch, resp.StatusCode)
	}

	sitemapBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrResponseBodyRead, err)
	}

	urls, err := parse.ExtractPageURLs(sitemapBytes)
	if err != nil {
		return nil, err
	}

	pageLog.WithField("url_count", len(urls)).Debug("Fetched sitemap page")
	return urls, nil
}
