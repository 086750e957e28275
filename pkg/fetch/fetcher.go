package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/utils"
)

// Fetcher performs the page existence checks that gate every harvest attempt.
type Fetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	log       *logrus.Entry
}

// NewFetcher creates a new Fetcher instance
func NewFetcher(client *http.Client, userAgent string, timeout time.Duration, log *logrus.Logger) *Fetcher {
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
		log:       log.WithField("component", "fetcher"),
	}
}

// CheckExists issues a HEAD request against pageURL and reports whether the
// page is reachable. HTTP status alone never causes a transport error here;
// the response is inspected and any numeric status >= 400 fails the check
// with ErrReachability. Redirects are followed.
func (f *Fetcher) CheckExists(ctx context.Context, pageURL string) error {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, pageURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrRequestCreation, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrReachability, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		f.log.WithFields(logrus.Fields{"url": pageURL, "status_code": resp.StatusCode}).Debug("Existence check failed")
		return fmt.Errorf("%w: page returned status %d", utils.ErrReachability, resp.StatusCode)
	}
	return nil
}
