package harvest

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/config"
	"sitemap-harvester/pkg/extract"
	"sitemap-harvester/pkg/sitemap"
)

// sentinelKey identifies driver-level failures in the error log that have no
// offending URL of their own.
const sentinelKey = "harvester"

// Recovery wait for an unresponsive extraction service between batches.
const (
	recoveryMaxAttempts = 12
	recoveryWait        = 10 * time.Second
)

// Driver runs the whole harvest: outer loop over sitemap pages, inner loop
// over page URLs, strictly sequential.
type Driver struct {
	cfg       *config.Config
	reader    *sitemap.Reader
	orch      *Orchestrator
	writer    *Writer
	recorder  *Recorder
	extractor *extract.Client
	log       *logrus.Entry

	pagesSaved  int
	pagesFailed int
}

// NewDriver wires the harvest components together.
func NewDriver(cfg *config.Config, reader *sitemap.Reader, orch *Orchestrator, writer *Writer, recorder *Recorder, extractor *extract.Client, log *logrus.Logger) *Driver {
	return &Driver{
		cfg:       cfg,
		reader:    reader,
		orch:      orch,
		writer:    writer,
		recorder:  recorder,
		extractor: extractor,
		log:       log.WithField("component", "driver"),
	}
}

// PagesSaved reports how many pages were written during the run.
func (d *Driver) PagesSaved() int { return d.pagesSaved }

// PagesFailed reports how many pages exhausted their retries.
func (d *Driver) PagesFailed() int { return d.pagesFailed }

// Run executes the harvest. Page-level failures are logged and recorded but
// never abort the run; only an unresponsive extraction service or a
// cancelled context does. A panic anywhere below is recovered, recorded
// against the sentinel key, and returned as an error.
func (d *Driver) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := string(debug.Stack())
			d.log.WithFields(logrus.Fields{
				"panic_info":  r,
				"stack_trace": stackTrace,
			}).Error("PANIC recovered in harvest driver")
			d.recorder.Record(sentinelKey, fmt.Sprintf("panic: %v", r))
			err = fmt.Errorf("harvest driver panic: %v", r)
		}
	}()

	if healthErr := d.extractor.Health(ctx); healthErr != nil {
		return fmt.Errorf("extraction service is not responsive: %w", healthErr)
	}

	d.log.Infof("Starting harvest from sitemap page %d to %d", d.cfg.StartPage, d.cfg.MaxSitemapPages)

	for page := d.cfg.StartPage; page <= d.cfg.MaxSitemapPages; page++ {
		if ctx.Err() != nil {
			d.log.Warnf("Context cancelled, stopping harvest: %v", ctx.Err())
			return ctx.Err()
		}

		pageLog := d.log.WithField("sitemap_page", page)
		pageLog.Infof("Processing sitemap: %s", d.reader.PageURL(page))

		pageURLs, fetchErr := d.reader.FetchPage(ctx, page)
		if fetchErr != nil {
			d.recorder.Record(d.reader.PageURL(page), fetchErr.Error())
			// A missing sitemap page means the sitemap ran out; anything
			// else is worth trying the next page number for.
			if strings.Contains(fetchErr.Error(), "404") {
				pageLog.Warnf("Sitemap page not found, treating as end of sitemap: %v", fetchErr)
				break
			}
			pageLog.Errorf("Sitemap fetch failed, skipping page: %v", fetchErr)
			continue
		}

		if len(pageURLs) == 0 {
			pageLog.Info("No pages found in sitemap. This may be the last page.")
			break
		}

		pageLog.Infof("Found %d pages in sitemap %d", len(pageURLs), page)
		if len(pageURLs) > d.cfg.PagesPerSitemap {
			pageURLs = pageURLs[:d.cfg.PagesPerSitemap]
		}

		if batchErr := d.processBatches(ctx, pageURLs, pageLog); batchErr != nil {
			return batchErr
		}
	}

	d.log.Infof("Harvest completed. Saved %d pages, %d failed. Check the error log for details.",
		d.pagesSaved, d.pagesFailed)
	return nil
}

// processBatches walks the URLs of one sitemap page in batches, pausing
// between batches and re-probing the extraction service before each one.
func (d *Driver) processBatches(ctx context.Context, pageURLs []string, pageLog *logrus.Entry) error {
	total := len(pageURLs)

	for start := 0; start < total; start += d.cfg.BatchSize {
		end := start + d.cfg.BatchSize
		if end > total {
			end = total
		}

		if start > 0 {
			pageLog.Infof("Batch completed. Saved %d pages so far. Waiting %v before next batch.",
				d.pagesSaved, d.cfg.BatchDelay)
			if !sleepCtx(ctx, d.cfg.BatchDelay) {
				return ctx.Err()
			}
			if healthErr := d.extractor.Health(ctx); healthErr != nil {
				pageLog.Warnf("Extraction service not responsive, waiting for recovery: %v", healthErr)
				if !d.waitForRecovery(ctx) {
					return fmt.Errorf("extraction service did not recover: %w", healthErr)
				}
			}
		}

		pageLog.Infof("Processing batch: pages %d-%d of %d", start+1, end, total)
		for idx, pageURL := range pageURLs[start:end] {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			pageLog.Infof("Processing page %d/%d: %s", start+idx+1, total, pageURL)
			d.processURL(ctx, pageURL)

			if !sleepCtx(ctx, d.cfg.PageCrawlDelay) {
				return ctx.Err()
			}
		}
	}
	return nil
}

// processURL harvests one page URL. Exhausted retries produce exactly one
// error log entry and no output file.
func (d *Driver) processURL(ctx context.Context, pageURL string) {
	urlLog := d.log.WithField("url", pageURL)

	content, err := d.orch.Harvest(ctx, pageURL)
	if err != nil {
		d.pagesFailed++
		d.recorder.Record(pageURL, err.Error())
		urlLog.Errorf("Failed to process page: %v", err)
		return
	}

	path, err := d.writer.Save(pageURL, content)
	if err != nil {
		d.pagesFailed++
		d.recorder.Record(pageURL, err.Error())
		urlLog.Errorf("Failed to save content: %v", err)
		return
	}

	d.pagesSaved++
	urlLog.Infof("Saved content to %s", path)
}

// waitForRecovery polls the extraction service health endpoint until it
// responds or the bounded wait runs out. Returns false on give-up or
// context cancellation.
func (d *Driver) waitForRecovery(ctx context.Context) bool {
	for attempt := 1; attempt <= recoveryMaxAttempts; attempt++ {
		if err := d.extractor.Health(ctx); err == nil {
			d.log.Info("Extraction service is responsive again")
			return true
		}
		d.log.Warnf("Extraction service not ready, waiting %v (attempt %d/%d)",
			recoveryWait, attempt, recoveryMaxAttempts)
		if !sleepCtx(ctx, recoveryWait) {
			return false
		}
	}
	return false
}

// sleepCtx sleeps for d unless the context is cancelled first. Returns false
// on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
