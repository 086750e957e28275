package harvest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/extract"
	"sitemap-harvester/pkg/fetch"
	"sitemap-harvester/pkg/utils"
)

// attemptState drives the per-attempt extraction sequence. One attempt walks
// TryPrimary -> (TryFallback) -> Succeeded|Failed; the retry envelope wraps
// whole attempts, never individual states.
type attemptState int

const (
	stateTryPrimary attemptState = iota
	stateTryFallback
	stateSucceeded
	stateFailed
)

// Orchestrator harvests a single page URL: existence check, primary "fit"
// extraction, "fullpage" fallback, all inside a bounded retry envelope with
// a fixed delay between attempts.
type Orchestrator struct {
	fetcher    *fetch.Fetcher
	extractor  *extract.Client
	maxRetries int
	retryDelay time.Duration
	log        *logrus.Entry
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(fetcher *fetch.Fetcher, extractor *extract.Client, maxRetries int, retryDelay time.Duration, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher:    fetcher,
		extractor:  extractor,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		log:        log.WithField("component", "orchestrator"),
	}
}

// Harvest runs up to maxRetries attempts against pageURL and returns the
// extracted markdown from the first successful one. The returned error after
// exhausted attempts wraps the last attempt's failure; the caller decides
// whether that is fatal (it is not, for the driver loop).
func (o *Orchestrator) Harvest(ctx context.Context, pageURL string) (string, error) {
	pageLog := o.log.WithField("url", pageURL)
	var lastErr error

	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		content, err := o.attempt(ctx, pageURL)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("context cancelled during attempt %d: %w", attempt, lastErr)
		}

		if attempt < o.maxRetries {
			pageLog.WithFields(logrus.Fields{
				"attempt":  attempt,
				"category": utils.CategorizeError(err),
				"delay":    o.retryDelay,
			}).Warnf("Attempt failed, retrying: %v", err)

			select {
			case <-time.After(o.retryDelay):
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled during retry delay: %w", lastErr)
			}
		}
	}

	pageLog.Errorf("All %d attempts failed. Last error: %v", o.maxRetries, lastErr)
	return "", fmt.Errorf("after %d attempts: %w", o.maxRetries, lastErr)
}

// attempt performs one full extraction sequence as an explicit state machine.
func (o *Orchestrator) attempt(ctx context.Context, pageURL string) (string, error) {
	pageLog := o.log.WithField("url", pageURL)

	state := stateTryPrimary
	var content string
	var attemptErr error

	for {
		switch state {
		case stateTryPrimary:
			if err := o.fetcher.CheckExists(ctx, pageURL); err != nil {
				// Unreachable pages never reach the extraction service
				attemptErr = err
				state = stateFailed
				continue
			}
			markdown, err := o.extractor.FetchFit(ctx, pageURL)
			if err != nil {
				pageLog.Debugf("Primary extraction failed, trying fullpage fallback: %v", err)
				attemptErr = err
				state = stateTryFallback
				continue
			}
			content = markdown
			state = stateSucceeded

		case stateTryFallback:
			markdown, err := o.extractor.FetchFullPage(ctx, pageURL)
			if err != nil {
				attemptErr = fmt.Errorf("fallback failed (%v) after primary: %w", err, attemptErr)
				state = stateFailed
				continue
			}
			content = markdown
			state = stateSucceeded

		case stateSucceeded:
			return content, nil

		case stateFailed:
			return "", attemptErr
		}
	}
}
