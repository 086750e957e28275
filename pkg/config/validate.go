package config

import (
	"fmt"
	"time"

	"sitemap-harvester/pkg/utils"
)

// Default values applied by Validate. The selector lists mirror what the
// extraction service expects for main-content pages and boilerplate removal.
const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	defaultOutputDir       = "./harvested_content"
	defaultErrorLogFile    = "./harvest_errors.log"
	defaultWaitForSelector = "main, article, .content"
)

// DefaultRemoveSelectors is the boilerplate denylist for fullpage extraction.
var DefaultRemoveSelectors = []string{"header", "footer", "nav", ".menu", ".sidebar", ".ads"}

// Validate checks Config fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *Config) Validate() (warnings []string, err error) {
	if c.SitemapBaseURL == "" {
		return warnings, fmt.Errorf("%w: sitemap_base_url is required", utils.ErrConfigValidation)
	}
	if c.ExtractorHost == "" {
		return warnings, fmt.Errorf("%w: extractor_host is required", utils.ErrConfigValidation)
	}

	if c.OutputDir == "" {
		warnings = append(warnings, fmt.Sprintf("output_dir is empty, defaulting to '%s'", defaultOutputDir))
		c.OutputDir = defaultOutputDir
	}
	if c.ErrorLogFile == "" {
		warnings = append(warnings, fmt.Sprintf("error_log_file is empty, defaulting to '%s'", defaultErrorLogFile))
		c.ErrorLogFile = defaultErrorLogFile
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	if c.StartPage <= 0 {
		c.StartPage = 1
	}
	if c.MaxSitemapPages <= 0 {
		warnings = append(warnings, "max_sitemap_pages should be > 0, defaulting to 10")
		c.MaxSitemapPages = 10
	}
	if c.StartPage > c.MaxSitemapPages {
		warnings = append(warnings, fmt.Sprintf(
			"start_page (%d) > max_sitemap_pages (%d), no sitemap pages will be processed",
			c.StartPage, c.MaxSitemapPages))
	}
	if c.PagesPerSitemap <= 0 {
		c.PagesPerSitemap = 2000
	}

	if c.MaxRetries <= 0 {
		warnings = append(warnings, "max_retries should be > 0, defaulting to 3")
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.PageCrawlDelay < 0 {
		warnings = append(warnings, "page_crawl_delay cannot be negative, setting to 0")
		c.PageCrawlDelay = 0
	} else if c.PageCrawlDelay == 0 {
		c.PageCrawlDelay = 2 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.BatchDelay <= 0 {
		c.BatchDelay = 30 * time.Second
	}

	if c.SitemapTimeout <= 0 {
		c.SitemapTimeout = 15 * time.Second
	}
	if c.ExistenceTimeout <= 0 {
		c.ExistenceTimeout = 10 * time.Second
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = 60 * time.Second
	}

	if c.WaitForSelector == "" {
		c.WaitForSelector = defaultWaitForSelector
	}
	if len(c.RemoveSelectors) == 0 {
		c.RemoveSelectors = append([]string(nil), DefaultRemoveSelectors...)
	}

	// HTTP client settings
	if c.HTTPClientSettings.Timeout <= 0 {
		// Overall client timeout must cover the slowest call (extraction)
		c.HTTPClientSettings.Timeout = c.ExtractTimeout + 15*time.Second
	}
	if c.HTTPClientSettings.MaxIdleConns <= 0 {
		c.HTTPClientSettings.MaxIdleConns = 20
	}
	if c.HTTPClientSettings.MaxIdleConnsPerHost <= 0 {
		c.HTTPClientSettings.MaxIdleConnsPerHost = 4
	}
	if c.HTTPClientSettings.IdleConnTimeout <= 0 {
		c.HTTPClientSettings.IdleConnTimeout = 90 * time.Second
	}
	if c.HTTPClientSettings.TLSHandshakeTimeout <= 0 {
		c.HTTPClientSettings.TLSHandshakeTimeout = 10 * time.Second
	}
	if c.HTTPClientSettings.DialerTimeout <= 0 {
		c.HTTPClientSettings.DialerTimeout = 15 * time.Second
	}
	if c.HTTPClientSettings.DialerKeepAlive <= 0 {
		c.HTTPClientSettings.DialerKeepAlive = 30 * time.Second
	}

	return warnings, nil
}

// Default returns a Config for the stock scrum.org harvest, matching the
// constants the program shipped with before config files existed.
func Default() *Config {
	return &Config{
		SitemapBaseURL: "https://www.scrum.org/sitemap.xml",
		ExtractorHost:  "http://localhost:11235",
	}
}
