package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full harvester configuration
type Config struct {
	SitemapBaseURL string `yaml:"sitemap_base_url"` // Fixed sitemap address; pages selected via ?page=N
	ExtractorHost  string `yaml:"extractor_host"`   // Base URL of the content-extraction service
	OutputDir      string `yaml:"output_dir"`
	ErrorLogFile   string `yaml:"error_log_file"`
	UserAgent      string `yaml:"user_agent,omitempty"`

	StartPage       int `yaml:"start_page,omitempty"`
	MaxSitemapPages int `yaml:"max_sitemap_pages,omitempty"`
	PagesPerSitemap int `yaml:"pages_per_sitemap,omitempty"` // Cap on URLs processed per sitemap page

	MaxRetries     int           `yaml:"max_retries,omitempty"`
	RetryDelay     time.Duration `yaml:"retry_delay,omitempty"`
	PageCrawlDelay time.Duration `yaml:"page_crawl_delay,omitempty"` // Delay between consecutive page harvests
	BatchSize      int           `yaml:"batch_size,omitempty"`
	BatchDelay     time.Duration `yaml:"batch_delay,omitempty"` // Pause between batches to let the service recover

	SitemapTimeout   time.Duration `yaml:"sitemap_timeout,omitempty"`
	ExistenceTimeout time.Duration `yaml:"existence_timeout,omitempty"`
	ExtractTimeout   time.Duration `yaml:"extract_timeout,omitempty"`

	WaitForSelector string   `yaml:"wait_for_selector,omitempty"` // Passed to the fit strategy
	RemoveSelectors []string `yaml:"remove_selectors,omitempty"`  // Boilerplate denylist for the fullpage strategy

	HTTPClientSettings HTTPClientConfig `yaml:"http_client_settings,omitempty"`
}

// HTTPClientConfig holds settings for the shared HTTP client
type HTTPClientConfig struct {
	Timeout             time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"`
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}
