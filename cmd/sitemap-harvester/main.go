package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sitemap-harvester/pkg/config"
	"sitemap-harvester/pkg/extract"
	"sitemap-harvester/pkg/fetch"
	"sitemap-harvester/pkg/harvest"
	"sitemap-harvester/pkg/sitemap"
)

const version = "1.0.2"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "harvest":
		runHarvest(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "version":
		fmt.Printf("sitemap-harvester %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `sitemap-harvester - Sitemap-driven web content harvester

Usage:
  sitemap-harvester <command> [options]

Commands:
  harvest     Walk the sitemap and harvest page content
  validate    Validate configuration file
  version     Show version info

Run 'sitemap-harvester <command> -h' for command-specific help.`)
}

// runHarvest handles the harvest subcommand
func runHarvest(args []string) {
	fs := flag.NewFlagSet("harvest", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to config file (optional, built-in defaults used if empty)")
	startPage := fs.Int("start-page", 0, "Starting sitemap page (overrides config)")
	maxPages := fs.Int("max-pages", 0, "Maximum sitemap page to process (overrides config)")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sitemap-harvester harvest [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  sitemap-harvester harvest -config config.yaml\n")
		fmt.Fprintf(os.Stderr, "  sitemap-harvester harvest -start-page 6 -max-pages 10\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel)
	cfg := loadAndValidateConfig(*configFile, log)

	if *startPage > 0 {
		cfg.StartPage = *startPage
	}
	if *maxPages > 0 {
		cfg.MaxSitemapPages = *maxPages
	}

	if err := executeHarvest(cfg, log); err != nil {
		log.Fatalf("Harvest failed: %v", err)
	}
}

// executeHarvest wires up the components and runs the driver loop.
func executeHarvest(cfg *config.Config, log *logrus.Logger) error {
	runID := uuid.New()
	log.WithField("run_id", runID).Infof("sitemap-harvester %s starting", version)

	httpClient := fetch.NewClient(cfg.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(httpClient, cfg.UserAgent, cfg.ExistenceTimeout, log)
	extractor := extract.NewClient(httpClient, cfg.ExtractorHost, cfg.WaitForSelector, cfg.RemoveSelectors, cfg.ExtractTimeout, log)
	reader := sitemap.NewReader(httpClient, cfg.SitemapBaseURL, cfg.UserAgent, cfg.SitemapTimeout, log)
	orch := harvest.NewOrchestrator(fetcher, extractor, cfg.MaxRetries, cfg.RetryDelay, log)

	writer := harvest.NewWriter(cfg.OutputDir, log)
	if err := writer.EnsureDir(); err != nil {
		return err
	}

	recorder, err := harvest.OpenRecorder(cfg.ErrorLogFile, runID, log)
	if err != nil {
		return err
	}
	defer recorder.Close()

	driver := harvest.NewDriver(cfg, reader, orch, writer, recorder, extractor, log)

	// --- Handle signals for graceful shutdown ---
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Warnf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()
	}()

	return driver.Run(ctx)
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: sitemap-harvester validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Configuration valid.")
	return 0
}

// setupLogger creates a configured logrus.Logger with the given log level.
func setupLogger(logLevelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
	}

	return log
}

// loadAndValidateConfig loads the config file (or the built-in defaults when
// no path is given), validates it, and logs warnings.
func loadAndValidateConfig(configFile string, log *logrus.Logger) *config.Config {
	var cfg *config.Config
	if configFile == "" {
		log.Info("No config file given, using built-in defaults")
		cfg = config.Default()
	} else {
		log.Infof("Loading configuration from %s", configFile)
		loaded, err := config.Load(configFile)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		cfg = loaded
	}

	warnings, err := cfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	return cfg
}
