package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkhound/linkhound/internal/config"
	"github.com/linkhound/linkhound/internal/crawler"
	"github.com/linkhound/linkhound/internal/database"
	"github.com/linkhound/linkhound/internal/log"
	"github.com/linkhound/linkhound/internal/model"
	"github.com/linkhound/linkhound/internal/report"
	"github.com/linkhound/linkhound/internal/sink"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [start-url]",
		Short: "Crawl a website and report broken links",
		Long: `Crawl starts from the given URL, follows every internal link, and
records pages that answer 4xx/5xx or cannot be reached at all.

The crawl never leaves the start URL's host. External links, excluded
patterns, and binary files are skipped. The session stops when every
reachable page has been checked, the page budget is spent, or the
deadline expires; a deadline produces a partial report, not an error.

The start URL may also come from the START_URL environment variable,
which suits scheduled runs where flags are inconvenient. EXCLUDE_PATTERNS
(a JSON array), MAX_PAGES, and S3_BUCKET work the same way.

Examples:
  # Crawl a site and write reports to ./reports
  linkhound crawl https://docs.example.com

  # Skip archived content and raise the page budget
  linkhound crawl -x /archive/ -x "?print=" -p 500 https://docs.example.com

  # Upload report artifacts to S3 instead of the local directory
  linkhound crawl -b my-report-bucket https://docs.example.com

  # Print the JSON report to stdout
  linkhound crawl -j https://docs.example.com

  # Bound the whole crawl to two minutes
  linkhound crawl --deadline 2m https://docs.example.com

Configuration file (.linkhound) example:
  sites:
    docs.example.com:
      excludePatterns:
        - /archive/
      headers:
        Authorization: "Bearer token"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringSliceP("exclude", "x", nil,
		"URL substring pattern to exclude (repeatable)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of concurrent crawl workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Duration("deadline", 0,
		"Overall crawl deadline (0 = no deadline); expiry yields a partial report")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Sink flags
	cmd.Flags().StringP("s3-bucket", "b", "",
		"S3 bucket for report artifacts (default: write to --output-dir)")
	cmd.Flags().StringP("output-dir", "d", config.DefaultOutputDir,
		"Local directory for report artifacts when no S3 bucket is set")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkhound in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Print the JSON report to stdout (mutually exclusive with --markdown and --csv)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Print the Markdown report to stdout (mutually exclusive with --json and --csv)")
	cmd.Flags().Bool("csv", false,
		"Print the broken link table as CSV (mutually exclusive with --json and --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write the rendered report to the specified file path")
	cmd.Flags().Bool("no-save", false,
		"Skip saving the session to the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Configuration errors still produce a report artifact: a scheduled
	// run must leave evidence of why it did nothing.
	if err := cfg.Validate(); err != nil {
		emitConfigErrorReport(cmd.Context(), cfg, err, logger)
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags, environment
// fallbacks, and the optional site config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	if len(args) > 0 {
		cfg.StartURL = args[0]
	}

	cfg.ExcludePatterns, err = cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Deadline, err = cmd.Flags().GetDuration("deadline")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.S3Bucket, err = cmd.Flags().GetString("s3-bucket")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output-dir")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.JSONStdout, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownStdout, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.CSVStdout, err = cmd.Flags().GetBool("csv")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave

	// Environment fallbacks for scheduler-style invocation
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	// Merge site-specific settings from the config file. Flag values win
	// over file values.
	if err := applySiteConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applySiteConfig loads the .linkhound file (if any) and merges the
// matching site's settings into cfg.
// If the user explicitly specified a config file path, a missing file is
// an error. An absent implicit config file is not.
func applySiteConfig(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if explicit {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	cf, err := config.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	host := ""
	if u, err := url.Parse(cfg.StartURL); err == nil {
		host = u.Hostname()
	}
	site := cf.SiteConfigFor(host)

	if len(cfg.ExcludePatterns) == 0 && len(site.ExcludePatterns) > 0 {
		cfg.ExcludePatterns = site.ExcludePatterns
	}
	if cfg.MaxPages == config.DefaultMaxPages && site.MaxPages > 0 {
		cfg.MaxPages = site.MaxPages
	}
	if cfg.UserAgent == config.DefaultUserAgent && site.UserAgent != "" {
		cfg.UserAgent = site.UserAgent
	}
	if len(site.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			cfg.Headers[k] = v
		}
	}
	if site.Cookie != "" {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string)
		}
		cfg.Headers["Cookie"] = site.Cookie
	}

	return nil
}

// runCrawl executes the crawl session and handles report output.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	session := model.CrawlSession{
		StartURL:        cfg.StartURL,
		ExcludePatterns: cfg.ExcludePatterns,
		MaxPages:        cfg.MaxPages,
		Concurrency:     cfg.Concurrency,
		StartedAt:       time.Now().UTC(),
	}

	logger.Info("starting crawl",
		"startURL", cfg.StartURL,
		"maxPages", cfg.MaxPages,
		"concurrency", cfg.Concurrency,
		"excludePatterns", cfg.ExcludePatterns,
	)

	filter, err := crawler.NewFilter(cfg.StartURL, cfg.ExcludePatterns)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	fetcherOpts := []crawler.FetcherOption{
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(cfg.Headers) > 0 {
		fetcherOpts = append(fetcherOpts, crawler.WithHeaders(cfg.Headers))
	}
	fetcher := crawler.NewFetcher(cfg.Timeout, cfg.MaxRedirects, fetcherOpts...)

	coordinator := crawler.NewCoordinator(fetcher, filter,
		crawler.WithConcurrency(cfg.Concurrency),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithLogger(logger),
	)

	crawlCtx := ctx
	if cfg.Deadline > 0 {
		var cancel context.CancelFunc
		crawlCtx, cancel = context.WithTimeout(ctx, cfg.Deadline)
		defer cancel()
	}

	startTime := time.Now()
	results, pagesVisited := coordinator.Run(crawlCtx, cfg.StartURL)
	session.FinishedAt = time.Now().UTC()

	rpt := report.Build(session, results, pagesVisited)

	fmt.Printf("Crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	if err := outputReport(cfg, rpt); err != nil {
		logger.Error("report output failed", "error", err)
	}

	// An interrupt or deadline stops the crawl, not the report: partial
	// results still get persisted and published.
	finishCtx := context.WithoutCancel(ctx)

	// Persist session history for later comparison. Failure here is
	// logged, not fatal: the report artifacts are the deliverable.
	if cfg.SaveToDB {
		saveSessionReport(finishCtx, cfg, rpt, logger)
	}

	// Publish artifacts to the sink. Unlike broken pages, a sink failure
	// means the run itself failed.
	dst, err := buildSink(finishCtx, cfg)
	if err != nil {
		return err
	}
	if err := sink.Publish(finishCtx, dst, rpt); err != nil {
		return err
	}

	logger.Info("report published",
		"brokenLinks", rpt.BrokenLinksFound,
		"pagesVisited", rpt.PagesVisited,
	)
	return nil
}

// buildSink selects the artifact destination: S3 when a bucket is
// configured, the local output directory otherwise.
func buildSink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	if cfg.S3Bucket != "" {
		s3sink, err := sink.NewS3Sink(ctx, cfg.S3Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to set up S3 sink: %w", err)
		}
		return s3sink, nil
	}
	return sink.NewFSSink(cfg.OutputDir), nil
}

// emitConfigErrorReport publishes a zero-page report describing a fatal
// configuration error. Best effort: when the sink itself is part of the
// problem, only the log line remains.
func emitConfigErrorReport(ctx context.Context, cfg *config.Config, fatal error, logger *slog.Logger) {
	session := model.CrawlSession{
		StartURL:        cfg.StartURL,
		ExcludePatterns: cfg.ExcludePatterns,
		MaxPages:        cfg.MaxPages,
		Concurrency:     cfg.Concurrency,
		StartedAt:       time.Now().UTC(),
	}
	rpt := report.BuildError(session, fatal)

	dst, err := buildSink(ctx, cfg)
	if err != nil {
		logger.Error("cannot publish error report", "error", err)
		return
	}
	if err := sink.Publish(ctx, dst, rpt); err != nil {
		logger.Error("failed to publish error report", "error", err)
	}
}

// outputReport writes the report to stdout in the requested format.
// With --output, the same rendering additionally goes to that file.
func outputReport(cfg *config.Config, rpt *model.Report) error {
	writers := []report.Writer{newReportWriter(cfg, os.Stdout)}

	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writers = append(writers, newReportWriter(cfg, f))
	}

	_, err := report.NewMultiWriter(writers...).Write(rpt)
	return err
}

// newReportWriter selects the report format for one destination.
// Precedence when several format flags are set: JSON, Markdown, CSV,
// then the human-readable summary table.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONStdout:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownStdout:
		return report.NewMarkdownWriter(output)
	case cfg.CSVStdout:
		return report.NewCSVWriter(output)
	default:
		return report.NewConsoleWriter(output)
	}
}

// saveSessionReport saves the finished session to the history database.
// When the site has a previous session, the broken-link delta against it
// is logged before this run becomes the latest record.
func saveSessionReport(ctx context.Context, cfg *config.Config, rpt *model.Report, logger *slog.Logger) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Error("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	if prev, err := db.GetLatestReport(ctx, normalizeSite(cfg.StartURL)); err == nil && prev != nil {
		logger.Info("previous session",
			"crawlDate", prev.CrawlDate,
			"brokenLinks", prev.BrokenLinksFound,
			"delta", formatDelta(rpt.BrokenLinksFound-prev.BrokenLinksFound),
		)
	}

	if err := db.SaveReport(ctx, rpt); err != nil {
		logger.Error("failed to save session", "error", err)
		return
	}
	logger.Info("session saved", "dir", cfg.DBDir)
}
