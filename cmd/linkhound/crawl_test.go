package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/linkhound/linkhound/internal/config"
	"github.com/linkhound/linkhound/internal/log"
	"github.com/linkhound/linkhound/internal/model"
	"github.com/linkhound/linkhound/internal/report"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [start-url]" {
			t.Errorf("expected use 'crawl [start-url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{
			"exclude", "max-pages", "concurrency", "timeout", "deadline",
			"user-agent", "s3-bucket", "output-dir", "config", "json",
			"markdown", "csv", "output", "no-save",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("exclude flag is repeatable", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("exclude")
		if flag == nil {
			t.Fatal("expected exclude flag")
		}
		if flag.Shorthand != "x" {
			t.Errorf("expected shorthand 'x', got %q", flag.Shorthand)
		}
	})
}

// parseCrawlConfig builds a Config from the given command line.
func parseCrawlConfig(t *testing.T, args []string) (*config.Config, error) {
	t.Helper()

	cmd := NewCrawlCmd()
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return buildConfig(cmd, cmd.Flags().Args())
}

// TestBuildConfig tests flag and environment handling.
func TestBuildConfig(t *testing.T) {
	// Clear scheduler environment variables so ambient values cannot
	// leak into flag parsing tests.
	t.Setenv(config.EnvStartURL, "")
	t.Setenv(config.EnvExcludePatterns, "")
	t.Setenv(config.EnvMaxPages, "")
	t.Setenv(config.EnvS3Bucket, "")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := parseCrawlConfig(t, []string{"https://example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.StartURL != "https://example.com/" {
			t.Errorf("StartURL = %q", cfg.StartURL)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("MaxPages = %d, want default", cfg.MaxPages)
		}
		if cfg.Concurrency != config.DefaultConcurrency {
			t.Errorf("Concurrency = %d, want default", cfg.Concurrency)
		}
		if !cfg.SaveToDB {
			t.Error("SaveToDB should default to true")
		}
		if cfg.JSONStdout {
			t.Error("JSONStdout should default to false")
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		cfg, err := parseCrawlConfig(t, []string{
			"-x", "/archive/", "-x", "?print=",
			"-p", "500",
			"-n", "4",
			"-t", "30s",
			"--deadline", "2m",
			"-b", "report-bucket",
			"--no-save",
			"-m",
			"https://example.com/",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.ExcludePatterns) != 2 {
			t.Errorf("ExcludePatterns = %v", cfg.ExcludePatterns)
		}
		if cfg.MaxPages != 500 {
			t.Errorf("MaxPages = %d, want 500", cfg.MaxPages)
		}
		if cfg.Concurrency != 4 {
			t.Errorf("Concurrency = %d, want 4", cfg.Concurrency)
		}
		if cfg.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
		}
		if cfg.Deadline != 2*time.Minute {
			t.Errorf("Deadline = %v, want 2m", cfg.Deadline)
		}
		if cfg.S3Bucket != "report-bucket" {
			t.Errorf("S3Bucket = %q", cfg.S3Bucket)
		}
		if cfg.SaveToDB {
			t.Error("SaveToDB should be false with --no-save")
		}
		if !cfg.MarkdownStdout {
			t.Error("MarkdownStdout should be true with -m")
		}
	})

	t.Run("environment supplies missing start URL", func(t *testing.T) {
		t.Setenv(config.EnvStartURL, "https://env.example.com/")

		cfg, err := parseCrawlConfig(t, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.StartURL != "https://env.example.com/" {
			t.Errorf("StartURL = %q, want env value", cfg.StartURL)
		}
	})

	t.Run("argument wins over environment", func(t *testing.T) {
		t.Setenv(config.EnvStartURL, "https://env.example.com/")

		cfg, err := parseCrawlConfig(t, []string{"https://arg.example.com/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.StartURL != "https://arg.example.com/" {
			t.Errorf("StartURL = %q, argument should win", cfg.StartURL)
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		_, err := parseCrawlConfig(t, []string{
			"-c", filepath.Join(t.TempDir(), "absent"),
			"https://example.com/",
		})
		if err == nil {
			t.Fatal("expected error for missing explicit config file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("error %q should mention the missing file", err)
		}
	})
}

// TestApplySiteConfig tests merging site config file settings.
func TestApplySiteConfig(t *testing.T) {
	t.Parallel()

	writeConfigFile := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), ".linkhound")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("site settings fill unset values", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `sites:
  docs.example.com:
    excludePatterns:
      - /archive/
    maxPages: 500
    userAgent: "team-checker/1.0"
    cookie: "session=abc"
    headers:
      Authorization: "Bearer tok"
`)

		cfg := config.NewConfig()
		cfg.StartURL = "https://docs.example.com/"
		cfg.ConfigFilePath = path

		if err := applySiteConfig(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.ExcludePatterns) != 1 || cfg.ExcludePatterns[0] != "/archive/" {
			t.Errorf("ExcludePatterns = %v", cfg.ExcludePatterns)
		}
		if cfg.MaxPages != 500 {
			t.Errorf("MaxPages = %d, want 500", cfg.MaxPages)
		}
		if cfg.UserAgent != "team-checker/1.0" {
			t.Errorf("UserAgent = %q", cfg.UserAgent)
		}
		if cfg.Headers["Authorization"] != "Bearer tok" {
			t.Errorf("Headers = %v, want Authorization merged", cfg.Headers)
		}
		if cfg.Headers["Cookie"] != "session=abc" {
			t.Errorf("Headers = %v, want cookie mapped to Cookie header", cfg.Headers)
		}
	})

	t.Run("flag values win over file", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `sites:
  docs.example.com:
    excludePatterns:
      - /archive/
    maxPages: 500
`)

		cfg := config.NewConfig()
		cfg.StartURL = "https://docs.example.com/"
		cfg.ConfigFilePath = path
		cfg.ExcludePatterns = []string{"/flag/"}
		cfg.MaxPages = 50

		if err := applySiteConfig(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.ExcludePatterns) != 1 || cfg.ExcludePatterns[0] != "/flag/" {
			t.Errorf("ExcludePatterns = %v, flag should win", cfg.ExcludePatterns)
		}
		if cfg.MaxPages != 50 {
			t.Errorf("MaxPages = %d, flag should win", cfg.MaxPages)
		}
	})

	t.Run("other hosts get no site settings", func(t *testing.T) {
		t.Parallel()

		path := writeConfigFile(t, `sites:
  docs.example.com:
    maxPages: 500
`)

		cfg := config.NewConfig()
		cfg.StartURL = "https://other.example.com/"
		cfg.ConfigFilePath = path

		if err := applySiteConfig(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.MaxPages != config.DefaultMaxPages {
			t.Errorf("MaxPages = %d, want default", cfg.MaxPages)
		}
	})
}

// TestGetVerboseFlag tests verbose flag resolution through the root command.
func TestGetVerboseFlag(t *testing.T) {
	t.Parallel()

	t.Run("default is false", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		crawl, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatal(err)
		}
		if getVerboseFlag(crawl) {
			t.Error("verbose should default to false")
		}
	})

	t.Run("persistent flag is visible to subcommand", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		if err := root.PersistentFlags().Set("verbose", "true"); err != nil {
			t.Fatal(err)
		}
		crawl, _, err := root.Find([]string{"crawl"})
		if err != nil {
			t.Fatal(err)
		}
		if !getVerboseFlag(crawl) {
			t.Error("verbose set on root should be visible to subcommand")
		}
	})
}

// TestNewReportWriter tests report format selection.
func TestNewReportWriter(t *testing.T) {
	t.Parallel()

	t.Run("default is console", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, ok := newReportWriter(config.NewConfig(), &buf).(*report.ConsoleWriter); !ok {
			t.Error("expected ConsoleWriter by default")
		}
	})

	t.Run("json flag selects json", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONStdout = true
		var buf bytes.Buffer
		if _, ok := newReportWriter(cfg, &buf).(*report.JSONWriter); !ok {
			t.Error("expected JSONWriter")
		}
	})

	t.Run("markdown flag selects markdown", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.MarkdownStdout = true
		var buf bytes.Buffer
		if _, ok := newReportWriter(cfg, &buf).(*report.MarkdownWriter); !ok {
			t.Error("expected MarkdownWriter")
		}
	})

	t.Run("csv flag selects csv", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.CSVStdout = true
		var buf bytes.Buffer
		if _, ok := newReportWriter(cfg, &buf).(*report.CSVWriter); !ok {
			t.Error("expected CSVWriter")
		}
	})

	t.Run("json wins over markdown and csv", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.JSONStdout = true
		cfg.MarkdownStdout = true
		cfg.CSVStdout = true
		var buf bytes.Buffer
		if _, ok := newReportWriter(cfg, &buf).(*report.JSONWriter); !ok {
			t.Error("expected JSONWriter to take precedence")
		}
	})
}

// testCrawlReport builds a small finished report for output tests.
func testCrawlReport(broken int) *model.Report {
	records := make([]model.BrokenLinkRecord, 0, broken)
	for i := 0; i < broken; i++ {
		records = append(records, model.BrokenLinkRecord{
			URL:       fmt.Sprintf("https://example.com/missing-%d", i),
			Status:    model.StatusClientError,
			Code:      404,
			Referrers: []string{"https://example.com/"},
		})
	}
	return &model.Report{
		StartURL:  "https://example.com/",
		CrawlDate: "2026-03-15 09:30:00",
		Session: model.CrawlSession{
			StartURL:  "https://example.com/",
			MaxPages:  100,
			StartedAt: time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
		},
		PagesVisited:     10,
		BrokenLinksFound: len(records),
		BrokenLinks:      records,
	}
}

// TestOutputReportFileCopy tests that --output writes the rendered
// report to the file in addition to stdout.
func TestOutputReportFileCopy(t *testing.T) {
	cfg := config.NewConfig()
	cfg.CSVStdout = true
	cfg.ReportFile = filepath.Join(t.TempDir(), "out", "report.csv")

	if err := outputReport(cfg, testCrawlReport(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(cfg.ReportFile)
	if err != nil {
		t.Fatalf("failed to read report copy: %v", err)
	}
	if !strings.Contains(string(content), "URL,Status,Code,Reason,Referrers") {
		t.Errorf("report copy missing CSV header: %q", content)
	}
	if !strings.Contains(string(content), "https://example.com/missing-0") {
		t.Errorf("report copy missing broken link row: %q", content)
	}
}

// TestSaveSessionReport tests session persistence and the logged delta
// against the previous session.
func TestSaveSessionReport(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.StartURL = "https://example.com/"
	cfg.DBDir = t.TempDir()

	ctx := context.Background()

	var first bytes.Buffer
	saveSessionReport(ctx, cfg, testCrawlReport(5), log.NewLogger(&first, true))
	if strings.Contains(first.String(), "previous session") {
		t.Error("first session has no previous session to report")
	}
	if !strings.Contains(first.String(), "session saved") {
		t.Errorf("expected save confirmation, got %q", first.String())
	}

	var second bytes.Buffer
	saveSessionReport(ctx, cfg, testCrawlReport(2), log.NewLogger(&second, true))
	if !strings.Contains(second.String(), "previous session") {
		t.Errorf("expected previous session log line, got %q", second.String())
	}
	if !strings.Contains(second.String(), "delta=-3") {
		t.Errorf("expected broken-link delta -3, got %q", second.String())
	}
}
