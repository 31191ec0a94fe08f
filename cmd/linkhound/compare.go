package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkhound/linkhound/internal/config"
	"github.com/linkhound/linkhound/internal/database"
	"github.com/linkhound/linkhound/internal/model"
)

// Trend direction values for site health between two sessions.
const (
	trendWorsened  = "worsened"
	trendImproved  = "improved"
	trendUnchanged = "unchanged"
)

// NewCompareCmd creates the compare command.
// This command compares crawl results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Compare crawl results with historical data",
		Long: `Compare displays differences between the current and previous crawl sessions.

This command retrieves session history from the database and shows:
- Broken links that appeared since the last crawl
- Broken links that have been fixed
- Links that remain broken

The comparison requires at least two stored sessions for the specified
site. Use 'linkhound crawl' to run crawls and store results.

The site argument is a bare host, e.g. docs.example.com.

Examples:
  # Compare the latest two sessions for a site
  linkhound compare docs.example.com

  # List session history for a site
  linkhound compare --list docs.example.com

  # Compare with a specific historical session by ID
  linkhound compare --with-session-id 5 docs.example.com

  # Compare with the first session since a date
  linkhound compare --since "2026-01-01" docs.example.com

  # Output the comparison in JSON format
  linkhound compare --json docs.example.com

  # List all sites with stored history
  linkhound compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().BoolP("list", "l", false,
		"List session history for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all sites with stored history")

	// Comparison target flags
	cmd.Flags().Int64P("with-session-id", "i", 0,
		"Compare with a specific session by ID (use --list to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first session after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database so a bad invocation
	// never takes the writer lock.
	var site string
	if !listSites {
		if len(args) == 0 {
			return errors.New("site is required (use --list-sites to see available sites)")
		}
		site = normalizeSite(args[0])
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if listSites {
		return listTrackedSites(ctx, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listSessionHistory(ctx, db, site)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	withSessionID, err := cmd.Flags().GetInt64("with-session-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	return runComparison(ctx, db, site, withSessionID, sinceDate, jsonOutput)
}

// normalizeSite reduces the argument to a bare lowercase host. Accepts
// either a host or a full URL for convenience.
func normalizeSite(arg string) string {
	if u, err := url.Parse(arg); err == nil && u.Host != "" {
		return strings.ToLower(u.Hostname())
	}
	host := arg
	for _, prefix := range []string{"http://", "https://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	host, _, _ = strings.Cut(host, "/")
	return strings.ToLower(host)
}

// listTrackedSites lists all sites with session records in the database.
func listTrackedSites(ctx context.Context, db *database.SessionDB) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Println("No crawled sites found in the database.")
		fmt.Println("\nUse 'linkhound crawl <url>' to crawl a site.")
		return nil
	}

	fmt.Printf("Crawled sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Printf("  • %s\n", site)
	}
	fmt.Println("\nUse 'linkhound compare --list <site>' to see session history for a site.")

	return nil
}

// listSessionHistory lists all session records for a specific site.
func listSessionHistory(ctx context.Context, db *database.SessionDB, site string) error {
	sessions, err := db.GetHistoryWithMetadata(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get session history: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Printf("No session history found for %s\n", site)
		fmt.Println("\nUse 'linkhound crawl' to crawl this site.")
		return nil
	}

	fmt.Printf("Session history for %s (%d sessions):\n\n", site, len(sessions))
	fmt.Printf("  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Pages", "Broken Links")
	fmt.Println("  " + strings.Repeat("-", 52))

	for _, meta := range sessions {
		fmt.Printf("  %-6d  %-20s  %-8d  %d\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			meta.PagesVisited,
			meta.BrokenCount,
		)
	}

	fmt.Println("\nUse 'linkhound compare <site>' to compare the latest two sessions.")
	fmt.Println("Use 'linkhound compare --with-session-id <id> <site>' to compare with a specific session.")

	return nil
}

// runComparison performs the actual comparison between session reports.
func runComparison(ctx context.Context, db *database.SessionDB, site string, withSessionID int64, sinceDate string, jsonOutput bool) error {
	reports, err := db.GetHistory(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get session history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no session history found for %s", site)
	}
	if len(reports) < 2 && withSessionID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 sessions are required for comparison (found %d)", len(reports))
	}

	// The most recent session is always the current side of the diff.
	current := reports[0]
	var previous *model.Report

	switch {
	case withSessionID > 0:
		previous, err = db.GetReportByID(ctx, withSessionID)
		if err != nil {
			return fmt.Errorf("failed to get session with ID %d: %w", withSessionID, err)
		}
		if previous == nil {
			return fmt.Errorf("session with ID %d not found", withSessionID)
		}
		if normalizeSite(previous.StartURL) != site {
			return fmt.Errorf("session ID %d belongs to %s, not %s", withSessionID, normalizeSite(previous.StartURL), site)
		}
	case sinceDate != "":
		cutoff, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// History is newest first; walk backward to find the oldest
		// session at or after the cutoff.
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if !r.Session.StartedAt.Before(cutoff) {
				previous = r
				break
			}
		}
		if previous == nil {
			return fmt.Errorf("no sessions found since %s", sinceDate)
		}
		if previous == current {
			return fmt.Errorf("only one session found since %s; at least 2 sessions are required for comparison", sinceDate)
		}
	default:
		previous = reports[1]
	}

	comparison := compareReports(site, previous, current)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two crawl sessions.
type ComparisonResult struct {
	// Site is the compared host.
	Site string `json:"site"`

	// PreviousSession contains metadata about the previous session.
	PreviousSession SessionSummary `json:"previous_session"`

	// CurrentSession contains metadata about the current session.
	CurrentSession SessionSummary `json:"current_session"`

	// NewBroken contains links broken now that were not broken before.
	NewBroken []model.BrokenLinkRecord `json:"new_broken,omitempty"`

	// Fixed contains links broken before that are no longer broken.
	Fixed []model.BrokenLinkRecord `json:"fixed,omitempty"`

	// StillBrokenCount is the number of links broken in both sessions.
	StillBrokenCount int `json:"still_broken_count"`

	// Trend describes the overall change in site health.
	Trend string `json:"trend"`
}

// SessionSummary contains metadata about one session for comparison display.
type SessionSummary struct {
	// CrawlDate is when the session ran.
	CrawlDate string `json:"crawl_date"`

	// PagesVisited is the number of fetch attempts.
	PagesVisited int `json:"pages_visited"`

	// BrokenLinks is the number of distinct broken URLs.
	BrokenLinks int `json:"broken_links"`
}

// compareReports diffs the broken link sets of two session reports.
func compareReports(site string, previous, current *model.Report) *ComparisonResult {
	result := &ComparisonResult{
		Site: site,
		PreviousSession: SessionSummary{
			CrawlDate:    previous.CrawlDate,
			PagesVisited: previous.PagesVisited,
			BrokenLinks:  previous.BrokenLinksFound,
		},
		CurrentSession: SessionSummary{
			CrawlDate:    current.CrawlDate,
			PagesVisited: current.PagesVisited,
			BrokenLinks:  current.BrokenLinksFound,
		},
	}

	previousBroken := make(map[string]model.BrokenLinkRecord, len(previous.BrokenLinks))
	for _, link := range previous.BrokenLinks {
		previousBroken[link.URL] = link
	}
	currentBroken := make(map[string]model.BrokenLinkRecord, len(current.BrokenLinks))
	for _, link := range current.BrokenLinks {
		currentBroken[link.URL] = link
	}

	// BrokenLinks is sorted by URL in every stored report, so iterating
	// the slices keeps the diff output deterministic.
	for _, link := range current.BrokenLinks {
		if _, exists := previousBroken[link.URL]; !exists {
			result.NewBroken = append(result.NewBroken, link)
		} else {
			result.StillBrokenCount++
		}
	}
	for _, link := range previous.BrokenLinks {
		if _, exists := currentBroken[link.URL]; !exists {
			result.Fixed = append(result.Fixed, link)
		}
	}

	switch {
	case len(result.NewBroken) > len(result.Fixed):
		result.Trend = trendWorsened
	case len(result.Fixed) > len(result.NewBroken):
		result.Trend = trendImproved
	default:
		result.Trend = trendUnchanged
	}

	return result
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Session Comparison: %s\n", result.Site)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nTrend: %s\n", formatTrend(result.Trend))

	fmt.Printf("\nPrevious session: %s\n", result.PreviousSession.CrawlDate)
	fmt.Printf("Current session:  %s\n", result.CurrentSession.CrawlDate)

	fmt.Println("\nSummary:")
	fmt.Printf("  %-14s  %-10s  %-10s  %-10s\n", "Metric", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 50))
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Pages visited",
		result.PreviousSession.PagesVisited, result.CurrentSession.PagesVisited,
		formatDelta(result.CurrentSession.PagesVisited-result.PreviousSession.PagesVisited))
	fmt.Printf("  %-14s  %-10d  %-10d  %-10s\n", "Broken links",
		result.PreviousSession.BrokenLinks, result.CurrentSession.BrokenLinks,
		formatDelta(result.CurrentSession.BrokenLinks-result.PreviousSession.BrokenLinks))

	if len(result.NewBroken) > 0 {
		fmt.Printf("\nNew Broken Links (%d):\n", len(result.NewBroken))
		for _, link := range result.NewBroken {
			fmt.Printf("  [+] %s (%s)\n", link.URL, formatLinkDetail(link))
			for _, ref := range link.Referrers {
				fmt.Printf("      found on: %s\n", ref)
			}
		}
	}

	if len(result.Fixed) > 0 {
		fmt.Printf("\nFixed Links (%d):\n", len(result.Fixed))
		for _, link := range result.Fixed {
			fmt.Printf("  [-] %s\n", link.URL)
		}
	}

	if result.StillBrokenCount > 0 {
		fmt.Printf("\nStill broken: %d links\n", result.StillBrokenCount)
	}

	return nil
}

// formatLinkDetail describes why a link is broken, for display.
func formatLinkDetail(link model.BrokenLinkRecord) string {
	if link.Code != 0 {
		return "HTTP " + strconv.Itoa(link.Code)
	}
	if link.Reason != "" {
		return link.Reason
	}
	return link.Status.String()
}

// formatTrend formats the trend direction for display.
func formatTrend(trend string) string {
	switch trend {
	case trendImproved:
		return "IMPROVED (fewer broken links)"
	case trendWorsened:
		return "WORSENED (more broken links)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
