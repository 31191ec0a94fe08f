// Package main provides the entry point for the linkhound CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkhound.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkhound",
		Short: "Broken link checker for websites",
		Long: `Linkhound crawls a single website, follows its internal links, and
reports the broken ones: pages answering 4xx/5xx and pages that cannot
be reached at all.

The crawl stays on the start URL's host, skips excluded URL patterns,
and stops after a configurable page budget. Reports are written as HTML
and JSON to a local directory or an S3 bucket.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
