// Package main provides the entry point for the linkhound CLI.
//
// Linkhound crawls a single website, follows internal links, and reports
// broken ones: pages answering 4xx/5xx and pages that cannot be reached
// at all.
//
// Usage:
//
//	linkhound crawl https://docs.example.com
//	linkhound crawl -x /archive/ -p 500 https://docs.example.com
//
// See --help for all available options.
package main

// main is the entry point for linkhound.
func main() {
	Execute()
}
