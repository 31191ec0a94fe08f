// Package config defines linkhound's runtime configuration: CLI defaults,
// environment fallbacks for scheduler-style invocation, and the optional
// .linkhound YAML file with per-site crawl settings.
package config
