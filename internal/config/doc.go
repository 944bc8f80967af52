// Package config loads, normalizes, and validates Legenda's TOML
// configuration. Configuration is immutable after startup: Load returns a
// fully resolved Config that callers pass explicitly into each component.
package config
