// Package config loads, validates, and normalizes postergeist configuration
// from TOML files with sensible defaults.
package config
