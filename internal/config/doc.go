// Package config loads, normalizes, and validates Watchtower configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// WATCHTOWER_BASE_URL and WATCHTOWER_API_TOKEN. The Config type centralizes the
// data source, palette, cache, logging, and watch settings so the CLI and the
// aggregation pipeline discover them in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized URLs and paths, canonical log formats, and clear validation errors.
package config
