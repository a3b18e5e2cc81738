// Package config loads, normalizes, and validates creatorscope configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, applies a working-directory .env file, and
// honours environment fallbacks such as APIFY_API_TOKEN, OPENAI_API_KEY and
// PORT. The Config type centralizes every knob the CLI and dashboard need so
// the data directory, scraping limits and oracle credentials are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
