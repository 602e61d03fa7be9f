// Package config loads, normalizes, and validates autoposter configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AUTOPOSTER_BASE_URL and AUTOPOSTER_TOKEN. The Config type centralizes every
// knob the wizard and CLI need, so the generation endpoint, credentials, and
// data directories are discovered in one pass.
//
// Per-feature sections that are expected to grow ([notifications], [publish])
// carry an explicit version field. Load rejects versions it does not know
// instead of silently ignoring unfamiliar keys.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
