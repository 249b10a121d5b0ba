// Package config loads, normalizes, and validates packhub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the PACKHUB_DECODE_MODE
// environment override. The Config type centralizes the knobs the CLI needs:
// where decoded packs are cached, how strictly metadata is decoded, and how
// logs are shaped.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
