// Package config loads, normalizes, and validates filewatcher configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, applies command-line overrides, and honours
// environment fallbacks such as GOOGLE_APPLICATION_CREDENTIALS and LOGLEVEL.
// The Config type centralizes every knob the daemon and CLI need so source,
// archive, and state directories plus store credentials are discovered in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log levels, and clear validation errors.
package config
