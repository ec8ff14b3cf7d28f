// Package config loads, normalizes, and validates remuxd configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI needs; Settings() projects it onto the muxing policy the
// synthesizer and scheduler consume.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, normalized language lists, and clear validation errors.
package config
