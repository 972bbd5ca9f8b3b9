// Package config loads, normalizes, and validates tvshelf configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts) and reads TOML files. The Config type centralizes every knob the
// CLI and the relocation engine need; Preferences is the narrow naming and
// destination view handed to the engine, and Watchers publishes per-field
// PreferenceChange events when those preferences are edited at runtime.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
