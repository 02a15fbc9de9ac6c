// Package config loads, normalizes, and validates catscan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CATSCAN_CLASSIFIER. The Config type centralizes every knob the daemon and
// CLI need: the samples directory, classifier binary and model artifact,
// invocation timeout, stream pacing, and log output.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths, canonical log formats, and clear validation
// errors. There are no process-wide mutable singletons; callers pass the
// loaded Config to the components that need it.
package config
