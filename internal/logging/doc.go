// Package logging builds the slog loggers used across catscan.
//
// It offers a console handler that renders compact
// "TIMESTAMP LEVEL component: message k=v" lines for interactive use and a
// JSON handler for machine consumption, selected by config. Helper
// constructors (String, Int, Error, ...) keep call sites terse, and
// NewComponentLogger standardizes the component attribute the console
// handler promotes into the line prefix.
package logging
