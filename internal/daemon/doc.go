// Package daemon ties the harness together for long-running operation. It
// enforces single-instance execution with a file lock under the log
// directory, runs startup checks, and supervises the HTTP server and run
// history store as one unit with a shared lifecycle.
package daemon
