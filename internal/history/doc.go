// Package history persists batch runs and per-image outcomes in SQLite.
//
// Each run gets a row with a uuid, start/finish timestamps, and rolling
// counters; run_results holds one row per image with the verdict, any
// swallowed failure reason, and the invocation duration. The database lives
// next to the daemon log and is treated as transient history rather than a
// long-term archive; schema changes bump schemaVersion and users delete the
// file to adopt the new schema.
//
// Recording is best-effort from the stream loop's perspective: store errors
// are logged by callers and never abort a run.
package history
