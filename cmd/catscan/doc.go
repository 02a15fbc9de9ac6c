// Package main hosts the catscan CLI entrypoint and command graph.
//
// The Cobra-based command tree covers running the daemon in the foreground,
// one-shot terminal scans, browsing recorded run history, and configuration
// scaffolding. It centralizes configuration resolution and logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
