// Package logging assembles structured slog loggers and formatting helpers used
// across Watchtower.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so pipeline code can tag log lines with
// project, episode, session, and stage identifiers. The Recorder handler keeps
// WARN and ERROR records in memory so an aggregation session can expose its own
// diagnostics next to the data it assembled.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// records with the same shape as the rest of the system.
package logging
