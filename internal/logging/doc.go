// Package logging assembles the structured slog loggers used across the
// render commands.
//
// It centralizes level and format plumbing, standardizes the field keys the
// apply engine tags lines with (image IDs, run correlation IDs), and
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
