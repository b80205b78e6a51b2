// Package logging assembles the structured slog loggers used by episodegap.
//
// It owns the console and JSON handlers, level parsing, the optional rotated
// log file, and a small set of attribute helpers with standardized keys
// (component, run_id, library, show, season). Console output can be reduced
// to plain ASCII for terminals that cannot render show titles in their
// original script. A no-op logger is provided for tests.
package logging
