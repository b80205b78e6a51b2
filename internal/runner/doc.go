// Package runner drives one reconciliation run.
//
// Runner walks every selected Plex TV library and every show inside it,
// resolving each show against TheTVDB, building its local inventory, and
// appending reconciled rows to a report. Failures are contained to the
// smallest unit that produced them: a show's catalog failure becomes an error
// row, a library whose show listing fails is skipped, and only a failure to
// reach either service at all aborts the run.
//
// Cancellation of the supplied context is treated as an interrupt request. It
// is checked between shows and between libraries, never mid-show, and calls
// into Plex and TheTVDB are detached from it so the current show always
// finishes cleanly.
//
// Execute wires the runner to real clients from a config, holds the cache
// directory lock for the duration of the run, and always saves the report.
package runner
