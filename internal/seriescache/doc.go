// Package seriescache keeps TheTVDB series payloads on disk between runs.
//
// Entries are keyed by series identifier and are valid for a fixed window
// measured from their last write; an entry older than the window reads as a
// miss and is overwritten by the next Put. There is no other eviction. Two
// backends implement Store: one JSON file per series (the default, atomic
// temp-file writes through afero) and a single SQLite table.
package seriescache
