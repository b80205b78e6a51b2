// Package report accumulates reconciliation output and writes it as an xlsx
// workbook.
//
// A Report holds three append-only tables: Episodes (one row per canonical
// episode), TVNTF (shows TheTVDB has no match for), and TVERR (shows whose
// catalog lookup failed). Every sheet gets a bold header row, an auto-filter
// across the header, and a frozen first row. Summary rolls the tables up per
// library for console output.
package report
