// Package reconcile merges a show's canonical catalog seasons with its local
// inventory into report rows.
//
// The catalog drives iteration: every canonical episode of every official,
// non-empty season yields exactly one row, in catalog order. Seasons that only
// exist locally are not reported.
package reconcile
