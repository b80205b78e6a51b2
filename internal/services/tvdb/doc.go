// Package tvdb is a minimal TheTVDB v4 client covering what a library audit
// needs: API-key login, series search, extended series records (with their
// season lists), and extended season records (with their episodes).
//
// The bearer token is obtained on first use and shared by later calls. Calls
// are never retried; failures are tagged with the services error markers.
package tvdb
