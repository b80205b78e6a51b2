// Package catalog resolves a library show to TheTVDB and returns its canonical
// season and episode tree.
//
// Resolution uses the identifier Plex already knows when there is one and
// falls back to a title search with a year tie-break. The assembled tree is
// cached per series; a cached tree inside its validity window is returned
// without any network call. IsOfficialSeason is the one place that decides
// which seasons count.
package catalog
