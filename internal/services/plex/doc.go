// Package plex is a read-only client for a Plex Media Server's library API.
//
// It lists TV library sections, the shows in a section (with their external
// GUIDs), and the episodes of a show together with the files that back them.
// Requests carry the X-Plex-Token and the standard client identification
// headers, ask for JSON, and translate HTTP failures into the services error
// markers.
package plex
