// Package services holds the error markers shared by the Plex and TheTVDB
// clients.
//
// Clients tag failures with one of the sentinel errors through Wrap so callers
// can tell an authentication problem from a missing resource or an
// unreachable server with errors.Is, while the message still carries the
// service, operation, and underlying cause.
package services
