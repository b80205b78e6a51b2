// Package config loads, normalizes, and validates episodegap configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLEX_TOKEN and TVDB_API_KEY. Structural problems are reported by Load;
// missing credentials are reported by RequireCredentials so commands that
// never talk to Plex or TheTVDB keep working without them.
package config
