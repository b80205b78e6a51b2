// Package main hosts the episodegap CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the Plex versus TheTVDB episode report,
// manages the series metadata cache, scaffolds and inspects configuration,
// and performs connectivity checks. It centralizes configuration resolution
// and logger setup so subcommands only deal with presentation; the work
// itself lives in the internal packages.
package main
