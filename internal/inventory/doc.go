// Package inventory builds the local episode map of one show from the episode
// list Plex reports.
//
// Every file backing an episode counts as one copy. The first copy creates the
// record for its (season, episode) pair; later copies append their path, so a
// count above one marks the episode as duplicated.
package inventory
