package inventory

import (
	"context"
	"log/slog"
	"strings"

	"episodegap/internal/logging"
	"episodegap/internal/services/plex"
)

// Key addresses an episode by season and episode number.
type Key struct {
	Season  int
	Episode int
}

// Record is the local view of one episode. FilePaths holds one normalized
// path per copy and is never nil.
type Record struct {
	SeasonNumber  int
	EpisodeNumber int
	Title         string
	FilePaths     []string
}

// Inventory is the local episode map of one show.
type Inventory struct {
	Records map[Key]*Record
	Counts  map[Key]int
	// Omitted counts episodes dropped because their files could not be fetched.
	Omitted int
}

// New returns an empty inventory.
func New() *Inventory {
	return &Inventory{
		Records: make(map[Key]*Record),
		Counts:  make(map[Key]int),
	}
}

// Lookup returns the record and copy count for an episode.
func (inv *Inventory) Lookup(season, episode int) (*Record, int, bool) {
	if inv == nil {
		return nil, 0, false
	}
	key := Key{Season: season, Episode: episode}
	record, ok := inv.Records[key]
	if !ok {
		return nil, 0, false
	}
	return record, inv.Counts[key], true
}

// Len returns the number of distinct episodes held.
func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.Records)
}

// Add records one copy of an episode.
func (inv *Inventory) Add(season, episode int, title, filePath string) {
	key := Key{Season: season, Episode: episode}
	inv.Counts[key]++
	if record, ok := inv.Records[key]; ok {
		record.FilePaths = append(record.FilePaths, filePath)
		return
	}
	inv.Records[key] = &Record{
		SeasonNumber:  season,
		EpisodeNumber: episode,
		Title:         title,
		FilePaths:     []string{filePath},
	}
}

// PartFetcher looks up the files of a single episode.
type PartFetcher interface {
	EpisodeFiles(ctx context.Context, episodeRatingKey string) ([]string, error)
}

var _ PartFetcher = (*plex.Client)(nil)

// Builder constructs inventories.
type Builder struct {
	parts  PartFetcher
	logger *slog.Logger
}

// NewBuilder returns a builder. parts may be nil, in which case episodes
// listed without files are omitted.
func NewBuilder(parts PartFetcher, logger *slog.Logger) *Builder {
	return &Builder{parts: parts, logger: logging.NewComponentLogger(logger, "inventory")}
}

// Build maps the episodes of one show. Episodes listed without files have
// them fetched individually; a failed fetch drops that episode with a warning.
func (b *Builder) Build(ctx context.Context, episodes []plex.Episode) *Inventory {
	inv := New()
	logger := logging.WithContext(ctx, b.logger)
	for _, episode := range episodes {
		files := episode.Files
		if len(files) == 0 {
			fetched, ok := b.fetchFiles(ctx, logger, episode)
			if !ok {
				inv.Omitted++
				continue
			}
			files = fetched
		}
		for _, file := range files {
			if strings.TrimSpace(file) == "" {
				continue
			}
			inv.Add(episode.SeasonNumber, episode.EpisodeNumber, episode.Title, NormalizePath(file))
		}
	}
	return inv
}

func (b *Builder) fetchFiles(ctx context.Context, logger *slog.Logger, episode plex.Episode) ([]string, bool) {
	if b.parts == nil || strings.TrimSpace(episode.RatingKey) == "" {
		return nil, false
	}
	files, err := b.parts.EpisodeFiles(ctx, episode.RatingKey)
	if err != nil {
		logging.WarnWithContext(logger, "episode part lookup failed", "episode_parts_failed",
			logging.Season(episode.SeasonNumber),
			logging.Int("episode", episode.EpisodeNumber),
			logging.String("rating_key", episode.RatingKey),
			logging.Error(err),
			logging.String(logging.FieldImpact, "episode will be reported as missing"),
			logging.String(logging.FieldErrorHint, "check the episode in Plex and rerun"))
		return nil, false
	}
	return files, true
}
