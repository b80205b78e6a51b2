package plex

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Section is a Plex library section.
type Section struct {
	Key   string
	Title string
	Type  string
}

// IsShowLibrary reports whether the section holds TV shows.
func (s Section) IsShowLibrary() bool {
	return strings.EqualFold(s.Type, "show")
}

// Show is a TV show as listed in a library section.
type Show struct {
	RatingKey string
	Title     string
	Year      int
	GUIDs     []string
}

// TVDBID returns the TheTVDB identifier from the show's external GUIDs, or ""
// when Plex has not matched the show against TheTVDB.
func (s Show) TVDBID() string {
	for _, guid := range s.GUIDs {
		if id := ParseTVDBGUID(guid); id != "" {
			return id
		}
	}
	return ""
}

// Episode is one episode of a show with the files backing it. Files is empty
// when the listing omitted media parts.
type Episode struct {
	RatingKey     string
	SeasonNumber  int
	EpisodeNumber int
	Title         string
	Files         []string
}

// Identity describes the server answering requests.
type Identity struct {
	MachineIdentifier string
	Version           string
}

var tvdbGUIDPattern = regexp.MustCompile(`^tvdb://(\d+)`)

// ParseTVDBGUID extracts the numeric identifier from a "tvdb://12345" GUID.
func ParseTVDBGUID(guid string) string {
	match := tvdbGUIDPattern.FindStringSubmatch(strings.TrimSpace(guid))
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

type guidEntry struct {
	ID string `json:"id"`
}

type partEntry struct {
	File string `json:"file"`
}

type mediaEntry struct {
	Parts []partEntry `json:"Part"`
}

type metadataEntry struct {
	RatingKey   string       `json:"ratingKey"`
	Title       string       `json:"title"`
	Year        int          `json:"year"`
	ParentIndex int          `json:"parentIndex"`
	Index       int          `json:"index"`
	GUIDs       []guidEntry  `json:"Guid"`
	Media       []mediaEntry `json:"Media"`
}

func (m metadataEntry) files() []string {
	files := make([]string, 0, len(m.Media))
	for _, media := range m.Media {
		for _, part := range media.Parts {
			if strings.TrimSpace(part.File) == "" {
				continue
			}
			files = append(files, part.File)
		}
	}
	return files
}

type metadataResponse struct {
	MediaContainer struct {
		Metadata []metadataEntry `json:"Metadata"`
	} `json:"MediaContainer"`
}

// Sections lists every library section on the server.
func (c *Client) Sections(ctx context.Context) ([]Section, error) {
	var resp struct {
		MediaContainer struct {
			Directory []struct {
				Key   string `json:"key"`
				Title string `json:"title"`
				Type  string `json:"type"`
			} `json:"Directory"`
		} `json:"MediaContainer"`
	}
	if err := c.getJSON(ctx, "list sections", "/library/sections", nil, &resp); err != nil {
		return nil, err
	}
	sections := make([]Section, 0, len(resp.MediaContainer.Directory))
	for _, dir := range resp.MediaContainer.Directory {
		if dir.Key == "" {
			continue
		}
		sections = append(sections, Section{Key: dir.Key, Title: dir.Title, Type: dir.Type})
	}
	return sections, nil
}

// ShowSections lists the TV sections, restricted to the given titles
// (case-insensitive) when any are provided. Order follows the server.
func (c *Client) ShowSections(ctx context.Context, titles []string) ([]Section, error) {
	all, err := c.Sections(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		wanted[strings.ToLower(strings.TrimSpace(title))] = struct{}{}
	}
	shows := make([]Section, 0, len(all))
	for _, section := range all {
		if !section.IsShowLibrary() {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[strings.ToLower(section.Title)]; !ok {
				continue
			}
		}
		shows = append(shows, section)
	}
	return shows, nil
}

// Shows lists the shows of a library section, including their external GUIDs.
func (c *Client) Shows(ctx context.Context, sectionKey string) ([]Show, error) {
	params := url.Values{}
	params.Set("includeGuids", "1")
	var resp metadataResponse
	path := fmt.Sprintf("/library/sections/%s/all", url.PathEscape(sectionKey))
	if err := c.getJSON(ctx, "list shows", path, params, &resp); err != nil {
		return nil, err
	}
	shows := make([]Show, 0, len(resp.MediaContainer.Metadata))
	for _, entry := range resp.MediaContainer.Metadata {
		guids := make([]string, 0, len(entry.GUIDs))
		for _, guid := range entry.GUIDs {
			guids = append(guids, guid.ID)
		}
		shows = append(shows, Show{
			RatingKey: entry.RatingKey,
			Title:     entry.Title,
			Year:      entry.Year,
			GUIDs:     guids,
		})
	}
	return shows, nil
}

// Episodes lists every episode of a show as the server currently reports it.
func (c *Client) Episodes(ctx context.Context, showRatingKey string) ([]Episode, error) {
	var resp metadataResponse
	path := fmt.Sprintf("/library/metadata/%s/allLeaves", url.PathEscape(showRatingKey))
	if err := c.getJSON(ctx, "list episodes", path, nil, &resp); err != nil {
		return nil, err
	}
	episodes := make([]Episode, 0, len(resp.MediaContainer.Metadata))
	for _, entry := range resp.MediaContainer.Metadata {
		episodes = append(episodes, Episode{
			RatingKey:     entry.RatingKey,
			SeasonNumber:  entry.ParentIndex,
			EpisodeNumber: entry.Index,
			Title:         entry.Title,
			Files:         entry.files(),
		})
	}
	return episodes, nil
}

// EpisodeFiles fetches the file paths of a single episode.
func (c *Client) EpisodeFiles(ctx context.Context, episodeRatingKey string) ([]string, error) {
	var resp metadataResponse
	path := fmt.Sprintf("/library/metadata/%s", url.PathEscape(episodeRatingKey))
	if err := c.getJSON(ctx, "episode parts", path, nil, &resp); err != nil {
		return nil, err
	}
	files := []string{}
	for _, entry := range resp.MediaContainer.Metadata {
		files = append(files, entry.files()...)
	}
	return files, nil
}

// Identity asks the server who it is. It is the cheapest authenticated call
// and is used to verify connectivity.
func (c *Client) Identity(ctx context.Context) (Identity, error) {
	var resp struct {
		MediaContainer struct {
			MachineIdentifier string `json:"machineIdentifier"`
			Version           string `json:"version"`
		} `json:"MediaContainer"`
	}
	if err := c.getJSON(ctx, "identity", "/identity", nil, &resp); err != nil {
		return Identity{}, err
	}
	return Identity{
		MachineIdentifier: resp.MediaContainer.MachineIdentifier,
		Version:           resp.MediaContainer.Version,
	}, nil
}
