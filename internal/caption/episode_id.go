package caption

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	episodeCodeRegex = regexp.MustCompile(`(?i)^s(\d{1,3})\s*e(\d{1,4})$`)
	// S01E03, s1e4, "S1 E4" inside release names
	episodeInNameRegex = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s(\d{1,3})[\s._-]*e(\d{1,4})(?:[^0-9]|$)`)
)

// season/episode pair, String gives the canonical s01e02 form
type EpisodeID struct {
	Season  int
	Episode int
}

func NewEpisodeID(season, episode int) EpisodeID {
	return EpisodeID{Season: season, Episode: episode}
}

func (id EpisodeID) String() string {
	return fmt.Sprintf("s%02de%02d", id.Season, id.Episode)
}

func (id EpisodeID) IsZero() bool {
	return id.Season == 0 && id.Episode == 0
}

// ParseEpisodeID accepts codes like S01E01, s1e4 or "S1 E4".
func ParseEpisodeID(code string) (EpisodeID, error) {
	m := episodeCodeRegex.FindStringSubmatch(strings.TrimSpace(code))
	if m == nil {
		return EpisodeID{}, fmt.Errorf("invalid episode code %q", code)
	}
	return episodeFromMatch(m)
}

// EpisodeIDFromPath finds a season/episode code embedded in a file name.
func EpisodeIDFromPath(path string) (EpisodeID, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	m := episodeInNameRegex.FindStringSubmatch(base)
	if m == nil {
		return EpisodeID{}, fmt.Errorf("no episode code in file name %q", filepath.Base(path))
	}
	return episodeFromMatch(m)
}

func episodeFromMatch(m []string) (EpisodeID, error) {
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return EpisodeID{}, err
	}
	episode, err := strconv.Atoi(m[2])
	if err != nil {
		return EpisodeID{}, err
	}
	return NewEpisodeID(season, episode), nil
}
