package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/captionprep/internal/caption"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "captionprep.toml"

// SRT configures the timed-block pipeline.
type SRT struct {
	Suffix     string `toml:"suffix"`
	Schema     string `toml:"schema"`
	KeepMarkup bool   `toml:"keep_markup"`
	// episode code (S01E01) -> subtitle file
	Episodes map[string]string `toml:"episodes"`
}

// Blob configures the embedded-record pipeline.
type Blob struct {
	Path     string `toml:"path"`
	Suffix   string `toml:"suffix"`
	Schema   string `toml:"schema"`
	Season   int    `toml:"season"`
	From     int    `toml:"from"`
	To       int    `toml:"to"`
	Discover bool   `toml:"discover"`
}

// Config holds every setting the commands read before flags are applied.
type Config struct {
	OutputDir   string `toml:"output_dir"`
	Prefix      string `toml:"prefix"`
	Concurrency int    `toml:"concurrency"`
	// write caption text in Unicode NFC instead of as read
	ComposeNFC  bool   `toml:"compose_nfc"`
	SRT         SRT    `toml:"srt"`
	Blob        Blob   `toml:"blob"`
}

// EpisodeFile pairs a configured episode with its source path.
type EpisodeFile struct {
	ID   caption.EpisodeID
	Path string
}

func Default() Config {
	return Config{
		OutputDir:   "subs",
		Prefix:      "suite-life",
		Concurrency: 1,
		SRT: SRT{
			Suffix: "_complete",
			Schema: string(caption.SchemaEnVi),
		},
		Blob: Blob{
			Schema: string(caption.SchemaEnVi),
			Season: 1,
			From:   1,
			To:     5,
		},
	}
}

// Load reads the TOML file at path on top of Default. An empty path falls
// back to DefaultFileName and a missing default file is not an error. The
// returned bool reports whether a file was read.
func Load(path string) (*Config, bool, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	file, err := os.Open(path)
	loaded := err == nil
	switch {
	case err == nil:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, false, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, false, fmt.Errorf("failed to open config: %w", err)
	}

	cfg.normalize(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, false, err
	}
	return &cfg, loaded, nil
}

// relative source paths are resolved against the config file's directory
func (c *Config) normalize(baseDir string) {
	c.OutputDir = strings.TrimSpace(c.OutputDir)
	c.Prefix = strings.TrimSpace(c.Prefix)
	c.Blob.Path = resolve(baseDir, c.Blob.Path)
	for code, p := range c.SRT.Episodes {
		c.SRT.Episodes[code] = resolve(baseDir, p)
	}
}

func resolve(baseDir, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("config: output_dir must not be empty")
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("config: concurrency must be positive, got %d", c.Concurrency)
	}
	if _, err := caption.ParseSchema(c.SRT.Schema); err != nil {
		return fmt.Errorf("config: srt.schema: %w", err)
	}
	if _, err := caption.ParseSchema(c.Blob.Schema); err != nil {
		return fmt.Errorf("config: blob.schema: %w", err)
	}
	if c.Blob.Season < 0 {
		return fmt.Errorf("config: blob.season must not be negative, got %d", c.Blob.Season)
	}
	if !c.Blob.Discover && c.Blob.From > c.Blob.To {
		return fmt.Errorf("config: blob.from (%d) is after blob.to (%d)", c.Blob.From, c.Blob.To)
	}
	for code := range c.SRT.Episodes {
		if _, err := caption.ParseEpisodeID(code); err != nil {
			return fmt.Errorf("config: srt.episodes: %w", err)
		}
	}
	return nil
}

// SRTEpisodes returns the configured episode files ordered by episode.
func (c *Config) SRTEpisodes() []EpisodeFile {
	files := make([]EpisodeFile, 0, len(c.SRT.Episodes))
	for code, p := range c.SRT.Episodes {
		// codes are checked by Validate
		id, _ := caption.ParseEpisodeID(code)
		files = append(files, EpisodeFile{ID: id, Path: p})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].ID.Season != files[j].ID.Season {
			return files[i].ID.Season < files[j].ID.Season
		}
		return files[i].ID.Episode < files[j].ID.Episode
	})
	return files
}
