package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mgpai22/captionprep/internal/batch"
	"github.com/mgpai22/captionprep/internal/caption"
	"github.com/mgpai22/captionprep/internal/config"
	"github.com/spf13/cobra"
)

var srtCmd = &cobra.Command{
	Use:   "srt [srt_file_or_dir...]",
	Short: "Convert SRT subtitle files to caption JSON",
	Long: `Convert standard SRT subtitle files into caption JSON, one file per episode.

The episode code is taken from --episode (single file only), from the
[srt.episodes] table of the config file, or from the file name
(e.g. Show.S01E03.WEBRip.srt or "Show S1 E4.srt"). Directories are scanned
for .srt files. With no arguments the files listed in the config are used.

Blocks with a malformed timing line or without text are skipped.

Examples:
  captionprep srt The.Show.S01E01.WEBRip.srt
  captionprep srt episode4.srt --episode S01E04
  captionprep srt ./srt -o subs --schema text-translation
  captionprep srt --config captionprep.toml`,
	RunE: runSRT,
}

func init() {
	rootCmd.AddCommand(srtCmd)

	srtCmd.Flags().
		StringP("episode", "e", "", "Episode code for a single input file (e.g., S01E04)")
	srtCmd.Flags().
		String("suffix", "", "Output file name suffix (default _complete)")
	srtCmd.Flags().
		Bool("keep-markup", false, "Keep <i>, <b> and other tags in the caption text")
}

func runSRT(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	settings, err := resolveOutput(cmd, cfg, cfg.SRT.Suffix, cfg.SRT.Schema)
	if err != nil {
		return err
	}

	episodeCode, _ := cmd.Flags().GetString("episode")
	opts := caption.ParseOptions{KeepMarkup: cfg.SRT.KeepMarkup}
	if cmd.Flags().Changed("keep-markup") {
		opts.KeepMarkup, _ = cmd.Flags().GetBool("keep-markup")
	}

	files, err := srtInputs(cfg, args, episodeCode)
	if err != nil {
		return err
	}

	logger.Infow("Starting SRT conversion",
		"files", len(files),
		"output_dir", settings.Dir,
		"schema", settings.Schema,
		"concurrency", settings.Concurrency,
	)

	jobs := make([]batch.Job, 0, len(files))
	for _, f := range files {
		path := f.Path
		jobs = append(jobs, batch.Job{
			Episode: f.ID,
			Source:  path,
			Convert: func(ctx context.Context) (caption.Result, error) {
				return caption.ConvertSRTFile(path, opts)
			},
		})
	}

	return runJobs(cmd.Context(), settings, jobs)
}

// srtInputs resolves command arguments (or the config table when there are
// none) to episode files. Files without a usable episode code are skipped
// with a warning.
func srtInputs(
	cfg *config.Config,
	args []string,
	episodeCode string,
) ([]config.EpisodeFile, error) {
	if len(args) == 0 {
		if episodeCode != "" {
			return nil, fmt.Errorf("--episode requires exactly one input file")
		}
		files := cfg.SRTEpisodes()
		if len(files) == 0 {
			return nil, fmt.Errorf("no SRT files given and none configured in [srt.episodes]")
		}
		return files, nil
	}

	var paths []string
	for _, arg := range args {
		found, err := expandSRTArg(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	if episodeCode != "" {
		if len(paths) != 1 {
			return nil, fmt.Errorf("--episode requires exactly one input file, got %d", len(paths))
		}
		id, err := caption.ParseEpisodeID(episodeCode)
		if err != nil {
			return nil, err
		}
		return []config.EpisodeFile{{ID: id, Path: paths[0]}}, nil
	}

	configured := make(map[string]caption.EpisodeID)
	for _, f := range cfg.SRTEpisodes() {
		configured[filepath.Clean(f.Path)] = f.ID
	}

	seen := make(map[caption.EpisodeID]string)
	var files []config.EpisodeFile
	for _, p := range paths {
		id, ok := configured[filepath.Clean(p)]
		if !ok {
			var err error
			id, err = caption.EpisodeIDFromPath(p)
			if err != nil {
				logger.Warnw("Skipping file without episode code", "file", p, "error", err)
				continue
			}
		}
		if prev, dup := seen[id]; dup {
			logger.Warnw("Skipping duplicate episode",
				"episode", id.String(),
				"file", p,
				"kept", prev,
			)
			continue
		}
		seen[id] = p
		files = append(files, config.EpisodeFile{ID: id, Path: p})
	}
	return files, nil
}

// directories expand to the .srt files they contain, sorted by name
func expandSRTArg(arg string) ([]string, error) {
	info, err := os.Stat(arg)
	if os.IsNotExist(err) {
		// reported per episode by the batch, like any unreadable input
		return []string{arg}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", arg, err)
	}

	if !info.IsDir() {
		if format, err := caption.FormatFromExtension(arg); err != nil || format != caption.FormatSRT {
			return nil, fmt.Errorf("unsupported subtitle file %q: expected .srt", arg)
		}
		return []string{arg}, nil
	}

	entries, err := os.ReadDir(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".srt") {
			continue
		}
		paths = append(paths, filepath.Join(arg, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		logger.Warnw("No .srt files in directory", "dir", arg)
	}
	return paths, nil
}
