package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgpai22/captionprep/internal/batch"
	"github.com/mgpai22/captionprep/internal/caption"
	"github.com/spf13/cobra"
)

var blobCmd = &cobra.Command{
	Use:   "blob [text_file]",
	Short: "Extract caption JSON from a multi-episode text dump",
	Long: `Extract captions from a text dump holding one "episode_<N>": [ ... ] section
per episode. Caption objects of the form
  { "start": 1.5, "end": 3.0, "en": "...", "vi": "..." }
are located with pattern matching, so the dump does not need to be valid JSON.

Episodes are taken from --from/--to (default 1 to 5) or, with --discover,
from every episode marker found in the file. A missing episode section
is reported and skipped rather than treated as an error.

Quoted text containing a double quote character is not supported: the
field ends at the first quote. Caption text is written exactly as found,
trimmed; pass --nfc to compose decomposed diacritics.

Examples:
  captionprep blob "dữ liệu sub.txt"
  captionprep blob dump.txt --discover --season 2
  captionprep blob dump.txt --from 3 --to 4 --schema text-translation`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBlob,
}

func init() {
	rootCmd.AddCommand(blobCmd)

	blobCmd.Flags().
		Int("from", 0, "First episode number to extract (default 1)")
	blobCmd.Flags().
		Int("to", 0, "Last episode number to extract (default 5)")
	blobCmd.Flags().
		Bool("discover", false, "Extract every episode section found in the file")
	blobCmd.Flags().
		Int("season", 0, "Season number used in output names (default 1)")
	blobCmd.Flags().
		String("suffix", "", "Output file name suffix")
}

func runBlob(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	settings, err := resolveOutput(cmd, cfg, cfg.Blob.Suffix, cfg.Blob.Schema)
	if err != nil {
		return err
	}

	path := cfg.Blob.Path
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("no text dump given: pass a file or set blob.path in the config")
	}

	blobCfg := cfg.Blob
	flags := cmd.Flags()
	if flags.Changed("from") {
		blobCfg.From, _ = flags.GetInt("from")
	}
	if flags.Changed("to") {
		blobCfg.To, _ = flags.GetInt("to")
	}
	if flags.Changed("discover") {
		blobCfg.Discover, _ = flags.GetBool("discover")
	}
	if flags.Changed("season") {
		blobCfg.Season, _ = flags.GetInt("season")
	}

	policy := caption.RangePolicy(blobCfg.From, blobCfg.To)
	if blobCfg.Discover {
		policy = caption.DiscoverPolicy()
	} else if blobCfg.From > blobCfg.To {
		return fmt.Errorf("--from (%d) must not be after --to (%d)", blobCfg.From, blobCfg.To)
	}

	// the whole dump is read once; a read failure aborts this input only
	text, err := caption.ReadText(path)
	if err != nil {
		return fmt.Errorf("failed to read text dump: %w", err)
	}

	logger.Infow("Loaded text dump",
		"file", path,
		"characters", len([]rune(text)),
		"discover", blobCfg.Discover,
	)

	sections := caption.ExtractEpisodes(text, policy, blobCfg.Season)

	jobs := make([]batch.Job, 0, len(sections))
	for _, section := range sections {
		if !section.Found {
			// nothing to write, an existing file for this episode is left alone
			logger.Warnw("Episode section not found", "episode", section.Episode.String())
			continue
		}
		jobs = append(jobs, batch.Job{
			Episode: section.Episode,
			Source:  fmt.Sprintf("%s#episode_%d", path, section.Episode.Episode),
			Convert: func(ctx context.Context) (caption.Result, error) {
				return section.Result, nil
			},
		})
	}

	return runJobs(cmd.Context(), settings, jobs)
}
