package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/captionprep/internal/batch"
	"github.com/mgpai22/captionprep/internal/caption"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [json_file...]",
	Short: "Rewrite caption JSON files in the canonical schema",
	Long: `Load caption JSON written by this tool or by older player tooling and
write it back in the selected schema.

Accepted shapes are a top-level array or an object with a "lines" array,
holding items with start/end plus text or en (and vi or translation), or
items with a "time" range such as "00:03 -> 00:07".

The episode code is read from each file name (e.g. suite-life_s01e02.json).

Examples:
  captionprep normalize old/suite-life_s01e01.json
  captionprep normalize old/*.json -o subs --schema text-translation`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().
		String("suffix", "", "Output file name suffix")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	settings, err := resolveOutput(cmd, cfg, "", string(caption.SchemaEnVi))
	if err != nil {
		return err
	}

	seen := make(map[caption.EpisodeID]string)
	jobs := make([]batch.Job, 0, len(args))
	for _, path := range args {
		if format, err := caption.FormatFromExtension(path); err != nil || format != caption.FormatJSON {
			return fmt.Errorf("unsupported caption file %q: expected .json", path)
		}

		id, err := caption.EpisodeIDFromPath(path)
		if err != nil {
			logger.Warnw("Skipping file without episode code", "file", path, "error", err)
			continue
		}
		if prev, dup := seen[id]; dup {
			logger.Warnw("Skipping duplicate episode",
				"episode", id.String(),
				"file", path,
				"kept", prev,
			)
			continue
		}
		seen[id] = path

		jobs = append(jobs, batch.Job{
			Episode: id,
			Source:  path,
			Convert: func(ctx context.Context) (caption.Result, error) {
				return caption.ConvertJSONFile(path)
			},
		})
	}

	logger.Infow("Starting JSON normalization",
		"files", len(jobs),
		"output_dir", settings.Dir,
		"schema", settings.Schema,
	)

	return runJobs(cmd.Context(), settings, jobs)
}
