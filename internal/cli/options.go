package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mgpai22/captionprep/internal/batch"
	"github.com/mgpai22/captionprep/internal/caption"
	"github.com/mgpai22/captionprep/internal/config"
	"github.com/spf13/cobra"
)

// output settings after config file and flags are merged
type outputSettings struct {
	Dir         string
	Prefix      string
	Suffix      string
	Schema      caption.Schema
	Concurrency int
	ComposeNFC  bool
}

func loadConfig() (*config.Config, error) {
	cfg, loaded, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if loaded {
		path := configPath
		if path == "" {
			path = config.DefaultFileName
		}
		logger.Debugw("Loaded config", "path", path)
	}
	return cfg, nil
}

// flags override the config only when set explicitly
func resolveOutput(
	cmd *cobra.Command,
	cfg *config.Config,
	suffix string,
	schema string,
) (outputSettings, error) {
	s := outputSettings{
		Dir:         cfg.OutputDir,
		Prefix:      cfg.Prefix,
		Suffix:      suffix,
		Concurrency: cfg.Concurrency,
		ComposeNFC:  cfg.ComposeNFC,
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		s.Dir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("prefix") {
		s.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Lookup("suffix") != nil && flags.Changed("suffix") {
		s.Suffix, _ = flags.GetString("suffix")
	}
	if flags.Changed("schema") {
		schema, _ = flags.GetString("schema")
	}
	if flags.Changed("concurrency") {
		s.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("nfc") {
		s.ComposeNFC, _ = flags.GetBool("nfc")
	}

	if s.Dir == "" {
		return s, errors.New("output directory must not be empty")
	}
	if s.Concurrency <= 0 {
		return s, fmt.Errorf("concurrency must be positive, got %d", s.Concurrency)
	}

	parsed, err := caption.ParseSchema(schema)
	if err != nil {
		return s, err
	}
	s.Schema = parsed
	return s, nil
}

func (s outputSettings) writer() *caption.Writer {
	return &caption.Writer{
		Dir:    s.Dir,
		Prefix: s.Prefix,
		Suffix: s.Suffix,
		Schema: s.Schema,
	}
}

// runJobs executes the batch, prints the summary table, and fails only when
// no episode could be converted.
func runJobs(
	ctx context.Context,
	settings outputSettings,
	jobs []batch.Job,
) error {
	if len(jobs) == 0 {
		return errors.New("no input episodes to convert")
	}

	runner := batch.NewRunner(settings.writer(), settings.Concurrency, logger)
	runner.ComposeNFC = settings.ComposeNFC
	summary, err := runner.Run(ctx, jobs)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, renderSummary(summary, shouldColorize(os.Stdout)))

	if summary.Succeeded() == 0 {
		return fmt.Errorf("no episodes converted (%d failed)", summary.Failed())
	}
	return nil
}
