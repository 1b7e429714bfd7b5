package cli

import (
	"github.com/mgpai22/captionprep/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "captionprep",
	Short: "Convert episode subtitles into timed caption JSON",
	Long: `Captionprep converts subtitle data for the language-learning player into
normalized JSON caption records, pairing each English line with a
Vietnamese translation field and its timing offsets.

It reads standard SRT files, multi-episode quasi-JSON text dumps, and
caption JSON written by earlier tooling.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file (default ./captionprep.toml when present)")
	rootCmd.PersistentFlags().
		StringP("output-dir", "o", "", "Output directory (default subs)")
	rootCmd.PersistentFlags().
		String("prefix", "", "Output file name prefix (default suite-life)")
	rootCmd.PersistentFlags().
		String("schema", "", "Output field names: en-vi or text-translation")
	rootCmd.PersistentFlags().
		Int("concurrency", 0, "Number of episodes converted in parallel (default 1)")
	rootCmd.PersistentFlags().
		Bool("nfc", false, "Write caption text in Unicode NFC (composed diacritics)")
}
