package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ppiankov/coursegrid/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var noTAMerge bool

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract course records from timetable pages",
	Long: `Extract reads every timetable page in a directory and writes one JSON
array of course records.

- Pages are decoded as UTF-8, then CP950/Big5, falling back to a lossy decode
- Only rows of the 15-column timetable with a seq or course code are kept
- Teaching-assistant rows are folded into the preceding course
- Records repeating an earlier seq are dropped with a diagnostic

Example:
  coursegrid extract
  coursegrid extract --dir data -o courses.json --pretty
  coursegrid extract --workers 4 --strict-rows --no-ta-merge`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("dir", "data", "directory containing timetable pages")
	extractCmd.Flags().StringP("output", "o", "courses.json", "output JSON path")
	extractCmd.Flags().Bool("pretty", false, "indent JSON output")
	extractCmd.Flags().Int("workers", 1, "number of files decoded and parsed concurrently")
	extractCmd.Flags().Bool("strict-rows", false, "require a numeric seq; ignore rows with only a course code")
	extractCmd.Flags().BoolVar(&noTAMerge, "no-ta-merge", false, "keep teaching-assistant rows as separate records")

	_ = viper.BindPFlag("input.dir", extractCmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("output.path", extractCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.pretty", extractCmd.Flags().Lookup("pretty"))
	_ = viper.BindPFlag("concurrency.workers", extractCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("extract.strict_rows", extractCmd.Flags().Lookup("strict-rows"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noTAMerge {
		cfg.Merge.TA = false
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Debug("extracting",
		"dir", cfg.Input.Dir,
		"pattern", cfg.Input.Pattern,
		"output", cfg.Output.Path,
		"workers", cfg.Concurrency.Workers,
		"ta_merge", cfg.Merge.TA)

	p := pipeline.NewPipeline(cfg, cmd.OutOrStdout(), slog.Default())
	if _, err := p.RunAndWrite(ctx); err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}
	return nil
}
