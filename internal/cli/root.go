package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/coursegrid/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "coursegrid v0.1.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "coursegrid",
	Short: "coursegrid - course timetable extractor",
	Long: `coursegrid turns the university's published course timetable pages
into a single JSON list of course records.

It reads every timetable page in a directory, decodes UTF-8 or Big5/CP950,
keeps only data rows of the fixed 15-column table, folds teaching-assistant
rows into the course they belong to, and drops repeated sequence numbers.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := viper.GetString("log_level")
		if verbose {
			level = "debug"
		}
		setupLogging(level)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.coursegrid/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (forces debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	setDefaults(model.DefaultConfig())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".coursegrid"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// COURSEGRID_INPUT_DIR, COURSEGRID_CONCURRENCY_WORKERS, ...
	viper.SetEnvPrefix("COURSEGRID")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so env vars and flags resolve
// even when no config file sets them
func setDefaults(cfg *model.Config) {
	viper.SetDefault("log_level", cfg.LogLevel)

	viper.SetDefault("input.dir", cfg.Input.Dir)
	viper.SetDefault("input.pattern", cfg.Input.Pattern)

	viper.SetDefault("output.path", cfg.Output.Path)
	viper.SetDefault("output.pretty", cfg.Output.Pretty)

	viper.SetDefault("decode.encodings", cfg.Decode.Encodings)

	viper.SetDefault("extract.min_cells", cfg.Extract.MinCells)
	viper.SetDefault("extract.strict_rows", cfg.Extract.StrictRows)
	viper.SetDefault("extract.dept_marker", cfg.Extract.DeptMarker)
	viper.SetDefault("extract.english_marker", cfg.Extract.EnglishMarker)
	viper.SetDefault("extract.campus_marker", cfg.Extract.CampusMarker)
	viper.SetDefault("extract.campus_note", cfg.Extract.CampusNote)

	viper.SetDefault("merge.ta", cfg.Merge.TA)

	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)

	viper.SetDefault("download.url_template", cfg.Download.URLTemplate)
	viper.SetDefault("download.prefix", cfg.Download.Prefix)
	viper.SetDefault("download.dest_dir", cfg.Download.DestDir)
	viper.SetDefault("download.timeout", cfg.Download.Timeout)
	viper.SetDefault("download.user_agent", cfg.Download.UserAgent)
	viper.SetDefault("download.max_bytes", cfg.Download.MaxBytes)
	viper.SetDefault("download.respect_robots", cfg.Download.RespectRobots)
	viper.SetDefault("download.cache_dir", cfg.Download.CacheDir)
	viper.SetDefault("download.cache_ttl", cfg.Download.CacheTTL)
	viper.SetDefault("download.http_proxy", cfg.Download.HTTPProxy)
	viper.SetDefault("download.https_proxy", cfg.Download.HTTPSProxy)
}

// loadConfig resolves flags, env, config file and defaults into a Config
func loadConfig() (*model.Config, error) {
	cfg := &model.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Concurrency.Workers < 1 {
		return nil, fmt.Errorf("concurrency.workers must be at least 1, got %d", cfg.Concurrency.Workers)
	}
	return cfg, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
