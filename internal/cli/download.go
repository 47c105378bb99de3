package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/ppiankov/coursegrid/internal/cache"
	"github.com/ppiankov/coursegrid/internal/download"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	term     string
	noCache  bool
	noRobots bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download and unpack a term's timetable archive",
	Long: `Download fetches the RAR archive of timetable pages for a term and
extracts the pages into the input directory.

The term code is the ROC year followed by the semester (1 or 2). Without
--term the current term is derived from today's date.

Example:
  coursegrid download
  coursegrid download --term 1131 --dest data
  coursegrid download --no-cache --https-proxy http://proxy:3128`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&term, "term", "", "term code such as 1131 (default: current term)")
	downloadCmd.Flags().String("dest", "data", "directory to extract pages into")
	downloadCmd.Flags().Duration("timeout", 2*time.Minute, "download timeout")
	downloadCmd.Flags().String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	downloadCmd.Flags().String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
	downloadCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable archive cache (force fresh download)")
	downloadCmd.Flags().BoolVar(&noRobots, "no-robots", false, "do not consult robots.txt")

	_ = viper.BindPFlag("download.dest_dir", downloadCmd.Flags().Lookup("dest"))
	_ = viper.BindPFlag("download.timeout", downloadCmd.Flags().Lookup("timeout"))
	_ = viper.BindPFlag("download.http_proxy", downloadCmd.Flags().Lookup("http-proxy"))
	_ = viper.BindPFlag("download.https_proxy", downloadCmd.Flags().Lookup("https-proxy"))
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noRobots {
		cfg.Download.RespectRobots = false
	}
	if term == "" {
		term = download.TermCode(time.Now())
	}

	var archiveCache cache.Cache
	if !noCache {
		archiveCache = cache.NewLayeredCache(cfg.Download.CacheTTL, cfg.Download.CacheDir, cfg.Download.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Download.Timeout)
	defer cancel()

	d := download.NewDownloader(cfg.Download, archiveCache, slog.Default())
	summary, err := d.Run(ctx, term)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Downloaded: %s\n", summary.URL)
	fmt.Fprintf(out, "Extracted %d files under %s to %s\n", summary.Files, cfg.Download.Prefix, summary.Dest)
	slog.Debug("download complete", "term", summary.Term, "bytes", summary.Bytes, "cached", summary.Cached)
	return nil
}
