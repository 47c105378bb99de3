package download

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/coursegrid/internal/cache"
	"github.com/ppiankov/coursegrid/internal/model"
	"github.com/ppiankov/coursegrid/internal/util"
)

// Downloader fetches a term's archive and extracts its pages
type Downloader struct {
	fetcher *Fetcher
	robots  *util.RobotsChecker // nil when robots.txt is not consulted
	cache   cache.Cache         // nil when caching is disabled
	config  model.DownloadConfig
	logger  *slog.Logger
}

// NewDownloader creates a downloader. A nil archive cache disables caching.
func NewDownloader(cfg model.DownloadConfig, archiveCache cache.Cache, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Downloader{
		fetcher: NewFetcher(cfg.Timeout, cfg.UserAgent, cfg.MaxBytes, cfg.HTTPProxy, cfg.HTTPSProxy),
		cache:   archiveCache,
		config:  cfg,
		logger:  logger,
	}
	if cfg.RespectRobots {
		d.robots = util.NewRobotsChecker(cfg.UserAgent, 10*time.Second)
	}
	return d
}

// Summary describes a completed download
type Summary struct {
	Term   string
	URL    string
	Bytes  int
	Cached bool
	Files  int
	Dest   string
}

// Archive returns the archive bytes for url, from the cache when possible
func (d *Downloader) Archive(ctx context.Context, url string) ([]byte, bool, error) {
	key := cache.CacheKey(url)
	if d.cache != nil {
		if data, ok := d.cache.Get(key); ok {
			d.logger.Debug("archive cache hit", "url", url)
			return data, true, nil
		}
	}

	if d.robots != nil {
		allowed, delay, err := d.robots.CanFetch(ctx, url)
		if err != nil {
			return nil, false, fmt.Errorf("check robots.txt: %w", err)
		}
		if !allowed {
			return nil, false, fmt.Errorf("download disallowed by robots.txt: %s", url)
		}
		if delay > 0 {
			d.logger.Debug("honoring crawl delay", "delay", delay)
			select {
			case <-ctx.Done():
				return nil, false, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	result, err := d.fetcher.FetchWithRetry(ctx, url)
	if err != nil {
		return nil, false, fmt.Errorf("download %s: %w", url, err)
	}

	if d.cache != nil {
		if err := d.cache.Set(key, result.Body, d.config.CacheTTL); err != nil {
			d.logger.Warn("failed to cache archive", "error", err)
		}
	}
	return result.Body, false, nil
}

// Run downloads the archive for term and extracts the configured prefix
func (d *Downloader) Run(ctx context.Context, term string) (*Summary, error) {
	url := ArchiveURL(d.config.URLTemplate, term)
	d.logger.Info("downloading archive", "term", term, "url", url)

	data, cached, err := d.Archive(ctx, url)
	if err != nil {
		return nil, err
	}

	n, err := ExtractPrefix(data, d.config.Prefix, d.config.DestDir)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}

	return &Summary{
		Term:   term,
		URL:    url,
		Bytes:  len(data),
		Cached: cached,
		Files:  n,
		Dest:   d.config.DestDir,
	}, nil
}
