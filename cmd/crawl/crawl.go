package crawl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"catalogcrawl/catalog"
	"catalogcrawl/config"
	"catalogcrawl/crawler"
	"catalogcrawl/log"
	"catalogcrawl/oops"
	"catalogcrawl/rundb"

	"github.com/spf13/cobra"
)

const (
	exitOk        = 0
	exitFailure   = 1
	exitTruncated = 2
)

var Crawl *cobra.Command

func init() {
	Crawl = &cobra.Command{
		Use:   "crawl",
		Short: "Walk the catalog and merge new records into the store",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			os.Exit(crawl(cmd.Context()))
		},
	}
	Crawl.Flags().StringVar(&configPath, "config", "", "YAML file overlaid on the environment defaults")
	Crawl.Flags().StringVar(&storeLocation, "store", "", "csv/json path or postgres:// url")
	Crawl.Flags().BoolVar(&replay, "replay", false, "render from recorded snapshots instead of a browser")
	Crawl.Flags().BoolVar(&recordSnapshots, "record", false, "save rendered pages to the run database")
	Crawl.Flags().StringVar(&runDbPath, "snapshots", "", "run database path (overrides run_db.path)")
	Crawl.Flags().IntVar(&maxPages, "max-pages", -1, "stop after this many pages, 0 for no limit")
	Crawl.Flags().StringVar(&summaryPath, "summary", "", "write the run summary as JSON to this file (- for stdout)")
}

var configPath string
var storeLocation string
var replay bool
var recordSnapshots bool
var runDbPath string
var maxPages int
var summaryPath string

func crawl(ctx context.Context) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %s\n", oops.FullString(err))
		return exitFailure
	}

	logger, err := log.New(log.Options{
		Level:   cfg.Log.Level,
		Console: cfg.Log.Console,
		File:    cfg.Log.File,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %s\n", oops.FullString(err))
		return exitFailure
	}
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Logger close error: %v\n", err)
		}
	}()

	result, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Crawl failed")
		return exitFailure
	}

	if summaryPath != "" {
		if err := writeSummary(summaryPath, result); err != nil {
			logger.Error().Err(err).Msg("Couldn't write summary")
			return exitFailure
		}
	}
	if result.Truncated() && cfg.Crawl.FailOnTruncation {
		logger.Warn().Str("run_id", result.RunId).Msg("Crawl was truncated by a page that never rendered")
		return exitTruncated
	}
	return exitOk
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if storeLocation != "" {
		cfg.Store.Location = storeLocation
	}
	if runDbPath != "" {
		cfg.RunDb.Path = runDbPath
	}
	if maxPages >= 0 {
		cfg.Catalog.MaxPages = maxPages
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config, logger *log.TimestampLogger) (*crawler.SyncResult, error) {
	crawlLogger := &crawler.ZeroLogger{Logger: logger}
	logger.Info().
		Str("env", cfg.Env.String()).
		Str("catalog", cfg.Catalog.BaseUrl).
		Str("store", cfg.Store.Location).
		Bool("replay", replay).
		Msg("Starting crawl")

	store, releaseStore, err := catalog.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, oops.Wrapf(err, "open store")
	}
	defer releaseStore()

	var maybeRunDb *rundb.DB
	if cfg.RunDb.Path != "" {
		maybeRunDb, err = rundb.Open(cfg.RunDb.Path)
		if err != nil {
			return nil, oops.Wrapf(err, "open run db")
		}
		defer func() {
			if err := maybeRunDb.Close(); err != nil {
				logger.Warn().Err(err).Msg("Run db close error")
			}
		}()
	} else if replay || recordSnapshots {
		return nil, oops.New("--replay and --record need a run database")
	}

	renderer, err := openRenderer(cfg, maybeRunDb, crawlLogger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			logger.Warn().Err(err).Msg("Renderer close error")
		}
	}()

	var clock crawler.Clock = crawler.RealClock{}
	if replay {
		clock = noDelayClock{}
	}
	scraper := crawler.NewPageScraper(renderer, cfg, clock, crawlLogger)
	walker := crawler.NewWalker(scraper, cfg, clock, crawlLogger)
	engine := catalog.NewMergeEngine(store, logger)
	var maybeRecorder crawler.RunRecorder
	if maybeRunDb != nil {
		maybeRecorder = maybeRunDb
	}
	syncer := crawler.NewSyncer(engine, walker, store.Location(), maybeRecorder, crawlLogger)
	return syncer.Run(ctx)
}

func openRenderer(cfg config.Config, maybeRunDb *rundb.DB, logger crawler.Logger) (crawler.Renderer, error) {
	if replay {
		logger.Info("Replaying snapshots from %s", cfg.RunDb.Path)
		return crawler.NewHtmlRenderer(maybeRunDb), nil
	}

	rodRenderer, err := crawler.NewRodRenderer(cfg.Browser, cfg.Crawl.NavigationTimeout, logger)
	if err != nil {
		return nil, oops.Wrapf(err, "start browser")
	}
	if recordSnapshots {
		return crawler.NewCachingRenderer(rodRenderer, maybeRunDb, logger), nil
	}
	return rodRenderer, nil
}

// Replayed pages are static, there is nothing to wait for.
type noDelayClock struct{}

func (noDelayClock) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
