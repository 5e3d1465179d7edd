package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"MarketInsights/internal/cache"
	"MarketInsights/internal/collector"
	"MarketInsights/internal/config"
	"MarketInsights/internal/export"
	"MarketInsights/internal/notifier"
	"MarketInsights/internal/recorder"
	"MarketInsights/internal/report"
	"MarketInsights/internal/scheduler"
)

type flags struct {
	configPath string
	source     string
	tickers    string
	start      string
	end        string
	outDir     string
	head       int
}

func main() {
	var f flags

	root := &cobra.Command{
		Use:           "insights",
		Short:         "Prepare aligned price, percent-change and mean tables for a set of tickers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", "", "path to config.yaml (default $CONFIG_PATH or configs/config.yaml)")
	root.PersistentFlags().StringVar(&f.source, "source", "", "data source: yahoo, polygon, rest, csv or mock")
	root.PersistentFlags().StringVar(&f.tickers, "tickers", "", "comma separated tickers, e.g. SPY,TLT,USO")
	root.PersistentFlags().StringVar(&f.start, "start", "", "first date, YYYY-MM-DD")
	root.PersistentFlags().StringVar(&f.end, "end", "", "last date, YYYY-MM-DD")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, prepare and print the tables once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd.Context(), f)
		},
	}
	runCmd.Flags().StringVar(&f.outDir, "out", "", "directory to write prices.csv, pct_change.csv and means.csv")
	runCmd.Flags().IntVar(&f.head, "head", 0, "rows to print from each table (default output.head_rows)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh the tables on a schedule and answer Telegram commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(f)
		},
	}

	root.AddCommand(runCmd, serveCmd)
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

func loadConfig(f flags) (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = "configs/config.yaml"
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f.source != "" {
		cfg.DataSource.Name = f.source
	}
	if f.tickers != "" {
		cfg.DataSource.Tickers = config.SplitTickers(f.tickers)
	}
	if f.start != "" {
		cfg.DataSource.StartDate = f.start
	}
	if f.end != "" {
		cfg.DataSource.EndDate = f.end
	}
	if f.outDir != "" {
		cfg.Output.Dir = f.outDir
	}
	if f.head > 0 {
		cfg.Output.HeadRows = f.head
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.Warnf("unknown log level %q, keeping %s", cfg.LogLevel, log.GetLevel())
	}
	return cfg, nil
}

func newFetcher(ctx context.Context, cfg *config.Config) (collector.Fetcher, func()) {
	var fetcher collector.Fetcher
	switch cfg.DataSource.Name {
	case config.SourcePolygon:
		fetcher = collector.NewPolygonFetcher(cfg.DataSource.PolygonAPIKey)
	case config.SourceREST:
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case config.SourceCSV:
		fetcher = collector.NewCSVFetcher(cfg.DataSource.CSVDir)
	case config.SourceMock:
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Infof("data source: %s", fetcher.Name())

	if cfg.Cache.RedisAddr == "" {
		return fetcher, func() {}
	}
	rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
	if err != nil {
		log.Warnf("redis cache disabled: %v", err)
		return fetcher, func() {}
	}
	log.Infof("series cache: redis %s (ttl %s)", cfg.Cache.RedisAddr, cfg.Cache.TTL)
	return collector.NewCachingFetcher(fetcher, rc), func() { rc.Close() }
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	switch {
	case cfg.Database.PostgresDSN != "":
		pr, err := recorder.NewPostgresRecorder(cfg.Database.PostgresDSN)
		if err == nil {
			return pr
		}
		log.Warnf("init postgres recorder failed, using noop: %v", err)
	case cfg.Database.SQLitePath != "":
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err == nil {
			return sr
		}
		log.Warnf("init sqlite recorder failed, using noop: %v", err)
	}
	return recorder.NewNoopRecorder()
}

func newCollector(ctx context.Context, cfg *config.Config) (*collector.Collector, func(), error) {
	start, end, err := cfg.Range()
	if err != nil {
		return nil, nil, err
	}
	fetcher, closeFetcher := newFetcher(ctx, cfg)
	return collector.NewCollector(fetcher, cfg.DataSource.Tickers, start, end), closeFetcher, nil
}

func runOnce(ctx context.Context, f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	col, closeFetcher, err := newCollector(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFetcher()

	ds, err := col.Collect(ctx)
	if err != nil {
		var fe *collector.FetchError
		if errors.As(err, &fe) {
			return fmt.Errorf("data fetch failed, aborting: %w", err)
		}
		return err
	}

	out := os.Stdout
	n := cfg.Output.HeadRows
	fmt.Fprintln(out, "Adjusted close:")
	report.WriteHead(out, ds.Prices, n)
	fmt.Fprintln(out, "\nPercent change:")
	report.WriteHead(out, ds.ChangesByYear, n)
	fmt.Fprintln(out, "\nMean adjusted close:")
	report.WriteMeans(out, ds.Means)
	fmt.Fprintln(out, "\nCorrelation of percent changes:")
	report.WriteCorrelations(out, ds.Correlations)

	if cfg.Output.Dir != "" {
		if err := export.WriteDataset(cfg.Output.Dir, ds); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	rec := newRecorder(cfg)
	defer rec.Close()
	if err := rec.RecordRun(recorder.NewRunSnapshot(ds)); err != nil {
		log.Errorf("record run: %v", err)
	}
	return nil
}

func serve(f flags) error {
	log.Info("MarketInsights starting...")
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	col, closeFetcher, err := newCollector(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFetcher()

	rec := newRecorder(cfg)
	defer rec.Close()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	var msg scheduler.Messenger
	if tn.Enabled() {
		msg = tn
	} else {
		log.Warn("telegram not configured, reports are only logged")
	}

	sched := scheduler.NewScheduler(ctx, col, msg, rec)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info("RUN_ON_START enabled, refreshing now")
		go func() {
			if _, err := sched.Refresh(ctx); err != nil {
				log.Errorf("refresh: %v", err)
			}
		}()
	}

	log.Infof("MarketInsights is running (refresh %q). Press Ctrl+C to stop.", cfg.Schedule.RefreshCron)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping...")
	cancel()
	log.Info("MarketInsights stopped")
	return nil
}
