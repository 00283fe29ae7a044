package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkcheck/config"
	"linkcheck/internal/app/crawler"
	"linkcheck/internal/app/fetcher"
	"linkcheck/internal/app/handlers"
	"linkcheck/internal/app/metrics"
	"linkcheck/internal/app/requester"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	var configPath, format string
	var workers int
	flag.StringVar(&configPath, "config-path", "config/config.toml", "path to config file in .toml format")
	flag.IntVar(&workers, "workers", 0, "number of parallel fetchers, overrides the config file")
	flag.StringVar(&format, "format", handlers.FormatText, "report format: text or json")
	flag.Parse()

	cfg, cfgErr := config.Load(configPath)
	if flag.NArg() > 0 {
		cfg.URL = flag.Arg(0)
	}
	if workers > 0 {
		cfg.Workers = workers
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize logger: %v\n", err)
		return 2
	}
	defer logger.Sync()

	if cfgErr != nil {
		if !errors.Is(cfgErr, fs.ErrNotExist) {
			logger.Error("can't read config file", zap.Error(cfgErr))
			return 2
		}
		logger.Debug("can't find configs file. using default values", zap.Error(cfgErr))
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 2
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer stopMetrics(srv, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := requester.NewRequester(cfg.RequestTimeout(), logger, nil,
		requester.WithUserAgent(cfg.UserAgent),
		requester.WithMaxBodyBytes(cfg.MaxBodyBytes))
	f := fetcher.NewFetcher(r, logger, m)
	cr := crawler.NewCrawler(f, logger, cfg.Workers, m)

	report, err := cr.Run(ctx, cfg.URL)
	if err != nil {
		logger.Error("crawl failed", zap.Error(err))
		return 2
	}
	if ctx.Err() != nil {
		logger.Warn("crawl interrupted, unfinished pages are reported as transport errors")
	}

	if err := handlers.ProcessReport(os.Stdout, report, format, logger); err != nil {
		logger.Error("can't write report", zap.Error(err))
		return 2
	}
	if len(report.BadURLs) > 0 {
		return 1
	}
	return 0
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	return zc.Build()
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	logger.Info("metrics server started", zap.String("addr", addr))
	return srv
}

func stopMetrics(srv *http.Server, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown failed", zap.Error(err))
		return
	}
	logger.Debug("metrics server stopped")
}
