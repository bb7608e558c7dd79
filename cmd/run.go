package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/UnknownOlympus/geocheck/internal/cache"
	"github.com/UnknownOlympus/geocheck/internal/config"
	"github.com/UnknownOlympus/geocheck/internal/geocoding"
	"github.com/UnknownOlympus/geocheck/internal/metrics"
	"github.com/UnknownOlympus/geocheck/internal/repository"
	"github.com/UnknownOlympus/geocheck/internal/service"
	"github.com/UnknownOlympus/geocheck/internal/table"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
)

// providerFactory creates the geocoding provider. Tests replace it.
var providerFactory = geocoding.NewProvider

// run performs one check with a validated configuration.
func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger := setupLogger(cfg.Env, stderr)

	if !cfg.DryRun {
		if err := config.LoadEnvFile(cfg.EnvFile); err != nil {
			logger.WarnContext(ctx, "Env file ignored", "error", err)
		}
		if err := cfg.ResolveAPIKey(); err != nil {
			return err
		}
	}

	input, err := os.Open(cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer input.Close()

	rows, err := table.NewReader(input, table.Columns{
		ID:        cfg.IDColumn,
		Address:   cfg.AddressColumn,
		Latitude:  cfg.LatColumn,
		Longitude: cfg.LngColumn,
	})
	if err != nil {
		return err
	}

	if cfg.DryRun {
		return printColumns(stdout, rows.Columns())
	}

	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	// Create geocoding provider using factory pattern based on configuration.
	provider, err := providerFactory(geocoding.ProviderConfig{
		Type:     geocoding.ProviderType(cfg.Provider),
		APIKey:   cfg.APIKey,
		Timeout:  cfg.Timeout,
		CABundle: cfg.CABundle,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.Provider)

	store, closeStore := openStore(ctx, cfg, logger)
	defer closeStore()

	var results *cache.Cache
	if store != nil {
		results = cache.Open(ctx, store, logger)
	}

	geocoder := cache.NewGeocoder(provider, cfg.Provider, results, appMetrics, logger)
	evaluator := service.NewEvaluator(geocoder, cfg.Tolerance(), cfg.Delay(), logger)
	progress := newProgress(cfg.Progress, stderr, cfg.MaxRows)
	checker := service.NewChecker(evaluator, appMetrics, cfg.MaxRows, progress, logger)

	report, err := checker.Run(ctx, rows)
	if finisher, ok := progress.(interface{ Finish() error }); ok {
		_ = finisher.Finish()
	}
	if err != nil {
		return err
	}

	// Outputs are written even when the run was interrupted.
	outCtx := context.WithoutCancel(ctx)

	if err = writeMismatches(cfg.MismatchesOutput, rows.Header(), report.Mismatches); err != nil {
		return err
	}

	info := service.RunInfo{
		Input:            cfg.Input,
		MismatchesOutput: cfg.MismatchesOutput,
		ToleranceMeters:  cfg.Tolerance(),
	}
	if cfg.CacheDSN == "" {
		info.CacheFile = cfg.CacheFile
	}
	summary := report.Tally.Summary(info, geocoder.Hits(), geocoder.Misses())
	if err = writeSummary(stdout, cfg.SummaryOutput, summary); err != nil {
		return err
	}

	if store != nil {
		cache.Flush(outCtx, store, results, logger)
	}

	if cfg.MetricsOutput != "" {
		if err = metrics.WriteTextfile(cfg.MetricsOutput, reg); err != nil {
			logger.WarnContext(outCtx, "Metrics not written", "error", err)
		}
	}

	if report.Interrupted {
		return fmt.Errorf("run interrupted after %d rows: %w", report.Tally.TotalRows, context.Cause(ctx))
	}

	return nil
}

// openStore picks the cache store. It returns a nil store when caching is off or
// the database cannot be used.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, func()) {
	noop := func() {}

	switch {
	case cfg.CacheDSN != "":
		pool, err := repository.NewDatabase(ctx, cfg.CacheDSN)
		if err != nil {
			logger.WarnContext(ctx, "Geocode cache database unavailable, caching disabled", "error", err)
			return nil, noop
		}

		repo := repository.NewRepository(pool, logger)
		if err = repo.CreateSchema(ctx); err != nil {
			logger.WarnContext(ctx, "Geocode cache database unusable, caching disabled", "error", err)
			pool.Close()
			return nil, noop
		}

		return repo, pool.Close
	case cfg.CacheFile != "":
		return cache.NewFileStore(cfg.CacheFile), noop
	default:
		return nil, noop
	}
}

// newProgress returns a progress bar on w according to mode, or nil.
// In auto mode the bar is shown only when w is a terminal.
func newProgress(mode string, w io.Writer, maxRows int) service.Progress {
	switch mode {
	case "never":
		return nil
	case "auto":
		f, ok := w.(*os.File)
		if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
			return nil
		}
	}

	total := -1
	if maxRows > 0 {
		total = maxRows
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Checking rows"),
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func printColumns(w io.Writer, columns table.Columns) error {
	_, err := fmt.Fprintf(w, "Dry run OK: required columns found:\n- id: %s\n- address: %s\n- latitude: %s\n- longitude: %s\n",
		columns.ID, columns.Address, columns.Latitude, columns.Longitude)
	if err != nil {
		return fmt.Errorf("failed to write dry run report: %w", err)
	}

	return nil
}

func writeMismatches(path string, header []string, records []table.MismatchRecord) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mismatches output: %w", err)
	}

	if err = table.WriteMismatches(out, header, records); err != nil {
		out.Close()
		return err
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("failed to close mismatches output: %w", err)
	}

	return nil
}

// writeSummary prints the summary to stdout and, when path is set, to a file.
func writeSummary(stdout io.Writer, path string, summary service.Summary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	data = append(data, '\n')

	if _, err = stdout.Write(data); err != nil {
		return fmt.Errorf("failed to print summary: %w", err)
	}

	if path == "" {
		return nil
	}

	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary output: %w", err)
	}

	return nil
}
