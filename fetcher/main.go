// Command fetcher refreshes the local bill dataset from the upstream
// scraper output. Downloads are schema-validated before they replace the
// previous file, so a bad upstream run never clobbers a good dataset.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/peachstatelabs/gabills/internal/config"
	"github.com/peachstatelabs/gabills/internal/dataset"
	"github.com/peachstatelabs/gabills/internal/logger"
	"github.com/peachstatelabs/gabills/internal/schema"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("fetcher")
	cfg, err := config.LoadFetcher()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if cfg.Once {
		if err := refresh(ctx, log, cfg); err != nil {
			log.Error("fetch failed", slog.Any("err", err))
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("fetcher running",
		slog.String("url", cfg.DatasetURL),
		slog.String("path", cfg.DatasetPath),
		slog.Duration("interval", cfg.Interval),
	)

	// Run immediately on start; a failed run waits for the next tick.
	if err := refresh(ctx, log, cfg); err != nil {
		log.Warn("initial fetch failed (will retry on next interval)", slog.Any("err", err))
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			if err := refresh(ctx, log, cfg); err != nil {
				log.Warn("fetch failed (will retry on next interval)", slog.Any("err", err))
			}
		}
	}
}

// refresh downloads, validates, and atomically replaces the dataset.
// Download attempts back off exponentially, capped at 30s between tries.
func refresh(ctx context.Context, log *slog.Logger, cfg *config.Fetcher) error {
	subCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	var raw []byte
	var err error
	delay := cfg.RetryBase
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		raw, err = dataset.Download(subCtx, cfg.DatasetURL)
		if err == nil {
			break
		}
		log.Warn("download failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt),
			slog.Int("max_retries", cfg.MaxRetries),
			slog.Duration("retry_in", delay),
		)
		select {
		case <-time.After(delay):
		case <-subCtx.Done():
			return subCtx.Err()
		}
		delay *= 2
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
	}
	if err != nil {
		return err
	}

	report := schema.ValidateData(raw)
	if !report.Valid() {
		for _, msg := range report.Errors {
			log.Warn("schema violation", slog.String("detail", msg))
		}
		log.Error("downloaded dataset failed validation, keeping previous file",
			slog.Int("total", report.TotalBills),
			slog.Int("invalid", report.InvalidBills),
		)
		return nil
	}

	if err := dataset.WriteFile(cfg.DatasetPath, raw); err != nil {
		return err
	}

	log.Info("dataset refreshed",
		slog.String("path", cfg.DatasetPath),
		slog.Int("bills", report.TotalBills),
	)
	return nil
}
