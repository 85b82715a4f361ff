// Command reindex rebuilds index.json from every stored record and exits.
package main

import (
	"context"
	"os"
	"time"

	"github.com/smallbiznis/greenleaf/internal/blob/driver"
	"github.com/smallbiznis/greenleaf/internal/booking"
	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"github.com/smallbiznis/greenleaf/internal/clock"
	"github.com/smallbiznis/greenleaf/internal/config"
	"github.com/smallbiznis/greenleaf/internal/observability"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	var log *zap.Logger
	app := fx.New(
		config.Module,
		observability.Module,
		clock.Module,
		driver.Module,
		booking.Module,
		fx.Invoke(rebuild),
		fx.Populate(&log),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		fallbackLogger(log).Error("reindex setup failed", zap.Error(err))
		os.Exit(1)
	}
	log = log.Named("reindex")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		log.Error("reindex failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	if err := app.Stop(ctx); err != nil {
		log.Error("reindex shutdown failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

// fallbackLogger covers failures that happen before the logger is built.
func fallbackLogger(log *zap.Logger) *zap.Logger {
	if log != nil {
		return log
	}
	if l, err := zap.NewProduction(); err == nil {
		return l
	}
	return zap.NewNop()
}

func rebuild(cfg config.Config, svc domain.Service, log *zap.Logger) error {
	timeout := cfg.Index.RebuildTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log = log.Named("reindex")
	count, err := svc.RebuildIndex(ctx)
	if err != nil {
		log.Error("index rebuild failed", zap.Error(err))
		return err
	}
	log.Info("index rebuilt", zap.Int("count", count))
	return nil
}
