package scheduler

import (
	"context"

	"github.com/smallbiznis/greenleaf/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(StartScheduler),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval: cfg.Index.RebuildInterval,
		JobTimeout:  cfg.Index.RebuildTimeout,
	}.withDefaults()
}

// StartScheduler runs the loop for the app lifetime unless the rebuild
// interval is zero.
func StartScheduler(lc fx.Lifecycle, cfg config.Config, sched *Scheduler, log *zap.Logger) {
	if cfg.Index.RebuildInterval <= 0 {
		log.Info("index rebuild scheduler disabled")
		return
	}

	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go sched.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}
