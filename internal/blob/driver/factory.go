// Package driver opens the configured blob Store.
package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/smallbiznis/greenleaf/internal/blob"
	"github.com/smallbiznis/greenleaf/internal/blob/fs"
	"github.com/smallbiznis/greenleaf/internal/blob/memory"
	"github.com/smallbiznis/greenleaf/internal/blob/s3"
	"github.com/smallbiznis/greenleaf/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("blob.store",
	fx.Provide(Provide),
)

func Provide(cfg config.Config, log *zap.Logger) (blob.Store, error) {
	store, err := Open(context.Background(), cfg.Blob)
	if err != nil {
		return nil, err
	}
	log.Named("blob").Info("blob store opened", zap.String("driver", string(store.Driver())))
	return store, nil
}

// Open selects a driver from cfg.Driver; an empty value means fs.
func Open(ctx context.Context, cfg config.BlobConfig) (blob.Store, error) {
	switch blob.Driver(strings.ToLower(strings.TrimSpace(cfg.Driver))) {
	case blob.DriverFilesystem, "":
		return fs.New(cfg.FSRoot)
	case blob.DriverMemory:
		return memory.New(), nil
	case blob.DriverS3:
		return s3.New(ctx, s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			KeyPrefix: cfg.S3KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Driver)
	}
}
