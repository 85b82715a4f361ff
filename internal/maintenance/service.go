// Package maintenance moves and deletes raw blobs outside the booking model.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/greenleaf/internal/blob"
	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"go.uber.org/zap"
)

var ErrInvalidPrefix = errors.New("invalid_prefix")

// protectedKeys are the live namespaces no maintenance prefix may touch.
var protectedKeys = []string{domain.RecordPrefix, domain.IndexKey}

type MigrateRequest struct {
	FromPrefix string `json:"fromPrefix"`
	ToPrefix   string `json:"toPrefix"`
	DryRun     bool   `json:"dryRun"`
}

type Move struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type MigrateResult struct {
	FromPrefix string `json:"fromPrefix"`
	ToPrefix   string `json:"toPrefix"`
	DryRun     bool   `json:"dryRun"`
	Count      int    `json:"count"`
	Moves      []Move `json:"moves"`
}

type CleanupRequest struct {
	Prefix string `json:"prefix"`
	// DryRun is a pointer so an omitted field can default to true.
	DryRun *bool `json:"dryRun"`
}

type CleanupResult struct {
	Prefix                string   `json:"prefix"`
	DryRun                bool     `json:"dryRun"`
	DeletedCount          int      `json:"deletedCount"`
	Deleted               []string `json:"deleted"`
	ListedNotDeletedCount int      `json:"listedNotDeletedCount"`
	ListedNotDeleted      []string `json:"listedNotDeleted"`
}

type Service struct {
	store blob.Store
	log   *zap.Logger
}

func New(store blob.Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log.Named("maintenance")}
}

// Migrate renames every key under FromPrefix to ToPrefix plus the rest of
// the key: copy first, then delete the source.
func (s *Service) Migrate(ctx context.Context, req MigrateRequest) (MigrateResult, error) {
	if err := checkPrefix(req.FromPrefix); err != nil {
		return MigrateResult{}, err
	}
	if req.FromPrefix == req.ToPrefix {
		return MigrateResult{}, fmt.Errorf("%w: source and target are the same", ErrInvalidPrefix)
	}

	infos, err := s.store.List(ctx, req.FromPrefix)
	if err != nil {
		return MigrateResult{}, domain.NewStorageError("list", req.FromPrefix, err)
	}

	result := MigrateResult{FromPrefix: req.FromPrefix, ToPrefix: req.ToPrefix, DryRun: req.DryRun, Moves: []Move{}}
	for _, info := range infos {
		move := Move{From: info.Key, To: req.ToPrefix + strings.TrimPrefix(info.Key, req.FromPrefix)}
		if !req.DryRun {
			if err := s.move(ctx, move, info.ContentType); err != nil {
				return result, err
			}
		}
		result.Moves = append(result.Moves, move)
		result.Count++
	}

	s.log.Info("blob migration finished",
		zap.String("from_prefix", req.FromPrefix),
		zap.String("to_prefix", req.ToPrefix),
		zap.Bool("dry_run", req.DryRun),
		zap.Int("count", result.Count),
	)
	return result, nil
}

func (s *Service) move(ctx context.Context, m Move, contentType string) error {
	data, err := s.store.Get(ctx, m.From)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return domain.NewStorageError("get", m.From, err)
	}
	if err := s.store.Put(ctx, m.To, data, blob.PutOptions{ContentType: contentType}); err != nil {
		return domain.NewStorageError("put", m.To, err)
	}
	if err := s.store.Delete(ctx, m.From); err != nil {
		return domain.NewStorageError("delete", m.From, err)
	}
	return nil
}

// Cleanup deletes every key under Prefix. Without an explicit dryRun=false it
// only lists what would be deleted.
func (s *Service) Cleanup(ctx context.Context, req CleanupRequest) (CleanupResult, error) {
	if err := checkPrefix(req.Prefix); err != nil {
		return CleanupResult{}, err
	}
	dryRun := req.DryRun == nil || *req.DryRun

	infos, err := s.store.List(ctx, req.Prefix)
	if err != nil {
		return CleanupResult{}, domain.NewStorageError("list", req.Prefix, err)
	}

	result := CleanupResult{Prefix: req.Prefix, DryRun: dryRun, Deleted: []string{}, ListedNotDeleted: []string{}}
	for _, info := range infos {
		if dryRun {
			result.ListedNotDeleted = append(result.ListedNotDeleted, info.Key)
			continue
		}
		if err := s.store.Delete(ctx, info.Key); err != nil {
			return result, domain.NewStorageError("delete", info.Key, err)
		}
		result.Deleted = append(result.Deleted, info.Key)
	}
	result.DeletedCount = len(result.Deleted)
	result.ListedNotDeletedCount = len(result.ListedNotDeleted)

	s.log.Info("blob cleanup finished",
		zap.String("prefix", req.Prefix),
		zap.Bool("dry_run", dryRun),
		zap.Int("deleted", result.DeletedCount),
		zap.Int("listed", result.ListedNotDeletedCount),
	)
	return result, nil
}

// checkPrefix rejects an empty prefix and any prefix that overlaps a live
// namespace in either direction.
func checkPrefix(prefix string) error {
	if strings.TrimSpace(prefix) == "" {
		return fmt.Errorf("%w: prefix is required", ErrInvalidPrefix)
	}
	for _, key := range protectedKeys {
		if strings.HasPrefix(key, prefix) || strings.HasPrefix(prefix, key) {
			return fmt.Errorf("%w: %q overlaps %q", ErrInvalidPrefix, prefix, key)
		}
	}
	return nil
}
