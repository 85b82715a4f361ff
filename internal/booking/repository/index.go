package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/smallbiznis/greenleaf/internal/blob"
	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"go.uber.org/zap"
)

// Index keeps index.json, a JSON array of domain.IndexEntry.
type Index struct {
	store blob.Store
	log   *zap.Logger
}

func NewIndex(store blob.Store, log *zap.Logger) *Index {
	return &Index{store: store, log: log.Named("booking.index")}
}

func (i *Index) Load(ctx context.Context) ([]domain.IndexEntry, error) {
	data, err := i.store.Get(ctx, domain.IndexKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, domain.NewStorageError("get", domain.IndexKey, err)
	}
	var entries []domain.IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		i.log.Warn("index is malformed, treating as empty", zap.Error(err))
		return nil, nil
	}
	return entries, nil
}

// Upsert replaces the entry with the same id or appends it.
func (i *Index) Upsert(ctx context.Context, entry domain.IndexEntry) error {
	entries, err := i.Load(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for idx := range entries {
		if entries[idx].ID == entry.ID {
			entries[idx] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	return i.Replace(ctx, entries)
}

func (i *Index) Replace(ctx context.Context, entries []domain.IndexEntry) error {
	if entries == nil {
		entries = []domain.IndexEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return domain.NewStorageError("encode", domain.IndexKey, err)
	}
	if err := i.store.Put(ctx, domain.IndexKey, data, blob.JSON); err != nil {
		return domain.NewStorageError("put", domain.IndexKey, err)
	}
	return nil
}
