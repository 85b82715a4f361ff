package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/smallbiznis/greenleaf/internal/blob"
	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Repositories struct {
	fx.Out

	Records domain.RecordRepository
	Legacy  domain.LegacyReader
	Index   domain.IndexRepository
}

func Provide(store blob.Store, log *zap.Logger) Repositories {
	records := NewRecords(store, log)
	return Repositories{
		Records: records,
		Legacy:  records,
		Index:   NewIndex(store, log),
	}
}

// Records stores one JSON document per booking under records/<refId>.json.
type Records struct {
	store blob.Store
	log   *zap.Logger
}

func NewRecords(store blob.Store, log *zap.Logger) *Records {
	return &Records{store: store, log: log.Named("booking.records")}
}

func (r *Records) Load(ctx context.Context, refID string) (domain.BookingRecord, error) {
	return r.loadKey(ctx, domain.RecordKey(refID))
}

func (r *Records) Store(ctx context.Context, rec domain.BookingRecord) error {
	key := domain.RecordKey(rec.RefID)
	data, err := json.Marshal(rec)
	if err != nil {
		return domain.NewStorageError("encode", key, err)
	}
	if err := r.store.Put(ctx, key, data, blob.JSON); err != nil {
		return domain.NewStorageError("put", key, err)
	}
	return nil
}

// List loads every record under records/. Documents that cannot be decoded
// are skipped.
func (r *Records) List(ctx context.Context) ([]domain.BookingRecord, error) {
	infos, err := r.store.List(ctx, domain.RecordPrefix)
	if err != nil {
		return nil, domain.NewStorageError("list", domain.RecordPrefix, err)
	}

	records := make([]domain.BookingRecord, 0, len(infos))
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, ".json") {
			continue
		}
		rec, err := r.loadKey(ctx, info.Key)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			continue
		case errors.Is(err, errUndecodable):
			r.log.Warn("skipping unreadable record", zap.String("key", info.Key), zap.Error(err))
			continue
		case err != nil:
			return nil, err
		}
		if rec.RefID == "" {
			rec.RefID = domain.RefIDFromKey(info.Key)
		}
		records = append(records, rec)
	}
	return records, nil
}

var errUndecodable = errors.New("undecodable record")

func (r *Records) loadKey(ctx context.Context, key string) (domain.BookingRecord, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return domain.BookingRecord{}, domain.ErrNotFound
		}
		return domain.BookingRecord{}, domain.NewStorageError("get", key, err)
	}
	var rec domain.BookingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.BookingRecord{}, domain.NewStorageError("decode", key, errors.Join(errUndecodable, err))
	}
	rec.Normalize()
	return rec, nil
}
