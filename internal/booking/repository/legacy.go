package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"go.uber.org/zap"
)

// LoadWithLegacy tries records/<id>.json, then the main@ layouts left by
// earlier deployments. It never writes; callers persist through Store, which
// always targets the canonical key.
func (r *Records) LoadWithLegacy(ctx context.Context, refID string) (domain.BookingRecord, string, error) {
	keys := append([]string{domain.RecordKey(refID)}, domain.LegacyRecordKeys(refID)...)
	for _, key := range keys {
		rec, err := r.loadKey(ctx, key)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return domain.BookingRecord{}, "", err
		}
		if rec.RefID == "" {
			rec.RefID = refID
		}
		if key != domain.RecordKey(refID) {
			r.log.Info("record served from legacy key", zap.String("ref_id", refID), zap.String("key", key))
		}
		return rec, key, nil
	}
	return domain.BookingRecord{}, "", domain.ErrNotFound
}
