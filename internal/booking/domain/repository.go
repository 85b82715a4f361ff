package domain

import "context"

type RecordRepository interface {
	// Load reads the canonical key only.
	Load(ctx context.Context, refID string) (BookingRecord, error)
	Store(ctx context.Context, rec BookingRecord) error
	List(ctx context.Context) ([]BookingRecord, error)
}

// LegacyReader probes the canonical key and then LegacyRecordKeys, returning
// the key that matched.
type LegacyReader interface {
	LoadWithLegacy(ctx context.Context, refID string) (BookingRecord, string, error)
}

type IndexRepository interface {
	// Load returns nil without error when index.json is absent or malformed.
	Load(ctx context.Context) ([]IndexEntry, error)
	Upsert(ctx context.Context, entry IndexEntry) error
	Replace(ctx context.Context, entries []IndexEntry) error
}
