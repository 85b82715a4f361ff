package domain

import "context"

type SaveRequest struct {
	Body  []byte
	Admin bool
	IP    string
}

type ViewRequest struct {
	RefID string
	IP    string
}

type LockRequest struct {
	RefID  string
	Action LockAction
	IP     string
}

// SetStageRequest carries DueAt as nil when the caller did not send one.
type SetStageRequest struct {
	RefID string
	Stage string
	DueAt *string
	IP    string
}

type PrintRequest struct {
	RefID string
	IP    string
	// Render, when set, runs on the loaded record before the print event is
	// stored. An error aborts the print without writing anything.
	Render func(BookingRecord) error
}

// WriteResult reports a persisted record. Indexed is false when the record
// was stored but the secondary index could not be updated.
type WriteResult struct {
	Record  BookingRecord
	Indexed bool
}

type Service interface {
	Save(ctx context.Context, req SaveRequest) (WriteResult, error)
	View(ctx context.Context, req ViewRequest) (BookingRecord, error)
	SetLock(ctx context.Context, req LockRequest) (WriteResult, error)
	GetJob(ctx context.Context, refID string) (JobView, error)
	SetStage(ctx context.Context, req SetStageRequest) (JobView, error)
	Print(ctx context.Context, req PrintRequest) (BookingRecord, error)
	List(ctx context.Context, req ListRequest) ([]IndexEntry, error)
	Export(ctx context.Context, req ListRequest) ([]ExportRow, error)
	RebuildIndex(ctx context.Context) (int, error)
}
