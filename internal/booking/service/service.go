package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"github.com/smallbiznis/greenleaf/internal/clock"
	"github.com/smallbiznis/greenleaf/internal/config"
	"github.com/smallbiznis/greenleaf/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Config  config.Config
	Records domain.RecordRepository
	Legacy  domain.LegacyReader
	Index   domain.IndexRepository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	records domain.RecordRepository
	legacy  domain.LegacyReader
	index   domain.IndexRepository
	metrics *metrics.Metrics

	maxPayloadBytes int64
	logSalt         string
}

func New(p Params) domain.Service {
	maxPayload := p.Config.MaxPayloadBytes
	if maxPayload <= 0 {
		maxPayload = config.DefaultMaxPayloadBytes
	}
	return &Service{
		log:             p.Log.Named("booking.service"),
		clock:           p.Clock,
		records:         p.Records,
		legacy:          p.Legacy,
		index:           p.Index,
		metrics:         p.Metrics,
		maxPayloadBytes: maxPayload,
		logSalt:         p.Config.LogSalt,
	}
}

func (s *Service) now() string {
	return domain.FormatTimestamp(s.clock.Now())
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (domain.WriteResult, error) {
	if int64(len(req.Body)) > s.maxPayloadBytes {
		return domain.WriteResult{}, domain.ErrPayloadTooLarge
	}
	payload, err := domain.DecodeSavePayload(req.Body)
	if err != nil {
		return domain.WriteResult{}, err
	}

	existing, err := s.records.Load(ctx, payload.RefID)
	created := errors.Is(err, domain.ErrNotFound)
	if err != nil && !created {
		return domain.WriteResult{}, err
	}
	if !created && existing.Locked && !req.Admin {
		return domain.WriteResult{}, domain.ErrRecordLocked
	}

	now := s.now()
	rec := existing
	if created {
		rec = domain.BookingRecord{
			RefID:  payload.RefID,
			TS:     payload.TS,
			Events: []domain.Event{},
		}
		if rec.TS == "" {
			rec.TS = now
		}
	}
	rec.RefID = payload.RefID
	if payload.Form != nil {
		rec.Form = payload.Form
	}
	if payload.Terms != nil {
		rec.Terms = payload.Terms
	}
	rec.Version++

	eventType := domain.EventUpdate
	if created {
		eventType = domain.EventCreate
	}
	actor := domain.ActorUser
	if req.Admin {
		actor = domain.ActorAdmin
	}
	rec.AppendEvent(domain.Event{Type: eventType, TS: now, Actor: actor, IP: req.IP})

	if err := s.records.Store(ctx, rec); err != nil {
		return domain.WriteResult{}, err
	}
	s.metrics.RecordBookingWrite(ctx, string(eventType))

	return domain.WriteResult{Record: rec, Indexed: s.syncIndex(ctx, rec, eventType)}, nil
}

// View loads a record, counts the view and returns it. A failure to persist
// the view is logged and the record is returned as it was loaded.
func (s *Service) View(ctx context.Context, req domain.ViewRequest) (domain.BookingRecord, error) {
	refID, err := domain.ValidateRefID(req.RefID)
	if err != nil {
		return domain.BookingRecord{}, err
	}
	loaded, key, err := s.legacy.LoadWithLegacy(ctx, refID)
	if err != nil {
		return domain.BookingRecord{}, err
	}

	rec := cloneRecord(loaded)
	rec.Metrics.Views++
	rec.Version++
	rec.AppendEvent(domain.Event{
		Type:    domain.EventView,
		TS:      s.now(),
		Actor:   domain.ActorUser,
		IPHash:  hashIP(req.IP, s.logSalt),
		IPTrunc: truncateIP(req.IP),
	})

	if err := s.records.Store(ctx, rec); err != nil {
		s.log.Warn("failed to record view", zap.String("ref_id", refID), zap.String("key", key), zap.Error(err))
		return loaded, nil
	}
	s.metrics.RecordBookingWrite(ctx, string(domain.EventView))
	s.syncIndex(ctx, rec, domain.EventView)
	return rec, nil
}

func (s *Service) SetLock(ctx context.Context, req domain.LockRequest) (domain.WriteResult, error) {
	refID, err := domain.ValidateRefID(req.RefID)
	if err != nil {
		return domain.WriteResult{}, err
	}
	action, err := domain.ParseLockAction(string(req.Action))
	if err != nil {
		return domain.WriteResult{}, err
	}
	rec, err := s.records.Load(ctx, refID)
	if err != nil {
		return domain.WriteResult{}, err
	}

	now := s.now()
	eventType := domain.EventLock
	if action == domain.ActionLock {
		rec.Locked = true
		rec.LockedAt = now
	} else {
		eventType = domain.EventUnlock
		rec.Locked = false
		rec.UnlockedAt = now
	}
	rec.Version++
	rec.AppendEvent(domain.Event{Type: eventType, TS: now, Actor: domain.ActorAdmin, IP: req.IP})

	if err := s.records.Store(ctx, rec); err != nil {
		return domain.WriteResult{}, err
	}
	s.metrics.RecordBookingWrite(ctx, string(eventType))
	return domain.WriteResult{Record: rec, Indexed: s.syncIndex(ctx, rec, eventType)}, nil
}

func (s *Service) GetJob(ctx context.Context, refID string) (domain.JobView, error) {
	id, err := domain.ValidateRefID(refID)
	if err != nil {
		return domain.JobView{}, err
	}
	rec, err := s.records.Load(ctx, id)
	if err != nil {
		return domain.JobView{}, err
	}
	return rec.JobView(s.clock.Now()), nil
}

func (s *Service) SetStage(ctx context.Context, req domain.SetStageRequest) (domain.JobView, error) {
	refID, err := domain.ValidateRefID(req.RefID)
	if err != nil {
		return domain.JobView{}, err
	}
	stage, err := domain.ParseStage(req.Stage)
	if err != nil {
		return domain.JobView{}, err
	}
	rec, err := s.records.Load(ctx, refID)
	if err != nil {
		return domain.JobView{}, err
	}

	now := s.clock.Now()
	ts := domain.FormatTimestamp(now)
	job := domain.DefaultJob(rec, now)
	if rec.Job != nil {
		job = *rec.Job
	}
	if job.CurrentStage != stage {
		rec.History = append(rec.History, domain.HistoryEntry{Stage: stage, At: ts})
		job.CurrentStage = stage
	}
	// An empty dueAt is treated as absent; the prior value is kept.
	if req.DueAt != nil {
		if v := normalizeDueAt(*req.DueAt); v != nil {
			job.DueAt = v
		}
	}
	rec.Job = &job
	rec.Version++
	rec.AppendEvent(domain.Event{Type: domain.EventStage, TS: ts, Actor: domain.ActorAdmin, IP: req.IP})

	if err := s.records.Store(ctx, rec); err != nil {
		return domain.JobView{}, err
	}
	s.metrics.RecordBookingWrite(ctx, string(domain.EventStage))
	s.syncIndex(ctx, rec, domain.EventStage)
	return rec.JobView(now), nil
}

// Print renders the record through req.Render and then records the print
// event best-effort. The returned record reflects the event only when it was
// persisted.
func (s *Service) Print(ctx context.Context, req domain.PrintRequest) (domain.BookingRecord, error) {
	refID, err := domain.ValidateRefID(req.RefID)
	if err != nil {
		return domain.BookingRecord{}, err
	}
	loaded, err := s.records.Load(ctx, refID)
	if err != nil {
		return domain.BookingRecord{}, err
	}
	if req.Render != nil {
		if err := req.Render(loaded); err != nil {
			return domain.BookingRecord{}, err
		}
	}

	rec := cloneRecord(loaded)
	rec.Version++
	rec.AppendEvent(domain.Event{Type: domain.EventPrint, TS: s.now(), Actor: domain.ActorUser, IP: req.IP})
	if err := s.records.Store(ctx, rec); err != nil {
		s.log.Warn("failed to record print", zap.String("ref_id", refID), zap.Error(err))
		return loaded, nil
	}
	s.metrics.RecordBookingWrite(ctx, string(domain.EventPrint))
	s.syncIndex(ctx, rec, domain.EventPrint)
	return rec, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.IndexEntry, error) {
	entries, err := s.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortEntries(entries)
	if len(entries) == 0 {
		entries, err = s.scanEntries(ctx)
		if err != nil {
			return nil, err
		}
	}
	return domain.FilterEntries(entries, req), nil
}

func (s *Service) Export(ctx context.Context, req domain.ListRequest) ([]domain.ExportRow, error) {
	limit := domain.NormalizeLimit(req.Limit)

	entries, err := s.index.Load(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortEntries(entries)
	rows := make([]domain.ExportRow, 0)
	for _, entry := range entries {
		if len(rows) >= limit {
			break
		}
		if !entry.Matches(req.Query) {
			continue
		}
		rec, err := s.records.Load(ctx, entry.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		row := domain.ProjectExportRow(rec)
		if !row.Matches(req.Query) {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		return rows, nil
	}

	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]domain.ExportRow, 0, len(records))
	for _, rec := range records {
		all = append(all, domain.ProjectExportRow(rec))
	}
	sortRows(all)
	for _, row := range all {
		if len(rows) >= limit {
			break
		}
		if row.Matches(req.Query) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *Service) RebuildIndex(ctx context.Context) (int, error) {
	entries, err := s.scanEntries(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Replace(ctx, entries); err != nil {
		return 0, fmt.Errorf("replace index: %w", err)
	}
	s.log.Info("index rebuilt", zap.Int("count", len(entries)))
	return len(entries), nil
}

func (s *Service) scanEntries(ctx context.Context) ([]domain.IndexEntry, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.IndexEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, domain.ProjectIndexEntry(rec))
	}
	domain.SortEntries(entries)
	return entries, nil
}

// syncIndex is the second phase of every write. Failures are counted and
// logged, never returned.
func (s *Service) syncIndex(ctx context.Context, rec domain.BookingRecord, eventType domain.EventType) bool {
	if err := s.index.Upsert(ctx, domain.ProjectIndexEntry(rec)); err != nil {
		s.metrics.RecordIndexSyncFailure(ctx, string(eventType))
		s.log.Warn("index sync failed",
			zap.String("ref_id", rec.RefID),
			zap.String("event_type", string(eventType)),
			zap.Error(err),
		)
		return false
	}
	return true
}
