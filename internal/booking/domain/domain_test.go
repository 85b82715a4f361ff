package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	stage, err := ParseStage("  FOLLOW_UP ")
	require.NoError(t, err)
	assert.Equal(t, StageFollowUp, stage)

	_, err = ParseStage("")
	assert.ErrorIs(t, err, ErrStageRequired)

	_, err = ParseStage("follow_up")
	assert.ErrorIs(t, err, ErrInvalidStage)

	assert.Len(t, Stages(), 8)
	assert.Equal(t, StageApplicationSubmitted, Stages()[0])
	assert.Equal(t, StageCompleted, Stages()[7])
}

func TestParseLockAction(t *testing.T) {
	action, err := ParseLockAction("unlock")
	require.NoError(t, err)
	assert.Equal(t, ActionUnlock, action)

	_, err = ParseLockAction("toggle")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestDecodeSavePayload(t *testing.T) {
	payload, err := DecodeSavePayload([]byte(`{
		"refId": " GLB-25-000001-AB12 ",
		"form": {"requester": {"email": "a@x.com"}},
		"ts": "2025-01-02T03:04:05.000Z",
		"terms": {"accepted": true, "version": "v3", "url": "https://example.test/terms"},
		"version": 99,
		"locked": true
	}`))
	require.NoError(t, err)

	assert.Equal(t, "GLB-25-000001-AB12", payload.RefID)
	assert.JSONEq(t, `{"requester": {"email": "a@x.com"}}`, string(payload.Form))
	require.NotNil(t, payload.Terms)
	assert.True(t, payload.Terms.Accepted)
}

func TestDecodeSavePayloadRejects(t *testing.T) {
	cases := map[string]struct {
		body string
		want error
	}{
		"unknown_key":   {body: `{"refId":"GLB-1","admin":true}`, want: ErrInvalidPayload},
		"not_object":    {body: `["GLB-1"]`, want: ErrInvalidPayload},
		"trailing_data": {body: `{"refId":"GLB-1"} {}`, want: ErrInvalidPayload},
		"broken_json":   {body: `{"refId":`, want: ErrInvalidPayload},
		"missing_ref":   {body: `{"form":{}}`, want: ErrInvalidRefID},
		"unsafe_ref":    {body: `{"refId":"../index"}`, want: ErrInvalidRefID},
		"null_body":     {body: `null`, want: ErrInvalidRefID},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSavePayload([]byte(tc.body))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestProjectIndexEntry(t *testing.T) {
	rec := BookingRecord{
		RefID:   "GLB-25-000002-ZZ99",
		TS:      "2025-02-01T00:00:00.000Z",
		Form:    json.RawMessage(`{"requester":{"company":"Acme","email":"ops@acme.test","phone":"+1 555"},"meta":{"windowStart":"2025-03-01","time":"09:00"},"special":{"details":"gate 4"}}`),
		Locked:  true,
		Version: 4,
		Metrics: Metrics{Views: 7},
		Events:  []Event{{Type: EventCreate}, {Type: EventView}},
	}

	row := ProjectExportRow(rec)
	assert.Equal(t, IndexEntry{
		ID:        "GLB-25-000002-ZZ99",
		TS:        "2025-02-01T00:00:00.000Z",
		Name:      "Acme",
		Email:     "ops@acme.test",
		Date:      "2025-03-01",
		Time:      "09:00",
		Locked:    true,
		Version:   4,
		Views:     7,
		LastEvent: "view",
	}, row.IndexEntry)
	assert.Equal(t, "+1 555", row.Phone)
	assert.Equal(t, "gate 4", row.Notes)
}

func TestProjectIndexEntryPrefersAuditDateAndToleratesOddForms(t *testing.T) {
	rec := BookingRecord{RefID: "A", Form: json.RawMessage(`{"meta":{"auditDate":"2025-04-04","windowStart":"2025-03-01"}}`)}
	assert.Equal(t, "2025-04-04", ProjectIndexEntry(rec).Date)

	odd := BookingRecord{RefID: "B", Form: json.RawMessage(`"not an object"`)}
	entry := ProjectIndexEntry(odd)
	assert.Equal(t, "B", entry.ID)
	assert.Empty(t, entry.Name)
	assert.Empty(t, entry.LastEvent)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 200, NormalizeLimit(0))
	assert.Equal(t, 1, NormalizeLimit(-5))
	assert.Equal(t, 1000, NormalizeLimit(5000))
	assert.Equal(t, 15, NormalizeLimit(15))
}

func TestFilterEntries(t *testing.T) {
	entries := []IndexEntry{
		{ID: "GLB-1", Name: "Acme", Email: "a@acme.test"},
		{ID: "GLB-2", Name: "Globex", Email: "g@globex.test"},
		{ID: "GLB-3", Name: "Initech", Email: "ACME-ops@initech.test"},
	}

	got := FilterEntries(entries, ListRequest{Query: "acme"})
	require.Len(t, got, 2)
	assert.Equal(t, "GLB-1", got[0].ID)
	assert.Equal(t, "GLB-3", got[1].ID)

	assert.Len(t, FilterEntries(entries, ListRequest{Limit: 2}), 2)
	assert.Len(t, FilterEntries(entries, ListRequest{Query: "glb-2"}), 1)
}

func TestSortEntriesDescendingByTS(t *testing.T) {
	entries := []IndexEntry{
		{ID: "a", TS: "2025-01-01T00:00:00.000Z"},
		{ID: "b", TS: "2025-03-01T00:00:00.000Z"},
		{ID: "c", TS: "2025-02-01T00:00:00.000Z"},
	}
	SortEntries(entries)
	assert.Equal(t, []string{"b", "c", "a"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestJobViewDefaults(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	view := BookingRecord{TS: "2025-01-01T00:00:00.000Z"}.JobView(now)
	assert.Equal(t, StageApplicationSubmitted, view.Job.CurrentStage)
	assert.Equal(t, "2025-01-01T00:00:00.000Z", view.Job.CreatedAt)
	assert.Nil(t, view.Job.DueAt)
	assert.NotNil(t, view.History)

	assert.Equal(t, "2025-05-01T10:00:00.000Z", DefaultJob(BookingRecord{}, now).CreatedAt)
}

func TestStorageErrorMatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("put", "records/a.json", cause)

	assert.ErrorIs(t, err, ErrStorageFailure)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "records/a.json")
}

func TestRecordKeys(t *testing.T) {
	assert.Equal(t, "records/GLB-1.json", RecordKey("GLB-1"))
	assert.Equal(t, "GLB-1", RefIDFromKey("records/GLB-1.json"))
	assert.Equal(t, []string{"main@GLB-1.json", "main@/GLB-1.json"}, LegacyRecordKeys("GLB-1"))
}
