package domain

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventCreate EventType = "create"
	EventUpdate EventType = "update"
	EventView   EventType = "view"
	EventPrint  EventType = "print"
	EventLock   EventType = "lock"
	EventUnlock EventType = "unlock"
	EventStage  EventType = "stage"
)

type Actor string

const (
	ActorUser  Actor = "user"
	ActorAdmin Actor = "admin"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t as an ISO-8601 UTC timestamp with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// BookingRecord is the stored document under records/<refId>.json.
type BookingRecord struct {
	RefID      string          `json:"refId"`
	Form       json.RawMessage `json:"form,omitempty"`
	TS         string          `json:"ts"`
	Terms      *Terms          `json:"terms,omitempty"`
	Locked     bool            `json:"locked"`
	LockedAt   string          `json:"lockedAt,omitempty"`
	UnlockedAt string          `json:"unlockedAt,omitempty"`
	Version    int             `json:"version"`
	Events     []Event         `json:"events"`
	Metrics    Metrics         `json:"metrics"`
	Job        *JobState       `json:"job,omitempty"`
	History    []HistoryEntry  `json:"history,omitempty"`
}

type Terms struct {
	Accepted bool   `json:"accepted"`
	Version  string `json:"version,omitempty"`
	URL      string `json:"url,omitempty"`
}

type Event struct {
	Type    EventType `json:"type"`
	TS      string    `json:"ts"`
	Actor   Actor     `json:"actor,omitempty"`
	IP      string    `json:"ip,omitempty"`
	IPHash  string    `json:"ipHash,omitempty"`
	IPTrunc string    `json:"ipTrunc,omitempty"`
}

type Metrics struct {
	Views int `json:"views"`
}

type JobState struct {
	CurrentStage Stage   `json:"current_stage"`
	CreatedAt    string  `json:"created_at"`
	DueAt        *string `json:"due_at"`
}

type HistoryEntry struct {
	Stage Stage  `json:"stage"`
	At    string `json:"at"`
}

// JobView is the job state as returned to callers, history never nil.
type JobView struct {
	Job     JobState       `json:"job"`
	History []HistoryEntry `json:"history"`
}

// Normalize fills zero-valued collections left by older documents.
func (r *BookingRecord) Normalize() {
	if r.Events == nil {
		r.Events = []Event{}
	}
	if r.Metrics.Views < 0 {
		r.Metrics.Views = 0
	}
}

func (r *BookingRecord) AppendEvent(e Event) {
	r.Events = append(r.Events, e)
}

// LastEventType returns the type of the most recent event, or "".
func (r BookingRecord) LastEventType() string {
	if len(r.Events) == 0 {
		return ""
	}
	return string(r.Events[len(r.Events)-1].Type)
}

// DefaultJob is the job every record implicitly starts in. Read and write
// paths must both go through it.
func DefaultJob(r BookingRecord, now time.Time) JobState {
	createdAt := r.TS
	if createdAt == "" {
		createdAt = FormatTimestamp(now)
	}
	return JobState{
		CurrentStage: StageApplicationSubmitted,
		CreatedAt:    createdAt,
		DueAt:        nil,
	}
}

// JobView returns the stored job, or the lazy default when none was written.
func (r BookingRecord) JobView(now time.Time) JobView {
	job := DefaultJob(r, now)
	if r.Job != nil {
		job = *r.Job
	}
	history := r.History
	if history == nil {
		history = []HistoryEntry{}
	}
	return JobView{Job: job, History: history}
}
