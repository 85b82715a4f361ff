package domain

import (
	"sort"
	"strings"
)

const (
	DefaultListLimit = 200
	MaxListLimit     = 1000
)

// IndexEntry is one denormalized row of index.json.
type IndexEntry struct {
	ID        string `json:"id"`
	TS        string `json:"ts"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Locked    bool   `json:"locked"`
	Version   int    `json:"version"`
	Views     int    `json:"views"`
	LastEvent string `json:"last_event"`
}

// ExportRow is a CSV row: an index entry enriched from the live record.
type ExportRow struct {
	IndexEntry
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

type ListRequest struct {
	Query string
	Limit int
}

// NormalizeLimit applies the default and clamps to [1, MaxListLimit].
func NormalizeLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultListLimit
	case limit < 1:
		return 1
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

// ProjectIndexEntry derives the index row for rec.
func ProjectIndexEntry(rec BookingRecord) IndexEntry {
	form := ParseForm(rec.Form)
	date := form.String("meta", "auditDate")
	if date == "" {
		date = form.String("meta", "windowStart")
	}
	return IndexEntry{
		ID:        rec.RefID,
		TS:        rec.TS,
		Name:      form.String("requester", "company"),
		Email:     form.String("requester", "email"),
		Date:      date,
		Time:      form.String("meta", "time"),
		Locked:    rec.Locked,
		Version:   rec.Version,
		Views:     rec.Metrics.Views,
		LastEvent: rec.LastEventType(),
	}
}

func ProjectExportRow(rec BookingRecord) ExportRow {
	form := ParseForm(rec.Form)
	return ExportRow{
		IndexEntry: ProjectIndexEntry(rec),
		Phone:      form.String("requester", "phone"),
		Notes:      form.String("special", "details"),
	}
}

// SortEntries orders entries by ts descending using string comparison.
func SortEntries(entries []IndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].TS > entries[j].TS })
}

// Matches reports whether q is a case-insensitive substring of id, name or email.
func (e IndexEntry) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.ID), q) ||
		strings.Contains(strings.ToLower(e.Name), q) ||
		strings.Contains(strings.ToLower(e.Email), q)
}

// FilterEntries applies the query and the normalized limit.
func FilterEntries(entries []IndexEntry, req ListRequest) []IndexEntry {
	limit := NormalizeLimit(req.Limit)
	out := make([]IndexEntry, 0, min(len(entries), limit))
	for _, e := range entries {
		if len(out) >= limit {
			break
		}
		if e.Matches(req.Query) {
			out = append(out, e)
		}
	}
	return out
}
