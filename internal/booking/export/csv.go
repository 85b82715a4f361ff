// Package export writes booking rows as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/smallbiznis/greenleaf/internal/booking/domain"
)

const Filename = "bookings.csv"

// Header is the fixed column order of every export.
var Header = []string{"id", "ts", "name", "email", "phone", "date", "time", "notes", "locked", "version", "views", "last_event"}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			r.TS,
			r.Name,
			r.Email,
			r.Phone,
			r.Date,
			r.Time,
			r.Notes,
			strconv.FormatBool(r.Locked),
			strconv.Itoa(r.Version),
			strconv.Itoa(r.Views),
			r.LastEvent,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RowsFromIndex widens index entries to export rows with empty phone and notes.
func RowsFromIndex(entries []domain.IndexEntry) []domain.ExportRow {
	rows := make([]domain.ExportRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, domain.ExportRow{IndexEntry: e})
	}
	return rows
}
