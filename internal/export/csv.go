// Package export renders a user's activity history as CSV or PDF.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"timesaver/backend/internal/model"
)

// utf8BOM lets spreadsheet tools detect the encoding of non-ASCII notes.
const utf8BOM = "\ufeff"

var csvHeader = []string{"Category", "Start", "End", "Duration (min)", "Note"}

// Report is everything a renderer needs. Entries are rendered in the order
// given; Totals are minutes per category.
type Report struct {
	UserName    string
	GeneratedAt time.Time
	Location    *time.Location
	Entries     []model.Entry
	Totals      map[model.Category]int
}

func (r Report) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func WriteCSV(w io.Writer, r Report) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	loc := r.location()
	for _, e := range r.Entries {
		row := []string{
			e.Category.Label(),
			e.Start.In(loc).Format(time.RFC3339),
			e.End.In(loc).Format(time.RFC3339),
			strconv.Itoa(e.DurationMinutes()),
			e.Note,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
