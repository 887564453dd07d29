package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// Timestamps are stored as RFC 3339 UTC text, civil dates as
// YYYY-MM-DD text, and unset schedule intervals as NULL column pairs.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	return calendar.FormatDate(t)
}

func parseDate(value string) (time.Time, error) {
	d, err := calendar.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse date %q: %w", value, err)
	}
	return d, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTimestamp(v *time.Time) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*v), Valid: true}
}

func timePtr(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func packInterval(iv *timescale.Interval) (start, end sql.NullInt64) {
	if iv == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(iv.Start), Valid: true},
		sql.NullInt64{Int64: int64(iv.End), Valid: true}
}

func unpackInterval(start, end sql.NullInt64) *timescale.Interval {
	if !start.Valid || !end.Valid {
		return nil
	}
	return &timescale.Interval{Start: int(start.Int64), End: int(end.Int64)}
}
