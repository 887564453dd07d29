package holiday

import (
	"testing"
	"time"
)

func date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", value, jst)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return d
}

func TestTableLookup(t *testing.T) {
	t.Parallel()

	table := NewTable()

	name, ok := table.Lookup(date(t, "2024-01-01"))
	if !ok || name != "元日" {
		t.Fatalf("Lookup(2024-01-01) = %q, %v", name, ok)
	}
	if !table.IsHoliday(date(t, "2024-01-01")) {
		t.Fatalf("2024-01-01 must be a holiday")
	}
	if table.IsHoliday(date(t, "2024-01-04")) {
		t.Fatalf("2024-01-04 is a plain weekday")
	}

	// Timezone-insensitive: the same instant expressed in UTC names the
	// same JST calendar day.
	utc := time.Date(2023, time.December, 31, 15, 0, 0, 0, time.UTC)
	if !table.IsHoliday(utc) {
		t.Fatalf("UTC instant on the JST holiday must match")
	}
}

func TestTableSubstituteHolidays(t *testing.T) {
	t.Parallel()

	table := NewTable()

	for _, v := range []string{"2024-02-12", "2024-05-06", "2024-09-23", "2025-11-24", "2027-03-22"} {
		name, ok := table.Lookup(date(t, v))
		if !ok || name != "振替休日" {
			t.Fatalf("Lookup(%s) = %q, %v, want 振替休日", v, name, ok)
		}
	}

	// 2026-09-22 sits between two holidays and becomes a bridge day.
	name, ok := table.Lookup(date(t, "2026-09-22"))
	if !ok || name != "国民の休日" {
		t.Fatalf("Lookup(2026-09-22) = %q, %v, want 国民の休日", name, ok)
	}
}

func TestTableBetween(t *testing.T) {
	t.Parallel()

	table := NewTable()

	got := table.Between(date(t, "2024-09-20"), date(t, "2024-09-25"))
	if len(got) != 2 {
		t.Fatalf("expected 2 holidays, got %d", len(got))
	}
	if got[0].Name != "秋分の日" || got[1].Name != "振替休日" {
		t.Fatalf("unexpected holidays %v", got)
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Fatalf("holidays must be chronological")
	}

	if empty := table.Between(date(t, "2024-06-01"), date(t, "2024-06-30")); len(empty) != 0 {
		t.Fatalf("June 2024 has no national holidays, got %v", empty)
	}
}

func TestTableCoverage(t *testing.T) {
	t.Parallel()

	first, last := NewTable().Coverage()
	if first != 2023 || last != 2027 {
		t.Fatalf("Coverage = %d..%d, want 2023..2027", first, last)
	}
}
