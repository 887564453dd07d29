// Package calendar provides civil-date arithmetic and the working-day
// rules applied to construction charts. All dates are normalized to
// midnight JST; two dates are equal when they name the same calendar
// day.
package calendar

import (
	"fmt"
	"sort"
	"time"
)

var jst = time.FixedZone("JST", 9*60*60)

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// ErrInvalidDate indicates a date string outside the wire format.
type ErrInvalidDate struct {
	Value string
}

func (e ErrInvalidDate) Error() string {
	return fmt.Sprintf("calendar: invalid date %q", e.Value)
}

// ParseDate parses a YYYY-MM-DD string into midnight JST.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, jst)
	if err != nil {
		return time.Time{}, ErrInvalidDate{Value: value}
	}
	return t, nil
}

// FormatDate renders a date in the wire format.
func FormatDate(d time.Time) string {
	return Normalize(d).Format(DateLayout)
}

// Normalize truncates a timestamp to midnight JST.
func Normalize(t time.Time) time.Time {
	t = t.In(jst)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, jst)
}

// AddDays returns the date n calendar days after d.
func AddDays(d time.Time, n int) time.Time {
	return Normalize(d).AddDate(0, 0, n)
}

// SameDay reports whether a and b name the same calendar day in JST.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// DateSet is an unordered set of civil dates, keyed by wire format.
type DateSet map[string]struct{}

// NewDateSet builds a set from the given dates.
func NewDateSet(dates ...time.Time) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// ParseDateSet builds a set from wire-format strings.
func ParseDateSet(values []string) (DateSet, error) {
	s := make(DateSet, len(values))
	for _, v := range values {
		d, err := ParseDate(v)
		if err != nil {
			return nil, err
		}
		s.Add(d)
	}
	return s, nil
}

// Add inserts a date into the set.
func (s DateSet) Add(d time.Time) {
	s[FormatDate(d)] = struct{}{}
}

// Contains reports whether the set holds the date.
func (s DateSet) Contains(d time.Time) bool {
	if len(s) == 0 {
		return false
	}
	_, ok := s[FormatDate(d)]
	return ok
}

// Values returns the set contents as sorted wire-format strings.
func (s DateSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (s DateSet) Clone() DateSet {
	if s == nil {
		return nil
	}
	out := make(DateSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Intersect returns the wire-format dates present in both sets, sorted.
func (s DateSet) Intersect(other DateSet) []string {
	var out []string
	for v := range s {
		if _, ok := other[v]; ok {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
