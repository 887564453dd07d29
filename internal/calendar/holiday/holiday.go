// Package holiday embeds the gazetted Japanese national holidays
// consulted by the workday rules. The dataset is static; years outside
// its coverage simply report no holidays.
package holiday

import (
	"sort"
	"time"
)

var jst = time.FixedZone("JST", 9*60*60)

const dateLayout = "2006-01-02"

// Holiday is one gazetted national holiday.
type Holiday struct {
	Date time.Time
	Name string
}

// Table answers holiday lookups against the embedded dataset.
type Table struct {
	byDate  map[string]string
	ordered []Holiday
}

// NewTable builds the lookup table from the embedded gazette.
func NewTable() *Table {
	t := &Table{
		byDate:  make(map[string]string, len(gazette)),
		ordered: make([]Holiday, 0, len(gazette)),
	}
	for _, e := range gazette {
		d, err := time.ParseInLocation(dateLayout, e.date, jst)
		if err != nil {
			// The gazette is compiled in; a malformed entry is a
			// programming error.
			panic("holiday: malformed gazette date " + e.date)
		}
		t.byDate[e.date] = e.name
		t.ordered = append(t.ordered, Holiday{Date: d, Name: e.name})
	}
	sort.Slice(t.ordered, func(i, j int) bool {
		return t.ordered[i].Date.Before(t.ordered[j].Date)
	})
	return t
}

func key(date time.Time) string {
	return date.In(jst).Format(dateLayout)
}

// IsHoliday reports whether the date is a national holiday.
func (t *Table) IsHoliday(date time.Time) bool {
	_, ok := t.byDate[key(date)]
	return ok
}

// Lookup returns the holiday name for the date.
func (t *Table) Lookup(date time.Time) (string, bool) {
	name, ok := t.byDate[key(date)]
	return name, ok
}

// Between returns the holidays in the inclusive range [start, end] in
// chronological order.
func (t *Table) Between(start, end time.Time) []Holiday {
	var out []Holiday
	for _, h := range t.ordered {
		if h.Date.Before(start) || h.Date.After(end) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Coverage returns the first and last year of the embedded dataset.
func (t *Table) Coverage() (first, last int) {
	if len(t.ordered) == 0 {
		return 0, 0
	}
	return t.ordered[0].Date.Year(), t.ordered[len(t.ordered)-1].Date.Year()
}
