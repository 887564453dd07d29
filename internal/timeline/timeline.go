// Package timeline generates the ordered grid units rendered along the
// top edge of a chart: 5-minute slots for the Hour scale, consecutive
// dates for the Day, Week, and Month scales.
package timeline

import (
	"fmt"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// SlotStep is the Hour-scale grid resolution in minutes.
const SlotStep = 5

// Grid is the ordered unit sequence of one scale. Hour grids carry
// minute-of-day values; date grids carry normalized dates.
type Grid struct {
	Scale   timescale.Scale
	Minutes []int
	Dates   []time.Time
}

// Len returns the number of grid units.
func (g Grid) Len() int {
	if g.Scale == timescale.ScaleHour {
		return len(g.Minutes)
	}
	return len(g.Dates)
}

// HourSlots lists every slot of the hour window, from StartHour*60
// through EndHour*60 inclusive. A window of h hours yields h*12+1
// entries.
func HourSlots(w timescale.HourWindow) []int {
	first := w.StartMinutes()
	last := w.EndMinutes()
	out := make([]int, 0, (last-first)/SlotStep+1)
	for m := first; m <= last; m += SlotStep {
		out = append(out, m)
	}
	return out
}

// Days lists the consecutive dates [anchor, anchor+length-1].
func Days(anchor time.Time, length int) []time.Time {
	if length < 1 {
		return nil
	}
	start := calendar.Normalize(anchor)
	out := make([]time.Time, length)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

// Generate builds the grid for a scale. Date scales start at the anchor
// and span the scale's window length.
func Generate(scale timescale.Scale, anchor time.Time, hours timescale.HourWindow, days timescale.DayWindow) Grid {
	if scale == timescale.ScaleHour {
		return Grid{Scale: scale, Minutes: HourSlots(hours)}
	}
	return Grid{Scale: scale, Dates: Days(anchor, days.Length(scale))}
}

// MonthSpan is one run of consecutive dates sharing a calendar month.
type MonthSpan struct {
	Year  int
	Month time.Month
	Count int
}

// Label renders the span heading, e.g. 2024年4月.
func (s MonthSpan) Label() string {
	return fmt.Sprintf("%d年%d月", s.Year, int(s.Month))
}

// GroupByMonth run-length encodes a date sequence into month spans,
// preserving order. Renderers use the spans for month-spanning header
// groups; the Hour scale and provisional charts skip grouping entirely.
func GroupByMonth(dates []time.Time) []MonthSpan {
	var out []MonthSpan
	for _, d := range dates {
		y, m := d.Year(), d.Month()
		if n := len(out); n > 0 && out[n-1].Year == y && out[n-1].Month == m {
			out[n-1].Count++
			continue
		}
		out = append(out, MonthSpan{Year: y, Month: m, Count: 1})
	}
	return out
}
