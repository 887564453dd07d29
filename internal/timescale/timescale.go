// Package timescale defines the four display granularities of a
// construction chart and the multi-scale schedule carried by each task.
package timescale

import (
	"errors"
	"fmt"
)

// Scale identifies one of the four display granularities.
type Scale int

const (
	// ScaleHour renders a single day as 5-minute slots.
	ScaleHour Scale = iota
	// ScaleDay renders consecutive dates, one column per day.
	ScaleDay
	// ScaleWeek renders a week-oriented span of dates.
	ScaleWeek
	// ScaleMonth renders a month-oriented span of dates.
	ScaleMonth
)

// Scales lists every scale in display order.
var Scales = []Scale{ScaleHour, ScaleDay, ScaleWeek, ScaleMonth}

// ErrUnknownScale indicates a scale name outside the supported vocabulary.
var ErrUnknownScale = errors.New("timescale: unknown scale")

// ParseScale converts a wire name into a Scale.
func ParseScale(name string) (Scale, error) {
	switch name {
	case "hour":
		return ScaleHour, nil
	case "day":
		return ScaleDay, nil
	case "week":
		return ScaleWeek, nil
	case "month":
		return ScaleMonth, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScale, name)
}

// String returns the wire name of the scale.
func (s Scale) String() string {
	switch s {
	case ScaleHour:
		return "hour"
	case ScaleDay:
		return "day"
	case ScaleWeek:
		return "week"
	case ScaleMonth:
		return "month"
	}
	return fmt.Sprintf("timescale.Scale(%d)", int(s))
}

// Valid reports whether the scale is one of the four supported values.
func (s Scale) Valid() bool {
	return s >= ScaleHour && s <= ScaleMonth
}

// Field addresses one endpoint of an interval.
type Field int

const (
	// FieldStart addresses the interval start.
	FieldStart Field = iota
	// FieldEnd addresses the interval end.
	FieldEnd
)

// ErrUnknownField indicates a field name other than start or end.
var ErrUnknownField = errors.New("timescale: unknown field")

// ParseField converts a wire name into a Field.
func ParseField(name string) (Field, error) {
	switch name {
	case "start":
		return FieldStart, nil
	case "end":
		return FieldEnd, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// String returns the wire name of the field.
func (f Field) String() string {
	if f == FieldEnd {
		return "end"
	}
	return "start"
}

// Interval is an inclusive start/end pair in scale units. Hour intervals
// hold minute-of-day values aligned to 5 minutes; the other scales hold
// 1-based day offsets from the window anchor.
type Interval struct {
	Start int
	End   int
}

// Duration returns End - Start in raw units.
func (iv Interval) Duration() int {
	return iv.End - iv.Start
}

// Schedule holds one independent interval per scale. A nil entry means
// the task has never been scheduled on that scale and resolves to the
// scale's built-in default.
type Schedule struct {
	Hour  *Interval
	Day   *Interval
	Week  *Interval
	Month *Interval
}

// DefaultInterval returns the built-in initial interval for a scale.
func DefaultInterval(s Scale) Interval {
	switch s {
	case ScaleHour:
		return Interval{Start: 480, End: 540}
	case ScaleWeek:
		return Interval{Start: 1, End: 7}
	case ScaleMonth:
		return Interval{Start: 1, End: 14}
	}
	return Interval{Start: 1, End: 3}
}

// Resolve returns the stored interval for the scale, or the scale's
// default when unset. Resolving never mutates the schedule.
func (sc Schedule) Resolve(s Scale) Interval {
	if iv := sc.interval(s); iv != nil {
		return *iv
	}
	return DefaultInterval(s)
}

// IsSet reports whether the schedule carries an explicit interval for s.
func (sc Schedule) IsSet(s Scale) bool {
	return sc.interval(s) != nil
}

// WithInterval returns a copy of the schedule with the interval for s
// replaced. Other scales keep their stored values.
func (sc Schedule) WithInterval(s Scale, iv Interval) Schedule {
	out := sc
	stored := iv
	switch s {
	case ScaleHour:
		out.Hour = &stored
	case ScaleDay:
		out.Day = &stored
	case ScaleWeek:
		out.Week = &stored
	case ScaleMonth:
		out.Month = &stored
	}
	return out
}

func (sc Schedule) interval(s Scale) *Interval {
	switch s {
	case ScaleHour:
		return sc.Hour
	case ScaleDay:
		return sc.Day
	case ScaleWeek:
		return sc.Week
	case ScaleMonth:
		return sc.Month
	}
	return nil
}
