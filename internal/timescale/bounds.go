package timescale

import (
	"fmt"
	"math"
)

// HourWindow is the visible time-of-day range of the Hour scale,
// expressed in whole hours. StartHour is inclusive, EndHour marks the
// final slot of the day (24 = midnight).
type HourWindow struct {
	StartHour int
	EndHour   int
}

// DefaultHourWindow covers the common site working day of 8:00-18:00.
var DefaultHourWindow = HourWindow{StartHour: 8, EndHour: 18}

// Validate checks the window invariants.
func (w HourWindow) Validate() error {
	if w.StartHour < 0 || w.StartHour > 23 {
		return fmt.Errorf("timescale: start hour %d out of range", w.StartHour)
	}
	if w.EndHour < 1 || w.EndHour > 24 {
		return fmt.Errorf("timescale: end hour %d out of range", w.EndHour)
	}
	if w.StartHour >= w.EndHour {
		return fmt.Errorf("timescale: hour window %d-%d is empty", w.StartHour, w.EndHour)
	}
	return nil
}

// StartMinutes returns the first slot value of the window.
func (w HourWindow) StartMinutes() int { return w.StartHour * 60 }

// EndMinutes returns the last slot value of the window.
func (w HourWindow) EndMinutes() int { return w.EndHour * 60 }

// DayWindow holds the visible length, in days, of each date-based scale.
type DayWindow struct {
	Day   int
	Week  int
	Month int
}

// DefaultDayWindow matches the initial chart layout: three days, one
// week, and two weeks of a month view.
var DefaultDayWindow = DayWindow{Day: 3, Week: 7, Month: 14}

// Validate checks that every window length is positive.
func (w DayWindow) Validate() error {
	for _, l := range []struct {
		name string
		v    int
	}{{"day", w.Day}, {"week", w.Week}, {"month", w.Month}} {
		if l.v < 1 {
			return fmt.Errorf("timescale: %s window length %d must be positive", l.name, l.v)
		}
	}
	return nil
}

// Length returns the window length for a date-based scale. The Hour
// scale has no day length and reports zero.
func (w DayWindow) Length(s Scale) int {
	switch s {
	case ScaleDay:
		return w.Day
	case ScaleWeek:
		return w.Week
	case ScaleMonth:
		return w.Month
	}
	return 0
}

// Bounds is the per-scale constants table: the inclusive raw-value range
// and the minimum unit of movement. Every clamp, pixel mapping, and drag
// rule consults a Bounds value instead of switching on the scale.
type Bounds struct {
	Min  int
	Max  int
	Step int
}

// BoundsFor derives the bounds of a scale from the chart windows.
func BoundsFor(s Scale, hours HourWindow, days DayWindow) Bounds {
	if s == ScaleHour {
		return Bounds{Min: hours.StartMinutes(), Max: hours.EndMinutes(), Step: 5}
	}
	return Bounds{Min: 1, Max: days.Length(s), Step: 1}
}

// Clamp forces v into [Min, Max].
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Align rounds v to the nearest multiple of Step, halves rounding up.
func (b Bounds) Align(v int) int {
	if b.Step <= 1 {
		return v
	}
	return int(math.Floor(float64(v)/float64(b.Step)+0.5)) * b.Step
}

// Normalize aligns v to the step grid and clamps it into range, in that
// order.
func (b Bounds) Normalize(v int) int {
	return b.Clamp(b.Align(v))
}

// Contains reports whether v lies inside the bounds.
func (b Bounds) Contains(v int) bool {
	return v >= b.Min && v <= b.Max
}

// Update writes one endpoint of one scale's interval after normalizing
// the raw value against the bounds. The untouched endpoint keeps its
// value; unset scales are resolved to their default first. Ordering of
// the endpoints is the caller's concern: a drag controller adjusts the
// paired endpoint atomically, a direct edit validates the result.
func Update(sc Schedule, s Scale, f Field, raw int, b Bounds) Schedule {
	iv := sc.Resolve(s)
	v := b.Normalize(raw)
	if f == FieldEnd {
		iv.End = v
	} else {
		iv.Start = v
	}
	return sc.WithInterval(s, iv)
}
