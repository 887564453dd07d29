// Package gesture implements the drag state machine that turns pointer
// movement into schedule interval changes. A drag runs Idle ->
// Dragging -> Idle; every tracked frame either commits a new interval
// or is silently skipped, so the interval never leaves its bounds and
// never becomes degenerate mid-gesture.
package gesture

import (
	"errors"
	"fmt"

	"github.com/zegramtool/construction-gantt-chart/internal/geometry"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// Mode selects which part of the bar the pointer grabbed.
type Mode int

const (
	// ModeMove shifts the whole bar, preserving its duration.
	ModeMove Mode = iota
	// ModeResizeStart drags the left edge.
	ModeResizeStart
	// ModeResizeEnd drags the right edge.
	ModeResizeEnd
)

// ErrUnknownMode indicates a mode name outside the vocabulary.
var ErrUnknownMode = errors.New("gesture: unknown mode")

// ErrBadCellWidth indicates a non-positive cell width.
var ErrBadCellWidth = errors.New("gesture: cell width must be positive")

// ParseMode converts a wire name into a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "move":
		return ModeMove, nil
	case "resize-start":
		return ModeResizeStart, nil
	case "resize-end":
		return ModeResizeEnd, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeResizeStart:
		return "resize-start"
	case ModeResizeEnd:
		return "resize-end"
	}
	return "move"
}

// Drag tracks one active gesture over a single task bar.
type Drag struct {
	mode      Mode
	bounds    timescale.Bounds
	cellWidth float64
	origin    timescale.Interval
	current   timescale.Interval
	done      bool
}

// Begin starts a gesture from the bar's current interval.
func Begin(mode Mode, origin timescale.Interval, b timescale.Bounds, cellWidth float64) (*Drag, error) {
	if mode < ModeMove || mode > ModeResizeEnd {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}
	if cellWidth <= 0 {
		return nil, ErrBadCellWidth
	}
	return &Drag{
		mode:      mode,
		bounds:    b,
		cellWidth: cellWidth,
		origin:    origin,
		current:   origin,
	}, nil
}

// Mode returns the gesture mode.
func (d *Drag) Mode() Mode { return d.mode }

// Interval returns the last committed interval.
func (d *Drag) Interval() timescale.Interval { return d.current }

// Track processes one pointer-move frame. It reports the interval after
// the frame and whether the frame changed anything; frames that would
// break the mode's rule are skipped and leave the interval as it was.
func (d *Drag) Track(pixelX float64) (timescale.Interval, bool) {
	if d.done {
		return d.current, false
	}
	candidate := geometry.PointerValue(pixelX, d.cellWidth, d.bounds)

	switch d.mode {
	case ModeMove:
		duration := d.origin.Duration()
		maxStart := d.bounds.Max - duration
		if maxStart < d.bounds.Min {
			maxStart = d.bounds.Min
		}
		start := candidate
		if start < d.bounds.Min {
			start = d.bounds.Min
		}
		if start > maxStart {
			start = maxStart
		}
		next := timescale.Interval{Start: start, End: start + duration}
		changed := next != d.current
		d.current = next
		return d.current, changed

	case ModeResizeStart:
		if candidate < d.bounds.Min || candidate >= d.current.End {
			return d.current, false
		}
		if candidate == d.current.Start {
			return d.current, false
		}
		d.current.Start = candidate
		return d.current, true

	case ModeResizeEnd:
		end := candidate + d.bounds.Step
		if end <= d.current.Start || end > d.bounds.Max {
			return d.current, false
		}
		if end == d.current.End {
			return d.current, false
		}
		d.current.End = end
		return d.current, true
	}
	return d.current, false
}

// End finishes the gesture and returns the final interval. Further
// frames are ignored.
func (d *Drag) End() timescale.Interval {
	d.done = true
	return d.current
}
