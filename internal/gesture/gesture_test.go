package gesture

import (
	"errors"
	"testing"

	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

var (
	weekBounds = timescale.Bounds{Min: 1, Max: 7, Step: 1}
	hourBounds = timescale.Bounds{Min: 480, Max: 1080, Step: 5}
)

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"move", "resize-start", "resize-end"} {
		m, err := ParseMode(name)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", name, err)
		}
		if m.String() != name {
			t.Fatalf("round-trip %q -> %q", name, m.String())
		}
	}
	if _, err := ParseMode("rotate"); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestBeginValidation(t *testing.T) {
	t.Parallel()

	if _, err := Begin(ModeMove, timescale.Interval{Start: 1, End: 3}, weekBounds, 0); !errors.Is(err, ErrBadCellWidth) {
		t.Fatalf("expected ErrBadCellWidth, got %v", err)
	}
	if _, err := Begin(Mode(9), timescale.Interval{}, weekBounds, 30); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestMoveClampsAgainstWindowEnd(t *testing.T) {
	t.Parallel()

	// A three-day bar on a seven-day window: dragging past the right
	// edge pins the bar to days 5-7.
	d, err := Begin(ModeMove, timescale.Interval{Start: 2, End: 4}, weekBounds, 40)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	// Pixel 210 is the sixth cell, candidate day 6.
	iv, changed := d.Track(210)
	if !changed {
		t.Fatalf("expected the frame to commit")
	}
	if iv != (timescale.Interval{Start: 5, End: 7}) {
		t.Fatalf("interval = %+v, want {5 7}", iv)
	}

	// Further right stays pinned and reports no change.
	if _, changed := d.Track(2000); changed {
		t.Fatalf("pinned frame must not report a change")
	}
	if got := d.End(); got != (timescale.Interval{Start: 5, End: 7}) {
		t.Fatalf("End = %+v", got)
	}
}

func TestMoveClampsAgainstWindowStart(t *testing.T) {
	t.Parallel()

	d, _ := Begin(ModeMove, timescale.Interval{Start: 3, End: 5}, weekBounds, 40)

	iv, _ := d.Track(-80)
	if iv != (timescale.Interval{Start: 1, End: 3}) {
		t.Fatalf("interval = %+v, want {1 3}", iv)
	}
}

func TestMovePreservesDurationOnHourScale(t *testing.T) {
	t.Parallel()

	d, _ := Begin(ModeMove, timescale.Interval{Start: 480, End: 540}, hourBounds, 30)

	// Frame over slot index 12 moves the start to 9:00.
	iv, changed := d.Track(370)
	if !changed {
		t.Fatalf("expected commit")
	}
	if iv != (timescale.Interval{Start: 540, End: 600}) {
		t.Fatalf("interval = %+v, want {540 600}", iv)
	}
	if iv.Duration() != 60 {
		t.Fatalf("duration changed: %d", iv.Duration())
	}
}

func TestResizeStart(t *testing.T) {
	t.Parallel()

	d, _ := Begin(ModeResizeStart, timescale.Interval{Start: 2, End: 4}, weekBounds, 40)

	// Candidate day 3 is left of the end and accepted.
	iv, changed := d.Track(90)
	if !changed || iv != (timescale.Interval{Start: 3, End: 4}) {
		t.Fatalf("interval = %+v changed=%v, want {3 4} true", iv, changed)
	}

	// Candidate day 5 would cross the end; the frame is skipped.
	iv, changed = d.Track(170)
	if changed || iv != (timescale.Interval{Start: 3, End: 4}) {
		t.Fatalf("crossing frame must be skipped, got %+v changed=%v", iv, changed)
	}

	// Left of the grid the candidate undershoots the minimum.
	if _, changed := d.Track(-50); changed {
		t.Fatalf("below-minimum frame must be skipped")
	}
}

func TestResizeEnd(t *testing.T) {
	t.Parallel()

	d, _ := Begin(ModeResizeEnd, timescale.Interval{Start: 480, End: 540}, hourBounds, 30)

	// Pointer over slot index 20 commits end 585 (the slot after the
	// hovered one).
	iv, changed := d.Track(600)
	if !changed || iv != (timescale.Interval{Start: 480, End: 585}) {
		t.Fatalf("interval = %+v changed=%v, want {480 585} true", iv, changed)
	}

	// Past the window end the incremented candidate overflows and the
	// frame is skipped.
	iv, changed = d.Track(3750)
	if changed || iv.End != 585 {
		t.Fatalf("overflow frame must be skipped, got %+v changed=%v", iv, changed)
	}

	// Collapsing onto the start is rejected: the incremented candidate
	// must stay strictly after the start.
	d2, _ := Begin(ModeResizeEnd, timescale.Interval{Start: 540, End: 600}, hourBounds, 30)
	if _, changed := d2.Track(0); changed {
		t.Fatalf("frame collapsing the interval must be skipped")
	}
}

func TestResizeEndReachesWindowMax(t *testing.T) {
	t.Parallel()

	d, _ := Begin(ModeResizeEnd, timescale.Interval{Start: 2, End: 4}, weekBounds, 40)

	// Pointer over the sixth cell: candidate 6, committed end 7.
	iv, changed := d.Track(210)
	if !changed || iv != (timescale.Interval{Start: 2, End: 7}) {
		t.Fatalf("interval = %+v changed=%v, want {2 7} true", iv, changed)
	}
}

func TestTrackAfterEndIsIgnored(t *testing.T) {
	t.Parallel()

	d, _ := Begin(ModeMove, timescale.Interval{Start: 1, End: 2}, weekBounds, 40)
	d.End()
	if _, changed := d.Track(120); changed {
		t.Fatalf("ended drag must ignore frames")
	}
}

func TestEveryFrameStaysOrderedAndBounded(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeMove, ModeResizeStart, ModeResizeEnd} {
		d, err := Begin(mode, timescale.Interval{Start: 3, End: 5}, weekBounds, 40)
		if err != nil {
			t.Fatalf("Begin(%v): %v", mode, err)
		}
		for x := -200.0; x <= 600; x += 35 {
			iv, _ := d.Track(x)
			if iv.Start > iv.End {
				t.Fatalf("%v frame produced degenerate %+v", mode, iv)
			}
			if iv.Start < weekBounds.Min || iv.End > weekBounds.Max {
				t.Fatalf("%v frame escaped bounds: %+v", mode, iv)
			}
		}
	}
}
