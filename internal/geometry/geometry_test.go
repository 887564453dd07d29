package geometry

import (
	"testing"

	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

var (
	hourBounds = timescale.Bounds{Min: 480, Max: 1080, Step: 5}
	weekBounds = timescale.Bounds{Min: 1, Max: 7, Step: 1}
)

func TestBarSpanHour(t *testing.T) {
	t.Parallel()

	// Default 8:00-9:00 interval on an 8:00-18:00 window, 30px cells:
	// 13 slots wide, flush against the left edge.
	span := BarSpan(timescale.Interval{Start: 480, End: 540}, hourBounds, 30)
	if span.Offset != 0 {
		t.Fatalf("offset = %v, want 0", span.Offset)
	}
	if span.Width != 13*30-BarGap {
		t.Fatalf("width = %v, want %v", span.Width, 13*30-BarGap)
	}

	span = BarSpan(timescale.Interval{Start: 510, End: 530}, hourBounds, 30)
	if span.Offset != 180 {
		t.Fatalf("offset = %v, want 180", span.Offset)
	}
	if span.Width != 5*30-BarGap {
		t.Fatalf("width = %v, want %v", span.Width, 5*30-BarGap)
	}
}

func TestBarSpanDay(t *testing.T) {
	t.Parallel()

	span := BarSpan(timescale.Interval{Start: 2, End: 4}, weekBounds, 40)
	if span.Offset != 40 {
		t.Fatalf("offset = %v, want 40", span.Offset)
	}
	if span.Width != 3*40-BarGap {
		t.Fatalf("width = %v, want %v", span.Width, 3*40-BarGap)
	}
}

func TestBarSpanFloors(t *testing.T) {
	t.Parallel()

	// Start below the window still renders from the left edge.
	span := BarSpan(timescale.Interval{Start: 0, End: 480}, hourBounds, 30)
	if span.Offset != 0 {
		t.Fatalf("offset = %v, want 0", span.Offset)
	}

	// A degenerate interval still renders one cell wide.
	span = BarSpan(timescale.Interval{Start: 5, End: 2}, weekBounds, 40)
	if span.Width != 40-BarGap {
		t.Fatalf("width = %v, want %v", span.Width, 40-BarGap)
	}
}

func TestUnitIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pixelX    float64
		cellWidth float64
		want      int
	}{
		{0, 30, 0},
		{29.9, 30, 0},
		{30, 30, 1},
		{95, 30, 3},
		{-10, 30, -1},
		{95, 0, 0},
	}
	for _, tt := range tests {
		if got := UnitIndex(tt.pixelX, tt.cellWidth); got != tt.want {
			t.Fatalf("UnitIndex(%v, %v) = %d, want %d", tt.pixelX, tt.cellWidth, got, tt.want)
		}
	}
}

func TestPointerValue(t *testing.T) {
	t.Parallel()

	// Pointer over the fourth cell of the hour grid: 8:15.
	if got := PointerValue(95, 30, hourBounds); got != 495 {
		t.Fatalf("hour PointerValue = %d, want 495", got)
	}
	// Same pixel on a day grid lands on day 4.
	if got := PointerValue(95, 30, weekBounds); got != 4 {
		t.Fatalf("day PointerValue = %d, want 4", got)
	}
	// Left of the grid the seed undershoots the minimum; clamping is
	// the caller's job.
	if got := PointerValue(-10, 30, weekBounds); got != 0 {
		t.Fatalf("out-of-grid PointerValue = %d, want 0", got)
	}
}
