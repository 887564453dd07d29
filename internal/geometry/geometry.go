// Package geometry maps schedule intervals to pixel spans and pointer
// positions back to raw grid values. All arithmetic runs against a
// timescale.Bounds value, so the same formulas serve every scale.
package geometry

import (
	"math"

	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// BarGap is the pixel gap subtracted from every bar width to keep
// adjacent bars visually separated.
const BarGap = 2

// Span is the horizontal placement of a task bar in pixels.
type Span struct {
	Offset float64
	Width  float64
}

// BarSpan computes the placement of an interval on the grid. The offset
// never goes negative and the width never shrinks below one cell minus
// the gap, so out-of-range intervals still render visibly.
func BarSpan(iv timescale.Interval, b timescale.Bounds, cellWidth float64) Span {
	units := (iv.Start - b.Min) / b.Step
	if units < 0 {
		units = 0
	}
	cells := (iv.End-iv.Start)/b.Step + 1
	if cells < 1 {
		cells = 1
	}
	return Span{
		Offset: float64(units) * cellWidth,
		Width:  float64(cells)*cellWidth - BarGap,
	}
}

// UnitIndex converts a pointer position to a grid unit index,
// floor(pixelX / cellWidth). Positions left of the grid yield negative
// indexes; callers clamp the resulting raw value. A non-positive cell
// width yields index 0.
func UnitIndex(pixelX, cellWidth float64) int {
	if cellWidth <= 0 {
		return 0
	}
	return int(math.Floor(pixelX / cellWidth))
}

// RawValue converts a unit index to the scale's raw value, Min plus
// index steps: a minute of day on the Hour scale, a 1-based day offset
// on the date scales.
func RawValue(index int, b timescale.Bounds) int {
	return b.Min + index*b.Step
}

// PointerValue composes UnitIndex and RawValue for one pointer frame.
// The result is a seed for schedule updates and is not yet clamped.
func PointerValue(pixelX, cellWidth float64, b timescale.Bounds) int {
	return RawValue(UnitIndex(pixelX, cellWidth), b)
}
