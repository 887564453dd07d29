package timescale

import (
	"errors"
	"testing"
)

func TestParseScale(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		want Scale
	}{
		{"hour", ScaleHour},
		{"day", ScaleDay},
		{"week", ScaleWeek},
		{"month", ScaleMonth},
	} {
		got, err := ParseScale(tt.name)
		if err != nil {
			t.Fatalf("ParseScale(%q) returned error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("ParseScale(%q) = %v, want %v", tt.name, got, tt.want)
		}
		if got.String() != tt.name {
			t.Fatalf("Scale.String() = %q, want %q", got.String(), tt.name)
		}
	}

	if _, err := ParseScale("quarter"); !errors.Is(err, ErrUnknownScale) {
		t.Fatalf("expected ErrUnknownScale, got %v", err)
	}
}

func TestDefaultIntervals(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		scale Scale
		want  Interval
	}{
		{ScaleHour, Interval{480, 540}},
		{ScaleDay, Interval{1, 3}},
		{ScaleWeek, Interval{1, 7}},
		{ScaleMonth, Interval{1, 14}},
	} {
		if got := DefaultInterval(tt.scale); got != tt.want {
			t.Fatalf("DefaultInterval(%v) = %+v, want %+v", tt.scale, got, tt.want)
		}
	}
}

func TestScheduleResolve(t *testing.T) {
	t.Parallel()

	var sc Schedule
	if got := sc.Resolve(ScaleWeek); got != DefaultInterval(ScaleWeek) {
		t.Fatalf("expected unset week to resolve to default, got %+v", got)
	}

	sc = sc.WithInterval(ScaleWeek, Interval{2, 5})
	if got := sc.Resolve(ScaleWeek); got != (Interval{2, 5}) {
		t.Fatalf("expected stored interval, got %+v", got)
	}
	if sc.IsSet(ScaleDay) {
		t.Fatalf("setting week must not set day")
	}
	if got := sc.Resolve(ScaleDay); got != DefaultInterval(ScaleDay) {
		t.Fatalf("expected day to stay on default, got %+v", got)
	}
}

func TestWithIntervalDoesNotAliasReceiver(t *testing.T) {
	t.Parallel()

	base := Schedule{}.WithInterval(ScaleDay, Interval{1, 2})
	derived := base.WithInterval(ScaleDay, Interval{2, 3})

	if got := base.Resolve(ScaleDay); got != (Interval{1, 2}) {
		t.Fatalf("base schedule mutated to %+v", got)
	}
	if got := derived.Resolve(ScaleDay); got != (Interval{2, 3}) {
		t.Fatalf("derived schedule = %+v, want {2 3}", got)
	}
}

func TestBoundsFor(t *testing.T) {
	t.Parallel()

	hours := HourWindow{StartHour: 8, EndHour: 18}
	days := DayWindow{Day: 3, Week: 7, Month: 14}

	for _, tt := range []struct {
		scale Scale
		want  Bounds
	}{
		{ScaleHour, Bounds{Min: 480, Max: 1080, Step: 5}},
		{ScaleDay, Bounds{Min: 1, Max: 3, Step: 1}},
		{ScaleWeek, Bounds{Min: 1, Max: 7, Step: 1}},
		{ScaleMonth, Bounds{Min: 1, Max: 14, Step: 1}},
	} {
		if got := BoundsFor(tt.scale, hours, days); got != tt.want {
			t.Fatalf("BoundsFor(%v) = %+v, want %+v", tt.scale, got, tt.want)
		}
	}
}

func TestBoundsAlign(t *testing.T) {
	t.Parallel()

	b := Bounds{Min: 480, Max: 1080, Step: 5}

	tests := []struct {
		raw  int
		want int
	}{
		{487, 485},
		{488, 490},
		{485, 485},
		{482, 480},
		{483, 485},
		{0, 0},
	}
	for _, tt := range tests {
		if got := b.Align(tt.raw); got != tt.want {
			t.Fatalf("Align(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}

	day := Bounds{Min: 1, Max: 7, Step: 1}
	if got := day.Align(6); got != 6 {
		t.Fatalf("step-1 Align must be identity, got %d", got)
	}
}

func TestBoundsNormalize(t *testing.T) {
	t.Parallel()

	b := Bounds{Min: 480, Max: 1080, Step: 5}
	if got := b.Normalize(472); got != 480 {
		t.Fatalf("Normalize(472) = %d, want 480 (aligned 470 clamps up)", got)
	}
	if got := b.Normalize(2000); got != 1080 {
		t.Fatalf("Normalize(2000) = %d, want 1080", got)
	}
	if got := b.Normalize(733); got != 735 {
		t.Fatalf("Normalize(733) = %d, want 735", got)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	hours := HourWindow{StartHour: 8, EndHour: 18}
	days := DayWindow{Day: 3, Week: 7, Month: 14}

	t.Run("hour field rounds then clamps", func(t *testing.T) {
		b := BoundsFor(ScaleHour, hours, days)
		sc := Update(Schedule{}, ScaleHour, FieldStart, 487, b)
		got := sc.Resolve(ScaleHour)
		if got.Start != 485 {
			t.Fatalf("expected start 485, got %d", got.Start)
		}
		if got.End != 540 {
			t.Fatalf("untouched end must keep default 540, got %d", got.End)
		}

		sc = Update(sc, ScaleHour, FieldEnd, 5000, b)
		if got := sc.Resolve(ScaleHour); got.End != 1080 {
			t.Fatalf("expected end clamped to 1080, got %d", got.End)
		}
	})

	t.Run("day field clamps into window", func(t *testing.T) {
		b := BoundsFor(ScaleWeek, hours, days)
		sc := Update(Schedule{}, ScaleWeek, FieldEnd, 12, b)
		if got := sc.Resolve(ScaleWeek); got != (Interval{1, 7}) {
			t.Fatalf("expected {1 7}, got %+v", got)
		}

		sc = Update(sc, ScaleWeek, FieldStart, 0, b)
		if got := sc.Resolve(ScaleWeek); got.Start != 1 {
			t.Fatalf("expected start clamped to 1, got %d", got.Start)
		}
	})

	t.Run("valid value is idempotent", func(t *testing.T) {
		b := BoundsFor(ScaleDay, hours, days)
		once := Update(Schedule{}, ScaleDay, FieldStart, 2, b)
		twice := Update(once, ScaleDay, FieldStart, 2, b)
		if once.Resolve(ScaleDay) != twice.Resolve(ScaleDay) {
			t.Fatalf("repeated update changed the interval: %+v vs %+v",
				once.Resolve(ScaleDay), twice.Resolve(ScaleDay))
		}
	})

	t.Run("other scales untouched", func(t *testing.T) {
		b := BoundsFor(ScaleMonth, hours, days)
		sc := Schedule{}.WithInterval(ScaleDay, Interval{2, 3})
		sc = Update(sc, ScaleMonth, FieldEnd, 10, b)
		if got := sc.Resolve(ScaleDay); got != (Interval{2, 3}) {
			t.Fatalf("day interval changed: %+v", got)
		}
		if sc.IsSet(ScaleHour) || sc.IsSet(ScaleWeek) {
			t.Fatalf("unrelated scales must stay unset")
		}
	})
}

func TestWindowValidate(t *testing.T) {
	t.Parallel()

	if err := (HourWindow{StartHour: 8, EndHour: 18}).Validate(); err != nil {
		t.Fatalf("valid hour window rejected: %v", err)
	}
	if err := (HourWindow{StartHour: 18, EndHour: 8}).Validate(); err == nil {
		t.Fatalf("inverted hour window accepted")
	}
	if err := (HourWindow{StartHour: -1, EndHour: 10}).Validate(); err == nil {
		t.Fatalf("negative start hour accepted")
	}
	if err := (HourWindow{StartHour: 0, EndHour: 24}).Validate(); err != nil {
		t.Fatalf("full-day window rejected: %v", err)
	}

	if err := (DayWindow{Day: 3, Week: 7, Month: 14}).Validate(); err != nil {
		t.Fatalf("valid day window rejected: %v", err)
	}
	if err := (DayWindow{Day: 0, Week: 7, Month: 14}).Validate(); err == nil {
		t.Fatalf("zero day length accepted")
	}
}
