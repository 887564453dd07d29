package calendar

import (
	"testing"
	"time"
)

// holidayStub marks a fixed set of dates as national holidays.
type holidayStub struct {
	dates DateSet
}

func (h holidayStub) IsHoliday(date time.Time) bool {
	return h.dates.Contains(date)
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := ParseDate(value)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", value, err)
	}
	return d
}

func TestIsNonWorkingPrecedence(t *testing.T) {
	t.Parallel()

	newYear := mustDate(t, "2024-01-01") // Monday, national holiday
	holidays := holidayStub{dates: NewDateSet(newYear)}

	tests := []struct {
		name  string
		rules WorkdayRules
		date  string
		want  bool
	}{
		{
			name:  "national holiday on a monday is non-working",
			rules: WorkdayRules{SkipHoliday: true},
			date:  "2024-01-01",
			want:  true,
		},
		{
			name:  "holiday flag off keeps the holiday working",
			rules: WorkdayRules{SkipSunday: true},
			date:  "2024-01-01",
			want:  false,
		},
		{
			name: "working override beats the holiday rule",
			rules: WorkdayRules{
				SkipHoliday:      true,
				WorkingOverrides: mustSet(t, "2024-01-01"),
			},
			date: "2024-01-01",
			want: false,
		},
		{
			name: "working override beats the non-working override",
			rules: WorkdayRules{
				WorkingOverrides:    mustSet(t, "2024-04-06"),
				NonWorkingOverrides: mustSet(t, "2024-04-06"),
			},
			date: "2024-04-06",
			want: false,
		},
		{
			name: "non-working override marks a plain weekday",
			rules: WorkdayRules{
				NonWorkingOverrides: mustSet(t, "2024-04-02"),
			},
			date: "2024-04-02",
			want: true,
		},
		{
			name:  "saturday skipped only when flagged",
			rules: WorkdayRules{SkipSaturday: true},
			date:  "2024-04-06",
			want:  true,
		},
		{
			name:  "saturday worked by default",
			rules: DefaultWorkdayRules(),
			date:  "2024-04-06",
			want:  false,
		},
		{
			name:  "sunday skipped when flagged",
			rules: WorkdayRules{SkipSunday: true},
			date:  "2024-04-07",
			want:  true,
		},
		{
			name:  "plain weekday is working",
			rules: DefaultWorkdayRules(),
			date:  "2024-04-03",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := New(tt.rules, holidays)
			if got := cal.IsNonWorking(mustDate(t, tt.date)); got != tt.want {
				t.Fatalf("IsNonWorking(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func mustSet(t *testing.T, values ...string) DateSet {
	t.Helper()
	set, err := ParseDateSet(values)
	if err != nil {
		t.Fatalf("ParseDateSet(%v): %v", values, err)
	}
	return set
}

func TestIsNonWorkingWithoutHolidayData(t *testing.T) {
	t.Parallel()

	cal := New(WorkdayRules{SkipHoliday: true}, nil)
	if cal.IsNonWorking(mustDate(t, "2024-01-01")) {
		t.Fatalf("without a dataset no day is a holiday")
	}
}

func TestCountWorkingDays(t *testing.T) {
	t.Parallel()

	cal := New(WorkdayRules{SkipSunday: true}, nil)

	// 2024-04-01 is a Monday; the week through Sunday 04-07 has six
	// working days when only Sundays are skipped.
	start := mustDate(t, "2024-04-01")
	end := mustDate(t, "2024-04-07")
	if got := cal.CountWorkingDays(start, end); got != 6 {
		t.Fatalf("CountWorkingDays = %d, want 6", got)
	}

	if got := cal.CountWorkingDays(start, start); got != 1 {
		t.Fatalf("single working day range = %d, want 1", got)
	}
	if got := cal.CountWorkingDays(end, start); got != 0 {
		t.Fatalf("inverted range = %d, want 0", got)
	}

	sunday := mustDate(t, "2024-04-07")
	if got := cal.CountWorkingDays(sunday, sunday); got != 0 {
		t.Fatalf("single non-working day range = %d, want 0", got)
	}
}

func TestCountWorkingDaysSkipsHolidays(t *testing.T) {
	t.Parallel()

	holidays := holidayStub{dates: mustSet(t, "2024-05-03", "2024-05-06")}
	cal := New(WorkdayRules{SkipSaturday: true, SkipSunday: true, SkipHoliday: true}, holidays)

	// Golden Week: 05-02 Thu work, 05-03 holiday, 05-04 Sat, 05-05 Sun,
	// 05-06 holiday, 05-07 Tue work.
	got := cal.CountWorkingDays(mustDate(t, "2024-05-02"), mustDate(t, "2024-05-07"))
	if got != 2 {
		t.Fatalf("CountWorkingDays = %d, want 2", got)
	}
}

func TestAddWorkingDays(t *testing.T) {
	t.Parallel()

	holidays := holidayStub{dates: mustSet(t, "2024-05-03", "2024-05-06")}
	cal := New(WorkdayRules{SkipSaturday: true, SkipSunday: true, SkipHoliday: true}, holidays)

	start := mustDate(t, "2024-05-02")

	if got := cal.AddWorkingDays(start, 0); !SameDay(got, start) {
		t.Fatalf("n=0 must return start, got %s", FormatDate(got))
	}
	if got := cal.AddWorkingDays(start, 1); FormatDate(got) != "2024-05-02" {
		t.Fatalf("first working day = %s, want 2024-05-02", FormatDate(got))
	}
	if got := cal.AddWorkingDays(start, 2); FormatDate(got) != "2024-05-07" {
		t.Fatalf("second working day = %s, want 2024-05-07", FormatDate(got))
	}

	// A non-working start is not counted and not adjusted for n=0.
	saturday := mustDate(t, "2024-05-04")
	if got := cal.AddWorkingDays(saturday, 0); FormatDate(got) != "2024-05-04" {
		t.Fatalf("n=0 from non-working start = %s, want 2024-05-04", FormatDate(got))
	}
	if got := cal.AddWorkingDays(saturday, 1); FormatDate(got) != "2024-05-07" {
		t.Fatalf("first working day from saturday = %s, want 2024-05-07", FormatDate(got))
	}
}

func TestCalendarRulesAccessor(t *testing.T) {
	t.Parallel()

	rules := DefaultWorkdayRules()
	rules.NonWorkingOverrides = mustSet(t, "2024-08-13")
	cal := New(rules, nil)
	if !cal.Rules().SkipSunday {
		t.Fatalf("expected rules round-trip to keep SkipSunday")
	}
	if !cal.IsNonWorking(mustDate(t, "2024-08-13")) {
		t.Fatalf("override date must be non-working")
	}
}
