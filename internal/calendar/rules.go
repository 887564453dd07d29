package calendar

import "time"

// HolidayCalendar reports national holidays to the workday rules.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

// WorkdayRules is the per-project configuration of non-working days.
// The override sets always win over the weekday and holiday flags.
type WorkdayRules struct {
	SkipSaturday bool
	SkipSunday   bool
	SkipHoliday  bool
	// WorkingOverrides forces individual dates to be working days.
	WorkingOverrides DateSet
	// NonWorkingOverrides forces individual dates to be non-working days.
	NonWorkingOverrides DateSet
	// DisplayOnlyWorkingDays asks renderers to collapse non-working
	// columns. It does not change any calendar arithmetic.
	DisplayOnlyWorkingDays bool
}

// DefaultWorkdayRules matches the usual site arrangement: Sundays and
// national holidays off, Saturdays worked.
func DefaultWorkdayRules() WorkdayRules {
	return WorkdayRules{SkipSunday: true, SkipHoliday: true}
}

// Clone returns a deep copy of the rules.
func (r WorkdayRules) Clone() WorkdayRules {
	out := r
	out.WorkingOverrides = r.WorkingOverrides.Clone()
	out.NonWorkingOverrides = r.NonWorkingOverrides.Clone()
	return out
}

// Calendar evaluates working days for one project by combining its
// workday rules with a national-holiday dataset.
type Calendar struct {
	rules    WorkdayRules
	holidays HolidayCalendar
}

// New constructs a Calendar. A nil holidays dataset disables holiday
// skipping regardless of the SkipHoliday flag.
func New(rules WorkdayRules, holidays HolidayCalendar) Calendar {
	return Calendar{rules: rules, holidays: holidays}
}

// Rules returns the configuration the calendar evaluates.
func (c Calendar) Rules() WorkdayRules {
	return c.rules
}

// IsNonWorking reports whether the date is a non-working day.
//
// Precedence, first match wins:
//  1. working override  -> working
//  2. non-working override -> non-working
//  3. Saturday with SkipSaturday -> non-working
//  4. Sunday with SkipSunday -> non-working
//  5. national holiday with SkipHoliday -> non-working
//  6. otherwise working
func (c Calendar) IsNonWorking(date time.Time) bool {
	d := Normalize(date)
	if c.rules.WorkingOverrides.Contains(d) {
		return false
	}
	if c.rules.NonWorkingOverrides.Contains(d) {
		return true
	}
	switch d.Weekday() {
	case time.Saturday:
		if c.rules.SkipSaturday {
			return true
		}
	case time.Sunday:
		if c.rules.SkipSunday {
			return true
		}
	}
	if c.rules.SkipHoliday && c.holidays != nil && c.holidays.IsHoliday(d) {
		return true
	}
	return false
}

// IsWorking is the complement of IsNonWorking.
func (c Calendar) IsWorking(date time.Time) bool {
	return !c.IsNonWorking(date)
}

// CountWorkingDays counts the working days in the inclusive range
// [start, end]. A range whose end precedes its start counts zero.
func (c Calendar) CountWorkingDays(start, end time.Time) int {
	from := Normalize(start)
	to := Normalize(end)
	if to.Before(from) {
		return 0
	}
	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if c.IsWorking(d) {
			count++
		}
	}
	return count
}

// AddWorkingDays walks forward from start one calendar day at a time
// and returns the date on which the n-th working day is reached. The
// start date itself counts when it is a working day. n <= 0 returns
// start unchanged, whether or not start is working.
func (c Calendar) AddWorkingDays(start time.Time, n int) time.Time {
	d := Normalize(start)
	if n <= 0 {
		return d
	}
	count := 0
	for {
		if c.IsWorking(d) {
			count++
			if count == n {
				return d
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}
