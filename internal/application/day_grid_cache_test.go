package application

import (
	"testing"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

func TestDayGridCacheStoresAndReturnsCopies(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	current := fixed
	cache := newDayGridCache(time.Minute, 4, func() time.Time { return current })

	date := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	original := []ChartDay{{Date: date, NonWorking: true, HolidayName: "昭和の日"}}
	cache.Store("key", original)

	// Mutating the original slice should not affect the cached copy.
	original[0].HolidayName = "mutated"

	cached, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit")
	}
	if cached[0].HolidayName != "昭和の日" {
		t.Fatalf("expected cached holiday name to remain unchanged, got %s", cached[0].HolidayName)
	}

	// Mutating the returned slice should not be visible on subsequent reads.
	cached[0].HolidayName = "changed"
	cachedAgain, ok := cache.Get("key")
	if !ok {
		t.Fatalf("expected cache hit on second read")
	}
	if cachedAgain[0].HolidayName != "昭和の日" {
		t.Fatalf("expected cache to return independent copy, got %s", cachedAgain[0].HolidayName)
	}
}

func TestDayGridCacheExpiresEntries(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	current := fixed
	cache := newDayGridCache(time.Second, 4, func() time.Time { return current })

	cache.Store("key", []ChartDay{{NonWorking: true}})
	if _, ok := cache.Get("key"); !ok {
		t.Fatalf("expected cache hit before expiry")
	}

	current = current.Add(2 * time.Second)
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache entry to expire")
	}
}

func TestDayGridCacheInvalidate(t *testing.T) {
	cache := newDayGridCache(time.Minute, 4, time.Now)
	cache.Store("key", []ChartDay{{NonWorking: true}})
	cache.Invalidate()
	if _, ok := cache.Get("key"); ok {
		t.Fatalf("expected cache to be empty after invalidation")
	}
}

func TestBuildDayGridKeyReflectsRules(t *testing.T) {
	anchor := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	base := Project{
		ID:         "project-1",
		AnchorDate: anchor,
		DayWindow:  timescale.DefaultDayWindow,
		Workdays:   calendar.DefaultWorkdayRules(),
	}

	same := base
	same.Workdays = calendar.DefaultWorkdayRules()
	if buildDayGridKey(base, timescale.ScaleDay) != buildDayGridKey(same, timescale.ScaleDay) {
		t.Fatalf("expected identical projects to share a key")
	}

	if buildDayGridKey(base, timescale.ScaleDay) == buildDayGridKey(base, timescale.ScaleWeek) {
		t.Fatalf("expected scales to produce distinct keys")
	}

	altered := base
	altered.Workdays = calendar.DefaultWorkdayRules()
	altered.Workdays.NonWorkingOverrides = calendar.NewDateSet(anchor.AddDate(0, 0, 2))
	if buildDayGridKey(base, timescale.ScaleDay) == buildDayGridKey(altered, timescale.ScaleDay) {
		t.Fatalf("expected override change to produce a distinct key")
	}
}
