package application

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/zegramtool/construction-gantt-chart/internal/calendar"
	"github.com/zegramtool/construction-gantt-chart/internal/timescale"
)

// dayGridCache stores recently annotated day columns so repeated chart
// builds for an unchanged project skip the working-day and holiday walk.
type dayGridCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]dayGridCacheEntry
}

type dayGridCacheEntry struct {
	days      []ChartDay
	expiresAt time.Time
}

func newDayGridCache(ttl time.Duration, maxEntries int, now func() time.Time) *dayGridCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &dayGridCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]dayGridCacheEntry),
	}
}

func (c *dayGridCache) Get(key string) ([]ChartDay, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneChartDays(entry.days), true
}

func (c *dayGridCache) Store(key string, days []ChartDay) {
	if c == nil {
		return
	}
	cloned := cloneChartDays(days)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = dayGridCacheEntry{days: cloned, expiresAt: expiry}
}

func (c *dayGridCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]dayGridCacheEntry)
	c.mu.Unlock()
}

func (c *dayGridCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *dayGridCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneChartDays(days []ChartDay) []ChartDay {
	if len(days) == 0 {
		return nil
	}
	out := make([]ChartDay, len(days))
	copy(out, days)
	return out
}

// buildDayGridKey captures every input the day annotation depends on: the
// anchor date, the window length for the scale, and the workday rules.
// Changing any of them through a project update lands on a fresh key.
func buildDayGridKey(project Project, scale timescale.Scale) string {
	builder := strings.Builder{}
	builder.WriteString(project.ID)
	builder.WriteString("|")
	builder.WriteString(scale.String())
	builder.WriteString("|")
	builder.WriteString(calendar.FormatDate(project.AnchorDate))
	builder.WriteString("|")
	fmt.Fprintf(&builder, "%d,%d,%d", project.DayWindow.Day, project.DayWindow.Week, project.DayWindow.Month)
	builder.WriteString("|")
	if project.Workdays.SkipSaturday {
		builder.WriteString("sat")
	}
	builder.WriteString("|")
	if project.Workdays.SkipSunday {
		builder.WriteString("sun")
	}
	builder.WriteString("|")
	if project.Workdays.SkipHoliday {
		builder.WriteString("hol")
	}
	builder.WriteString("|")
	builder.WriteString(strings.Join(project.Workdays.WorkingOverrides.Values(), ","))
	builder.WriteString("|")
	builder.WriteString(strings.Join(project.Workdays.NonWorkingOverrides.Values(), ","))
	return builder.String()
}
