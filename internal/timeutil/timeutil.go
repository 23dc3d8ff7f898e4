// ABOUTME: Time helpers for episode listing windows and duration display
// ABOUTME: Maps period names to release-date ranges and normalizes iTunes durations

package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StartOfDay returns midnight (00:00:00) of the day containing t, in t's location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the most recent Sunday on or before t
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// StartOfMonth returns midnight of the first day of t's month
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Window is a half-open release-date range. A nil bound is unbounded.
type Window struct {
	Since *time.Time
	Until *time.Time
}

// ParsePeriod converts a period name into a release-date window relative to now.
// Supported values: "today", "yesterday", "week", "month".
func ParsePeriod(period string, now time.Time) (Window, bool) {
	today := StartOfDay(now)
	switch strings.ToLower(strings.TrimSpace(period)) {
	case "today":
		return Window{Since: &today}, true
	case "yesterday":
		since := today.AddDate(0, 0, -1)
		return Window{Since: &since, Until: &today}, true
	case "week":
		since := StartOfWeek(now)
		return Window{Since: &since}, true
	case "month":
		since := StartOfMonth(now)
		return Window{Since: &since}, true
	default:
		return Window{}, false
	}
}

// ParseDuration reads an itunes:duration value. Feeds publish plain seconds
// ("3723"), "MM:SS", or "HH:MM:SS".
func ParseDuration(raw string) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	parts := strings.Split(raw, ":")
	if len(parts) > 3 {
		return 0, false
	}

	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, true
}

// FormatDuration renders an itunes:duration as H:MM:SS or M:SS.
// Unparseable values are returned unchanged.
func FormatDuration(raw string) string {
	d, ok := ParseDuration(raw)
	if !ok {
		return raw
	}

	secs := int(d.Seconds())
	h, m, s := secs/3600, (secs%3600)/60, secs%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
