// ABOUTME: Tests for time utility functions
// ABOUTME: Verifies listing windows and iTunes duration handling

package timeutil

import (
	"testing"
	"time"
)

// Wednesday afternoon
var now = time.Date(2024, time.March, 13, 15, 30, 0, 0, time.UTC)

func TestStartOfDay(t *testing.T) {
	got := StartOfDay(now)
	want := time.Date(2024, time.March, 13, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfDay() = %v, expected %v", got, want)
	}
}

func TestStartOfWeek(t *testing.T) {
	got := StartOfWeek(now)

	if got.Weekday() != time.Sunday {
		t.Errorf("StartOfWeek() weekday = %v, expected Sunday", got.Weekday())
	}
	want := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfWeek() = %v, expected %v", got, want)
	}

	sunday := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	if !StartOfWeek(sunday).Equal(want) {
		t.Errorf("StartOfWeek(sunday) should be the same day")
	}
}

func TestStartOfMonth(t *testing.T) {
	got := StartOfMonth(now)
	want := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfMonth() = %v, expected %v", got, want)
	}
}

func TestParsePeriod(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		period string
		since  *time.Time
		until  *time.Time
		valid  bool
	}{
		{"today", ptr(day(13)), nil, true},
		{"yesterday", ptr(day(12)), ptr(day(13)), true},
		{"week", ptr(day(10)), nil, true},
		{"month", ptr(day(1)), nil, true},
		{" Today ", ptr(day(13)), nil, true},
		{"invalid", nil, nil, false},
		{"", nil, nil, false},
	}

	for _, tc := range tests {
		w, ok := ParsePeriod(tc.period, now)
		if ok != tc.valid {
			t.Errorf("ParsePeriod(%q) valid = %v, expected %v", tc.period, ok, tc.valid)
			continue
		}
		if !sameTime(w.Since, tc.since) {
			t.Errorf("ParsePeriod(%q) since = %v, expected %v", tc.period, w.Since, tc.since)
		}
		if !sameTime(w.Until, tc.until) {
			t.Errorf("ParsePeriod(%q) until = %v, expected %v", tc.period, w.Until, tc.until)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		raw   string
		want  time.Duration
		valid bool
	}{
		{"3723", 3723 * time.Second, true},
		{"62:03", 62*time.Minute + 3*time.Second, true},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second, true},
		{" 45 ", 45 * time.Second, true},
		{"", 0, false},
		{"1:2:3:4", 0, false},
		{"an hour", 0, false},
		{"-5", 0, false},
	}

	for _, tc := range tests {
		got, ok := ParseDuration(tc.raw)
		if ok != tc.valid || got != tc.want {
			t.Errorf("ParseDuration(%q) = %v, %v; expected %v, %v", tc.raw, got, ok, tc.want, tc.valid)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[string]string{
		"3723":     "1:02:03",
		"62:03":    "1:02:03",
		"00:45:00": "45:00",
		"59":       "0:59",
		"an hour":  "an hour",
	}

	for raw, want := range tests {
		if got := FormatDuration(raw); got != want {
			t.Errorf("FormatDuration(%q) = %q, expected %q", raw, got, want)
		}
	}
}

func ptr(t time.Time) *time.Time { return &t }

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
