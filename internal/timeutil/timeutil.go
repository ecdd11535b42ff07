// Package timeutil holds the pure date, clock and duration helpers shared by
// the stores, the tracker and the statistics engine.
package timeutil

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
)

const (
	// DateLayout is the canonical on-disk date format.
	DateLayout = "2006-01-02"
	// ClockLayout is the canonical on-disk time-of-day format.
	ClockLayout = "15:04:05"

	secondsPerDay = 24 * 60 * 60
)

// Accepted alternative spellings, canonicalized on input.
var (
	dateLayouts  = []string{DateLayout, "2006/01/02", "2006-1-2", "2006/1/2"}
	clockLayouts = []string{ClockLayout, "15:04", "3:04:05 PM", "3:04 PM", "3:04:05PM", "3:04PM"}
)

// GenerateID creates a unique ID based on timestamp and random suffix.
func GenerateID(t time.Time) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 5)
	for i := range suffix {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		suffix[i] = chars[n.Int64()]
	}
	return fmt.Sprintf("%s-%s", t.Format("20060102-150405"), string(suffix))
}

// FormatDuration formats a duration as "1h 40m" or "45m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatMinutes formats a whole number of minutes the same way as FormatDuration.
func FormatMinutes(minutes int) string {
	return FormatDuration(time.Duration(minutes) * time.Minute)
}

// FormatClock formats a duration as HH:MM:SS, for elapsed-time displays.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatHours renders fractional hours with one decimal, e.g. "2.5h".
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.1fh", math.Round(hours*10)/10)
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns Monday 00:00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	return StartOfDay(t.AddDate(0, 0, -(wd - 1)))
}

// StartOfMonth returns the first day of t's month at 00:00:00.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate parses a calendar date in loc, accepting the canonical layout and
// a few common alternatives.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, expected YYYY-MM-DD", s)
}

// CanonicalDate rewrites a date string into YYYY-MM-DD.
func CanonicalDate(s string) (string, error) {
	t, err := ParseDate(s, time.UTC)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// ParseClock parses a time of day and returns its offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q, expected HH:MM:SS", s)
}

// CanonicalClock rewrites a time-of-day string into HH:MM:SS.
func CanonicalClock(s string) (string, error) {
	offset, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(offset), nil
}

// DurationMinutes returns the whole minutes between two times of day. An end
// earlier than the start is taken to be on the following day.
func DurationMinutes(start, end string) (int, error) {
	from, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	to, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	diff := int64((to - from) / time.Second)
	if diff < 0 {
		diff += secondsPerDay
	}
	return int(math.Round(float64(diff) / 60)), nil
}

// ShortDate renders a date as "Jan 2".
func ShortDate(t time.Time) string {
	return t.Format("Jan 2")
}

// ShortRange renders "Jan 2" for a single day or "Jan 1 - Jan 7" for a span.
func ShortRange(from, to time.Time) string {
	if SameDay(from, to) {
		return ShortDate(from)
	}
	return ShortDate(from) + " - " + ShortDate(to)
}
