// Package stats derives comparison windows and aggregates from completed
// sessions. Everything here is pure: callers pass the session set and the
// reference instant.
package stats

import (
	"fmt"
	"time"

	"deepwork/internal/domain"
	"deepwork/internal/timeutil"
)

// PastWindows is the number of prior windows each comparison carries.
const PastWindows = 3

// Granularity selects the length of a comparison window.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// Window is a labelled, inclusive range of calendar days and the hours tracked in it.
type Window struct {
	Label string    `json:"label"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Range string    `json:"range"`
	Hours float64   `json:"hours"`
}

// Comparison holds the current window and its prior equivalents.
type Comparison struct {
	Granularity Granularity `json:"granularity"`
	Current     Window      `json:"current"`
	Past        []Window    `json:"past"`
	// Average is the mean of the past windows' hours.
	Average float64 `json:"average"`
	// ChangePercent compares Current against Average. Zero without a baseline.
	ChangePercent float64 `json:"change_percent"`
	HasBaseline   bool    `json:"has_baseline"`
}

// Comparisons groups the three granularities.
type Comparisons struct {
	Day   Comparison `json:"day"`
	Week  Comparison `json:"week"`
	Month Comparison `json:"month"`
}

// ForGranularity returns the comparison for g.
func (c Comparisons) ForGranularity(g Granularity) (Comparison, bool) {
	switch g {
	case Day:
		return c.Day, true
	case Week:
		return c.Week, true
	case Month:
		return c.Month, true
	}
	return Comparison{}, false
}

// Compute builds day, week and month comparisons relative to now. Session
// dates are interpreted in now's location; unparseable dates are skipped.
func Compute(sessions []domain.Session, now time.Time) Comparisons {
	idx := indexByDay(sessions, now.Location())
	today := timeutil.StartOfDay(now)
	return Comparisons{
		Day:   build(Day, idx, dayWindows(today)),
		Week:  build(Week, idx, weekWindows(today)),
		Month: build(Month, idx, monthWindows(today)),
	}
}

func build(g Granularity, idx dayIndex, windows []Window) Comparison {
	for i := range windows {
		windows[i].Range = timeutil.ShortRange(windows[i].From, windows[i].To)
		windows[i].Hours = idx.sum(windows[i].From, windows[i].To)
	}

	c := Comparison{Granularity: g, Current: windows[0], Past: windows[1:]}
	total := 0.0
	for _, w := range c.Past {
		total += w.Hours
	}
	c.Average = total / float64(len(c.Past))
	if c.Average > 0 {
		c.HasBaseline = true
		c.ChangePercent = (c.Current.Hours - c.Average) / c.Average * 100
	}
	return c
}

func dayWindows(today time.Time) []Window {
	windows := []Window{{Label: "Today", From: today, To: today}}
	for n := 1; n <= PastWindows; n++ {
		day := today.AddDate(0, 0, -7*n)
		windows = append(windows, Window{Label: dayLabel(n, day.Weekday()), From: day, To: day})
	}
	return windows
}

func dayLabel(n int, wd time.Weekday) string {
	if n == 1 {
		return "Last " + wd.String()
	}
	return fmt.Sprintf("%d %ss Ago", n, wd)
}

func weekWindows(today time.Time) []Window {
	monday := timeutil.StartOfWeek(today)
	windows := []Window{{Label: "This Week", From: monday, To: today}}
	for n := 1; n <= PastWindows; n++ {
		windows = append(windows, Window{
			Label: agoLabel(n, "Week"),
			From:  monday.AddDate(0, 0, -7*n),
			To:    today.AddDate(0, 0, -7*n),
		})
	}
	return windows
}

func monthWindows(today time.Time) []Window {
	first := timeutil.StartOfMonth(today)
	windows := []Window{{Label: "This Month", From: first, To: today}}
	for n := 1; n <= PastWindows; n++ {
		start := time.Date(first.Year(), first.Month()-time.Month(n), 1, 0, 0, 0, 0, today.Location())
		last := min(today.Day(), timeutil.DaysInMonth(start.Year(), start.Month()))
		windows = append(windows, Window{
			Label: agoLabel(n, "Month"),
			From:  start,
			To:    start.AddDate(0, 0, last-1),
		})
	}
	return windows
}

func agoLabel(n int, unit string) string {
	switch n {
	case 0:
		return "This " + unit
	case 1:
		return "Last " + unit
	}
	return fmt.Sprintf("%d %ss Ago", n, unit)
}
