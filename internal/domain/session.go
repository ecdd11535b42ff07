package domain

import (
	"math"
	"time"

	"deepwork/internal/timeutil"
)

// Session represents one completed, timed unit of work.
// This is a pure domain model without storage-specific concerns.
type Session struct {
	ID              string
	Date            string
	StartTime       string
	EndTime         string
	DurationMinutes int
	Project         string
	Notes           string
}

// NewSession builds a completed session from the two instants bounding it.
// Date and clock fields are taken in the local time of start and end.
func NewSession(project string, start, end time.Time, notes string) Session {
	elapsedMs := end.Sub(start).Milliseconds()
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	return Session{
		Date:            start.Format(timeutil.DateLayout),
		StartTime:       start.Format(timeutil.ClockLayout),
		EndTime:         end.Format(timeutil.ClockLayout),
		DurationMinutes: int(math.Round(float64(elapsedMs) / 60000)),
		Project:         project,
		Notes:           notes,
	}
}

// HasTimes reports whether both time boundaries are present.
func (s Session) HasTimes() bool {
	return s.StartTime != "" && s.EndTime != ""
}

// RecomputeDuration derives DurationMinutes from the time boundaries. The
// session is returned unchanged when either boundary is missing or unparseable.
func (s Session) RecomputeDuration() Session {
	if !s.HasTimes() {
		return s
	}
	minutes, err := timeutil.DurationMinutes(s.StartTime, s.EndTime)
	if err != nil {
		return s
	}
	s.DurationMinutes = minutes
	return s
}

// Day parses the session date in loc.
func (s Session) Day(loc *time.Location) (time.Time, error) {
	return timeutil.ParseDate(s.Date, loc)
}

// Hours returns the tracked duration in fractional hours.
func (s Session) Hours() float64 {
	return float64(s.DurationMinutes) / 60
}

// Duration returns the tracked duration.
func (s Session) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// SessionFilter represents search criteria for sessions. Nil fields match everything.
type SessionFilter struct {
	From    *time.Time
	To      *time.Time
	Project *string
}

// Matches reports whether s satisfies the filter. Sessions whose date cannot
// be parsed only match filters without a date bound.
func (f SessionFilter) Matches(s Session) bool {
	if f.Project != nil && !SameName(*f.Project, s.Project) {
		return false
	}
	if f.From == nil && f.To == nil {
		return true
	}
	loc := time.Local
	if f.From != nil {
		loc = f.From.Location()
	} else if f.To != nil {
		loc = f.To.Location()
	}
	day, err := s.Day(loc)
	if err != nil {
		return false
	}
	if f.From != nil && day.Before(timeutil.StartOfDay(*f.From)) {
		return false
	}
	if f.To != nil && day.After(timeutil.StartOfDay(*f.To)) {
		return false
	}
	return true
}

// Filter returns the sessions matching f, preserving order.
func Filter(sessions []Session, f SessionFilter) []Session {
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}
