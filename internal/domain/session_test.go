package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)
	end := time.Date(2024, 1, 1, 10, 30, 0, 0, time.Local)

	s := NewSession("Writing", start, end, "draft")

	assert.Equal(t, Session{
		Date:            "2024-01-01",
		StartTime:       "09:00:00",
		EndTime:         "10:30:00",
		DurationMinutes: 90,
		Project:         "Writing",
		Notes:           "draft",
	}, s)
}

func TestNewSession_RoundsMilliseconds(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		elapsed  time.Duration
		expected int
	}{
		{name: "under half a minute rounds down", elapsed: 29*time.Second + 999*time.Millisecond, expected: 0},
		{name: "half a minute rounds up", elapsed: 30 * time.Second, expected: 1},
		{name: "end before start clamps to zero", elapsed: -time.Minute, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("p", start, start.Add(tt.elapsed), "")
			assert.Equal(t, tt.expected, s.DurationMinutes)
		})
	}
}

func TestSession_RecomputeDuration(t *testing.T) {
	tests := []struct {
		name     string
		session  Session
		expected int
	}{
		{
			name:     "same day",
			session:  Session{StartTime: "09:00:00", EndTime: "10:30:00", DurationMinutes: 5},
			expected: 90,
		},
		{
			name:     "overnight",
			session:  Session{StartTime: "23:00:00", EndTime: "01:00:00"},
			expected: 120,
		},
		{
			name:     "missing end keeps stored duration",
			session:  Session{StartTime: "09:00:00", DurationMinutes: 7},
			expected: 7,
		},
		{
			name:     "unparseable start keeps stored duration",
			session:  Session{StartTime: "soon", EndTime: "10:00:00", DurationMinutes: 7},
			expected: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.session.RecomputeDuration().DurationMinutes)
		})
	}
}

func TestSession_HoursAndDuration(t *testing.T) {
	s := Session{DurationMinutes: 90}
	assert.InDelta(t, 1.5, s.Hours(), 1e-9)
	assert.Equal(t, 90*time.Minute, s.Duration())
}

func TestSessionFilter(t *testing.T) {
	sessions := []Session{
		{ID: "a", Date: "2024-01-01", Project: "Writing"},
		{ID: "b", Date: "2024-01-05", Project: "writing"},
		{ID: "c", Date: "2024-01-09", Project: "Research"},
		{ID: "d", Date: "not a date", Project: "Writing"},
	}
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 9, 18, 0, 0, 0, time.UTC)
	writing := "WRITING"

	tests := []struct {
		name     string
		filter   SessionFilter
		expected []string
	}{
		{name: "empty filter matches all", filter: SessionFilter{}, expected: []string{"a", "b", "c", "d"}},
		{name: "project is case-insensitive", filter: SessionFilter{Project: &writing}, expected: []string{"a", "b", "d"}},
		{name: "date range is inclusive", filter: SessionFilter{From: &from, To: &to}, expected: []string{"b", "c"}},
		{name: "combined", filter: SessionFilter{From: &from, Project: &writing}, expected: []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, s := range Filter(sessions, tt.filter) {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

func TestSession_Day(t *testing.T) {
	day, err := Session{Date: "2024-03-10"}.Day(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), day)

	_, err = Session{Date: ""}.Day(time.UTC)
	assert.Error(t, err)
}
