package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/internal/domain"
)

func TestProjectTotals(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		{Date: "2024-03-01", DurationMinutes: 60, Project: "Writing"},
		{Date: "2024-03-02", DurationMinutes: 30, Project: "writing "},
		{Date: "2024-03-07", DurationMinutes: 120, Project: "Research"},
		{Date: "2024-03-03", DurationMinutes: 30, Project: "Admin"},
		{Date: "2024-03-03", DurationMinutes: 30, Project: "Email"},
		{Date: "2024-03-08", DurationMinutes: 600, Project: "Writing"},
		{Date: "garbage", DurationMinutes: 600, Project: "Writing"},
	}

	totals := ProjectTotals(sessions, from, to)

	require.Len(t, totals, 4)
	assert.Equal(t, ProjectTotal{Project: "Research", Hours: 2, Sessions: 1}, totals[0])
	assert.Equal(t, ProjectTotal{Project: "Writing", Hours: 1.5, Sessions: 2}, totals[1])
	assert.Equal(t, "Admin", totals[2].Project, "ties sort by name")
	assert.Equal(t, "Email", totals[3].Project)
}

func TestProjectTotals_Empty(t *testing.T) {
	now := time.Now()

	totals := ProjectTotals(nil, now, now)

	assert.NotNil(t, totals)
	assert.Empty(t, totals)
}

func TestDailyTotals_ZeroFilled(t *testing.T) {
	from := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		{Date: "2024-02-27", DurationMinutes: 45},
		{Date: "2024-02-27", DurationMinutes: 15},
		{Date: "2024-02-29", DurationMinutes: 90},
	}

	totals := DailyTotals(sessions, from, to)

	require.Len(t, totals, 4)
	assert.Equal(t, []float64{1, 0, 1.5, 0}, []float64{totals[0].Hours, totals[1].Hours, totals[2].Hours, totals[3].Hours})
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), totals[2].Date)
}

func TestTotalHours(t *testing.T) {
	assert.Equal(t, 0.0, TotalHours(nil))
	assert.Equal(t, 2.5, TotalHours([]domain.Session{{DurationMinutes: 90}, {DurationMinutes: 60}}))
}
