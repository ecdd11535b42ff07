package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/internal/domain"
)

// Wednesday.
var refNow = time.Date(2024, 3, 13, 15, 30, 0, 0, time.UTC)

func session(date string, minutes int) domain.Session {
	return domain.Session{Date: date, DurationMinutes: minutes, Project: "Writing"}
}

func TestCompute_NoSessions(t *testing.T) {
	c := Compute(nil, refNow)

	for _, cmp := range []Comparison{c.Day, c.Week, c.Month} {
		assert.Zero(t, cmp.Current.Hours)
		require.Len(t, cmp.Past, PastWindows)
		for _, w := range cmp.Past {
			assert.Zero(t, w.Hours)
		}
		assert.Zero(t, cmp.Average)
		assert.Zero(t, cmp.ChangePercent)
		assert.False(t, cmp.HasBaseline)
	}
}

func TestCompute_DayWindows(t *testing.T) {
	sessions := []domain.Session{
		session("2024-03-13", 30),
		session("2024-03-06", 120),
		session("2024-02-28", 60),
		session("2024-03-12", 600), // yesterday, outside every day window
	}

	c := Compute(sessions, refNow).Day

	assert.Equal(t, "Today", c.Current.Label)
	assert.Equal(t, "Mar 13", c.Current.Range)
	assert.InDelta(t, 0.5, c.Current.Hours, 1e-9)

	labels := []string{c.Past[0].Label, c.Past[1].Label, c.Past[2].Label}
	assert.Equal(t, []string{"Last Wednesday", "2 Wednesdays Ago", "3 Wednesdays Ago"}, labels)
	assert.Equal(t, "Mar 6", c.Past[0].Range)
	assert.InDelta(t, 2.0, c.Past[0].Hours, 1e-9)
	assert.InDelta(t, 1.0, c.Past[1].Hours, 1e-9)
	assert.Zero(t, c.Past[2].Hours)

	assert.InDelta(t, 1.0, c.Average, 1e-9)
	assert.True(t, c.HasBaseline)
	assert.InDelta(t, -50.0, c.ChangePercent, 1e-9)
}

func TestCompute_WeekWindows(t *testing.T) {
	sessions := []domain.Session{
		session("2024-03-11", 60), // Monday this week
		session("2024-03-13", 60),
		session("2024-03-14", 60), // Thursday last week falls outside the partial window
		session("2024-03-06", 90),
		session("2024-03-07", 90), // Thursday last week
		session("2024-02-26", 30),
	}

	c := Compute(sessions, refNow).Week

	assert.Equal(t, "This Week", c.Current.Label)
	assert.Equal(t, "Mar 11 - Mar 13", c.Current.Range)
	assert.InDelta(t, 2.0, c.Current.Hours, 1e-9)

	assert.Equal(t, "Last Week", c.Past[0].Label)
	assert.Equal(t, "Mar 4 - Mar 6", c.Past[0].Range)
	assert.InDelta(t, 1.5, c.Past[0].Hours, 1e-9)

	assert.Equal(t, "2 Weeks Ago", c.Past[1].Label)
	assert.Equal(t, "Feb 26 - Feb 28", c.Past[1].Range)
	assert.InDelta(t, 0.5, c.Past[1].Hours, 1e-9)

	assert.Equal(t, "3 Weeks Ago", c.Past[2].Label)
	assert.Equal(t, "Feb 19 - Feb 21", c.Past[2].Range)
}

func TestCompute_WeekOnMonday(t *testing.T) {
	monday := time.Date(2024, 3, 11, 8, 0, 0, 0, time.UTC)

	c := Compute(nil, monday).Week

	assert.Equal(t, "Mar 11", c.Current.Range)
	assert.Equal(t, "Mar 4", c.Past[0].Range)
}

func TestCompute_MonthWindowsClampToMonthLength(t *testing.T) {
	now := time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		session("2024-05-01", 60),
		session("2024-04-30", 120),
		session("2024-03-31", 180),
		session("2024-02-29", 240),
	}

	c := Compute(sessions, now).Month

	assert.Equal(t, "This Month", c.Current.Label)
	assert.Equal(t, "May 1 - May 31", c.Current.Range)
	assert.InDelta(t, 1.0, c.Current.Hours, 1e-9)

	assert.Equal(t, "Last Month", c.Past[0].Label)
	assert.Equal(t, "Apr 1 - Apr 30", c.Past[0].Range)
	assert.InDelta(t, 2.0, c.Past[0].Hours, 1e-9)

	assert.Equal(t, "2 Months Ago", c.Past[1].Label)
	assert.Equal(t, "Mar 1 - Mar 31", c.Past[1].Range)
	assert.InDelta(t, 3.0, c.Past[1].Hours, 1e-9)

	assert.Equal(t, "3 Months Ago", c.Past[2].Label)
	assert.Equal(t, "Feb 1 - Feb 29", c.Past[2].Range)
	assert.InDelta(t, 4.0, c.Past[2].Hours, 1e-9)
}

func TestCompute_MonthAcrossYearBoundary(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	c := Compute([]domain.Session{session("2023-11-10", 60)}, now).Month

	assert.Equal(t, "Dec 1 - Dec 15", c.Past[0].Range)
	assert.Equal(t, "Nov 1 - Nov 15", c.Past[1].Range)
	assert.InDelta(t, 1.0, c.Past[1].Hours, 1e-9)
	assert.Equal(t, "Oct 1 - Oct 15", c.Past[2].Range)
}

func TestCompute_OneSessionSevenDaysAgo(t *testing.T) {
	sevenDaysAgo := refNow.AddDate(0, 0, -7).Format("2006-01-02")

	c := Compute([]domain.Session{session(sevenDaysAgo, 120)}, refNow)

	assert.Equal(t, "Last Wednesday", c.Day.Past[0].Label)
	assert.Equal(t, 2.0, c.Day.Past[0].Hours)
}

func TestCompute_SkipsUnparseableDates(t *testing.T) {
	sessions := []domain.Session{
		session("not a date", 600),
		session("", 600),
		session("2024/03/13", 60),
	}

	c := Compute(sessions, refNow)

	assert.InDelta(t, 1.0, c.Day.Current.Hours, 1e-9)
}

func TestComparisons_ForGranularity(t *testing.T) {
	c := Compute(nil, refNow)

	week, ok := c.ForGranularity(Week)
	require.True(t, ok)
	assert.Equal(t, Week, week.Granularity)

	_, ok = c.ForGranularity("year")
	assert.False(t, ok)
}
