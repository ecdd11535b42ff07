package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"deepwork/internal/domain"
	"deepwork/internal/timeutil"
)

// StatusCommand handles the status command
type StatusCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the status command
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	now := c.app.now()
	out := c.app.out

	if status := c.app.businessAPI.Status(); status.Active() {
		fmt.Fprintf(out, "Tracking %s for %s (since %s)\n",
			status.ProjectName, timeutil.FormatDuration(status.Elapsed), status.StartTime.Format("15:04"))
	}

	today := timeutil.StartOfDay(now)
	sessions, err := c.app.businessAPI.Sessions(ctx, domain.SessionFilter{From: &today, To: &now})
	if err != nil {
		return c.errorHandler.Handle("load sessions", err)
	}
	minutes := 0
	for _, s := range sessions {
		minutes += s.DurationMinutes
	}
	fmt.Fprintf(out, "Today: %s in %d %s\n", timeutil.FormatMinutes(minutes), len(sessions), plural(len(sessions), "session"))

	dash, err := c.app.businessAPI.Dashboard(ctx, now, 1)
	if err != nil {
		return c.errorHandler.Handle("load sessions", err)
	}
	if len(dash.Recent) == 0 {
		fmt.Fprintln(out, "No sessions recorded yet")
		return nil
	}
	last := dash.Recent[0]
	fmt.Fprintf(out, "Last session: %s, %s, %s\n",
		last.Project, timeutil.FormatMinutes(last.DurationMinutes), lastSeen(last, now))
	return nil
}

// lastSeen renders when a session ended relative to now.
func lastSeen(s domain.Session, now time.Time) string {
	day, err := s.Day(now.Location())
	if err != nil {
		return s.Date
	}
	if s.EndTime == "" {
		if timeutil.SameDay(day, now) {
			return "today"
		}
		return humanize.RelTime(day, now, "ago", "from now")
	}
	offset, err := timeutil.ParseClock(s.EndTime)
	if err != nil {
		return s.Date
	}
	ended := day.Add(offset)
	if s.StartTime != "" && s.EndTime < s.StartTime {
		ended = ended.AddDate(0, 0, 1)
	}
	return humanize.RelTime(ended, now, "ago", "from now")
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
