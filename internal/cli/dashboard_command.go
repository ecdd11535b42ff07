package cli

import (
	"context"
	"fmt"
	"strconv"

	"deepwork/internal/api"
	"deepwork/internal/stats"
	"deepwork/internal/timeutil"
)

// barWidth is the widest bar in the dashboard charts.
const barWidth = 24

// DashboardCommand handles the dashboard command
type DashboardCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewDashboardCommand creates a new dashboard command handler
func NewDashboardCommand(app *App) *DashboardCommand {
	return &DashboardCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the dashboard command
func (c *DashboardCommand) Execute(ctx context.Context, args []string) error {
	now := c.app.now()
	days := api.DefaultDashboardDays
	if c.app.config != nil && c.app.config.Display.DashboardDays > 0 {
		days = c.app.config.Display.DashboardDays
	}

	dash, err := c.app.businessAPI.Dashboard(ctx, now, days)
	if err != nil {
		return c.errorHandler.Handle("build dashboard", err)
	}
	c.renderDashboard(dash)
	return nil
}

func (c *DashboardCommand) renderDashboard(dash *api.Dashboard) {
	out := c.app.out
	t := c.app.theme()
	width := 0
	if c.app.config != nil {
		width = c.app.config.Display.TableWidth
	}

	fmt.Fprintln(out, t.title.Render("Deep work, "+dash.Now.Format("Mon Jan 2 2006 15:04")))
	if dash.Status.Active() {
		fmt.Fprintf(out, "Tracking %s for %s\n", dash.Status.ProjectName, timeutil.FormatDuration(dash.Status.Elapsed))
	}
	fmt.Fprintln(out)

	// Comparisons
	rows := make([][]string, 0, 3)
	for _, g := range []stats.Granularity{stats.Day, stats.Week, stats.Month} {
		comp, _ := dash.Comparisons.ForGranularity(g)
		change := "n/a"
		if comp.HasBaseline {
			change = fmt.Sprintf("%+.0f%%", comp.ChangePercent)
		}
		rows = append(rows, []string{
			comp.Current.Label,
			comp.Current.Range,
			timeutil.FormatHours(comp.Current.Hours),
			timeutil.FormatHours(comp.Average),
			change,
		})
	}
	fmt.Fprintln(out, t.table(width, []string{"Period", "Dates", "Hours", "Average", "Change"}, rows))

	// Project totals
	fmt.Fprintln(out, t.title.Render("Projects, "+timeutil.ShortRange(dash.From, dash.Now)))
	if len(dash.ProjectTotals) == 0 {
		fmt.Fprintln(out, t.muted.Render("No sessions in this period"))
	} else {
		peak := dash.ProjectTotals[0].Hours
		rows = rows[:0]
		for _, pt := range dash.ProjectTotals {
			rows = append(rows, []string{pt.Project, timeutil.FormatHours(pt.Hours), strconv.Itoa(pt.Sessions), bar(pt.Hours, peak, barWidth)})
		}
		fmt.Fprintln(out, t.table(width, []string{"Project", "Hours", "Sessions", ""}, rows))
	}

	// Daily totals
	fmt.Fprintln(out, t.title.Render("Daily"))
	peak := 0.0
	for _, d := range dash.Daily {
		if d.Hours > peak {
			peak = d.Hours
		}
	}
	rows = rows[:0]
	for _, d := range dash.Daily {
		rows = append(rows, []string{d.Date.Format("Mon Jan 2"), timeutil.FormatHours(d.Hours), bar(d.Hours, peak, barWidth)})
	}
	fmt.Fprintln(out, t.table(width, []string{"Day", "Hours", ""}, rows))

	// Recent sessions
	if len(dash.Recent) > 0 {
		fmt.Fprintln(out, t.title.Render("Recent sessions"))
		rows = rows[:0]
		for _, s := range dash.Recent {
			rows = append(rows, []string{s.Date, shortClock(s.StartTime), timeutil.FormatMinutes(s.DurationMinutes), s.Project, s.Notes})
		}
		fmt.Fprintln(out, t.table(width, []string{"Date", "Start", "Duration", "Project", "Notes"}, rows))
	}

	fmt.Fprintf(out, "%d %s, %s tracked in total\n",
		dash.SessionCount, plural(dash.SessionCount, "session"), timeutil.FormatHours(dash.TotalHours))
}
