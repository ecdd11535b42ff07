package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"deepwork/internal/config"
	"deepwork/internal/domain"
	"deepwork/internal/errors"
	"deepwork/internal/timeutil"
	"deepwork/internal/tracker"
)

// TrackCommand handles the track command
type TrackCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewTrackCommand creates a new track command handler
func NewTrackCommand(app *App) *TrackCommand {
	return &TrackCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// LongRunning implements LongRunner; a session lasts until stopped.
func (c *TrackCommand) LongRunning() bool { return true }

// Execute runs the track command
func (c *TrackCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "track", "usage: dw track <project>")
	}
	name := strings.Join(args, " ")
	out := c.app.out

	res, err := c.app.businessAPI.Start(ctx, name)
	if err != nil {
		return c.errorHandler.Handle("start tracking", err)
	}
	if res.AlreadyActive {
		fmt.Fprintf(out, "Already tracking %s\n", res.Status.ProjectName)
		return nil
	}
	if res.CreatedProject != nil {
		fmt.Fprintf(out, "Created project %s\n", res.CreatedProject.Name)
	}

	runCtx, stopSignals := c.app.interrupts(ctx)
	if err := c.wait(runCtx, res.Status); err != nil {
		c.app.logger.WithError(err).Warn("timer view failed, stopping session")
	}
	stopSignals()

	// An interrupt during the prompt abandons the notes, not the session.
	promptCtx, cancel := c.app.interrupts(context.WithoutCancel(ctx))
	defer cancel()
	session, err := c.app.businessAPI.Stop(promptCtx, c.app.notesPrompter())
	if err != nil {
		return c.errorHandler.Handle("record session", err)
	}
	if session == nil {
		fmt.Fprintln(out, "No session was running")
		return nil
	}
	fmt.Fprintln(out, describeSession("Recorded", *session))
	return nil
}

// wait blocks until the user stops the session or ctx ends.
func (c *TrackCommand) wait(ctx context.Context, status tracker.Status) error {
	if c.app.notesMode() == config.PromptTUI {
		model := newTimerModel(status.ProjectName, c.app.businessAPI.Elapsed, c.refreshInterval(), c.app.theme())
		return runTimerView(ctx, c.app.in, c.app.out, model)
	}
	return c.waitForEnter(ctx, status)
}

// waitForEnter is the line-mode timer. Progress is redrawn in place only on
// a terminal. End of input leaves the session running until interrupted.
func (c *TrackCommand) waitForEnter(ctx context.Context, status tracker.Status) error {
	out := c.app.out
	fmt.Fprintf(out, "Tracking %s. Press Enter to stop.\n", status.ProjectName)

	readCtx, cancelRead := context.WithCancel(ctx)
	defer cancelRead()
	enter := make(chan struct{}, 1)
	go func() {
		if _, err := c.app.lineReader().Next(readCtx); err == nil {
			enter <- struct{}{}
		}
	}()

	progress := isTerminal(out)
	ticker := time.NewTicker(c.refreshInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if progress {
				fmt.Fprintln(out)
			}
			return nil
		case <-enter:
			return nil
		case <-ticker.C:
			if progress {
				fmt.Fprintf(out, "\r%s  %s", status.ProjectName, timeutil.FormatClock(c.app.businessAPI.Elapsed()))
			}
		}
	}
}

func (c *TrackCommand) refreshInterval() time.Duration {
	if c.app.config != nil && c.app.config.Tracker.RefreshInterval > 0 {
		return c.app.config.Tracker.RefreshInterval
	}
	return time.Second
}

// describeSession renders a one-line summary of a recorded session.
func describeSession(verb string, s domain.Session) string {
	line := fmt.Sprintf("%s %s on %s", verb, timeutil.FormatMinutes(s.DurationMinutes), s.Project)
	if s.StartTime != "" && s.EndTime != "" {
		line += fmt.Sprintf(" (%s %s-%s)", s.Date, shortClock(s.StartTime), shortClock(s.EndTime))
	} else {
		line += fmt.Sprintf(" (%s)", s.Date)
	}
	if s.Notes != "" {
		line += ": " + s.Notes
	}
	return line
}

// shortClock trims seconds from HH:MM:SS.
func shortClock(clock string) string {
	if len(clock) == len(timeutil.ClockLayout) {
		return clock[:5]
	}
	return clock
}
