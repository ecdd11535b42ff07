package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"deepwork/internal/domain"
	"deepwork/internal/errors"
	"deepwork/internal/timeutil"
)

// SessionsListCommand handles the sessions list command
type SessionsListCommand struct {
	app          *App
	errorHandler *ErrorHandler
	filters      sessionFilterFlags
}

// NewSessionsListCommand creates a new sessions list command handler
func NewSessionsListCommand(app *App) *SessionsListCommand {
	return &SessionsListCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags implements FlagBinder
func (c *SessionsListCommand) BindFlags(flags *pflag.FlagSet) {
	c.filters.bind(flags)
}

// Execute runs the sessions list command
func (c *SessionsListCommand) Execute(ctx context.Context, args []string) error {
	now := c.app.now()
	filter, err := c.filters.filter(now)
	if err != nil {
		return err
	}

	sessions, err := c.app.businessAPI.Sessions(ctx, filter)
	if err != nil {
		return c.errorHandler.Handle("list sessions", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(c.app.out, "No sessions found")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	minutes := 0
	for _, s := range sessions {
		rows = append(rows, []string{
			s.ID,
			s.Date,
			shortClock(s.StartTime),
			shortClock(s.EndTime),
			timeutil.FormatMinutes(s.DurationMinutes),
			s.Project,
			s.Notes,
			lastSeen(s, now),
		})
		minutes += s.DurationMinutes
	}

	t := c.app.theme()
	fmt.Fprintln(c.app.out, t.table(0, []string{"ID", "Date", "Start", "End", "Duration", "Project", "Notes", "When"}, rows))
	fmt.Fprintf(c.app.out, "%d %s, %s total\n", len(sessions), plural(len(sessions), "session"), timeutil.FormatMinutes(minutes))
	return nil
}

// SessionsAddCommand handles the sessions add command
type SessionsAddCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewSessionsAddCommand creates a new sessions add command handler
func NewSessionsAddCommand(app *App) *SessionsAddCommand {
	return &SessionsAddCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the sessions add command
func (c *SessionsAddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return errors.NewInvalidInputError("command", "sessions add", "usage: dw sessions add <project> <date> <start> <end> [notes]")
	}
	session := domain.Session{
		Project:   args[0],
		Date:      args[1],
		StartTime: args[2],
		EndTime:   args[3],
	}
	if len(args) == 5 {
		session.Notes = args[4]
	}

	saved, err := c.app.businessAPI.AppendSession(ctx, session)
	if err != nil {
		return c.errorHandler.Handle("add session", err)
	}
	fmt.Fprintln(c.app.out, describeSession("Added", saved))
	fmt.Fprintf(c.app.out, "ID: %s\n", saved.ID)
	return nil
}

// SessionsEditCommand handles the sessions edit command
type SessionsEditCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewSessionsEditCommand creates a new sessions edit command handler
func NewSessionsEditCommand(app *App) *SessionsEditCommand {
	return &SessionsEditCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the sessions edit command
func (c *SessionsEditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.NewInvalidInputError("command", "sessions edit", "usage: dw sessions edit <id> <field> <value>")
	}

	updated, err := c.app.businessAPI.UpdateSession(ctx, args[0], args[1], args[2])
	if err != nil {
		return c.errorHandler.Handle("update session", err)
	}
	fmt.Fprintln(c.app.out, describeSession("Updated", updated))
	return nil
}

// SessionsDeleteCommand handles the sessions delete command
type SessionsDeleteCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewSessionsDeleteCommand creates a new sessions delete command handler
func NewSessionsDeleteCommand(app *App) *SessionsDeleteCommand {
	return &SessionsDeleteCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the sessions delete command
func (c *SessionsDeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "sessions delete", "usage: dw sessions delete <id>")
	}

	if err := c.app.businessAPI.DeleteSession(ctx, args[0]); err != nil {
		return c.errorHandler.Handle("delete session", err)
	}
	fmt.Fprintf(c.app.out, "Deleted session %s\n", args[0])
	return nil
}

// SessionsImportCommand handles the sessions import command
type SessionsImportCommand struct {
	app          *App
	errorHandler *ErrorHandler
	replace      bool
}

// NewSessionsImportCommand creates a new sessions import command handler
func NewSessionsImportCommand(app *App) *SessionsImportCommand {
	return &SessionsImportCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags implements FlagBinder
func (c *SessionsImportCommand) BindFlags(flags *pflag.FlagSet) {
	flags.BoolVar(&c.replace, "replace", false, "Replace every recorded session instead of appending")
}

// Execute runs the sessions import command
func (c *SessionsImportCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "sessions import", "usage: dw sessions import <file|-> [--replace]")
	}

	in := c.app.in
	source := "stdin"
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return c.errorHandler.Handle("import sessions", errors.NewStorageError("open import file", args[0], err))
		}
		defer f.Close()
		in, source = f, args[0]
	}

	count, err := c.app.businessAPI.ImportSessions(ctx, in, c.replace)
	if err != nil {
		return c.errorHandler.Handle("import sessions", err)
	}
	if c.replace {
		fmt.Fprintf(c.app.out, "Replaced all sessions with %d %s from %s\n", count, plural(count, "session"), source)
		return nil
	}
	fmt.Fprintf(c.app.out, "Imported %d %s from %s\n", count, plural(count, "session"), source)
	return nil
}
