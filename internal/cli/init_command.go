package cli

import (
	"context"
	"fmt"

	"deepwork/internal/errors"
)

// InitCommand handles the init command
type InitCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewInitCommand creates a new init command handler
func NewInitCommand(app *App) *InitCommand {
	return &InitCommand{
		app:          app,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the init command
func (c *InitCommand) Execute(ctx context.Context, args []string) error {
	if c.app.initializer == nil {
		return errors.NewInvalidInputError("command", "init", "no data files configured")
	}

	res, err := c.app.initializer.Init(ctx)
	if err != nil {
		return c.errorHandler.Handle("initialize data files", err)
	}

	report := func(path string, created bool) {
		if created {
			fmt.Fprintf(c.app.out, "Created %s\n", path)
		} else {
			fmt.Fprintf(c.app.out, "Found %s\n", path)
		}
	}
	report(res.SessionsPath, res.SessionsCreated)
	report(res.ProjectsPath, res.ProjectsCreated)
	return nil
}
