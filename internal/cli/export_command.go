package cli

import (
	"context"

	"github.com/spf13/pflag"
)

// ExportCommand handles the export command
type ExportCommand struct {
	app          *App
	errorHandler *ErrorHandler
	filters      sessionFilterFlags
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags implements FlagBinder
func (c *ExportCommand) BindFlags(flags *pflag.FlagSet) {
	c.filters.bind(flags)
}

// Execute runs the export command
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	filter, err := c.filters.filter(c.app.now())
	if err != nil {
		return err
	}

	count, err := c.app.businessAPI.ExportSessions(ctx, c.app.out, filter)
	if err != nil {
		return c.errorHandler.Handle("export sessions", err)
	}
	c.app.logger.WithField("count", count).Debug("sessions exported")
	return nil
}
