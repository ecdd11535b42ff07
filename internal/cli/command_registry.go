package cli

import (
	"context"
	"sort"

	"github.com/spf13/pflag"

	"deepwork/internal/errors"
)

// Command represents a CLI command
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// FlagBinder is implemented by commands that take flags.
type FlagBinder interface {
	BindFlags(flags *pflag.FlagSet)
}

// LongRunner is implemented by commands that may run until interrupted.
// They are exempt from the application timeout.
type LongRunner interface {
	LongRunning() bool
}

// CommandRegistry manages all available commands
type CommandRegistry struct {
	commands map[string]Command
}

// NewCommandRegistry creates a new command registry
func NewCommandRegistry(app *App) *CommandRegistry {
	registry := &CommandRegistry{
		commands: make(map[string]Command),
	}

	// Register all commands
	registry.Register("init", NewInitCommand(app))
	registry.Register("track", NewTrackCommand(app))
	registry.Register("status", NewStatusCommand(app))
	registry.Register("sessions list", NewSessionsListCommand(app))
	registry.Register("sessions add", NewSessionsAddCommand(app))
	registry.Register("sessions edit", NewSessionsEditCommand(app))
	registry.Register("sessions delete", NewSessionsDeleteCommand(app))
	registry.Register("sessions import", NewSessionsImportCommand(app))
	registry.Register("projects list", NewProjectsListCommand(app))
	registry.Register("projects add", NewProjectsAddCommand(app))
	registry.Register("projects color", NewProjectsColorCommand(app))
	registry.Register("projects rename", NewProjectsRenameCommand(app))
	registry.Register("projects delete", NewProjectsDeleteCommand(app))
	registry.Register("compare", NewCompareCommand(app))
	registry.Register("dashboard", NewDashboardCommand(app))
	registry.Register("export", NewExportCommand(app))

	return registry
}

// Register adds a command to the registry
func (r *CommandRegistry) Register(name string, command Command) {
	r.commands[name] = command
}

// Get returns the command registered under name.
func (r *CommandRegistry) Get(name string) (Command, bool) {
	command, exists := r.commands[name]
	return command, exists
}

// Names returns the registered command names in sorted order.
func (r *CommandRegistry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the specified command with the given arguments
func (r *CommandRegistry) Execute(ctx context.Context, commandName string, args []string) error {
	command, exists := r.commands[commandName]
	if !exists {
		return errors.NewInvalidInputError("command", commandName, "unknown command")
	}
	return command.Execute(ctx, args)
}
