package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"deepwork/internal/domain"
	"deepwork/internal/errors"
)

// ProjectsListCommand handles the projects list command
type ProjectsListCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewProjectsListCommand creates a new projects list command handler
func NewProjectsListCommand(app *App) *ProjectsListCommand {
	return &ProjectsListCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the projects list command
func (c *ProjectsListCommand) Execute(ctx context.Context, args []string) error {
	projects, err := c.app.businessAPI.Projects(ctx)
	if err != nil {
		return c.errorHandler.Handle("list projects", err)
	}
	if len(projects) == 0 {
		fmt.Fprintln(c.app.out, "No projects yet")
		return nil
	}

	noColor := c.app.config == nil || c.app.config.Display.NoColor
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{p.ID, p.Name, swatch(p, noColor)})
	}
	fmt.Fprintln(c.app.out, c.app.theme().table(0, []string{"ID", "Name", "Color"}, rows))
	return nil
}

// swatch renders a project's color code, preceded by a sample when colors are on.
func swatch(p domain.Project, noColor bool) string {
	color := p.Color
	if color == "" {
		color = domain.DefaultProjectColor
	}
	if noColor {
		return color
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●") + " " + color
}

// ProjectsAddCommand handles the projects add command
type ProjectsAddCommand struct {
	app          *App
	errorHandler *ErrorHandler
	color        string
}

// NewProjectsAddCommand creates a new projects add command handler
func NewProjectsAddCommand(app *App) *ProjectsAddCommand {
	return &ProjectsAddCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags implements FlagBinder
func (c *ProjectsAddCommand) BindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.color, "color", "c", "", "Project color as #RRGGBB (default "+domain.DefaultProjectColor+")")
}

// Execute runs the projects add command
func (c *ProjectsAddCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "projects add", "usage: dw projects add <name> [--color #RRGGBB]")
	}

	project, err := c.app.businessAPI.AddProject(ctx, strings.Join(args, " "), c.color)
	if err != nil {
		return c.errorHandler.Handle("add project", err)
	}
	fmt.Fprintf(c.app.out, "Added project %s (%s)\n", project.Name, project.ID)
	return nil
}

// ProjectsColorCommand handles the projects color command
type ProjectsColorCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewProjectsColorCommand creates a new projects color command handler
func NewProjectsColorCommand(app *App) *ProjectsColorCommand {
	return &ProjectsColorCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the projects color command
func (c *ProjectsColorCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.NewInvalidInputError("command", "projects color", "usage: dw projects color <id> <color>")
	}

	project, err := c.app.businessAPI.UpdateProjectColor(ctx, args[0], args[1])
	if err != nil {
		return c.errorHandler.Handle("change project color", err)
	}
	fmt.Fprintf(c.app.out, "Project %s is now %s\n", project.Name, project.Color)
	return nil
}

// ProjectsRenameCommand handles the projects rename command
type ProjectsRenameCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewProjectsRenameCommand creates a new projects rename command handler
func NewProjectsRenameCommand(app *App) *ProjectsRenameCommand {
	return &ProjectsRenameCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the projects rename command
func (c *ProjectsRenameCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewInvalidInputError("command", "projects rename", "usage: dw projects rename <id> <name>")
	}

	project, err := c.app.businessAPI.RenameProject(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return c.errorHandler.Handle("rename project", err)
	}
	fmt.Fprintf(c.app.out, "Renamed project to %s\n", project.Name)
	return nil
}

// ProjectsDeleteCommand handles the projects delete command
type ProjectsDeleteCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewProjectsDeleteCommand creates a new projects delete command handler
func NewProjectsDeleteCommand(app *App) *ProjectsDeleteCommand {
	return &ProjectsDeleteCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute runs the projects delete command
func (c *ProjectsDeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "projects delete", "usage: dw projects delete <id>")
	}

	if err := c.app.businessAPI.DeleteProject(ctx, args[0]); err != nil {
		return c.errorHandler.Handle("delete project", err)
	}
	fmt.Fprintf(c.app.out, "Deleted project %s\n", args[0])
	return nil
}
