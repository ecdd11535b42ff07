package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deepwork/internal/config"
	"deepwork/internal/domain"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd *cobra.Command
	app *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(app *App) *RootCommand {
	root := &RootCommand{app: app}

	root.cmd = &cobra.Command{
		Use:   "dw",
		Short: "Track deep-work sessions and compare them over time",
		Long: `deepwork (dw) records focused work sessions against projects and compares
how much you worked today, this week and this month with the windows before.

FEATURES:
  • Live session timer with a notes prompt when you stop
  • Sessions kept in a plain CSV file, projects in a JSON file
  • Day, week and month comparisons against the three previous windows
  • Project totals, daily totals and CSV export
  • Live refresh when the data files change

EXAMPLES:
  dw init                                  # Create the data files
  dw track Writing                         # Time a session on "Writing"
  dw sessions list --since 1w              # Sessions from the last week
  dw sessions edit <id> notes "outline"    # Correct a recorded session
  dw projects add Reading --color "#10B981"
  dw compare --watch                       # Comparisons, re-rendered on change
  dw dashboard                             # Everything at a glance
  dw export > sessions.csv                 # Sessions as CSV

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > config file > defaults

  Config file:
    DW_CONFIG                              Config file (default: ~/.config/deepwork/config.yaml)

  Storage Configuration:
    DW_DATA_DIR                            Data directory (default: ~/.local/share/deepwork)
    DW_SESSIONS_FILE                       Sessions file name (default: sessions.csv)
    DW_PROJECTS_FILE                       Projects file name (default: projects.json)

  Tracker Configuration:
    DW_REFRESH_INTERVAL                    Timer refresh interval (default: 1s)
    DW_NOTES_PROMPT                        Notes prompt: tui, line or none (default: tui)
    DW_AUTO_CREATE_PROJECTS                Add unknown projects on track (default: true)

  Display Configuration:
    DW_DISPLAY_TABLE_WIDTH                 Table width (default: 80)
    DW_DISPLAY_DASHBOARD_DAYS              Days in the dashboard series (default: 7)
    DW_DISPLAY_NO_COLOR, NO_COLOR          Disable colors
    DW_DISPLAY_GRANULARITY                 Comparisons shown: day, week, month or all

  Logging Configuration:
    DW_LOG_LEVEL                           debug, info, warn or error (default: info)
    DW_LOG_FORMAT                          text or json (default: text)
    DW_LOG_FILE                            Also write logs to this file

GETTING HELP:
  dw [command] --help                      # Get help for any specific command
  dw completion bash                       # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Apply configuration overrides from flags before any command runs
			return root.app.setup(root.getOverridesFromFlags())
		},
	}

	// Add global flags for configuration overrides
	root.addGlobalFlags()

	// Add all subcommands
	root.addSubcommands()

	return root
}

// ExecuteContext runs the root command with ctx
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file (overrides DW_CONFIG)")

	// Storage configuration
	flags.String("data-dir", "", "Data directory (overrides DW_DATA_DIR)")

	// Tracker configuration
	flags.Duration("refresh-interval", 0, "Timer refresh interval (overrides DW_REFRESH_INTERVAL)")
	flags.String("notes-prompt", "", "Notes prompt: tui, line or none (overrides DW_NOTES_PROMPT)")

	// Display configuration
	flags.Bool("no-color", false, "Disable colors (overrides DW_DISPLAY_NO_COLOR)")

	// Logging configuration
	flags.String("log-level", "", "Log level (overrides DW_LOG_LEVEL)")

	// Application configuration
	flags.Duration("timeout", 0, "Timeout for non-interactive commands (overrides DW_APP_TIMEOUT)")
	flags.BoolP("verbose", "v", false, "Enable debug logging (overrides DW_APP_VERBOSE)")
}

// subcommand describes one registered leaf command.
type subcommand struct {
	name  string
	use   string
	short string
	long  string
	args  cobra.PositionalArgs
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List, add, edit, delete and import recorded sessions",
	}
	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "List, add, recolor, rename and delete projects",
	}

	top := []subcommand{
		{
			name:  "init",
			use:   "init",
			short: "Create the data directory and files",
			long:  "Create the data directory, an empty sessions file with its header and an empty projects file. Existing files are left untouched.",
			args:  cobra.NoArgs,
		},
		{
			name:  "track",
			use:   "track <project>",
			short: "Time a session on a project",
			long: `Start a session on the project and show the elapsed time until you stop it
with Enter (or q in the full-screen view) or Ctrl+C. You are then asked for
optional notes and the session is recorded. Unknown projects are created.`,
			args: cobra.MinimumNArgs(1),
		},
		{
			name:  "status",
			use:   "status",
			short: "Show today's total and the latest session",
			args:  cobra.NoArgs,
		},
		{
			name:  "compare",
			use:   "compare",
			short: "Compare today, this week and this month with previous windows",
			long: `Show hours for the current day, week and month next to the three previous
equivalent windows, their average and the change against it.

With --watch the tables are redrawn whenever the data files change.`,
			args: cobra.NoArgs,
		},
		{
			name:  "dashboard",
			use:   "dashboard",
			short: "Show comparisons, project totals and recent days",
			args:  cobra.NoArgs,
		},
		{
			name:  "export",
			use:   "export",
			short: "Write sessions as CSV to stdout",
			long: `Write sessions as CSV to stdout, using the same columns as the sessions file.

Time filters support: 30m, 2h, 1d, 2w, 3mo, 1y

Example:
  dw export --since 1mo > month.csv`,
			args: cobra.NoArgs,
		},
	}

	sessions := []subcommand{
		{
			name:  "sessions list",
			use:   "list",
			short: "List recorded sessions",
			long: `List recorded sessions with optional filtering.

Time filters support: 30m, 2h, 1d, 2w, 3mo, 1y

Examples:
  dw sessions list                      # All sessions
  dw sessions list --since 2d           # Sessions from the last two days
  dw sessions list --project Writing    # Sessions on Writing`,
			args: cobra.NoArgs,
		},
		{
			name:  "sessions add",
			use:   "add <project> <date> <start> <end> [notes]",
			short: "Record a session by hand",
			long: `Record a completed session. The duration is computed from the start and end
times; an end before the start means the session ran past midnight.

Example:
  dw sessions add Writing 2024-03-04 09:00 10:30 "first draft"`,
			args: cobra.RangeArgs(4, 5),
		},
		{
			name:  "sessions edit",
			use:   "edit <id> <field> <value>",
			short: "Change one field of a session",
			long: "Change one field of a recorded session.\n\n" +
				"Fields: " + fieldNames() + "\n" +
				"Changing start_time or end_time recomputes the duration; duration_minutes\n" +
				"can only be set on sessions recorded without times.",
			args: cobra.ExactArgs(3),
		},
		{
			name:  "sessions delete",
			use:   "delete <id>",
			short: "Delete a session",
			args:  cobra.ExactArgs(1),
		},
		{
			name:  "sessions import",
			use:   "import <file>",
			short: "Import sessions from a CSV file",
			long: `Import sessions from a CSV file in the export layout, or from stdin with "-".
Dates and times are normalized and durations derived from the times. Rows
are appended unless --replace is given, which replaces every recorded session.

Example:
  dw export --project Writing > writing.csv
  dw sessions import writing.csv`,
			args: cobra.ExactArgs(1),
		},
	}

	projects := []subcommand{
		{
			name:  "projects list",
			use:   "list",
			short: "List projects",
			args:  cobra.NoArgs,
		},
		{
			name:  "projects add",
			use:   "add <name>",
			short: "Add a project",
			args:  cobra.MinimumNArgs(1),
		},
		{
			name:  "projects color",
			use:   "color <id> <color>",
			short: "Change a project's color (#RRGGBB)",
			args:  cobra.ExactArgs(2),
		},
		{
			name:  "projects rename",
			use:   "rename <id> <name>",
			short: "Rename a project",
			long:  "Rename a project. Sessions already recorded keep the name they were recorded with.",
			args:  cobra.MinimumNArgs(2),
		},
		{
			name:  "projects delete",
			use:   "delete <id>",
			short: "Delete a project",
			long:  "Delete a project. Sessions recorded against it are kept.",
			args:  cobra.ExactArgs(1),
		},
	}

	for _, sc := range top {
		r.cmd.AddCommand(r.newCommand(sc))
	}
	for _, sc := range sessions {
		sessionsCmd.AddCommand(r.newCommand(sc))
	}
	for _, sc := range projects {
		projectsCmd.AddCommand(r.newCommand(sc))
	}
	r.cmd.AddCommand(sessionsCmd, projectsCmd)
}

// newCommand builds the cobra command running the registered handler.
func (r *RootCommand) newCommand(sc subcommand) *cobra.Command {
	cmd := &cobra.Command{
		Use:   sc.use,
		Short: sc.short,
		Long:  sc.long,
		Args:  sc.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !r.isLongRunning(sc.name) {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, r.getAppTimeout())
				defer cancel()
			}
			return r.app.registry.Execute(ctx, sc.name, args)
		},
	}
	if handler, ok := r.app.registry.Get(sc.name); ok {
		if binder, ok := handler.(FlagBinder); ok {
			binder.BindFlags(cmd.Flags())
		}
	}
	return cmd
}

func (r *RootCommand) isLongRunning(name string) bool {
	handler, ok := r.app.registry.Get(name)
	if !ok {
		return false
	}
	lr, ok := handler.(LongRunner)
	return ok && lr.LongRunning()
}

func fieldNames() string {
	fields := domain.EditableFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.app.config != nil {
		return r.app.config.GetTimeout()
	}
	return 30 * time.Second // Default timeout
}

// getOverridesFromFlags collects the flags set on the command line
func (r *RootCommand) getOverridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()
	overrides := &config.ConfigOverrides{}

	if path, _ := flags.GetString("config"); path != "" && r.app.loader != nil {
		r.app.loader = config.NewLoaderWithPath(path)
	}

	// Storage configuration
	if flags.Changed("data-dir") {
		dataDir, _ := flags.GetString("data-dir")
		overrides.DataDir = &dataDir
	}

	// Tracker configuration
	if flags.Changed("refresh-interval") {
		interval, _ := flags.GetDuration("refresh-interval")
		overrides.RefreshInterval = &interval
	}
	if flags.Changed("notes-prompt") {
		mode, _ := flags.GetString("notes-prompt")
		overrides.NotesPrompt = &mode
	}

	// Display configuration
	if flags.Changed("no-color") {
		noColor, _ := flags.GetBool("no-color")
		overrides.NoColor = &noColor
	}

	// Logging configuration
	if flags.Changed("log-level") {
		level, _ := flags.GetString("log-level")
		overrides.LogLevel = &level
	}

	// Application configuration
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		overrides.Timeout = &timeout
	}
	if flags.Changed("verbose") {
		verbose, _ := flags.GetBool("verbose")
		overrides.Verbose = &verbose
	}

	return overrides
}
