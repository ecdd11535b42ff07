package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"deepwork/internal/api"
	"deepwork/internal/config"
	"deepwork/internal/logging"
	"deepwork/internal/prompt"
)

// Initializer creates the data files on first use.
type Initializer interface {
	Init(ctx context.Context) (config.InitResult, error)
}

// App represents the main CLI application
type App struct {
	businessAPI api.BusinessAPI
	initializer Initializer
	config      *config.Config
	loader      *config.Loader
	registry    *CommandRegistry

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	// interrupts derives a context canceled on SIGINT/SIGTERM.
	interrupts func(ctx context.Context) (context.Context, context.CancelFunc)
	// interactive reports whether a full-screen view may take over the terminal.
	interactive func() bool

	linesOnce sync.Once
	lines     *prompt.Lines

	logger *logrus.Entry
}

// AppOption configures an App.
type AppOption func(*App)

// WithIO replaces the standard streams.
func WithIO(in io.Reader, out, errOut io.Writer) AppOption {
	return func(a *App) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) AppOption {
	return func(a *App) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLoader makes the root command load configuration before each run.
func WithLoader(loader *config.Loader) AppOption {
	return func(a *App) {
		a.loader = loader
	}
}

// WithInitializer sets what `dw init` runs.
func WithInitializer(init Initializer) AppOption {
	return func(a *App) {
		a.initializer = init
	}
}

// WithInterrupts replaces signal handling, for tests.
func WithInterrupts(fn func(ctx context.Context) (context.Context, context.CancelFunc)) AppOption {
	return func(a *App) {
		if fn != nil {
			a.interrupts = fn
		}
	}
}

// WithInteractive overrides terminal detection.
func WithInteractive(interactive bool) AppOption {
	return func(a *App) {
		a.interactive = func() bool { return interactive }
	}
}

// NewApp creates a new CLI application instance with dependency injection.
// A nil businessAPI is built from the configuration on the first run.
func NewApp(businessAPI api.BusinessAPI, cfg *config.Config, opts ...AppOption) *App {
	app := &App{
		businessAPI: businessAPI,
		config:      cfg,
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		now:         time.Now,
		logger:      logging.NewLogger("cli"),
	}
	app.interrupts = func(ctx context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	}
	app.interactive = func() bool {
		return isTerminal(app.in) && isTerminal(app.out)
	}
	for _, opt := range opts {
		opt(app)
	}
	app.registry = NewCommandRegistry(app)
	return app
}

// NewAppWithConfig creates an App whose stores and API come from the
// configuration loaded by loader.
func NewAppWithConfig(loader *config.Loader, opts ...AppOption) *App {
	return NewApp(nil, nil, append([]AppOption{WithLoader(loader)}, opts...)...)
}

// Run executes the CLI application with the given arguments
func (a *App) Run(ctx context.Context, args []string) error {
	root := NewRootCommand(a)
	root.cmd.SetArgs(args)
	root.cmd.SetIn(a.in)
	root.cmd.SetOut(a.out)
	root.cmd.SetErr(a.errOut)
	return root.ExecuteContext(ctx)
}

// setup finishes wiring once flags are parsed.
func (a *App) setup(overrides *config.ConfigOverrides) error {
	if a.loader != nil {
		cfg, err := a.loader.LoadWithOverrides(overrides)
		if err != nil {
			return err
		}
		a.config = cfg
	}
	if a.config == nil {
		a.config = config.NewConfig()
	}
	if err := logging.Configure(a.config.Logging); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	if a.businessAPI == nil {
		stores := config.CreateStores(a.config)
		if a.initializer == nil {
			a.initializer = stores
		}
		a.businessAPI = api.NewBusinessAPI(stores.Sessions, stores.Projects,
			api.WithLimits(a.config.Limits()),
			api.WithClock(a.now),
			api.WithAutoCreateProjects(a.config.Tracker.AutoCreateProjects),
		)
		a.logger.WithFields(logrus.Fields{
			"sessions": stores.Sessions.Path(),
			"projects": stores.Projects.Path(),
		}).Debug("stores ready")
	}
	return nil
}

// lineReader returns the shared stdin line reader, started on first use.
func (a *App) lineReader() *prompt.Lines {
	a.linesOnce.Do(func() {
		a.lines = prompt.NewLines(a.in)
	})
	return a.lines
}

// parseTimeShorthand parses time shorthand like "30m", "2h", "1d", etc.
func parseTimeShorthand(shorthand string) (time.Duration, error) {
	re := regexp.MustCompile(`^(\d+)(m|h|d|w|mo|y)$`)
	matches := re.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, fmt.Errorf("invalid time format: %s", shorthand)
	}

	value, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number in time format: %s", shorthand)
	}

	unit := matches[2]
	var duration time.Duration

	switch unit {
	case "m":
		duration = time.Duration(value) * time.Minute
	case "h":
		duration = time.Duration(value) * time.Hour
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "w":
		duration = time.Duration(value) * 7 * 24 * time.Hour
	case "mo":
		duration = time.Duration(value) * 30 * 24 * time.Hour
	case "y":
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("invalid time unit: %s", unit)
	}

	return duration, nil
}
