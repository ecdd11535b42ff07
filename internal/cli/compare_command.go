package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"deepwork/internal/errors"
	"deepwork/internal/stats"
	"deepwork/internal/watch"
)

// clearScreen moves the cursor home and clears the terminal.
const clearScreen = "\033[H\033[2J"

// CompareCommand handles the compare command
type CompareCommand struct {
	app          *App
	errorHandler *ErrorHandler
	watch        bool
	granularity  string
}

// NewCompareCommand creates a new compare command handler
func NewCompareCommand(app *App) *CompareCommand {
	return &CompareCommand{app: app, errorHandler: NewErrorHandler()}
}

// BindFlags implements FlagBinder
func (c *CompareCommand) BindFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&c.watch, "watch", "w", false, "Redraw whenever the data files change")
	flags.StringVarP(&c.granularity, "granularity", "g", "", "day, week, month or all (overrides DW_DISPLAY_GRANULARITY)")
}

// LongRunning implements LongRunner; watching runs until interrupted.
func (c *CompareCommand) LongRunning() bool { return c.watch }

// Execute runs the compare command
func (c *CompareCommand) Execute(ctx context.Context, args []string) error {
	granularities, err := c.selected()
	if err != nil {
		return err
	}
	if err := c.render(ctx, granularities); err != nil {
		return err
	}
	if !c.watch {
		return nil
	}
	return c.watchAndRender(ctx, granularities)
}

// selected resolves the flag, then the configuration, to granularities.
func (c *CompareCommand) selected() ([]stats.Granularity, error) {
	value := c.granularity
	if value == "" && c.app.config != nil {
		value = c.app.config.Display.Granularity
	}
	switch g := stats.Granularity(strings.ToLower(value)); g {
	case "", "all":
		return []stats.Granularity{stats.Day, stats.Week, stats.Month}, nil
	case stats.Day, stats.Week, stats.Month:
		return []stats.Granularity{g}, nil
	default:
		return nil, errors.NewInvalidInputError("granularity", value, "must be day, week, month or all")
	}
}

func (c *CompareCommand) render(ctx context.Context, granularities []stats.Granularity) error {
	comparisons, err := c.app.businessAPI.Compare(ctx, c.app.now())
	if err != nil {
		return c.errorHandler.Handle("compare sessions", err)
	}

	t := c.app.theme()
	width := 0
	if c.app.config != nil {
		width = c.app.config.Display.TableWidth
	}
	for i, g := range granularities {
		if i > 0 {
			fmt.Fprintln(c.app.out)
		}
		comparison, _ := comparisons.ForGranularity(g)
		t.renderComparison(c.app.out, width, comparison)
	}
	return nil
}

// watchAndRender redraws on every change to the data files until interrupted.
func (c *CompareCommand) watchAndRender(ctx context.Context, granularities []stats.Granularity) error {
	if c.app.config == nil {
		return errors.NewInvalidInputError("watch", true, "no data files configured")
	}
	cfg := c.app.config
	w, err := watch.New([]string{cfg.GetSessionsPath(), cfg.GetProjectsPath()}, cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("failed to watch data files: %w", err)
	}
	defer w.Close()

	runCtx, stop := c.app.interrupts(ctx)
	defer stop()

	t := c.app.theme()
	fmt.Fprintln(c.app.out, t.muted.Render("Watching for changes, Ctrl+C to exit"))
	return w.Run(runCtx, func(paths []string) {
		if isTerminal(c.app.out) {
			fmt.Fprint(c.app.out, clearScreen)
		}
		fmt.Fprintln(c.app.out, t.muted.Render("Updated "+c.app.now().Format("15:04:05")))
		if err := c.render(runCtx, granularities); err != nil {
			c.app.logger.WithError(err).Warn("refresh failed")
		}
	})
}
