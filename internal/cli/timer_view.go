package cli

import (
	"context"
	"errors"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"deepwork/internal/timeutil"
)

type timerTickMsg time.Time

// timerModel shows a running session until the user stops it.
type timerModel struct {
	project  string
	elapsed  func() time.Duration
	interval time.Duration
	styles   theme
	stopped  bool
}

func newTimerModel(project string, elapsed func() time.Duration, interval time.Duration, styles theme) timerModel {
	if interval <= 0 {
		interval = time.Second
	}
	return timerModel{project: project, elapsed: elapsed, interval: interval, styles: styles}
}

func (m timerModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

func (m timerModel) Init() tea.Cmd {
	return m.tick()
}

func (m timerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "q", "esc", "ctrl+c":
			m.stopped = true
			return m, tea.Quit
		}
	case timerTickMsg:
		return m, m.tick()
	}
	return m, nil
}

func (m timerModel) View() string {
	if m.stopped {
		return ""
	}
	return m.styles.title.Render("Tracking "+m.project) + "\n" +
		timeutil.FormatClock(m.elapsed()) + "\n" +
		m.styles.muted.Render("enter or q to stop") + "\n"
}

// runTimerView blocks until the user stops the view or ctx ends.
func runTimerView(ctx context.Context, in io.Reader, out io.Writer, model timerModel) error {
	_, err := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil) {
		return nil
	}
	return err
}
