package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwork/internal/config"
	"deepwork/internal/domain"
	apperrors "deepwork/internal/errors"
	"deepwork/internal/prompt"
)

func newTrackApp(t *testing.T, in io.Reader, opts ...AppOption) *testApp {
	t.Helper()
	app := setupTestAppWithMockBusinessAPI(t, in, opts...)
	clock := &steppingClock{now: time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC), step: 90 * time.Minute}
	app.api.now = clock.Now
	return app
}

func TestTrackCommand_RecordsSessionWithNotes(t *testing.T) {
	// Arrange
	app := newTrackApp(t, strings.NewReader("\nfirst draft\n"))

	// Act
	err := NewTrackCommand(app.App).Execute(context.Background(), []string{"Writing"})

	// Assert
	require.NoError(t, err)
	require.Len(t, app.api.sessions, 1)
	s := app.api.sessions[0]
	assert.Equal(t, "Writing", s.Project)
	assert.Equal(t, 90, s.DurationMinutes)
	assert.Equal(t, "first draft", s.Notes)

	output := app.out.String()
	assert.Contains(t, output, "Created project Writing")
	assert.Contains(t, output, "Tracking Writing. Press Enter to stop.")
	assert.Contains(t, output, "Notes for Writing (1h 30m), Enter to skip: ")
	assert.Contains(t, output, "Recorded 1h 30m on Writing (2024-03-13 09:00-10:30): first draft")
}

func TestTrackCommand_JoinsArguments(t *testing.T) {
	app := newTrackApp(t, strings.NewReader("\n\n"))

	err := NewTrackCommand(app.App).Execute(context.Background(), []string{"Deep", "Reading"})

	require.NoError(t, err)
	require.Len(t, app.api.sessions, 1)
	assert.Equal(t, "Deep Reading", app.api.sessions[0].Project)
	assert.Empty(t, app.api.sessions[0].Notes)
}

func TestTrackCommand_UsesExistingProjectSpelling(t *testing.T) {
	app := newTrackApp(t, strings.NewReader("\n\n"))
	_, err := app.api.AddProject(context.Background(), "Writing", "")
	require.NoError(t, err)

	err = NewTrackCommand(app.App).Execute(context.Background(), []string{"writing"})

	require.NoError(t, err)
	assert.NotContains(t, app.out.String(), "Created project")
	assert.Equal(t, "Writing", app.api.sessions[0].Project)
}

func TestTrackCommand_NoPromptMode(t *testing.T) {
	app := newTrackApp(t, strings.NewReader("\nnot read as notes\n"))
	app.config.Tracker.NotesPrompt = config.PromptNone

	err := NewTrackCommand(app.App).Execute(context.Background(), []string{"Writing"})

	require.NoError(t, err)
	require.Len(t, app.api.sessions, 1)
	assert.Empty(t, app.api.sessions[0].Notes)
	assert.NotContains(t, app.out.String(), "Notes for")
}

func TestTrackCommand_InterruptStillRecords(t *testing.T) {
	// Input never arrives; the interrupt ends both the timer and the prompt.
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })
	app := newTrackApp(t, pr, WithInterrupts(canceledInterrupts))

	err := NewTrackCommand(app.App).Execute(context.Background(), []string{"Writing"})

	require.NoError(t, err)
	require.Len(t, app.api.sessions, 1)
	assert.Empty(t, app.api.sessions[0].Notes)
	assert.Contains(t, app.out.String(), "Recorded 1h 30m on Writing")
}

func TestTrackCommand_EndOfInputWaitsForInterrupt(t *testing.T) {
	interrupts := func(ctx context.Context) (context.Context, context.CancelFunc) {
		return context.WithTimeout(ctx, 50*time.Millisecond)
	}
	app := newTrackApp(t, strings.NewReader(""), WithInterrupts(interrupts))

	started := time.Now()
	err := NewTrackCommand(app.App).Execute(context.Background(), []string{"Writing"})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(started), 50*time.Millisecond)
	require.Len(t, app.api.sessions, 1)
}

func TestTrackCommand_AlreadyActive(t *testing.T) {
	app := newTrackApp(t, nil)
	_, err := app.api.Start(context.Background(), "Reading")
	require.NoError(t, err)

	err = NewTrackCommand(app.App).Execute(context.Background(), []string{"Writing"})

	require.NoError(t, err)
	assert.Equal(t, "Already tracking Reading\n", app.out.String())
	assert.Empty(t, app.api.sessions)
}

func TestTrackCommand_Errors(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		errorMessage string
		errorAssert  func(t *testing.T, err error)
	}{
		{
			name:         "no arguments",
			args:         nil,
			errorMessage: "invalid_input: invalid input for command: usage: dw track <project>",
		},
		{
			name:         "blank project",
			args:         []string{"  "},
			errorMessage: "failed to start tracking: invalid project name: name is required",
			errorAssert: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTrackApp(t, nil)

			err := NewTrackCommand(app.App).Execute(context.Background(), tt.args)

			require.Error(t, err)
			assert.Equal(t, tt.errorMessage, err.Error())
			if tt.errorAssert != nil {
				tt.errorAssert(t, err)
			}
			assert.Empty(t, app.api.sessions)
		})
	}
}

func TestTrackCommand_IsLongRunning(t *testing.T) {
	app := newTrackApp(t, nil)
	assert.True(t, NewTrackCommand(app.App).LongRunning())
}

func TestTimerModel(t *testing.T) {
	elapsed := func() time.Duration { return 65 * time.Second }
	m := newTimerModel("Writing", elapsed, 0, newTheme(true))

	t.Run("view shows project and clock", func(t *testing.T) {
		view := m.View()
		assert.Contains(t, view, "Tracking Writing")
		assert.Contains(t, view, "00:01:05")
		assert.Equal(t, time.Second, m.interval)
	})

	t.Run("tick keeps ticking", func(t *testing.T) {
		next, cmd := m.Update(timerTickMsg(time.Now()))
		assert.NotNil(t, cmd)
		assert.False(t, next.(timerModel).stopped)
	})

	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyEnter},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyRunes, Runes: []rune("q")},
	} {
		t.Run("stops on "+key.String(), func(t *testing.T) {
			next, cmd := m.Update(key)
			require.NotNil(t, cmd)
			assert.True(t, next.(timerModel).stopped)
			assert.Empty(t, next.View())
			assert.Equal(t, tea.Quit(), cmd())
		})
	}

	t.Run("other keys are ignored", func(t *testing.T) {
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
		assert.Nil(t, cmd)
		assert.False(t, next.(timerModel).stopped)
	})
}

func TestNotesPrompterSelection(t *testing.T) {
	tests := []struct {
		name        string
		mode        string
		interactive bool
		want        interface{}
	}{
		{name: "none", mode: config.PromptNone, want: prompt.NoopPrompter{}},
		{name: "line", mode: config.PromptLine, interactive: true, want: &prompt.LinePrompter{}},
		{name: "tui on a terminal", mode: config.PromptTUI, interactive: true, want: &prompt.TUIPrompter{}},
		{name: "tui off a terminal falls back to line", mode: config.PromptTUI, want: &prompt.LinePrompter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestAppWithMockBusinessAPI(t, nil, WithInteractive(tt.interactive))
			app.config.Tracker.NotesPrompt = tt.mode

			assert.IsType(t, tt.want, app.notesPrompter())
		})
	}
}

func TestDescribeSession(t *testing.T) {
	tests := []struct {
		name    string
		session domain.Session
		want    string
	}{
		{
			name:    "with times and notes",
			session: domain.Session{Date: "2024-03-04", StartTime: "09:00:00", EndTime: "10:30:00", DurationMinutes: 90, Project: "Writing", Notes: "draft"},
			want:    "Added 1h 30m on Writing (2024-03-04 09:00-10:30): draft",
		},
		{
			name:    "duration only",
			session: domain.Session{Date: "2024-03-04", DurationMinutes: 45, Project: "Reading"},
			want:    "Added 45m on Reading (2024-03-04)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeSession("Added", tt.session))
		})
	}
}
