package prompt

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type notesModel struct {
	title     string
	input     textinput.Model
	submitted bool
	done      bool
}

func newNotesModel(nc NotesContext, maxLen int) notesModel {
	input := textinput.New()
	input.Placeholder = "what did you work on?"
	input.Prompt = "> "
	input.Width = 60
	if maxLen > 0 {
		input.CharLimit = maxLen
	}
	input.Focus()
	return notesModel{title: nc.Title(), input: input}
}

func (m notesModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m notesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC:
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m notesModel) View() string {
	if m.done {
		return ""
	}
	return titleStyle.Render(m.title) + "\n" +
		m.input.View() + "\n" +
		helpStyle.Render("enter to save, esc to skip") + "\n"
}

func (m notesModel) notes() (string, bool) {
	if !m.submitted {
		return "", false
	}
	return strings.TrimSpace(m.input.Value()), true
}

// TUIPrompter asks for notes with an inline text field.
type TUIPrompter struct {
	in     io.Reader
	out    io.Writer
	maxLen int
}

// NewTUIPrompter creates a prompter on the given terminal streams. Nil
// streams fall back to the process's stdin and stdout.
func NewTUIPrompter(in io.Reader, out io.Writer, maxLen int) *TUIPrompter {
	return &TUIPrompter{in: in, out: out, maxLen: maxLen}
}

// PromptForNotes implements NotesPrompter. Esc, Ctrl+C and cancellation of
// ctx abandon the prompt.
func (p *TUIPrompter) PromptForNotes(ctx context.Context, nc NotesContext) (string, bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}
	if p.out != nil {
		opts = append(opts, tea.WithOutput(p.out))
	}

	final, err := tea.NewProgram(newNotesModel(nc, p.maxLen), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
			return "", false, nil
		}
		return "", false, err
	}

	m, ok := final.(notesModel)
	if !ok {
		return "", false, nil
	}
	notes, submitted := m.notes()
	return Truncate(notes, p.maxLen), submitted, nil
}
