package cli

import (
	"os"

	"github.com/mattn/go-isatty"

	"deepwork/internal/config"
	"deepwork/internal/prompt"
)

// isTerminal reports whether stream is an interactive terminal.
func isTerminal(stream interface{}) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// notesMode resolves the configured prompt mode against the terminal.
// The full-screen prompt falls back to line mode off a terminal.
func (a *App) notesMode() string {
	mode := config.PromptTUI
	if a.config != nil && a.config.Tracker.NotesPrompt != "" {
		mode = a.config.Tracker.NotesPrompt
	}
	if mode == config.PromptTUI && !a.interactive() {
		return config.PromptLine
	}
	return mode
}

// notesPrompter returns the prompter Stop asks for notes.
func (a *App) notesPrompter() prompt.NotesPrompter {
	maxLen := 0
	if a.config != nil {
		maxLen = a.config.Validation.NotesMaxLength
	}
	switch a.notesMode() {
	case config.PromptNone:
		return prompt.NoopPrompter{}
	case config.PromptLine:
		return prompt.NewLinePrompter(a.lineReader(), a.out, maxLen)
	default:
		return prompt.NewTUIPrompter(a.in, a.out, maxLen)
	}
}
