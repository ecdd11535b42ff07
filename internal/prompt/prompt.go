// Package prompt asks the user for session notes once tracking stops.
package prompt

import (
	"context"
	"fmt"
	"time"

	"deepwork/internal/timeutil"
)

// NotesContext describes the session being closed.
type NotesContext struct {
	ProjectName string
	Duration    time.Duration
}

// Title is the one-line question shown to the user.
func (nc NotesContext) Title() string {
	return fmt.Sprintf("Notes for %s (%s)", nc.ProjectName, timeutil.FormatDuration(nc.Duration))
}

// NotesPrompter collects notes for a finished session. ok is false when the
// user abandoned the prompt; callers then store empty notes.
type NotesPrompter interface {
	PromptForNotes(ctx context.Context, nc NotesContext) (notes string, ok bool, err error)
}

// NoopPrompter never asks and always reports an abandoned prompt.
type NoopPrompter struct{}

// PromptForNotes implements NotesPrompter.
func (NoopPrompter) PromptForNotes(context.Context, NotesContext) (string, bool, error) {
	return "", false, nil
}

// StaticPrompter answers every prompt with Notes.
type StaticPrompter struct {
	Notes string
}

// PromptForNotes implements NotesPrompter.
func (p StaticPrompter) PromptForNotes(context.Context, NotesContext) (string, bool, error) {
	return p.Notes, true, nil
}

var (
	_ NotesPrompter = NoopPrompter{}
	_ NotesPrompter = StaticPrompter{}
	_ NotesPrompter = (*LinePrompter)(nil)
	_ NotesPrompter = (*TUIPrompter)(nil)
)
