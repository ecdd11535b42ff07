package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LinePrompter asks for notes on a plain line-oriented terminal.
type LinePrompter struct {
	lines  *Lines
	out    io.Writer
	maxLen int
}

// NewLinePrompter reads answers from lines and writes the question to out.
// Answers longer than maxLen runes are truncated; maxLen <= 0 keeps them whole.
func NewLinePrompter(lines *Lines, out io.Writer, maxLen int) *LinePrompter {
	return &LinePrompter{lines: lines, out: out, maxLen: maxLen}
}

// PromptForNotes implements NotesPrompter. End of input and cancellation
// count as an abandoned prompt.
func (p *LinePrompter) PromptForNotes(ctx context.Context, nc NotesContext) (string, bool, error) {
	fmt.Fprintf(p.out, "%s, Enter to skip: ", nc.Title())

	line, err := p.lines.Next(ctx)
	if err != nil {
		fmt.Fprintln(p.out)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", false, nil
		}
		return "", false, err
	}
	return Truncate(strings.TrimSpace(line), p.maxLen), true, nil
}

// Truncate shortens s to at most max runes. max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
