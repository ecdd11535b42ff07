package prompt

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

type lineResult struct {
	line string
	err  error
}

// Lines hands out input lines one at a time. A single goroutine owns the
// reader, so several consumers can wait for input without racing on it.
type Lines struct {
	r    *bufio.Reader
	ch   chan lineResult
	once sync.Once
}

// NewLines wraps r. Reading starts on the first call to Next.
func NewLines(r io.Reader) *Lines {
	return &Lines{r: bufio.NewReader(r), ch: make(chan lineResult)}
}

func (l *Lines) start() {
	go func() {
		for {
			line, err := l.r.ReadString('\n')
			if line != "" || err == nil {
				l.ch <- lineResult{line: strings.TrimRight(line, "\r\n")}
			}
			if err != nil {
				l.ch <- lineResult{err: err}
				close(l.ch)
				return
			}
		}
	}()
}

// Next returns the next line without its terminator. It returns io.EOF once
// input is exhausted and ctx.Err() when ctx ends first; a line that arrives
// after cancellation is kept for the next caller.
func (l *Lines) Next(ctx context.Context) (string, error) {
	l.once.Do(l.start)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, open := <-l.ch:
		if !open {
			return "", io.EOF
		}
		return res.line, res.err
	}
}
