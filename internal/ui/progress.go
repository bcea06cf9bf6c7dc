package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Progress draws a single-line "(n/total)" counter for batch runs. It only
// draws when its output is a terminal.
type Progress struct {
	out     io.Writer
	live    bool
	total   int
	current int
	message string
}

// NewProgress creates a progress counter writing to stderr.
func NewProgress(message string, total int) *Progress {
	return &Progress{
		out:     os.Stderr,
		live:    isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
		total:   total,
		message: message,
	}
}

// Increment advances the counter by one and redraws it.
func (p *Progress) Increment() {
	p.current++
	if p.live {
		fmt.Fprintf(p.out, "\r%s %s", p.message, Muted.Render(fmt.Sprintf("(%d/%d)", p.current, p.total)))
	}
}

// Current returns the number of completed steps.
func (p *Progress) Current() int {
	return p.current
}

// Done clears the progress line.
func (p *Progress) Done() {
	if p.live {
		fmt.Fprint(p.out, "\r\033[K")
	}
}
