package cli

import (
	"fmt"
	"io"
)

// StreamPrinter echoes a growing reply to w, writing only the part not yet shown.
type StreamPrinter struct {
	w       io.Writer
	printed int
}

// NewStreamPrinter returns a printer writing to w.
func NewStreamPrinter(w io.Writer) *StreamPrinter {
	return &StreamPrinter{w: w}
}

// Update receives the full text so far.
func (p *StreamPrinter) Update(text string) {
	if len(text) <= p.printed {
		return
	}
	fmt.Fprint(p.w, text[p.printed:])
	p.printed = len(text)
}

// Finish ends the reply with a newline if anything was printed and resets the printer.
func (p *StreamPrinter) Finish() {
	if p.printed > 0 {
		fmt.Fprintln(p.w)
	}
	p.printed = 0
}
