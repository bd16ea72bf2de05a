package ui

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress shows a counter on one line of a terminal. When the writer is
// not a terminal it prints nothing.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress returns a counter for total steps.
func NewProgress(w io.Writer, tty bool, message string, total int) *Progress {
	if !tty || total <= 0 {
		return &Progress{}
	}
	return &Progress{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(message),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)}
}

// Increment advances the counter by one.
func (p *Progress) Increment() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Done clears the counter line.
func (p *Progress) Done() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
