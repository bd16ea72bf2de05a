package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is used when the width cannot be detected.
const DefaultTermWidth = 100

// DisplayContext describes where output is going.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// NewDisplayContext inspects stdout.
func NewDisplayContext() *DisplayContext {
	return DisplayContextFor(os.Stdout)
}

// DisplayContextFor inspects f.
func DisplayContextFor(f *os.File) *DisplayContext {
	fd := f.Fd()
	isTTY := term.IsTerminal(fd)

	width := DefaultTermWidth
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}
	return &DisplayContext{TermWidth: width, IsTTY: isTTY}
}

// NewDisplayContextWithWidth returns a fixed context (for testing).
func NewDisplayContextWithWidth(width int) *DisplayContext {
	return &DisplayContext{TermWidth: width, IsTTY: true}
}
