package ui

import "fmt"

// Status symbols. Outcomes are told apart by symbol, never by color.
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
)

// Success prefixes msg with a check mark.
func Success(msg string) string {
	return fmt.Sprintf("%s %s", SymbolSuccess, msg)
}

// Successf formats and prefixes with a check mark.
func Successf(format string, args ...any) string {
	return Success(fmt.Sprintf(format, args...))
}

// Warning prefixes msg with a warning sign.
func Warning(msg string) string {
	return fmt.Sprintf("%s %s", SymbolWarning, msg)
}

// Header renders a section header.
func Header(msg string) string {
	return Bold.Render(msg)
}

// FilePath renders a path in the accent color.
func FilePath(path string) string {
	return Accent.Render(path)
}

// Hint renders muted text.
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Count renders "(n thing)" or "(n things)".
func Count(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("(%d %s)", n, singular)
	}
	return fmt.Sprintf("(%d %s)", n, plural)
}

// BatchSummary describes how many files a command touched, e.g.
// "3 files updated (1 failed)".
func BatchSummary(verb string, done, failed int) string {
	s := fmt.Sprintf("%d %s %s", done, pluralize("file", done), verb)
	if failed > 0 {
		s += " " + Count(failed, "failed", "failed")
	}
	return s
}

func pluralize(singular string, count int) string {
	if count == 1 {
		return singular
	}
	return singular + "s"
}
