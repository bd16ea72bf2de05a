// Package shellquote renders commands and paths the way a user would type
// them at a shell prompt. Output is for logs and hints, never for execution.
package shellquote

import "strings"

// Quote wraps s in single quotes, escaping any internal single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// QuoteIfNeeded quotes strings that a shell would split or interpret.
func QuoteIfNeeded(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n#[]()|!\"'$`&;<>*?\\~") {
		return Quote(s)
	}
	return s
}

// Join quotes each argument as needed and joins them with spaces.
func Join(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = QuoteIfNeeded(a)
	}
	return strings.Join(quoted, " ")
}
