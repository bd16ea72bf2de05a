package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultAccentColor is used until ConfigureTheme says otherwise.
const DefaultAccentColor = "#A78BFA"

var accentColor = DefaultAccentColor

var (
	// Accent highlights file names.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(DefaultAccentColor))

	// Muted is for hints, counts and separators.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold is used for tag keys and headers.
	Bold = lipgloss.NewStyle().Bold(true)
)

// ConfigureTheme sets the accent color from the [ui] accent setting.
// "none", "off", "default" or an unparsable value turn the accent off.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		accentColor = ""
		Accent = lipgloss.NewStyle()
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}

// normalizeAccentColor accepts an ANSI 256 code or a #rgb / #rrggbb hex color.
func normalizeAccentColor(s string) (string, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "off", "default":
		return "", false
	}

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return "", false
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", false
		}
		return "#" + hex, true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return "", false
	}
	return strconv.Itoa(n), true
}
