// Package ui provides the visual styling for the supportbot chat widget.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Light mode
	LightForeground = lipgloss.Color("#1b2430")
	LightPrimary    = lipgloss.Color("#1d4ed8")
	LightAccent     = lipgloss.Color("#0ea5e9")
	LightMuted      = lipgloss.Color("#8a94a3")
	LightBorder     = lipgloss.Color("#cbd5e1")
	LightBubble     = lipgloss.Color("#eef2f7")

	// Dark mode
	DarkForeground = lipgloss.Color("#e6edf3")
	DarkPrimary    = lipgloss.Color("#38bdf8")
	DarkAccent     = lipgloss.Color("#1d4ed8")
	DarkMuted      = lipgloss.Color("#6b7685")
	DarkBorder     = lipgloss.Color("#334155")
	DarkBubble     = lipgloss.Color("#1e293b")

	// Same in both modes
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#43a047")
)

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Bubble     lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Bubble:     LightBubble,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Bubble:     DarkBubble,
		IsDark:     true,
	}
}

// ThemeByName maps ui.theme to a Theme, ignoring case. "auto" detects the
// terminal background.
func ThemeByName(name string) Theme {
	switch strings.ToLower(name) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses from COLORFGBG ("fg;bg"), defaulting to light.
func DetectTheme() Theme {
	parts := strings.Split(os.Getenv("COLORFGBG"), ";")
	if len(parts) >= 2 {
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if (bg >= 0 && bg <= 6) || bg == 8 {
				return DarkTheme()
			}
		}
	}
	return LightTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Panel   lipgloss.Style
	Input   lipgloss.Style
	Divider lipgloss.Style

	// Transcript
	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style
	UserText  lipgloss.Style
	BotText   lipgloss.Style

	// Text
	Muted lipgloss.Style
	Bold  lipgloss.Style
	Error lipgloss.Style

	// Components
	Spinner lipgloss.Style
	Badge   lipgloss.Style
	Launch  lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),

		UserLabel: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		BotLabel: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		UserText: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(2),

		BotText: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Badge: lipgloss.NewStyle().
			Background(theme.Accent).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 1).
			Bold(true),

		Launch: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider.
func (s Styles) RenderDivider(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
