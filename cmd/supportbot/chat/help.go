package chat

import (
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

const helpMarkdown = `# Support chat

Type a question and press **Enter**. Your message appears right away and the
reply shows up when the server answers. You can keep sending while earlier
messages are still waiting.

| Key | Action |
|---|---|
| Enter | send the message |
| Ctrl+T | show or hide the chat panel |
| PgUp / PgDn | scroll the conversation |
| F1 | toggle this help |
| Esc | close help, or quit |
| Ctrl+C | quit |

If the server cannot be reached you will see
` + "`Error: Unable to connect to the server.`" + ` Just try again.
`

// refreshHelp renders the help page for the current width. Messages are
// never passed through markdown; only this static page is.
func (m Model) refreshHelp() Model {
	width := m.width - 4
	if width < 20 {
		width = 20
	}
	if m.helpCache != "" && m.helpWidth == width {
		return m
	}

	style := "light"
	if m.styles.Theme.IsDark {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.logger.Warn("Help renderer unavailable", zap.Error(err))
		m.helpCache, m.helpWidth = helpMarkdown, width
		return m
	}

	out, err := r.Render(helpMarkdown)
	if err != nil {
		m.logger.Warn("Help render failed", zap.Error(err))
		out = helpMarkdown
	}
	m.helpCache, m.helpWidth = out, width
	return m
}
