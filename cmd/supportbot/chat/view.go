package chat

import (
	"fmt"
	"strings"

	"supportbot/internal/widget"

	"github.com/charmbracelet/lipgloss"
)

// renderTranscript renders every message as plain text.
func (m Model) renderTranscript() string {
	if m.transcript.Len() == 0 {
		return m.styles.Muted.Render("Ask us anything. Press Enter to send.")
	}
	msgs := m.transcript.Messages()

	width := m.viewport.Width - 2
	if width < 1 {
		width = 1
	}

	var sb strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		text := widget.PlainText(msg.Text)
		switch msg.Sender {
		case widget.SenderUser:
			sb.WriteString(m.styles.UserLabel.Render("You"))
			sb.WriteString("\n")
			sb.WriteString(m.styles.UserText.Width(width).Render(text))
		default:
			sb.WriteString(m.styles.BotLabel.Render("Support"))
			sb.WriteString("\n")
			sb.WriteString(m.styles.BotText.Width(width).Render(text))
		}
	}
	return sb.String()
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.showHelp {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.Header.Render(" Help "),
			m.helpCache,
			m.styles.Footer.Render("Esc/F1: close help"),
		)
	}

	if !m.panel.Visible() {
		launcher := m.styles.Launch.Render(" Chat with support ")
		hint := m.styles.Muted.Render("  Ctrl+T: open | Ctrl+C: quit")
		body := lipgloss.JoinHorizontal(lipgloss.Center, launcher, hint)
		// Pin the launcher to the bottom like a floating button.
		pad := m.height - lipgloss.Height(body)
		if pad < 0 {
			pad = 0
		}
		return strings.Repeat("\n", pad) + body
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.styles.Panel.Render(m.viewport.View()),
		m.styles.Input.Render(m.input.View()),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" Support Chat ")

	var status string
	switch {
	case m.pending > 0:
		label := "thinking…"
		if m.pending > 1 {
			label = fmt.Sprintf("thinking… (%d)", m.pending)
		}
		status = lipgloss.JoinHorizontal(lipgloss.Center, m.spinner.View(), " ", m.styles.Badge.Render(label))
	case m.status == statusOffline:
		status = m.styles.Error.Render("offline")
	default:
		status = m.styles.Muted.Render("ready")
	}

	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", status)
	return lipgloss.JoinVertical(lipgloss.Left, line, m.styles.RenderDivider(m.width))
}

func (m Model) renderFooter() string {
	target := m.endpoint
	if m.businessID != 0 {
		target = fmt.Sprintf("%s (business %d)", target, m.businessID)
	}
	hints := "Enter: send | Ctrl+T: hide | F1: help | Ctrl+C: quit"
	if target != "" {
		hints = target + " | " + hints
	}
	return m.styles.Footer.Render(hints)
}
