package chat

import (
	"context"

	"supportbot/internal/chatclient"
	"supportbot/internal/widget"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerHeight = 2 // title line + divider
	inputHeight  = 3 // bordered single line
	footerHeight = 1
	panelChrome  = 2 // panel border top and bottom
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		m.pending--
		if !msg.result.OK() {
			m.logger.Warn("Showing connection error",
				zap.String("send_id", msg.id),
				zap.Error(msg.result.Err))
		}
		m = m.RenderMessage(widget.SenderBot, chatclient.BotText(msg.result))
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.status = statusOffline
			m.logger.Info("Chat service unreachable", zap.Error(msg.err))
		} else {
			m.status = statusOnline
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.panel.Visible() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEsc:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyCtrlT:
		return m.TogglePanel(), nil

	case tea.KeyF1:
		m.showHelp = !m.showHelp
		if m.showHelp {
			m = m.refreshHelp()
		}
		return m, nil
	}

	if !m.panel.Visible() || m.showHelp {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEnter:
		return m.SendMessage()

	case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// TogglePanel flips the panel between shown and hidden. The input only has
// focus while the panel is shown.
func (m Model) TogglePanel() Model {
	m.panel = m.panel.Toggle()
	if m.panel.Visible() {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.logger.Debug("Panel toggled", zap.Stringer("state", m.panel))
	return m
}

// RenderMessage appends a message and scrolls the transcript to it.
func (m Model) RenderMessage(sender widget.Sender, text string) Model {
	m.transcript.Append(sender, text)
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	return m
}

// SendMessage sends the current input. Empty input is ignored. The user
// message is rendered and the input cleared before the request is made; the
// reply arrives later as a replyMsg.
func (m Model) SendMessage() (Model, tea.Cmd) {
	text := m.input.Value()
	if text == "" {
		return m, nil
	}

	m = m.RenderMessage(widget.SenderUser, text)
	m.input.Reset()

	send := m.sendCmd(text)
	m.pending++
	if m.pending == 1 {
		return m, tea.Batch(send, m.spinner.Tick)
	}
	return m, send
}

func (m Model) sendCmd(text string) tea.Cmd {
	client := m.client
	timeout := m.timeout
	id := uuid.NewString()
	m.logger.Debug("Message queued", zap.String("send_id", id), zap.Int("length", len(text)))

	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return replyMsg{id: id, result: client.Do(ctx, text)}
	}
}

func (m Model) resize(width, height int) Model {
	m.width, m.height = width, height

	vpWidth := width - 4 // panel border + padding
	if vpWidth < 1 {
		vpWidth = 1
	}
	vpHeight := height - headerHeight - inputHeight - footerHeight - panelChrome
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.input.Width = vpWidth - len(m.input.Prompt) - 1
	if m.input.Width < 1 {
		m.input.Width = 1
	}
	m.ready = true

	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	if m.showHelp {
		m = m.refreshHelp()
	}
	return m
}
