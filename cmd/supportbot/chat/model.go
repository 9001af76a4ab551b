// Package chat implements the interactive chat widget: a toggleable panel
// holding the transcript, a single-line input and the in-flight indicator.
package chat

import (
	"context"
	"time"

	"supportbot/cmd/supportbot/ui"
	"supportbot/internal/chatclient"
	"supportbot/internal/logging"
	"supportbot/internal/widget"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Sender performs one chat exchange. *chatclient.Client satisfies it.
type Sender interface {
	Do(ctx context.Context, text string) chatclient.Result
}

// healthChecker is implemented by senders that can check the service.
type healthChecker interface {
	Health(ctx context.Context) error
}

// Options configures the widget.
type Options struct {
	Client      Sender
	Styles      ui.Styles
	StartHidden bool
	// Timeout bounds each send. Zero means no timeout.
	Timeout time.Duration
	Logger  *zap.Logger
	// Shown in the header.
	Endpoint   string
	BusinessID int
}

// replyMsg carries a settled send back into Update.
type replyMsg struct {
	id     string
	result chatclient.Result
}

// healthMsg reports whether the service answered its health check.
type healthMsg struct {
	err error
}

type serviceStatus int

const (
	statusUnknown serviceStatus = iota
	statusOnline
	statusOffline
)

// Model is the Bubble Tea model for the widget. Update is the only writer
// of the transcript and panel state.
type Model struct {
	client  Sender
	timeout time.Duration
	logger  *zap.Logger

	panel      widget.PanelState
	transcript widget.Transcript
	pending    int
	status     serviceStatus

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles

	showHelp   bool
	helpCache  string
	helpWidth  int
	endpoint   string
	businessID int

	width  int
	height int
	ready  bool
}

// New creates the widget model.
func New(opts Options) Model {
	logger := logging.For(opts.Logger, logging.CategoryChat)

	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	vp := viewport.New(80, 20)
	vp.SetContent("")

	m := Model{
		client:     opts.Client,
		timeout:    opts.Timeout,
		logger:     logger,
		panel:      widget.PanelShown,
		input:      ti,
		viewport:   vp,
		spinner:    sp,
		styles:     opts.Styles,
		endpoint:   opts.Endpoint,
		businessID: opts.BusinessID,
	}
	if opts.StartHidden {
		m.panel = widget.PanelHidden
	} else {
		m.input.Focus()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.checkHealth())
}

// Panel returns the current panel state.
func (m Model) Panel() widget.PanelState {
	return m.panel
}

// Transcript returns a copy of the rendered messages.
func (m Model) Transcript() []widget.Message {
	return m.transcript.Messages()
}

// Pending returns the number of sends still in flight.
func (m Model) Pending() int {
	return m.pending
}

// Input returns the current input text.
func (m Model) Input() string {
	return m.input.Value()
}

// SetInput replaces the input text.
func (m Model) SetInput(s string) Model {
	m.input.SetValue(s)
	return m
}

func (m Model) checkHealth() tea.Cmd {
	hc, ok := m.client.(healthChecker)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return healthMsg{err: hc.Health(ctx)}
	}
}

// Run starts the widget full-screen and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
