// Package widget holds the state owned by the chat widget: who said what,
// in which order, and whether the panel is showing.
//
// Nothing here touches a terminal. The Bubble Tea model in cmd/supportbot/chat
// owns one Transcript and one PanelState and mutates them only from Update.
package widget

import (
	"strings"
	"unicode"
)

// Sender identifies the author of a message.
type Sender int

const (
	SenderUser Sender = iota
	SenderBot
)

// String returns the display name for the sender.
func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderBot:
		return "bot"
	default:
		return "unknown"
	}
}

// Message is one transcript entry. It is never modified after creation.
type Message struct {
	Sender Sender
	Text   string
}

// PanelState is the visibility of the chat panel.
type PanelState int

const (
	PanelShown PanelState = iota
	PanelHidden
)

// Toggle returns the opposite state.
func (p PanelState) Toggle() PanelState {
	if p == PanelHidden {
		return PanelShown
	}
	return PanelHidden
}

// Visible reports whether the panel is shown.
func (p PanelState) Visible() bool {
	return p == PanelShown
}

// String returns "shown" or "hidden".
func (p PanelState) String() string {
	if p == PanelHidden {
		return "hidden"
	}
	return "shown"
}

// Transcript is the ordered, append-only list of rendered messages.
// The zero value is an empty transcript.
type Transcript struct {
	messages []Message
}

// Append adds a message at the end and returns its index.
func (t *Transcript) Append(sender Sender, text string) int {
	t.messages = append(t.messages, Message{Sender: sender, Text: text})
	return len(t.messages) - 1
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages returns a copy of the transcript in display order.
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// PlainText makes arbitrary text safe to write to a terminal while keeping it
// literal: control characters (ESC and friends) are shown as Go escapes
// instead of being interpreted, as are line separators and bidi controls.
// Newlines and tabs are kept.
func PlainText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\r':
			b.WriteString(`\r`)
		case unicode.IsControl(r):
			b.WriteString(`\x`)
			b.WriteString(hex2(byte(r)))
		case r == '\u2028' || r == '\u2029' || isBidiControl(r):
			b.WriteString(`\u`)
			b.WriteString(hex2(byte(r >> 8)))
			b.WriteString(hex2(byte(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isBidiControl reports the embedding, override, isolate and mark characters
// that reorder how surrounding text is displayed.
func isBidiControl(r rune) bool {
	switch {
	case r >= '\u202a' && r <= '\u202e':
		return true
	case r >= '\u2066' && r <= '\u2069':
		return true
	case r == '\u200e' || r == '\u200f' || r == '\u061c':
		return true
	}
	return false
}

func hex2(c byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[c>>4], digits[c&0x0f]})
}
