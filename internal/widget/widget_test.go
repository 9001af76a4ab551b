package widget

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanelState_ToggleTwiceRestores(t *testing.T) {
	for _, start := range []PanelState{PanelShown, PanelHidden} {
		got := start.Toggle().Toggle()
		assert.Equal(t, start, got, "start=%s", start)
	}
}

func TestPanelState_Toggle(t *testing.T) {
	assert.Equal(t, PanelHidden, PanelShown.Toggle())
	assert.Equal(t, PanelShown, PanelHidden.Toggle())
	assert.True(t, PanelShown.Visible())
	assert.False(t, PanelHidden.Visible())
}

func TestTranscript_AppendOrder(t *testing.T) {
	var tr Transcript
	require.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Messages())

	tr.Append(SenderUser, "hi")
	tr.Append(SenderBot, "hello")
	idx := tr.Append(SenderUser, "bye")
	assert.Equal(t, 2, idx)

	want := []Message{
		{Sender: SenderUser, Text: "hi"},
		{Sender: SenderBot, Text: "hello"},
		{Sender: SenderUser, Text: "bye"},
	}
	if diff := cmp.Diff(want, tr.Messages()); diff != "" {
		t.Errorf("transcript mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, tr.Len())
}

func TestTranscript_MessagesIsACopy(t *testing.T) {
	var tr Transcript
	tr.Append(SenderUser, "original")

	msgs := tr.Messages()
	msgs[0].Text = "changed"

	assert.Equal(t, "original", tr.Messages()[0].Text)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"markup kept literal", "<b>bold</b> **md**", "<b>bold</b> **md**"},
		{"ansi escape shown", "\x1b[31mred", `\x1b[31mred`},
		{"newline and tab kept", "a\n\tb", "a\n\tb"},
		{"carriage return shown", "a\rb", `a\rb`},
		{"bell shown", "ding\a", `ding\x07`},
		{"c1 control shown", "x\u009by", `x\x9by`},
		{"line separator shown", "a\u2028b", `a\u2028b`},
		{"right-to-left override shown", "abc\u202Edcba", `abc\u202edcba`},
		{"isolates shown", "\u2066x\u2069", `\u2066x\u2069`},
		{"embedding shown", "\u202Ax\u202C", `\u202ax\u202c`},
		{"marks shown", "a\u200Fb\u061Cc", `a\u200fb\u061cc`},
		{"arabic text kept", "\u0645\u0631\u062d\u0628\u0627", "\u0645\u0631\u062d\u0628\u0627"},
		{"unicode kept", "héllo 👋", "héllo 👋"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.in))
		})
	}
}

func TestSender_String(t *testing.T) {
	assert.Equal(t, "user", SenderUser.String())
	assert.Equal(t, "bot", SenderBot.String())
	assert.Equal(t, "unknown", Sender(42).String())
}
