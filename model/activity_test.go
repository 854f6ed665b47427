package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxveio/wxve-chat/msg"
)

func TestActivityTracksTools(t *testing.T) {
	m := NewActivity()
	require.Empty(t, m.View())

	m.Start()
	m.SetStreaming()
	assert.Contains(t, m.View(), "Thinking…")

	t0 := time.Now()
	m, _ = m.Update(msg.ToolCallStart{Name: "get_wave_count", At: t0})
	assert.Contains(t, m.View(), "Using get_wave_count…")
	assert.Contains(t, m.View(), "(running…)")

	m, _ = m.Update(msg.ToolCallEnd{Name: "get_wave_count", At: t0.Add(250 * time.Millisecond)})
	view := m.View()
	assert.Contains(t, view, "Thinking…")
	assert.Contains(t, view, "(250ms)")
	assert.Equal(t, 1, m.ToolCount())

	m.Stop()
	assert.Empty(t, m.View())
}

func TestActivityCollapsesOldTools(t *testing.T) {
	m := NewActivity()
	m.Start()
	now := time.Now()
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		m, _ = m.Update(msg.ToolCallStart{Name: name, At: now})
		m, _ = m.Update(msg.ToolCallEnd{Name: name, At: now})
	}
	view := m.View()
	assert.Contains(t, view, "2 earlier")
	assert.Equal(t, 4, strings.Count(view, "\n"))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "ab…", truncate("abcdef", 3))
	require.Equal(t, "", truncate("abc", 0))
	require.Equal(t, "日…", truncate("日本語", 4))
}
