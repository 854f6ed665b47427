package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusLine(t *testing.T) {
	m := NewStatus("https://api.wxve.io/chat")
	require.Equal(t, "api.wxve.io · idle · 0 messages", m.Line())

	m.SetPhase("finalized")
	m.SetMessageCount(1)
	m.SetLastTurn(2400 * time.Millisecond)
	m.SetTheme("dark")
	require.Equal(t, "api.wxve.io · finalized · 1 message · last 2.4s · dark", m.Line())
}

func TestToastsExpire(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewToasts()
	m.now = func() time.Time { return now }

	for _, s := range []string{"a", "b", "c", "d"} {
		m.Add(s, ToastInfo)
	}
	require.Equal(t, 3, m.Len())
	require.Contains(t, m.View(40), "✓ d")

	now = now.Add(5 * time.Second)
	m.Tick()
	require.Zero(t, m.Len())
	require.Empty(t, m.View(40))
}
