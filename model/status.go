package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/wxveio/wxve-chat/style"
)

// StatusModel renders the bottom status line:
//
//	api.wxve.io · streaming · 6 messages · last 2.4s · dark
//
// It is driven entirely by setter calls.
type StatusModel struct {
	endpoint     string
	phase        string
	messageCount int
	lastTurn     time.Duration
	theme        string
	width        int
}

// NewStatus returns a StatusModel for endpoint.
func NewStatus(endpoint string) StatusModel {
	return StatusModel{endpoint: endpointHost(endpoint), phase: "idle", width: 80}
}

// SetPhase records the turn phase name.
func (m *StatusModel) SetPhase(phase string) { m.phase = phase }

// SetMessageCount records the number of committed messages.
func (m *StatusModel) SetMessageCount(n int) { m.messageCount = n }

// SetLastTurn records how long the last completed turn took.
func (m *StatusModel) SetLastTurn(d time.Duration) { m.lastTurn = d }

// SetTheme records the active theme name.
func (m *StatusModel) SetTheme(name string) { m.theme = name }

// SetWidth bounds the line to width cells.
func (m *StatusModel) SetWidth(w int) { m.width = w }

// Init satisfies tea.Model.
func (m StatusModel) Init() tea.Cmd {
	return nil
}

// Update satisfies tea.Model. No messages are consumed here.
func (m StatusModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the status line.
func (m StatusModel) View() string {
	return style.StatusBar.Render(truncate(m.Line(), m.width-1))
}

// Line returns the unstyled status text.
func (m StatusModel) Line() string {
	parts := []string{m.endpoint, m.phase, fmt.Sprintf("%d %s", m.messageCount, plural(m.messageCount, "message", "messages"))}
	if m.lastTurn > 0 {
		parts = append(parts, "last "+formatDuration(m.lastTurn))
	}
	if m.theme != "" {
		parts = append(parts, m.theme)
	}
	return strings.Join(parts, " · ")
}

// endpointHost shortens an endpoint URL to its host for display.
func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return runewidth.Truncate(endpoint, 40, "…")
	}
	return u.Host
}
