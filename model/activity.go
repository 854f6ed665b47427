package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/wxveio/wxve-chat/msg"
	"github.com/wxveio/wxve-chat/style"
)

const maxCollapsed = 3

// ToolCallInfo tracks a single tool invocation within a turn.
type ToolCallInfo struct {
	Name     string
	Started  time.Time
	Duration time.Duration
	Done     bool
}

// ActivityModel renders a spinner, elapsed timer and the tool calls of the
// current turn.
type ActivityModel struct {
	sp        spinner.Model
	active    bool
	streaming bool
	startTime time.Time
	toolCalls []ToolCallInfo
	width     int
}

// NewActivity constructs an ActivityModel with a Dot spinner.
func NewActivity() ActivityModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = style.SpinnerStyle
	return ActivityModel{sp: sp, width: 80}
}

// Start activates the display for a new turn.
func (m *ActivityModel) Start() {
	m.active = true
	m.streaming = false
	m.startTime = time.Now()
	m.toolCalls = nil
}

// SetStreaming switches the header from "Sending" to "Thinking".
func (m *ActivityModel) SetStreaming() {
	m.streaming = true
}

// Stop hides the activity display.
func (m *ActivityModel) Stop() {
	m.active = false
}

// SetWidth bounds rendered lines to width cells.
func (m *ActivityModel) SetWidth(w int) {
	m.width = w
}

// Active reports whether a turn is being shown.
func (m ActivityModel) Active() bool { return m.active }

// ToolCount returns the number of tool invocations in this turn.
func (m ActivityModel) ToolCount() int { return len(m.toolCalls) }

// Elapsed returns the time since Start.
func (m ActivityModel) Elapsed() time.Duration {
	if m.startTime.IsZero() {
		return 0
	}
	return time.Since(m.startTime)
}

// Init satisfies tea.Model.
func (m ActivityModel) Init() tea.Cmd {
	return m.sp.Tick
}

// Update handles spinner ticks and tool call events.
func (m ActivityModel) Update(teaMsg tea.Msg) (ActivityModel, tea.Cmd) {
	switch v := teaMsg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(v)
		return m, cmd

	case msg.ToolCallStart:
		m.toolCalls = append(m.toolCalls, ToolCallInfo{Name: v.Name, Started: v.At})
		return m, nil

	case msg.ToolCallEnd:
		// Mark the most recent matching tool as done.
		for i := len(m.toolCalls) - 1; i >= 0; i-- {
			tc := &m.toolCalls[i]
			if tc.Name == v.Name && !tc.Done {
				tc.Done = true
				tc.Duration = v.At.Sub(tc.Started)
				break
			}
		}
		return m, nil
	}
	return m, nil
}

// running returns the newest unfinished tool, if any.
func (m ActivityModel) running() (string, bool) {
	for i := len(m.toolCalls) - 1; i >= 0; i-- {
		if !m.toolCalls[i].Done {
			return m.toolCalls[i].Name, true
		}
	}
	return "", false
}

// View renders the activity panel. Returns "" when inactive.
//
//	⠋ Using get_wave_count… (4s · 2 tools)
//	  ├─ get_quote (310ms)
//	  └─ get_wave_count (running…)
func (m ActivityModel) View() string {
	if !m.active {
		return ""
	}

	phrase := "Sending…"
	if m.streaming {
		phrase = "Thinking…"
	}
	if name, ok := m.running(); ok {
		phrase = "Using " + name + "…"
	}

	hdr := fmt.Sprintf("%s (%s", phrase, formatElapsed(m.Elapsed()))
	if n := len(m.toolCalls); n > 0 {
		hdr += fmt.Sprintf(" · %d %s", n, plural(n, "tool", "tools"))
	}
	hdr += ")"

	var sb strings.Builder
	sb.WriteString(m.sp.View())
	sb.WriteByte(' ')
	sb.WriteString(truncate(hdr, m.width-2))

	visible := m.toolCalls
	overflow := 0
	if len(visible) > maxCollapsed {
		overflow = len(visible) - maxCollapsed
		visible = visible[overflow:]
	}
	if overflow > 0 {
		sb.WriteByte('\n')
		sb.WriteString(style.Hint.Render(fmt.Sprintf("  ⋮ %d earlier", overflow)))
	}
	for i, tc := range visible {
		sb.WriteByte('\n')
		sb.WriteString(m.renderToolCall(tc, i == len(visible)-1))
	}
	return sb.String()
}

func (m ActivityModel) renderToolCall(tc ToolCallInfo, isLast bool) string {
	connector := "  ├─ "
	if isLast {
		connector = "  └─ "
	}
	mark, markStyle := "● ", style.PrefixActive
	suffix := " (running…)"
	if tc.Done {
		mark, markStyle = "✓ ", style.PrefixDone
		suffix = fmt.Sprintf(" (%s)", formatDuration(tc.Duration))
	}
	avail := m.width - runewidth.StringWidth(connector+mark) - runewidth.StringWidth(suffix)
	name := truncate(tc.Name, avail)
	return style.Hint.Render(connector) + markStyle.Render(mark) + style.ToolName.Render(name) + style.ToolDuration.Render(suffix)
}

// truncate shortens s to at most width cells, marking the cut with "…".
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// formatElapsed renders a duration as a concise string.
// Examples: 3s, 1m 23s
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	return fmt.Sprintf("%dm %ds", total/60, total%60)
}

// formatDuration renders sub-second durations in milliseconds.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(100 * time.Millisecond).String()
}
