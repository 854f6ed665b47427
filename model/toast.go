package model

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/wxveio/wxve-chat/style"
)

// ToastLevel classifies toast severity.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastWarning
	ToastError
)

const (
	maxToasts = 3
	toastTTL  = 4 * time.Second
)

type toast struct {
	text   string
	level  ToastLevel
	expiry time.Time
}

// ToastsModel shows short-lived command feedback (copied, exported, theme
// saved) above the status line.
type ToastsModel struct {
	queue []toast
	now   func() time.Time
}

// NewToasts creates an empty ToastsModel.
func NewToasts() ToastsModel {
	return ToastsModel{now: time.Now}
}

func (m *ToastsModel) clock() time.Time {
	if m.now == nil {
		return time.Now()
	}
	return m.now()
}

// Add enqueues a toast; only the newest maxToasts are kept.
func (m *ToastsModel) Add(text string, level ToastLevel) {
	m.queue = append(m.queue, toast{text: text, level: level, expiry: m.clock().Add(toastTTL)})
	if len(m.queue) > maxToasts {
		m.queue = m.queue[len(m.queue)-maxToasts:]
	}
}

// Tick prunes expired toasts. Call on every msg.TickMsg.
func (m *ToastsModel) Tick() {
	now := m.clock()
	alive := m.queue[:0]
	for _, t := range m.queue {
		if now.Before(t.expiry) {
			alive = append(alive, t)
		}
	}
	m.queue = alive
}

// Len returns the number of visible toasts.
func (m ToastsModel) Len() int {
	return len(m.queue)
}

// View renders visible toasts right-aligned within termWidth.
func (m ToastsModel) View(termWidth int) string {
	if len(m.queue) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.queue))
	for _, t := range m.queue {
		icon, color := toastIconColor(t.level)
		text := truncate(icon+" "+t.text, termWidth-2)
		rendered := lipgloss.NewStyle().Foreground(color).Render(text)
		pad := termWidth - lipgloss.Width(rendered) - 1
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, strings.Repeat(" ", pad)+rendered)
	}
	return strings.Join(lines, "\n")
}

func toastIconColor(level ToastLevel) (string, lipgloss.TerminalColor) {
	switch level {
	case ToastWarning:
		return "⚠", style.Warning
	case ToastError:
		return "✘", style.Error
	default:
		return "✓", style.Success
	}
}
