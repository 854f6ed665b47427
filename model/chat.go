package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wxveio/wxve-chat/chat"
	"github.com/wxveio/wxve-chat/markdown"
	"github.com/wxveio/wxve-chat/style"
)

// chatEntry is either a committed conversation message or a local notice
// (help text, command feedback) that never enters the conversation.
type chatEntry struct {
	msg      *chat.Message
	notice   string
	isError  bool
	rendered string
}

// ChatModel is a scrollable viewport that displays the conversation, the
// in-flight reply and the activity panel.
type ChatModel struct {
	vp      viewport.Model
	entries []chatEntry
	synced  int // committed messages already copied into entries
	width   int
	height  int
	wrap    int // upper bound on bodyWidth; 0 follows the terminal

	inflight       string
	inflightCharts []chat.Chart
	inflightView   string // cached render of inflight
	processingView string
}

// NewChat constructs a ChatModel sized to width x height.
func NewChat(width, height int) ChatModel {
	m := ChatModel{
		vp:     viewport.New(width, height),
		width:  width,
		height: height,
	}
	m.refresh()
	return m
}

// SyncMessages appends committed messages not yet shown. The store is
// append-only, so only the tail past the last sync is new.
func (m *ChatModel) SyncMessages(msgs []chat.Message) {
	if len(msgs) <= m.synced {
		return
	}
	for i := m.synced; i < len(msgs); i++ {
		msg := msgs[i]
		m.entries = append(m.entries, chatEntry{msg: &msg})
	}
	m.synced = len(msgs)
	m.refresh()
}

// SetInFlight shows the reply being streamed, its charts so far and the
// activity panel below it.
func (m *ChatModel) SetInFlight(text string, charts []chat.Chart, activity string) {
	if text != m.inflight || len(charts) != len(m.inflightCharts) {
		m.inflightView = ""
	}
	m.inflight = text
	m.inflightCharts = charts
	m.processingView = activity
	m.refresh()
}

// SetProcessingView shows the activity panel below the in-flight reply.
func (m *ChatModel) SetProcessingView(v string) {
	m.processingView = v
	m.refresh()
}

// ClearProcessingView removes the in-flight reply and activity panel.
func (m *ChatModel) ClearProcessingView() {
	m.inflight = ""
	m.inflightCharts = nil
	m.inflightView = ""
	m.processingView = ""
	m.refresh()
}

// AddNotice appends a dimmed local notice.
func (m *ChatModel) AddNotice(text string) {
	m.entries = append(m.entries, chatEntry{notice: text})
	m.ScrollToBottom()
}

// AddError appends a local error notice.
func (m *ChatModel) AddError(text string) {
	m.entries = append(m.entries, chatEntry{notice: text, isError: true})
	m.ScrollToBottom()
}

// Invalidate drops cached renders, e.g. after a theme change.
func (m *ChatModel) Invalidate() {
	for i := range m.entries {
		m.entries[i].rendered = ""
	}
	m.inflightView = ""
	m.refresh()
}

// SetSize resizes the underlying viewport.
func (m *ChatModel) SetSize(width, height int) {
	if width != m.width {
		for i := range m.entries {
			m.entries[i].rendered = ""
		}
		m.inflightView = ""
	}
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height
	m.refresh()
}

// ScrollToBottom re-renders and pins the view to the newest content.
func (m *ChatModel) ScrollToBottom() {
	m.vp.SetContent(m.renderAll())
	m.vp.GotoBottom()
}

// ScrollToTop jumps to the oldest message.
func (m *ChatModel) ScrollToTop() {
	m.vp.GotoTop()
}

// AtBottom reports whether the view follows new content.
func (m ChatModel) AtBottom() bool {
	return m.vp.AtBottom() || m.vp.TotalLineCount() <= m.vp.Height
}

// Init satisfies tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update forwards keyboard and mouse events to the viewport.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View returns the rendered viewport content.
func (m ChatModel) View() string {
	return m.vp.View()
}

// refresh re-renders into the viewport. The view keeps following the bottom
// unless the user scrolled up.
func (m *ChatModel) refresh() {
	follow := m.AtBottom()
	m.vp.SetContent(m.renderAll())
	if follow {
		m.vp.GotoBottom()
	}
}

func (m *ChatModel) renderAll() string {
	if len(m.entries) == 0 && m.inflight == "" && len(m.inflightCharts) == 0 && m.processingView == "" {
		return style.Faint.Render("  Ask Xve about any symbol. Type /help for commands.")
	}

	var sb strings.Builder
	for i := range m.entries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		e := &m.entries[i]
		if e.rendered == "" {
			e.rendered = m.renderEntry(*e)
		}
		sb.WriteString(e.rendered)
	}

	if m.inflight != "" || len(m.inflightCharts) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		if m.inflightView == "" {
			m.inflightView = m.renderAssistant(m.inflight, m.inflightCharts, false)
		}
		sb.WriteString(m.inflightView)
	}
	if m.processingView != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.processingView)
	}
	return sb.String()
}

func (m ChatModel) renderEntry(e chatEntry) string {
	switch {
	case e.msg == nil && e.isError:
		return style.ErrorText.Render(e.notice)
	case e.msg == nil:
		return style.Faint.Render(e.notice)
	case e.msg.Role == chat.RoleUser:
		return style.UserLabel.Render("❯ You") + "\n" + style.UserBlock.Render(e.msg.Content)
	default:
		return m.renderAssistant(e.msg.Content, e.msg.Charts, e.msg.Failed)
	}
}

func (m ChatModel) renderAssistant(content string, charts []chat.Chart, failed bool) string {
	label := style.AssistantLabel.Render("◈ Xve")
	if failed {
		return label + "\n" + style.ErrorBlock.Render(style.ErrorText.Render(content))
	}

	body := markdown.RenderWidth(content, m.bodyWidth())
	for _, c := range charts {
		body += "\n" + style.ChartLine.Render("▣ "+markdown.ChartTitle(c.Symbol))
	}
	return label + "\n" + style.AssistantBlock.Render(body)
}

// SetWrap caps the reply wrap width. Zero wraps at the terminal width.
func (m *ChatModel) SetWrap(cols int) {
	if cols == m.wrap {
		return
	}
	m.wrap = cols
	m.Invalidate()
}

// bodyWidth is the wrap width inside the left border.
func (m ChatModel) bodyWidth() int {
	w := m.width - 4
	if m.wrap > 0 && w > m.wrap {
		w = m.wrap
	}
	if w < 20 {
		w = 20
	}
	return w
}
