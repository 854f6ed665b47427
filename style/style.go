package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette of the active theme. Set through SetTheme.
var (
	Primary, Secondary, Success, Warning, Error lipgloss.TerminalColor
	Muted, Dim, Border                          lipgloss.TerminalColor
	MsgBorderUser, MsgBorderAssistant           lipgloss.TerminalColor
	MsgBorderError                              lipgloss.TerminalColor
)

// Styles derived from the palette.
var (
	Bold      lipgloss.Style
	Faint     lipgloss.Style
	ErrorText lipgloss.Style

	// Header
	BannerTitle  lipgloss.Style
	BannerDetail lipgloss.Style

	// Prompt
	PromptChar lipgloss.Style

	// Chat
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBlock      lipgloss.Style
	AssistantBlock lipgloss.Style
	ErrorBlock     lipgloss.Style
	ChartLine      lipgloss.Style

	// Activity
	SpinnerStyle lipgloss.Style
	ToolName     lipgloss.Style
	ToolDuration lipgloss.Style
	PrefixActive lipgloss.Style
	PrefixDone   lipgloss.Style

	// Status bar
	StatusBar lipgloss.Style

	// Hint text (ctrl+t, ctrl+y)
	Hint lipgloss.Style
)

func init() {
	apply(darkTheme)
}

func apply(t Theme) {
	Primary, Secondary = t.Primary, t.Secondary
	Success, Warning, Error = t.Success, t.Warning, t.Error
	Muted, Dim, Border = t.Muted, t.Dim, t.Border
	MsgBorderUser, MsgBorderAssistant, MsgBorderError = t.MsgBorderUser, t.MsgBorderAssistant, t.MsgBorderError

	Bold = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Muted)
	ErrorText = lipgloss.NewStyle().Foreground(Error).Bold(true)

	BannerTitle = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	BannerDetail = lipgloss.NewStyle().
		Foreground(Muted)

	PromptChar = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	UserLabel = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
	AssistantLabel = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	UserBlock = leftBorder(MsgBorderUser)
	AssistantBlock = leftBorder(MsgBorderAssistant)
	ErrorBlock = leftBorder(MsgBorderError)
	ChartLine = lipgloss.NewStyle().
		Foreground(Secondary).
		Italic(true)

	SpinnerStyle = lipgloss.NewStyle().
		Foreground(Primary)
	ToolName = lipgloss.NewStyle().
		Foreground(Secondary)
	ToolDuration = lipgloss.NewStyle().
		Foreground(Muted)
	PrefixActive = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
	PrefixDone = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	StatusBar = lipgloss.NewStyle().
		Foreground(Muted).
		PaddingLeft(1)

	Hint = lipgloss.NewStyle().
		Foreground(Dim)
}

func leftBorder(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(c).
		PaddingLeft(1)
}

// Rule renders a horizontal separator of width cells.
func Rule(width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", width))
}
