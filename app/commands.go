package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wxveio/wxve-chat/chat"
	"github.com/wxveio/wxve-chat/config"
	"github.com/wxveio/wxve-chat/export"
	"github.com/wxveio/wxve-chat/model"
	"github.com/wxveio/wxve-chat/msg"
	"github.com/wxveio/wxve-chat/style"
)

type command struct {
	name        string
	usage       string
	description string
}

var commands = []command{
	{"/help", "/help", "Show commands and key bindings"},
	{"/export", "/export [path]", "Save the conversation as HTML"},
	{"/copy", "/copy", "Copy the last reply to the clipboard"},
	{"/theme", "/theme [name]", "Switch theme (" + strings.Join(config.Themes, ", ") + ")"},
	{"/quit", "/quit", "Exit"},
	{"/exit", "/exit", "Exit"},
}

func commandNames() []string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.name
	}
	return names
}

func paletteItems() []model.PaletteItem {
	items := make([]model.PaletteItem, 0, len(commands))
	for _, c := range commands {
		if c.name == "/exit" {
			continue
		}
		items = append(items, model.PaletteItem{Name: c.name, Description: c.description})
	}
	return items
}

// isCommand reports whether text names a local command. Anything else,
// including an unknown "/word", is sent to the service.
func isCommand(text string) bool {
	name, _ := splitCommand(text)
	for _, c := range commands {
		if c.name == name {
			return true
		}
	}
	return false
}

func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	name, arg, _ := strings.Cut(text, " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// submitInput runs a local command or starts a turn with text.
func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	if !isCommand(text) {
		return m.startTurn(text)
	}
	name, arg := splitCommand(text)
	switch name {
	case "/help":
		m.chat.AddNotice(helpText())
		return m, nil
	case "/export":
		path := arg
		if path == "" {
			path = export.DefaultName
		}
		return m, exportCmd(path, m.session.Messages(), m.cfg.Theme != "light")
	case "/copy":
		return m.copyLast()
	case "/theme":
		return m.setTheme(arg)
	case "/quit", "/exit":
		return m.quit()
	}
	return m, nil
}

func (m Model) copyLast() (Model, tea.Cmd) {
	last, ok := m.session.LastAssistant()
	if !ok {
		m.addToast("Nothing to copy yet", model.ToastWarning)
		return m, nil
	}
	write := m.clipboard
	text := last.Content
	return m, func() tea.Msg {
		return msg.CopyResult{Chars: len([]rune(text)), Err: write(text)}
	}
}

// setTheme switches to name, or to the next theme when name is empty, and
// persists the choice to the profile config.
func (m Model) setTheme(name string) (Model, tea.Cmd) {
	if name == "" {
		name = config.NextTheme(m.cfg.Theme)
	}
	name = strings.ToLower(name)
	if !config.ValidTheme(name) {
		m.chat.AddError(fmt.Sprintf("Unknown theme %q. Available: %s", name, strings.Join(config.Themes, ", ")))
		return m, nil
	}
	applyTheme(name)
	m.cfg.Theme = name
	m.chat.Invalidate()
	m.status.SetTheme(name)
	m.addToast("Theme: "+name, model.ToastInfo)
	m.log.WithField("theme", name).Info("theme changed")

	dir := m.profileDir
	if dir == "" {
		return m, nil
	}
	return m, func() tea.Msg {
		err := config.Edit(dir, func(c *config.Config) { c.Theme = name })
		return msg.ThemeSaved{Theme: name, Err: err}
	}
}

func exportCmd(path string, msgs []chat.Message, dark bool) tea.Cmd {
	return func() tea.Msg {
		abs, err := filepath.Abs(path)
		if err != nil {
			return msg.ExportResult{Err: err}
		}
		err = export.WriteFile(abs, msgs, export.Options{Dark: dark, Now: time.Now})
		return msg.ExportResult{Path: abs, Err: err}
	}
}

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}

func helpText() string {
	var b strings.Builder
	b.WriteString(style.Bold.Render("Commands"))
	for _, c := range commands {
		if c.name == "/exit" {
			continue
		}
		fmt.Fprintf(&b, "\n  %-16s %s", c.usage, c.description)
	}
	b.WriteString("\n\n" + style.Bold.Render("Keys"))
	for _, k := range DefaultKeyMap().ShortHelp() {
		h := k.Help()
		fmt.Fprintf(&b, "\n  %-16s %s", h.Key, h.Desc)
	}
	return b.String()
}
