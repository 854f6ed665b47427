package model

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/wxveio/wxve-chat/style"
)

// InputModel is the prompt line. Up and Down recall earlier submissions;
// the unsent draft is kept and comes back after walking past the newest
// entry. Tab on a "/" prefix cycles matching commands, best match first.
type InputModel struct {
	ti      textinput.Model
	history []string
	recall  int    // index into history; len(history) means the draft
	draft   string // buffer saved when recall left the draft

	commands   []string // available slash commands, e.g. ["/help", "/export"]
	tabIdx     int      // current autocomplete cursor (-1 = none)
	tabMatches []string // current autocomplete candidate list
}

// NewInput returns a ready-to-use InputModel.
func NewInput() InputModel {
	ti := textinput.New()
	ti.Placeholder = "Ask Xve..."
	ti.CharLimit = 4096
	ti.Prompt = ""

	return InputModel{
		ti:     ti,
		tabIdx: -1,
	}
}

// SetCommands replaces the command list used for Tab autocomplete.
func (m *InputModel) SetCommands(cmds []string) {
	m.commands = cmds
}

// SetWidth fits the field into a terminal of the given width.
func (m *InputModel) SetWidth(width int) {
	w := width - 4
	if w < 10 {
		w = 10
	}
	m.ti.Width = w
}

func (m *InputModel) Focus() tea.Cmd {
	return m.ti.Focus()
}

// Value is the buffer as typed, untrimmed.
func (m InputModel) Value() string {
	return m.ti.Value()
}

// SetValue replaces the buffer and moves the cursor to its end.
func (m *InputModel) SetValue(v string) {
	m.ti.SetValue(v)
	m.ti.CursorEnd()
}

// Reset empties the buffer and leaves history recall.
func (m *InputModel) Reset() {
	m.recall = len(m.history)
	m.draft = ""
	m.ti.SetValue("")
	m.resetTab()
}

// Submit records text in history, skipping a repeat of the last entry, and
// empties the buffer.
func (m *InputModel) Submit(text string) {
	if text != "" && (len(m.history) == 0 || m.history[len(m.history)-1] != text) {
		m.history = append(m.history, text)
	}
	m.Reset()
}

func (m *InputModel) resetTab() {
	m.tabIdx = -1
	m.tabMatches = nil
}

func (m InputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyUp:
			return m.recallHistory(-1), nil
		case tea.KeyDown:
			return m.recallHistory(1), nil
		case tea.KeyTab:
			return m.cycleComplete(), nil
		}
		m.resetTab()
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m InputModel) View() string {
	return style.PromptChar.Render("❯ ") + m.ti.View()
}

// recallHistory steps through history; -1 is older. Moving past the newest
// entry restores the draft.
func (m InputModel) recallHistory(step int) InputModel {
	if len(m.history) == 0 {
		return m
	}
	if m.recall == len(m.history) {
		m.draft = m.ti.Value()
	}
	m.recall = min(max(m.recall+step, 0), len(m.history))

	text := m.draft
	if m.recall < len(m.history) {
		text = m.history[m.recall]
	}
	m.SetValue(text)
	return m
}

// cycleComplete replaces a "/" buffer with the next matching command.
func (m InputModel) cycleComplete() InputModel {
	typed := m.ti.Value()
	if !strings.HasPrefix(typed, "/") {
		return m
	}
	if m.tabMatches == nil {
		m.tabMatches = MatchCommands(m.commands, typed)
		if len(m.tabMatches) == 0 {
			return m
		}
		m.tabIdx = 0
	} else {
		m.tabIdx = (m.tabIdx + 1) % len(m.tabMatches)
	}
	m.SetValue(m.tabMatches[m.tabIdx])
	return m
}

// MatchCommands ranks commands against a typed "/name" prefix. Exact prefix
// matches come first in list order, followed by the remaining fuzzy matches
// by descending score.
func MatchCommands(commands []string, typed string) []string {
	query := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(typed), "/"))
	if query == "" {
		return append([]string(nil), commands...)
	}

	var out []string
	seen := map[string]bool{}
	for _, c := range commands {
		if strings.HasPrefix(strings.TrimPrefix(c, "/"), query) {
			out = append(out, c)
			seen[c] = true
		}
	}

	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = strings.TrimPrefix(c, "/")
	}
	results := fuzzy.Find(query, names)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for _, r := range results {
		c := commands[r.Index]
		if !seen[c] {
			out = append(out, c)
			seen[c] = true
		}
	}
	return out
}
