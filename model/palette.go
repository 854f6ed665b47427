package model

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/wxveio/wxve-chat/style"
)

// PaletteExecuteMsg is sent when the user picks a command.
type PaletteExecuteMsg struct {
	Command string
}

// PaletteDismissMsg is sent when the user closes the palette.
type PaletteDismissMsg struct{}

// PaletteItem is a single entry in the command palette.
type PaletteItem struct {
	Name        string // e.g. "/export"
	Description string // e.g. "Save the conversation as HTML"
}

// PaletteModel is a fuzzy-filtered command overlay.
type PaletteModel struct {
	active   bool
	filter   textinput.Model
	items    []PaletteItem
	filtered []PaletteItem
	cursor   int
	width    int
	height   int
}

const paletteRows = 8

// NewPalette constructs a PaletteModel.
func NewPalette() PaletteModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "> "
	return PaletteModel{filter: ti}
}

// Open shows the palette with items.
func (m *PaletteModel) Open(items []PaletteItem, width, height int) tea.Cmd {
	m.active = true
	m.items = items
	m.filtered = items
	m.cursor = 0
	m.width = width
	m.height = height
	m.filter.SetValue("")
	m.filter.PromptStyle = lipgloss.NewStyle().Foreground(style.Primary)
	m.filter.Width = width/2 - 6
	return m.filter.Focus()
}

// IsActive reports whether the palette is visible.
func (m PaletteModel) IsActive() bool { return m.active }

// Selected returns the item under the cursor.
func (m PaletteModel) Selected() (PaletteItem, bool) {
	if m.cursor < len(m.filtered) {
		return m.filtered[m.cursor], true
	}
	return PaletteItem{}, false
}

// Update handles keys while the palette is open.
func (m PaletteModel) Update(msg tea.Msg) (PaletteModel, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "esc", "ctrl+c", "ctrl+k":
			m.close()
			return m, func() tea.Msg { return PaletteDismissMsg{} }
		case "enter":
			item, ok := m.Selected()
			if !ok {
				return m, nil
			}
			m.close()
			return m, func() tea.Msg { return PaletteExecuteMsg{Command: item.Name} }
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.applyFilter()
	}
	return m, cmd
}

func (m *PaletteModel) close() {
	m.active = false
	m.filter.Blur()
}

// applyFilter ranks items by fuzzy score against name and description.
func (m *PaletteModel) applyFilter() {
	m.cursor = 0
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		m.filtered = m.items
		return
	}
	keys := make([]string, len(m.items))
	for i, it := range m.items {
		keys[i] = strings.ToLower(strings.TrimPrefix(it.Name, "/") + " " + it.Description)
	}
	results := fuzzy.Find(query, keys)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	m.filtered = make([]PaletteItem, 0, len(results))
	for _, r := range results {
		m.filtered = append(m.filtered, m.items[r.Index])
	}
}

// View renders the palette as a centered box.
func (m PaletteModel) View() string {
	if !m.active {
		return ""
	}
	boxWidth := m.width / 2
	if boxWidth < 40 {
		boxWidth = 40
	}
	if boxWidth > m.width-4 {
		boxWidth = m.width - 4
	}

	var sb strings.Builder
	sb.WriteString(style.BannerTitle.Render("Commands"))
	sb.WriteByte('\n')
	sb.WriteString(m.filter.View())
	sb.WriteByte('\n')
	sb.WriteString(style.Rule(boxWidth - 6))

	start := 0
	if m.cursor >= paletteRows {
		start = m.cursor - paletteRows + 1
	}
	end := start + paletteRows
	if end > len(m.filtered) {
		end = len(m.filtered)
	}

	if len(m.filtered) == 0 {
		sb.WriteString("\n" + style.Faint.Render("  No matching commands"))
	}
	for i := start; i < end; i++ {
		item := m.filtered[i]
		marker, name := "  ", style.ToolName.Render(item.Name)
		if i == m.cursor {
			marker = style.PromptChar.Render("> ")
			name = style.ToolName.Bold(true).Render(item.Name)
		}
		sb.WriteString("\n" + marker + name + style.Faint.Render("  "+item.Description))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Border).
		Padding(1, 2).
		Width(boxWidth).
		Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
