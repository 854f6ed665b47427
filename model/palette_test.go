package model

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

var paletteItems = []PaletteItem{
	{Name: "/help", Description: "Show commands and keys"},
	{Name: "/export", Description: "Save the conversation as HTML"},
	{Name: "/copy", Description: "Copy the last reply"},
}

func typeInto(m PaletteModel, s string) PaletteModel {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPaletteFiltersAndExecutes(t *testing.T) {
	m := NewPalette()
	m.Open(paletteItems, 120, 40)
	require.True(t, m.IsActive())

	m = typeInto(m, "html")
	item, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, "/export", item.Name)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.IsActive())
	require.Equal(t, PaletteExecuteMsg{Command: "/export"}, cmd())
}

func TestPaletteDismiss(t *testing.T) {
	m := NewPalette()
	m.Open(paletteItems, 120, 40)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.IsActive())
	require.Equal(t, PaletteDismissMsg{}, cmd())
	require.Empty(t, m.View())
}
