package style

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

func TestSetTheme(t *testing.T) {
	t.Cleanup(func() { SetTheme("dark") })

	require.True(t, SetTheme("light"))
	require.Equal(t, "light", CurrentThemeName)
	require.Equal(t, lipgloss.Color("#0F766E"), Primary)

	require.False(t, SetTheme("neon"))
	require.Equal(t, "light", CurrentThemeName)
}

func TestRule(t *testing.T) {
	require.Empty(t, Rule(0))
	require.Equal(t, 5, lipgloss.Width(Rule(5)))
}
