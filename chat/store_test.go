package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreAssignsIncreasingIDs(t *testing.T) {
	var s Store
	a := s.Append(Message{ID: 99, Role: RoleUser, Content: "a"})
	b := s.Append(Message{Role: RoleAssistant, Content: "b"})
	require.Equal(t, uint64(0), a.ID)
	require.Equal(t, uint64(1), b.ID)
	require.Equal(t, 2, s.Len())
}

func TestStoreReturnsCopies(t *testing.T) {
	var s Store
	s.Append(Message{Role: RoleAssistant, Content: "x", Charts: []Chart{{Symbol: "AAPL"}}})

	all := s.All()
	all[0].Content = "changed"
	all[0].Charts[0].Symbol = "MSFT"

	again := s.Snapshot()
	require.Equal(t, "x", again[0].Content)
	require.Equal(t, "AAPL", again[0].Charts[0].Symbol)
}

func TestStoreLastAssistant(t *testing.T) {
	var s Store
	_, ok := s.LastAssistant()
	require.False(t, ok)

	s.Append(Message{Role: RoleAssistant, Content: "first"})
	s.Append(Message{Role: RoleUser, Content: "q"})
	m, ok := s.LastAssistant()
	require.True(t, ok)
	require.Equal(t, "first", m.Content)
}

func TestHistoryOmitsIDsAndCharts(t *testing.T) {
	h := History([]Message{
		{ID: 3, Role: RoleUser, Content: "hi"},
		{ID: 4, Role: RoleAssistant, Content: "yo", Charts: []Chart{{Symbol: "X"}}},
	})
	require.Len(t, h, 2)
	require.Equal(t, "user", h[0].Role)
	require.Equal(t, "hi", h[0].Content)
	require.Equal(t, "assistant", h[1].Role)
}
