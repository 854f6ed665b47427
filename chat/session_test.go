package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wxveio/wxve-chat/client"
)

func TestSubmitCapturesHistoryBeforeAppending(t *testing.T) {
	s := NewSession()
	req, err := s.Submit("first")
	require.NoError(t, err)
	require.Equal(t, "first", req.Message)
	require.Empty(t, req.History)
	require.NotNil(t, req.History)

	s.Opened()
	s.Apply(client.TextEvent{Content: "reply"})
	s.Apply(client.DoneEvent{})

	req, err = s.Submit("second")
	require.NoError(t, err)
	require.Equal(t, []client.HistoryMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "reply"},
	}, req.History)

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	require.Equal(t, "second", msgs[2].Content)
	require.Equal(t, RoleUser, msgs[2].Role)
}

func TestSubmitRejectsWhileLoading(t *testing.T) {
	s := NewSession()
	_, err := s.Submit("one")
	require.NoError(t, err)

	calls := 0
	s.OnChange(func(Snapshot) { calls++ })

	_, err = s.Submit("two")
	require.ErrorIs(t, err, ErrBusy)
	require.Len(t, s.Messages(), 1)
	require.Zero(t, calls)

	s.Opened()
	_, err = s.Submit("three")
	require.ErrorIs(t, err, ErrBusy)
	require.Len(t, s.Messages(), 1)
}

func TestSubmitRejectsBlankInput(t *testing.T) {
	s := NewSession()
	for _, in := range []string{"", "   ", "\n\t"} {
		_, err := s.Submit(in)
		require.ErrorIs(t, err, ErrEmptyInput)
	}
	require.Empty(t, s.Messages())
	require.Equal(t, PhaseIdle, s.Turn().Phase)
}

func TestSessionFinalizesCanonicalStream(t *testing.T) {
	s := NewSession()
	_, err := s.Submit("Hi")
	require.NoError(t, err)
	s.Opened()
	s.Apply(client.TextEvent{Content: "Hel"})
	s.Apply(client.TextEvent{Content: "lo"})
	require.Equal(t, "Hello", s.Snapshot().Text)
	s.Apply(client.DoneEvent{})

	snap := s.Snapshot()
	require.False(t, snap.Loading)
	require.Equal(t, PhaseFinalized, snap.Phase)
	require.Empty(t, snap.Text)
	last, ok := s.LastAssistant()
	require.True(t, ok)
	require.Equal(t, "Hello", last.Content)
}

func TestSessionErrorEvent(t *testing.T) {
	s := NewSession()
	_, _ = s.Submit("Hi")
	s.Opened()
	s.Apply(client.TextEvent{Content: "partial"})
	s.Apply(client.ErrorEvent{Message: "rate limited"})

	last, _ := s.LastAssistant()
	require.Equal(t, "Error: rate limited", last.Content)
	require.False(t, s.Loading())

	// usable immediately after
	_, err := s.Submit("again")
	require.NoError(t, err)
}

func TestSessionFailBeforeOpen(t *testing.T) {
	s := NewSession()
	_, _ = s.Submit("Hi")
	s.Fail("HTTP 503")

	msgs := s.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "Error: HTTP 503", msgs[1].Content)
	require.Equal(t, PhaseFailed, s.Turn().Phase)

	// a second failure report for the same turn is ignored
	s.Fail("late")
	require.Len(t, s.Messages(), 2)
}

func TestSessionEndOfStream(t *testing.T) {
	s := NewSession()
	_, _ = s.Submit("Hi")
	s.Opened()
	s.Apply(client.TextEvent{Content: "cut"})
	s.EndOfStream()

	last, _ := s.LastAssistant()
	require.Equal(t, "Error: connection closed unexpectedly", last.Content)
	require.False(t, s.Loading())
}

func TestSessionIgnoresEventsBeforeOpen(t *testing.T) {
	s := NewSession()
	_, _ = s.Submit("Hi")
	s.Apply(client.DoneEvent{})
	require.True(t, s.Loading())
	require.Len(t, s.Messages(), 1)
}

func TestSessionIDsHaveNoGaps(t *testing.T) {
	s := NewSession()
	for i := 0; i < 3; i++ {
		_, err := s.Submit("q")
		require.NoError(t, err)
		_, err = s.Submit("rejected")
		require.ErrorIs(t, err, ErrBusy)
		s.Opened()
		s.Apply(client.DoneEvent{})
		_, err = s.Submit(" ")
		require.ErrorIs(t, err, ErrEmptyInput)
	}
	for i, m := range s.Messages() {
		assert.Equal(t, uint64(i), m.ID)
	}
}

func TestSessionNotifiesObservers(t *testing.T) {
	s := NewSession()
	var phases []Phase
	var texts []string
	s.OnChange(func(snap Snapshot) {
		phases = append(phases, snap.Phase)
		texts = append(texts, snap.Text)
	})

	_, _ = s.Submit("Hi")
	s.Opened()
	s.Apply(client.ToolStartEvent{Name: "wave"})
	s.Apply(client.ToolEndEvent{Name: "wave"})
	s.Apply(client.TextEvent{Content: "x"})
	s.Apply(client.DoneEvent{})

	require.Equal(t, []Phase{
		PhaseSending, PhaseStreaming, PhaseStreaming, PhaseStreaming, PhaseStreaming, PhaseFinalized,
	}, phases)
	require.Equal(t, []string{"", "", "", "\n\n", "\n\nx", ""}, texts)
}
