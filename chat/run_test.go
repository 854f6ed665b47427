package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wxveio/wxve-chat/client"
)

type fakeEvents struct {
	events []client.Event
	err    error
	closed int
}

func (f *fakeEvents) Next() (client.Event, error) {
	if len(f.events) == 0 {
		if f.err != nil {
			return nil, f.err
		}
		return nil, io.EOF
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeEvents) Close() error {
	f.closed++
	return nil
}

type fakeTransport struct {
	events  *fakeEvents
	err     error
	opened  int
	lastReq client.ChatRequest
}

func (f *fakeTransport) Open(_ context.Context, req client.ChatRequest) (Events, error) {
	f.opened++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func TestRunFinalizes(t *testing.T) {
	ev := &fakeEvents{events: []client.Event{
		client.TextEvent{Content: "Hel"},
		client.ChartEvent{Symbol: "AAPL", HTML: "<p>"},
		client.TextEvent{Content: "lo"},
		client.DoneEvent{},
		client.TextEvent{Content: "after done"},
	}}
	tr := &fakeTransport{events: ev}

	s := NewSession()
	msg, err := s.Run(context.Background(), tr, "Hi")
	require.NoError(t, err)
	require.Equal(t, "Hello", msg.Content)
	require.Equal(t, []Chart{{Symbol: "AAPL", HTML: "<p>"}}, msg.Charts)
	require.Equal(t, RoleAssistant, msg.Role)
	require.Equal(t, 1, ev.closed)
	require.Len(t, ev.events, 1)
}

func TestRunFailurePaths(t *testing.T) {
	cases := []struct {
		name string
		tr   *fakeTransport
		want string
	}{
		{
			name: "open error",
			tr:   &fakeTransport{err: errors.New("HTTP 500")},
			want: "Error: HTTP 500",
		},
		{
			name: "server error",
			tr: &fakeTransport{events: &fakeEvents{events: []client.Event{
				client.TextEvent{Content: "x"},
				client.ErrorEvent{Message: "rate limited"},
			}}},
			want: "Error: rate limited",
		},
		{
			name: "read error",
			tr:   &fakeTransport{events: &fakeEvents{err: fmt.Errorf("read body: %w", io.ErrUnexpectedEOF)}},
			want: "Error: read body: unexpected EOF",
		},
		{
			name: "truncated",
			tr:   &fakeTransport{events: &fakeEvents{events: []client.Event{client.TextEvent{Content: "x"}}}},
			want: "Error: connection closed unexpectedly",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession()
			msg, err := s.Run(context.Background(), tc.tr, "Hi")
			require.NoError(t, err)
			require.Equal(t, tc.want, msg.Content)
			require.False(t, s.Loading())
			if tc.tr.events != nil {
				require.Equal(t, 1, tc.tr.events.closed)
			}
		})
	}
}

func TestRunRejectsWithoutOpening(t *testing.T) {
	tr := &fakeTransport{events: &fakeEvents{}}
	s := NewSession()
	_, err := s.Run(context.Background(), tr, "  ")
	require.ErrorIs(t, err, ErrEmptyInput)
	require.Zero(t, tr.opened)
}

func TestRunOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		f := w.(http.Flusher)
		for _, chunk := range []string{
			"data: {\"type\":\"tool_start\",\"name\":\"get_wave\"}\n",
			"data: {\"type\":\"tool_end\",\"name\":\"get_wave\"}\n\n",
			"data: {\"type\":\"text\",\"content\":\"A\"}\ndata: {\"type\":\"te",
			"xt\",\"content\":\"B\"}\n",
			"data: {\"type\":\"done\"}\n",
		} {
			fmt.Fprint(w, chunk)
			f.Flush()
		}
	}))
	defer srv.Close()

	s := NewSession()
	tr := HTTPTransport{Client: client.New(srv.URL)}
	msg, err := s.Run(context.Background(), tr, "wave count for AAPL")
	require.NoError(t, err)
	require.Equal(t, "\n\nAB", msg.Content)

	msg, err = s.Run(context.Background(), tr, "again")
	require.NoError(t, err)
	require.Equal(t, uint64(3), msg.ID)
}

func TestRunOverHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSession()
	msg, err := s.Run(context.Background(), HTTPTransport{Client: client.New(srv.URL)}, "Hi")
	require.NoError(t, err)
	require.Equal(t, "Error: HTTP 502", msg.Content)
}
