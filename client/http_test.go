package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func writeChunks(w http.ResponseWriter, chunks ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	flusher := w.(http.Flusher)
	for _, c := range chunks {
		fmt.Fprint(w, c)
		flusher.Flush()
	}
}

func TestChatStreamsEvents(t *testing.T) {
	var got ChatRequest
	var headers http.Header
	c := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeChunks(w,
			"data: {\"type\":\"text\",\"content\":\"Hel\"}\n",
			"data: {\"type\":\"te",
			"xt\",\"content\":\"lo\"}\n",
			"data: {\"type\":\"done\"}\n",
		)
	})

	s, err := c.Chat(context.Background(), ChatRequest{
		Message: "Hi",
		History: []HistoryMessage{{Role: "user", Content: "a"}, {Role: "assistant", Content: "b"}},
	})
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, []Event{
		TextEvent{Content: "Hel"},
		TextEvent{Content: "lo"},
		DoneEvent{},
	}, collect(t, s))

	require.Equal(t, "Hi", got.Message)
	require.Len(t, got.History, 2)
	require.Equal(t, "application/json", headers.Get("Content-Type"))
	require.Equal(t, "text/event-stream", headers.Get("Accept"))
	require.Equal(t, "no-cache", headers.Get("Cache-Control"))
}

func TestChatRequestBodyShape(t *testing.T) {
	var raw map[string]any
	c := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		writeChunks(w, "data: {\"type\":\"done\"}\n")
	})

	s, err := c.Chat(context.Background(), ChatRequest{Message: "first"})
	require.NoError(t, err)
	s.Close()

	require.Equal(t, map[string]any{
		"message": "first",
		"history": []any{},
	}, raw)
}

func TestChatStatusError(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"plain", "oops", "HTTP 500"},
		{"json error", `{"error":"overloaded"}`, "HTTP 500: overloaded"},
		{"json error with details", `{"error":"overloaded","details":"retry later"}`, "HTTP 500: overloaded (retry later)"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				io.WriteString(w, tc.body)
			})
			s, err := c.Chat(context.Background(), ChatRequest{Message: "Hi"})
			require.Nil(t, s)
			var se *StatusError
			require.ErrorAs(t, err, &se)
			require.Equal(t, 500, se.Code)
			require.EqualError(t, err, tc.want)
		})
	}
}

func TestChatNoBody(t *testing.T) {
	c := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
	})
	_, err := c.Chat(context.Background(), ChatRequest{Message: "Hi"})
	require.ErrorIs(t, err, ErrNoBody)
	require.EqualError(t, err, "no body")
}

func TestChatEndWithoutTerminalEvent(t *testing.T) {
	c := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeChunks(w, "data: {\"type\":\"text\",\"content\":\"Hi\"}\n", "data: {\"type\":\"done\"}")
	})
	s, err := c.Chat(context.Background(), ChatRequest{Message: "Hi"})
	require.NoError(t, err)
	defer s.Close()

	require.Equal(t, []Event{TextEvent{Content: "Hi"}}, collect(t, s))
}

func TestChatIdleTimeout(t *testing.T) {
	release := make(chan struct{})
	c := sseServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeChunks(w, "data: {\"type\":\"text\",\"content\":\"Hi\"}\n")
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)
	c.IdleTimeout = 50 * time.Millisecond

	s, err := c.Chat(context.Background(), ChatRequest{Message: "Hi"})
	require.NoError(t, err)
	defer s.Close()

	ev, err := s.Next()
	require.NoError(t, err)
	require.Equal(t, TextEvent{Content: "Hi"}, ev)

	_, err = s.Next()
	require.True(t, errors.Is(err, ErrIdleTimeout), "got %v", err)
	require.EqualError(t, err, "stream idle for 50ms")
}

func TestChatTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Chat(context.Background(), ChatRequest{Message: "Hi"})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoBody)
}
