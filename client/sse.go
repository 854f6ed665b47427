package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// dataPrefix is the only SSE field the chat service uses.
const dataPrefix = "data: "

// -- Stream events (decoded from data lines) ---------------------------------

// Event is one decoded unit of a streamed chat response. The concrete types
// below are also dispatched to the TUI as tea.Msg values.
type Event interface {
	// Type returns the wire discriminator, e.g. "tool_start".
	Type() string
}

// TextEvent carries a text delta for the assistant reply.
type TextEvent struct {
	Content string
}

// ToolStartEvent is dispatched when the service starts a named tool.
type ToolStartEvent struct {
	Name string
}

// ToolEndEvent is dispatched when that tool invocation ends.
type ToolEndEvent struct {
	Name string
}

// ChartEvent carries an embeddable HTML chart produced during the turn.
type ChartEvent struct {
	Symbol string
	HTML   string
}

// DoneEvent ends the turn successfully.
type DoneEvent struct{}

// ErrorEvent ends the turn with a server-supplied message.
type ErrorEvent struct {
	Message string
}

func (TextEvent) Type() string      { return "text" }
func (ToolStartEvent) Type() string { return "tool_start" }
func (ToolEndEvent) Type() string   { return "tool_end" }
func (ChartEvent) Type() string     { return "chart" }
func (DoneEvent) Type() string      { return "done" }
func (ErrorEvent) Type() string     { return "error" }

// IsTerminal reports whether ev ends the turn.
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case DoneEvent, ErrorEvent:
		return true
	}
	return false
}

// -- Stream lifecycle events (TUI only) --------------------------------------

// SSEOpenedEvent is dispatched when the service accepted the request and the
// response body is ready to be read.
type SSEOpenedEvent struct {
	Stream *Stream
}

// SSEClosedEvent is dispatched when the body ended without a terminal event.
type SSEClosedEvent struct {
	Dropped int
}

// SSEDisconnectedEvent is dispatched when the request could not be made or
// reading the body failed.
type SSEDisconnectedEvent struct {
	Err error
}

// wireChunk mirrors every field any chunk type may carry. Pointer fields
// distinguish a missing field from an empty one.
type wireChunk struct {
	Type    string  `json:"type"`
	Content *string `json:"content"`
	Name    *string `json:"name"`
	Symbol  *string `json:"symbol"`
	HTML    *string `json:"html"`
	Message *string `json:"message"`
}

// DecodeLine converts one trimmed line into an Event. Lines without the
// "data: " prefix, payloads that are not valid JSON, unknown types and
// chunks missing a required field all yield false.
func DecodeLine(line string) (Event, bool) {
	data, ok := strings.CutPrefix(line, dataPrefix)
	if !ok {
		return nil, false
	}
	var c wireChunk
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, false
	}

	switch c.Type {
	case "text":
		if c.Content == nil {
			return nil, false
		}
		return TextEvent{Content: *c.Content}, true

	case "tool_start":
		if c.Name == nil {
			return nil, false
		}
		return ToolStartEvent{Name: *c.Name}, true

	case "tool_end":
		if c.Name == nil {
			return nil, false
		}
		return ToolEndEvent{Name: *c.Name}, true

	case "chart":
		if c.Symbol == nil || c.HTML == nil {
			return nil, false
		}
		return ChartEvent{Symbol: *c.Symbol, HTML: *c.HTML}, true

	case "done":
		return DoneEvent{}, true

	case "error":
		if c.Message == nil {
			return nil, false
		}
		return ErrorEvent{Message: *c.Message}, true
	}
	return nil, false
}

// isDataLine reports whether a line was meant for the decoder, so that
// dropped lines can be counted separately from keepalives and blanks.
func isDataLine(line string) bool {
	return strings.HasPrefix(line, dataPrefix)
}

// ChatCmd returns a tea.Cmd that issues the request and reports the outcome
// as SSEOpenedEvent or SSEDisconnectedEvent.
func (c *Client) ChatCmd(req ChatRequest) tea.Cmd {
	return func() tea.Msg {
		s, err := c.Chat(context.Background(), req)
		if err != nil {
			return SSEDisconnectedEvent{Err: err}
		}
		return SSEOpenedEvent{Stream: s}
	}
}

// ListenCmd returns a tea.Cmd that reads the stream and sends every decoded
// event to p. The terminal event is the command's own result, so nothing is
// delivered after it. The stream is closed on every return path.
func (s *Stream) ListenCmd(p *tea.Program) tea.Cmd {
	return func() tea.Msg {
		defer s.Close()
		for {
			ev, err := s.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return SSEClosedEvent{Dropped: s.Dropped()}
				}
				return SSEDisconnectedEvent{Err: err}
			}
			if IsTerminal(ev) {
				return ev
			}
			p.Send(ev)
		}
	}
}

// NextCmd returns a tea.Cmd that reads a single event. It is the pull-based
// alternative to ListenCmd for callers without a *tea.Program: the caller
// issues it again after every non-terminal event. The stream is closed
// once a terminal event, end of body or read error is returned.
func (s *Stream) NextCmd() tea.Cmd {
	return func() tea.Msg {
		ev, err := s.Next()
		switch {
		case errors.Is(err, io.EOF):
			s.Close()
			return SSEClosedEvent{Dropped: s.Dropped()}
		case err != nil:
			s.Close()
			return SSEDisconnectedEvent{Err: err}
		case IsTerminal(ev):
			s.Close()
		}
		return ev
	}
}
