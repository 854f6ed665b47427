package chat

import (
	"context"
	"errors"
	"io"

	"github.com/wxveio/wxve-chat/client"
)

// Events is a readable sequence of stream events. Next returns io.EOF once
// the body has ended.
type Events interface {
	Next() (client.Event, error)
	Close() error
}

// Transport opens the event stream for one request.
type Transport interface {
	Open(ctx context.Context, req client.ChatRequest) (Events, error)
}

// HTTPTransport opens streams with a client.Client.
type HTTPTransport struct {
	Client *client.Client
}

// Open implements Transport.
func (t HTTPTransport) Open(ctx context.Context, req client.ChatRequest) (Events, error) {
	s, err := t.Client.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Run drives one complete turn for text on the calling goroutine and
// returns the committed assistant message. Turn failures are recorded in
// the conversation as "Error: <reason>" and are not returned; the only
// errors are ErrBusy and ErrEmptyInput. The stream is closed before Run
// returns.
func (s *Session) Run(ctx context.Context, tr Transport, text string) (Message, error) {
	req, err := s.Submit(text)
	if err != nil {
		return Message{}, err
	}

	events, err := tr.Open(ctx, req)
	if err != nil {
		s.Fail(err.Error())
		return s.lastReply(), nil
	}
	defer events.Close()

	s.Opened()
	for s.turn.Loading() {
		ev, err := events.Next()
		if errors.Is(err, io.EOF) {
			s.EndOfStream()
			break
		}
		if err != nil {
			s.Fail(err.Error())
			break
		}
		s.Apply(ev)
	}
	return s.lastReply(), nil
}

func (s *Session) lastReply() Message {
	m, _ := s.store.LastAssistant()
	return m
}
