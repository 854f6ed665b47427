package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wxveio/wxve-chat/client"
	"github.com/wxveio/wxve-chat/logger"
)

// ReasonTruncated is the failure reason when the response body ends
// without a done or error event.
const ReasonTruncated = "connection closed unexpectedly"

var (
	// ErrBusy rejects a submission while a turn is in flight.
	ErrBusy = errors.New("a reply is still streaming")
	// ErrEmptyInput rejects a blank submission.
	ErrEmptyInput = errors.New("empty input")
)

// Snapshot is a read-only view of a session.
type Snapshot struct {
	Messages   []Message
	Text       string
	Charts     []Chart
	ActiveTool string
	ToolActive bool
	Loading    bool
	Phase      Phase
}

// Session owns the conversation store and the in-flight turn. It is not
// safe for concurrent use; all calls must come from one goroutine at a time.
type Session struct {
	store     Store
	turn      Turn
	observers []func(Snapshot)

	turnID  string
	started time.Time
	log     *logger.Entry
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{log: logger.Named("session")}
}

// OnChange registers fn to be called synchronously after every mutation.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.observers = append(s.observers, fn)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Messages:   s.store.All(),
		Text:       s.turn.Text,
		Charts:     append([]Chart(nil), s.turn.Charts...),
		ActiveTool: s.turn.ActiveTool,
		ToolActive: s.turn.ToolActive,
		Loading:    s.turn.Loading(),
		Phase:      s.turn.Phase,
	}
}

// Messages returns the committed messages.
func (s *Session) Messages() []Message {
	return s.store.All()
}

// LastAssistant returns the most recent assistant message, if any.
func (s *Session) LastAssistant() (Message, bool) {
	return s.store.LastAssistant()
}

// Turn returns the in-flight turn.
func (s *Session) Turn() Turn {
	return s.turn
}

// Loading reports whether a turn is in flight.
func (s *Session) Loading() bool {
	return s.turn.Loading()
}

// Submit starts a turn for text and returns the request to send. The
// history in the request is captured before the user message is appended.
// A rejected submission changes nothing.
func (s *Session) Submit(text string) (client.ChatRequest, error) {
	if s.turn.Loading() {
		return client.ChatRequest{}, ErrBusy
	}
	if strings.TrimSpace(text) == "" {
		return client.ChatRequest{}, ErrEmptyInput
	}

	history := History(s.store.Snapshot())
	s.store.Append(Message{Role: RoleUser, Content: text})
	s.turn = Turn{Phase: PhaseSending}
	s.turnID = uuid.NewString()
	s.started = time.Now()

	s.turnLog().WithFields(logger.Fields{
		"history":  len(history),
		"messages": s.store.Len(),
	}).Info("turn submitted")
	s.notify()
	return client.ChatRequest{Message: text, History: history}, nil
}

// Opened records that the response headers arrived and the body is readable.
func (s *Session) Opened() {
	if s.turn.Phase != PhaseSending {
		return
	}
	s.turn.Phase = PhaseStreaming
	s.turnLog().WithField("latency", time.Since(s.started).Round(time.Millisecond)).Info("stream opened")
	s.notify()
}

// Apply feeds one stream event to the in-flight turn.
func (s *Session) Apply(ev client.Event) {
	if s.turn.Phase != PhaseStreaming {
		s.turnLog().WithField("event", ev.Type()).Debug("event outside streaming turn ignored")
		return
	}
	switch e := ev.(type) {
	case client.ToolStartEvent:
		s.turnLog().WithField("tool", e.Name).Info("tool started")
	case client.ToolEndEvent:
		s.turnLog().WithField("tool", e.Name).Info("tool finished")
	case client.ChartEvent:
		s.turnLog().WithField("symbol", e.Symbol).Info("chart received")
	}
	s.transition(Step(s.turn, ev))
}

// Fail ends the in-flight turn with reason, committing "Error: <reason>".
func (s *Session) Fail(reason string) {
	if !s.turn.Loading() {
		return
	}
	s.transition(Fail(s.turn, reason))
}

// EndOfStream handles a body that ended without a terminal event.
func (s *Session) EndOfStream() {
	s.Fail(ReasonTruncated)
}

func (s *Session) transition(next Turn, effects []Effect) {
	prev := s.turn.Phase
	s.turn = next
	for _, eff := range effects {
		s.perform(eff)
	}
	if next.Phase != prev {
		s.logOutcome(next)
	}
	s.notify()
}

func (s *Session) perform(eff Effect) {
	switch e := eff.(type) {
	case Commit:
		s.store.Append(Message{Role: RoleAssistant, Content: e.Content, Charts: e.Charts, Failed: e.Failed})
	}
}

func (s *Session) logOutcome(t Turn) {
	entry := s.turnLog().WithField("duration", time.Since(s.started).Round(time.Millisecond))
	switch t.Phase {
	case PhaseFinalized:
		last, _ := s.store.LastAssistant()
		entry.WithFields(logger.Fields{
			"bytes":  len(last.Content),
			"charts": len(last.Charts),
		}).Info("turn finalized")
	case PhaseFailed:
		entry.WithField("reason", t.Reason).Warn("turn failed")
	}
}

func (s *Session) turnLog() *logger.Entry {
	if s.log == nil {
		s.log = logger.Named("session")
	}
	return s.log.WithField("turn_id", s.turnID)
}

func (s *Session) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}
