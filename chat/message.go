// Package chat holds the conversation state: an append-only message store
// and the controller that drives one request/response turn at a time.
package chat

import "github.com/wxveio/wxve-chat/client"

// Role identifies who authored a message.
type Role int

const (
	RoleUser Role = iota
	RoleAssistant
)

func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Chart is an embeddable HTML chart attached to an assistant message.
// HTML is server-produced and must only be rendered inside a sandbox.
type Chart struct {
	Symbol string
	HTML   string
}

// Message is one committed entry of the conversation.
type Message struct {
	ID      uint64
	Role    Role
	Content string
	Charts  []Chart
	// Failed marks an assistant message committed for a failed turn.
	Failed bool
}

func (m Message) clone() Message {
	if m.Charts != nil {
		m.Charts = append([]Chart(nil), m.Charts...)
	}
	return m
}

// History converts messages to the wire form sent with a request.
// Ids and charts are never sent.
func History(msgs []Message) []client.HistoryMessage {
	out := make([]client.HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, client.HistoryMessage{Role: m.Role.String(), Content: m.Content})
	}
	return out
}
