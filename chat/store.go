package chat

// Store is the append-only message log of one session. Messages are never
// edited or removed, and every read returns copies.
type Store struct {
	messages []Message
	nextID   uint64
}

// Append assigns the next id to m, stores it and returns the stored copy.
// Any id already set on m is ignored.
func (s *Store) Append(m Message) Message {
	m = m.clone()
	m.ID = s.nextID
	s.nextID++
	s.messages = append(s.messages, m)
	return m.clone()
}

// Snapshot returns the messages in order, for building request history.
func (s *Store) Snapshot() []Message {
	return s.All()
}

// All returns the messages in order, for rendering.
func (s *Store) All() []Message {
	out := make([]Message, len(s.messages))
	for i, m := range s.messages {
		out[i] = m.clone()
	}
	return out
}

// Len returns the number of committed messages.
func (s *Store) Len() int {
	return len(s.messages)
}

// LastAssistant returns the most recent assistant message, if any.
func (s *Store) LastAssistant() (Message, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleAssistant {
			return s.messages[i].clone(), true
		}
	}
	return Message{}, false
}
