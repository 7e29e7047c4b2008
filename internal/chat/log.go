package chat

import "agent-advisor/internal/model"

// Log is the append-only conversation transcript. Messages are never edited
// in place; the only other mutation is a wholesale reset. Not safe for
// concurrent use on its own; the Controller serializes access.
type Log struct {
	messages []model.ChatMessage
}

func (l *Log) Append(m model.ChatMessage) {
	l.messages = append(l.messages, m)
}

func (l *Log) Len() int { return len(l.messages) }

// Messages returns a copy of the transcript.
func (l *Log) Messages() []model.ChatMessage {
	out := make([]model.ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

func (l *Log) Reset() {
	l.messages = nil
}
