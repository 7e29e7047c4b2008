package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
)

type ResultKind string

const (
	ResultUseCases   ResultKind = "use_cases"
	ResultFrameworks ResultKind = "frameworks"
)

// ResultPayload is attached to assistant messages that present candidates.
// Exactly one of the lists is populated, as named by Kind.
type ResultPayload struct {
	Kind       ResultKind           `json:"kind"`
	UseCases   []UseCaseCandidate   `json:"use_cases,omitempty"`
	Frameworks []FrameworkCandidate `json:"frameworks,omitempty"`
}

type ChatMessage struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Result    *ResultPayload `json:"result,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewUserMessage(content string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewAssistantMessage(content string, result *ResultPayload) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Role:      RoleAssistant,
		Content:   content,
		Result:    result,
		Timestamp: time.Now(),
	}
}
