package model

import "time"

type SessionResponse struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	ChatState    string    `json:"chat_state"`
	FormPhase    string    `json:"form_phase"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ChatResponse carries the messages appended by one chat turn.
type ChatResponse struct {
	SessionID string        `json:"session_id"`
	State     string        `json:"state"`
	Busy      bool          `json:"busy"`
	Messages  []ChatMessage `json:"messages"`
}

type FormView struct {
	SessionID    string               `json:"session_id"`
	Phase        string               `json:"phase"`
	Loading      bool                 `json:"loading"`
	Error        string               `json:"error,omitempty"`
	Requirements Requirements         `json:"requirements"`
	CanSubmit    bool                 `json:"can_submit"`
	Missing      []Field              `json:"missing,omitempty"`
	UseCases     []UseCaseCandidate   `json:"use_cases,omitempty"`
	Selected     *UseCaseCandidate    `json:"selected,omitempty"`
	Frameworks   []FrameworkCandidate `json:"frameworks,omitempty"`
	NoResults    bool                 `json:"no_results"`
}
