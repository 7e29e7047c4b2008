package model

import "time"

// ChatSnapshot is the persisted form of a chat controller.
type ChatSnapshot struct {
	State        string         `json:"state"`
	Revising     Field          `json:"revising,omitempty"`
	Requirements Requirements   `json:"requirements"`
	Result       *ResultPayload `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
	Messages     []ChatMessage  `json:"messages"`
}

// FormSnapshot is the persisted form of a form controller.
type FormSnapshot struct {
	Phase        string               `json:"phase"`
	Requirements Requirements         `json:"requirements"`
	Submitted    *Requirements        `json:"submitted,omitempty"`
	Error        string               `json:"error,omitempty"`
	UseCases     []UseCaseCandidate   `json:"use_cases,omitempty"`
	Selected     int                  `json:"selected"`
	Frameworks   []FrameworkCandidate `json:"frameworks,omitempty"`
}

// Session is one advisor session as stored. The chat and form halves never
// share field values.
type Session struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Chat      ChatSnapshot `json:"chat"`
	Form      FormSnapshot `json:"form"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
