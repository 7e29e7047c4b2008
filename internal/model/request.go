package model

type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
}

type CreateSessionRequest struct {
	Title string `json:"title"`
}

// SetFieldRequest updates one form field; an empty value clears it.
type SetFieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type TogglePriorityRequest struct {
	Tag string `json:"tag" binding:"required"`
}

type SelectUseCaseRequest struct {
	Index *int `json:"index" binding:"required"`
}
