package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeRequirements(t *testing.T) Requirements {
	t.Helper()
	r := Requirements{}
	var err error
	r, err = r.WithField(FieldAgentType, string(AgentChatbot))
	require.NoError(t, err)
	r, err = r.WithField(FieldUseCase, "Answer HR policy questions")
	require.NoError(t, err)
	r, err = r.WithField(FieldExperienceLevel, string(ExperienceBeginner))
	require.NoError(t, err)
	r, err = r.WithField(FieldLearningPreference, string(LearningSimple))
	require.NoError(t, err)
	return r
}

func TestTogglePriorityIsInvolution(t *testing.T) {
	sequences := [][]Priority{
		{PriorityRAG},
		{PriorityRAG, PrioritySpeed},
		{PrioritySpeed, PriorityTools, PriorityMemory, PriorityRAG, PriorityPrivacy, PriorityMulti},
	}
	start := Requirements{Priorities: NewPrioritySet(PriorityMemory)}

	for _, seq := range sequences {
		r := start
		for _, p := range seq {
			r = r.TogglePriority(p)
		}
		for i := len(seq) - 1; i >= 0; i-- {
			r = r.TogglePriority(seq[i])
		}
		assert.True(t, start.Priorities.Equal(r.Priorities), "sequence %v", seq)
	}
}

func TestTogglePriorityDoesNotMutateReceiver(t *testing.T) {
	r := Requirements{}
	r2 := r.TogglePriority(PriorityRAG)

	assert.False(t, r.Priorities.Has(PriorityRAG))
	assert.True(t, r2.Priorities.Has(PriorityRAG))
}

func TestCanSubmit(t *testing.T) {
	full := completeRequirements(t)
	assert.True(t, full.CanSubmit())
	assert.Empty(t, full.Missing())

	tests := []struct {
		name  string
		field Field
		value string
	}{
		{"agent type empty", FieldAgentType, ""},
		{"use case empty", FieldUseCase, ""},
		{"use case whitespace", FieldUseCase, "   \t\n"},
		{"experience empty", FieldExperienceLevel, ""},
		{"learning empty", FieldLearningPreference, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := full.WithField(tt.field, tt.value)
			require.NoError(t, err)
			assert.False(t, r.CanSubmit())
			assert.Equal(t, []Field{tt.field}, r.Missing())
		})
	}

	t.Run("priorities may be empty", func(t *testing.T) {
		assert.Equal(t, 0, full.Priorities.Len())
		assert.True(t, full.CanSubmit())
	})
}

func TestWithFieldRejectsNonMembers(t *testing.T) {
	r := completeRequirements(t)

	_, err := r.WithField(FieldAgentType, "Robot")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = r.WithField(FieldExperienceLevel, "guru")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = r.WithField(FieldLearningPreference, "maybe")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = r.WithField("colour", "blue")
	assert.ErrorIs(t, err, ErrInvalidField)

	assert.Equal(t, AgentChatbot, r.AgentType)
}

func TestFrameworkRequestJSON(t *testing.T) {
	r := completeRequirements(t).
		TogglePriority(PriorityRAG).
		TogglePriority(PrioritySpeed)

	data, err := json.Marshal(r.FrameworkRequest(true))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"agent_type": "Chatbot",
		"priorities": ["speed", "rag"],
		"use_case": "Answer HR policy questions",
		"experience_level": "beginner",
		"learning_preference": "simple",
		"force_frameworks": true
	}`, string(data))
}

func TestUseCaseRequestEmptyPrioritiesIsArray(t *testing.T) {
	data, err := json.Marshal(Requirements{}.UseCaseRequest())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"priorities":[]`)
}

func TestPrioritySetJSON(t *testing.T) {
	var r Requirements
	require.NoError(t, json.Unmarshal([]byte(`{"priorities":["multi","rag"]}`), &r))
	assert.True(t, r.Priorities.Has(PriorityMulti))
	assert.True(t, r.Priorities.Has(PriorityRAG))

	data, err := json.Marshal(r.Priorities)
	require.NoError(t, err)
	assert.Equal(t, `["rag","multi"]`, string(data))
}
