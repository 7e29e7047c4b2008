package chat

import (
	"strings"
	"testing"

	"agent-advisor/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeRequirements() model.Requirements {
	return model.Requirements{
		AgentType:          model.AgentChatbot,
		Priorities:         model.NewPrioritySet(model.PriorityRAG),
		UseCase:            "Answer HR policy questions",
		ExperienceLevel:    model.ExperienceBeginner,
		LearningPreference: model.LearningSimple,
	}
}

func TestIntroGreetsAndAsksForAgentType(t *testing.T) {
	step := Transition(Intro{}, "")

	assert.Equal(t, StateAgentType, step.Next.Name())
	require.Len(t, step.Replies, 2)
	assert.Contains(t, step.Replies[1], "Chatbot")
	assert.Contains(t, step.Replies[1], model.UnknownDisplay)
}

func TestAgentTypeRecognition(t *testing.T) {
	step := Transition(AwaitAgentType{}, "ich baue einen CHATBOT")
	require.True(t, step.Recognized)
	next, ok := step.Next.(AwaitPriorities)
	require.True(t, ok)
	assert.Equal(t, model.AgentChatbot, next.AgentType)
	assert.Equal(t, 0, next.Priorities.Len())

	step = Transition(AwaitAgentType{}, "xyz")
	assert.False(t, step.Recognized)
	assert.Equal(t, AwaitAgentType{}, step.Next)
	assert.Equal(t, []string{agentTypeRetryText}, step.Replies)

	step = Transition(AwaitAgentType{}, "  ich weiß es nicht ")
	require.True(t, step.Recognized)
	assert.Equal(t, model.AgentUnknown, step.Next.Requirements().AgentType)
}

func TestPriorityToggleIsInvolution(t *testing.T) {
	var state State = AwaitPriorities{AgentType: model.AgentChatbot, Priorities: model.NewPrioritySet()}

	state = Transition(state, "rag").Next
	assert.True(t, state.Requirements().Priorities.Has(model.PriorityRAG))

	state = Transition(state, "rag").Next
	assert.Equal(t, 0, state.Requirements().Priorities.Len())

	state = Transition(state, "privacy und speed").Next
	before := state.Requirements().Priorities

	step := Transition(state, "weiter")
	require.IsType(t, AwaitExperience{}, step.Next)
	assert.True(t, before.Equal(step.Next.Requirements().Priorities))
	assert.Equal(t, []string{experiencePromptText}, step.Replies)
}

func TestPrioritiesRejectUnknownInput(t *testing.T) {
	state := AwaitPriorities{AgentType: model.AgentChatbot, Priorities: model.NewPrioritySet(model.PriorityTools)}

	step := Transition(state, "blockchain")
	assert.False(t, step.Recognized)
	assert.True(t, step.Next.Requirements().Priorities.Equal(state.Priorities))
}

func TestExactValueStates(t *testing.T) {
	exp := AwaitExperience{AgentType: model.AgentChatbot, Priorities: model.NewPrioritySet()}

	assert.False(t, Transition(exp, "ein bisschen").Recognized)

	step := Transition(exp, "Expert")
	require.IsType(t, AwaitLearning{}, step.Next)
	assert.Equal(t, model.ExperienceExpert, step.Next.Requirements().ExperienceLevel)

	step = Transition(step.Next, "simpel")
	assert.False(t, step.Recognized)
	step = Transition(step.Next, "simple")
	require.IsType(t, AwaitUseCase{}, step.Next)

	step = Transition(step.Next, "   ")
	assert.False(t, step.Recognized)
	assert.Equal(t, []string{useCaseRetryText}, step.Replies)

	step = Transition(step.Next, "Answer HR policy questions")
	confirm, ok := step.Next.(Confirm)
	require.True(t, ok)
	assert.Equal(t, "Answer HR policy questions", confirm.Req.UseCase)
	assert.True(t, confirm.Req.CanSubmit())
	assert.True(t, strings.HasSuffix(step.Replies[0], "Passt das so? (ja/nein)"))
}

func TestSummaryTruncatesLongUseCase(t *testing.T) {
	req := completeRequirements()
	req.UseCase = strings.Repeat("ä", 130)

	s := summary(req)
	assert.Contains(t, s, strings.Repeat("ä", 120)+"…")
	assert.NotContains(t, s, strings.Repeat("ä", 121))
}

func TestConfirm(t *testing.T) {
	c := Confirm{Req: completeRequirements()}

	step := Transition(c, "ja")
	assert.Equal(t, EffectFetchUseCases, step.Effect)
	assert.IsType(t, Running{}, step.Next)

	step = Transition(c, "nein")
	assert.Equal(t, EffectNone, step.Effect)
	assert.Equal(t, c, step.Next)
	assert.Equal(t, []string{confirmEditText}, step.Replies)

	step = Transition(c, "vielleicht")
	assert.False(t, step.Recognized)
	assert.Equal(t, c, step.Next)
}

func TestConfirmEditReturnsToConfirm(t *testing.T) {
	c := Confirm{Req: completeRequirements()}

	step := Transition(c, "level ändern")
	rev, ok := step.Next.(Revise)
	require.True(t, ok)
	assert.Equal(t, model.FieldExperienceLevel, rev.Field)
	assert.Equal(t, StateExperience, rev.Name())

	step = Transition(rev, "intermediate")
	back, ok := step.Next.(Confirm)
	require.True(t, ok)
	assert.Equal(t, model.ExperienceIntermediate, back.Req.ExperienceLevel)
	assert.Equal(t, c.Req.UseCase, back.Req.UseCase)
}

func TestRevisePrioritiesWaitsForDone(t *testing.T) {
	step := Transition(Confirm{Req: completeRequirements()}, "prio")
	require.IsType(t, Revise{}, step.Next)

	step = Transition(step.Next, "memory")
	require.IsType(t, Revise{}, step.Next)
	assert.True(t, step.Next.Requirements().Priorities.Has(model.PriorityMemory))

	step = Transition(step.Next, "fertig")
	require.IsType(t, Confirm{}, step.Next)
	set := step.Next.Requirements().Priorities
	assert.True(t, set.Has(model.PriorityRAG))
	assert.True(t, set.Has(model.PriorityMemory))
}

func TestResultsFollowUp(t *testing.T) {
	r := Results{Req: completeRequirements()}

	step := Transition(r, "ja bitte")
	assert.Equal(t, EffectFetchFrameworks, step.Effect)
	assert.Equal(t, r, step.Next)

	step = Transition(r, "nein danke")
	assert.Equal(t, EffectNone, step.Effect)
	assert.Equal(t, []string{farewellText}, step.Replies)

	step = Transition(r, "hmm")
	assert.False(t, step.Recognized)
}
