package chat

import (
	"strings"

	"agent-advisor/internal/matcher"
	"agent-advisor/internal/model"
)

type Effect int

const (
	EffectNone Effect = iota
	EffectFetchUseCases
	EffectFetchFrameworks
)

// Step is the result of interpreting one user message.
type Step struct {
	Next    State
	Replies []string
	Effect  Effect
	// Recognized is false when the input was rejected and the state kept.
	Recognized bool
}

func advance(next State, replies ...string) Step {
	return Step{Next: next, Replies: replies, Recognized: true}
}

func reprompt(current State, reply string) Step {
	return Step{Next: current, Replies: []string{reply}}
}

// Transition interprets input in the context of state. It has no side
// effects; backend calls are requested through Step.Effect.
func Transition(state State, input string) Step {
	switch s := state.(type) {
	case Intro:
		return advance(AwaitAgentType{}, greetingText, agentTypePrompt())

	case AwaitAgentType:
		t, ok := matcher.AgentType(input)
		if !ok {
			return reprompt(s, agentTypeRetryText)
		}
		return advance(AwaitPriorities{AgentType: t, Priorities: model.NewPrioritySet()}, prioritiesPrompt(t))

	case AwaitPriorities:
		if matcher.IsDone(input) {
			return advance(AwaitExperience{AgentType: s.AgentType, Priorities: s.Priorities}, experiencePromptText)
		}
		set, ok := togglePriorities(s.Priorities, input)
		if !ok {
			return reprompt(s, prioritiesRetryText)
		}
		return advance(AwaitPriorities{AgentType: s.AgentType, Priorities: set}, prioritiesAck(set))

	case AwaitExperience:
		e, ok := matcher.Experience(input)
		if !ok {
			return reprompt(s, experienceRetryText)
		}
		return advance(AwaitLearning{AgentType: s.AgentType, Priorities: s.Priorities, Experience: e}, learningPromptText)

	case AwaitLearning:
		l, ok := matcher.Learning(input)
		if !ok {
			return reprompt(s, learningRetryText)
		}
		return advance(AwaitUseCase{
			AgentType:  s.AgentType,
			Priorities: s.Priorities,
			Experience: s.Experience,
			Learning:   l,
		}, useCasePromptText)

	case AwaitUseCase:
		if strings.TrimSpace(input) == "" {
			return reprompt(s, useCaseRetryText)
		}
		req := s.Requirements()
		req.UseCase = input
		return advance(Confirm{Req: req}, summary(req))

	case Confirm:
		return confirm(s, input)

	case Revise:
		return revise(s, input)

	case Running:
		return Step{Next: s, Replies: []string{busyText}, Recognized: true}

	case Results:
		switch {
		case matcher.HasAffirmativePrefix(input):
			return Step{Next: s, Replies: []string{fetchFrameworkText}, Effect: EffectFetchFrameworks, Recognized: true}
		case matcher.HasNegativePrefix(input):
			return advance(s, farewellText)
		default:
			return reprompt(s, resultsRetryText)
		}
	}
	return advance(AwaitAgentType{}, agentTypePrompt())
}

func confirm(s Confirm, input string) Step {
	switch {
	case matcher.IsAffirmative(input):
		return Step{Next: Running{Req: s.Req}, Replies: []string{runningText}, Effect: EffectFetchUseCases, Recognized: true}
	case matcher.IsNegative(input):
		return advance(s, confirmEditText)
	}
	if field, ok := matcher.EditTarget(input); ok {
		return advance(Revise{Field: field, Req: s.Req}, fieldPrompt(field, s.Req))
	}
	return reprompt(s, confirmRetryText)
}

// revise re-collects one field and returns to Confirm once it is set.
// Priorities stay in Revise until a done token, like the linear flow.
func revise(s Revise, input string) Step {
	req := s.Req
	switch s.Field {
	case model.FieldAgentType:
		t, ok := matcher.AgentType(input)
		if !ok {
			return reprompt(s, agentTypeRetryText)
		}
		req.AgentType = t
	case model.FieldPriorities:
		if matcher.IsDone(input) {
			break
		}
		set, ok := togglePriorities(req.Priorities, input)
		if !ok {
			return reprompt(s, prioritiesRetryText)
		}
		req.Priorities = set
		return advance(Revise{Field: s.Field, Req: req}, prioritiesAck(set))
	case model.FieldExperienceLevel:
		e, ok := matcher.Experience(input)
		if !ok {
			return reprompt(s, experienceRetryText)
		}
		req.ExperienceLevel = e
	case model.FieldLearningPreference:
		l, ok := matcher.Learning(input)
		if !ok {
			return reprompt(s, learningRetryText)
		}
		req.LearningPreference = l
	case model.FieldUseCase:
		if strings.TrimSpace(input) == "" {
			return reprompt(s, useCaseRetryText)
		}
		req.UseCase = input
	}
	return advance(Confirm{Req: req}, summary(req))
}

func togglePriorities(set model.PrioritySet, input string) (model.PrioritySet, bool) {
	tags := matcher.Priorities(input)
	if len(tags) == 0 {
		return set, false
	}
	for _, p := range tags {
		set = set.Toggle(p)
	}
	return set, true
}
