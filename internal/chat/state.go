package chat

import (
	"agent-advisor/internal/model"
	"agent-advisor/internal/orchestrator"
)

type StateName string

const (
	StateIntro      StateName = "intro"
	StateAgentType  StateName = "agentType"
	StatePriorities StateName = "priorities"
	StateExperience StateName = "experience"
	StateLearning   StateName = "learning"
	StateUseCase    StateName = "useCase"
	StateConfirm    StateName = "confirm"
	StateRunning    StateName = "running"
	StateResults    StateName = "results"
)

// State is one of the wizard's states. Each variant carries exactly the data
// collected so far, so a state can never lack a field an earlier step set.
type State interface {
	Name() StateName
	// Requirements returns the fields collected so far.
	Requirements() model.Requirements
	isState()
}

type Intro struct{}

type AwaitAgentType struct{}

type AwaitPriorities struct {
	AgentType  model.AgentType
	Priorities model.PrioritySet
}

type AwaitExperience struct {
	AgentType  model.AgentType
	Priorities model.PrioritySet
}

type AwaitLearning struct {
	AgentType  model.AgentType
	Priorities model.PrioritySet
	Experience model.ExperienceLevel
}

type AwaitUseCase struct {
	AgentType  model.AgentType
	Priorities model.PrioritySet
	Experience model.ExperienceLevel
	Learning   model.LearningPreference
}

// Confirm holds a complete record waiting for the user's go.
type Confirm struct {
	Req model.Requirements
}

// Revise re-collects a single field of a complete record after a "change X"
// instruction in Confirm. It reports the name of the collection state for
// that field.
type Revise struct {
	Field model.Field
	Req   model.Requirements
}

type Running struct {
	Req model.Requirements
}

// Results is terminal until reset. Outcome is nil when the last call failed.
type Results struct {
	Req     model.Requirements
	Outcome *orchestrator.Outcome
	Err     string
}

func (Intro) Name() StateName           { return StateIntro }
func (AwaitAgentType) Name() StateName  { return StateAgentType }
func (AwaitPriorities) Name() StateName { return StatePriorities }
func (AwaitExperience) Name() StateName { return StateExperience }
func (AwaitLearning) Name() StateName   { return StateLearning }
func (AwaitUseCase) Name() StateName    { return StateUseCase }
func (Confirm) Name() StateName         { return StateConfirm }
func (r Revise) Name() StateName        { return fieldState[r.Field] }
func (Running) Name() StateName         { return StateRunning }
func (Results) Name() StateName         { return StateResults }

func (Intro) Requirements() model.Requirements          { return model.Requirements{} }
func (AwaitAgentType) Requirements() model.Requirements { return model.Requirements{} }

func (s AwaitPriorities) Requirements() model.Requirements {
	return model.Requirements{AgentType: s.AgentType, Priorities: s.Priorities}
}

func (s AwaitExperience) Requirements() model.Requirements {
	return model.Requirements{AgentType: s.AgentType, Priorities: s.Priorities}
}

func (s AwaitLearning) Requirements() model.Requirements {
	return model.Requirements{AgentType: s.AgentType, Priorities: s.Priorities, ExperienceLevel: s.Experience}
}

func (s AwaitUseCase) Requirements() model.Requirements {
	return model.Requirements{
		AgentType:          s.AgentType,
		Priorities:         s.Priorities,
		ExperienceLevel:    s.Experience,
		LearningPreference: s.Learning,
	}
}

func (s Confirm) Requirements() model.Requirements { return s.Req }
func (s Revise) Requirements() model.Requirements  { return s.Req }
func (s Running) Requirements() model.Requirements { return s.Req }
func (s Results) Requirements() model.Requirements { return s.Req }

func (Intro) isState()           {}
func (AwaitAgentType) isState()  {}
func (AwaitPriorities) isState() {}
func (AwaitExperience) isState() {}
func (AwaitLearning) isState()   {}
func (AwaitUseCase) isState()    {}
func (Confirm) isState()         {}
func (Revise) isState()          {}
func (Running) isState()         {}
func (Results) isState()         {}

var fieldState = map[model.Field]StateName{
	model.FieldAgentType:          StateAgentType,
	model.FieldPriorities:         StatePriorities,
	model.FieldExperienceLevel:    StateExperience,
	model.FieldLearningPreference: StateLearning,
	model.FieldUseCase:            StateUseCase,
}
