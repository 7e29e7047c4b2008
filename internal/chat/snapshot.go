package chat

import (
	"fmt"

	"agent-advisor/internal/model"
	"agent-advisor/internal/orchestrator"
)

// Snapshot captures the controller for persistence. The busy flag is not
// part of it: a snapshot taken mid-call records the Running state.
func (c *Controller) Snapshot() model.ChatSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := model.ChatSnapshot{
		State:        string(c.state.Name()),
		Requirements: c.state.Requirements(),
		Messages:     c.log.Messages(),
	}
	switch s := c.state.(type) {
	case Revise:
		snap.Revising = s.Field
	case Results:
		snap.Error = s.Err
		if s.Outcome != nil {
			snap.Result = s.Outcome.Payload(0)
		}
	}
	return snap
}

// Restore replaces the controller's state with snap. A session saved while a
// call was running comes back in Confirm, since the call did not survive.
func (c *Controller) Restore(snap model.ChatSnapshot) error {
	state, err := stateFromSnapshot(snap)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.busy = false
	c.state = state
	c.log.Reset()
	for _, m := range snap.Messages {
		c.log.Append(m)
	}
	return nil
}

func stateFromSnapshot(snap model.ChatSnapshot) (State, error) {
	req := snap.Requirements
	if req.Priorities.Len() == 0 {
		req.Priorities = model.NewPrioritySet()
	}

	name := StateName(snap.State)
	if snap.Revising != "" {
		if _, ok := fieldState[snap.Revising]; !ok {
			return nil, fmt.Errorf("%w: unknown revising field %q", ErrInvalidSnapshot, snap.Revising)
		}
		return Revise{Field: snap.Revising, Req: req}, nil
	}

	switch name {
	case StateIntro:
		return Intro{}, nil
	case StateAgentType:
		return AwaitAgentType{}, nil
	case StatePriorities:
		return AwaitPriorities{AgentType: req.AgentType, Priorities: req.Priorities}, nil
	case StateExperience:
		return AwaitExperience{AgentType: req.AgentType, Priorities: req.Priorities}, nil
	case StateLearning:
		return AwaitLearning{AgentType: req.AgentType, Priorities: req.Priorities, Experience: req.ExperienceLevel}, nil
	case StateUseCase:
		return AwaitUseCase{
			AgentType:  req.AgentType,
			Priorities: req.Priorities,
			Experience: req.ExperienceLevel,
			Learning:   req.LearningPreference,
		}, nil
	case StateConfirm, StateRunning:
		return Confirm{Req: req}, nil
	case StateResults:
		res := Results{Req: req, Err: snap.Error}
		if snap.Result != nil {
			res.Outcome = outcomeFromPayload(snap.Result)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidSnapshot, snap.State)
}

func outcomeFromPayload(p *model.ResultPayload) *orchestrator.Outcome {
	if p.Kind == model.ResultUseCases {
		return &orchestrator.Outcome{Kind: orchestrator.OutcomeUseCases, UseCases: p.UseCases}
	}
	return &orchestrator.Outcome{Kind: orchestrator.OutcomeFrameworks, Frameworks: p.Frameworks}
}
