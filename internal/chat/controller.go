// Package chat implements the conversational requirements wizard.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"agent-advisor/internal/backend"
	"agent-advisor/internal/metrics"
	"agent-advisor/internal/model"
	"agent-advisor/internal/orchestrator"
	"agent-advisor/pkg/logger"
)

// Orchestrator runs the backend call sequence.
type Orchestrator interface {
	FetchUseCases(ctx context.Context, req model.Requirements) (orchestrator.Outcome, error)
	FetchFrameworks(ctx context.Context, req model.Requirements, forced bool) (orchestrator.Outcome, error)
}

var ErrInvalidSnapshot = errors.New("invalid chat snapshot")

// Controller owns one session's chat state and transcript. Messages are
// processed one at a time; while a backend call is in flight further input is
// logged and answered with a wait notice instead of being interpreted.
type Controller struct {
	mu         sync.Mutex
	flow       Orchestrator
	metrics    *metrics.Recorder
	state      State
	log        Log
	busy       bool
	generation uint64
}

func NewController(flow Orchestrator, rec *metrics.Recorder) *Controller {
	return &Controller{
		flow:    flow,
		metrics: rec,
		state:   Intro{},
	}
}

// Start greets the user and asks for the agent type. It does nothing unless
// the conversation is still in its intro state.
func (c *Controller) Start() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.state.(Intro); !ok {
		return nil
	}
	step := Transition(c.state, "")
	c.state = step.Next
	return c.appendReplies(step.Replies)
}

// Send processes one user message and returns the messages this turn added.
func (c *Controller) Send(ctx context.Context, text string) []model.ChatMessage {
	var turn []model.ChatMessage
	c.SendFunc(ctx, text, func(m model.ChatMessage) { turn = append(turn, m) })
	return turn
}

// SendFunc is Send with incremental delivery: emit is called for every
// message of the turn as soon as it exists, so the wait notice reaches the
// caller before the backend answers. emit is never called with c.mu held.
func (c *Controller) SendFunc(ctx context.Context, text string, emit func(model.ChatMessage)) {
	if emit == nil {
		emit = func(model.ChatMessage) {}
	}

	c.mu.Lock()
	user := model.NewUserMessage(text)
	c.log.Append(user)
	turn := []model.ChatMessage{user}

	if c.busy {
		turn = append(turn, c.appendAssistant(busyText, nil))
		c.mu.Unlock()
		deliver(turn, emit)
		return
	}

	from := c.state.Name()
	step := Transition(c.state, text)
	if !step.Recognized {
		c.metrics.Reprompt(string(from))
	}
	c.state = step.Next
	turn = append(turn, c.appendReplies(step.Replies)...)

	if step.Effect == EffectNone {
		c.mu.Unlock()
		deliver(turn, emit)
		return
	}

	c.busy = true
	gen := c.generation
	req := step.Next.Requirements()
	c.mu.Unlock()
	deliver(turn, emit)

	// The call is not cancelled with the request that triggered it.
	callCtx := context.WithoutCancel(ctx)
	var (
		out orchestrator.Outcome
		err error
	)
	switch step.Effect {
	case EffectFetchUseCases:
		out, err = c.flow.FetchUseCases(callCtx, req)
	case EffectFetchFrameworks:
		out, err = c.flow.FetchFrameworks(callCtx, req, true)
	}

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		logger.Infof("chat: discarding result of a call started before reset (generation %d, now %d)", gen, c.generation)
		return
	}
	c.busy = false
	results := c.applyOutcome(req, out, err)
	c.mu.Unlock()
	deliver(results, emit)
}

func deliver(msgs []model.ChatMessage, emit func(model.ChatMessage)) {
	for _, m := range msgs {
		emit(m)
	}
}

// applyOutcome moves to Results and appends the result message and its
// follow-up question. Caller holds c.mu.
func (c *Controller) applyOutcome(req model.Requirements, out orchestrator.Outcome, err error) []model.ChatMessage {
	if err != nil {
		msg := backend.UserMessage(err)
		logger.Warnf("chat: orchestration failed: %v", err)
		c.metrics.Outcome("error", "chat")
		c.state = Results{Req: req, Err: msg}
		return []model.ChatMessage{
			c.appendAssistant(fmt.Sprintf("Bei der Anfrage ist ein Fehler aufgetreten: %s", msg), nil),
			c.appendAssistant(errorFollowUp, nil),
		}
	}

	c.metrics.Outcome(out.MetricKind(), "chat")
	c.state = Results{Req: req, Outcome: &out}

	followUp := frameworksFollowUp
	if out.Kind == orchestrator.OutcomeUseCases {
		followUp = useCasesFollowUp
	}
	if out.Empty() {
		return []model.ChatMessage{
			c.appendAssistant(noResultsText, nil),
			c.appendAssistant(followUp, nil),
		}
	}

	text := frameworksFoundText
	if out.Kind == orchestrator.OutcomeUseCases {
		text = useCasesFoundText
	}
	return []model.ChatMessage{
		c.appendAssistant(text, out.Payload(model.ChatCandidateLimit)),
		c.appendAssistant(followUp, nil),
	}
}

func (c *Controller) appendAssistant(content string, result *model.ResultPayload) model.ChatMessage {
	m := model.NewAssistantMessage(content, result)
	c.log.Append(m)
	return m
}

func (c *Controller) appendReplies(replies []string) []model.ChatMessage {
	out := make([]model.ChatMessage, 0, len(replies))
	for _, r := range replies {
		out = append(out, c.appendAssistant(r, nil))
	}
	return out
}

// Reset discards the conversation and starts over. A call still in flight
// completes, but its result is dropped.
func (c *Controller) Reset() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.busy = false
	c.log.Reset()
	c.state = Intro{}

	step := Transition(c.state, "")
	c.state = step.Next
	return c.appendReplies(step.Replies)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Messages()
}
