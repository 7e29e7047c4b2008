// Package form implements the fixed-order requirements form and its result
// phases.
package form

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

type Phase string

const (
	PhaseForm       Phase = "form"
	PhaseBosch      Phase = "bosch"
	PhaseSelected   Phase = "selectedUseCase"
	PhaseFrameworks Phase = "frameworks"
)

var (
	ErrBusy              = errors.New("a request is already in progress")
	ErrInvalidTransition = errors.New("action not allowed in current phase")
	ErrIndexOutOfRange   = errors.New("use case index out of range")
	ErrInvalidSnapshot   = errors.New("invalid form snapshot")
)

type Orchestrator interface {
	FetchUseCases(ctx context.Context, req model.Requirements) (orchestrator.Outcome, error)
	FetchFrameworks(ctx context.Context, req model.Requirements, forced bool) (orchestrator.Outcome, error)
}

// Controller is the form interface of one session. Input fields and result
// data are independent: Reset clears results and keeps what the user typed.
type Controller struct {
	mu      sync.Mutex
	flow    Orchestrator
	metrics *metrics.Recorder

	req        model.Requirements
	submitted  *model.Requirements
	phase      Phase
	loading    bool
	errMsg     string
	useCases   []model.UseCaseCandidate
	selected   int
	frameworks []model.FrameworkCandidate
	generation uint64
}

func NewController(flow Orchestrator, rec *metrics.Recorder) *Controller {
	return &Controller{
		flow:     flow,
		metrics:  rec,
		req:      model.Requirements{Priorities: model.NewPrioritySet()},
		phase:    PhaseForm,
		selected: -1,
	}
}

func (c *Controller) SetField(field model.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if field == model.FieldPriorities {
		return fmt.Errorf("%w: priorities are toggled, not set", model.ErrInvalidField)
	}
	req, err := c.req.WithField(field, value)
	if err != nil {
		return err
	}
	c.req = req
	return nil
}

func (c *Controller) TogglePriority(tag model.Priority) error {
	if !tag.Valid() {
		return fmt.Errorf("%w: priority %q", model.ErrInvalidValue, tag)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.req = c.req.TogglePriority(tag)
	return nil
}

func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req.CanSubmit()
}

// Submit runs the use-case match for the current fields. It is only allowed
// from the input phase, and returns nil without calling the backend when
// required fields are missing.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.phase != PhaseForm {
		phase := c.phase
		c.mu.Unlock()
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, phase)
	}
	if !c.req.CanSubmit() {
		c.mu.Unlock()
		logger.Debugf("form: submit ignored, missing fields %v", c.req.Missing())
		return nil
	}
	req := c.req
	gen := c.begin()
	c.mu.Unlock()

	out, err := c.flow.FetchUseCases(context.WithoutCancel(ctx), req)
	c.finish(gen, req, out, err)
	return nil
}

// ShowFrameworks declines the offered use cases and asks for framework
// recommendations with the submitted fields.
func (c *Controller) ShowFrameworks(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.phase != PhaseBosch && c.phase != PhaseSelected {
		phase := c.phase
		c.mu.Unlock()
		return fmt.Errorf("%w: show frameworks from %s", ErrInvalidTransition, phase)
	}
	req := c.req
	if c.submitted != nil {
		req = *c.submitted
	}
	gen := c.begin()
	c.mu.Unlock()

	out, err := c.flow.FetchFrameworks(context.WithoutCancel(ctx), req, true)
	c.finish(gen, req, out, err)
	return nil
}

// begin marks the controller loading and returns the generation the call
// belongs to. Caller holds c.mu.
func (c *Controller) begin() uint64 {
	c.loading = true
	c.errMsg = ""
	return c.generation
}

func (c *Controller) finish(gen uint64, req model.Requirements, out orchestrator.Outcome, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		logger.Infof("form: discarding result of a call started before reset (generation %d, now %d)", gen, c.generation)
		return
	}
	c.loading = false
	c.selected = -1

	if err != nil {
		c.errMsg = backend.UserMessage(err)
		c.phase = PhaseForm
		c.metrics.Outcome("error", "form")
		logger.Warnf("form: orchestration failed: %v", err)
		return
	}

	c.metrics.Outcome(out.MetricKind(), "form")
	c.submitted = &req
	switch out.Kind {
	case orchestrator.OutcomeUseCases:
		c.useCases = out.UseCases
		c.frameworks = nil
		c.phase = PhaseBosch
	default:
		c.frameworks = out.Frameworks
		c.phase = PhaseFrameworks
	}
}

func (c *Controller) SelectUseCase(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseBosch {
		return fmt.Errorf("%w: select use case from %s", ErrInvalidTransition, c.phase)
	}
	if i < 0 || i >= len(c.useCases) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(c.useCases))
	}
	c.selected = i
	c.phase = PhaseSelected
	return nil
}

func (c *Controller) BackToUseCases() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseSelected {
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, c.phase)
	}
	c.selected = -1
	c.phase = PhaseBosch
	return nil
}

// Reset returns to the input phase and drops all result data. A call still
// in flight completes, but its result is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.phase = PhaseForm
	c.loading = false
	c.errMsg = ""
	c.useCases = nil
	c.selected = -1
	c.frameworks = nil
	c.submitted = nil
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// View renders the current state. Missing lists the fields a submit still
// needs.
func (c *Controller) View() model.FormView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := model.FormView{
		Phase:        string(c.phase),
		Loading:      c.loading,
		Error:        c.errMsg,
		Requirements: c.req,
		CanSubmit:    c.req.CanSubmit(),
		Missing:      c.req.Missing(),
		UseCases:     c.useCases,
		Frameworks:   c.frameworks,
	}
	if c.phase == PhaseSelected && c.selected >= 0 && c.selected < len(c.useCases) {
		sel := c.useCases[c.selected]
		v.Selected = &sel
	}
	v.NoResults = c.phase == PhaseFrameworks && len(c.frameworks) == 0
	return v
}

func (c *Controller) Snapshot() model.FormSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := model.FormSnapshot{
		Phase:        string(c.phase),
		Requirements: c.req,
		Error:        c.errMsg,
		UseCases:     c.useCases,
		Selected:     c.selected,
		Frameworks:   c.frameworks,
	}
	if c.submitted != nil {
		sub := *c.submitted
		snap.Submitted = &sub
	}
	return snap
}

// Restore replaces the controller state with snap. A call that was in
// flight when snap was taken is not resumed.
func (c *Controller) Restore(snap model.FormSnapshot) error {
	phase := Phase(snap.Phase)
	switch phase {
	case PhaseForm, PhaseBosch, PhaseFrameworks:
	case PhaseSelected:
		if snap.Selected < 0 || snap.Selected >= len(snap.UseCases) {
			return fmt.Errorf("%w: selected index %d of %d", ErrInvalidSnapshot, snap.Selected, len(snap.UseCases))
		}
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidSnapshot, snap.Phase)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.loading = false
	c.phase = phase
	c.req = snap.Requirements
	if c.req.Priorities.Len() == 0 {
		c.req.Priorities = model.NewPrioritySet()
	}
	c.submitted = snap.Submitted
	c.errMsg = snap.Error
	c.useCases = snap.UseCases
	c.selected = snap.Selected
	if phase != PhaseSelected {
		c.selected = -1
	}
	c.frameworks = snap.Frameworks
	return nil
}
