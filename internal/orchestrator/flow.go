// Package orchestrator sequences the two backend calls of a recommendation:
// use-case matching first, framework scoring when use cases do not fit.
package orchestrator

import (
	"context"

	"agent-advisor/internal/backend"
	"agent-advisor/internal/model"
	"agent-advisor/internal/normalizer"
	"agent-advisor/pkg/logger"
)

type OutcomeKind string

const (
	OutcomeUseCases   OutcomeKind = "use_cases"
	OutcomeFrameworks OutcomeKind = "frameworks"
)

// Outcome is the result of one orchestration call. An empty candidate list
// is a valid outcome ("no recommendations"), never an error.
type Outcome struct {
	Kind       OutcomeKind
	UseCases   []model.UseCaseCandidate
	Frameworks []model.FrameworkCandidate
	// Chained is set when a use-case fetch fell through to frameworks.
	Chained bool
}

func (o Outcome) Empty() bool {
	if o.Kind == OutcomeUseCases {
		return len(o.UseCases) == 0
	}
	return len(o.Frameworks) == 0
}

// MetricKind labels the outcome for metrics.
func (o Outcome) MetricKind() string {
	if o.Empty() {
		return "empty"
	}
	return string(o.Kind)
}

// Payload renders the outcome for a chat message, keeping at most limit
// candidates (limit <= 0 keeps all).
func (o Outcome) Payload(limit int) *model.ResultPayload {
	if o.Kind == OutcomeUseCases {
		return &model.ResultPayload{Kind: model.ResultUseCases, UseCases: model.LimitUseCases(o.UseCases, limit)}
	}
	return &model.ResultPayload{Kind: model.ResultFrameworks, Frameworks: model.LimitFrameworks(o.Frameworks, limit)}
}

// Flow is stateless; callers guarantee that at most one call per session is
// in flight.
type Flow struct {
	client backend.Client
}

func NewFlow(client backend.Client) *Flow {
	return &Flow{client: client}
}

// FetchUseCases asks for catalog use cases and falls through to a forced
// framework fetch when none fit.
func (f *Flow) FetchUseCases(ctx context.Context, req model.Requirements) (Outcome, error) {
	body, err := f.client.UseCases(ctx, req.UseCaseRequest())
	if err != nil {
		return Outcome{}, err
	}

	useCases := normalizer.UseCases(body)
	suggest := normalizer.SuggestShowFrameworks(body)
	if len(useCases) > 0 && !suggest {
		return Outcome{Kind: OutcomeUseCases, UseCases: useCases}, nil
	}

	logger.Debugf("use-case match weak (candidates=%d, suggest_show_frameworks=%v), falling through to frameworks",
		len(useCases), suggest)
	out, err := f.FetchFrameworks(ctx, req, true)
	out.Chained = true
	return out, err
}

func (f *Flow) FetchFrameworks(ctx context.Context, req model.Requirements, forced bool) (Outcome, error) {
	body, err := f.client.Frameworks(ctx, req.FrameworkRequest(forced))
	if err != nil {
		return Outcome{}, err
	}
	if msg := normalizer.EmbeddedError(body); msg != "" {
		logger.Warnf("framework backend reported an error inside its answer: %s", msg)
	}
	return Outcome{Kind: OutcomeFrameworks, Frameworks: normalizer.Frameworks(body)}, nil
}
