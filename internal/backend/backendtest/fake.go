// Package backendtest provides an in-memory backend.Client for tests.
package backendtest

import (
	"context"
	"sync"

	"agent-advisor/internal/model"
)

// Reply is one canned backend answer.
type Reply struct {
	Body []byte
	Err  error
}

// Fake answers from canned replies and records every request. When Gate is
// non-nil each call blocks until a value is received from it (or ctx ends).
type Fake struct {
	mu sync.Mutex

	UseCaseReply   Reply
	FrameworkReply Reply
	Gate           chan struct{}

	UseCaseCalls   []model.UseCaseRequest
	FrameworkCalls []model.FrameworkRequest
}

func (f *Fake) UseCases(ctx context.Context, req model.UseCaseRequest) ([]byte, error) {
	f.mu.Lock()
	f.UseCaseCalls = append(f.UseCaseCalls, req)
	reply := f.UseCaseReply
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return reply.Body, reply.Err
}

func (f *Fake) Frameworks(ctx context.Context, req model.FrameworkRequest) ([]byte, error) {
	f.mu.Lock()
	f.FrameworkCalls = append(f.FrameworkCalls, req)
	reply := f.FrameworkReply
	f.mu.Unlock()

	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	return reply.Body, reply.Err
}

func (f *Fake) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Fake) Calls() (useCases, frameworks int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.UseCaseCalls), len(f.FrameworkCalls)
}

func (f *Fake) LastFrameworkCall() (model.FrameworkRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.FrameworkCalls) == 0 {
		return model.FrameworkRequest{}, false
	}
	return f.FrameworkCalls[len(f.FrameworkCalls)-1], true
}
