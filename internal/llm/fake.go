package llm

import (
	"context"
	"fmt"
	"sync"
)

// FakeProvider returns scripted replies in order. Used by orchestrator and
// pipeline tests to exercise the reasoning loop without a backend.
type FakeProvider struct {
	mu        sync.Mutex
	replies   []map[string]any
	errs      []error
	calls     []CallRequest
	available bool
}

// NewFakeProvider creates a fake that reports itself available
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{available: true}
}

// QueueReply appends a scripted successful reply
func (f *FakeProvider) QueueReply(reply map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply)
	f.errs = append(f.errs, nil)
}

// QueueError appends a scripted failure
func (f *FakeProvider) QueueError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, nil)
	f.errs = append(f.errs, err)
}

// SetAvailable controls the IsAvailable result
func (f *FakeProvider) SetAvailable(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available = v
}

// Calls returns the recorded call requests
func (f *FakeProvider) Calls() []CallRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]CallRequest, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// Name returns the provider name
func (f *FakeProvider) Name() string { return "fake" }

// IsAvailable reports the configured availability
func (f *FakeProvider) IsAvailable(_ context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

// Call pops the next scripted reply
func (f *FakeProvider) Call(ctx context.Context, req CallRequest) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)

	if len(f.replies) == 0 {
		return nil, fmt.Errorf("fake provider: no scripted reply for call %d", len(f.calls))
	}
	reply, err := f.replies[0], f.errs[0]
	f.replies = f.replies[1:]
	f.errs = f.errs[1:]
	if err != nil {
		return nil, err
	}
	return reply, nil
}
