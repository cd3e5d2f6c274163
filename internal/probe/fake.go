package probe

import (
	"context"
	"sync"
	"time"

	"veracity/internal/model"
)

// FakeExecutor serves pre-configured probe output without touching the
// system. Used by orchestrator and pipeline tests.
type FakeExecutor struct {
	mu       sync.Mutex
	outputs  map[string]string // probe id -> raw output
	failures map[string]bool   // probe id -> force failure
	calls    [][]string        // recorded Execute calls
}

// NewFakeExecutor creates an empty fake.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{
		outputs:  make(map[string]string),
		failures: make(map[string]bool),
	}
}

// SetOutput configures the raw output for a probe id.
func (f *FakeExecutor) SetOutput(id, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[id] = raw
}

// SetFailure marks a probe id as failing.
func (f *FakeExecutor) SetFailure(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[id] = true
	if _, ok := f.outputs[id]; !ok {
		f.outputs[id] = "probe failed"
	}
}

// Calls returns recorded Execute invocations.
func (f *FakeExecutor) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([][]string, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// IsValid reports whether the fake knows the probe id.
func (f *FakeExecutor) IsValid(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.outputs[id]
	return ok
}

// Available returns configured probe ids.
func (f *FakeExecutor) Available() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.outputs))
	for id := range f.outputs {
		ids = append(ids, id)
	}
	return ids
}

// Execute serves configured outputs for the requested ids.
func (f *FakeExecutor) Execute(ctx context.Context, ids []string) []model.ProbeEvidence {
	f.mu.Lock()
	defer f.mu.Unlock()

	recorded := make([]string, len(ids))
	copy(recorded, ids)
	f.calls = append(f.calls, recorded)

	var evidence []model.ProbeEvidence
	for _, id := range ids {
		raw, ok := f.outputs[id]
		if !ok {
			continue
		}
		evidence = append(evidence, model.ProbeEvidence{
			ProbeID:   id,
			Raw:       raw,
			Succeeded: !f.failures[id],
			Timestamp: time.Now().UTC(),
		})
	}
	return evidence
}
