package probe

import (
	"context"
	"os/exec"
	"sort"
	"time"

	"veracity/internal/model"
	"veracity/internal/worker"
)

// Executor runs catalog probes and returns their evidence. Implementations
// must treat each probe as independent: one failure never aborts siblings.
type Executor interface {
	Execute(ctx context.Context, ids []string) []model.ProbeEvidence
	IsValid(id string) bool
	Available() []string
}

// ExecExecutor runs real commands with a per-probe timeout, concurrently
// through a worker pool. Probes share no mutable state.
type ExecExecutor struct {
	catalog       *Catalog
	probeTimeout  time.Duration
	maxConcurrent int
}

// NewExecExecutor creates an executor over the given catalog.
func NewExecExecutor(catalog *Catalog, probeTimeout time.Duration, maxConcurrent int) *ExecExecutor {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &ExecExecutor{
		catalog:       catalog,
		probeTimeout:  probeTimeout,
		maxConcurrent: maxConcurrent,
	}
}

// IsValid reports whether id is in the catalog.
func (e *ExecExecutor) IsValid(id string) bool { return e.catalog.IsValid(id) }

// Available lists catalog probe ids.
func (e *ExecExecutor) Available() []string { return e.catalog.Available() }

type probeJob struct {
	spec    Spec
	timeout time.Duration
}

type probeResult struct {
	evidence model.ProbeEvidence
}

func (r probeResult) GetError() error { return nil }

func (j probeJob) Execute(ctx context.Context) worker.Result {
	probeCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, j.spec.Binary, j.spec.Args...).CombinedOutput()
	evidence := model.ProbeEvidence{
		ProbeID:   j.spec.ID,
		Raw:       string(out),
		Succeeded: err == nil,
		Timestamp: time.Now().UTC(),
	}
	if err != nil && evidence.Raw == "" {
		evidence.Raw = err.Error()
	}
	return probeResult{evidence: evidence}
}

// Execute runs the requested probes. Unknown ids must be filtered by the
// caller; ids present here are assumed valid. Results come back in probe-id
// order regardless of completion order.
func (e *ExecExecutor) Execute(ctx context.Context, ids []string) []model.ProbeEvidence {
	if len(ids) == 0 {
		return nil
	}

	pool := worker.NewPool(ctx, e.maxConcurrent)
	pool.Start()
	for _, id := range ids {
		spec, ok := e.catalog.Spec(id)
		if !ok {
			continue
		}
		pool.Submit(probeJob{spec: spec, timeout: e.probeTimeout})
	}

	results := pool.Wait()
	evidence := make([]model.ProbeEvidence, 0, len(results))
	for _, r := range results {
		evidence = append(evidence, r.(probeResult).evidence)
	}
	sort.Slice(evidence, func(i, j int) bool {
		return evidence[i].ProbeID < evidence[j].ProbeID
	})
	return evidence
}
