// Package pipeline assembles the full decision path for one question:
// fast path first, then the reasoning loop, then post-hoc grounding and
// validation of whatever text came out.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"veracity/internal/facts"
	"veracity/internal/fastpath"
	"veracity/internal/grounding"
	"veracity/internal/llm"
	"veracity/internal/model"
	"veracity/internal/orchestrator"
	"veracity/internal/probe"
	"veracity/internal/snapshot"
	"veracity/internal/validate"
	"veracity/internal/worker"
)

// Engine is the top-level entry point. Ask never returns an error: every
// failure mode becomes a refusal or degraded answer with trace data.
type Engine struct {
	cfg       *model.Config
	client    *llm.Client
	executor  probe.Executor
	catalog   *probe.Catalog
	snapshots *snapshot.Store
	refresher *snapshot.Refresher
	validator *validate.Validator
	facts     *facts.Store
	logger    *log.Logger
}

// NewEngine wires an engine from configuration. A missing facts file is not
// an error; an unusable LLM provider is, since the reasoning loop needs one.
func NewEngine(cfg *model.Config, logger *log.Logger) (*Engine, error) {
	if logger == nil {
		logger = log.Default()
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	limiter := worker.NewLimiter(cfg.LLM.CallsPerSecond, cfg.LLM.Burst)
	client := llm.NewClient(provider, limiter, cfg.LLM)

	catalog := probe.StandardCatalog()
	executor := probe.NewExecExecutor(catalog,
		time.Duration(cfg.Probes.TimeoutSeconds)*time.Second,
		cfg.Probes.MaxConcurrent)

	dir := cfg.Snapshot.Dir
	if dir == "" {
		dir = snapshot.DefaultDir()
	}
	store := snapshot.NewStore(dir, time.Duration(cfg.Snapshot.CacheTTLSeconds)*time.Second)

	var factStore *facts.Store
	if cfg.Facts.Path != "" {
		factStore, err = facts.Load(cfg.Facts.Path)
		if err != nil {
			logger.Printf("facts file %s unusable: %v", cfg.Facts.Path, err)
			factStore = nil
		}
	}

	return &Engine{
		cfg:       cfg,
		client:    client,
		executor:  executor,
		catalog:   catalog,
		snapshots: store,
		refresher: snapshot.NewRefresher(store, executor),
		validator: validate.NewValidator(),
		facts:     factStore,
		logger:    logger,
	}, nil
}

// newEngineWith wires an engine from pre-built collaborators, for tests.
func newEngineWith(cfg *model.Config, client *llm.Client, executor probe.Executor, store *snapshot.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		cfg:       cfg,
		client:    client,
		executor:  executor,
		catalog:   probe.StandardCatalog(),
		snapshots: store,
		validator: validate.NewValidator(),
		logger:    logger,
	}
}

// RefreshSnapshot captures and persists a fresh system snapshot.
func (e *Engine) RefreshSnapshot(ctx context.Context) (*model.SystemSnapshot, error) {
	if e.refresher == nil {
		e.refresher = snapshot.NewRefresher(e.snapshots, e.executor)
	}
	return e.refresher.Refresh(ctx)
}

// Ask answers one question. The fast path is tried first; on decline or
// insufficient reliability the reasoning loop takes over, and its output
// is grounded and validated before release.
func (e *Engine) Ask(ctx context.Context, question string) *model.FinalAnswer {
	start := time.Now()

	fpStart := time.Now()
	fp := fastpath.TryAnswer(question, nil, e.snapshots, e.cfg.FastPath)
	fpMs := time.Since(fpStart).Milliseconds()

	if fp.Handled && fp.Reliability >= e.cfg.FastPath.MinReliability {
		return &model.FinalAnswer{
			Question:    question,
			Answer:      fp.Text,
			Evidence:    fp.Evidence,
			Reliability: fp.Reliability,
			Level:       model.ConfidenceFromScore(float64(fp.Reliability) / 100),
			Source:      "fastpath",
			TraceNote:   fp.TraceNote,
			ProbesRun:   fp.ProbesRun,
			Timings: model.StageTimings{
				FastPathMs: fpMs,
				TotalMs:    time.Since(start).Milliseconds(),
			},
		}
	}

	declineNote := fp.TraceNote
	if fp.Handled {
		declineNote = fmt.Sprintf("fast path reliability %d below threshold %d", fp.Reliability, e.cfg.FastPath.MinReliability)
	}
	e.logger.Printf("fast path declined: %s", declineNote)

	orch := orchestrator.NewEngine(e.client, e.executor, e.facts, e.cfg.Budget, e.logger)
	answer := orch.Run(ctx, question)
	answer.Timings.FastPathMs = fpMs
	if answer.TraceNote == "" {
		answer.TraceNote = declineNote
	}
	answer.Evidence = e.evidenceKinds(answer.Citations)

	if !answer.IsRefusal {
		e.verify(answer)
	}

	answer.Timings.TotalMs = time.Since(start).Milliseconds()
	return answer
}

// verify runs the grounding and validation gates over a produced answer.
// Neither gate rewrites the text; they only attach reports and downgrade
// the confidence level.
func (e *Engine) verify(answer *model.FinalAnswer) {
	claims := grounding.ExtractClaims(answer.Answer)

	parsed := probe.ParseEvidence(answer.Citations)
	if parsed.Memory == nil && len(parsed.Disks) == 0 && len(parsed.Services) == 0 {
		if snap, err := e.snapshots.LoadLast(); err == nil {
			parsed = model.FromSnapshot(snap)
		}
	}

	report := grounding.Compute(claims, parsed)
	answer.Grounding = &report
	if report.TotalClaims > 0 && !report.Grounded() {
		answer.Problems = append(answer.Problems,
			fmt.Sprintf("only %d of %d checkable claims verified against evidence", report.VerifiedClaims, report.TotalClaims))
		answer.Level = model.ConfidenceRed
	}

	result := e.validator.Validate(answer.Answer, validate.Context{Question: answer.Question})
	answer.Validation = &result
	if !result.Passed {
		for _, issue := range result.Issues {
			answer.Problems = append(answer.Problems, issue.Reason)
		}
		if answer.Level == model.ConfidenceGreen {
			answer.Level = model.ConfidenceYellow
		}
	}
}

func (e *Engine) evidenceKinds(citations []model.ProbeEvidence) []model.EvidenceKind {
	seen := make(map[model.EvidenceKind]bool)
	var kinds []model.EvidenceKind
	for _, c := range citations {
		kind := e.catalog.Kind(c.ProbeID)
		if kind == "" || seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds
}
