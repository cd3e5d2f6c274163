// Package orchestrator runs the budget-bounded dual-role reasoning loop:
// a junior model discovers evidence and drafts, a senior model audits.
// Every failure mode degrades to a textual answer; Run never fails outward.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"veracity/internal/facts"
	"veracity/internal/llm"
	"veracity/internal/model"
	"veracity/internal/probe"
)

// State names the orchestrator's position in the loop. The four outcome
// states are terminal.
type State string

const (
	StateStart            State = "start"
	StateJuniorDiscovery  State = "junior_discovery"
	StateProbeExecution   State = "probe_execution"
	StateJuniorDraft      State = "junior_draft"
	StateSeniorAudit      State = "senior_audit"
	StateApproved         State = "approved"
	StateFixedAndAccepted State = "fixed_and_accepted"
	StateRefused          State = "refused"
	StateTimedOut         State = "timed_out"
)

// Engine owns one request's reasoning loop. Not safe for concurrent use;
// callers create one engine per request.
type Engine struct {
	client   *llm.Client
	executor probe.Executor
	facts    *facts.Store
	budget   model.BudgetConfig
	logger   *log.Logger

	state   State
	started time.Time
}

// NewEngine creates an orchestrator over the given collaborators.
// facts may be nil when no knowledge file is configured.
func NewEngine(client *llm.Client, executor probe.Executor, factStore *facts.Store, budget model.BudgetConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	if budget.MaxIterations <= 0 {
		budget.MaxIterations = 3
	}
	return &Engine{
		client:   client,
		executor: executor,
		facts:    factStore,
		budget:   budget,
		logger:   logger,
		state:    StateStart,
	}
}

// State returns the engine's current (or terminal) state.
func (e *Engine) State() State { return e.state }

// Run processes one question through the loop. The wall-clock budget is
// checked between stages only: a stage in flight always finishes.
func (e *Engine) Run(ctx context.Context, question string) *model.FinalAnswer {
	start := time.Now()
	e.started = start
	timings := model.StageTimings{}

	var (
		evidence  []model.ProbeEvidence
		summaries []model.ProbeSummary
		requested []string
	)

	// JuniorDiscovery: which probes does this question need?
	e.state = StateJuniorDiscovery
	if e.overBudget(start) {
		return e.timeoutAnswer(question, start, evidence, requested, false, &timings)
	}

	available := e.executor.Available()
	juniorStart := time.Now()
	discovery, err := e.client.JuniorDiscovery(ctx, e.questionWithHints(question), available)
	timings.JuniorMs += time.Since(juniorStart).Milliseconds()
	if err != nil {
		e.logger.Printf("junior discovery failed: %v", err)
		return e.runFallback(ctx, question, evidence, summaries, requested, "discovery call failed", &timings)
	}

	request := discovery.Probes
	// The discovery set seeds the stagnation guard: a first draft asking
	// for the exact probes it already has is already going nowhere.
	lastRequest := request

	for iteration := 0; ; iteration++ {
		if iteration >= e.budget.MaxIterations {
			e.logger.Printf("iteration bound %d reached, falling back", e.budget.MaxIterations)
			return e.runFallback(ctx, question, evidence, summaries, requested, "iteration bound exceeded", &timings)
		}

		// ProbeExecution: unknown ids are dropped, never fatal
		e.state = StateProbeExecution
		if e.overBudget(start) {
			return e.timeoutAnswer(question, start, evidence, requested, len(evidence) > 0, &timings)
		}

		valid := e.filterValid(request)
		requested = append(requested, valid...)
		if len(valid) > 0 {
			probeStart := time.Now()
			batch := e.executor.Execute(ctx, valid)
			timings.ProbesMs += time.Since(probeStart).Milliseconds()
			evidence = append(evidence, batch...)
			summaries = append(summaries, probe.SummarizeAll(batch)...)
		}

		// JuniorDraft: same question plus compact summaries
		e.state = StateJuniorDraft
		if e.overBudget(start) {
			return e.timeoutAnswer(question, start, evidence, requested, len(evidence) > 0, &timings)
		}

		juniorStart = time.Now()
		draft, err := e.client.JuniorDraft(ctx, question, summaries)
		timings.JuniorMs += time.Since(juniorStart).Milliseconds()
		if err != nil {
			e.logger.Printf("junior draft failed: %v", err)
			return e.runFallback(ctx, question, evidence, summaries, requested, "draft call failed", &timings)
		}

		if draft.Mode == llm.ModeRequestProbes {
			// Stagnation guard: the same request twice with evidence in
			// hand means the loop is going nowhere.
			if len(evidence) > 0 && sameProbeSet(draft.Probes, lastRequest) {
				e.logger.Printf("stagnation: probe set %v repeated, falling back", draft.Probes)
				return e.runFallback(ctx, question, evidence, summaries, requested, "probe request stagnated", &timings)
			}
			lastRequest = draft.Probes
			request = draft.Probes
			continue
		}

		return e.audit(ctx, question, draft.Draft, start, evidence, summaries, requested, &timings)
	}
}

// audit runs the SeniorAudit stage and maps the verdict to an outcome
func (e *Engine) audit(ctx context.Context, question, draftText string, start time.Time, evidence []model.ProbeEvidence, summaries []model.ProbeSummary, requested []string, timings *model.StageTimings) *model.FinalAnswer {
	draftText = strings.TrimSpace(draftText)
	hadDraft := draftText != "" && draftText != "null"
	if !hadDraft {
		e.logger.Printf("junior produced no usable draft")
		e.state = StateRefused
		answer := e.refusal(question, "Could not generate answer - no usable draft", evidence, requested, false, timings)
		answer.Source = "junior"
		return answer
	}

	// Junior confidence is an estimate: evidence-backed drafts rate higher
	juniorConfidence := 0.5
	if len(evidence) > 0 {
		juniorConfidence = 0.75
	}

	// Simple hardware questions with evidence skip the audit entirely
	if isSimpleDomain(question) && len(evidence) > 0 {
		e.logger.Printf("senior skipped (simple domain)")
		e.state = StateApproved
		answer := e.baseAnswer(question, draftText, juniorConfidence, evidence, requested, hadDraft, timings)
		answer.Source = "junior"
		answer.SeniorVerdict = llm.VerdictSkipped
		return answer
	}

	e.state = StateSeniorAudit
	if e.overBudget(start) {
		return e.timeoutAnswer(question, start, evidence, requested, hadDraft, timings)
	}

	seniorStart := time.Now()
	audit, err := e.client.SeniorAudit(ctx, question, draftText, summaries)
	timings.SeniorMs += time.Since(seniorStart).Milliseconds()
	if err != nil {
		// The draft survives a failed audit, at reduced confidence
		e.logger.Printf("senior audit failed: %v", err)
		e.state = StateApproved
		answer := e.baseAnswer(question, draftText, juniorConfidence*0.7, evidence, requested, hadDraft, timings)
		answer.Source = "junior"
		answer.Problems = append(answer.Problems, "senior audit unavailable")
		return answer
	}

	confidence := clamp01(audit.Confidence)

	switch audit.Verdict {
	case llm.VerdictApprove:
		e.state = StateApproved
	case llm.VerdictFixAndAccept:
		e.state = StateFixedAndAccepted
	case llm.VerdictRefuse:
		e.state = StateRefused
		reason := audit.Reason
		if reason == "" {
			reason = "senior refused the draft"
		}
		answer := e.refusal(question, reason, evidence, requested, hadDraft, timings)
		answer.SeniorVerdict = audit.Verdict
		return answer
	default:
		// Unknown verdicts fall back to the draft; anomaly, not a crash
		e.logger.Printf("unrecognized senior verdict %q, using draft", audit.Verdict)
		e.state = StateApproved
		answer := e.baseAnswer(question, draftText, juniorConfidence, evidence, requested, hadDraft, timings)
		answer.Source = "senior"
		answer.SeniorVerdict = audit.Verdict
		answer.Problems = append(answer.Problems, fmt.Sprintf("unrecognized verdict %q", audit.Verdict))
		return answer
	}

	text := audit.Answer
	if text == "" {
		text = draftText
	}
	answer := e.baseAnswer(question, text, confidence, evidence, requested, hadDraft, timings)
	answer.Source = "senior"
	answer.SeniorVerdict = audit.Verdict
	return answer
}

func (e *Engine) baseAnswer(question, text string, confidence float64, evidence []model.ProbeEvidence, requested []string, hadDraft bool, timings *model.StageTimings) *model.FinalAnswer {
	timings.TotalMs = time.Since(e.started).Milliseconds()
	return &model.FinalAnswer{
		Question:        question,
		Answer:          text,
		Citations:       evidence,
		Confidence:      confidence,
		Level:           model.ConfidenceFromScore(confidence),
		Timings:         *timings,
		RequestedProbes: requested,
		ProbesRun:       len(evidence) > 0,
		JuniorHadDraft:  hadDraft,
	}
}

func (e *Engine) refusal(question, reason string, evidence []model.ProbeEvidence, requested []string, hadDraft bool, timings *model.StageTimings) *model.FinalAnswer {
	answer := e.baseAnswer(question, "I can't answer that reliably: "+reason, 0.2, evidence, requested, hadDraft, timings)
	answer.IsRefusal = true
	answer.Source = "senior"
	answer.Level = model.ConfidenceRed
	return answer
}

func (e *Engine) timeoutAnswer(question string, start time.Time, evidence []model.ProbeEvidence, requested []string, hadDraft bool, timings *model.StageTimings) *model.FinalAnswer {
	e.state = StateTimedOut
	elapsed := time.Since(start).Seconds()
	text := fmt.Sprintf("Could not answer in time: elapsed %.1fs of %ds budget.", elapsed, e.budget.TotalSeconds)
	if len(evidence) > 0 {
		text += fmt.Sprintf(" Evidence gathered from %d probe(s) is attached.", len(evidence))
	}
	answer := e.baseAnswer(question, text, 0.1, evidence, requested, hadDraft, timings)
	answer.IsRefusal = true
	answer.Source = "junior"
	answer.Level = model.ConfidenceRed
	answer.TraceNote = "budget exhausted"
	return answer
}

func (e *Engine) overBudget(start time.Time) bool {
	return time.Since(start) > e.budget.Total()
}

func (e *Engine) filterValid(ids []string) []string {
	var valid []string
	for _, id := range ids {
		if e.executor.IsValid(id) {
			valid = append(valid, id)
		} else {
			e.logger.Printf("dropping unknown probe id %q", id)
		}
	}
	return valid
}

// questionWithHints appends matching knowledge notes to the discovery
// prompt. Hints are suggestions only, never evidence.
func (e *Engine) questionWithHints(question string) string {
	if e.facts == nil {
		return question
	}
	hints := e.facts.Hints(question, 3)
	if hints == "" {
		return question
	}
	return question + "\n\n" + hints
}

func isSimpleDomain(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range []string{"cpu", "ram", "memory", "disk", "storage", "core", "thread"} {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func sameProbeSet(a, b []string) bool {
	if len(a) == 0 || len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
