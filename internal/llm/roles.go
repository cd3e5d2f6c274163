package llm

import (
	"context"
	"fmt"
	"strings"

	"veracity/internal/model"
	"veracity/internal/worker"
)

// Role names, used for prompt selection and rate limiting
const (
	RoleJunior   = "junior"
	RoleSenior   = "senior"
	RoleFallback = "fallback"
)

// Junior reply modes
const (
	ModeAnswer        = "answer"
	ModeRequestProbes = "request_probes"
)

// Senior verdicts
const (
	VerdictApprove      = "approve"
	VerdictFixAndAccept = "fix_and_accept"
	VerdictRefuse       = "refuse"
	VerdictSkipped      = "skipped"
)

// JuniorReply is the decoded output of a junior call
type JuniorReply struct {
	Mode      string
	Probes    []string
	Draft     string
	Reasoning string
}

// SeniorReply is the decoded output of a senior audit call
type SeniorReply struct {
	Verdict    string
	Answer     string
	Reason     string
	Confidence float64
}

// Client wraps a provider with role prompts, model selection and per-role
// rate limiting.
type Client struct {
	provider    Provider
	limiter     *worker.Limiter
	juniorModel string
	seniorModel string
	maxTokens   int
}

// NewClient creates a role-aware client over a provider
func NewClient(provider Provider, limiter *worker.Limiter, cfg model.LLMConfig) *Client {
	return &Client{
		provider:    provider,
		limiter:     limiter,
		juniorModel: cfg.JuniorModel,
		seniorModel: cfg.SeniorModel,
		maxTokens:   cfg.MaxTokens,
	}
}

// Name returns the underlying provider name
func (c *Client) Name() string { return c.provider.Name() }

// IsAvailable reports backend reachability
func (c *Client) IsAvailable(ctx context.Context) bool { return c.provider.IsAvailable(ctx) }

const juniorDiscoverySystem = `You are a junior Linux system administrator. You decide which diagnostic
probes to run for a user question. You never guess facts: if the question
needs measurements, request probes; if it needs none, say so.
Respond with JSON: {"mode": "request_probes", "probes": ["id", ...]} or
{"mode": "answer", "probes": []}. Only use probe ids from the provided list.`

const juniorDraftSystem = `You are a junior Linux system administrator. Draft a direct, factual answer
to the user question using ONLY the evidence summaries provided. Every number
you state must appear in the evidence. If the evidence is insufficient, you
may request more probes instead.
Respond with JSON: {"mode": "answer", "draft": "..."} or
{"mode": "request_probes", "probes": ["id", ...]}.`

const seniorAuditSystem = `You are a senior Linux system administrator auditing a junior's draft answer.
Check it against the evidence summaries. Approve it, fix it, or refuse it.
Never invent facts the evidence does not show.
Respond with JSON: {"verdict": "approve"|"fix_and_accept"|"refuse",
"answer": "...", "reason": "...", "confidence": 0.0-1.0}.`

const directAnswerSystem = `You are a Linux system administrator. Answer the question strictly from the
evidence below. If the evidence does not contain the answer, say so plainly.
Respond with JSON: {"answer": "..."}.`

// JuniorDiscovery asks which probes the question needs. No evidence is
// supplied at this stage. Returns the requested probe ids, possibly empty.
func (c *Client) JuniorDiscovery(ctx context.Context, question string, available []string) (JuniorReply, error) {
	if err := c.limiter.Wait(ctx, RoleJunior); err != nil {
		return JuniorReply{}, err
	}

	user := fmt.Sprintf("Question: %s\n\nAvailable probes:\n%s", question, strings.Join(available, "\n"))
	raw, err := c.provider.Call(ctx, CallRequest{
		System:    juniorDiscoverySystem,
		User:      user,
		Model:     c.juniorModel,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return JuniorReply{}, fmt.Errorf("junior discovery: %w", err)
	}
	return DecodeJuniorReply(raw), nil
}

// JuniorDraft asks for a draft answer given the compact evidence summaries.
// The junior may come back requesting more probes instead of a draft.
func (c *Client) JuniorDraft(ctx context.Context, question string, summaries []model.ProbeSummary) (JuniorReply, error) {
	if err := c.limiter.Wait(ctx, RoleJunior); err != nil {
		return JuniorReply{}, err
	}

	user := fmt.Sprintf("Question: %s\n\nEvidence:\n%s", question, FormatSummaries(summaries))
	raw, err := c.provider.Call(ctx, CallRequest{
		System:    juniorDraftSystem,
		User:      user,
		Model:     c.juniorModel,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return JuniorReply{}, fmt.Errorf("junior draft: %w", err)
	}
	return DecodeJuniorReply(raw), nil
}

// SeniorAudit asks the senior model to audit the draft against evidence
func (c *Client) SeniorAudit(ctx context.Context, question, draft string, summaries []model.ProbeSummary) (SeniorReply, error) {
	if err := c.limiter.Wait(ctx, RoleSenior); err != nil {
		return SeniorReply{}, err
	}

	user := fmt.Sprintf("Question: %s\n\nDraft answer:\n%s\n\nEvidence:\n%s",
		question, draft, FormatSummaries(summaries))
	raw, err := c.provider.Call(ctx, CallRequest{
		System:    seniorAuditSystem,
		User:      user,
		Model:     c.seniorModel,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return SeniorReply{}, fmt.Errorf("senior audit: %w", err)
	}
	return DecodeSeniorReply(raw), nil
}

// DirectAnswer is the single-call degraded path: answer strictly from the
// given evidence against a minimal one-field schema.
func (c *Client) DirectAnswer(ctx context.Context, question string, summaries []model.ProbeSummary) (string, error) {
	if err := c.limiter.Wait(ctx, RoleFallback); err != nil {
		return "", err
	}

	user := fmt.Sprintf("Question: %s\n\nEvidence:\n%s", question, FormatSummaries(summaries))
	raw, err := c.provider.Call(ctx, CallRequest{
		System:    directAnswerSystem,
		User:      user,
		Model:     c.juniorModel,
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("direct answer: %w", err)
	}
	return strings.TrimSpace(asString(raw["answer"])), nil
}

// DecodeJuniorReply maps raw model JSON onto a JuniorReply. A missing or
// unrecognized mode decodes as "answer" rather than falling through.
func DecodeJuniorReply(raw map[string]any) JuniorReply {
	reply := JuniorReply{
		Mode:      ModeAnswer,
		Draft:     strings.TrimSpace(asString(firstPresent(raw, "draft", "answer"))),
		Reasoning: strings.TrimSpace(asString(raw["reasoning"])),
	}
	if mode := asString(raw["mode"]); mode == ModeRequestProbes {
		reply.Mode = ModeRequestProbes
	}
	reply.Probes = asStringSlice(raw["probes"])
	return reply
}

// DecodeSeniorReply maps raw model JSON onto a SeniorReply. The verdict
// string is kept as-is; the orchestrator owns unknown-verdict handling.
func DecodeSeniorReply(raw map[string]any) SeniorReply {
	return SeniorReply{
		Verdict:    strings.ToLower(strings.TrimSpace(asString(raw["verdict"]))),
		Answer:     strings.TrimSpace(asString(firstPresent(raw, "answer", "fixed_answer"))),
		Reason:     strings.TrimSpace(asString(raw["reason"])),
		Confidence: asFloat(raw["confidence"]),
	}
}

// FormatSummaries renders compact evidence for a prompt, one line per probe
func FormatSummaries(summaries []model.ProbeSummary) string {
	if len(summaries) == 0 {
		return "(no evidence collected)"
	}
	var b strings.Builder
	for _, s := range summaries {
		fmt.Fprintf(&b, "[%s] %s\n", s.ProbeID, s.Compact)
	}
	return b.String()
}

func firstPresent(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}
