package model

// ConfidenceLevel is the coarse trust tier attached to an answer
type ConfidenceLevel string

const (
	ConfidenceGreen  ConfidenceLevel = "green"
	ConfidenceYellow ConfidenceLevel = "yellow"
	ConfidenceRed    ConfidenceLevel = "red"
)

// ConfidenceFromScore maps a [0,1] score to a tier.
func ConfidenceFromScore(score float64) ConfidenceLevel {
	switch {
	case score >= 0.8:
		return ConfidenceGreen
	case score >= 0.5:
		return ConfidenceYellow
	default:
		return ConfidenceRed
	}
}

// VerificationReason explains a single claim verification outcome
type VerificationReason struct {
	Kind     string `json:"kind"` // "exact_match" | "mismatch" | "no_evidence"
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

const (
	ReasonExactMatch = "exact_match"
	ReasonMismatch   = "mismatch"
	ReasonNoEvidence = "no_evidence"
)

// ClaimVerification is the result of checking one claim against evidence
type ClaimVerification struct {
	Claim    Claim              `json:"claim"`
	Verified bool               `json:"verified"`
	Reason   VerificationReason `json:"reason"`
}

// GroundingReport summarizes claim verification for one candidate answer.
// Recomputed per request, never persisted.
// Invariant: VerifiedClaims <= TotalClaims; Ratio = verified/total when
// total > 0, else 0.0.
type GroundingReport struct {
	TotalClaims    int                 `json:"total_claims"`
	VerifiedClaims int                 `json:"verified_claims"`
	Ratio          float64             `json:"ratio"`
	Details        []ClaimVerification `json:"details"`
}

// Grounded reports whether the answer passes the grounding gate.
// Zero claims is explicitly NOT grounded: an answer that asserts nothing
// checkable must not pass for free.
func (r GroundingReport) Grounded() bool {
	return r.TotalClaims > 0 && r.Ratio >= 0.5
}

// IssueKind classifies a validator finding
type IssueKind string

const (
	IssueHallucination IssueKind = "hallucination"
	IssueUnsafeCommand IssueKind = "unsafe_command"
	IssueIncomplete    IssueKind = "incomplete"
	IssueClarity       IssueKind = "clarity"
	IssueFactualError  IssueKind = "factual_error"
)

// ValidationIssue is one finding from the answer validator
type ValidationIssue struct {
	Kind   IssueKind `json:"kind"`
	Item   string    `json:"item"`   // offending command, path, package, or section
	Reason string    `json:"reason"` // human-readable explanation
}

// ValidationResult is the output of the multi-pass answer validator
type ValidationResult struct {
	Passed     bool              `json:"passed"`
	Confidence float64           `json:"confidence"` // 1.0 minus weighted penalties, floored at 0
	Issues     []ValidationIssue `json:"issues"`
}

// StageTimings records per-stage elapsed milliseconds for observability.
// Every terminal answer carries one; it is mandatory trace data.
type StageTimings struct {
	FastPathMs int64 `json:"fast_path_ms"`
	JuniorMs   int64 `json:"junior_ms"`
	ProbesMs   int64 `json:"probes_ms"`
	SeniorMs   int64 `json:"senior_ms"`
	TotalMs    int64 `json:"total_ms"`
}

// FinalAnswer is the value returned for every query, degraded or not.
// The entry point never fails outward; failure modes become low-score
// textual answers.
type FinalAnswer struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	IsRefusal bool   `json:"is_refusal"`

	// Evidence and trust
	Citations   []ProbeEvidence   `json:"citations,omitempty"`
	Evidence    []EvidenceKind    `json:"evidence_kinds,omitempty"`
	Confidence  float64           `json:"confidence"`  // [0,1]; reasoning-loop answers
	Reliability int               `json:"reliability"` // 0-100; fast path answers
	Level       ConfidenceLevel   `json:"confidence_level"`
	Grounding   *GroundingReport  `json:"grounding,omitempty"`
	Validation  *ValidationResult `json:"validation,omitempty"`

	// Trace
	Source          string       `json:"source"` // "fastpath" | "junior" | "senior" | "fallback" | "extract"
	TraceNote       string       `json:"trace_note,omitempty"`
	Problems        []string     `json:"problems,omitempty"`
	Timings         StageTimings `json:"timings"`
	RequestedProbes []string     `json:"requested_probes,omitempty"`
	ProbesRun       bool         `json:"probes_run"`
	JuniorHadDraft  bool         `json:"junior_had_draft"`
	SeniorVerdict   string       `json:"senior_verdict,omitempty"`
}
