package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"veracity/internal/model"
)

// Renderer writes final answers to a stream, as human text or JSON.
type Renderer struct {
	out     io.Writer
	verbose bool
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, verbose bool) *Renderer {
	return &Renderer{out: out, verbose: verbose}
}

// RenderJSON writes the complete answer as indented JSON.
func (r *Renderer) RenderJSON(answer *model.FinalAnswer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal answer: %w", err)
	}
	fmt.Fprintln(r.out, string(data))
	return nil
}

// RenderHuman writes the answer text with a short trust footer. Verbose
// mode adds timings, probes and per-claim grounding detail.
func (r *Renderer) RenderHuman(answer *model.FinalAnswer) {
	fmt.Fprintln(r.out, answer.Answer)
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "  %s\n", r.trustLine(answer))

	if len(answer.Evidence) > 0 {
		kinds := make([]string, len(answer.Evidence))
		for i, k := range answer.Evidence {
			kinds[i] = string(k)
		}
		fmt.Fprintf(r.out, "  evidence: %s\n", strings.Join(kinds, ", "))
	}
	for _, p := range answer.Problems {
		fmt.Fprintf(r.out, "  problem: %s\n", p)
	}

	if !r.verbose {
		return
	}

	if answer.TraceNote != "" {
		fmt.Fprintf(r.out, "  trace: %s\n", answer.TraceNote)
	}
	if len(answer.RequestedProbes) > 0 {
		fmt.Fprintf(r.out, "  probes: %s\n", strings.Join(answer.RequestedProbes, ", "))
	}
	t := answer.Timings
	fmt.Fprintf(r.out, "  timings: fastpath %dms, junior %dms, probes %dms, senior %dms, total %dms\n",
		t.FastPathMs, t.JuniorMs, t.ProbesMs, t.SeniorMs, t.TotalMs)

	if answer.Grounding != nil && answer.Grounding.TotalClaims > 0 {
		g := answer.Grounding
		fmt.Fprintf(r.out, "  grounding: %d/%d claims verified (%.2f)\n", g.VerifiedClaims, g.TotalClaims, g.Ratio)
		for _, d := range g.Details {
			mark := "x"
			if d.Verified {
				mark = "ok"
			}
			fmt.Fprintf(r.out, "    [%s] %s\n", mark, d.Claim.Describe())
		}
	}
	if answer.Validation != nil && len(answer.Validation.Issues) > 0 {
		for _, issue := range answer.Validation.Issues {
			fmt.Fprintf(r.out, "  validation: %s: %s\n", issue.Kind, issue.Reason)
		}
	}
}

func (r *Renderer) trustLine(answer *model.FinalAnswer) string {
	switch {
	case answer.IsRefusal:
		return fmt.Sprintf("refused [source: %s]", answer.Source)
	case answer.Source == "fastpath":
		return fmt.Sprintf("confidence: %s (reliability %d) [source: fastpath]", answer.Level, answer.Reliability)
	default:
		return fmt.Sprintf("confidence: %s (%.2f) [source: %s]", answer.Level, answer.Confidence, answer.Source)
	}
}
