package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"veracity/internal/model"
	"veracity/internal/probe"
)

// runFallback walks the degradation ladder after the main loop gives up.
// Tier 2 is a single direct model call with a minimal schema; tier 3 is
// pure text matching over raw evidence. The final rung is an honest
// refusal. No tier is skipped silently.
func (e *Engine) runFallback(ctx context.Context, question string, evidence []model.ProbeEvidence, summaries []model.ProbeSummary, requested []string, reason string, timings *model.StageTimings) *model.FinalAnswer {
	e.logger.Printf("fallback ladder entered: %s", reason)

	// Tier 2: one constrained call, no loop, no audit
	directStart := time.Now()
	text, err := e.client.DirectAnswer(ctx, question, summaries)
	timings.JuniorMs += time.Since(directStart).Milliseconds()
	if err != nil {
		e.logger.Printf("direct answer failed: %v", err)
	} else if len(strings.TrimSpace(text)) > 5 {
		answer := e.baseAnswer(question, strings.TrimSpace(text), 0.5, evidence, requested, false, timings)
		answer.Source = "fallback"
		answer.TraceNote = "direct answer after " + reason
		return answer
	} else {
		e.logger.Printf("direct answer too short (%d chars), trying extraction", len(strings.TrimSpace(text)))
	}

	// Tier 3: no model at all, just evidence text
	if text, ok := extractAnswer(question, evidence); ok {
		answer := e.baseAnswer(question, text, 0.4, evidence, requested, false, timings)
		answer.Source = "extract"
		answer.TraceNote = "text extraction after " + reason
		return answer
	}

	e.state = StateRefused
	answer := e.refusal(question, reason, evidence, requested, false, timings)
	answer.Source = "fallback"
	answer.TraceNote = "all fallback tiers exhausted"
	return answer
}

// extractAnswer answers narrow hardware questions straight from raw
// probe output. It only reports what the text literally says.
func extractAnswer(question string, evidence []model.ProbeEvidence) (string, bool) {
	q := strings.ToLower(question)

	if strings.Contains(q, "memory") || strings.Contains(q, "ram") {
		if text, ok := extractMemory(evidence); ok {
			return text, true
		}
	}
	if strings.Contains(q, "cpu") || strings.Contains(q, "processor") {
		if text, ok := extractCPUModel(evidence); ok {
			return text, true
		}
	}
	if strings.Contains(q, "gpu") || strings.Contains(q, "graphics") {
		if text, ok := extractGPUVendors(evidence); ok {
			return text, true
		}
	}
	if strings.Contains(q, "installed") {
		if text, ok := extractInstalledPackage(q, evidence); ok {
			return text, true
		}
	}
	return "", false
}

func extractMemory(evidence []model.ProbeEvidence) (string, bool) {
	for _, ev := range evidence {
		if ev.ProbeID != "mem.info" || !ev.Succeeded {
			continue
		}
		info, err := probe.ParseFreeOutput(ev.Raw)
		if err != nil {
			continue
		}
		const gib = 1024 * 1024 * 1024
		return fmt.Sprintf("Memory: %.1f GiB total, %.1f GiB used, %.1f GiB available.",
			float64(info.TotalBytes)/gib, float64(info.UsedBytes)/gib, float64(info.AvailableBytes)/gib), true
	}
	return "", false
}

func extractCPUModel(evidence []model.ProbeEvidence) (string, bool) {
	for _, ev := range evidence {
		if ev.ProbeID != "cpu.info" || !ev.Succeeded {
			continue
		}
		for _, line := range strings.Split(ev.Raw, "\n") {
			if name, ok := strings.CutPrefix(line, "model name"); ok {
				if _, value, found := strings.Cut(name, ":"); found {
					return "CPU: " + strings.TrimSpace(value) + ".", true
				}
			}
		}
	}
	return "", false
}

func extractGPUVendors(evidence []model.ProbeEvidence) (string, bool) {
	for _, ev := range evidence {
		if ev.ProbeID != "hardware.gpu" || !ev.Succeeded {
			continue
		}
		raw := strings.ToLower(ev.Raw)
		var vendors []string
		if strings.Contains(raw, "nvidia") {
			vendors = append(vendors, "NVIDIA")
		}
		if strings.Contains(raw, "amd") || strings.Contains(raw, "radeon") {
			vendors = append(vendors, "AMD")
		}
		if strings.Contains(raw, "intel") {
			vendors = append(vendors, "Intel")
		}
		if len(vendors) == 0 {
			return "No GPU vendor detected in PCI device listing.", true
		}
		return "GPU vendor(s): " + strings.Join(vendors, ", ") + ".", true
	}
	return "", false
}

// extractInstalledPackage checks "is X installed" style questions against
// the local package listing. The candidate name is the word before
// "installed" in the question.
func extractInstalledPackage(q string, evidence []model.ProbeEvidence) (string, bool) {
	words := strings.Fields(q)
	var candidate string
	for i, w := range words {
		if strings.HasPrefix(w, "installed") && i > 0 {
			candidate = strings.Trim(words[i-1], "?.,!\"'")
			break
		}
	}
	if candidate == "" || candidate == "is" || candidate == "it" {
		return "", false
	}
	for _, ev := range evidence {
		if ev.ProbeID != "pkg.query" || !ev.Succeeded {
			continue
		}
		for _, line := range strings.Split(ev.Raw, "\n") {
			name, version, found := strings.Cut(strings.TrimSpace(line), " ")
			if found && name == candidate {
				return fmt.Sprintf("Yes, %s %s is installed.", name, version), true
			}
		}
		return fmt.Sprintf("No, %s does not appear in the installed package list.", candidate), true
	}
	return "", false
}
