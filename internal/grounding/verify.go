package grounding

import (
	"strconv"
	"strings"

	"veracity/internal/model"
)

// Compute verifies each claim against evidence and builds the report.
// Deterministic by construction: no clock, no randomness, claims checked
// in input order.
func Compute(claims []model.Claim, evidence model.ParsedEvidence) model.GroundingReport {
	details := make([]model.ClaimVerification, 0, len(claims))
	verified := 0

	for _, claim := range claims {
		v := verifyClaim(claim, evidence)
		if v.Verified {
			verified++
		}
		details = append(details, v)
	}

	total := len(claims)
	ratio := 0.0
	if total > 0 {
		ratio = float64(verified) / float64(total)
	}

	return model.GroundingReport{
		TotalClaims:    total,
		VerifiedClaims: verified,
		Ratio:          ratio,
		Details:        details,
	}
}

func verifyClaim(claim model.Claim, evidence model.ParsedEvidence) model.ClaimVerification {
	switch claim.Kind {
	case model.ClaimNumeric:
		return verifyNumeric(claim, evidence)
	case model.ClaimPercent:
		return verifyPercent(claim, evidence)
	case model.ClaimStatus:
		return verifyStatus(claim, evidence)
	default:
		return noEvidence(claim)
	}
}

// memoryFields is the fixed set of named memory figures a numeric claim
// can bind to. Order matters: the first field whose name appears in the
// claim subject wins. A bare "memory"/"ram" subject binds to used.
var memoryFields = []struct {
	name string
	get  func(*model.MemoryInfo) uint64
}{
	{"total", func(m *model.MemoryInfo) uint64 { return m.TotalBytes }},
	{"used", func(m *model.MemoryInfo) uint64 { return m.UsedBytes }},
	{"free", func(m *model.MemoryInfo) uint64 { return m.FreeBytes }},
	{"available", func(m *model.MemoryInfo) uint64 { return m.AvailableBytes }},
	{"shared", func(m *model.MemoryInfo) uint64 { return m.SharedBytes }},
	{"buff_cache", func(m *model.MemoryInfo) uint64 { return m.BuffCacheBytes }},
}

func verifyNumeric(claim model.Claim, evidence model.ParsedEvidence) model.ClaimVerification {
	if evidence.Memory == nil {
		return noEvidence(claim)
	}

	subject := strings.ToLower(claim.Subject)
	if !isMemorySubject(subject) {
		// Process-level figures (firefox, chrome, ...) have no typed
		// evidence source; unverifiable, not wrong.
		return noEvidence(claim)
	}

	for _, field := range memoryFields {
		if !strings.Contains(subject, field.name) && !(field.name == "used" && (subject == "memory" || subject == "ram" || subject == "mem")) {
			continue
		}
		actual := field.get(evidence.Memory)
		if claim.Bytes == actual {
			return exactMatch(claim)
		}
		return mismatch(claim, strconv.FormatUint(claim.Bytes, 10), strconv.FormatUint(actual, 10))
	}
	return noEvidence(claim)
}

func isMemorySubject(subject string) bool {
	switch subject {
	case "memory", "ram", "mem", "total", "used", "free", "available", "shared", "buff_cache":
		return true
	}
	return false
}

func verifyPercent(claim model.Claim, evidence model.ParsedEvidence) model.ClaimVerification {
	for _, disk := range evidence.Disks {
		if disk.Mount != claim.Mount {
			continue
		}
		if disk.PercentUsed == claim.Percent {
			return exactMatch(claim)
		}
		return mismatch(claim, strconv.Itoa(claim.Percent), strconv.Itoa(disk.PercentUsed))
	}
	return noEvidence(claim)
}

func verifyStatus(claim model.Claim, evidence model.ParsedEvidence) model.ClaimVerification {
	for _, svc := range evidence.Services {
		if !serviceNameMatches(svc.Name, claim.Service) {
			continue
		}
		if svc.State == claim.State {
			return exactMatch(claim)
		}
		return mismatch(claim, string(claim.State), string(svc.State))
	}
	return noEvidence(claim)
}

// serviceNameMatches treats "nginx" and "nginx.service" as the same unit
func serviceNameMatches(evidenceName, claimName string) bool {
	return evidenceName == claimName ||
		strings.TrimSuffix(evidenceName, ".service") == claimName
}

func exactMatch(claim model.Claim) model.ClaimVerification {
	return model.ClaimVerification{
		Claim:    claim,
		Verified: true,
		Reason:   model.VerificationReason{Kind: model.ReasonExactMatch},
	}
}

func mismatch(claim model.Claim, expected, actual string) model.ClaimVerification {
	return model.ClaimVerification{
		Claim:    claim,
		Verified: false,
		Reason: model.VerificationReason{
			Kind:     model.ReasonMismatch,
			Expected: expected,
			Actual:   actual,
		},
	}
}

func noEvidence(claim model.Claim) model.ClaimVerification {
	return model.ClaimVerification{
		Claim:    claim,
		Verified: false,
		Reason:   model.VerificationReason{Kind: model.ReasonNoEvidence},
	}
}
