package grounding

import (
	"reflect"
	"testing"

	"veracity/internal/model"
)

func memoryEvidence(used uint64) model.ParsedEvidence {
	return model.ParsedEvidence{
		Memory: &model.MemoryInfo{
			TotalBytes:     16106127360,
			UsedBytes:      used,
			FreeBytes:      1610612736,
			SharedBytes:    536870912,
			BuffCacheBytes: 6227702579,
			AvailableBytes: 6979321856,
		},
	}
}

func TestVerifiedNumericMemoryClaim(t *testing.T) {
	claims := ExtractClaims("memory uses 8804682957B")
	report := Compute(claims, memoryEvidence(8804682957))

	if report.TotalClaims != 1 {
		t.Fatalf("Expected 1 claim, got %d", report.TotalClaims)
	}
	if report.VerifiedClaims != 1 {
		t.Errorf("Expected 1 verified claim, got %d", report.VerifiedClaims)
	}
	if report.Ratio != 1.0 {
		t.Errorf("Expected ratio 1.0, got %f", report.Ratio)
	}
	if !report.Grounded() {
		t.Error("Expected answer to be grounded")
	}
	if report.Details[0].Reason.Kind != model.ReasonExactMatch {
		t.Errorf("Expected exact_match, got %s", report.Details[0].Reason.Kind)
	}
}

func TestContradictedNumericClaim(t *testing.T) {
	claims := ExtractClaims("memory uses 4294967296B")
	report := Compute(claims, memoryEvidence(3221225472))

	if report.VerifiedClaims != 0 {
		t.Errorf("Expected 0 verified claims, got %d", report.VerifiedClaims)
	}
	if report.Ratio != 0.0 {
		t.Errorf("Expected ratio 0.0, got %f", report.Ratio)
	}
	if report.Grounded() {
		t.Error("Expected answer to not be grounded")
	}
	reason := report.Details[0].Reason
	if reason.Kind != model.ReasonMismatch {
		t.Fatalf("Expected mismatch (not no_evidence), got %s", reason.Kind)
	}
	if reason.Expected != "4294967296" || reason.Actual != "3221225472" {
		t.Errorf("Unexpected mismatch detail: expected=%s actual=%s", reason.Expected, reason.Actual)
	}
}

func TestHalfVerifiedStatusClaimsBoundary(t *testing.T) {
	claims := []model.Claim{
		model.StatusClaim("nginx", model.ServiceRunning),
		model.StatusClaim("postgresql", model.ServiceFailed),
	}
	evidence := model.ParsedEvidence{
		Services: []model.ServiceStatus{{Name: "nginx", State: model.ServiceRunning}},
	}

	report := Compute(claims, evidence)
	if report.TotalClaims != 2 || report.VerifiedClaims != 1 {
		t.Fatalf("Expected 1/2 verified, got %d/%d", report.VerifiedClaims, report.TotalClaims)
	}
	if report.Ratio != 0.5 {
		t.Errorf("Expected ratio exactly 0.5, got %f", report.Ratio)
	}
	if !report.Grounded() {
		t.Error("Expected 0.5 boundary to be inclusive")
	}
	if report.Details[1].Reason.Kind != model.ReasonNoEvidence {
		t.Errorf("Expected no_evidence for postgresql, got %s", report.Details[1].Reason.Kind)
	}
}

func TestZeroClaimsNotGrounded(t *testing.T) {
	report := Compute(nil, memoryEvidence(1))
	if report.Ratio != 0.0 {
		t.Errorf("Expected ratio 0.0 for zero claims, got %f", report.Ratio)
	}
	if report.Grounded() {
		t.Error("Expected zero claims to never be grounded")
	}
}

func TestDeterminism(t *testing.T) {
	claims := ExtractClaims("memory uses 8804682957B and root is 90% full and nginx is running")
	evidence := memoryEvidence(8804682957)
	evidence.Disks = []model.DiskUsage{{Mount: "/", PercentUsed: 90}}
	evidence.Services = []model.ServiceStatus{{Name: "nginx", State: model.ServiceRunning}}

	first := Compute(claims, evidence)
	second := Compute(claims, evidence)
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical reports for identical inputs")
	}
	if first.VerifiedClaims != 3 {
		t.Errorf("Expected all 3 claims verified, got %d", first.VerifiedClaims)
	}
}

func TestServiceStateMismatch(t *testing.T) {
	claims := []model.Claim{model.StatusClaim("nginx", model.ServiceRunning)}
	evidence := model.ParsedEvidence{
		Services: []model.ServiceStatus{{Name: "nginx", State: model.ServiceFailed}},
	}
	report := Compute(claims, evidence)
	reason := report.Details[0].Reason
	if reason.Kind != model.ReasonMismatch {
		t.Fatalf("Expected mismatch, got %s", reason.Kind)
	}
	if reason.Expected != "running" || reason.Actual != "failed" {
		t.Errorf("Unexpected detail: expected=%s actual=%s", reason.Expected, reason.Actual)
	}
}

func TestServiceUnitSuffixAlias(t *testing.T) {
	claims := []model.Claim{model.StatusClaim("nginx", model.ServiceFailed)}
	evidence := model.ParsedEvidence{
		Services: []model.ServiceStatus{{Name: "nginx.service", State: model.ServiceFailed}},
	}
	report := Compute(claims, evidence)
	if report.VerifiedClaims != 1 {
		t.Error("Expected nginx claim to match nginx.service evidence")
	}
}

func TestPercentClaimAgainstDisk(t *testing.T) {
	evidence := model.ParsedEvidence{
		Disks: []model.DiskUsage{
			{Mount: "/", PercentUsed: 90},
			{Mount: "/home", PercentUsed: 40},
		},
	}

	tests := []struct {
		name     string
		claim    model.Claim
		verified bool
		reason   string
	}{
		{"exact root", model.PercentClaim("/", 90), true, model.ReasonExactMatch},
		{"wrong percent", model.PercentClaim("/", 85), false, model.ReasonMismatch},
		{"unknown mount", model.PercentClaim("/var", 50), false, model.ReasonNoEvidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Compute([]model.Claim{tt.claim}, evidence)
			detail := report.Details[0]
			if detail.Verified != tt.verified {
				t.Errorf("Expected verified=%v, got %v", tt.verified, detail.Verified)
			}
			if detail.Reason.Kind != tt.reason {
				t.Errorf("Expected reason %s, got %s", tt.reason, detail.Reason.Kind)
			}
		})
	}
}

func TestProcessClaimIsUnverifiable(t *testing.T) {
	claims := ExtractClaims("firefox uses 4294967296B")
	report := Compute(claims, memoryEvidence(8804682957))
	if report.TotalClaims != 1 {
		t.Fatalf("Expected firefox claim extracted, got %d claims", report.TotalClaims)
	}
	if report.Details[0].Reason.Kind != model.ReasonNoEvidence {
		t.Errorf("Expected no_evidence for process claim, got %s", report.Details[0].Reason.Kind)
	}
}

func TestNoMemoryEvidence(t *testing.T) {
	claims := ExtractClaims("memory uses 1024B")
	report := Compute(claims, model.ParsedEvidence{})
	if report.Details[0].Reason.Kind != model.ReasonNoEvidence {
		t.Errorf("Expected no_evidence without memory data, got %s", report.Details[0].Reason.Kind)
	}
}
