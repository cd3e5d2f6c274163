package grounding

import (
	"testing"

	"veracity/internal/model"
)

func TestExtractNumericClaims(t *testing.T) {
	claims := ExtractClaims("Your memory uses 8804682957B right now.")
	if len(claims) != 1 {
		t.Fatalf("Expected 1 claim, got %d", len(claims))
	}
	c := claims[0]
	if c.Kind != model.ClaimNumeric {
		t.Errorf("Expected numeric claim, got %s", c.Kind)
	}
	if c.Subject != "memory" || c.Bytes != 8804682957 {
		t.Errorf("Unexpected claim: %+v", c)
	}
}

func TestExtractPercentClaims(t *testing.T) {
	tests := []struct {
		text    string
		mount   string
		percent int
	}{
		{"root is 90% full", "/", 90},
		{"home is 40% full", "/home", 40},
		{"/var is 55% full", "/var", 55},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			claims := ExtractClaims(tt.text)
			if len(claims) != 1 {
				t.Fatalf("Expected 1 claim, got %d", len(claims))
			}
			if claims[0].Mount != tt.mount {
				t.Errorf("Expected mount %s, got %s", tt.mount, claims[0].Mount)
			}
			if claims[0].Percent != tt.percent {
				t.Errorf("Expected %d%%, got %d", tt.percent, claims[0].Percent)
			}
		})
	}
}

func TestExtractStatusClaims(t *testing.T) {
	claims := ExtractClaims("nginx is running but postgresql is failed")
	if len(claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d", len(claims))
	}
	if claims[0].Service != "nginx" || claims[0].State != model.ServiceRunning {
		t.Errorf("Unexpected first claim: %+v", claims[0])
	}
	if claims[1].Service != "postgresql" || claims[1].State != model.ServiceFailed {
		t.Errorf("Unexpected second claim: %+v", claims[1])
	}
}

func TestExtractMixedClaims(t *testing.T) {
	text := "memory uses 1024B, root is 90% full, sshd is running"
	claims := ExtractClaims(text)
	if len(claims) != 3 {
		t.Fatalf("Expected 3 claims, got %d", len(claims))
	}
	kinds := []model.ClaimKind{claims[0].Kind, claims[1].Kind, claims[2].Kind}
	want := []model.ClaimKind{model.ClaimNumeric, model.ClaimPercent, model.ClaimStatus}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("Expected kind %s at %d, got %s", want[i], i, kinds[i])
		}
	}
}

func TestExtractNoClaims(t *testing.T) {
	for _, text := range []string{
		"Everything looks fine.",
		"",
		"memory is running low", // not a service claim
		"disk is 150% full",     // impossible percent
	} {
		if claims := ExtractClaims(text); len(claims) != 0 {
			t.Errorf("Expected no claims from %q, got %v", text, claims)
		}
	}
}

func TestExtractIgnoresMountWordsAsServices(t *testing.T) {
	claims := ExtractClaims("root is failed")
	if len(claims) != 0 {
		t.Errorf("Expected mount alias words to not become service claims, got %v", claims)
	}
}
