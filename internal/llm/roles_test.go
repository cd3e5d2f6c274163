package llm

import (
	"context"
	"strings"
	"testing"

	"veracity/internal/model"
	"veracity/internal/worker"
)

func testClient(provider Provider) *Client {
	return NewClient(provider, worker.NewLimiter(100, 100), model.LLMConfig{
		JuniorModel: "junior-model",
		SeniorModel: "senior-model",
		MaxTokens:   500,
	})
}

func TestDecodeJuniorReply_DefaultMode(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		mode string
	}{
		{"missing mode", map[string]any{"draft": "hi"}, ModeAnswer},
		{"unknown mode", map[string]any{"mode": "ponder", "draft": "hi"}, ModeAnswer},
		{"explicit answer", map[string]any{"mode": "answer", "draft": "hi"}, ModeAnswer},
		{"request probes", map[string]any{"mode": "request_probes", "probes": []any{"mem.info"}}, ModeRequestProbes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := DecodeJuniorReply(tt.raw)
			if reply.Mode != tt.mode {
				t.Errorf("Expected mode %s, got %s", tt.mode, reply.Mode)
			}
		})
	}
}

func TestDecodeJuniorReply_Probes(t *testing.T) {
	reply := DecodeJuniorReply(map[string]any{
		"mode":   "request_probes",
		"probes": []any{"mem.info", "disk.df", 42, ""},
	})
	if len(reply.Probes) != 2 {
		t.Fatalf("Expected non-string and empty entries dropped, got %v", reply.Probes)
	}
	if reply.Probes[0] != "mem.info" || reply.Probes[1] != "disk.df" {
		t.Errorf("Unexpected probes: %v", reply.Probes)
	}
}

func TestDecodeJuniorReply_AnswerFieldAlias(t *testing.T) {
	reply := DecodeJuniorReply(map[string]any{"answer": "the answer"})
	if reply.Draft != "the answer" {
		t.Errorf("Expected answer field to populate draft, got %q", reply.Draft)
	}
}

func TestDecodeSeniorReply(t *testing.T) {
	reply := DecodeSeniorReply(map[string]any{
		"verdict":    " Approve ",
		"answer":     "fixed text",
		"reason":     "looks right",
		"confidence": 0.9,
	})
	if reply.Verdict != VerdictApprove {
		t.Errorf("Expected normalized verdict approve, got %q", reply.Verdict)
	}
	if reply.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %f", reply.Confidence)
	}
}

func TestDecodeSeniorReply_KeepsUnknownVerdict(t *testing.T) {
	reply := DecodeSeniorReply(map[string]any{"verdict": "maybe"})
	if reply.Verdict != "maybe" {
		t.Errorf("Expected unknown verdict preserved for caller, got %q", reply.Verdict)
	}
}

func TestJuniorDiscovery(t *testing.T) {
	fake := NewFakeProvider()
	fake.QueueReply(map[string]any{"mode": "request_probes", "probes": []any{"mem.info", "disk.df"}})

	client := testClient(fake)
	reply, err := client.JuniorDiscovery(context.Background(), "how much memory do I have", []string{"mem.info", "disk.df", "cpu.info"})
	if err != nil {
		t.Fatalf("Discovery failed: %v", err)
	}
	if len(reply.Probes) != 2 {
		t.Errorf("Expected 2 probes requested, got %v", reply.Probes)
	}

	calls := fake.Calls()
	if len(calls) != 1 {
		t.Fatalf("Expected 1 call, got %d", len(calls))
	}
	if calls[0].Model != "junior-model" {
		t.Errorf("Expected junior model, got %s", calls[0].Model)
	}
	if !strings.Contains(calls[0].User, "mem.info") {
		t.Error("Expected available probe ids in the prompt")
	}
}

func TestSeniorAuditUsesSeniorModel(t *testing.T) {
	fake := NewFakeProvider()
	fake.QueueReply(map[string]any{"verdict": "approve", "answer": "", "confidence": 0.85})

	client := testClient(fake)
	summaries := []model.ProbeSummary{{ProbeID: "mem.info", Compact: "memory total 31.2 GiB"}}
	reply, err := client.SeniorAudit(context.Background(), "q", "draft", summaries)
	if err != nil {
		t.Fatalf("Audit failed: %v", err)
	}
	if reply.Verdict != VerdictApprove {
		t.Errorf("Expected approve, got %s", reply.Verdict)
	}
	calls := fake.Calls()
	if calls[0].Model != "senior-model" {
		t.Errorf("Expected senior model, got %s", calls[0].Model)
	}
	if !strings.Contains(calls[0].User, "memory total 31.2 GiB") {
		t.Error("Expected evidence summaries in the audit prompt")
	}
}

func TestDirectAnswer(t *testing.T) {
	fake := NewFakeProvider()
	fake.QueueReply(map[string]any{"answer": "  31.2 GiB total  "})

	client := testClient(fake)
	answer, err := client.DirectAnswer(context.Background(), "how much memory", nil)
	if err != nil {
		t.Fatalf("DirectAnswer failed: %v", err)
	}
	if answer != "31.2 GiB total" {
		t.Errorf("Expected trimmed answer, got %q", answer)
	}
}

func TestFormatSummariesEmpty(t *testing.T) {
	if got := FormatSummaries(nil); got != "(no evidence collected)" {
		t.Errorf("Unexpected empty rendering: %q", got)
	}
}

func TestDecodeJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		key     string
	}{
		{"bare object", `{"answer": "x"}`, false, "answer"},
		{"fenced object", "```json\n{\"answer\": \"x\"}\n```", false, "answer"},
		{"prose prefix", `Here you go: {"answer": "x"}`, false, "answer"},
		{"trailing prose", `{"answer": "x"} hope that helps`, false, "answer"},
		{"empty", "", true, ""},
		{"no object", "just text", true, ""},
		{"malformed", `{"answer": `, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := decodeJSONObject(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if _, ok := obj[tt.key]; !ok {
				t.Errorf("Expected key %q in decoded object", tt.key)
			}
		})
	}
}
