package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"veracity/internal/llm"
	"veracity/internal/model"
	"veracity/internal/probe"
)

func memEvidence() []model.ProbeEvidence {
	return []model.ProbeEvidence{{ProbeID: "mem.info", Raw: freeSample, Succeeded: true}}
}

func TestFallback_ShortDirectAnswerFallsThroughToExtraction(t *testing.T) {
	provider := llm.NewFakeProvider()
	provider.QueueReply(map[string]any{"answer": "ok"}) // 2 chars, rejected

	executor := probe.NewFakeExecutor()
	engine := newTestEngine(t, provider, executor, testBudget())

	timings := model.StageTimings{}
	answer := engine.runFallback(context.Background(), "how much memory do i have", memEvidence(), nil, []string{"mem.info"}, "test reason", &timings)

	if answer.Source != "extract" {
		t.Fatalf("Expected extraction tier, got source %q (%s)", answer.Source, answer.Answer)
	}
	if !strings.Contains(answer.Answer, "14.9 GiB total") {
		t.Errorf("Expected memory totals from evidence, got %q", answer.Answer)
	}
	if answer.IsRefusal {
		t.Error("Extraction result should not be a refusal")
	}
	if len(answer.RequestedProbes) != 1 || answer.RequestedProbes[0] != "mem.info" {
		t.Errorf("Expected requested probes carried through, got %v", answer.RequestedProbes)
	}
}

func TestFallback_DirectAnswerErrorFallsThroughToExtraction(t *testing.T) {
	provider := llm.NewFakeProvider()
	provider.QueueError(errors.New("backend down"))

	engine := newTestEngine(t, provider, probe.NewFakeExecutor(), testBudget())

	timings := model.StageTimings{}
	answer := engine.runFallback(context.Background(), "what cpu is in this machine", []model.ProbeEvidence{
		{ProbeID: "cpu.info", Raw: "processor\t: 0\nmodel name\t: AMD Ryzen 7 5800X 8-Core Processor\n", Succeeded: true},
	}, nil, []string{"cpu.info"}, "test reason", &timings)

	if answer.Source != "extract" {
		t.Fatalf("Expected extraction tier, got source %q", answer.Source)
	}
	if answer.Answer != "CPU: AMD Ryzen 7 5800X 8-Core Processor." {
		t.Errorf("Unexpected CPU extraction %q", answer.Answer)
	}
	if len(answer.RequestedProbes) != 1 || answer.RequestedProbes[0] != "cpu.info" {
		t.Errorf("Expected requested probes carried through, got %v", answer.RequestedProbes)
	}
}

func TestFallback_AllTiersExhausted(t *testing.T) {
	provider := llm.NewFakeProvider()
	provider.QueueError(errors.New("backend down"))

	engine := newTestEngine(t, provider, probe.NewFakeExecutor(), testBudget())

	timings := model.StageTimings{}
	answer := engine.runFallback(context.Background(), "why is the printer haunted", nil, nil, []string{"journal.errors"}, "everything broke", &timings)

	if !answer.IsRefusal {
		t.Fatal("Expected a refusal when every tier fails")
	}
	if answer.TraceNote != "all fallback tiers exhausted" {
		t.Errorf("Unexpected trace note %q", answer.TraceNote)
	}
	if !strings.Contains(answer.Answer, "everything broke") {
		t.Errorf("Expected the ladder reason in the refusal, got %q", answer.Answer)
	}
	if len(answer.RequestedProbes) != 1 || answer.RequestedProbes[0] != "journal.errors" {
		t.Errorf("Expected requested probes on the refusal, got %v", answer.RequestedProbes)
	}
}

func TestExtractAnswer_GPUVendors(t *testing.T) {
	evidence := []model.ProbeEvidence{{
		ProbeID:   "hardware.gpu",
		Raw:       "01:00.0 VGA compatible controller: NVIDIA Corporation GA104\n06:00.0 VGA compatible controller: Intel UHD Graphics",
		Succeeded: true,
	}}

	text, ok := extractAnswer("what gpu do i have", evidence)
	if !ok {
		t.Fatal("Expected a GPU extraction")
	}
	if text != "GPU vendor(s): NVIDIA, Intel." {
		t.Errorf("Unexpected extraction %q", text)
	}

	evidence[0].Raw = "00:1f.3 Audio device: some codec"
	text, ok = extractAnswer("what graphics card", evidence)
	if !ok || !strings.Contains(text, "No GPU vendor detected") {
		t.Errorf("Expected explicit no-vendor answer, got %q (ok=%v)", text, ok)
	}
}

func TestExtractAnswer_InstalledPackage(t *testing.T) {
	evidence := []model.ProbeEvidence{{
		ProbeID:   "pkg.query",
		Raw:       "base 3-2\ndocker 1:27.3.1-1\nvim 9.1.0764-1",
		Succeeded: true,
	}}

	text, ok := extractAnswer("is docker installed?", evidence)
	if !ok {
		t.Fatal("Expected a package extraction")
	}
	if text != "Yes, docker 1:27.3.1-1 is installed." {
		t.Errorf("Unexpected extraction %q", text)
	}

	text, ok = extractAnswer("is kubernetes installed", evidence)
	if !ok || !strings.Contains(text, "No, kubernetes") {
		t.Errorf("Expected negative answer, got %q (ok=%v)", text, ok)
	}
}

func TestExtractAnswer_NoMatch(t *testing.T) {
	if _, ok := extractAnswer("how much memory", nil); ok {
		t.Error("Expected no extraction without evidence")
	}
	if _, ok := extractAnswer("what is the meaning of life", memEvidence()); ok {
		t.Error("Expected no extraction for an off-topic question")
	}
	// Failed probes never feed extraction
	failed := []model.ProbeEvidence{{ProbeID: "mem.info", Raw: freeSample, Succeeded: false}}
	if _, ok := extractAnswer("how much memory", failed); ok {
		t.Error("Expected failed probe output to be ignored")
	}
}
