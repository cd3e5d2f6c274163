package model

import (
	"strings"
	"testing"
	"time"
)

func TestIsFresh(t *testing.T) {
	snap := &SystemSnapshot{CapturedAt: time.Now().Add(-2 * time.Minute)}
	if !snap.IsFresh(5 * time.Minute) {
		t.Error("Expected 2-minute-old snapshot to be fresh within 5 minutes")
	}
	if snap.IsFresh(time.Minute) {
		t.Error("Expected 2-minute-old snapshot to be stale within 1 minute")
	}
	var nilSnap *SystemSnapshot
	if nilSnap.IsFresh(time.Hour) {
		t.Error("Expected nil snapshot to never be fresh")
	}
}

func TestMemoryPercent(t *testing.T) {
	snap := &SystemSnapshot{MemoryTotalBytes: 16, MemoryUsedBytes: 6}
	if got := snap.MemoryPercent(); got != 37 {
		t.Errorf("Expected 37%%, got %d%%", got)
	}
	empty := &SystemSnapshot{}
	if got := empty.MemoryPercent(); got != 0 {
		t.Errorf("Expected 0%% for unknown totals, got %d%%", got)
	}
}

func TestDiffSnapshots_DiskThresholds(t *testing.T) {
	prev := &SystemSnapshot{Disk: map[string]int{"/": 70, "/home": 85, "/var": 40}}
	curr := &SystemSnapshot{Disk: map[string]int{"/": 82, "/home": 92, "/var": 46}}

	deltas := DiffSnapshots(prev, curr)
	if len(deltas) != 3 {
		t.Fatalf("Expected 3 deltas, got %d: %v", len(deltas), deltas)
	}
	// Ordered by mount
	if deltas[0].Kind != DeltaDiskWarning || deltas[0].Subject != "/" {
		t.Errorf("Expected / warning first, got %+v", deltas[0])
	}
	if deltas[1].Kind != DeltaDiskCritical || deltas[1].Subject != "/home" {
		t.Errorf("Expected /home critical second, got %+v", deltas[1])
	}
	if deltas[2].Kind != DeltaDiskIncreased || deltas[2].Subject != "/var" {
		t.Errorf("Expected /var growth third, got %+v", deltas[2])
	}
}

func TestDiffSnapshots_SmallGrowthIgnored(t *testing.T) {
	prev := &SystemSnapshot{Disk: map[string]int{"/": 40}}
	curr := &SystemSnapshot{Disk: map[string]int{"/": 44}}
	if deltas := DiffSnapshots(prev, curr); len(deltas) != 0 {
		t.Errorf("Expected 4%% growth to be ignored, got %v", deltas)
	}
}

func TestDiffSnapshots_NewMountIgnored(t *testing.T) {
	prev := &SystemSnapshot{Disk: map[string]int{}}
	curr := &SystemSnapshot{Disk: map[string]int{"/mnt/new": 95}}
	if deltas := DiffSnapshots(prev, curr); len(deltas) != 0 {
		t.Errorf("Expected unknown previous mount to produce no delta, got %v", deltas)
	}
}

func TestDiffSnapshots_Services(t *testing.T) {
	prev := &SystemSnapshot{FailedServices: []string{"postgres", "redis"}}
	curr := &SystemSnapshot{FailedServices: []string{"nginx", "redis"}}

	deltas := DiffSnapshots(prev, curr)
	if len(deltas) != 2 {
		t.Fatalf("Expected 2 deltas, got %d: %v", len(deltas), deltas)
	}
	if deltas[0].Kind != DeltaNewFailedService || deltas[0].Subject != "nginx" {
		t.Errorf("Expected nginx failure, got %+v", deltas[0])
	}
	if deltas[1].Kind != DeltaServiceRecovered || deltas[1].Subject != "postgres" {
		t.Errorf("Expected postgres recovery, got %+v", deltas[1])
	}
	if !HasActionableDeltas(deltas) {
		t.Error("Expected a new failed service to be actionable")
	}
}

func TestDiffSnapshots_MemoryHigh(t *testing.T) {
	prev := &SystemSnapshot{MemoryTotalBytes: 100, MemoryUsedBytes: 60}
	curr := &SystemSnapshot{MemoryTotalBytes: 100, MemoryUsedBytes: 90}

	deltas := DiffSnapshots(prev, curr)
	if len(deltas) != 1 || deltas[0].Kind != DeltaMemoryHigh {
		t.Fatalf("Expected one memory_high delta, got %v", deltas)
	}
	if deltas[0].Before != 60 || deltas[0].After != 90 {
		t.Errorf("Expected 60 -> 90, got %d -> %d", deltas[0].Before, deltas[0].After)
	}
}

func TestDiffSnapshots_NilInputs(t *testing.T) {
	curr := &SystemSnapshot{Disk: map[string]int{"/": 95}}
	if DiffSnapshots(nil, curr) != nil || DiffSnapshots(curr, nil) != nil {
		t.Error("Expected nil result when either snapshot is missing")
	}
}

func TestFormatDeltas(t *testing.T) {
	out := FormatDeltas([]Delta{
		{Kind: DeltaDiskWarning, Subject: "/home", Before: 78, After: 83},
		{Kind: DeltaNewFailedService, Subject: "nginx"},
	})
	if !strings.HasPrefix(out, "2 change(s) since last check:") {
		t.Errorf("Unexpected header in %q", out)
	}
	if !strings.Contains(out, "/home crossed the disk warning threshold (78% -> 83%)") {
		t.Errorf("Missing disk line in %q", out)
	}
	if !strings.Contains(out, "nginx failed since last check") {
		t.Errorf("Missing service line in %q", out)
	}
}

func TestBuildHealthSummary(t *testing.T) {
	healthy := &SystemSnapshot{
		MemoryTotalBytes: 100,
		MemoryUsedBytes:  40,
		Disk:             map[string]int{"/": 55},
	}
	summary := BuildHealthSummary(healthy)
	if !summary.NothingToReport {
		t.Errorf("Expected nothing to report, got issues %v", summary.Issues)
	}
	if !strings.Contains(summary.Format(), "Nothing to report") {
		t.Errorf("Unexpected healthy text %q", summary.Format())
	}

	sick := &SystemSnapshot{
		MemoryTotalBytes: 100,
		MemoryUsedBytes:  90,
		Disk:             map[string]int{"/": 92, "/home": 81},
		FailedServices:   []string{"nginx"},
	}
	summary = BuildHealthSummary(sick)
	if summary.NothingToReport || len(summary.Issues) != 4 {
		t.Fatalf("Expected 4 issues, got %v", summary.Issues)
	}
	text := summary.Format()
	for _, want := range []string{
		"4 issue(s) need attention:",
		"/ is critically full (92%)",
		"/home is filling up (81%)",
		"memory usage is high (90%)",
		"service nginx has failed",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Missing %q in %q", want, text)
		}
	}
}
