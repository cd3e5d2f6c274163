package model

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Health thresholds (percent) shared by the fast path, health summary,
// and snapshot diffing.
const (
	DiskWarnThreshold     = 80
	DiskCriticalThreshold = 90
	MemoryHighThreshold   = 85
)

// SystemSnapshot is a point-in-time measurement of the machine. It is owned
// and persisted by the snapshot store on its own refresh cadence; the
// decision core only reads it.
type SystemSnapshot struct {
	CapturedAt       time.Time      `json:"captured_at"`
	MemoryTotalBytes uint64         `json:"memory_total_bytes"`
	MemoryUsedBytes  uint64         `json:"memory_used_bytes"`
	Disk             map[string]int `json:"disk"` // mount path -> percent used
	FailedServices   []string       `json:"failed_services"`
}

// IsFresh reports whether the snapshot is younger than maxAge.
func (s *SystemSnapshot) IsFresh(maxAge time.Duration) bool {
	if s == nil {
		return false
	}
	return time.Since(s.CapturedAt) <= maxAge
}

// MemoryPercent returns memory usage as a whole percent, 0 when unknown.
func (s *SystemSnapshot) MemoryPercent() int {
	if s == nil || s.MemoryTotalBytes == 0 {
		return 0
	}
	return int(float64(s.MemoryUsedBytes) / float64(s.MemoryTotalBytes) * 100)
}

// DiskMounts returns mount paths in deterministic order.
func (s *SystemSnapshot) DiskMounts() []string {
	mounts := make([]string, 0, len(s.Disk))
	for m := range s.Disk {
		mounts = append(mounts, m)
	}
	sort.Strings(mounts)
	return mounts
}

// DeltaKind classifies one change between two snapshots
type DeltaKind string

const (
	DeltaDiskWarning      DeltaKind = "disk_warning"
	DeltaDiskCritical     DeltaKind = "disk_critical"
	DeltaDiskIncreased    DeltaKind = "disk_increased"
	DeltaNewFailedService DeltaKind = "new_failed_service"
	DeltaServiceRecovered DeltaKind = "service_recovered"
	DeltaMemoryHigh       DeltaKind = "memory_high"
	DeltaMemoryIncreased  DeltaKind = "memory_increased"
)

// Delta is one observed change between the previous and current snapshot
type Delta struct {
	Kind    DeltaKind `json:"kind"`
	Subject string    `json:"subject"` // mount path or service name, "memory" for memory deltas
	Before  int       `json:"before"`  // percent
	After   int       `json:"after"`   // percent
}

// Actionable reports whether the delta warrants attention on its own.
func (d Delta) Actionable() bool {
	switch d.Kind {
	case DeltaDiskWarning, DeltaDiskCritical, DeltaNewFailedService, DeltaMemoryHigh:
		return true
	default:
		return false
	}
}

func (d Delta) String() string {
	switch d.Kind {
	case DeltaDiskWarning:
		return fmt.Sprintf("%s crossed the disk warning threshold (%d%% -> %d%%)", d.Subject, d.Before, d.After)
	case DeltaDiskCritical:
		return fmt.Sprintf("%s crossed the disk critical threshold (%d%% -> %d%%)", d.Subject, d.Before, d.After)
	case DeltaDiskIncreased:
		return fmt.Sprintf("%s disk usage grew %d%% -> %d%%", d.Subject, d.Before, d.After)
	case DeltaNewFailedService:
		return fmt.Sprintf("%s failed since last check", d.Subject)
	case DeltaServiceRecovered:
		return fmt.Sprintf("%s recovered since last check", d.Subject)
	case DeltaMemoryHigh:
		return fmt.Sprintf("memory usage is high (%d%% -> %d%%)", d.Before, d.After)
	case DeltaMemoryIncreased:
		return fmt.Sprintf("memory usage grew %d%% -> %d%%", d.Before, d.After)
	default:
		return string(d.Kind)
	}
}

// minDiskGrowth is the smallest disk percent increase worth reporting.
const minDiskGrowth = 5

// DiffSnapshots compares two snapshots and returns an ordered delta list:
// disk deltas first (by mount), then service deltas (by name), then memory.
// Both inputs are read-only; the result is deterministic.
func DiffSnapshots(prev, curr *SystemSnapshot) []Delta {
	if prev == nil || curr == nil {
		return nil
	}

	var deltas []Delta

	for _, mount := range curr.DiskMounts() {
		after := curr.Disk[mount]
		before, known := prev.Disk[mount]
		if !known {
			continue
		}
		switch {
		case before < DiskCriticalThreshold && after >= DiskCriticalThreshold:
			deltas = append(deltas, Delta{Kind: DeltaDiskCritical, Subject: mount, Before: before, After: after})
		case before < DiskWarnThreshold && after >= DiskWarnThreshold:
			deltas = append(deltas, Delta{Kind: DeltaDiskWarning, Subject: mount, Before: before, After: after})
		case after >= before+minDiskGrowth:
			deltas = append(deltas, Delta{Kind: DeltaDiskIncreased, Subject: mount, Before: before, After: after})
		}
	}

	prevFailed := make(map[string]bool, len(prev.FailedServices))
	for _, svc := range prev.FailedServices {
		prevFailed[svc] = true
	}
	currFailed := make(map[string]bool, len(curr.FailedServices))
	for _, svc := range curr.FailedServices {
		currFailed[svc] = true
		if !prevFailed[svc] {
			deltas = append(deltas, Delta{Kind: DeltaNewFailedService, Subject: svc})
		}
	}
	recovered := make([]string, 0)
	for _, svc := range prev.FailedServices {
		if !currFailed[svc] {
			recovered = append(recovered, svc)
		}
	}
	sort.Strings(recovered)
	for _, svc := range recovered {
		deltas = append(deltas, Delta{Kind: DeltaServiceRecovered, Subject: svc})
	}

	beforeMem, afterMem := prev.MemoryPercent(), curr.MemoryPercent()
	switch {
	case beforeMem < MemoryHighThreshold && afterMem >= MemoryHighThreshold:
		deltas = append(deltas, Delta{Kind: DeltaMemoryHigh, Subject: "memory", Before: beforeMem, After: afterMem})
	case afterMem >= beforeMem+minDiskGrowth:
		deltas = append(deltas, Delta{Kind: DeltaMemoryIncreased, Subject: "memory", Before: beforeMem, After: afterMem})
	}

	return deltas
}

// HasActionableDeltas reports whether any delta warrants attention.
func HasActionableDeltas(deltas []Delta) bool {
	for _, d := range deltas {
		if d.Actionable() {
			return true
		}
	}
	return false
}

// FormatDeltas renders a delta list as answer text.
func FormatDeltas(deltas []Delta) string {
	lines := make([]string, 0, len(deltas)+1)
	lines = append(lines, fmt.Sprintf("%d change(s) since last check:", len(deltas)))
	for _, d := range deltas {
		lines = append(lines, "  - "+d.String())
	}
	return strings.Join(lines, "\n")
}

// HealthSummary is the actionable-issues-only health view of a snapshot.
type HealthSummary struct {
	NothingToReport bool
	Issues          []string
}

// Format renders the summary as answer text.
func (h HealthSummary) Format() string {
	if h.NothingToReport {
		return "Nothing to report. Memory, disks and services all look normal."
	}
	lines := make([]string, 0, len(h.Issues)+1)
	lines = append(lines, fmt.Sprintf("%d issue(s) need attention:", len(h.Issues)))
	for _, issue := range h.Issues {
		lines = append(lines, "  - "+issue)
	}
	return strings.Join(lines, "\n")
}

// BuildHealthSummary reports only actionable deviations: disks over the
// warning threshold, high memory, failed services. Healthy systems get a
// terse nothing-to-report view.
func BuildHealthSummary(s *SystemSnapshot) HealthSummary {
	var issues []string

	for _, mount := range s.DiskMounts() {
		pct := s.Disk[mount]
		if pct >= DiskCriticalThreshold {
			issues = append(issues, fmt.Sprintf("%s is critically full (%d%%)", mount, pct))
		} else if pct >= DiskWarnThreshold {
			issues = append(issues, fmt.Sprintf("%s is filling up (%d%%)", mount, pct))
		}
	}

	if pct := s.MemoryPercent(); pct >= MemoryHighThreshold {
		issues = append(issues, fmt.Sprintf("memory usage is high (%d%%)", pct))
	}

	for _, svc := range s.FailedServices {
		issues = append(issues, fmt.Sprintf("service %s has failed", svc))
	}

	return HealthSummary{NothingToReport: len(issues) == 0, Issues: issues}
}

// HasHealthIssues reports whether the snapshot has anything actionable.
func HasHealthIssues(s *SystemSnapshot) bool {
	return !BuildHealthSummary(s).NothingToReport
}
