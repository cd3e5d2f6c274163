package fastpath

import (
	"fmt"
	"strings"

	"veracity/internal/model"
)

// Per-branch reliability constants. Fixed by design: the fast path never
// invents a confidence, it reports how trustworthy each branch is known
// to be.
const (
	reliabilityHealthClean  = 90
	reliabilityHealthIssues = 85
	reliabilityUsageFigures = 88
	reliabilityServices     = 90
	reliabilityFirstCheck   = 75
	reliabilityNoChanges    = 85
	reliabilityDeltas       = 85
	reliabilityQuietDeltas  = 80
)

// SnapshotSource supplies cached snapshots. The store owns refresh and
// persistence; the fast path only reads.
type SnapshotSource interface {
	LoadLast() (*model.SystemSnapshot, error)
	LoadPrevious() (*model.SystemSnapshot, error)
}

// Answer is the fast path outcome. Handled=false always carries a
// human-readable trace note saying why, never a silent decline.
type Answer struct {
	Handled     bool
	Class       Class
	Text        string
	Evidence    []model.EvidenceKind
	TraceNote   string
	Reliability int
	ProbesRun   bool
}

func notHandled(reason string) Answer {
	return Answer{Handled: false, Class: ClassNotFastPath, TraceNote: reason}
}

func handled(class Class, text string, evidence []model.EvidenceKind, note string, reliability int) Answer {
	return Answer{
		Handled:     true,
		Class:       class,
		Text:        text,
		Evidence:    evidence,
		TraceNote:   note,
		Reliability: reliability,
		ProbesRun:   false,
	}
}

// TryAnswer attempts to answer the query without the model. Preconditions
// are checked in order: policy enabled, snapshot obtainable, snapshot
// fresh. Each failure declines with an explicit reason.
func TryAnswer(query string, snapshot *model.SystemSnapshot, source SnapshotSource, policy model.FastPathConfig) Answer {
	if !policy.Enabled {
		return notHandled("fast path disabled")
	}

	class := Classify(query)
	if class == ClassNotFastPath {
		return notHandled("query not in fast path class")
	}

	if snapshot == nil && source != nil {
		loaded, err := source.LoadLast()
		if err == nil {
			snapshot = loaded
		}
	}
	if snapshot == nil {
		return notHandled("no snapshot available, probes needed")
	}

	fresh := snapshot.IsFresh(policy.MaxAge())

	switch class {
	case ClassSystemHealth:
		return answerSystemHealth(snapshot, fresh)
	case ClassDiskUsage:
		return answerDiskUsage(snapshot, fresh)
	case ClassMemoryUsage:
		return answerMemoryUsage(snapshot, fresh)
	case ClassFailedServices:
		return answerFailedServices(snapshot, fresh)
	case ClassWhatChanged:
		return answerWhatChanged(snapshot, source)
	}
	return notHandled("not fast path")
}

func answerSystemHealth(snapshot *model.SystemSnapshot, fresh bool) Answer {
	if !fresh {
		return notHandled("snapshot stale, probes needed")
	}

	summary := model.BuildHealthSummary(snapshot)

	evidence := []model.EvidenceKind{model.EvidenceMemory}
	if len(snapshot.Disk) > 0 {
		evidence = append(evidence, model.EvidenceDisk)
	}
	if len(snapshot.FailedServices) > 0 || model.HasHealthIssues(snapshot) {
		evidence = append(evidence, model.EvidenceFailedUnits)
	}

	reliability := reliabilityHealthIssues
	if summary.NothingToReport {
		reliability = reliabilityHealthClean
	}
	return handled(ClassSystemHealth, summary.Format(), evidence, "answered from fresh snapshot (relevant health)", reliability)
}

func answerDiskUsage(snapshot *model.SystemSnapshot, fresh bool) Answer {
	if !fresh {
		return notHandled("snapshot stale, probes needed")
	}
	if len(snapshot.Disk) == 0 {
		return notHandled("no disk data in snapshot")
	}

	lines := []string{"Disk usage:"}
	for _, mount := range snapshot.DiskMounts() {
		pct := snapshot.Disk[mount]
		status := "OK"
		if pct >= model.DiskCriticalThreshold {
			status = "CRITICAL"
		} else if pct >= model.DiskWarnThreshold {
			status = "WARNING"
		}
		lines = append(lines, fmt.Sprintf("  %s - %d%% used [%s]", mount, pct, status))
	}

	return handled(ClassDiskUsage, strings.Join(lines, "\n"),
		[]model.EvidenceKind{model.EvidenceDisk}, "answered from fresh snapshot", reliabilityUsageFigures)
}

func answerMemoryUsage(snapshot *model.SystemSnapshot, fresh bool) Answer {
	if !fresh {
		return notHandled("snapshot stale, probes needed")
	}
	if snapshot.MemoryTotalBytes == 0 {
		return notHandled("no memory data in snapshot")
	}

	const gib = 1024 * 1024 * 1024
	totalGB := float64(snapshot.MemoryTotalBytes) / gib
	usedGB := float64(snapshot.MemoryUsedBytes) / gib
	pct := snapshot.MemoryPercent()

	status := "OK"
	if pct >= model.MemoryHighThreshold {
		status = "HIGH"
	}

	text := fmt.Sprintf("Memory usage:\n  %.1f GB / %.1f GB (%d%%) [%s]", usedGB, totalGB, pct, status)
	return handled(ClassMemoryUsage, text,
		[]model.EvidenceKind{model.EvidenceMemory}, "answered from fresh snapshot", reliabilityUsageFigures)
}

func answerFailedServices(snapshot *model.SystemSnapshot, fresh bool) Answer {
	if !fresh {
		return notHandled("snapshot stale, probes needed")
	}

	var text string
	if len(snapshot.FailedServices) == 0 {
		text = "No failed services. All systemd units are running normally."
	} else {
		lines := []string{fmt.Sprintf("%d failed service(s):", len(snapshot.FailedServices))}
		for _, svc := range snapshot.FailedServices {
			lines = append(lines, "  - "+svc)
		}
		text = strings.Join(lines, "\n")
	}

	return handled(ClassFailedServices, text,
		[]model.EvidenceKind{model.EvidenceFailedUnits}, "answered from fresh snapshot", reliabilityServices)
}

func answerWhatChanged(current *model.SystemSnapshot, source SnapshotSource) Answer {
	var prev *model.SystemSnapshot
	if source != nil {
		loaded, err := source.LoadPrevious()
		if err == nil {
			prev = loaded
		}
	}
	if prev == nil {
		return handled(ClassWhatChanged,
			"No previous snapshot available for comparison. This is the first check.",
			nil, "no previous snapshot", reliabilityFirstCheck)
	}

	deltas := model.DiffSnapshots(prev, current)
	if len(deltas) == 0 {
		return handled(ClassWhatChanged, "No significant changes since last check.",
			nil, "no deltas detected", reliabilityNoChanges)
	}

	evidence := deltaEvidence(deltas)
	reliability := reliabilityQuietDeltas
	if model.HasActionableDeltas(deltas) {
		reliability = reliabilityDeltas
	}
	return handled(ClassWhatChanged, model.FormatDeltas(deltas), evidence, "deltas from previous snapshot", reliability)
}

func deltaEvidence(deltas []model.Delta) []model.EvidenceKind {
	var evidence []model.EvidenceKind
	seen := make(map[model.EvidenceKind]bool)
	add := func(kind model.EvidenceKind) {
		if !seen[kind] {
			seen[kind] = true
			evidence = append(evidence, kind)
		}
	}
	for _, d := range deltas {
		switch d.Kind {
		case model.DeltaDiskWarning, model.DeltaDiskCritical, model.DeltaDiskIncreased:
			add(model.EvidenceDisk)
		case model.DeltaNewFailedService, model.DeltaServiceRecovered:
			add(model.EvidenceFailedUnits)
		case model.DeltaMemoryHigh, model.DeltaMemoryIncreased:
			add(model.EvidenceMemory)
		}
	}
	return evidence
}
