package model

import "time"

// EvidenceKind classifies what kind of measurement backed an answer
type EvidenceKind string

const (
	EvidenceMemory      EvidenceKind = "memory"
	EvidenceDisk        EvidenceKind = "disk"
	EvidenceCPU         EvidenceKind = "cpu"
	EvidenceGPU         EvidenceKind = "gpu"
	EvidenceFailedUnits EvidenceKind = "failed_units"
	EvidenceJournal     EvidenceKind = "journal"
	EvidencePackages    EvidenceKind = "packages"
	EvidenceNetwork     EvidenceKind = "network"
)

// ProbeEvidence is the raw output of one diagnostic probe. Produced once per
// probe per request, never persisted. A failed probe is still evidence.
type ProbeEvidence struct {
	ProbeID   string    `json:"probe_id"`
	Raw       string    `json:"raw"`
	Succeeded bool      `json:"succeeded"`
	Timestamp time.Time `json:"timestamp"`
}

// ProbeSummary is the compact structured form of one ProbeEvidence, derived
// deterministically by fixed per-probe-type rules for model consumption.
type ProbeSummary struct {
	ProbeID string `json:"probe_id"`
	Compact string `json:"compact"`
}

// ServiceState is the systemd-style state of a service
type ServiceState string

const (
	ServiceRunning ServiceState = "running"
	ServiceFailed  ServiceState = "failed"
	ServiceStopped ServiceState = "stopped"
	ServiceUnknown ServiceState = "unknown"
)

// MemoryInfo holds parsed memory figures in bytes
type MemoryInfo struct {
	TotalBytes     uint64 `json:"total_bytes"`
	UsedBytes      uint64 `json:"used_bytes"`
	FreeBytes      uint64 `json:"free_bytes"`
	SharedBytes    uint64 `json:"shared_bytes"`
	BuffCacheBytes uint64 `json:"buff_cache_bytes"`
	AvailableBytes uint64 `json:"available_bytes"`
}

// DiskUsage holds one parsed df entry
type DiskUsage struct {
	Filesystem     string `json:"filesystem"`
	Mount          string `json:"mount"`
	SizeBytes      uint64 `json:"size_bytes"`
	UsedBytes      uint64 `json:"used_bytes"`
	AvailableBytes uint64 `json:"available_bytes"`
	PercentUsed    int    `json:"percent_used"`
}

// ServiceStatus holds one parsed service entry
type ServiceStatus struct {
	Name  string       `json:"name"`
	State ServiceState `json:"state"`
}

// ParsedEvidence is the typed evidence set claims are verified against.
// Built per request from probe output or from the current snapshot;
// never persisted.
type ParsedEvidence struct {
	Memory   *MemoryInfo     `json:"memory,omitempty"`
	Disks    []DiskUsage     `json:"disks,omitempty"`
	Services []ServiceStatus `json:"services,omitempty"`
}

// FromSnapshot builds typed evidence from a cached snapshot. The snapshot
// carries less detail than live probes (no free/shared breakdown), so only
// the fields it actually has are populated.
func FromSnapshot(s *SystemSnapshot) ParsedEvidence {
	ev := ParsedEvidence{}
	if s == nil {
		return ev
	}
	if s.MemoryTotalBytes > 0 {
		ev.Memory = &MemoryInfo{
			TotalBytes: s.MemoryTotalBytes,
			UsedBytes:  s.MemoryUsedBytes,
		}
	}
	for _, mount := range s.DiskMounts() {
		ev.Disks = append(ev.Disks, DiskUsage{
			Mount:       mount,
			PercentUsed: s.Disk[mount],
		})
	}
	for _, name := range s.FailedServices {
		ev.Services = append(ev.Services, ServiceStatus{Name: name, State: ServiceFailed})
	}
	return ev
}
