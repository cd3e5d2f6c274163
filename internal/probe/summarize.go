package probe

import (
	"fmt"
	"strconv"
	"strings"

	"veracity/internal/model"
)

// Summarize compresses raw probe output into a compact line suitable for
// an LLM prompt. Each probe kind has a fixed rule; unknown probes fall
// back to a truncated prefix of the raw output.
func Summarize(ev model.ProbeEvidence) model.ProbeSummary {
	if !ev.Succeeded {
		return model.ProbeSummary{ProbeID: ev.ProbeID, Compact: "probe failed: " + truncate(ev.Raw, 120)}
	}

	var compact string
	switch {
	case ev.ProbeID == "cpu.info":
		compact = summarizeCPU(ev.Raw)
	case ev.ProbeID == "mem.info":
		compact = summarizeMemory(ev.Raw)
	case ev.ProbeID == "disk.lsblk":
		compact = summarizeBlockDevices(ev.Raw)
	case ev.ProbeID == "hardware.gpu":
		compact = summarizeGPU(ev.Raw)
	default:
		compact = truncate(ev.Raw, 200)
	}
	return model.ProbeSummary{ProbeID: ev.ProbeID, Compact: compact}
}

// SummarizeAll applies Summarize to each piece of evidence in order.
func SummarizeAll(evidence []model.ProbeEvidence) []model.ProbeSummary {
	summaries := make([]model.ProbeSummary, 0, len(evidence))
	for _, ev := range evidence {
		summaries = append(summaries, Summarize(ev))
	}
	return summaries
}

func summarizeCPU(raw string) string {
	var modelName string
	cores := 0
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "model name":
			if modelName == "" {
				modelName = value
			}
		case "processor":
			cores++
		}
	}
	if modelName == "" && cores == 0 {
		return truncate(raw, 200)
	}
	return fmt.Sprintf("%d logical cpus, model: %s", cores, modelName)
}

func summarizeMemory(raw string) string {
	info, err := ParseFreeOutput(raw)
	if err != nil {
		return truncate(raw, 200)
	}
	return fmt.Sprintf("memory total %.1f GiB, used %.1f GiB, available %.1f GiB",
		gib(info.TotalBytes), gib(info.UsedBytes), gib(info.AvailableBytes))
}

func summarizeBlockDevices(raw string) string {
	count := 0
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || fields[0] == "NAME" {
			continue
		}
		count++
	}
	return fmt.Sprintf("%d block devices", count)
}

func summarizeGPU(raw string) string {
	lower := strings.ToLower(raw)
	var vendors []string
	if strings.Contains(lower, "nvidia") {
		vendors = append(vendors, "nvidia")
	}
	if strings.Contains(lower, "amd") || strings.Contains(lower, "radeon") {
		vendors = append(vendors, "amd")
	}
	if strings.Contains(lower, "intel") {
		vendors = append(vendors, "intel")
	}
	if len(vendors) == 0 {
		return "no gpu vendor detected"
	}
	return "gpu vendors: " + strings.Join(vendors, ", ")
}

func gib(bytes uint64) float64 {
	return float64(bytes) / (1024 * 1024 * 1024)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// ParseFreeOutput extracts memory figures from `free -b` output.
func ParseFreeOutput(raw string) (model.MemoryInfo, error) {
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(line, "Mem:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 7 {
			return model.MemoryInfo{}, fmt.Errorf("malformed free output: %q", line)
		}
		nums := make([]uint64, 6)
		for i := 0; i < 6; i++ {
			n, err := strconv.ParseUint(fields[i+1], 10, 64)
			if err != nil {
				return model.MemoryInfo{}, fmt.Errorf("parse free field %q: %w", fields[i+1], err)
			}
			nums[i] = n
		}
		return model.MemoryInfo{
			TotalBytes:     nums[0],
			UsedBytes:      nums[1],
			FreeBytes:      nums[2],
			SharedBytes:    nums[3],
			BuffCacheBytes: nums[4],
			AvailableBytes: nums[5],
		}, nil
	}
	return model.MemoryInfo{}, fmt.Errorf("no Mem: line in free output")
}

// ParseDFOutput extracts per-mount usage from `df -P -B1` output.
func ParseDFOutput(raw string) []model.DiskUsage {
	var disks []model.DiskUsage
	for i, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		pct := strings.TrimSuffix(fields[4], "%")
		usedPct, err := strconv.Atoi(pct)
		if err != nil {
			continue
		}
		size, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		used, _ := strconv.ParseUint(fields[2], 10, 64)
		avail, _ := strconv.ParseUint(fields[3], 10, 64)
		disks = append(disks, model.DiskUsage{
			Filesystem:     fields[0],
			Mount:          fields[5],
			SizeBytes:      size,
			UsedBytes:      used,
			AvailableBytes: avail,
			PercentUsed:    usedPct,
		})
	}
	return disks
}

// ParseFailedUnits extracts failed unit names from
// `systemctl --failed --no-legend --plain` output.
func ParseFailedUnits(raw string) []model.ServiceStatus {
	var services []model.ServiceStatus
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if name == "UNIT" || name == "0" {
			continue
		}
		services = append(services, model.ServiceStatus{
			Name:  strings.TrimSuffix(name, ".service"),
			State: model.ServiceFailed,
		})
	}
	return services
}

// ParseEvidence builds typed evidence from a batch of raw probe output.
// Probes that fail to parse are skipped; grounding treats absent typed
// evidence as NoEvidence rather than an error.
func ParseEvidence(evidence []model.ProbeEvidence) model.ParsedEvidence {
	var parsed model.ParsedEvidence
	for _, ev := range evidence {
		if !ev.Succeeded {
			continue
		}
		switch ev.ProbeID {
		case "mem.info":
			if info, err := ParseFreeOutput(ev.Raw); err == nil {
				parsed.Memory = &info
			}
		case "disk.df":
			parsed.Disks = append(parsed.Disks, ParseDFOutput(ev.Raw)...)
		case "services.failed":
			parsed.Services = append(parsed.Services, ParseFailedUnits(ev.Raw)...)
		}
	}
	return parsed
}
