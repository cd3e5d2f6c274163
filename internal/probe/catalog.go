// Package probe defines the diagnostic probe catalog and its executor.
//
// A probe is an external read-only command whose raw text output becomes
// evidence. Probes never mutate the system; the catalog is the allow-list.
package probe

import (
	"sort"

	"veracity/internal/model"
)

// Spec describes one catalog entry
type Spec struct {
	ID          string
	Description string
	Binary      string
	Args        []string
	Kind        model.EvidenceKind
}

// Catalog is the fixed set of probes the reasoning loop may request.
type Catalog struct {
	specs map[string]Spec
}

// StandardCatalog returns the default probe set.
func StandardCatalog() *Catalog {
	specs := []Spec{
		{ID: "cpu.info", Description: "CPU model, core and thread counts", Binary: "cat", Args: []string{"/proc/cpuinfo"}, Kind: model.EvidenceCPU},
		{ID: "mem.info", Description: "Memory totals in bytes", Binary: "free", Args: []string{"-b"}, Kind: model.EvidenceMemory},
		{ID: "disk.df", Description: "Filesystem usage", Binary: "df", Args: []string{"-P", "-B1"}, Kind: model.EvidenceDisk},
		{ID: "disk.lsblk", Description: "Block devices", Binary: "lsblk", Args: []string{"-rno", "NAME,TYPE"}, Kind: model.EvidenceDisk},
		{ID: "hardware.gpu", Description: "GPU vendors", Binary: "lspci", Args: nil, Kind: model.EvidenceGPU},
		{ID: "services.failed", Description: "Failed systemd units", Binary: "systemctl", Args: []string{"--failed", "--no-legend", "--plain"}, Kind: model.EvidenceFailedUnits},
		{ID: "journal.errors", Description: "Recent journal errors", Binary: "journalctl", Args: []string{"-p", "err", "-n", "50", "--no-pager"}, Kind: model.EvidenceJournal},
		{ID: "pkg.query", Description: "Installed packages", Binary: "pacman", Args: []string{"-Q"}, Kind: model.EvidencePackages},
		{ID: "net.ip", Description: "Network interfaces and addresses", Binary: "ip", Args: []string{"addr"}, Kind: model.EvidenceNetwork},
		{ID: "system.uptime", Description: "Uptime and load", Binary: "uptime", Args: nil, Kind: model.EvidenceCPU},
	}

	byID := make(map[string]Spec, len(specs))
	for _, s := range specs {
		byID[s.ID] = s
	}
	return &Catalog{specs: byID}
}

// IsValid reports whether id names a catalog probe.
func (c *Catalog) IsValid(id string) bool {
	_, ok := c.specs[id]
	return ok
}

// Spec returns the catalog entry for id.
func (c *Catalog) Spec(id string) (Spec, bool) {
	s, ok := c.specs[id]
	return s, ok
}

// Available returns all probe ids in deterministic order.
func (c *Catalog) Available() []string {
	ids := make([]string, 0, len(c.specs))
	for id := range c.specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Kind returns the evidence kind a probe produces, or "" for unknown ids.
func (c *Catalog) Kind(id string) model.EvidenceKind {
	if s, ok := c.specs[id]; ok {
		return s.Kind
	}
	return ""
}
