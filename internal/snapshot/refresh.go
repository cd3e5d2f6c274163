package snapshot

import (
	"context"
	"strings"
	"time"

	"veracity/internal/model"
	"veracity/internal/probe"
)

// snapshotProbes are the probes a snapshot is built from, in execution order.
var snapshotProbes = []string{"disk.df", "mem.info", "services.failed"}

// Refresher captures fresh snapshots through the probe executor and
// persists them. It is the only writer to the store.
type Refresher struct {
	store    *Store
	executor probe.Executor
}

// NewRefresher creates a refresher writing to store.
func NewRefresher(store *Store, executor probe.Executor) *Refresher {
	return &Refresher{store: store, executor: executor}
}

// Refresh captures and saves a new snapshot, returning it. Individual probe
// failures leave their fields empty rather than failing the capture.
func (r *Refresher) Refresh(ctx context.Context) (*model.SystemSnapshot, error) {
	evidence := r.executor.Execute(ctx, snapshotProbes)
	parsed := probe.ParseEvidence(evidence)

	snap := &model.SystemSnapshot{
		CapturedAt: time.Now().UTC(),
		Disk:       make(map[string]int),
	}
	if parsed.Memory != nil {
		snap.MemoryTotalBytes = parsed.Memory.TotalBytes
		snap.MemoryUsedBytes = parsed.Memory.UsedBytes
	}
	for _, d := range parsed.Disks {
		// Pseudo filesystems (tmpfs, devtmpfs, efivarfs) say nothing about
		// real disk pressure.
		if !strings.HasPrefix(d.Filesystem, "/") {
			continue
		}
		snap.Disk[d.Mount] = d.PercentUsed
	}
	for _, svc := range parsed.Services {
		snap.FailedServices = append(snap.FailedServices, svc.Name)
	}

	if err := r.store.Save(snap); err != nil {
		return nil, err
	}
	return snap, nil
}
