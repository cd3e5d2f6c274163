package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"veracity/internal/model"
	"veracity/internal/probe"
	"veracity/internal/snapshot"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture a system snapshot",
	Long: `Snapshot probes memory, disk and failed services and stores the result
under ~/.veracity/snapshots. The fast path answers from these snapshots;
run this periodically (cron or a systemd timer) to keep them fresh.`,
	RunE: runSnapshot,
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show what changed between the last two snapshots",
	RunE:  runSnapshotDiff,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotDiffCmd)
}

// snapshotStore builds the store without touching the model backend:
// snapshot maintenance must work even when no API key is configured.
func snapshotStore() (*snapshot.Store, *model.Config) {
	cfg := model.DefaultConfig()
	_ = viper.Unmarshal(cfg) // partial configs are fine, defaults cover the rest
	dir := cfg.Snapshot.Dir
	if dir == "" {
		dir = snapshot.DefaultDir()
	}
	return snapshot.NewStore(dir, time.Duration(cfg.Snapshot.CacheTTLSeconds)*time.Second), cfg
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	store, cfg := snapshotStore()

	executor := probe.NewExecExecutor(probe.StandardCatalog(),
		time.Duration(cfg.Probes.TimeoutSeconds)*time.Second,
		cfg.Probes.MaxConcurrent)

	snap, err := snapshot.NewRefresher(store, executor).Refresh(context.Background())
	if err != nil {
		return fmt.Errorf("capture snapshot: %w", err)
	}

	fmt.Printf("Snapshot captured at %s\n", snap.CapturedAt.Format(time.RFC3339))
	fmt.Printf("  memory: %d%% used\n", snap.MemoryPercent())
	fmt.Printf("  mounts: %d tracked\n", len(snap.Disk))
	fmt.Printf("  failed services: %d\n", len(snap.FailedServices))
	return nil
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	store, _ := snapshotStore()

	deltas, err := store.Diff()
	if err != nil {
		return fmt.Errorf("diff snapshots: %w", err)
	}
	fmt.Println(model.FormatDeltas(deltas))
	return nil
}
