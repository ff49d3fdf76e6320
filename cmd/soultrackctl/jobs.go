package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"soultrack/followup/internal/db"
	"soultrack/followup/internal/db/repositories"
	"soultrack/followup/internal/events"
	"soultrack/followup/internal/jobs"
	"soultrack/followup/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	reconcileChurch int64
	reconcileBranch int64
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Purge refused contacts past the retention window",
	RunE:  runSweep,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Flag people left in follow-up after integration",
	Long: `Scan for members that still have a contact or follow-up row and record
each one for manual review. Without --church the whole database is scanned.`,
	RunE: runReconcile,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Mark a reconciliation row as handled",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	reconcileCmd.AddCommand(resolveCmd)
	reconcileCmd.Flags().Int64Var(&reconcileChurch, "church", 0, "Church id to scan (0 scans every church)")
	reconcileCmd.Flags().Int64Var(&reconcileBranch, "branch", 0, "Branch id to scan (requires --church)")
}

// openJobs opens the store and builds the jobs without scheduling anything.
func openJobs() (*jobs.Jobs, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	gdb, sdb, err := db.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	repos := repositories.NewSet(gdb, sdb)
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	j := jobs.NewJobs(gdb, repos, cfg.RetentionMonths, reg, events.NoopPublisher{})
	return j, func() { sdb.Close() }, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	j, closeFn, err := openJobs()
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := j.Sweep.Sweep(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	return printResult(cmd, result, fmt.Sprintf("Deleted %d follow-ups and %d contacts refused before %s",
		result.FollowUps, result.Contacts, result.Cutoff.Format(time.RFC3339)))
}

func runReconcile(cmd *cobra.Command, args []string) error {
	if reconcileBranch != 0 && reconcileChurch == 0 {
		return fmt.Errorf("--branch requires --church")
	}
	j, closeFn, err := openJobs()
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := j.Reconcile.Reconcile(cmd.Context(), reconcileChurch, reconcileBranch)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d orphan rows, %d newly recorded", len(result.Orphans), result.Recorded)
	for _, o := range result.Orphans {
		fmt.Fprintf(&b, "\n  %s #%d  %s  %s", o.SourceTable, o.SourceID, o.ContactKey, o.Telephone)
	}
	return printResult(cmd, result, b.String())
}

func runResolve(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid reconciliation id %q", args[0])
	}
	j, closeFn, err := openJobs()
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := j.Reconcile.Resolve(cmd.Context(), id, 0, 0, time.Now())
	if err != nil {
		return err
	}
	return printResult(cmd, rec, fmt.Sprintf("Resolved reconciliation #%d (%s in %s)", rec.ID, rec.ContactKey, rec.SourceTable))
}
