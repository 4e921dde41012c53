package cli

import (
	"fmt"
	"time"

	"github.com/containerd/errdefs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wesleyorama2/reservoir/internal/output"
	"github.com/wesleyorama2/reservoir/reservoir"
)

func newStressCmd(a *app) *cobra.Command {
	var (
		flags      reservoirFlags
		goroutines int
		updates    int
		snapshots  int
	)

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Update a reservoir from many goroutines and check its accounting",
		Long: `Runs concurrent writers against one reservoir while readers take
snapshots, then checks that no update was lost: the count must equal
goroutines x updates and the size must equal the smaller of the count and
the reservoir capacity.`,
		Example: `  reservoir stress --type uniform --goroutines 16 --updates 100000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if goroutines < 1 || updates < 1 || snapshots < 0 {
				return errors.Wrap(errdefs.ErrInvalidArgument, "--goroutines and --updates must be positive")
			}

			cfg, err := flags.load(cmd, a.logger)
			if err != nil {
				return err
			}
			r, kind, err := newReservoir(cfg, a.logger)
			if err != nil {
				return err
			}
			f, err := a.formatter(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			a.logger.WithFields(logrus.Fields{
				"reservoir":  kind,
				"goroutines": goroutines,
				"updates":    updates,
			}).Info("starting stress run")

			start := time.Now()
			stress(r, goroutines, updates, snapshots)
			report := check(r, kind, capacity(cfg, kind), goroutines, updates)
			report.Elapsed = time.Since(start).Round(time.Microsecond).String()

			if err := f.WriteStress(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			return stressError(report)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&goroutines, "goroutines", "g", 8, "number of concurrent writers")
	cmd.Flags().IntVarP(&updates, "updates", "n", 10000, "updates per writer")
	cmd.Flags().IntVar(&snapshots, "snapshots", 100, "snapshots taken concurrently with the writers")
	return cmd
}

// stress runs the writers and readers to completion.
func stress(r reservoir.Reservoir, goroutines, updates, snapshots int) {
	var g errgroup.Group
	for w := 0; w < goroutines; w++ {
		label := fmt.Sprintf("writer-%d", w)
		g.Go(func() error {
			for i := 1; i <= updates; i++ {
				r.Update(int64(i), label)
			}
			return nil
		})
	}
	g.Go(func() error {
		for i := 0; i < snapshots; i++ {
			r.GetSnapshot(false).Percentile99()
		}
		return nil
	})
	_ = g.Wait()
}

func check(r reservoir.Reservoir, kind reservoir.Kind, capacity, goroutines, updates int) output.StressReport {
	want := int64(goroutines) * int64(updates)
	snapshot := r.GetSnapshot(false)

	report := output.StressReport{
		Reservoir:  kind.String(),
		Goroutines: goroutines,
		Updates:    updates,
		Count:      snapshot.Count(),
		Size:       snapshot.Size(),
		Capacity:   capacity,
	}

	if report.Count != want {
		report.Violations = append(report.Violations,
			fmt.Sprintf("count is %d, want %d", report.Count, want))
	}
	wantSize := want
	if int64(capacity) < wantSize {
		wantSize = int64(capacity)
	}
	if int64(report.Size) != wantSize {
		report.Violations = append(report.Violations,
			fmt.Sprintf("size is %d, want %d", report.Size, wantSize))
	}
	if snapshot.Min() < 1 || snapshot.Max() > int64(updates) {
		report.Violations = append(report.Violations,
			fmt.Sprintf("extremes [%d, %d] outside [1, %d]", snapshot.Min(), snapshot.Max(), updates))
	}
	return report
}

// stressError returns nil for a passing report.
func stressError(report output.StressReport) error {
	if report.Passed() {
		return nil
	}
	return errors.Errorf("stress run failed with %d violation(s)", len(report.Violations))
}
