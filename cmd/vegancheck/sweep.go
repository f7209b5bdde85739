package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/vegancheck/internal/metrics"
)

// NewSweepCmd creates the sweep command.
func NewSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired cached results",
		Long: `Sweep removes cached analyses older than the cache lifetime.

The same sweep runs whenever analyze starts a page check, so this is only
needed to shrink the database by hand.`,
		Args: cobra.NoArgs,
		RunE: runSweepCmd,
	}
	cmd.Flags().Bool("metrics", false, "Print Prometheus counters to stderr after the sweep")
	return cmd
}

func runSweepCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Metrics, err = cmd.Flags().GetBool("metrics"); err != nil {
		return err
	}

	logger := newLogger(cmd, cfg.Verbose)
	store, db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := store.Sweep(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to sweep cache: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired result(s)\n", removed)

	if cfg.Metrics {
		m := metrics.New()
		m.RecordSweep(removed)
		return m.WriteText(cmd.ErrOrStderr())
	}
	return nil
}
