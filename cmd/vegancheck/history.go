package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/vegancheck/internal/config"
	"github.com/nao1215/vegancheck/internal/extension"
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the analysis history",
		Long: `History manages the list of recent analyses, newest first.

Only fresh analyses are recorded; results served from the cache are not.`,
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent analyses",
		Args:  cobra.NoArgs,
		RunE:  runHistoryListCmd,
	}
	addFormatFlags(list)

	cmd.AddCommand(list)
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the analysis history",
		Long:  `Clear deletes every history entry. Cached results are kept.`,
		Args:  cobra.NoArgs,
		RunE:  runHistoryClearCmd,
	})

	return cmd
}

func runHistoryListCmd(cmd *cobra.Command, _ []string) error {
	return withPanel(cmd, func(cfg *config.Config, panel *extension.Panel) error {
		if err := readFormatFlags(cmd, cfg); err != nil {
			return err
		}

		entries, err := panel.History(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read history: %w", err)
		}

		_, err = newReportWriter(cfg, cmd.OutOrStdout()).WriteHistory(entries)
		return err
	})
}

func runHistoryClearCmd(cmd *cobra.Command, _ []string) error {
	return withPanel(cmd, func(_ *config.Config, panel *extension.Panel) error {
		if err := panel.ClearHistory(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
		return nil
	})
}
