package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for vegancheck.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vegancheck",
		Short: "Check product pages for vegan status",
		Long: `vegancheck checks product pages for vegan status.

Pages are fetched over HTTP (optionally through a SOCKS5 proxy) or read
from disk, normalized to markdown-like text and sent to the classifier.
Results are cached for 24 hours and recorded in a local history.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .vegancheck in current, XDG config or home directory)")
	cmd.PersistentFlags().String("db-dir", "",
		"Directory of the local database (default: XDG data directory)")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewIngredientsCmd())
	cmd.AddCommand(NewSweepCmd())
	cmd.AddCommand(NewHealthCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
