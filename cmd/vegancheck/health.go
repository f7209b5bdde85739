package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/vegancheck/internal/classifier"
	"github.com/nao1215/vegancheck/internal/config"
	"github.com/nao1215/vegancheck/internal/extension"
)

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the classifier is reachable",
		Args:  cobra.NoArgs,
		RunE:  runHealthCmd,
	}
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint, "Base URL of the classifier")
	return cmd
}

func runHealthCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("endpoint") {
		if cfg.Endpoint, err = cmd.Flags().GetString("endpoint"); err != nil {
			return err
		}
	}
	if err := cfg.ValidateSettings(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	client, err := classifier.NewClient(cfg.Endpoint,
		classifier.WithUserAgent(cfg.UserAgent),
		classifier.WithHeaders(cfg.ClassifierHeaders),
	)
	if err != nil {
		return fmt.Errorf("failed to create classifier client: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), extension.DefaultHealthTimeout)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("classifier at %s is unhealthy: %w", client.Endpoint(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Classifier at %s is healthy\n", client.Endpoint())
	return nil
}
