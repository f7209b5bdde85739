package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/vegancheck/internal/config"
	"github.com/nao1215/vegancheck/internal/extension"
)

// NewIngredientsCmd creates the ingredients command and its subcommands.
func NewIngredientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingredients",
		Short: "Manage the ingredients you avoid",
		Long: `Ingredients manages your avoided-ingredient list.

The list is sent with every analysis. When the classifier finds one of
these ingredients, the result is flagged even for vegan products.
Ingredients are trimmed and stored without duplicates.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List avoided ingredients",
		Args:  cobra.NoArgs,
		RunE:  runIngredientsListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <ingredient>",
		Short: "Add an avoided ingredient",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngredientsAddCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <ingredient>",
		Short: "Remove an avoided ingredient",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngredientsRemoveCmd,
	})

	return cmd
}

// withPanel opens the store and runs fn with a panel bound to it, the
// way the extension's settings and history views work without a page.
func withPanel(cmd *cobra.Command, fn func(*config.Config, *extension.Panel) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, cfg.Verbose)
	store, db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(cfg, extension.NewPanel(nil, store, "", extension.WithPanelLogger(logger)))
}

func runIngredientsListCmd(cmd *cobra.Command, _ []string) error {
	return withPanel(cmd, func(_ *config.Config, panel *extension.Panel) error {
		ingredients, err := panel.Ingredients(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to read ingredients: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ingredients) == 0 {
			fmt.Fprintln(out, "No avoided ingredients")
			return nil
		}
		for _, ingredient := range ingredients {
			fmt.Fprintln(out, ingredient)
		}
		return nil
	})
}

func runIngredientsAddCmd(cmd *cobra.Command, args []string) error {
	ingredient := strings.Join(args, " ")
	return withPanel(cmd, func(_ *config.Config, panel *extension.Panel) error {
		if err := panel.AddIngredient(cmd.Context(), ingredient); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %q\n", strings.TrimSpace(ingredient))
		return nil
	})
}

func runIngredientsRemoveCmd(cmd *cobra.Command, args []string) error {
	ingredient := strings.Join(args, " ")
	return withPanel(cmd, func(_ *config.Config, panel *extension.Panel) error {
		if err := panel.RemoveIngredient(cmd.Context(), ingredient); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", strings.TrimSpace(ingredient))
		return nil
	})
}
