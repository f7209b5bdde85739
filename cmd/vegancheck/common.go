package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/vegancheck/internal/cache"
	"github.com/nao1215/vegancheck/internal/config"
	vlog "github.com/nao1215/vegancheck/internal/log"
	"github.com/nao1215/vegancheck/internal/report"
	"github.com/nao1215/vegancheck/internal/storage"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getPersistentString reads a string flag defined on the root command.
func getPersistentString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return value
}

// loadConfig builds a Config from the defaults, the config file and the
// persistent flags. A config file given with --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	explicitPath := getPersistentString(cmd, "config")
	configPath := config.FindConfigFile(explicitPath)

	switch {
	case configPath != "":
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(f)
		cfg.ConfigFilePath = configPath
	case explicitPath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicitPath)
	}

	if dbDir := getPersistentString(cmd, "db-dir"); dbDir != "" {
		cfg.DBDir = dbDir
	}
	return cfg, nil
}

// newLogger creates the CLI logger on the command's error stream.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	return vlog.NewLogger(cmd.ErrOrStderr(), vlog.Options{Verbose: verbose})
}

// openStore opens the SQLite database in cfg.DBDir and wraps it in a cache
// store. The caller closes the returned database.
func openStore(cfg *config.Config, logger *slog.Logger) (*cache.Store, *storage.SQLite, error) {
	db, err := storage.Open(cfg.DBDir, storage.DefaultOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())

	store := cache.NewStore(db,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithHistoryLimit(cfg.HistoryLimit),
		cache.WithLogger(logger),
	)
	return store, db, nil
}

// addFormatFlags adds the report format flags shared by analyze and history.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
}

// readFormatFlags copies the format flags into cfg.
func readFormatFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.JSONReport && cfg.MarkdownReport {
		return config.ErrConflictingReportFormats
	}
	return nil
}

// newReportWriter returns the writer for the configured format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// openReportOutput returns where reports go: cfg.ReportFile when set,
// otherwise stdout. The returned close function is never nil.
func openReportOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
