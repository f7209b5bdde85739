package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/vegancheck/internal/config"
)

// parseCommand resolves args against a fresh root command and parses the
// flags of the command it finds.
func parseCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()

	root := NewRootCmd()
	cmd, rest, err := root.Find(args)
	if err != nil {
		t.Fatalf("failed to find command: %v", err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("failed to parse flags: %v", err)
	}
	return cmd
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestNewAnalyzeCmd tests the analyze command flags.
func TestNewAnalyzeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAnalyzeCmd()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"endpoint", "e", config.DefaultEndpoint},
		{"timeout", "t", "1m0s"},
		{"fetch-timeout", "", "30s"},
		{"proxy", "p", ""},
		{"batch", "b", "4"},
		{"trigger", "", "auto"},
		{"page-logs", "", "false"},
		{"metrics", "", "false"},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"output", "o", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.def {
				t.Errorf("expected default %q, got %q", tt.def, flag.DefValue)
			}
		})
	}
}

// TestBuildAnalyzeConfig tests layering of defaults, file and flags.
func TestBuildAnalyzeConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "{}\n")
		cmd := parseCommand(t, "analyze", "--config", path, "https://shop.example/a")

		cfg, err := buildAnalyzeConfig(cmd, cmd.Flags().Args())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Endpoint != config.DefaultEndpoint {
			t.Errorf("unexpected endpoint %q", cfg.Endpoint)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("unexpected batch size %d", cfg.BatchSize)
		}
		if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://shop.example/a" {
			t.Errorf("unexpected targets %v", cfg.Targets)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("expected config path %q, got %q", path, cfg.ConfigFilePath)
		}
	})

	t.Run("file values survive unset flags", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "endpoint: http://127.0.0.1:9999\nproxy: 127.0.0.1:1080\n")
		cmd := parseCommand(t, "analyze", "--config", path, "page.html")

		cfg, err := buildAnalyzeConfig(cmd, cmd.Flags().Args())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Endpoint != "http://127.0.0.1:9999" {
			t.Errorf("expected file endpoint, got %q", cfg.Endpoint)
		}
		if cfg.ProxyAddress != "127.0.0.1:1080" {
			t.Errorf("expected file proxy, got %q", cfg.ProxyAddress)
		}
	})

	t.Run("flags override the file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "endpoint: http://127.0.0.1:9999\n")
		dbDir := t.TempDir()
		cmd := parseCommand(t, "analyze",
			"--config", path,
			"--db-dir", dbDir,
			"-e", "http://localhost:8000",
			"-t", "5s",
			"-b", "2",
			"--trigger", "manual",
			"--page-logs",
			"--metrics",
			"--markdown",
			"-o", "out/report.md",
			"-v",
			"a.html", "b.html",
		)

		cfg, err := buildAnalyzeConfig(cmd, cmd.Flags().Args())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Endpoint != "http://localhost:8000" {
			t.Errorf("unexpected endpoint %q", cfg.Endpoint)
		}
		if cfg.ClassifierTimeout != 5*time.Second {
			t.Errorf("unexpected timeout %v", cfg.ClassifierTimeout)
		}
		if cfg.BatchSize != 2 || cfg.Trigger != "manual" {
			t.Errorf("unexpected batch/trigger %d/%q", cfg.BatchSize, cfg.Trigger)
		}
		if !cfg.PageLogs || !cfg.Metrics || !cfg.MarkdownReport || !cfg.Verbose {
			t.Error("expected boolean flags to be set")
		}
		if cfg.ReportFile != "out/report.md" {
			t.Errorf("unexpected report file %q", cfg.ReportFile)
		}
		if cfg.DBDir != dbDir {
			t.Errorf("expected db dir %q, got %q", dbDir, cfg.DBDir)
		}
		if len(cfg.Targets) != 2 {
			t.Errorf("expected 2 targets, got %v", cfg.Targets)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := parseCommand(t, "analyze", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := buildAnalyzeConfig(cmd, nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "{}\n")
		cmd := parseCommand(t, "analyze", "--config", path, "-j", "-m", "a.html")
		_, err := buildAnalyzeConfig(cmd, cmd.Flags().Args())
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}
