package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/vegancheck/internal/analysis"
	"github.com/nao1215/vegancheck/internal/cache"
	"github.com/nao1215/vegancheck/internal/classifier"
	"github.com/nao1215/vegancheck/internal/config"
	"github.com/nao1215/vegancheck/internal/extension"
	"github.com/nao1215/vegancheck/internal/fetch"
	vlog "github.com/nao1215/vegancheck/internal/log"
	"github.com/nao1215/vegancheck/internal/metrics"
	"github.com/nao1215/vegancheck/internal/model"
	"github.com/nao1215/vegancheck/internal/normalize"
	"github.com/nao1215/vegancheck/internal/pipeline"
	"github.com/nao1215/vegancheck/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [url-or-file]...",
		Short: "Check product pages for vegan status",
		Long: `Analyze loads each page and checks whether the product is vegan.

The page runs through the same contexts as the browser extension: purchase
controls ("Add to Cart", "Buy Now", ...) are armed and clicked, the page
text is extracted and sent to the classifier, and the panel shows the
verdict. Pages without purchase controls use the panel's manual trigger.

Results are cached for 24 hours, so checking a page twice only calls the
classifier once.

Examples:
  # Check a product page
  vegancheck analyze https://shop.example/oat-milk

  # Check a saved page
  vegancheck analyze ./gummy-bears.html

  # Check several pages, two at a time, and write Markdown
  vegancheck analyze -b 2 --markdown -o report.md url1 url2 url3

  # Use a local classifier and print the Prometheus counters
  vegancheck analyze -e http://127.0.0.1:8000 --metrics page.html`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Classifier flags
	cmd.Flags().StringP("endpoint", "e", config.DefaultEndpoint,
		"Base URL of the classifier")
	cmd.Flags().DurationP("timeout", "t", config.DefaultClassifierTimeout,
		"Timeout for each classifier request")

	// Fetch flags
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout,
		"Timeout for each page download")
	cmd.Flags().StringP("proxy", "p", "",
		"Download pages through the SOCKS5 proxy at this address (e.g., 127.0.0.1:1080)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header for page downloads and classifier requests")

	// Behavior flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of pages checked concurrently")
	cmd.Flags().String("trigger", config.DefaultTrigger,
		"How analysis is started: auto, click or manual")
	cmd.Flags().Bool("page-logs", false,
		"Print the page context debug log")
	cmd.Flags().Bool("metrics", false,
		"Print Prometheus counters to stderr after the run")

	// Report flags
	addFormatFlags(cmd)
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file (creates directories if needed)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runAnalyze(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildAnalyzeConfig layers the analyze flags over the loaded config.
// Only flags set on the command line override config file values.
func buildAnalyzeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		if cfg.Endpoint, err = flags.GetString("endpoint"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return nil, err
		}
	}
	if cfg.ClassifierTimeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = flags.GetDuration("fetch-timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.Trigger, err = flags.GetString("trigger"); err != nil {
		return nil, err
	}
	if cfg.PageLogs, err = flags.GetBool("page-logs"); err != nil {
		return nil, err
	}
	if cfg.Metrics, err = flags.GetBool("metrics"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if err := readFormatFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Targets = args
	return cfg, nil
}

// analyzer holds what every page check shares.
type analyzer struct {
	cfg          *config.Config
	store        *cache.Store
	orchestrator *analysis.Orchestrator
	classifier   *classifier.Client
	metrics      *metrics.Metrics
	errOut       io.Writer
	logger       *slog.Logger
}

// runAnalyze checks every target and writes one report per page.
func runAnalyze(ctx context.Context, cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"targets", cfg.Targets,
		"endpoint", cfg.Endpoint,
		"batchSize", cfg.BatchSize,
		"trigger", cfg.Trigger,
	)

	store, db, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	client, err := classifier.NewClient(cfg.Endpoint,
		classifier.WithTimeout(cfg.ClassifierTimeout),
		classifier.WithUserAgent(cfg.UserAgent),
		classifier.WithHeaders(cfg.ClassifierHeaders),
	)
	if err != nil {
		return fmt.Errorf("failed to create classifier client: %w", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics {
		m = metrics.New()
	}

	a := &analyzer{
		cfg:   cfg,
		store: store,
		orchestrator: analysis.New(store, client,
			analysis.WithNotifier(analysis.NewBadgeNotifier(logger)),
			analysis.WithMetrics(m),
			analysis.WithLogger(logger),
		),
		classifier: client,
		metrics:    m,
		errOut:     errOut,
		logger:     logger,
	}

	if err := a.checkProxy(ctx); err != nil {
		return err
	}

	output, closeOutput, err := openReportOutput(cfg, out)
	if err != nil {
		return err
	}
	defer closeOutput()
	writer := newReportWriter(cfg, output)

	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		err = a.runBatch(ctx, writer, errOut)
	} else {
		err = a.runSequential(ctx, writer, errOut)
	}

	if m != nil {
		if writeErr := m.WriteText(errOut); writeErr != nil {
			logger.Error("failed to write metrics", "error", writeErr)
		}
	}
	return err
}

// checkProxy verifies the SOCKS5 proxy before any page is fetched.
func (a *analyzer) checkProxy(ctx context.Context) error {
	if a.cfg.ProxyAddress == "" {
		return nil
	}

	fetcher, err := fetch.NewFetcher(fetch.WithProxy(a.cfg.ProxyAddress), fetch.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("failed to create fetcher: %w", err)
	}
	if status := fetcher.CheckProxy(ctx); status != fetch.ProxyStatusOK {
		return fmt.Errorf("proxy check failed: %s (make sure a SOCKS5 proxy is running at %s)",
			status, a.cfg.ProxyAddress)
	}

	a.logger.Info("proxy connection verified", "address", a.cfg.ProxyAddress)
	return nil
}

// runSequential checks targets one at a time with their site settings.
func (a *analyzer) runSequential(ctx context.Context, writer report.Writer, errOut io.Writer) error {
	var failed int
	for _, target := range a.cfg.Targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, err := a.pipelineFor(a.cfg.SiteConfigs.GetSiteConfig(target))
		if err != nil {
			return err
		}

		pageReport := model.NewPageReport(target)
		start := time.Now()
		if err := p.Execute(ctx, pageReport); err != nil {
			a.logger.Error("analysis failed", "target", target, "error", err)
			fmt.Fprintf(errOut, "Analysis error for %s: %v\n", target, err)
			failed++
		} else {
			a.logger.Info("analysis completed", "target", target, "elapsed", time.Since(start).Round(time.Millisecond))
		}

		if _, err := writer.Write(pageReport); err != nil {
			a.logger.Error("report failed", "target", target, "error", err)
		}
	}

	return a.failure(failed)
}

// runBatch checks targets concurrently. Every page uses the default site
// settings because pipelines are built before targets are assigned.
func (a *analyzer) runBatch(ctx context.Context, writer report.Writer, errOut io.Writer) error {
	if len(a.cfg.SiteConfigs.Sites) > 0 {
		a.logger.Warn("batch analysis uses default site config only; per-site cookies, headers and triggers are ignored",
			"siteCount", len(a.cfg.SiteConfigs.Sites))
		fmt.Fprintln(errOut, "Warning: site-specific settings are ignored in batch mode. Use --batch 1 to apply them.")
	}

	defaults := a.cfg.SiteConfigs.Defaults
	if _, err := a.pipelineFor(defaults); err != nil {
		return err
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			p, _ := a.pipelineFor(defaults) //nolint:errcheck // validated above
			return p
		},
		pipeline.WithConcurrency(a.cfg.BatchSize),
		pipeline.WithBatchLogger(a.logger),
	)

	var (
		mu     sync.Mutex
		failed int
	)
	err := bp.ProcessBatchWithCallback(ctx, a.cfg.Targets, func(pageReport *model.PageReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		if !pageReport.Succeeded() {
			failed++
		}
		fmt.Fprintf(errOut, "[%d/%d] Analysis completed: %s\n", index+1, len(a.cfg.Targets), pageReport.Target)
		if _, err := writer.Write(pageReport); err != nil {
			a.logger.Error("report failed", "target", pageReport.Target, "error", err)
		}
	})
	if err != nil {
		return err
	}
	return a.failure(failed)
}

// pipelineFor builds the fetch, parse, cart_scan and analyze pipeline for
// one site.
func (a *analyzer) pipelineFor(site config.SiteConfig) (*pipeline.Pipeline, error) {
	fetcher, err := fetch.NewFetcher(
		fetch.WithProxy(a.cfg.ProxyAddress),
		fetch.WithTimeout(a.cfg.FetchTimeout),
		fetch.WithUserAgent(a.cfg.UserAgent),
		fetch.WithMaxBodySize(a.cfg.MaxBodySize),
		fetch.WithCookie(site.Cookie),
		fetch.WithHeaders(site.Headers),
		fetch.WithLogger(a.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}

	trigger := a.cfg.Trigger
	if site.Trigger != "" {
		trigger = site.Trigger
	}

	pageLogger := vlog.NewLogger(a.errOut, vlog.Options{Verbose: true})

	sessionOpts := []extension.SessionOption{
		extension.WithPageOptions(
			extension.WithExtractorOptions(normalize.WithExtraSelectors(site.ExtraStripSelectors)),
			extension.WithGateTimeout(a.cfg.GateTimeout),
			extension.WithLogSwitch(vlog.NewSwitch(a.cfg.PageLogs)),
			extension.WithPageLogger(pageLogger),
		),
		extension.WithBackgroundOptions(
			extension.WithHealthChecker(a.classifier),
			extension.WithSweeper(cache.NewSweeper(a.store, cache.DefaultSweepInterval, a.logger)),
		),
		extension.WithPanelOptions(
			extension.WithPollInterval(a.cfg.PollInterval),
			extension.WithPollTimeout(a.cfg.PollTimeout),
		),
	}

	return pipeline.DefaultPipeline(fetcher, a.orchestrator, a.store,
		[]pipeline.Option{
			pipeline.WithLogger(a.logger),
		},
		pipeline.WithTrigger(trigger),
		pipeline.WithSessionOptions(sessionOpts...),
		pipeline.WithAnalyzeMetrics(a.metrics),
		pipeline.WithAnalyzeLogger(a.logger),
	), nil
}

// failure returns an error when any page check failed.
func (a *analyzer) failure(failed int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d page checks failed", failed, len(a.cfg.Targets))
}
