package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/vegancheck/internal/model"
)

// DefaultConcurrency is the number of targets checked at once.
const DefaultConcurrency = 4

// BatchProcessor checks many targets concurrently.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline per target.
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many targets are checked at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch checks every target and returns the reports in target order.
// Failed checks still produce a report carrying the error. Targets skipped
// after cancellation are nil, and the cancellation is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.PageReport, error) {
	results := make([]*model.PageReport, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(report *model.PageReport, index int) {
		results[index] = report
	})
	return results, err
}

// ProcessBatchWithCallback checks every target and calls callback as each
// check finishes. callback runs on the worker goroutine.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.PageReport, index int),
) error {
	bp.logger.Info("starting batch", "targets", len(targets), "concurrency", bp.concurrency)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report := model.NewPageReport(target)
			if err := bp.pipelineFactory().Execute(ctx, report); err != nil {
				bp.logger.Warn("check failed", "target", target, "error", err)
			} else {
				bp.logger.Debug("check completed", "target", target, "index", i+1, "total", len(targets))
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete", "targets", len(targets), "elapsed", time.Since(start))
	return err
}
