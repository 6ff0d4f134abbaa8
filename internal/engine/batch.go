package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/umerontech/riskcheck/internal/model"
	"golang.org/x/sync/errgroup"
)

// BatchResult pairs an assessment with the input index it came from and
// any error that prevented the assessment from completing.
type BatchResult struct {
	// Index is the position of the input in the original slice.
	Index int

	// Assessment is the completed assessment, nil when Err is set.
	Assessment *model.Assessment

	// Err records why this input could not be assessed.
	Err error
}

// BatchProcessor assesses multiple entities concurrently.
//
// Design decision: Batch work lives beside the Engine rather than
// inside Assess because:
//  1. Single assessments stay simple and deterministic
//  2. Concurrency limits apply per batch, not per engine
//  3. Callers can stream results through a callback
type BatchProcessor struct {
	engine      *Engine
	concurrency int
	logger      *slog.Logger

	results []BatchResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent assessments.
// Default is 4: each assessment already fans out into several network
// probes, so a modest limit keeps total connection count sane.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor running assessments on the
// given engine.
func NewBatchProcessor(engine *Engine, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		engine:      engine,
		concurrency: 4,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(bp)
	}

	return bp
}

// Process assesses every input concurrently, respecting the configured
// concurrency limit and context cancellation.
//
// Results preserve input order. Individual assessment failures are
// recorded in their BatchResult rather than aborting the batch; the
// error return indicates cancellation.
func (bp *BatchProcessor) Process(ctx context.Context, inputs []Input) ([]BatchResult, error) {
	bp.logger.Info("starting batch assessment",
		"total", len(inputs),
		"concurrency", bp.concurrency,
	)

	start := time.Now()
	bp.results = make([]BatchResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			assessment, err := bp.engine.Assess(ctx, in)

			bp.mu.Lock()
			bp.results[i] = BatchResult{Index: i, Assessment: assessment, Err: err}
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("assessment failed",
					"entity_type", in.EntityType,
					"error", err,
				)
				return nil
			}

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch assessment complete",
		"total", len(inputs),
		"elapsed", time.Since(start),
	)

	return bp.results, err
}
