package uploader

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// defaultConcurrency is the number of submissions run at once by default.
const defaultConcurrency = 4

// BatchSubmitter runs several submissions concurrently.
type BatchSubmitter struct {
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchSubmitter.
type BatchOption func(*BatchSubmitter)

// WithConcurrency sets the maximum number of submissions in flight.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchSubmitter) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets the logger for batch-level events.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchSubmitter) {
		b.logger = logger
	}
}

// NewBatchSubmitter returns a BatchSubmitter.
func NewBatchSubmitter(opts ...BatchOption) *BatchSubmitter {
	b := &BatchSubmitter{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Concurrency returns the configured limit.
func (b *BatchSubmitter) Concurrency() int {
	return b.concurrency
}

// Submit calls submit once per input, at most Concurrency at a time, and
// returns the errors indexed like inputs. A failing input does not stop the
// others; inputs not started before ctx is done get ctx's error.
func (b *BatchSubmitter) Submit(ctx context.Context, inputs []string, submit func(ctx context.Context, input string) error) []error {
	b.logger.Info("starting batch submission",
		"total", len(inputs),
		"concurrency", b.concurrency,
	)
	start := time.Now()

	errs := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				errs[i] = err
				return nil
			}

			b.logger.Debug("submitting", "input", input, "index", i+1, "total", len(inputs))
			if err := submit(gctx, input); err != nil {
				b.logger.Warn("submission failed", "input", input, "error", err)
				errs[i] = err
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors; failures are in errs

	b.logger.Info("batch submission complete",
		"total", len(inputs),
		"elapsed", time.Since(start),
	)
	return errs
}
