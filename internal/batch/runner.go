package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"catscan/internal/config"
	"catscan/internal/detector"
	"catscan/internal/logging"
	"catscan/internal/samples"
)

// Invoker produces an outcome for a single image. Satisfied by
// *detector.Detector; tests substitute stubs.
type Invoker interface {
	Detect(ctx context.Context, itemID int, imagePath string) detector.Outcome
}

// Observer receives each outcome as it is produced, before the Result event
// is emitted. Used to record run history without coupling the stream loop to
// storage.
type Observer func(item samples.Item, outcome detector.Outcome)

// Runner drives one batch: strictly sequential, one invocation in flight at
// a time, emitting the ordered event sequence to a sink. A Runner is cheap
// and single-use per run; concurrent runs each construct their own.
type Runner struct {
	root            string
	invoker         Invoker
	processingDelay time.Duration
	resultDelay     time.Duration
	logger          *slog.Logger
	observer        Observer
}

// New constructs a Runner for the configured samples root and pacing.
func New(cfg *config.Config, invoker Invoker, logger *slog.Logger) *Runner {
	return &Runner{
		root:            cfg.Paths.SamplesDir,
		invoker:         invoker,
		processingDelay: time.Duration(cfg.Stream.ProcessingDelayMillis) * time.Millisecond,
		resultDelay:     time.Duration(cfg.Stream.ResultDelayMillis) * time.Millisecond,
		logger:          logging.NewComponentLogger(logger, "batch"),
	}
}

// Observe registers an observer for per-item outcomes.
func (r *Runner) Observe(fn Observer) {
	r.observer = fn
}

// Run iterates items in enumeration order: Processing, invoke, Result for
// each, then Done. An invoker failure never aborts the batch; Done is
// emitted even when every item failed. The loop stops early only when the
// sink reports the transport gone or ctx is cancelled, in which case no
// further invocations are started and the in-flight child (if any) is left
// to its own timeout.
func (r *Runner) Run(ctx context.Context, items []samples.Item, sink Sink) error {
	started := time.Now()

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Send(Processing(item.ID)); err != nil {
			r.logger.Debug("transport closed mid-run",
				logging.Int("item_id", item.ID),
				logging.Error(err),
			)
			return fmt.Errorf("send processing event: %w", err)
		}
		if err := r.pause(ctx, r.processingDelay); err != nil {
			return err
		}

		outcome := r.invoker.Detect(ctx, item.ID, samples.Absolute(r.root, item))
		if r.observer != nil {
			r.observer(item, outcome)
		}

		if err := sink.Send(Result(item.ID, outcome.HasCat)); err != nil {
			return fmt.Errorf("send result event: %w", err)
		}
		if err := r.pause(ctx, r.resultDelay); err != nil {
			return err
		}
	}

	if err := sink.Send(Done()); err != nil {
		return fmt.Errorf("send done event: %w", err)
	}

	r.logger.Info("batch run complete",
		logging.Int("items", len(items)),
		logging.Duration("duration", time.Since(started)),
	)
	return nil
}

// pause sleeps for the configured pacing delay, waking early on cancellation.
func (r *Runner) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
