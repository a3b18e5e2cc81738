// Package runner executes independent tasks with a bounded number in flight.
//
// Tasks start in queue order. A failing or panicking task is recorded in its
// Outcome and never stops the remaining tasks. Cancelling the context stops
// new starts; tasks that never began are reported as skipped.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"creatorscope/internal/logging"
	"creatorscope/internal/telemetry"
)

// DefaultConcurrency applies when Options.Concurrency is not positive.
const DefaultConcurrency = 10

// Task is one unit of work. A nil Run succeeds immediately.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Options tunes a Run call.
type Options struct {
	Concurrency int
	Pool        string
	Logger      *slog.Logger
	Metrics     *telemetry.Metrics
}

// Outcome records what happened to the task at Index.
type Outcome struct {
	Index    int
	Name     string
	Err      error
	Skipped  bool
	Duration time.Duration
}

// Run executes every task and returns one Outcome per task, in input order.
func Run(ctx context.Context, tasks []Task, opts Options) []Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	pool := opts.Pool
	if pool == "" {
		pool = "default"
	}

	outcomes := make([]Outcome, len(tasks))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, task := range tasks {
		outcomes[i] = Outcome{Index: i, Name: task.Name}
		if ctx.Err() != nil {
			outcomes[i].Skipped = true
			outcomes[i].Err = ctx.Err()
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i].Skipped = true
				outcomes[i].Err = err
				return nil
			}
			start := time.Now()
			err := runTask(ctx, task)
			outcomes[i].Err = err
			outcomes[i].Duration = time.Since(start)
			opts.Metrics.ObserveTask(pool, err, outcomes[i].Duration.Seconds())
			if err != nil {
				logger.Warn("task failed",
					logging.String(logging.FieldEventType, "task_failed"),
					logging.String("pool", pool),
					logging.String("task", task.Name),
					logging.Error(err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func runTask(ctx context.Context, task Task) (err error) {
	if task.Run == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %q panicked: %v", task.Name, r)
		}
	}()
	return task.Run(ctx)
}

// Failed returns the outcomes that ran and returned an error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if o.Err != nil && !o.Skipped {
			out = append(out, o)
		}
	}
	return out
}

// Counts tallies succeeded, failed and skipped outcomes.
func Counts(outcomes []Outcome) (succeeded, failed, skipped int) {
	for _, o := range outcomes {
		switch {
		case o.Skipped:
			skipped++
		case o.Err != nil:
			failed++
		default:
			succeeded++
		}
	}
	return succeeded, failed, skipped
}
