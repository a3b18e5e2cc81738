package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"creatorscope/internal/logging"
	"creatorscope/internal/store"
	"creatorscope/internal/telemetry"
)

// DefaultBatchSize is the number of creators per oracle call.
const DefaultBatchSize = 10

// Source supplies the creator population, snapshotted once per run.
type Source interface {
	ListCreators(ctx context.Context) ([]store.CreatorMetrics, error)
	ListChannels(ctx context.Context) ([]store.ChannelMetrics, error)
}

// Sink persists analysis results.
type Sink interface {
	UpsertAnalysisResult(ctx context.Context, r store.AnalysisResult) error
}

// Progress is reported before each batch.
type Progress struct {
	Batch        int `json:"batch"`
	TotalBatches int `json:"total_batches"`
	Analyzed     int `json:"analyzed"`
	Total        int `json:"total"`
}

// Summary describes a finished run.
type Summary struct {
	RunID          string        `json:"run_id"`
	Success        bool          `json:"success"`
	Analyzed       int           `json:"analyzed_count"`
	Total          int           `json:"total_creators"`
	TotalBatches   int           `json:"total_batches"`
	SkippedBatches int           `json:"skipped_batches"`
	Duration       time.Duration `json:"-"`
	DurationMillis int64         `json:"duration_ms"`
}

// Options configures a Pipeline.
type Options struct {
	Source       Source
	Sink         Sink
	Oracle       Oracle
	ProfileNames []string
	BatchSize    int
	BioMaxLength int
	Logger       *slog.Logger
	Metrics      *telemetry.Metrics
}

// Pipeline runs batch scoring.
type Pipeline struct {
	source    Source
	sink      Sink
	oracle    Oracle
	names     []string
	batchSize int
	bioMax    int
	logger    *slog.Logger
	metrics   *telemetry.Metrics
	now       func() time.Time
}

// NewPipeline validates options and builds a Pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Source == nil || opts.Sink == nil || opts.Oracle == nil {
		return nil, errors.New("scoring pipeline: source, sink and oracle are required")
	}
	if len(opts.ProfileNames) == 0 {
		return nil, errors.New("scoring pipeline: at least one profile is required")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	bioMax := opts.BioMaxLength
	if bioMax <= 0 {
		bioMax = DefaultBioMaxLength
	}
	return &Pipeline{
		source:    opts.Source,
		sink:      opts.Sink,
		oracle:    opts.Oracle,
		names:     append([]string(nil), opts.ProfileNames...),
		batchSize: batchSize,
		bioMax:    bioMax,
		logger:    logging.NewComponentLogger(opts.Logger, "scoring"),
		metrics:   opts.Metrics,
		now:       time.Now,
	}, nil
}

// Run scores every stored creator. progress, when non-nil, is called before
// each batch. The returned error is non-nil only for cancellation, a failed
// population read or a failed store write.
func (p *Pipeline) Run(ctx context.Context, progress func(Progress)) (Summary, error) {
	start := p.now()
	summary := Summary{RunID: uuid.NewString()}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, p.logger)
	finish := func() Summary {
		summary.Duration = p.now().Sub(start)
		summary.DurationMillis = summary.Duration.Milliseconds()
		return summary
	}

	creators, err := p.source.ListCreators(ctx)
	if err != nil {
		return finish(), fmt.Errorf("list instagram creators: %w", err)
	}
	channels, err := p.source.ListChannels(ctx)
	if err != nil {
		return finish(), fmt.Errorf("list youtube channels: %w", err)
	}
	candidates := Candidates(creators, channels, p.bioMax)
	summary.Total = len(candidates)
	if len(candidates) == 0 {
		summary.Success = true
		logger.Info("no creators to analyze", logging.String(logging.FieldEventType, "analysis_empty"))
		return finish(), nil
	}

	batches := Partition(candidates, p.batchSize)
	summary.TotalBatches = len(batches)
	logger.Info("analysis started",
		logging.String(logging.FieldEventType, "analysis_started"),
		logging.Int("creators", len(candidates)),
		logging.Int("batches", len(batches)),
		logging.Int("profiles", len(p.names)),
	)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			logger.Warn("analysis cancelled",
				logging.String(logging.FieldEventType, "analysis_cancelled"),
				logging.Int("batch", i+1),
				logging.Int("analyzed", summary.Analyzed),
			)
			return finish(), err
		}
		if progress != nil {
			progress(Progress{Batch: i + 1, TotalBatches: len(batches), Analyzed: summary.Analyzed, Total: len(candidates)})
		}

		results, err := p.oracle.Score(ctx, batch)
		p.metrics.ObserveBatch(err)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return finish(), ctxErr
			}
			summary.SkippedBatches++
			logging.WarnWithContext(logger, "batch skipped", "analysis_batch_failed",
				logging.Int("batch", i+1),
				logging.Int("size", len(batch)),
				logging.String(logging.FieldErrorHint, "check the LLM endpoint, key and model"),
				logging.String(logging.FieldImpact, "creators in this batch keep their previous results"),
				logging.Error(err),
			)
			continue
		}

		written, err := p.reconcile(ctx, batch, results)
		summary.Analyzed += written
		p.metrics.AddAnalyzed(written)
		if err != nil {
			return finish(), err
		}
		logger.Debug("batch analyzed",
			logging.Int("batch", i+1),
			logging.Int("results", len(results)),
			logging.Int("written", written),
		)
	}

	summary.Success = true
	out := finish()
	logger.Info("analysis finished",
		logging.String(logging.FieldEventType, "analysis_finished"),
		logging.Int("analyzed", out.Analyzed),
		logging.Int("skipped_batches", out.SkippedBatches),
		logging.Duration("duration", out.Duration),
	)
	return out, nil
}

// reconcile matches results to batch members by id and writes one row per
// matched member. Unknown ids and repeated ids are ignored.
func (p *Pipeline) reconcile(ctx context.Context, batch []Candidate, results []Result) (int, error) {
	members := make(map[string]Candidate, len(batch))
	for _, c := range batch {
		if _, ok := members[c.ID]; !ok {
			members[c.ID] = c
		}
	}
	written := 0
	done := make(map[string]struct{}, len(results))
	for _, r := range results {
		member, ok := members[r.CreatorID]
		if !ok {
			p.logger.Debug("result for unknown creator ignored", logging.String(logging.FieldCreatorID, r.CreatorID))
			continue
		}
		if _, dup := done[r.CreatorID]; dup {
			continue
		}
		done[r.CreatorID] = struct{}{}

		bestProfile, bestScore := BestFit(r.Scores, p.names, r.BestFit)
		err := p.sink.UpsertAnalysisResult(ctx, store.AnalysisResult{
			Platform:       member.Platform,
			CreatorID:      member.ID,
			CreatorName:    member.Name,
			ProfileScores:  r.Scores,
			BestFitProfile: bestProfile,
			BestFitScore:   bestScore,
			Reasoning:      r.Reasoning,
		})
		if err != nil {
			return written, fmt.Errorf("store analysis result for %s: %w", store.AnalysisID(member.Platform, member.ID), err)
		}
		written++
	}
	return written, nil
}
