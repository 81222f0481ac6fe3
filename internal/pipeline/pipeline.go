// Package pipeline coordinates the full topic-index run: preprocess,
// extract, validate, order, synthesize. Stages stay synchronous; only
// extraction fans out, inside its own worker pool.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SamarthTiwari16/DepoIndex/internal/artifact"
	"github.com/SamarthTiwari16/DepoIndex/internal/common"
	"github.com/SamarthTiwari16/DepoIndex/internal/extractor"
	"github.com/SamarthTiwari16/DepoIndex/internal/toc"
	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
	"github.com/SamarthTiwari16/DepoIndex/internal/transcript"
)

// Stats summarizes one run for logs and the artifact metadata.
type Stats struct {
	Segments     int
	Candidates   int
	Valid        int
	Invalid      int
	FallbackMode bool
	Elapsed      time.Duration
}

// Result is the pipeline's output: the canonical topic list, the invalid
// side-channel, and the TOC document. Nothing in it is mutated after Run
// returns.
type Result struct {
	RunID   uuid.UUID
	Topics  []topic.Topic
	Invalid []topic.Rejection
	TOC     toc.TocDocument
	Stats   Stats
}

// Pipeline wires the stages together.
type Pipeline struct {
	Logger      *slog.Logger
	Extractor   *extractor.Extractor
	Synthesizer *toc.Synthesizer
}

func New(logger *slog.Logger, ex *extractor.Extractor, synth *toc.Synthesizer) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Logger: logger, Extractor: ex, Synthesizer: synth}
}

// Run executes the whole pipeline over raw transcript text.
//
// An input with no usable content aborts with ErrEmptyInput. A run that
// finds zero valid topics is not an error: it returns an empty canonical
// list and an empty TOC so callers can tell "nothing found" from
// "crashed".
func (p *Pipeline) Run(ctx context.Context, rawText string) (Result, error) {
	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID.String())
	start := time.Now()

	lines := transcript.Clean(rawText)
	segs := transcript.SegmentLines(lines)
	if len(segs) == 0 {
		p.Logger.Error("pipeline.empty_input", "run_id", runID)
		return Result{}, common.WrapError(common.ErrEmptyInput, "preprocess")
	}
	p.Logger.Info("pipeline.preprocess.ok",
		"run_id", runID, "lines", len(lines), "segments", len(segs))

	candidates := p.Extractor.ExtractAll(ctx, segs)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	p.Logger.Info("pipeline.extract.ok",
		"run_id", runID, "candidates", len(candidates))

	valid, invalid := topic.ValidateTopics(candidates)
	for _, rej := range invalid {
		p.Logger.Warn("pipeline.validate.rejected",
			"run_id", runID, "position", rej.Position, "reason", rej.Reason)
	}

	ordered, err := topic.Order(valid)
	if err != nil {
		// Validation let an unsortable record through; that is a bug,
		// not a condition to paper over.
		p.Logger.Error("pipeline.order.invariant", "run_id", runID, "error", err)
		return Result{}, err
	}

	if len(ordered) == 0 {
		p.Logger.Warn("pipeline.no_topics", "run_id", runID)
	}

	tocDoc := p.Synthesizer.Synthesize(ctx, ordered)

	res := Result{
		RunID:   runID,
		Topics:  ordered,
		Invalid: invalid,
		TOC:     tocDoc,
		Stats: Stats{
			Segments:     len(segs),
			Candidates:   len(candidates),
			Valid:        len(ordered),
			Invalid:      len(invalid),
			FallbackMode: p.Extractor.Gen == nil,
			Elapsed:      time.Since(start),
		},
	}
	p.Logger.Info("pipeline.run.ok",
		"run_id", runID,
		"topics", len(ordered),
		"invalid", len(invalid),
		"fallback_mode", res.Stats.FallbackMode,
		"elapsed_ms", res.Stats.Elapsed.Milliseconds(),
	)
	return res, nil
}

// Artifact packages the result as the persisted JSON document.
func (r Result) Artifact(source string) artifact.Document {
	return artifact.Document{
		Metadata: map[string]any{
			"run_id":       r.RunID.String(),
			"generated_at": time.Now().UTC().Format(time.RFC3339),
			"source":       source,
			"topic_count":  len(r.Topics),
			"invalid":      len(r.Invalid),
			"fallback":     r.Stats.FallbackMode,
		},
		Topics: r.Topics,
	}
}

// HistoryRun converts the result into a run-history record.
func (r Result) HistoryRun(source string) artifact.Run {
	return artifact.Run{
		ID:         r.RunID.String(),
		CreatedAt:  time.Now().UTC(),
		Source:     source,
		TopicCount: len(r.Topics),
		Invalid:    len(r.Invalid),
		Fallback:   r.Stats.FallbackMode,
		Topics:     r.Topics,
	}
}
