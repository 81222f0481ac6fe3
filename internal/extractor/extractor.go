// Package extractor turns transcript segments into topic records, through
// the AI capability when one is configured and through a deterministic
// fallback otherwise. A single segment's failure never aborts a batch.
package extractor

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/SamarthTiwari16/DepoIndex/constants"
	"github.com/SamarthTiwari16/DepoIndex/internal/common"
	"github.com/SamarthTiwari16/DepoIndex/internal/llm"
	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
	"github.com/SamarthTiwari16/DepoIndex/internal/transcript"
)

// excerptBudget bounds how much segment text is sent per request.
const excerptBudget = 3000

// precedingLines is how many trailing lines of the previous segment ride
// along as context.
const precedingLines = 2

type Extractor struct {
	Logger  *slog.Logger
	Gen     llm.TopicGenerator // nil means fallback mode
	Limiter *llm.Limiter
	Retry   llm.Backoff
	Workers int

	// MaxTopics is forwarded as the per-excerpt candidate bound.
	MaxTopics int
}

func New(logger *slog.Logger, gen llm.TopicGenerator, limiter *llm.Limiter) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		Logger:    logger,
		Gen:       gen,
		Limiter:   limiter,
		Retry:     llm.DefaultBackoff(),
		Workers:   constants.DefaultWorkers,
		MaxTopics: constants.MaxTopicCount,
	}
}

// Extract produces one topic for a segment: the model's best candidate
// when the AI path succeeds within the retry budget, the deterministic
// fallback otherwise. Only an empty segment is an error.
func (e *Extractor) Extract(ctx context.Context, seg transcript.Segment, preceding []string) (topic.Topic, error) {
	if len(seg.Lines) == 0 {
		return topic.Topic{}, common.WrapError(common.ErrEmptyInput, "empty segment")
	}
	if e.Gen == nil {
		return e.fallback(seg), nil
	}

	req := llm.TopicRequest{
		Excerpt:   truncate(seg.Text(), excerptBudget),
		PageHint:  seg.Page,
		LineHint:  seg.StartLine,
		Preceding: preceding,
		MaxTopics: e.MaxTopics,
	}

	attempts := e.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := e.Limiter.Wait(ctx); err != nil {
			return topic.Topic{}, err
		}
		candidates, _, err := e.Gen.GenerateTopics(ctx, req)
		if err == nil {
			if t, ok := e.pick(candidates, seg); ok {
				return t, nil
			}
			// An empty candidate list is a usable answer; the segment
			// still deserves an entry.
			e.Logger.Info("extract.no_candidates", "page", seg.Page, "line", seg.StartLine)
			return e.fallback(seg), nil
		}
		if ctx.Err() != nil {
			return topic.Topic{}, ctx.Err()
		}
		e.Logger.Warn("extract.attempt_failed",
			"page", seg.Page, "line", seg.StartLine,
			"attempt", attempt, "error", err,
			"malformed", errors.Is(err, common.ErrMalformedResponse),
		)
		if attempt < attempts {
			if serr := e.Retry.Sleep(ctx, attempt); serr != nil {
				return topic.Topic{}, serr
			}
		}
	}

	e.Logger.Warn("extract.retries_exhausted", "page", seg.Page, "line", seg.StartLine)
	return e.fallback(seg), nil
}

// ExtractAll runs segment extraction on a bounded worker pool. Results
// keep segment order regardless of completion order; failed segments are
// logged and skipped.
func (e *Extractor) ExtractAll(ctx context.Context, segs []transcript.Segment) []topic.Topic {
	workers := e.Workers
	if workers < 1 {
		workers = constants.DefaultWorkers
	}

	results := make([]topic.Topic, len(segs))
	got := make([]bool, len(segs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seg := range segs {
		g.Go(func() error {
			t, err := e.Extract(gctx, seg, e.precedingFor(segs, i))
			if err != nil {
				// Isolate per-segment failures; the batch continues.
				e.Logger.Warn("extract.segment_skipped",
					"index", i+1, "page", seg.Page, "line", seg.StartLine, "error", err)
				return nil
			}
			results[i] = t
			got[i] = true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]topic.Topic, 0, len(segs))
	for i := range results {
		if got[i] {
			out = append(out, results[i])
		}
	}
	return out
}

func (e *Extractor) precedingFor(segs []transcript.Segment, i int) []string {
	if i == 0 {
		return nil
	}
	prev := segs[i-1].Lines
	if len(prev) > precedingLines {
		prev = prev[len(prev)-precedingLines:]
	}
	return prev
}

// pick selects the model's strongest candidate and pins it to the
// segment's anchors when the model left them unusable.
func (e *Extractor) pick(candidates []topic.Topic, seg transcript.Segment) (topic.Topic, bool) {
	best := -1
	for i, c := range candidates {
		if c.Title == "" {
			continue
		}
		if best == -1 || c.Confidence > candidates[best].Confidence {
			best = i
		}
	}
	if best == -1 {
		return topic.Topic{}, false
	}
	t := candidates[best]
	if t.Page < 1 {
		t.Page = seg.Page
	}
	if t.Line < 1 {
		t.Line = seg.StartLine
	}
	if t.Context == "" {
		t.Context = excerpt(seg)
	}
	if t.Confidence == 0 {
		// Treat an absent score as the mid-range default, matching the
		// fallback path.
		t.Confidence = constants.DefaultConfidence
	}
	t.Confidence = topic.ClampConfidence(t.Confidence)
	return t, true
}
