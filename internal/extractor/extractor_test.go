package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/SamarthTiwari16/DepoIndex/internal/common"
	"github.com/SamarthTiwari16/DepoIndex/internal/llm"
	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
	"github.com/SamarthTiwari16/DepoIndex/internal/transcript"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGen scripts the AI capability per call.
type fakeGen struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, req llm.TopicRequest) ([]topic.Topic, error)
}

func (f *fakeGen) GenerateTopics(_ context.Context, req llm.TopicRequest) ([]topic.Topic, []byte, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	topics, err := f.fn(call, req)
	return topics, nil, err
}

func (f *fakeGen) GenerateTOC(context.Context, llm.TOCRequest) (string, []byte, error) {
	return "", nil, errors.New("not used")
}

func (f *fakeGen) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func instantLimiter() *llm.Limiter {
	return llm.NewLimiterWithClock(time.Millisecond, nil,
		func(context.Context, time.Duration) error { return nil })
}

func noRetrySleep(e *Extractor) {
	e.Retry.SleepFn = func(context.Context, time.Duration) error { return nil }
}

func seg(page, line int, lines ...string) transcript.Segment {
	return transcript.Segment{Page: page, StartLine: line, Lines: lines}
}

func TestExtractModelPath(t *testing.T) {
	gen := &fakeGen{fn: func(_ int, req llm.TopicRequest) ([]topic.Topic, error) {
		return []topic.Topic{
			{Title: "Weak candidate", Page: req.PageHint, Line: req.LineHint, Confidence: 0.3},
			{Title: "Contract signing date", Confidence: 0.9},
		}, nil
	}}
	e := New(discard(), gen, instantLimiter())
	noRetrySleep(e)

	got, err := e.Extract(context.Background(),
		seg(5, 2, "The contract was signed on March 3rd."), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Contract signing date" {
		t.Errorf("title = %q", got.Title)
	}
	// Anchors missing from the candidate are pinned to the segment.
	if got.Page != 5 || got.Line != 2 {
		t.Errorf("anchor = %d/%d, want 5/2", got.Page, got.Line)
	}
	if got.Context == "" {
		t.Error("context not filled from segment")
	}
	if gen.callCount() != 1 {
		t.Errorf("calls = %d, want 1", gen.callCount())
	}
}

func TestExtractFallbackWithoutGenerator(t *testing.T) {
	e := New(discard(), nil, nil)
	got, err := e.Extract(context.Background(),
		seg(1, 1, "MS. LOPEZ: The contract was signed on March 3rd."), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "The contract was signed on March 3rd" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Page != 1 || got.Line != 1 {
		t.Errorf("anchor = %d/%d", got.Page, got.Line)
	}
	if got.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", got.Confidence)
	}
	if got.IsKeyIssue {
		t.Error("fallback topics are never key issues")
	}
}

func TestExtractRetriesThenFallsBack(t *testing.T) {
	gen := &fakeGen{fn: func(int, llm.TopicRequest) ([]topic.Topic, error) {
		return nil, fmt.Errorf("%w: trailing comma", common.ErrMalformedResponse)
	}}
	e := New(discard(), gen, instantLimiter())
	noRetrySleep(e)

	got, err := e.Extract(context.Background(),
		seg(2, 8, "The shipment never arrived on time."), nil)
	if err != nil {
		t.Fatal(err)
	}
	if gen.callCount() != 3 {
		t.Errorf("calls = %d, want 3 attempts", gen.callCount())
	}
	if got.Title != "The shipment never arrived on time" {
		t.Errorf("fallback title = %q", got.Title)
	}
	if got.Confidence != 0.7 {
		t.Errorf("confidence = %v", got.Confidence)
	}
}

func TestExtractRecoversOnSecondAttempt(t *testing.T) {
	gen := &fakeGen{fn: func(call int, _ llm.TopicRequest) ([]topic.Topic, error) {
		if call == 1 {
			return nil, fmt.Errorf("%w: fence noise", common.ErrMalformedResponse)
		}
		return []topic.Topic{{Title: "Warranty claim", Page: 3, Line: 1, Confidence: 0.8}}, nil
	}}
	e := New(discard(), gen, instantLimiter())
	noRetrySleep(e)

	got, err := e.Extract(context.Background(), seg(3, 1, "The warranty was voided."), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Warranty claim" || gen.callCount() != 2 {
		t.Errorf("title = %q, calls = %d", got.Title, gen.callCount())
	}
}

func TestExtractEmptySegment(t *testing.T) {
	e := New(discard(), nil, nil)
	_, err := e.Extract(context.Background(), transcript.Segment{}, nil)
	if !errors.Is(err, common.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestExtractAbsentConfidenceDefaults(t *testing.T) {
	gen := &fakeGen{fn: func(int, llm.TopicRequest) ([]topic.Topic, error) {
		return []topic.Topic{{Title: "Payment terms", Page: 1, Line: 1}}, nil
	}}
	e := New(discard(), gen, instantLimiter())
	noRetrySleep(e)

	got, err := e.Extract(context.Background(), seg(1, 1, "Payment was due on receipt."), nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.Confidence != 0.7 {
		t.Errorf("confidence = %v, want default 0.7", got.Confidence)
	}
}

func TestExtractAllPreservesOrderAndIsolatesFailures(t *testing.T) {
	// Segment at page 2 fails every attempt; the batch must continue and
	// keep transcript order.
	gen := &fakeGen{fn: func(_ int, req llm.TopicRequest) ([]topic.Topic, error) {
		if req.PageHint == 2 {
			return nil, fmt.Errorf("%w: server error", common.ErrMalformedResponse)
		}
		return []topic.Topic{{
			Title:      fmt.Sprintf("Topic for page %d", req.PageHint),
			Page:       req.PageHint,
			Line:       req.LineHint,
			Confidence: 0.9,
		}}, nil
	}}
	e := New(discard(), gen, instantLimiter())
	noRetrySleep(e)
	e.Workers = 3

	segs := []transcript.Segment{
		seg(1, 1, "The contract was signed in March."),
		seg(2, 1, "The shipment never arrived on time."),
		seg(3, 1, "The warranty was voided afterwards."),
	}
	out := e.ExtractAll(context.Background(), segs)
	if len(out) != 3 {
		t.Fatalf("got %d topics, want 3 (failed segment falls back): %+v", len(out), out)
	}
	for i, want := range []int{1, 2, 3} {
		if out[i].Page != want {
			t.Errorf("out[%d].Page = %d, want %d", i, out[i].Page, want)
		}
	}
	// The failing segment's entry is the deterministic fallback.
	if out[1].Title != "The shipment never arrived on time" {
		t.Errorf("fallback entry title = %q", out[1].Title)
	}
}

func TestFallbackNeverTouchesLimiter(t *testing.T) {
	slept := false
	limiter := llm.NewLimiterWithClock(time.Second, nil,
		func(context.Context, time.Duration) error { slept = true; return nil })
	e := New(discard(), nil, limiter)

	for range 5 {
		if _, err := e.Extract(context.Background(), seg(1, 1, "Some testimony line here."), nil); err != nil {
			t.Fatal(err)
		}
	}
	if slept {
		t.Error("fallback path slept on the rate limiter")
	}
}

func TestTitleFromLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MS. LOPEZ: The contract was signed on March 3rd.", "The contract was signed on March 3rd"},
		{"We discussed the delivery schedule, the payment terms, and the warranty period.", "We discussed the delivery schedule the payment"},
		{"...", "Untitled Topic"},
		{"", "Untitled Topic"},
	}
	for _, tt := range tests {
		if got := TitleFromLine(tt.in, 7); got != tt.want {
			t.Errorf("TitleFromLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
