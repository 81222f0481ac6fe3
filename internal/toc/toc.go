// Package toc synthesizes a structural table-of-contents document from
// the canonical topic list. Output is typed blocks, never rendered bytes;
// rendering to a document format belongs to exporters.
package toc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SamarthTiwari16/DepoIndex/internal/llm"
	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

// Heading is a section heading with its nesting level (1 = top).
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Section is one TOC block: a heading plus its body lines.
type Section struct {
	Heading Heading  `json:"heading"`
	Body    []string `json:"body,omitempty"`
}

// TocDocument is the ordered sequence of sections handed whole to
// exporters. It is not mutated after synthesis.
type TocDocument struct {
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Empty reports whether the document carries no sections.
func (d TocDocument) Empty() bool { return len(d.Sections) == 0 }

// Markdown renders the document back to markdown text for file output.
func (d TocDocument) Markdown() string {
	var b strings.Builder
	if d.Title != "" {
		b.WriteString("# " + d.Title + "\n")
	}
	for _, sec := range d.Sections {
		b.WriteString("\n")
		b.WriteString(strings.Repeat("#", sec.Heading.Level) + " " + sec.Heading.Text + "\n")
		for _, line := range sec.Body {
			b.WriteString("- " + line + "\n")
		}
	}
	return b.String()
}

// Synthesizer produces the TOC, via the AI capability when present and
// deterministically otherwise. Same retry discipline as extraction.
type Synthesizer struct {
	Logger  *slog.Logger
	Gen     llm.TopicGenerator // nil means fallback mode
	Limiter *llm.Limiter
	Retry   llm.Backoff
}

func NewSynthesizer(logger *slog.Logger, gen llm.TopicGenerator, limiter *llm.Limiter) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{Logger: logger, Gen: gen, Limiter: limiter, Retry: llm.DefaultBackoff()}
}

// Synthesize builds the TOC from an already-ordered canonical topic
// list. It fails soft: an empty input or a fully failed AI path yields a
// fallback or empty document, never an error.
func (s *Synthesizer) Synthesize(ctx context.Context, topics []topic.Topic) TocDocument {
	if len(topics) == 0 {
		return TocDocument{Title: docTitle}
	}
	if s.Gen == nil {
		return Fallback(topics)
	}

	doc, err := s.viaModel(ctx, topics)
	if err != nil {
		s.Logger.Warn("toc.model_failed", "error", err)
		return Fallback(topics)
	}
	if doc.Empty() {
		s.Logger.Warn("toc.model_empty")
		return Fallback(topics)
	}
	return doc
}

func (s *Synthesizer) viaModel(ctx context.Context, topics []topic.Topic) (TocDocument, error) {
	payload, err := json.Marshal(topics)
	if err != nil {
		return TocDocument{}, fmt.Errorf("marshal topics: %w", err)
	}
	req := llm.TOCRequest{TopicsJSON: payload}

	attempts := s.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := s.Limiter.Wait(ctx); err != nil {
			return TocDocument{}, err
		}
		text, _, err := s.Gen.GenerateTOC(ctx, req)
		if err == nil {
			return parseMarkdownish(text), nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return TocDocument{}, ctx.Err()
		}
		s.Logger.Warn("toc.attempt_failed", "attempt", attempt, "error", err)
		if attempt < attempts {
			if serr := s.Retry.Sleep(ctx, attempt); serr != nil {
				return TocDocument{}, serr
			}
		}
	}
	return TocDocument{}, lastErr
}
