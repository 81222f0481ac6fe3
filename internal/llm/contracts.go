package llm

import (
	"context"

	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

// TopicRequest carries one segment's worth of material for topic
// generation: a bounded excerpt, its page/line anchor, and a few
// preceding lines for context.
type TopicRequest struct {
	Excerpt   string
	PageHint  int
	LineHint  int
	Preceding []string
	MaxTopics int
}

// TOCRequest carries the canonical topic list, already serialized, for
// table-of-contents synthesis.
type TOCRequest struct {
	TopicsJSON []byte
}

// TopicGenerator is the AI capability the pipeline depends on. It may be
// absent at runtime (no credential configured); callers treat a nil
// generator as fallback mode and never touch the network.
type TopicGenerator interface {
	// GenerateTopics returns topic candidates for an excerpt, plus the
	// raw JSON payload for audit.
	GenerateTopics(ctx context.Context, req TopicRequest) ([]topic.Topic, []byte, error)

	// GenerateTOC returns a hierarchical, page-grouped table of contents
	// as markdown-style text, plus the raw payload.
	GenerateTOC(ctx context.Context, req TOCRequest) (string, []byte, error)
}
