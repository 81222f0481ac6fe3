package constants

import "time"

// Pipeline defaults. These are stable values; exporters and stored
// artifacts depend on them staying put.
const (
	// DefaultConfidence is assigned when the model does not supply a
	// confidence score, and on every fallback-derived topic.
	DefaultConfidence = 0.7

	// MinCallInterval is the minimum spacing between calls to the AI
	// backend. The upstream API rejects bursts.
	MinCallInterval = 1500 * time.Millisecond

	// DefaultWorkers bounds concurrent segment extraction.
	DefaultWorkers = 4

	// MaxRetryAttempts bounds AI calls per segment before the
	// deterministic fallback takes over.
	MaxRetryAttempts = 3

	// RetryBaseDelay is the first backoff delay; it doubles per attempt.
	RetryBaseDelay = 1 * time.Second

	// ChunkBudget is the character budget for size-bounded chunking.
	ChunkBudget = 8000

	// TitleMaxWords caps fallback titles derived from segment text.
	TitleMaxWords = 7

	// ExcerptLines is how many leading segment lines feed the topic
	// context and the AI excerpt.
	ExcerptLines = 3

	// LinesPerPage is the heuristic page size when the transcript
	// carries no explicit page anchors.
	LinesPerPage = 30
)

// Topic count bounds accepted from callers.
const (
	MinTopicCount = 1
	MaxTopicCount = 10
)

// UntitledTopic is the fallback title when a segment yields no words.
const UntitledTopic = "Untitled Topic"
