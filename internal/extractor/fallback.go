package extractor

import (
	"regexp"
	"strings"

	"github.com/SamarthTiwari16/DepoIndex/constants"
	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
	"github.com/SamarthTiwari16/DepoIndex/internal/transcript"
)

var (
	reTitleSpeaker = regexp.MustCompile(`(?i)^(MR|MS|MRS)\.?\s+\w+:?\s*`)
	reTitlePunct   = regexp.MustCompile(`[^\w\s]`)
)

// TitleFromLine derives a short topic title from a content line: speaker
// prefix off, punctuation off, first few words.
func TitleFromLine(line string, maxWords int) string {
	if maxWords < 1 {
		maxWords = constants.TitleMaxWords
	}
	s := reTitleSpeaker.ReplaceAllString(line, "")
	s = reTitlePunct.ReplaceAllString(s, "")
	words := strings.Fields(s)
	if len(words) == 0 {
		return constants.UntitledTopic
	}
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

// fallback derives a topic deterministically from the segment itself.
// It never blocks and never consults the rate limiter.
func (e *Extractor) fallback(seg transcript.Segment) topic.Topic {
	return topic.Topic{
		Title:      TitleFromLine(seg.Lines[0], constants.TitleMaxWords),
		Page:       seg.Page,
		Line:       seg.StartLine,
		Context:    excerpt(seg),
		IsKeyIssue: false,
		Confidence: constants.DefaultConfidence,
	}
}

// excerpt joins the first few segment lines for the context field.
func excerpt(seg transcript.Segment) string {
	lines := seg.Lines
	if len(lines) > constants.ExcerptLines {
		lines = lines[:constants.ExcerptLines]
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
