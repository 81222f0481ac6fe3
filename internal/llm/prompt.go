package llm

import (
	"fmt"
	"strings"
)

// BuildTopicsSystemPrompt composes the system message for topic
// extraction: strict JSON output, anchor discipline, and scoring rules.
func BuildTopicsSystemPrompt(maxTopics int) string {
	if maxTopics < 1 {
		maxTopics = 1
	}
	parts := []string{
		"You are a legal deposition analyst. Return ONLY JSON that matches the provided JSON Schema.",
		fmt.Sprintf("Identify up to %d discrete topics in the excerpt.", maxTopics),
		"Each topic needs a concise 3-7 word title.",
		"Use the page and line hints for the 'page' and 'line' anchors; both are 1-based.",
		"Set 'is_key_issue' true only for substantive legal issues (liability, damages, admissions, contradictions).",
		"Score 'confidence' between 0 and 1.",
		"List related legal concepts under 'related_topics'.",
		"Add 'legal_significance' only when the topic's importance needs explaining.",
		"Never output null. If a field is not applicable, omit it.",
	}
	return strings.Join(parts, " ")
}

// BuildTopicsUserPrompt packages the excerpt with its anchors and a few
// preceding lines for context.
func BuildTopicsUserPrompt(req TopicRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page: %d\nLine: %d\n", req.PageHint, req.LineHint)
	if len(req.Preceding) > 0 {
		b.WriteString("\nPreceding lines:\n")
		for _, l := range req.Preceding {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	b.WriteString("\nExcerpt:\n")
	b.WriteString(req.Excerpt)
	return b.String()
}

// BuildTOCSystemPrompt composes the system message for table-of-contents
// synthesis over the canonical topic list.
func BuildTOCSystemPrompt() string {
	parts := []string{
		"You create a professional table of contents for a legal deposition from a topic index.",
		"Group topics by page in ascending order.",
		"Use markdown headings for page groups and one bullet per topic with its line number and confidence as a percentage.",
		"Mark key issues with a leading star.",
		"Return markdown only, no commentary.",
	}
	return strings.Join(parts, " ")
}

// BuildTOCUserPrompt wraps the serialized canonical topic list.
func BuildTOCUserPrompt(req TOCRequest) string {
	var b strings.Builder
	b.WriteString("Topic index (JSON, already ordered by page and line):\n")
	b.Write(req.TopicsJSON)
	return b.String()
}
