package export

import (
	"fmt"

	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

// AnnotatedSection is one numbered entry of the annotated transcript:
// the topic heading, its anchor line, and the supporting excerpt.
// Structural only; exporters decide the byte format.
type AnnotatedSection struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Anchor  string `json:"anchor"`
	Excerpt string `json:"excerpt,omitempty"`
}

// AnnotatedSections builds the annotated-transcript view from the
// canonical topic list, preserving its order.
func AnnotatedSections(topics []topic.Topic) []AnnotatedSection {
	out := make([]AnnotatedSection, 0, len(topics))
	for i, t := range topics {
		out = append(out, AnnotatedSection{
			Number:  i + 1,
			Title:   t.Title,
			Anchor:  fmt.Sprintf("Page %d · Line %d", t.Page, t.Line),
			Excerpt: t.Context,
		})
	}
	return out
}
