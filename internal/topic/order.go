package topic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SamarthTiwari16/DepoIndex/internal/common"
)

// Order produces the canonical topic sequence: page ascending, line
// ascending, confidence descending, stable for equal keys so discovery
// order breaks ties. Exact duplicates (same anchor, same title) collapse
// to their highest-confidence record. The input slice is not mutated.
//
// A topic without positive page/line here means validation let a bad
// record through; that is a bug, not user error.
func Order(valid []Topic) ([]Topic, error) {
	for i, t := range valid {
		if t.Page < 1 || t.Line < 1 {
			return nil, fmt.Errorf("%w: topic %d (%q) has unsortable anchor page=%d line=%d",
				common.ErrInternalInvariant, i+1, t.Title, t.Page, t.Line)
		}
	}

	out := make([]Topic, len(valid))
	copy(out, valid)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Confidence > out[j].Confidence
	})

	return dedupe(out), nil
}

// dedupe drops repeated (page, line, title) records. The slice is sorted,
// so duplicates are adjacent and the survivor is the highest-confidence
// one.
func dedupe(sorted []Topic) []Topic {
	if len(sorted) < 2 {
		return sorted
	}
	out := sorted[:1]
	for _, t := range sorted[1:] {
		prev := out[len(out)-1]
		if t.Page == prev.Page && t.Line == prev.Line && strings.EqualFold(t.Title, prev.Title) {
			continue
		}
		out = append(out, t)
	}
	return out
}
