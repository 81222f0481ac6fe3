package transcript

import (
	"regexp"
	"strings"

	"github.com/SamarthTiwari16/DepoIndex/constants"
)

// Chunk is a size-bounded slice of cleaned transcript text, anchored at
// the page/line of its first paragraph. Chunks are the alternative unit
// of analysis to segments for callers with a character budget.
type Chunk struct {
	Page int
	Line int
	Text string
}

var reQuestion = regexp.MustCompile(`(?i)^Q[.:]\s|^QUESTION\s*:`)

// ChunkLines splits cleaned lines into chunks of at most budget
// characters, breaking at paragraph (line) boundaries. A paragraph that
// opens with a question/answer marker always starts a new chunk, keeping
// a question paired with its answer where the budget allows.
func ChunkLines(lines []Line, budget int) []Chunk {
	if budget <= 0 {
		budget = constants.ChunkBudget
	}
	var chunks []Chunk
	var b strings.Builder
	var page, first int

	flush := func() {
		if b.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{Page: page, Line: first, Text: b.String()})
		b.Reset()
	}

	for _, ln := range lines {
		over := b.Len() > 0 && b.Len()+len(ln.Text)+1 > budget
		// Questions open chunks; answers stay with their question.
		if over || reQuestion.MatchString(ln.Text) {
			flush()
		}
		if b.Len() == 0 {
			page, first = ln.Page, ln.Num
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(ln.Text)
	}
	flush()
	return chunks
}
