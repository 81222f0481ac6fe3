package toc

import (
	"fmt"
	"strings"

	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

const docTitle = "Deposition Topic Table of Contents"

// Fallback builds the deterministic page-grouped TOC: one section per
// page, one bullet per topic with line anchor and confidence as a
// percentage, key issues starred.
func Fallback(topics []topic.Topic) TocDocument {
	doc := TocDocument{Title: docTitle}
	var cur *Section
	page := -1
	for _, t := range topics {
		if t.Page != page {
			page = t.Page
			doc.Sections = append(doc.Sections, Section{
				Heading: Heading{Level: 2, Text: fmt.Sprintf("Page %d", page)},
			})
			cur = &doc.Sections[len(doc.Sections)-1]
		}
		cur.Body = append(cur.Body, bullet(t))
	}
	return doc
}

func bullet(t topic.Topic) string {
	var b strings.Builder
	if t.IsKeyIssue {
		b.WriteString("★ ")
	}
	fmt.Fprintf(&b, "%s — line %d (%.0f%%)", t.Title, t.Line, t.Confidence*100)
	return b.String()
}

// parseMarkdownish converts model-produced markdown text into TOC
// sections. Headings open sections; bullets and plain lines become body
// lines; decoration beyond that is dropped.
func parseMarkdownish(text string) TocDocument {
	doc := TocDocument{Title: docTitle}
	var cur *Section
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			level := 0
			for level < len(line) && line[level] == '#' {
				level++
			}
			head := strings.TrimSpace(line[level:])
			if head == "" {
				continue
			}
			if level > 3 {
				level = 3
			}
			doc.Sections = append(doc.Sections, Section{Heading: Heading{Level: level, Text: head}})
			cur = &doc.Sections[len(doc.Sections)-1]
			continue
		}
		for _, marker := range []string{"- ", "* ", "• "} {
			if strings.HasPrefix(line, marker) {
				line = strings.TrimSpace(line[len(marker):])
				break
			}
		}
		if line == "" {
			continue
		}
		if cur == nil {
			doc.Sections = append(doc.Sections, Section{Heading: Heading{Level: 1, Text: docTitle}})
			cur = &doc.Sections[len(doc.Sections)-1]
		}
		cur.Body = append(cur.Body, line)
	}
	return doc
}
