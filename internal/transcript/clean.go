// Package transcript normalizes raw deposition text into cleaned,
// page/line-anchored content lines and groups them into segments or
// size-bounded chunks. Everything here is a pure transformation.
package transcript

import (
	"regexp"
	"strings"

	"github.com/SamarthTiwari16/DepoIndex/constants"
)

// Line is one cleaned transcript line with its page/line anchor.
type Line struct {
	Page int
	Num  int
	Text string
}

var (
	reSpeaker   = regexp.MustCompile(`(?i)^\s*(?:BY\s+)?(?:MR|MS|MRS|DR)\.?\s+[A-Z][\w'-]*\s*[:.]?\s*`)
	reRoleTag   = regexp.MustCompile(`(?i)^\s*(?:THE\s+(?:WITNESS|COURT|DEPONENT)|EXAMINER|COUNSEL)\s*[:.]\s*`)
	reBracketed = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
	rePageNoise = regexp.MustCompile(`(?i)^\s*(?:page|line)\s+\d+\s*[:.·]?\s*$`)
	reDigitSep  = regexp.MustCompile(`^[\s0-9·.\-_=*]*$`)

	rePageAnchor = regexp.MustCompile(`(?i)^\s*page\s+(\d+)\s*$`)
	reLineAnchor = regexp.MustCompile(`(?i)^\s*line\s+(\d+):\s+(.*)$`)
)

// CleanLine strips speaker prefixes, role tags, and bracketed annotations
// from a single raw line.
func CleanLine(s string) string {
	s = reSpeaker.ReplaceAllString(s, "")
	s = reRoleTag.ReplaceAllString(s, "")
	s = reBracketed.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// IsContent reports whether a cleaned line carries substantive text:
// minimum length, not a digit/separator line, and at least a few letters.
func IsContent(s string) bool {
	if len(s) < 5 {
		return false
	}
	if reDigitSep.MatchString(s) {
		return false
	}
	letters := 0
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
			if letters >= 3 {
				return true
			}
		}
	}
	return false
}

// Clean normalizes raw transcript text into anchored content lines.
// Transcripts in the "Page N" / "Line N: text" layout keep their real
// anchors; free-form text gets heuristic anchors (30 lines per page).
// Non-content lines are dropped but still advance the line counter so
// anchors stay aligned with the source document.
func Clean(raw string) []Line {
	if anchored, ok := parseAnchored(raw); ok {
		return anchored
	}

	var out []Line
	for i, rawLine := range strings.Split(raw, "\n") {
		num := i + 1
		page := (i / constants.LinesPerPage) + 1
		s := strings.TrimSpace(rawLine)
		if s == "" || rePageNoise.MatchString(s) {
			continue
		}
		s = CleanLine(s)
		if !IsContent(s) {
			continue
		}
		out = append(out, Line{Page: page, Num: num, Text: s})
	}
	return out
}

// parseAnchored handles the explicit layout produced by transcript
// digitization tools:
//
//	Page 1
//	Line 1: text
//	Line 2: more text
//
// Returns ok=false when the input carries no Line anchors at all.
func parseAnchored(raw string) ([]Line, bool) {
	var out []Line
	page := 1
	seen := false
	for _, rawLine := range strings.Split(raw, "\n") {
		s := strings.TrimSpace(rawLine)
		if m := rePageAnchor.FindStringSubmatch(s); m != nil {
			page = atoiSafe(m[1], page)
			continue
		}
		m := reLineAnchor.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		seen = true
		text := CleanLine(m[2])
		if !IsContent(text) {
			continue
		}
		out = append(out, Line{Page: page, Num: atoiSafe(m[1], 0), Text: text})
	}
	return out, seen
}

func atoiSafe(s string, fallback int) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
