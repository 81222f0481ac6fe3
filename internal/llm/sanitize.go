package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// allowedTopicKeys is the schema's property set for one topic entry.
var allowedTopicKeys = map[string]struct{}{
	"title": {}, "page": {}, "line": {}, "context": {},
	"is_key_issue": {}, "confidence": {}, "related_topics": {},
	"legal_significance": {},
}

// SanitizeTopicsJSON normalizes a raw model payload into a document that
// can pass strict schema validation:
//   - strips markdown code fences and stray text around the JSON body
//   - accepts a bare topic array and wraps it under "topics"
//   - renames legacy keys (topic -> title, text -> context)
//   - coerces page/line to integers and clamps confidence to [0,1]
//   - drops null values and unknown keys
//
// It returns the cleaned document plus the list of adjustments made.
func SanitizeTopicsJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	body := extractJSONBody(string(raw))
	if body == "" {
		return nil, nil, fmt.Errorf("sanitize: no JSON body in payload")
	}

	var adjusted []string

	var doc map[string]any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		// A bare array is a known model misbehavior; wrap it.
		var arr []any
		if aerr := json.Unmarshal([]byte(body), &arr); aerr != nil {
			return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
		}
		doc = map[string]any{"topics": arr}
		adjusted = append(adjusted, "wrapped bare array")
	}

	items, _ := doc["topics"].([]any)
	cleaned := make([]any, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			adjusted = append(adjusted, fmt.Sprintf("topics[%d](not object)", i))
			continue
		}
		cleaned = append(cleaned, sanitizeTopicEntry(m, i, &adjusted))
	}

	out, err := json.Marshal(map[string]any{"topics": cleaned})
	if err != nil {
		return nil, adjusted, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(adjusted) > 0 {
		logger.Warn("llm.topics.sanitize", "adjusted", adjusted)
	}
	return out, adjusted, nil
}

func sanitizeTopicEntry(m map[string]any, idx int, adjusted *[]string) map[string]any {
	note := func(what string) {
		*adjusted = append(*adjusted, fmt.Sprintf("topics[%d](%s)", idx, what))
	}

	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			note(from + "->" + to)
		}
	}
	rename("topic", "title")
	rename("text", "context")

	// page/line arrive as float64 from decoding; truncate fractions.
	for _, k := range []string{"page", "line"} {
		if f, ok := m[k].(float64); ok && f != float64(int(f)) {
			m[k] = int(f)
			note(k + " truncated")
		}
	}

	if f, ok := m["confidence"].(float64); ok {
		if f < 0 {
			m["confidence"] = 0.0
			note("confidence clamped")
		} else if f > 1 {
			m["confidence"] = 1.0
			note("confidence clamped")
		}
	}

	for k, v := range m {
		if v == nil {
			delete(m, k)
			note(k + " null")
			continue
		}
		if _, ok := allowedTopicKeys[k]; !ok {
			delete(m, k)
			note(k + " unknown")
		}
	}

	if s, ok := m["title"].(string); ok {
		m["title"] = strings.TrimSpace(s)
	}
	return m
}

// extractJSONBody trims markdown fences and any prose around the first
// balanced JSON object or array in the payload.
func extractJSONBody(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if end := strings.LastIndex(s, "```"); end != -1 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')
	start, closer := objStart, byte('}')
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start, closer = arrStart, ']'
	}
	if start == -1 {
		return ""
	}
	if end := strings.LastIndexByte(s, closer); end > start {
		return s[start : end+1]
	}
	return ""
}
