package topic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// requiredFields is the set every downstream stage depends on.
var requiredFields = []string{"title", "page", "line", "confidence"}

// Rejection pairs a refused candidate with the reason and its original
// 1-based position, for the audit side-channel. Rejections are reported,
// never discarded.
type Rejection struct {
	Position int             `json:"position"`
	Reason   string          `json:"reason"`
	Raw      json.RawMessage `json:"raw,omitempty"`
}

// candidateSchema validates one topic candidate: the four required fields
// with sane types and 1-based anchors. Compiled once at package init; the
// schema map is a fixed literal so compilation cannot fail at runtime.
var candidateSchema = mustCompile(map[string]any{
	"type":     "object",
	"required": requiredFields,
	"properties": map[string]any{
		"title":              map[string]any{"type": "string", "minLength": 1},
		"page":               map[string]any{"type": "integer", "minimum": 1},
		"line":               map[string]any{"type": "integer", "minimum": 1},
		"confidence":         map[string]any{"type": "number"},
		"context":            map[string]any{"type": "string"},
		"is_key_issue":       map[string]any{"type": "boolean"},
		"related_topics":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"legal_significance": map[string]any{"type": "string"},
	},
})

func mustCompile(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("candidate.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("candidate.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// ValidateCandidates partitions raw candidate records into valid topics
// and rejections. The partition is total: every input lands in exactly
// one side, and validation itself never fails.
func ValidateCandidates(candidates []json.RawMessage) ([]Topic, []Rejection) {
	valid := make([]Topic, 0, len(candidates))
	var invalid []Rejection
	for i, raw := range candidates {
		pos := i + 1
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			invalid = append(invalid, Rejection{Position: pos, Reason: "not valid JSON: " + err.Error(), Raw: raw})
			continue
		}
		obj, ok := v.(map[string]any)
		if !ok {
			invalid = append(invalid, Rejection{Position: pos, Reason: "not an object record", Raw: raw})
			continue
		}
		if err := candidateSchema.Validate(v); err != nil {
			invalid = append(invalid, Rejection{Position: pos, Reason: rejectionReason(obj, err), Raw: raw})
			continue
		}
		var t Topic
		if err := json.Unmarshal(raw, &t); err != nil {
			invalid = append(invalid, Rejection{Position: pos, Reason: "decode: " + err.Error(), Raw: raw})
			continue
		}
		valid = append(valid, t)
	}
	return valid, invalid
}

// ValidateTopics partitions already-typed records, used on extractor
// output where decoding has happened upstream.
func ValidateTopics(topics []Topic) ([]Topic, []Rejection) {
	valid := make([]Topic, 0, len(topics))
	var invalid []Rejection
	for i, t := range topics {
		var missing []string
		if strings.TrimSpace(t.Title) == "" {
			missing = append(missing, "title")
		}
		if t.Page < 1 {
			missing = append(missing, "page")
		}
		if t.Line < 1 {
			missing = append(missing, "line")
		}
		if len(missing) > 0 {
			invalid = append(invalid, Rejection{
				Position: i + 1,
				Reason:   "missing or invalid field(s): " + strings.Join(missing, ", "),
			})
			continue
		}
		t.Confidence = ClampConfidence(t.Confidence)
		valid = append(valid, t)
	}
	return valid, invalid
}

// rejectionReason prefers a plain list of absent required fields over the
// schema library's nested error text.
func rejectionReason(obj map[string]any, schemaErr error) string {
	var missing []string
	for _, f := range requiredFields {
		if _, ok := obj[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return "missing required field(s): " + strings.Join(missing, ", ")
	}
	return "schema violation: " + schemaErr.Error()
}
