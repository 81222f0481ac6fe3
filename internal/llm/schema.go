package llm

// BuildTopicListSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map. We pass it to the model as a structured output constraint
// and also use it locally to validate responses.
func BuildTopicListSchema() map[string]any {
	topicProps := map[string]any{
		"title":              map[string]any{"type": "string", "minLength": 1},
		"page":               map[string]any{"type": "integer", "minimum": 1},
		"line":               map[string]any{"type": "integer", "minimum": 1},
		"context":            map[string]any{"type": "string"},
		"is_key_issue":       map[string]any{"type": "boolean"},
		"confidence":         map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"related_topics":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"legal_significance": map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"topics"},
		"properties": map[string]any{
			"topics": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties":           topicProps,
					"required":             []string{"title", "page", "line"},
				},
			},
		},
	}
}
