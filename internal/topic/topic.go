// Package topic defines the canonical Topic record and the validation and
// ordering stages every downstream consumer depends on.
package topic

import "encoding/json"

// Topic anchors a discrete subject to a page/line location in the
// transcript. Field names are a boundary contract: exporters and the
// persisted artifact key off these exact JSON names.
type Topic struct {
	Title             string   `json:"title"`
	Page              int      `json:"page"`
	Line              int      `json:"line"`
	Context           string   `json:"context,omitempty"`
	IsKeyIssue        bool     `json:"is_key_issue"`
	Confidence        float64  `json:"confidence"`
	RelatedTopics     []string `json:"related_topics,omitempty"`
	LegalSignificance string   `json:"legal_significance,omitempty"`
}

// ClampConfidence forces a confidence score into [0,1]. Out-of-range
// values are clamped at ingestion, never rejected.
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// topicAliases mirrors Topic plus the legacy key spellings written by
// earlier versions of the tool (`topic` for title, `text` for context).
type topicAliases struct {
	Title             string   `json:"title"`
	LegacyTitle       string   `json:"topic"`
	Page              int      `json:"page"`
	Line              int      `json:"line"`
	Context           string   `json:"context"`
	LegacyContext     string   `json:"text"`
	IsKeyIssue        bool     `json:"is_key_issue"`
	Confidence        float64  `json:"confidence"`
	RelatedTopics     []string `json:"related_topics"`
	LegalSignificance string   `json:"legal_significance"`
}

// UnmarshalJSON accepts both the current and the legacy field spellings
// and clamps confidence on the way in.
func (t *Topic) UnmarshalJSON(data []byte) error {
	var a topicAliases
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Title == "" {
		a.Title = a.LegacyTitle
	}
	if a.Context == "" {
		a.Context = a.LegacyContext
	}
	*t = Topic{
		Title:             a.Title,
		Page:              a.Page,
		Line:              a.Line,
		Context:           a.Context,
		IsKeyIssue:        a.IsKeyIssue,
		Confidence:        ClampConfidence(a.Confidence),
		RelatedTopics:     a.RelatedTopics,
		LegalSignificance: a.LegalSignificance,
	}
	return nil
}
