// Package artifact owns the persisted JSON boundary: the metadata+topics
// document downstream exporters key off, and an optional sqlite-backed
// run history for audit.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

// Document is the persisted artifact: run metadata plus the canonical
// topic list. The top-level key names and the topic field names are a
// boundary contract.
type Document struct {
	Metadata map[string]any `json:"metadata"`
	Topics   []topic.Topic  `json:"topics"`
}

// Encode serializes the document with stable two-space indentation.
func Encode(doc Document) ([]byte, error) {
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	if doc.Topics == nil {
		doc.Topics = []topic.Topic{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses an artifact document. A bare topic array, the layout
// written by earlier versions of the tool, is accepted and wrapped with
// empty metadata.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err == nil && (doc.Topics != nil || doc.Metadata != nil) {
		if doc.Metadata == nil {
			doc.Metadata = map[string]any{}
		}
		return doc, nil
	}

	var topics []topic.Topic
	if err := json.Unmarshal(data, &topics); err != nil {
		return Document{}, fmt.Errorf("decode artifact: %w", err)
	}
	return Document{Metadata: map[string]any{}, Topics: topics}, nil
}
