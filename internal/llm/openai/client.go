package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SamarthTiwari16/DepoIndex/internal/common"
	"github.com/SamarthTiwari16/DepoIndex/internal/llm"
	"github.com/SamarthTiwari16/DepoIndex/internal/topic"
)

// GenerateTopics implements llm.TopicGenerator using chat/completions
// with a JSON response format. Malformed payloads surface as
// common.ErrMalformedResponse so the extractor's retry policy can act.
func (c *Client) GenerateTopics(ctx context.Context, req llm.TopicRequest) ([]topic.Topic, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.topics.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"excerpt_len", len(req.Excerpt),
		"page_hint", req.PageHint,
		"line_hint", req.LineHint,
		"max_topics", req.MaxTopics,
	)

	schema := llm.BuildTopicListSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildTopicsSystemPrompt(req.MaxTopics)},
			{"role": "user", "content": llm.BuildTopicsUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	content, raw, err := c.chat(ctx, rid, body)
	if err != nil {
		c.log.Error("llm.topics.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, err
	}

	// Sanitize first (fences, legacy keys, clamps), then validate
	// strictly before decoding.
	cleaned, _, err := llm.SanitizeTopicsJSON(content, c.log)
	if err != nil {
		c.log.Error("llm.topics.sanitize_failed",
			"req_id", rid, "error", err, "raw_bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, content, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.log.Error("llm.topics.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(cleaned),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, cleaned, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	var out struct {
		Topics []topic.Topic `json:"topics"`
	}
	if err := json.Unmarshal(cleaned, &out); err != nil {
		c.log.Error("llm.topics.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, cleaned, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	c.log.Info("llm.topics.ok",
		"req_id", rid,
		"topics", len(out.Topics),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out.Topics, cleaned, nil
}

// GenerateTOC implements llm.TopicGenerator for TOC synthesis. Output is
// markdown text; structure parsing is the synthesizer's job.
func (c *Client) GenerateTOC(ctx context.Context, req llm.TOCRequest) (string, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.toc.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"topics_bytes", len(req.TopicsJSON),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildTOCSystemPrompt()},
			{"role": "user", "content": llm.BuildTOCUserPrompt(req)},
		},
	}

	content, raw, err := c.chat(ctx, rid, body)
	if err != nil {
		c.log.Error("llm.toc.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", raw, err
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", raw, fmt.Errorf("%w: empty toc payload", common.ErrMalformedResponse)
	}

	c.log.Info("llm.toc.ok",
		"req_id", rid,
		"bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, raw, nil
}

// chat posts a chat/completions body and returns the first choice's
// content along with the raw response for audit.
func (c *Client) chat(ctx context.Context, rid string, body map[string]any) ([]byte, []byte, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		return nil, raw, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, raw, fmt.Errorf("%w: decode response: %v", common.ErrMalformedResponse, err)
	}
	if len(cc.Choices) == 0 {
		return nil, raw, fmt.Errorf("%w: no choices in response", common.ErrMalformedResponse)
	}
	return []byte(strings.TrimSpace(cc.Choices[0].Message.Content)), raw, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.log.Warn("llm response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("llm status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
