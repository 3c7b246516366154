package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hippocampus-app/hippocampus/internal/llm"
)

// Route implements llm.Router over chat/completions. The model reply is
// schema-validated before anything in it is trusted; a mismatched shape
// comes back as llm.ErrBadShape for the caller to turn into a
// clarification.
func (c *Client) Route(ctx context.Context, utterance, memberName string) (llm.Outcome, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.route.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"utterance_len", len(utterance),
	)

	today := time.Now().UTC().Format("2006-01-02")
	userTurn, err := json.Marshal(map[string]string{
		"userText":   utterance,
		"memberName": memberName,
		"today":      today,
	})
	if err != nil {
		return llm.Outcome{}, fmt.Errorf("marshal user turn: %w", err)
	}

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildRouterSystemPrompt(c.cfg.DefaultCurrency)},
			{"role": "user", "content": string(userTurn)},
		},
	}

	content, err := c.complete(ctx, rid, body)
	if err != nil {
		c.logger.Error("llm.route.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{}, err
	}

	out, err := llm.DecodeOutcome(content)
	if err != nil {
		c.logger.Warn("llm.route.bad_shape",
			"req_id", rid, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Outcome{}, err
	}

	c.logger.Info("llm.route.ok",
		"req_id", rid,
		"kind", out.Kind,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Extract implements llm.ReceiptExtractor with a mixed text+image payload.
// Transport failures are surfaced verbatim; an unparsable reply body
// becomes an empty seed for the repair layer to work on.
func (c *Client) Extract(ctx context.Context, image []byte) (llm.ExpenseSeed, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.VisionModel,
		"image_bytes", len(image),
	)

	today := time.Now().UTC().Format("2006-01-02")
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	body := map[string]any{
		"model":                 c.cfg.VisionModel,
		"max_completion_tokens": 600,
		"response_format":       map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildReceiptSystemPrompt()},
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": "Today is " + today + ". Prefer merchant/payee name in description."},
					{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
				},
			},
		},
	}

	content, err := c.complete(ctx, rid, body)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExpenseSeed{}, err
	}

	seed := llm.DecodeSeed(content)
	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"amount", seed.Amount,
		"date", seed.ExpenseDate,
		"category", seed.Category,
		"raw_text_len", len(seed.RawText),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return seed, nil
}

// complete posts a chat/completions body and returns the first choice's
// message content.
func (c *Client) complete(ctx context.Context, rid string, body map[string]any) ([]byte, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrUpstream, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, fmt.Errorf("%w: decode openai response: %v", llm.ErrUpstream, err)
	}
	if len(cc.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in openai response (req_id %s)", llm.ErrUpstream, rid)
	}
	return []byte(strings.TrimSpace(cc.Choices[0].Message.Content)), nil
}
