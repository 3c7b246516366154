// Package gemini implements the llm provider interfaces on top of Google's
// generative-ai-go SDK.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/hippocampus-app/hippocampus/internal/llm"
)

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel

	defaultCurrency string
	logger          *slog.Logger
}

func NewClient(ctx context.Context, apiKey, modelName, defaultCurrency string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		client:          gc,
		model:           gc.GenerativeModel(modelName),
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}, nil
}

// Route implements llm.Router.
func (c *Client) Route(ctx context.Context, utterance, memberName string) (llm.Outcome, error) {
	rid := uuid.New().String()
	start := time.Now()

	prompt := llm.BuildRouterSystemPrompt(c.defaultCurrency) +
		"\n\nmemberName: " + memberName +
		"\ntoday: " + time.Now().UTC().Format("2006-01-02") +
		"\nuserText: " + utterance

	text, err := c.generate(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("llm.route.gemini_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.Outcome{}, err
	}

	out, err := llm.DecodeOutcome([]byte(text))
	if err != nil {
		c.logger.Warn("llm.route.bad_shape", "req_id", rid, "error", err, "content", text,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.Outcome{}, err
	}

	c.logger.Info("llm.route.ok", "req_id", rid, "kind", out.Kind,
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// Extract implements llm.ReceiptExtractor.
func (c *Client) Extract(ctx context.Context, image []byte) (llm.ExpenseSeed, error) {
	rid := uuid.New().String()
	start := time.Now()

	parts := []genai.Part{
		genai.ImageData("png", image),
		genai.Text(llm.BuildReceiptSystemPrompt() +
			" Today is " + time.Now().UTC().Format("2006-01-02") + "."),
	}

	text, err := c.generate(ctx, parts...)
	if err != nil {
		c.logger.Error("llm.extract.gemini_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.ExpenseSeed{}, err
	}

	seed := llm.DecodeSeed([]byte(text))
	c.logger.Info("llm.extract.ok", "req_id", rid,
		"amount", seed.Amount, "date", seed.ExpenseDate, "category", seed.Category,
		"raw_text_len", len(seed.RawText),
		"elapsed_ms", time.Since(start).Milliseconds())
	return seed, nil
}

func (c *Client) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrUpstream, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no response from gemini", llm.ErrUpstream)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// Close closes the underlying SDK client.
func (c *Client) Close() error {
	return c.client.Close()
}
