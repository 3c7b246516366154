package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hippocampus-app/hippocampus/internal/common"
	"github.com/hippocampus-app/hippocampus/internal/llm"
	"github.com/hippocampus-app/hippocampus/internal/llm/gemini"
	"github.com/hippocampus-app/hippocampus/internal/llm/openai"
)

// buildProviders wires the configured model providers. A nil router means
// text messages are classified locally; the extractor is nil only when no
// vision provider can be built, which disables receipt uploads.
func buildProviders(ctx context.Context, cfg *common.Config, logger *slog.Logger) (llm.Router, llm.ReceiptExtractor, func(), error) {
	cleanup := func() {}

	var openaiClient *openai.Client
	newOpenAI := func() *openai.Client {
		if openaiClient == nil {
			openaiClient = openai.NewClient(openai.Config{
				APIKey:          cfg.LLM.APIKey,
				BaseURL:         cfg.LLM.BaseURL,
				Model:           cfg.LLM.Model,
				VisionModel:     cfg.LLM.VisionModel,
				Temperature:     cfg.LLM.Temperature,
				Timeout:         cfg.LLM.Timeout,
				DefaultCurrency: cfg.Household.DefaultCurrency,
			}, logger)
		}
		return openaiClient
	}

	var geminiClient *gemini.Client
	newGemini := func() (*gemini.Client, error) {
		if geminiClient == nil {
			gc, err := gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel,
				cfg.Household.DefaultCurrency, logger)
			if err != nil {
				return nil, err
			}
			geminiClient = gc
			cleanup = func() {
				if err := gc.Close(); err != nil {
					logger.Error("llm.gemini.close_failed", "error", err)
				}
			}
		}
		return geminiClient, nil
	}

	var router llm.Router
	switch cfg.LLM.RouterProvider {
	case "local":
		router = nil
	case "openai":
		router = newOpenAI()
	case "gemini":
		gc, err := newGemini()
		if err != nil {
			return nil, nil, cleanup, err
		}
		router = gc
	default:
		return nil, nil, cleanup, fmt.Errorf("unknown router provider %q", cfg.LLM.RouterProvider)
	}

	var extractor llm.ReceiptExtractor
	switch cfg.LLM.VisionProvider {
	case "openai":
		if cfg.LLM.APIKey != "" {
			extractor = newOpenAI()
		}
	case "gemini":
		if cfg.LLM.GeminiAPIKey != "" {
			gc, err := newGemini()
			if err != nil {
				return nil, nil, cleanup, err
			}
			extractor = gc
		}
	default:
		return nil, nil, cleanup, fmt.Errorf("unknown vision provider %q", cfg.LLM.VisionProvider)
	}
	if extractor == nil {
		logger.Warn("llm.vision.disabled", "provider", cfg.LLM.VisionProvider)
	}

	logger.Info("llm.providers.ready",
		"router", cfg.LLM.RouterProvider, "vision", cfg.LLM.VisionProvider)
	return router, extractor, cleanup, nil
}
