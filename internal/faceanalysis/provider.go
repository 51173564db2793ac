package faceanalysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/marathon-booth/internal/config"
)

// New builds the analyzer selected by cfg.Face.Provider. It returns nil for
// "none" or an empty provider, which disables analysis.
func New(ctx context.Context, cfg *config.Config) (Analyzer, error) {
	switch cfg.Face.Provider {
	case "", "none":
		return nil, nil
	case "http":
		return NewHTTPAnalyzer(cfg.Face.URL), nil
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN is required for the openai face provider")
		}
		p := cfg.GetModelPricing(chatModel).Standard
		return NewOpenAIAnalyzer(cfg.OpenAI.Token, RequestPricing{Input: p.Input, Output: p.Output}), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini face provider")
		}
		p := cfg.GetModelPricing(geminiModel).Standard
		a, err := NewGeminiAnalyzer(ctx, cfg.Gemini.APIKey, RequestPricing{Input: p.Input, Output: p.Output})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown face provider %q (valid: none, http, openai, gemini)", cfg.Face.Provider)
	}
}
