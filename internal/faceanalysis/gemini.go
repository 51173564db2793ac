package faceanalysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/kozaktomas/marathon-booth/internal/camera"
)

const geminiModel = "gemini-2.5-flash"

type GeminiAnalyzer struct {
	client  *genai.Client
	pricing RequestPricing

	mu    sync.Mutex
	usage Usage
}

func NewGeminiAnalyzer(ctx context.Context, apiKey string, pricing RequestPricing) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAnalyzer{
		client:  client,
		pricing: pricing,
	}, nil
}

func (a *GeminiAnalyzer) Name() string {
	return geminiModel
}

func (a *GeminiAnalyzer) GetUsage() Usage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usage
}

func (a *GeminiAnalyzer) trackUsage(inputTokens, outputTokens int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage.track(int64(inputTokens), int64(outputTokens), a.pricing)
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, jpeg []byte) (*Detection, error) {
	resizedData, err := camera.NormalizeStill(jpeg, analysisImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: faceAnalysisPrompt},
				{InlineData: &genai.Blob{Data: resizedData, MIMEType: "image/jpeg"}},
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		result, err := a.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}

		if result.UsageMetadata != nil {
			a.trackUsage(result.UsageMetadata.PromptTokenCount, result.UsageMetadata.CandidatesTokenCount)
		}

		content := result.Text()
		if content == "" {
			return nil, errors.New("no response from Gemini")
		}
		lastResponse = content

		detection, err := parseVisionResponse(content)
		if err != nil {
			lastError = err

			contents = append(contents,
				&genai.Content{
					Role:  "model",
					Parts: []*genai.Part{{Text: content}},
				},
				&genai.Content{
					Role:  "user",
					Parts: []*genai.Part{{Text: retryMessage(err)}},
				},
			)
			continue
		}

		return detection, nil
	}

	return nil, fmt.Errorf("failed to parse face analysis after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}
