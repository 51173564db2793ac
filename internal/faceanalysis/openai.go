package faceanalysis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/kozaktomas/marathon-booth/internal/camera"
)

const chatModel = openai.ChatModelGPT4_1Mini

// maxRetries bounds how often a model is asked to repair unparseable JSON.
const maxRetries = 3

type OpenAIAnalyzer struct {
	client  *openai.Client
	pricing RequestPricing

	mu    sync.Mutex
	usage Usage
}

func NewOpenAIAnalyzer(apiKey string, pricing RequestPricing, opts ...option.RequestOption) *OpenAIAnalyzer {
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &OpenAIAnalyzer{
		client:  &client,
		pricing: pricing,
	}
}

func (a *OpenAIAnalyzer) Name() string {
	return chatModel
}

func (a *OpenAIAnalyzer) GetUsage() Usage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usage
}

func (a *OpenAIAnalyzer) trackUsage(inputTokens, outputTokens int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.usage.track(inputTokens, outputTokens, a.pricing)
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, jpeg []byte) (*Detection, error) {
	resizedData, err := camera.NormalizeStill(jpeg, analysisImageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to resize image: %w", err)
	}
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resizedData)

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(faceAnalysisPrompt),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
						openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
							URL:    imageURL,
							Detail: "low",
						}),
					},
				},
			},
		},
	}

	var lastError error
	var lastResponse string

	for range maxRetries {
		resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    chatModel,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			MaxTokens: openai.Int(100),
		})
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}

		if len(resp.Choices) == 0 {
			return nil, errors.New("no response from OpenAI")
		}

		if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
			a.trackUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
		}

		content := resp.Choices[0].Message.Content
		lastResponse = content

		detection, err := parseVisionResponse(content)
		if err != nil {
			lastError = err

			messages = append(messages,
				openai.ChatCompletionMessageParamUnion{
					OfAssistant: &openai.ChatCompletionAssistantMessageParam{
						Content: openai.ChatCompletionAssistantMessageParamContentUnion{
							OfString: openai.String(content),
						},
					},
				},
				openai.ChatCompletionMessageParamUnion{
					OfUser: &openai.ChatCompletionUserMessageParam{
						Content: openai.ChatCompletionUserMessageParamContentUnion{
							OfString: openai.String(retryMessage(err)),
						},
					},
				},
			)
			continue
		}

		return detection, nil
	}

	return nil, fmt.Errorf("failed to parse face analysis after %d attempts: %w (last response: %s)", maxRetries, lastError, lastResponse)
}

func retryMessage(err error) string {
	return fmt.Sprintf("The answer could not be used: %v. Reply again with only the JSON object described above.", err)
}
