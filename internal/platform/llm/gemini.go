package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiProvider struct {
	model string
}

func NewGeminiProvider(model string) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{model: model}
}

func (p *GeminiProvider) Service() string { return ServiceGemini }
func (p *GeminiProvider) Model() string   { return p.model }

func (p *GeminiProvider) Generate(ctx context.Context, apiKey string, req Request) (*Response, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &Error{Kind: ErrUpstream, Service: ServiceGemini, Err: fmt.Errorf("create client: %w", err)}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	config := &genai.GenerateContentConfig{MaxOutputTokens: int32(maxTokens)}
	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}

	result, err := client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	resp := &Response{Text: result.Text(), Model: p.model}
	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}
	return resp, nil
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classify(ServiceGemini, apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classify(ServiceGemini, apiErrPtr.Code, apiErrPtr.Message, err)
	}
	return classify(ServiceGemini, 0, err.Error(), err)
}
