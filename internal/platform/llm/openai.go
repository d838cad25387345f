package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIProvider struct {
	model   string
	baseURL string
}

// NewOpenAIProvider builds a provider. baseURL is optional and points the
// SDK at a compatible endpoint.
func NewOpenAIProvider(model, baseURL string) *OpenAIProvider {
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{model: model, baseURL: baseURL}
}

func (p *OpenAIProvider) Service() string { return ServiceOpenAI }
func (p *OpenAIProvider) Model() string   { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, apiKey string, req Request) (*Response, error) {
	cfg := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:     p.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		chatReq.Temperature = float32(req.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Kind: ErrUpstream, Service: ServiceOpenAI, Err: errors.New("no choices in response")}
	}
	return &Response{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classify(ServiceOpenAI, apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classify(ServiceOpenAI, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}
	return classify(ServiceOpenAI, 0, err.Error(), err)
}
