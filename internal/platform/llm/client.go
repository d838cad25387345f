package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/skillpath-backend/internal/platform/logger"
)

// Client routes generation requests to the provider registered for a
// service name. Credentials are supplied per call.
type Client struct {
	log       *logger.Logger
	providers map[string]Provider
	prompts   *Catalogue
}

func NewClient(log *logger.Logger, prompts *Catalogue, providers ...Provider) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	if prompts == nil {
		var err error
		if prompts, err = DefaultCatalogue(); err != nil {
			return nil, err
		}
	}
	c := &Client{
		log:       log.With("service", "LLMClient"),
		providers: make(map[string]Provider, len(providers)),
		prompts:   prompts,
	}
	for _, p := range providers {
		if p == nil {
			continue
		}
		c.providers[NormalizeService(p.Service())] = p
	}
	return c, nil
}

// Services lists registered service names in sorted order.
func (c *Client) Services() []string {
	out := make([]string, 0, len(c.providers))
	for name := range c.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Client) Supports(service string) bool {
	_, ok := c.providers[NormalizeService(service)]
	return ok
}

func (c *Client) provider(service string) (Provider, error) {
	p, ok := c.providers[NormalizeService(service)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
	return p, nil
}

// Generate sends a bare prompt and returns the generated text.
func (c *Client) Generate(ctx context.Context, service, apiKey, prompt string) (string, error) {
	return c.GenerateRequest(ctx, service, apiKey, Request{Prompt: prompt})
}

func (c *Client) GenerateRequest(ctx context.Context, service, apiKey string, req Request) (string, error) {
	p, err := c.provider(service)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(apiKey) == "" {
		return "", &Error{Kind: ErrInvalidCredential, Service: p.Service(), Err: errors.New("empty api key")}
	}
	resp, err := p.Generate(ctx, apiKey, req)
	if err != nil {
		var classified *Error
		if !errors.As(err, &classified) {
			err = &Error{Kind: ErrUpstream, Service: p.Service(), Err: err}
		}
		return "", err
	}
	return resp.Text, nil
}

// ValidateKey performs the smallest possible generation with apiKey. A nil
// error means the upstream accepted the credential.
func (c *Client) ValidateKey(ctx context.Context, service, apiKey string) error {
	req, err := c.prompts.Render(PromptValidateKey, nil)
	if err != nil {
		return err
	}
	_, err = c.GenerateRequest(WithPurpose(ctx, "validate_key"), service, apiKey, req)
	return err
}

func (c *Client) generatePrompt(ctx context.Context, service, apiKey, name string, data map[string]any) (string, error) {
	req, err := c.prompts.Render(name, data)
	if err != nil {
		return "", err
	}
	return c.GenerateRequest(WithPurpose(ctx, name), service, apiKey, req)
}

func (c *Client) ExplainCode(ctx context.Context, service, apiKey, code, language string) (string, error) {
	return c.generatePrompt(ctx, service, apiKey, PromptExplainCode, map[string]any{
		"Code":     code,
		"Language": language,
	})
}

func (c *Client) ElaborateConcept(ctx context.Context, service, apiKey, concept, passage string, level int) (string, error) {
	data := map[string]any{"Concept": concept, "Context": passage}
	if level > 0 {
		data["Level"] = level
	}
	return c.generatePrompt(ctx, service, apiKey, PromptElaborateConcept, data)
}

func (c *Client) SuggestAlternative(ctx context.Context, service, apiKey, code, language, goal string) (string, error) {
	return c.generatePrompt(ctx, service, apiKey, PromptSuggestAlternative, map[string]any{
		"Code":     code,
		"Language": language,
		"Goal":     goal,
	})
}

func (c *Client) BookContent(ctx context.Context, service, apiKey, topic, chapter string, level int) (string, error) {
	data := map[string]any{"Topic": topic, "Chapter": chapter}
	if level > 0 {
		data["Level"] = level
	}
	return c.generatePrompt(ctx, service, apiKey, PromptBookContent, data)
}

func (c *Client) SummarizeResource(ctx context.Context, service, apiKey, title, text string) (string, error) {
	return c.generatePrompt(ctx, service, apiKey, PromptSummarizeResource, map[string]any{
		"Title": title,
		"Text":  text,
	})
}
