package llm

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

const (
	PromptValidateKey        = "validate_key"
	PromptExplainCode        = "explain_code"
	PromptElaborateConcept   = "elaborate_concept"
	PromptSuggestAlternative = "suggest_alternative"
	PromptBookContent        = "book_content"
	PromptSummarizeResource  = "summarize_resource"
)

//go:embed prompts.yaml
var promptsYAML []byte

type PromptSpec struct {
	Name      string `yaml:"name"`
	Version   int    `yaml:"version"`
	MaxTokens int    `yaml:"max_tokens"`
	System    string `yaml:"system"`
	User      string `yaml:"user"`

	systemTmpl *template.Template
	userTmpl   *template.Template
}

type promptFile struct {
	Prompts []*PromptSpec `yaml:"prompts"`
}

// Catalogue is a parsed set of prompt templates keyed by name.
type Catalogue struct {
	specs map[string]*PromptSpec
}

var (
	defaultCatalogueOnce sync.Once
	defaultCatalogue     *Catalogue
	defaultCatalogueErr  error
)

// DefaultCatalogue returns the embedded catalogue.
func DefaultCatalogue() (*Catalogue, error) {
	defaultCatalogueOnce.Do(func() {
		defaultCatalogue, defaultCatalogueErr = ParseCatalogue(promptsYAML)
	})
	return defaultCatalogue, defaultCatalogueErr
}

func ParseCatalogue(raw []byte) (*Catalogue, error) {
	var f promptFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prompt catalogue: %w", err)
	}
	c := &Catalogue{specs: make(map[string]*PromptSpec, len(f.Prompts))}
	for _, p := range f.Prompts {
		if p == nil || strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("parse prompt catalogue: prompt without name")
		}
		if strings.TrimSpace(p.User) == "" {
			return nil, fmt.Errorf("parse prompt catalogue: %s has no user template", p.Name)
		}
		if _, dup := c.specs[p.Name]; dup {
			return nil, fmt.Errorf("parse prompt catalogue: duplicate prompt %s", p.Name)
		}
		var err error
		if p.userTmpl, err = template.New(p.Name + ".user").Option("missingkey=zero").Parse(p.User); err != nil {
			return nil, fmt.Errorf("parse prompt %s: %w", p.Name, err)
		}
		if p.System != "" {
			if p.systemTmpl, err = template.New(p.Name + ".system").Option("missingkey=zero").Parse(p.System); err != nil {
				return nil, fmt.Errorf("parse prompt %s: %w", p.Name, err)
			}
		}
		c.specs[p.Name] = p
	}
	return c, nil
}

func (c *Catalogue) Get(name string) (*PromptSpec, bool) {
	p, ok := c.specs[name]
	return p, ok
}

// Render builds a Request from the named prompt and data.
func (c *Catalogue) Render(name string, data any) (Request, error) {
	p, ok := c.specs[name]
	if !ok {
		return Request{}, fmt.Errorf("unknown prompt %q", name)
	}
	user, err := render(p.userTmpl, data)
	if err != nil {
		return Request{}, fmt.Errorf("render prompt %s: %w", name, err)
	}
	req := Request{Prompt: user, MaxTokens: p.MaxTokens}
	if p.systemTmpl != nil {
		if req.System, err = render(p.systemTmpl, data); err != nil {
			return Request{}, fmt.Errorf("render prompt %s: %w", name, err)
		}
	}
	return req, nil
}

func render(t *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
