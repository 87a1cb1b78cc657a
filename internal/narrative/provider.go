package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Provider turns a prompt into Markdown text.
type Provider interface {
	Name() string
	Explain(ctx context.Context, prompt, system string) (string, error)
}

// GeminiProvider calls a Gemini model through the GenAI SDK.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a client for model using apiKey.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		return nil, errors.New("gemini model is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

// Name identifies the provider in logs and responses.
func (p *GeminiProvider) Name() string { return "gemini" }

// Explain sends prompt with system as the system instruction.
func (p *GeminiProvider) Explain(ctx context.Context, prompt, system string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.4)),
		MaxOutputTokens: 1500,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("gemini returned an empty explanation")
	}
	return text, nil
}

// FallbackProvider restates the prompt's figures when no model is configured.
type FallbackProvider struct{}

var _ Provider = FallbackProvider{}

// Name identifies the provider in logs and responses.
func (FallbackProvider) Name() string { return "builtin" }

// Explain never fails.
func (FallbackProvider) Explain(_ context.Context, prompt, _ string) (string, error) {
	var b strings.Builder
	b.WriteString("_Model explanations are not configured. Set `GEMINI_API_KEY` to enable them._\n\n")

	section := ""
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "Inputs:" || line == "Results:":
			section = strings.TrimSuffix(line, ":")
			fmt.Fprintf(&b, "\n### %s\n\n", section)
		case line == "Please cover:":
			section = ""
		case section != "" && strings.HasPrefix(line, "- "):
			key, value, _ := strings.Cut(strings.TrimPrefix(line, "- "), ": ")
			fmt.Fprintf(&b, "- **%s**: %s\n", humanKey(key), value)
		}
	}
	return b.String(), nil
}

func humanKey(k string) string {
	return strings.ReplaceAll(strings.ReplaceAll(k, "_", " "), ".", " / ")
}
