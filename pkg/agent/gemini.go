package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// contentGenerator is the part of the genai client Gemini uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini translates through the Google Gemini API.
type Gemini struct {
	models contentGenerator
	model  string
	opts   Options
}

// NewGemini returns a provider without a client when no API key is set;
// Translate then reports ErrNotConfigured.
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	model := opts.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	g := &Gemini{model: model, opts: opts}
	if strings.TrimSpace(opts.Token) == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.Token,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.models = client.Models
	return g, nil
}

func (g *Gemini) Translate(ctx context.Context, text string) (string, error) {
	if g.models == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.timeout())
	defer cancel()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(text)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return firstLine(responseText(resp)), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
