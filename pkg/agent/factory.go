package agent

import (
	"context"
	"fmt"
	"strings"
)

// Provider names accepted by NewFallback.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOllama      = "ollama"
	ProviderGemini      = "gemini"
	ProviderNone        = "none"
)

// Providers lists the accepted provider names.
var Providers = []string{ProviderHuggingFace, ProviderOllama, ProviderGemini, ProviderNone}

// NewFallback creates the provider named in opts. Missing credentials are not
// an error here; the provider reports ErrNotConfigured when called.
func NewFallback(ctx context.Context, opts Options) (Fallback, error) {
	switch strings.ToLower(opts.Provider) {
	case ProviderHuggingFace, "hf", "":
		return NewHuggingFace(opts), nil
	case ProviderOllama:
		return NewOllama(opts), nil
	case ProviderGemini:
		return NewGemini(ctx, opts)
	case ProviderNone, "off":
		return none{}, nil
	default:
		return nil, fmt.Errorf("unknown fallback provider: %s", opts.Provider)
	}
}
