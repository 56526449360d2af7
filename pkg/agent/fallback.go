// Package agent provides the remote model translators consulted when the
// rule cascade cannot interpret a sentence.
package agent

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultTimeout bounds a single remote translation.
const DefaultTimeout = 30 * time.Second

// ErrNotConfigured is returned by providers that lack credentials or by the
// "none" provider.
var ErrNotConfigured = errors.New("fallback translator not configured")

// Fallback turns free text into a canonical command line.
type Fallback interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	// Endpoint overrides the provider base URL.
	Endpoint string
	// Token is the Hugging Face token or Gemini API key.
	Token   string
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// firstLine returns the first line of the trimmed model output.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// none never translates.
type none struct{}

func (none) Translate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
