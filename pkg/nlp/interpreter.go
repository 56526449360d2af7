package nlp

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/agent"
	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/metrics"
)

// Source names the stage that produced an interpretation.
type Source string

const (
	SourceRules    Source = "rules"
	SourceFallback Source = "fallback"
)

// Interpretation is a canonical command line derived from free text.
type Interpretation struct {
	Command string `json:"command"`
	Source  Source `json:"source"`
}

// Fallback is consulted when no rule recognizes the input.
type Fallback interface {
	Translate(ctx context.Context, text string) (string, error)
}

// Interpreter chains the rule cascade with an optional remote fallback and
// strips filler words from whatever comes back.
type Interpreter struct {
	fallback Fallback
	logger   logrus.FieldLogger
}

// NewInterpreter returns an interpreter. fallback may be nil.
func NewInterpreter(fallback Fallback) *Interpreter {
	return &Interpreter{fallback: fallback}
}

// SetLogger attaches a logger. Passing nil disables logging.
func (i *Interpreter) SetLogger(l logrus.FieldLogger) {
	i.logger = l
}

// Interpret reports false when neither the rules nor the fallback yield a
// non-empty command. Fallback failures are logged and treated as no result.
func (i *Interpreter) Interpret(ctx context.Context, text string) (Interpretation, bool) {
	if strings.TrimSpace(text) == "" {
		return Interpretation{}, false
	}

	if cmd, ok := Translate(text); ok {
		if cmd = StripFillers(cmd); cmd != "" {
			metrics.TranslationsTotal.WithLabelValues(metrics.SourceRules).Inc()
			return Interpretation{Command: cmd, Source: SourceRules}, true
		}
	}

	if i.fallback != nil {
		out, err := i.fallback.Translate(ctx, text)
		switch {
		case err != nil:
			i.warn(err, text)
		default:
			if cmd := StripFillers(firstLine(out)); cmd != "" {
				metrics.TranslationsTotal.WithLabelValues(metrics.SourceFallback).Inc()
				return Interpretation{Command: cmd, Source: SourceFallback}, true
			}
		}
	}

	metrics.TranslationsTotal.WithLabelValues(metrics.SourceNone).Inc()
	return Interpretation{}, false
}

func (i *Interpreter) warn(err error, text string) {
	if i.logger == nil {
		return
	}
	log := i.logger.WithError(err).WithField("text", text)
	if errors.Is(err, agent.ErrNotConfigured) {
		log.Debug("fallback_unavailable")
		return
	}
	log.Warn("fallback_failed")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
