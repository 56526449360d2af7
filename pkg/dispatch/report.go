package dispatch

import (
	"strings"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/nlp"
)

// StepResult is the outcome of one command in a batch.
type StepResult struct {
	Command string `json:"command"`
	Verb    string `json:"verb,omitempty"`
	Output  string `json:"output"`
	Status  string `json:"status"`
}

// Report collects the steps of a batch in execution order.
type Report struct {
	Input       string       `json:"input"`
	Interpreted string       `json:"interpreted,omitempty"`
	Source      nlp.Source   `json:"source,omitempty"`
	Steps       []StepResult `json:"steps"`
}

// String joins the step outputs with newlines.
func (r *Report) String() string {
	if r == nil {
		return ""
	}
	lines := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		lines[i] = s.Output
	}
	return strings.Join(lines, "\n")
}

// Commands returns the executed command texts.
func (r *Report) Commands() []string {
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Command
	}
	return out
}
