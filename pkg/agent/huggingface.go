package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultHuggingFaceModel    = "meta-llama/Llama-3.2-1B"
	DefaultHuggingFaceEndpoint = "https://api-inference.huggingface.co/models"

	maxNewTokens = 100
)

// HuggingFace calls the hosted inference API.
type HuggingFace struct {
	endpoint string
	model    string
	token    string
	client   *http.Client
}

func NewHuggingFace(opts Options) *HuggingFace {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultHuggingFaceEndpoint
	}
	model := opts.Model
	if model == "" {
		model = DefaultHuggingFaceModel
	}
	return &HuggingFace{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		token:    strings.TrimSpace(opts.Token),
		client:   &http.Client{Timeout: opts.timeout()},
	}
}

// Translate posts the prompt and extracts the first line of generated text.
func (h *HuggingFace) Translate(ctx context.Context, text string) (string, error) {
	if h.token == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]interface{}{
		"inputs":     BuildPrompt(text),
		"parameters": map[string]int{"max_new_tokens": maxNewTokens},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint+"/"+h.model, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("huggingface API error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	out, err := parseInference(body)
	if err != nil {
		return "", err
	}
	return firstLine(out), nil
}

// parseInference accepts a list of generations, rejects an error object and
// passes any other JSON value through as text.
func parseInference(body []byte) (string, error) {
	var raw interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	switch v := raw.(type) {
	case []interface{}:
		if len(v) == 0 {
			return "", errors.New("huggingface returned no generations")
		}
		first, _ := v[0].(map[string]interface{})
		text, _ := first["generated_text"].(string)
		return text, nil
	case map[string]interface{}:
		if msg, ok := v["error"]; ok {
			return "", fmt.Errorf("huggingface error: %v", msg)
		}
		return string(body), nil
	case string:
		return v, nil
	default:
		return string(body), nil
	}
}
