// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// anthropicBase is the API root; tests point it at an httptest server.
var anthropicBase = "https://api.anthropic.com/v1"

const anthropicVersion = "2023-06-01"

// anthropicDefaultMaxTokens applies when the caller leaves MaxTokens
// unset; the Messages API rejects requests without a cap.
const anthropicDefaultMaxTokens = 8192

type anthropicClient struct {
	key        string
	model      string
	maxRetries int
	http       *http.Client
}

func newAnthropicClient(key string, cfg types.SummaryConfig) *anthropicClient {
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &anthropicClient{
		key:        key,
		model:      model,
		maxRetries: cfg.MaxRetries,
		http:       httpClient(cfg.HTTPConfig),
	}
}

func (c *anthropicClient) Provider() types.Provider { return types.ProviderAnthropic }
func (c *anthropicClient) Model() string            { return c.model }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`

	Temperature float64 `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *anthropicClient) Complete(ctx context.Context, r Request) (string, error) {
	const op = "anthropic completion"

	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	req, err := postJSON(ctx, anthropicBase+"/messages", anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		System:      r.System,
		Messages:    []anthropicMessage{{Role: "user", Content: r.Prompt}},
		Temperature: r.Temperature,
	})
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	c.setHeaders(req)

	var out anthropicResponse
	if err := doJSON(ctx, c.http, op, types.ProviderAnthropic, req, c.maxRetries, &out); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", errdefs.New(errdefs.ErrParse, op, "response contains no text blocks")
	}
	return text.String(), nil
}

func (c *anthropicClient) ListModels(ctx context.Context) ([]string, error) {
	const op = "anthropic list models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, anthropicBase+"/models", nil)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	c.setHeaders(req)

	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := doJSON(ctx, c.http, op, types.ProviderAnthropic, req, c.maxRetries, &out); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		models = append(models, m.ID)
	}
	sort.Strings(models)
	return models, nil
}

func (c *anthropicClient) setHeaders(req *http.Request) {
	req.Header.Set("x-api-key", c.key)
	req.Header.Set("anthropic-version", anthropicVersion)
}
