// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"net/http"
	"sort"

	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// openAIBase is the API root; tests point it at an httptest server.
var openAIBase = "https://api.openai.com/v1"

type openAIClient struct {
	key        string
	model      string
	maxRetries int
	http       *http.Client
}

func newOpenAIClient(key string, cfg types.SummaryConfig) *openAIClient {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &openAIClient{
		key:        key,
		model:      model,
		maxRetries: cfg.MaxRetries,
		http:       httpClient(cfg.HTTPConfig),
	}
}

func (c *openAIClient) Provider() types.Provider { return types.ProviderOpenAI }
func (c *openAIClient) Model() string            { return c.model }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`

	// Newer models reject max_tokens; max_completion_tokens covers both.
	MaxCompletionTokens int     `json:"max_completion_tokens,omitempty"`
	Temperature         float64 `json:"temperature,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (c *openAIClient) Complete(ctx context.Context, r Request) (string, error) {
	const op = "openai completion"

	msgs := make([]openAIMessage, 0, 2)
	if r.System != "" {
		msgs = append(msgs, openAIMessage{Role: "system", Content: r.System})
	}
	msgs = append(msgs, openAIMessage{Role: "user", Content: r.Prompt})

	req, err := postJSON(ctx, openAIBase+"/chat/completions", openAIChatRequest{
		Model:               c.model,
		Messages:            msgs,
		MaxCompletionTokens: r.MaxTokens,
		Temperature:         r.Temperature,
	})
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)

	var out openAIChatResponse
	if err := doJSON(ctx, c.http, op, types.ProviderOpenAI, req, c.maxRetries, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errdefs.New(errdefs.ErrParse, op, "response contains no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func (c *openAIClient) ListModels(ctx context.Context) ([]string, error) {
	const op = "openai list models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAIBase+"/models", nil)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.key)

	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := doJSON(ctx, c.http, op, types.ProviderOpenAI, req, c.maxRetries, &out); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(out.Data))
	for _, m := range out.Data {
		models = append(models, m.ID)
	}
	sort.Strings(models)
	return models, nil
}
