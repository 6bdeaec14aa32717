// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/labmate/internal/secrets"
	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// Gemini API roots; tests point them at an httptest server.
var (
	geminiAPIBase    = "https://generativelanguage.googleapis.com/v1beta"
	geminiUploadBase = "https://generativelanguage.googleapis.com/upload/v1beta"
)

// GeminiClient implements Client against the Gemini API. It is exported
// because PDF question answering is Gemini-only and needs the concrete
// type.
type GeminiClient struct {
	key        string
	model      string
	maxRetries int
	http       *http.Client
}

// NewGeminiClient resolves the Gemini credential and builds the client.
// A missing key fails with ErrAuth before any network traffic.
func NewGeminiClient(cfg types.SummaryConfig) (*GeminiClient, error) {
	key := secrets.ForProvider(cfg.APIKey, types.ProviderGemini)
	if key == "" {
		return nil, errdefs.New(errdefs.ErrAuth, "summarize client",
			"no Gemini API key: set %s or %s", secrets.EnvGeminiKey, secrets.EnvGoogleKey)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiClient{
		key:        key,
		model:      model,
		maxRetries: cfg.MaxRetries,
		http:       httpClient(cfg.HTTPConfig),
	}, nil
}

func (c *GeminiClient) Provider() types.Provider { return types.ProviderGemini }
func (c *GeminiClient) Model() string            { return c.model }

type geminiFileData struct {
	MIMEType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"file_data,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiGenerateRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) Complete(ctx context.Context, r Request) (string, error) {
	return c.generate(ctx, r.System, []geminiContent{
		{Role: "user", Parts: []geminiPart{{Text: r.Prompt}}},
	}, r.MaxTokens, r.Temperature)
}

// generate runs one generateContent call over the given contents.
func (c *GeminiClient) generate(ctx context.Context, system string, contents []geminiContent, maxTokens int, temperature float64) (string, error) {
	const op = "gemini completion"

	body := geminiGenerateRequest{Contents: contents}
	if system != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	if maxTokens > 0 || temperature > 0 {
		body.GenerationConfig = &geminiGenerationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     temperature,
		}
	}

	req, err := postJSON(ctx, c.endpoint("/models/"+c.model+":generateContent"), body)
	if err != nil {
		return "", errdefs.Wrap(errdefs.ErrRequest, op, err)
	}

	var out geminiGenerateResponse
	if err := doJSON(ctx, c.http, op, types.ProviderGemini, req, c.maxRetries, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 {
		return "", errdefs.New(errdefs.ErrParse, op, "response contains no candidates")
	}

	var text strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return "", errdefs.New(errdefs.ErrParse, op, "candidate contains no text parts")
	}
	return text.String(), nil
}

// ListModels returns the models that support generateContent.
func (c *GeminiClient) ListModels(ctx context.Context) ([]string, error) {
	const op = "gemini list models"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/models"), nil)
	if err != nil {
		return nil, errdefs.Wrap(errdefs.ErrRequest, op, err)
	}

	var out struct {
		Models []struct {
			Name             string   `json:"name"`
			SupportedActions []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := doJSON(ctx, c.http, op, types.ProviderGemini, req, c.maxRetries, &out); err != nil {
		return nil, err
	}

	models := make([]string, 0, len(out.Models))
	for _, m := range out.Models {
		for _, action := range m.SupportedActions {
			if action == "generateContent" {
				models = append(models, strings.TrimPrefix(m.Name, "models/"))
				break
			}
		}
	}
	sort.Strings(models)
	return models, nil
}

// endpoint builds an API URL with the key in the query string, the way
// the Gemini REST API authenticates.
func (c *GeminiClient) endpoint(path string) string {
	return geminiAPIBase + path + "?key=" + url.QueryEscape(c.key)
}
