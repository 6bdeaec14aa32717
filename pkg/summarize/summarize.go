// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize generates paper summaries through hosted LLM APIs.
// Three providers are supported behind one Client interface: OpenAI,
// Anthropic, and Gemini. Provider selection is always explicit; there is
// no default provider, only a default model per provider.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"github.com/pdiddy/labmate/internal/httputil"
	"github.com/pdiddy/labmate/internal/secrets"
	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// Default model per provider, used when SummaryConfig.Model is empty.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	DefaultGeminiModel    = "gemini-2.0-flash"
)

// Client is one provider's text-generation endpoint.
type Client interface {
	// Provider identifies the API behind the client.
	Provider() types.Provider

	// Model returns the model identifier requests are sent to.
	Model() string

	// Complete sends one completion request and returns the generated text.
	Complete(ctx context.Context, req Request) (string, error)

	// ListModels enumerates the models the provider currently serves.
	ListModels(ctx context.Context) ([]string, error)
}

// Request is a provider-independent completion request. Each client
// translates it into its provider's wire format.
type Request struct {
	// System is the system prompt; empty omits it.
	System string

	// Prompt is the user message.
	Prompt string

	// MaxTokens caps the completion length; zero lets the provider
	// default apply (Anthropic requires a cap and falls back to 8192).
	MaxTokens int

	// Temperature is the sampling temperature; zero is omitted.
	Temperature float64
}

// NewClient builds the client selected by cfg.Provider. The API key is
// resolved at construction, config value first and then the provider's
// environment variables; a missing key fails with ErrAuth before any
// network traffic.
func NewClient(cfg types.SummaryConfig) (Client, error) {
	const op = "summarize client"

	switch cfg.Provider {
	case types.ProviderOpenAI:
		key := secrets.ForProvider(cfg.APIKey, cfg.Provider)
		if key == "" {
			return nil, errdefs.New(errdefs.ErrAuth, op, "no OpenAI API key: set %s", secrets.EnvOpenAIKey)
		}
		return newOpenAIClient(key, cfg), nil
	case types.ProviderAnthropic:
		key := secrets.ForProvider(cfg.APIKey, cfg.Provider)
		if key == "" {
			return nil, errdefs.New(errdefs.ErrAuth, op, "no Anthropic API key: set %s", secrets.EnvAnthropicKey)
		}
		return newAnthropicClient(key, cfg), nil
	case types.ProviderGemini:
		return NewGeminiClient(cfg)
	}
	return nil, errdefs.New(errdefs.ErrRequest, op,
		"unknown provider %q (valid: openai, anthropic, gemini)", cfg.Provider)
}

// summaryPromptTmpl asks the model for structured output so key points
// survive parsing; the raw completion is the fallback.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`Summarize the following research paper text for a researcher deciding whether to read the full paper.

Respond with a JSON object with exactly these fields:
- "summary": a few paragraphs covering the problem, the approach, and the main findings
- "key_points": an array of short bullet strings with the most important takeaways

Do not include any text outside the JSON object.
{{- if .Language}}
Write the summary and key points in {{.Language}}.
{{- end}}

Paper text:
{{.Text}}
`))

const systemPrompt = "You are a precise research assistant. You summarize academic papers faithfully and never invent results."

// Summarize builds the summary prompt for text and sends it through
// client. Empty input fails with ErrRequest before any network call. The
// completion is parsed as JSON, repaired when the model wrapped or
// malformed it, and degraded to raw prose when neither works.
func Summarize(ctx context.Context, client Client, text string, cfg types.SummaryConfig) (types.Summary, error) {
	const op = "summarize"

	if strings.TrimSpace(text) == "" {
		return types.Summary{}, errdefs.New(errdefs.ErrRequest, op, "empty input text")
	}

	prompt, err := renderPrompt(text, replyLanguage(cfg.Language, text))
	if err != nil {
		return types.Summary{}, fmt.Errorf("%s: rendering prompt: %w", op, err)
	}

	out, err := client.Complete(ctx, Request{
		System:      systemPrompt,
		Prompt:      prompt,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return types.Summary{}, err
	}

	sum := parseSummary(out)
	sum.Provider = client.Provider()
	sum.Model = client.Model()
	return sum, nil
}

func renderPrompt(text, language string) (string, error) {
	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct {
		Text     string
		Language string
	}{Text: text, Language: language})
	return buf.String(), err
}

// parseSummary decodes a completion into a Summary: strict JSON first,
// then a jsonrepair pass over the fence-stripped text, then the raw
// completion as prose.
func parseSummary(raw string) types.Summary {
	var parsed struct {
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"key_points"`
	}

	candidate := stripFences(raw)
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(candidate)
		if repairErr != nil || json.Unmarshal([]byte(repaired), &parsed) != nil {
			return types.Summary{Text: strings.TrimSpace(raw)}
		}
	}
	if parsed.Summary == "" {
		return types.Summary{Text: strings.TrimSpace(raw)}
	}
	return types.Summary{Text: parsed.Summary, KeyPoints: parsed.KeyPoints}
}

// stripFences removes a surrounding Markdown code fence, with or without
// a language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], "{[") {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// doJSON sends req, maps failures onto the error taxonomy, and decodes a
// successful body into out. Retrying covers only 429 and only when
// maxRetries is positive.
func doJSON(ctx context.Context, client *http.Client, op string, provider types.Provider, req *http.Request, maxRetries int, out any) error {
	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries, io.Discard)
	if err != nil {
		return errdefs.Wrap(errdefs.ErrRequest, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return errdefs.FromStatus(op, string(provider), resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errdefs.Wrap(errdefs.ErrParse, op, err)
	}
	return nil
}

// postJSON builds a POST request with a JSON body. GetBody is populated
// by NewRequestWithContext so 429 retries can rewind.
func postJSON(ctx context.Context, url string, body any) (*http.Request, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// httpClient builds a client honoring cfg.Timeout (default 120 s;
// completions over long papers are slow).
func httpClient(cfg types.HTTPConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
