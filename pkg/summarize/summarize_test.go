// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// fakeClient records completions without any network traffic.
type fakeClient struct {
	out   string
	err   error
	calls atomic.Int32
	last  Request
}

func (f *fakeClient) Provider() types.Provider { return types.ProviderOpenAI }
func (f *fakeClient) Model() string            { return "fake-model" }

func (f *fakeClient) Complete(_ context.Context, r Request) (string, error) {
	f.calls.Add(1)
	f.last = r
	return f.out, f.err
}

func (f *fakeClient) ListModels(context.Context) ([]string, error) { return nil, nil }

func clearKeys(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(types.SummaryConfig{Provider: "cohere"})
	if !errdefs.IsRequest(err) {
		t.Fatalf("error = %v, want ErrRequest", err)
	}
	if !strings.Contains(err.Error(), "openai, anthropic, gemini") {
		t.Errorf("error %q does not name valid providers", err)
	}
}

func TestNewClientMissingKey(t *testing.T) {
	clearKeys(t)
	for _, p := range []types.Provider{types.ProviderOpenAI, types.ProviderAnthropic, types.ProviderGemini} {
		_, err := NewClient(types.SummaryConfig{Provider: p})
		if !errdefs.IsAuth(err) {
			t.Errorf("provider %s: error = %v, want ErrAuth", p, err)
		}
	}
}

func TestNewClientDefaultModels(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("GEMINI_API_KEY", "AIza-test")

	tests := []struct {
		provider types.Provider
		want     string
	}{
		{types.ProviderOpenAI, DefaultOpenAIModel},
		{types.ProviderAnthropic, DefaultAnthropicModel},
		{types.ProviderGemini, DefaultGeminiModel},
	}
	for _, tt := range tests {
		c, err := NewClient(types.SummaryConfig{Provider: tt.provider})
		if err != nil {
			t.Fatalf("NewClient(%s): %v", tt.provider, err)
		}
		if c.Model() != tt.want {
			t.Errorf("provider %s: model = %q, want %q", tt.provider, c.Model(), tt.want)
		}
	}
}

func TestSummarizeEmptyText(t *testing.T) {
	client := &fakeClient{out: "unused"}
	_, err := Summarize(context.Background(), client, "   \n", types.SummaryConfig{})
	if !errdefs.IsRequest(err) {
		t.Fatalf("error = %v, want ErrRequest", err)
	}
	if n := client.calls.Load(); n != 0 {
		t.Errorf("client invoked %d times for empty input", n)
	}
}

func TestSummarizeParsesStructuredOutput(t *testing.T) {
	client := &fakeClient{out: `{"summary": "A transformer paper.", "key_points": ["attention", "no recurrence"]}`}

	sum, err := Summarize(context.Background(), client, "paper text", types.SummaryConfig{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.Text != "A transformer paper." {
		t.Errorf("Text = %q", sum.Text)
	}
	if len(sum.KeyPoints) != 2 {
		t.Errorf("KeyPoints = %v", sum.KeyPoints)
	}
	if sum.Provider != types.ProviderOpenAI || sum.Model != "fake-model" {
		t.Errorf("attribution = %s/%s", sum.Provider, sum.Model)
	}
	if !strings.Contains(client.last.Prompt, "paper text") {
		t.Errorf("prompt missing input text:\n%s", client.last.Prompt)
	}
	if client.last.System == "" {
		t.Error("system prompt not set")
	}
}

func TestSummarizeLanguageInstruction(t *testing.T) {
	client := &fakeClient{out: `{"summary": "ok"}`}

	_, err := Summarize(context.Background(), client, "text", types.SummaryConfig{Language: "German"})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.Contains(client.last.Prompt, "in German") {
		t.Errorf("prompt missing language instruction:\n%s", client.last.Prompt)
	}

	_, err = Summarize(context.Background(), client, "text", types.SummaryConfig{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if strings.Contains(client.last.Prompt, "Write the summary") {
		t.Errorf("prompt has language instruction without a setting:\n%s", client.last.Prompt)
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantText   string
		wantPoints int
	}{
		{
			name:       "strict JSON",
			raw:        `{"summary": "clean", "key_points": ["a", "b"]}`,
			wantText:   "clean",
			wantPoints: 2,
		},
		{
			name:       "fenced JSON",
			raw:        "```json\n{\"summary\": \"fenced\", \"key_points\": [\"a\"]}\n```",
			wantText:   "fenced",
			wantPoints: 1,
		},
		{
			name:       "repairable JSON",
			raw:        `{"summary": "trailing", "key_points": ["a",]}`,
			wantText:   "trailing",
			wantPoints: 1,
		},
		{
			name:       "raw prose fallback",
			raw:        "The paper proposes a new attention mechanism.",
			wantText:   "The paper proposes a new attention mechanism.",
			wantPoints: 0,
		},
		{
			name:       "JSON without summary field",
			raw:        `{"key_points": ["orphan"]}`,
			wantText:   `{"key_points": ["orphan"]}`,
			wantPoints: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSummary(tt.raw)
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			if len(got.KeyPoints) != tt.wantPoints {
				t.Errorf("KeyPoints = %v, want %d entries", got.KeyPoints, tt.wantPoints)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{`{"a": 1}`, `{"a": 1}`},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReplyLanguage(t *testing.T) {
	if got := replyLanguage("", "whatever"); got != "" {
		t.Errorf("empty setting = %q, want empty", got)
	}
	if got := replyLanguage("Klingon", "whatever"); got != "Klingon" {
		t.Errorf("verbatim setting = %q, want Klingon", got)
	}
	got := replyLanguage("auto", "The quick brown fox jumps over the lazy dog near the riverbank every morning.")
	if got != "English" {
		t.Errorf("auto detection = %q, want English", got)
	}
}

func TestOpenAIComplete(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "done"}},
			},
		})
	}))
	defer ts.Close()

	orig := openAIBase
	openAIBase = ts.URL
	defer func() { openAIBase = orig }()

	c := newOpenAIClient("sk-test", types.SummaryConfig{Model: "gpt-4o-mini", MaxTokens: 500})
	out, err := c.Complete(context.Background(), Request{System: "sys", Prompt: "hi", MaxTokens: 500})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "done" {
		t.Errorf("out = %q", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody["max_completion_tokens"] != float64(500) {
		t.Errorf("max_completion_tokens = %v", gotBody["max_completion_tokens"])
	}
	msgs := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", msgs)
	}
	if role := msgs[0].(map[string]any)["role"]; role != "system" {
		t.Errorf("first message role = %v", role)
	}
}

func TestAnthropicComplete(t *testing.T) {
	var gotHeaders http.Header
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotHeaders = r.Header.Clone()
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{"type": "text", "text": "done"}},
		})
	}))
	defer ts.Close()

	orig := anthropicBase
	anthropicBase = ts.URL
	defer func() { anthropicBase = orig }()

	c := newAnthropicClient("sk-ant", types.SummaryConfig{})
	out, err := c.Complete(context.Background(), Request{System: "sys", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "done" {
		t.Errorf("out = %q", out)
	}
	if gotHeaders.Get("x-api-key") != "sk-ant" {
		t.Errorf("x-api-key = %q", gotHeaders.Get("x-api-key"))
	}
	if gotHeaders.Get("anthropic-version") != anthropicVersion {
		t.Errorf("anthropic-version = %q", gotHeaders.Get("anthropic-version"))
	}
	// Unset MaxTokens falls back to the required cap.
	if gotBody["max_tokens"] != float64(anthropicDefaultMaxTokens) {
		t.Errorf("max_tokens = %v, want %d", gotBody["max_tokens"], anthropicDefaultMaxTokens)
	}
	if gotBody["system"] != "sys" {
		t.Errorf("system = %v", gotBody["system"])
	}
}

func TestGeminiComplete(t *testing.T) {
	var gotKey string
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []map[string]string{{"text": "done"}}}},
			},
		})
	}))
	defer ts.Close()

	orig := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = orig }()

	t.Setenv("GEMINI_API_KEY", "AIza-test")
	c, err := NewGeminiClient(types.SummaryConfig{MaxTokens: 300})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	out, err := c.Complete(context.Background(), Request{System: "sys", Prompt: "hi", MaxTokens: 300})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "done" {
		t.Errorf("out = %q", out)
	}
	if gotKey != "AIza-test" {
		t.Errorf("key = %q", gotKey)
	}
	if gotBody["systemInstruction"] == nil {
		t.Error("systemInstruction missing")
	}
	gc := gotBody["generationConfig"].(map[string]any)
	if gc["maxOutputTokens"] != float64(300) {
		t.Errorf("maxOutputTokens = %v", gc["maxOutputTokens"])
	}
}

func TestCompleteErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
		kind   string
	}{
		{http.StatusUnauthorized, errdefs.IsAuth, "ErrAuth"},
		{http.StatusTooManyRequests, errdefs.IsRateLimited, "ErrRateLimited"},
		{http.StatusInternalServerError, errdefs.IsRequest, "ErrRequest"},
	}
	for _, tt := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		orig := openAIBase
		openAIBase = ts.URL

		c := newOpenAIClient("sk-test", types.SummaryConfig{})
		_, err := c.Complete(context.Background(), Request{Prompt: "hi"})

		openAIBase = orig
		ts.Close()

		if err == nil || !tt.check(err) {
			t.Errorf("status %d: error = %v, want %s", tt.status, err, tt.kind)
		}
	}
}

func TestCompleteMalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer ts.Close()

	orig := anthropicBase
	anthropicBase = ts.URL
	defer func() { anthropicBase = orig }()

	c := newAnthropicClient("sk-ant", types.SummaryConfig{})
	_, err := c.Complete(context.Background(), Request{Prompt: "hi"})
	if !errdefs.IsParse(err) {
		t.Errorf("error = %v, want ErrParse", err)
	}
}

func TestOpenAIListModels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"id": "gpt-4o"}, {"id": "gpt-4o-mini"}},
		})
	}))
	defer ts.Close()

	orig := openAIBase
	openAIBase = ts.URL
	defer func() { openAIBase = orig }()

	c := newOpenAIClient("sk-test", types.SummaryConfig{})
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 || models[0] != "gpt-4o" {
		t.Errorf("models = %v", models)
	}
}

func TestGeminiListModelsFiltersGeneration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "models/gemini-2.0-flash", "supportedGenerationMethods": []string{"generateContent"}},
				{"name": "models/text-embedding-004", "supportedGenerationMethods": []string{"embedContent"}},
			},
		})
	}))
	defer ts.Close()

	orig := geminiAPIBase
	geminiAPIBase = ts.URL
	defer func() { geminiAPIBase = orig }()

	t.Setenv("GEMINI_API_KEY", "AIza-test")
	c, err := NewGeminiClient(types.SummaryConfig{})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || models[0] != "gemini-2.0-flash" {
		t.Errorf("models = %v", models)
	}
}

func TestParseSpec(t *testing.T) {
	tests := []struct {
		raw     string
		want    BatchSpec
		wantErr bool
	}{
		{"openai/gpt-4o", BatchSpec{types.ProviderOpenAI, "gpt-4o"}, false},
		{"anthropic", BatchSpec{types.ProviderAnthropic, ""}, false},
		{"Gemini/gemini-2.0-flash", BatchSpec{types.ProviderGemini, "gemini-2.0-flash"}, false},
		{"cohere/command", BatchSpec{}, true},
		{"", BatchSpec{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSpec(tt.raw)
		if tt.wantErr {
			if !errdefs.IsRequest(err) {
				t.Errorf("ParseSpec(%q) error = %v, want ErrRequest", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSpec(%q): %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSpec(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestSummarizeBatchIsolatesFailures(t *testing.T) {
	okServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"summary": "fine"}`}},
			},
		})
	}))
	defer okServer.Close()
	failServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failServer.Close()

	origOpenAI, origAnthropic := openAIBase, anthropicBase
	openAIBase, anthropicBase = okServer.URL, failServer.URL
	defer func() { openAIBase, anthropicBase = origOpenAI, origAnthropic }()

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	specs := []BatchSpec{
		{Provider: types.ProviderOpenAI},
		{Provider: types.ProviderAnthropic},
	}
	results := SummarizeBatch(context.Background(), "text", specs, types.SummaryConfig{})

	if len(results) != 2 {
		t.Fatalf("results = %d entries", len(results))
	}
	if results[0].Spec.Provider != types.ProviderOpenAI {
		t.Errorf("results out of spec order: %+v", results[0].Spec)
	}
	if results[0].Err != nil || results[0].Summary.Text != "fine" {
		t.Errorf("openai result = %+v, err %v", results[0].Summary, results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("anthropic failure not reported")
	}
}
