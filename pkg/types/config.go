// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "labmate/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// Provider identifies a hosted LLM API.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// Valid reports whether p names a supported provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		return true
	}
	return false
}

// SearchConfig holds settings for arXiv search and metadata lookups.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results to return. Zero asks for
	// nothing and returns an empty list; negative values fall back to the
	// default of 10.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxRetries is the number of retries for rate-limited requests
	// (default 0, meaning a 429 response is returned to the caller).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// FetchConfig holds settings for paper acquisition.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PapersDir is the base directory for papers (contains raw/, metadata/, source/).
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`

	// WithSource also downloads the arXiv e-print source archive.
	WithSource bool `json:"with_source" yaml:"with_source"`
}

// ConversionBackend identifies the PDF conversion implementation.
type ConversionBackend string

const (
	BackendNative     ConversionBackend = "native"
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ConvertConfig holds settings for document conversion.
type ConvertConfig struct {
	// Backend selects the PDF conversion implementation: native or markitdown.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// MarkdownDir is the output directory for converted Markdown files.
	MarkdownDir string `json:"markdown_dir" yaml:"markdown_dir"`

	// PandocPath overrides the pandoc binary used for LaTeX conversion
	// (default "pandoc", resolved on PATH).
	PandocPath string `json:"pandoc_path,omitempty" yaml:"pandoc_path,omitempty"`
}

// SummaryConfig holds settings for LLM summarization.
type SummaryConfig struct {
	HTTPConfig `yaml:",inline"`

	// Provider selects the LLM API: openai, anthropic, or gemini.
	// There is no default; callers must choose explicitly.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier. Empty selects the provider's
	// documented default model.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// APIKey overrides the provider's environment variable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the completion length. Zero lets the provider default
	// apply, except for Anthropic where the API requires a cap (8192).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the sampling temperature. Zero is treated as unset.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// Language controls the reply language: empty leaves it to the model,
	// "auto" detects the input's language, anything else is used verbatim.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// MaxRetries is the number of retries for rate-limited requests
	// (default 0, meaning a 429 response is returned to the caller).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LibraryConfig holds settings for the local paper catalog.
type LibraryConfig struct {
	// Path is the SQLite database file (default "library/labmate.db").
	Path string `json:"path" yaml:"path"`
}

// ServeConfig holds settings for the catalog HTTP API.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultHTTPConfig returns HTTP settings with a 30-second timeout.
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:   30 * time.Second,
		UserAgent: "labmate/0.1",
	}
}

// DefaultSearchConfig returns search settings with the documented defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		HTTPConfig: DefaultHTTPConfig(),
		MaxResults: 10,
	}
}

// DefaultFetchConfig returns fetch settings rooted at ./papers.
func DefaultFetchConfig() FetchConfig {
	return FetchConfig{
		HTTPConfig: DefaultHTTPConfig(),
		PapersDir:  "papers",
	}
}

// DefaultConvertConfig returns conversion settings using the native backend.
func DefaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		Backend:     BackendNative,
		MarkdownDir: "papers/markdown",
	}
}

// DefaultSummaryConfig returns summarization settings without a provider;
// callers must select one explicitly.
func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		HTTPConfig: DefaultHTTPConfig(),
	}
}

// DefaultLibraryConfig returns catalog settings pointing at library/labmate.db.
func DefaultLibraryConfig() LibraryConfig {
	return LibraryConfig{Path: "library/labmate.db"}
}

// DefaultServeConfig returns HTTP API settings listening on :8080.
func DefaultServeConfig() ServeConfig {
	return ServeConfig{Addr: ":8080"}
}
