// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API credentials from the process environment.
// An explicit configuration value always wins over the environment. The CLI
// loads .env files into the environment at startup, so dotenv entries
// resolve through the same path. Values are never logged.
package secrets

import (
	"os"
	"strings"

	"github.com/pdiddy/labmate/pkg/types"
)

// Environment variable names checked per provider.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"

	// EnvGoogleKey is accepted as a fallback for Gemini; the Google SDKs
	// historically used this name.
	EnvGoogleKey = "GOOGLE_API_KEY"
)

// Resolve returns explicit when non-empty, otherwise the first non-empty
// environment variable from envVars. Values are trimmed; an empty result
// means no credential was found.
func Resolve(explicit string, envVars ...string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	for _, name := range envVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// ForProvider resolves the credential for one provider using its standard
// environment variables.
func ForProvider(explicit string, p types.Provider) string {
	switch p {
	case types.ProviderOpenAI:
		return Resolve(explicit, EnvOpenAIKey)
	case types.ProviderAnthropic:
		return Resolve(explicit, EnvAnthropicKey)
	case types.ProviderGemini:
		return Resolve(explicit, EnvGeminiKey, EnvGoogleKey)
	}
	return strings.TrimSpace(explicit)
}
