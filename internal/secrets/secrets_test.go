// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/labmate/pkg/types"
)

func TestResolve(t *testing.T) {
	t.Setenv("LABMATE_TEST_KEY", "  from-env  ")
	t.Setenv("LABMATE_TEST_EMPTY", "   ")

	tests := []struct {
		name     string
		explicit string
		envVars  []string
		want     string
	}{
		{
			name:     "explicit wins over environment",
			explicit: "from-config",
			envVars:  []string{"LABMATE_TEST_KEY"},
			want:     "from-config",
		},
		{
			name:     "environment value is trimmed",
			explicit: "",
			envVars:  []string{"LABMATE_TEST_KEY"},
			want:     "from-env",
		},
		{
			name:     "whitespace-only explicit falls through",
			explicit: "   ",
			envVars:  []string{"LABMATE_TEST_KEY"},
			want:     "from-env",
		},
		{
			name:     "first non-empty variable wins",
			explicit: "",
			envVars:  []string{"LABMATE_TEST_UNSET", "LABMATE_TEST_EMPTY", "LABMATE_TEST_KEY"},
			want:     "from-env",
		},
		{
			name:     "nothing found",
			explicit: "",
			envVars:  []string{"LABMATE_TEST_UNSET"},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.explicit, tt.envVars...))
		})
	}
}

func TestForProvider(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "sk-openai")
	t.Setenv(EnvAnthropicKey, "sk-ant")
	t.Setenv(EnvGeminiKey, "")
	t.Setenv(EnvGoogleKey, "goog-key")

	assert.Equal(t, "sk-openai", ForProvider("", types.ProviderOpenAI))
	assert.Equal(t, "sk-ant", ForProvider("", types.ProviderAnthropic))
	assert.Equal(t, "goog-key", ForProvider("", types.ProviderGemini), "GOOGLE_API_KEY is the Gemini fallback")
	assert.Equal(t, "override", ForProvider("override", types.ProviderOpenAI))
	assert.Equal(t, "", ForProvider("", types.Provider("nope")))
}
