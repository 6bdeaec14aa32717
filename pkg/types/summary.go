// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Summary is the result of summarizing one text with one model.
type Summary struct {
	// Text is the summary prose. Never empty on success.
	Text string `json:"text" yaml:"text"`

	// KeyPoints lists the main findings when the model returned structured
	// output; empty when only prose was available.
	KeyPoints []string `json:"key_points,omitempty" yaml:"key_points,omitempty"`

	// Provider is the API that produced the summary.
	Provider Provider `json:"provider" yaml:"provider"`

	// Model is the model identifier that produced the summary.
	Model string `json:"model" yaml:"model"`
}
