// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"strings"
	"sync"

	"github.com/pdiddy/labmate/pkg/errdefs"
	"github.com/pdiddy/labmate/pkg/types"
)

// BatchSpec names one provider/model pair for batch summarization.
type BatchSpec struct {
	Provider types.Provider
	Model    string // empty selects the provider default
}

// String renders the spec back to "provider/model" form.
func (s BatchSpec) String() string {
	if s.Model == "" {
		return string(s.Provider)
	}
	return string(s.Provider) + "/" + s.Model
}

// ParseSpec parses "provider" or "provider/model" into a BatchSpec.
// Unknown providers fail with ErrRequest.
func ParseSpec(raw string) (BatchSpec, error) {
	const op = "parse model spec"

	providerPart, modelPart, _ := strings.Cut(strings.TrimSpace(raw), "/")
	p := types.Provider(strings.ToLower(providerPart))
	if !p.Valid() {
		return BatchSpec{}, errdefs.New(errdefs.ErrRequest, op,
			"unknown provider in %q (valid: openai, anthropic, gemini)", raw)
	}
	return BatchSpec{Provider: p, Model: modelPart}, nil
}

// BatchResult carries one model's outcome. Exactly one of Summary and
// Err is meaningful.
type BatchResult struct {
	Spec    BatchSpec
	Summary types.Summary
	Err     error
}

// SummarizeBatch summarizes the same text with each spec concurrently,
// one goroutine per spec. One model's failure never blocks the others;
// results come back in spec order.
func SummarizeBatch(ctx context.Context, text string, specs []BatchSpec, cfg types.SummaryConfig) []BatchResult {
	results := make([]BatchResult, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec BatchSpec) {
			defer wg.Done()
			results[i] = BatchResult{Spec: spec}

			specCfg := cfg
			specCfg.Provider = spec.Provider
			specCfg.Model = spec.Model

			client, err := NewClient(specCfg)
			if err != nil {
				results[i].Err = err
				return
			}
			sum, err := Summarize(ctx, client, text, specCfg)
			if err != nil {
				results[i].Err = err
				return
			}
			results[i].Summary = sum
		}(i, spec)
	}
	wg.Wait()

	return results
}
