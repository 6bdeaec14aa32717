// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// detectorLanguages bounds the detector to languages papers commonly
// appear in; a smaller set keeps detection fast and accurate.
var detectorLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Russian,
	lingua.Chinese,
	lingua.Japanese,
	lingua.Korean,
}

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// detectSampleBytes caps how much text feeds the detector; the opening
// of a paper is plenty.
const detectSampleBytes = 4096

// replyLanguage resolves the language instruction for the summary
// prompt: empty leaves the choice to the model, "auto" detects the
// input's language, anything else passes through verbatim.
func replyLanguage(setting, text string) string {
	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "":
		return ""
	case "auto":
		return detectLanguage(text)
	}
	return setting
}

// detectLanguage names the dominant language of text, or empty when
// detection is inconclusive.
func detectLanguage(text string) string {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectorLanguages...).
			Build()
	})

	sample := text
	if len(sample) > detectSampleBytes {
		sample = sample[:detectSampleBytes]
	}
	lang, ok := detector.DetectLanguageOf(sample)
	if !ok {
		return ""
	}
	return lang.String()
}
