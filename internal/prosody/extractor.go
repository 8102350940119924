package prosody

// #region imports
import (
	"strings"
	"unicode/utf8"
)

// #endregion

// #region extractor
// FeatureExtractor turns utterance text plus timing into a
// ProsodyFeatures vector using the configured marker tables.
type FeatureExtractor struct {
	lex Lexicon
}

// NewFeatureExtractor creates an extractor with the given lexicon.
func NewFeatureExtractor(lex Lexicon) *FeatureExtractor {
	return &FeatureExtractor{lex: lex}
}

// #endregion extractor

// #region extract

// Extract computes the feature vector for one utterance. durationSec at
// or below zero yields a zero speech rate instead of a division error.
// audio may be nil; its variances then stay zero.
func (e *FeatureExtractor) Extract(text string, durationSec float64, audio *AudioFeatures) ProsodyFeatures {
	// Rune count approximates mora count for Japanese text.
	charCount := nonSpaceRuneCount(text)

	var speechRate float64
	if durationSec > 0 {
		speechRate = float64(charCount) / durationSec
	}

	hesitationCount := countOccurrences(text, e.lex.HesitationMarkers)
	ambiguousCount := countOccurrences(text, e.lex.AmbiguousEndings)

	pauseCount := countOccurrences(text, e.lex.PauseIndicators)
	denom := float64(charCount) / 10.0
	if denom < 1 {
		denom = 1
	}
	pauseRatio := float64(pauseCount) / denom
	if pauseRatio > 1.0 {
		pauseRatio = 1.0
	}

	feat := ProsodyFeatures{
		SpeechRate:           speechRate,
		PauseRatio:           pauseRatio,
		HesitationCount:      hesitationCount,
		AmbiguousEndingCount: ambiguousCount,
	}
	if audio != nil {
		feat.PitchVariance = audio.PitchVariance
		feat.VolumeVariance = audio.VolumeVariance
	}
	return feat
}

// #endregion extract

// #region helpers

// nonSpaceRuneCount counts runes after stripping spaces.
func nonSpaceRuneCount(text string) int {
	stripped := strings.ReplaceAll(text, " ", "")
	stripped = strings.ReplaceAll(stripped, "　", "")
	return utf8.RuneCountInString(stripped)
}

// countOccurrences sums the occurrence counts of every marker in text.
func countOccurrences(text string, markers []string) int {
	total := 0
	for _, m := range markers {
		total += strings.Count(text, m)
	}
	return total
}

// containsAny reports whether text contains at least one marker.
func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// #endregion helpers
