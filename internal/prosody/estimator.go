package prosody

// #region imports
import (
	"fmt"
)

// #endregion

// #region config

// EstimatorConfig holds the trigger thresholds for cognitive state
// estimation. The defaults are tuned for Japanese discussion speech.
type EstimatorConfig struct {
	SlowSpeechRate      float64 `yaml:"slow_speech_rate"`      // chars/sec below which speech counts as slow
	HighPauseRatio      float64 `yaml:"high_pause_ratio"`      // pause ratio above which pausing counts as high
	HighHesitationCount int     `yaml:"high_hesitation_count"` // fillers per utterance above which hesitation counts as high
}

// DefaultEstimatorConfig returns the standard thresholds.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		SlowSpeechRate:      3.0,
		HighPauseRatio:      0.3,
		HighHesitationCount: 3,
	}
}

// #endregion config

// #region estimator

// Estimator maps prosody features plus raw text to a CognitiveState.
// Estimation is pure and safe for concurrent use.
type Estimator struct {
	extractor *FeatureExtractor
	lex       Lexicon
	config    EstimatorConfig
}

// NewEstimator creates an estimator with the given lexicon and thresholds.
func NewEstimator(lex Lexicon, config EstimatorConfig) *Estimator {
	return &Estimator{
		extractor: NewFeatureExtractor(lex),
		lex:       lex,
		config:    config,
	}
}

// #endregion estimator

// #region estimate

// Estimate derives a CognitiveState from a feature vector and the raw
// utterance text. Every fired trigger records itself in Evidence.
func (s *Estimator) Estimate(feat ProsodyFeatures, text string) CognitiveState {
	evidence := map[string]any{}

	// Hesitation: weighted boolean triggers, clamped to [0,1].
	hesitation := 0.0
	if feat.SpeechRate < s.config.SlowSpeechRate {
		hesitation += 0.3
		evidence["slow_speech"] = true
	}
	if feat.PauseRatio > s.config.HighPauseRatio {
		hesitation += 0.2
		evidence["high_pause"] = true
	}
	if feat.HesitationCount > s.config.HighHesitationCount {
		hesitation += 0.3
		evidence["high_hesitation"] = feat.HesitationCount
	}
	if feat.AmbiguousEndingCount > 1 {
		hesitation += 0.2
		evidence["ambiguous_endings"] = feat.AmbiguousEndingCount
	}
	hesitation = clamp01(hesitation)

	confidence := 1.0 - hesitation

	// Understanding: midpoint baseline nudged by explanation and question markers.
	understanding := 0.5
	if containsAny(text, s.lex.ExplanationMarkers) {
		understanding += 0.3
		evidence["has_explanation"] = true
	}
	if containsAny(text, s.lex.QuestionMarkers) {
		understanding -= 0.3
		evidence["has_questions"] = true
	}
	understanding = clamp01(understanding)

	// Engagement: utterance length as a participation proxy.
	engagement := 0.5
	textLen := nonSpaceRuneCount(text)
	if textLen > 100 {
		engagement += 0.3
		evidence["long_utterance"] = true
	}
	if textLen < 20 {
		engagement -= 0.3
		evidence["short_utterance"] = true
	}
	engagement = clamp01(engagement)

	return CognitiveState{
		ConfidenceLevel:    confidence,
		UnderstandingLevel: understanding,
		HesitationLevel:    hesitation,
		EngagementLevel:    engagement,
		StateLabel:         stateLabel(confidence, understanding, hesitation, engagement),
		Evidence:           evidence,
	}
}

// #endregion estimate

// #region state-label

// stateLabel picks the label by fixed precedence; first match wins.
func stateLabel(confidence, understanding, hesitation, engagement float64) string {
	switch {
	case confidence > 0.7 && understanding > 0.7:
		return LabelConfident
	case hesitation > 0.6:
		return LabelHesitant
	case understanding < 0.4:
		return LabelConfused
	case engagement > 0.7:
		return LabelEngaged
	default:
		return LabelNeutral
	}
}

// #endregion state-label

// #region analyze-utterance

// AnalyzeUtterance runs extraction and estimation for one utterance.
// Any internal panic surfaces as a record carrying only the speaker and
// an error string; it never propagates to the caller.
func (s *Estimator) AnalyzeUtterance(text string, durationSec float64, speaker string, audio *AudioFeatures) (result UtteranceAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			result = UtteranceAnalysis{
				Speaker: speaker,
				Err:     fmt.Sprintf("analyze utterance: %v", r),
			}
		}
	}()

	if durationSec < 0 {
		durationSec = 0
	}

	feat := s.extractor.Extract(text, durationSec, audio)
	state := s.Estimate(feat, text)

	return UtteranceAnalysis{
		Speaker: speaker,
		Text:    text,
		Prosody: &feat,
		State:   &state,
	}
}

// #endregion analyze-utterance

// #region clamp

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion clamp
