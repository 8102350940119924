package prosody

// #region audio-features
// AudioFeatures carries externally measured signal statistics for one
// utterance. This package never touches raw audio; the values arrive
// from the transcription side or stay zero.
type AudioFeatures struct {
	PitchVariance  float64 `json:"pitch_variance"`
	VolumeVariance float64 `json:"volume_variance"`
}

// #endregion audio-features

// #region prosody-features
// ProsodyFeatures is the fixed feature vector extracted from one
// utterance's text and timing.
type ProsodyFeatures struct {
	SpeechRate           float64 `json:"speech_rate"` // non-space chars per second
	PauseRatio           float64 `json:"pause_ratio"` // 0..1
	HesitationCount      int     `json:"hesitation_count"`
	PitchVariance        float64 `json:"pitch_variance"`
	VolumeVariance       float64 `json:"volume_variance"`
	AmbiguousEndingCount int     `json:"ambiguous_ending_count"`
}

// #endregion prosody-features

// #region state-labels
const (
	LabelConfident = "confident"
	LabelHesitant  = "hesitant"
	LabelConfused  = "confused"
	LabelEngaged   = "engaged"
	LabelNeutral   = "neutral"
)

// #endregion state-labels

// #region cognitive-state
// CognitiveState is the normalized per-utterance estimate. All level
// fields are clamped to [0,1] and ConfidenceLevel + HesitationLevel
// always sum to 1.
type CognitiveState struct {
	ConfidenceLevel    float64        `json:"confidence_level"`
	UnderstandingLevel float64        `json:"understanding_level"`
	HesitationLevel    float64        `json:"hesitation_level"`
	EngagementLevel    float64        `json:"engagement_level"`
	StateLabel         string         `json:"state_label"`
	Evidence           map[string]any `json:"evidence"`
}

// #endregion cognitive-state

// #region utterance-analysis
// UtteranceAnalysis is the per-utterance result record. When estimation
// fails, only Speaker and Err are set; callers must treat a nil State
// as "no estimate available", not as a zero state.
type UtteranceAnalysis struct {
	Speaker     string           `json:"speaker"`
	UtteranceID string           `json:"utterance_id,omitempty"`
	Text        string           `json:"text,omitempty"`
	Prosody     *ProsodyFeatures `json:"prosody_features,omitempty"`
	State       *CognitiveState  `json:"cognitive_state,omitempty"`
	Err         string           `json:"error,omitempty"`
}

// #endregion utterance-analysis
