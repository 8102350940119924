package orchestrator

// #region imports
import (
	"time"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/discourse"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/intervention"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/profile"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/prosody"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/recommend"
)

// #endregion

// #region intervention-report
// InterventionReport is the decision plus the facilitator message.
type InterventionReport struct {
	Needed   bool              `json:"needed"`
	Type     intervention.Type `json:"type"`
	Priority float64           `json:"priority"`
	Reason   string            `json:"reason"`
	Message  string            `json:"message,omitempty"`
}

// #endregion intervention-report

// #region health-summary
// CognitiveStats aggregates the segment's estimated states.
type CognitiveStats struct {
	AvgConfidence    float64 `json:"avg_confidence"`
	AvgUnderstanding float64 `json:"avg_understanding"`
	AvgHesitation    float64 `json:"avg_hesitation"`
}

// KeyMetrics surfaces the discourse scores the summary keys on.
type KeyMetrics struct {
	Confusion     float64 `json:"confusion"`
	Stagnation    float64 `json:"stagnation"`
	Understanding float64 `json:"understanding"`
}

// HealthSummary condenses one segment into a single health view.
type HealthSummary struct {
	DiscussionHealth float64        `json:"discussion_health"`
	CognitiveStats   CognitiveStats `json:"cognitive_stats"`
	KeyMetrics       KeyMetrics     `json:"key_metrics"`
	NeedsAttention   bool           `json:"needs_attention"`
}

// #endregion health-summary

// #region integrated-result
// IntegratedResult is the full per-segment analysis. When Error is set,
// only SessionID, SegmentID, Timestamp and Error are meaningful.
type IntegratedResult struct {
	SessionID string    `json:"session_id"`
	SegmentID int       `json:"segment_id"`
	Timestamp time.Time `json:"timestamp"`

	BaseAnalysis           discourse.SegmentMetrics                `json:"base_analysis"`
	Utterances             []discourse.Utterance                   `json:"utterances"`
	ParticipantStates      []prosody.UtteranceAnalysis             `json:"participant_states"`
	ParticipantPredictions map[string]profile.DifficultyPrediction `json:"participant_predictions"`
	Intervention           InterventionReport                      `json:"intervention"`
	Summary                HealthSummary                           `json:"summary"`

	Error string `json:"error,omitempty"`
}

// #endregion integrated-result

// #region profile-update-summary
// ProfileUpdateSummary reports a cross-session profile update.
type ProfileUpdateSummary struct {
	SessionID    string                       `json:"session_id"`
	UpdatedCount int                          `json:"updated_count"`
	Profiles     map[string]*profile.Insights `json:"profiles"`
	Error        string                       `json:"error,omitempty"`
}

// #endregion profile-update-summary

// #region recommendation-set
// RecommendationSet is the real-time recommendation payload.
type RecommendationSet struct {
	SessionID       string                     `json:"session_id"`
	Timestamp       time.Time                  `json:"timestamp"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Count           int                        `json:"count"`
}

// #endregion recommendation-set
