package profile

// #region imports
import (
	"time"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/discourse"
)

// #endregion

// #region profile
// Profile is the learned per-participant baseline, blended across
// sessions with an exponential moving average. All level and ratio
// fields stay in [0,1]; TotalSessions never decreases.
type Profile struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`

	AvgUtteranceLength float64 `json:"avg_utterance_length"`
	AvgSpeechRate      float64 `json:"avg_speech_rate"`
	UtteranceCount     int     `json:"utterance_count"`

	AvgConfidence    float64 `json:"avg_confidence"`
	AvgUnderstanding float64 `json:"avg_understanding"`
	AvgHesitation    float64 `json:"avg_hesitation"`

	ConfusedTopics  []string `json:"confused_topics"`
	ConfidentTopics []string `json:"confident_topics"`

	QuestionRatio   float64 `json:"question_ratio"`
	AnswerRatio     float64 `json:"answer_ratio"`
	SuggestionRatio float64 `json:"suggestion_ratio"`

	TotalSessions int       `json:"total_sessions"`
	LastUpdated   time.Time `json:"last_updated"`
}

// #endregion profile

// #region session-batch
// SessionBatch bundles one participant's observations from one session.
type SessionBatch struct {
	Name       string
	Utterances []UtteranceSample
	States     []StateSample
	Events     []discourse.Event
}

// UtteranceSample is the per-utterance slice of a batch.
type UtteranceSample struct {
	Text       string
	SpeechRate float64
}

// StateSample is the cognitive-state slice of a batch. Topic may be
// empty when the segment had no dominant topic.
type StateSample struct {
	ConfidenceLevel    float64
	UnderstandingLevel float64
	HesitationLevel    float64
	Topic              string
}

// #endregion session-batch

// #region difficulty-prediction
// DifficultyPrediction answers a topic difficulty query.
type DifficultyPrediction struct {
	DifficultyScore float64 `json:"difficulty_score"`
	Confidence      float64 `json:"confidence"`
	Reason          string  `json:"reason"`
}

// #endregion difficulty-prediction

// #region insights
// AvgMetrics summarizes a profile's cognitive averages.
type AvgMetrics struct {
	Confidence    float64 `json:"confidence"`
	Understanding float64 `json:"understanding"`
	Hesitation    float64 `json:"hesitation"`
}

// Insights is the categorical read model derived from a profile.
type Insights struct {
	ParticipantID     string     `json:"participant_id"`
	Name              string     `json:"name"`
	SpeechStyle       string     `json:"speech_style"`
	ContributionStyle string     `json:"contribution_style"`
	CognitiveTendency []string   `json:"cognitive_tendency"`
	ConfusedTopics    []string   `json:"confused_topics"`
	ConfidentTopics   []string   `json:"confident_topics"`
	TotalSessions     int        `json:"total_sessions"`
	AvgMetrics        AvgMetrics `json:"avg_metrics"`
}

// #endregion insights
