package discourse

// #region imports
import (
	"context"

	"github.com/google/uuid"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/prosody"
)

// #endregion

// #region utterance
// Utterance is one transcribed turn within a segment.
type Utterance struct {
	UtteranceID   string                 `json:"utterance_id,omitempty"`
	Start         float64                `json:"start"`
	End           float64                `json:"end"`
	Speaker       string                 `json:"speaker"`
	Text          string                 `json:"text"`
	AudioFeatures *prosody.AudioFeatures `json:"audio_features,omitempty"`
}

// Duration returns the utterance length in seconds, never negative.
func (u Utterance) Duration() float64 {
	d := u.End - u.Start
	if d < 0 {
		return 0
	}
	return d
}

// #endregion utterance

// #region event
// Event is one discourse event emitted by the external analyzer.
// Type is one of Q, A, R, S, X.
type Event struct {
	EventID      string  `json:"event_id"`
	T            float64 `json:"t"`
	Type         string  `json:"type"`
	UtteranceID  string  `json:"utterance_id"`
	Speaker      string  `json:"speaker"`
	LinkQEventID string  `json:"link_q_event_id,omitempty"`
	DelaySec     float64 `json:"delay_sec,omitempty"`
}

// #endregion event

// #region segment-metrics
// SegmentMetrics is the external analyzer's result for one segment.
// The counts and composite scores are opaque to this module; the
// policy and orchestrator only threshold them.
type SegmentMetrics struct {
	SessionID string  `json:"session_id"`
	SegmentID int     `json:"segment_id"`
	StartSec  float64 `json:"start_sec"`
	EndSec    float64 `json:"end_sec"`

	Utterances []Utterance `json:"utterances"`
	Events     []Event     `json:"events"`

	U  int `json:"U"`
	Q  int `json:"Q"`
	A  int `json:"A"`
	UQ int `json:"UQ"`
	R  int `json:"R"`
	S  int `json:"S"`
	X  int `json:"X"`
	P  int `json:"P"`

	D float64 `json:"D"`
	M float64 `json:"M"` // confusion proxy
	T float64 `json:"T"` // stagnation proxy
	L float64 `json:"L"` // understanding proxy

	DominantTopic string   `json:"dominant_topic,omitempty"`
	Issues        []string `json:"issues,omitempty"`
}

// #endregion segment-metrics

// #region analyze-request
// AnalyzeRequest is the input to the external discourse analyzer.
type AnalyzeRequest struct {
	SessionID  string      `json:"session_id"`
	SegmentID  int         `json:"segment_id"`
	StartSec   float64     `json:"start_sec"`
	EndSec     float64     `json:"end_sec"`
	Utterances []Utterance `json:"utterances"`
}

// #endregion analyze-request

// #region analyzer-interface
// Analyzer is the consumed interface of the external segment-level
// discourse analyzer.
type Analyzer interface {
	AnalyzeSegment(ctx context.Context, req AnalyzeRequest) (SegmentMetrics, error)
}

// #endregion analyzer-interface

// #region normalize

// NormalizeUtterances validates loosely shaped utterance input once at
// the boundary: missing speakers default to "unknown", missing IDs get
// generated, and inverted time ranges collapse to zero duration.
func NormalizeUtterances(utterances []Utterance) []Utterance {
	out := make([]Utterance, len(utterances))
	for i, u := range utterances {
		if u.Speaker == "" {
			u.Speaker = "unknown"
		}
		if u.UtteranceID == "" {
			u.UtteranceID = uuid.New().String()
		}
		if u.End < u.Start {
			u.End = u.Start
		}
		out[i] = u
	}
	return out
}

// #endregion normalize
