package recommend

// #region imports
import (
	"fmt"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/discourse"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/prosody"
)

// #endregion

// #region recommendation
// Priority buckets for facilitator recommendations.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// Recommendation is one actionable suggestion for the facilitator.
type Recommendation struct {
	Type         string   `json:"type"`
	Priority     string   `json:"priority"`
	Participants []string `json:"participants,omitempty"`
	Action       string   `json:"action"`
}

// #endregion recommendation

// #region config
// EngineConfig holds the recommendation thresholds.
type EngineConfig struct {
	LowUnderstanding float64
	HighHesitation   float64
	HighStagnation   float64
}

// DefaultEngineConfig returns the standard thresholds.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		LowUnderstanding: 0.4,
		HighHesitation:   0.6,
		HighStagnation:   0.7,
	}
}

// #endregion config

// #region engine
// Engine derives real-time facilitator recommendations from live
// segment metrics and cognitive states. Stateless per call.
type Engine struct {
	config EngineConfig
}

// NewEngine creates an engine with the given thresholds.
func NewEngine(config EngineConfig) Engine {
	return Engine{config: config}
}

// #endregion engine

// #region recommend

// Recommend appends every applicable recommendation in fixed order.
// The checks are independent, not mutually exclusive.
func (e Engine) Recommend(metrics discourse.SegmentMetrics, states []prosody.UtteranceAnalysis) []Recommendation {
	var recs []Recommendation

	if confused := speakersWhere(states, func(st *prosody.CognitiveState) bool {
		return st.UnderstandingLevel < e.config.LowUnderstanding
	}); len(confused) > 0 {
		recs = append(recs, Recommendation{
			Type:         "support_needed",
			Priority:     PriorityHigh,
			Participants: confused,
			Action:       "理解度が低い参加者がいます。説明を補足するか確認してください。",
		})
	}

	if hesitant := speakersWhere(states, func(st *prosody.CognitiveState) bool {
		return st.HesitationLevel > e.config.HighHesitation
	}); len(hesitant) > 0 {
		recs = append(recs, Recommendation{
			Type:         "encouragement",
			Priority:     PriorityMedium,
			Participants: hesitant,
			Action:       "迷っている参加者がいます。意見を引き出す質問をしてみましょう。",
		})
	}

	if metrics.T > e.config.HighStagnation {
		recs = append(recs, Recommendation{
			Type:     "break_stagnation",
			Priority: PriorityHigh,
			Action:   "議論が停滞しています。視点を変えるか、休憩を取りましょう。",
		})
	}

	if unanswered := metrics.Q - metrics.A; unanswered > 0 {
		recs = append(recs, Recommendation{
			Type:     "answer_questions",
			Priority: PriorityMedium,
			Action:   fmt.Sprintf("%d件の質問に回答がありません。", unanswered),
		})
	}

	return recs
}

// #endregion recommend

// #region helpers

// speakersWhere collects speakers whose state matches. Records without
// an estimate are skipped, never treated as zero states.
func speakersWhere(states []prosody.UtteranceAnalysis, match func(*prosody.CognitiveState) bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range states {
		if s.State == nil || seen[s.Speaker] {
			continue
		}
		if match(s.State) {
			out = append(out, s.Speaker)
			seen[s.Speaker] = true
		}
	}
	return out
}

// #endregion helpers
