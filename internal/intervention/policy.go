package intervention

// #region imports
import (
	"fmt"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/discourse"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/prosody"
)

// #endregion

// #region policy
// Policy decides whether and how a facilitator should intervene in a
// segment. Evaluation is pure and safe for concurrent use.
type Policy struct {
	config PolicyConfig
}

// NewPolicy creates a policy with the given thresholds.
func NewPolicy(config PolicyConfig) *Policy {
	return &Policy{config: config}
}

// #endregion policy

// #region detect

// Detect runs the trigger checks in fixed order. Every fired check may
// raise the priority (running max) and overwrites the reason; the
// summary check only claims the type when no earlier check picked one.
func (p *Policy) Detect(metrics discourse.SegmentMetrics, states []prosody.CognitiveState) Decision {
	d := Decision{Type: TypeNone}

	// 1. Confusion
	if metrics.M > p.config.ConfusionThreshold {
		d.NeedsIntervention = true
		d.Type = TypeClarification
		d.Priority = maxf(d.Priority, metrics.M)
		d.Reason = fmt.Sprintf("high confusion detected (M=%.2f)", metrics.M)
	}

	// 2. Stagnation
	if metrics.T > p.config.StagnationThreshold {
		d.NeedsIntervention = true
		d.Type = TypePerspective
		d.Priority = maxf(d.Priority, metrics.T)
		d.Reason = fmt.Sprintf("discussion is stagnating (T=%.2f)", metrics.T)
	}

	// 3. Low understanding
	struggling := 0
	for _, st := range states {
		if st.UnderstandingLevel < p.config.LowUnderstandingThreshold {
			struggling++
		}
	}
	if struggling > 0 {
		d.NeedsIntervention = true
		if d.Type == TypeNone {
			d.Type = TypeSummary
		}
		d.Priority = maxf(d.Priority, 0.7)
		d.Reason = fmt.Sprintf("%d participant(s) showing low understanding", struggling)
	}

	// 4. Unanswered questions
	if metrics.Q > 0 && metrics.A == 0 {
		d.NeedsIntervention = true
		d.Type = TypeEncouragement
		d.Priority = maxf(d.Priority, 0.6)
		d.Reason = fmt.Sprintf("%d question(s) with no answers", metrics.Q)
	}

	// 5. Speaker dominance
	if ratio, distinct := dominantSpeakerRatio(metrics.Utterances); ratio > p.config.DominanceRatio && distinct > 1 {
		d.NeedsIntervention = true
		d.Type = TypeEncouragement
		d.Priority = maxf(d.Priority, 0.5)
		d.Reason = "utterances concentrated on a single speaker"
	}

	return d
}

// #endregion detect

// #region helpers

// dominantSpeakerRatio returns the utterance share of the most active
// speaker and the distinct speaker count.
func dominantSpeakerRatio(utterances []discourse.Utterance) (float64, int) {
	if len(utterances) == 0 {
		return 0, 0
	}
	counts := make(map[string]int)
	maxCount := 0
	for _, u := range utterances {
		counts[u.Speaker]++
		if counts[u.Speaker] > maxCount {
			maxCount = counts[u.Speaker]
		}
	}
	return float64(maxCount) / float64(len(utterances)), len(counts)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// #endregion helpers
