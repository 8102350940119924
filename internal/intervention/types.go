package intervention

// #region type
// Type classifies a facilitator intervention.
type Type string

const (
	TypeClarification Type = "clarification"
	TypeSummary       Type = "summary"
	TypePerspective   Type = "perspective"
	TypeEncouragement Type = "encouragement"
	TypeCaution       Type = "caution"
	TypeNone          Type = "none"
)

// #endregion type

// #region decision
// Decision is the outcome of one policy evaluation. Priority is the
// running maximum of all fired signals; Reason describes whichever
// check fired last.
type Decision struct {
	NeedsIntervention bool    `json:"needs_intervention"`
	Type              Type    `json:"intervention_type"`
	Priority          float64 `json:"priority"`
	Reason            string  `json:"reason"`
}

// #endregion decision

// #region policy-config
// PolicyConfig holds the trigger thresholds for intervention detection.
type PolicyConfig struct {
	ConfusionThreshold        float64 `yaml:"confusion_threshold"`         // M score above which clarification fires
	StagnationThreshold       float64 `yaml:"stagnation_threshold"`        // T score above which perspective fires
	LowUnderstandingThreshold float64 `yaml:"low_understanding_threshold"` // understanding below which a participant counts as struggling
	DominanceRatio            float64 `yaml:"dominance_ratio"`             // share of utterances above which one speaker dominates
}

// DefaultPolicyConfig returns the standard thresholds.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		ConfusionThreshold:        0.6,
		StagnationThreshold:       0.7,
		LowUnderstandingThreshold: 0.4,
		DominanceRatio:            0.7,
	}
}

// #endregion policy-config

// #region message-context
// MessageContext bundles what the message generator may reference.
type MessageContext struct {
	Transcript         string
	Issues             []string
	QCount             int
	SilentParticipants []string
	Issue              string
	M                  float64
	T                  float64
}

// #endregion message-context
