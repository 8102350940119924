package prosody

import (
	"strings"
	"testing"
)

func newTestEstimator() *Estimator {
	return NewEstimator(DefaultLexicon(), DefaultEstimatorConfig())
}

func TestEstimate_Labels(t *testing.T) {
	est := newTestEstimator()

	tests := []struct {
		name      string
		text      string
		duration  float64
		wantLabel string
	}{
		{
			// Fast, explanatory, no fillers: confident.
			"confident explanation",
			"なぜならこの設計はキャッシュを効率的に使えるからだと考えています",
			5,
			LabelConfident,
		},
		{
			// Slow, heavy pausing, hedged twice: hesitant.
			"hesitant hedging",
			"えー、あの、たぶんそうかな",
			5,
			LabelHesitant,
		},
		{
			// Question markers drop understanding below 0.4: confused.
			"confused question",
			"これはどういう意味ですか？わからないです",
			2,
			LabelConfused,
		},
		{
			// Long fluent utterance with no markers: engaged.
			"engaged long utterance",
			strings.Repeat("データ", 40),
			10,
			LabelEngaged,
		},
		{
			// Short fluent utterance: nothing fires strongly.
			"neutral short reply",
			"そうですね",
			1,
			LabelNeutral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := est.AnalyzeUtterance(tt.text, tt.duration, "p1", nil)
			if res.State == nil {
				t.Fatalf("no state: err=%q", res.Err)
			}
			if res.State.StateLabel != tt.wantLabel {
				t.Errorf("label: got %q, want %q (state=%+v)", res.State.StateLabel, tt.wantLabel, res.State)
			}
		})
	}
}

func TestEstimate_LevelInvariants(t *testing.T) {
	est := newTestEstimator()

	texts := []string{
		"",
		"えー、あの、たぶんそうかな",
		"なぜならこの設計はキャッシュを効率的に使えるからだと考えています",
		"これはどういう意味ですか？",
		strings.Repeat("議論", 80),
		"えー…あの…そのまあなんかえーかな…たぶん、かも。",
	}

	for _, text := range texts {
		res := est.AnalyzeUtterance(text, 5, "p1", nil)
		if res.State == nil {
			t.Fatalf("no state for %q: err=%q", text, res.Err)
		}
		st := res.State

		if !almostEqual(st.ConfidenceLevel+st.HesitationLevel, 1.0) {
			t.Errorf("%q: confidence+hesitation = %v, want 1.0", text, st.ConfidenceLevel+st.HesitationLevel)
		}
		for name, v := range map[string]float64{
			"confidence":    st.ConfidenceLevel,
			"understanding": st.UnderstandingLevel,
			"hesitation":    st.HesitationLevel,
			"engagement":    st.EngagementLevel,
		} {
			if v < 0 || v > 1 {
				t.Errorf("%q: %s level %v out of [0,1]", text, name, v)
			}
		}
	}
}

func TestEstimate_HesitantScenario(t *testing.T) {
	est := newTestEstimator()

	// Two fillers, one hedged ending, slow speech, heavy pausing.
	res := est.AnalyzeUtterance("えー、あの、たぶんそうかな", 5, "p1", nil)
	if res.State == nil {
		t.Fatalf("no state: err=%q", res.Err)
	}

	if res.Prosody.HesitationCount < 2 {
		t.Errorf("hesitation count: got %d, want >= 2", res.Prosody.HesitationCount)
	}
	if res.Prosody.AmbiguousEndingCount < 1 {
		t.Errorf("ambiguous count: got %d, want >= 1", res.Prosody.AmbiguousEndingCount)
	}
	if res.State.HesitationLevel < 0.5 {
		t.Errorf("hesitation level: got %v, want >= 0.5", res.State.HesitationLevel)
	}
	if res.State.StateLabel != LabelHesitant {
		t.Errorf("label: got %q, want %q", res.State.StateLabel, LabelHesitant)
	}

	// Fired triggers leave their evidence behind.
	for _, key := range []string{"slow_speech", "high_pause", "ambiguous_endings"} {
		if _, ok := res.State.Evidence[key]; !ok {
			t.Errorf("evidence missing %q: %v", key, res.State.Evidence)
		}
	}
	if _, ok := res.State.Evidence["high_hesitation"]; ok {
		t.Errorf("evidence has high_hesitation with only 2 fillers: %v", res.State.Evidence)
	}
}

func TestEstimate_HesitationClamped(t *testing.T) {
	est := newTestEstimator()

	// All four hesitation triggers fire: the sum exceeds 1 and must clamp.
	res := est.AnalyzeUtterance("えー、あのそのまあなんかえーかな…たぶん、かも。", 60, "p1", nil)
	if res.State == nil {
		t.Fatalf("no state: err=%q", res.Err)
	}
	if res.State.HesitationLevel != 1.0 {
		t.Errorf("hesitation: got %v, want clamped 1.0", res.State.HesitationLevel)
	}
	if res.State.ConfidenceLevel != 0.0 {
		t.Errorf("confidence: got %v, want 0.0", res.State.ConfidenceLevel)
	}
}

func TestAnalyzeUtterance_MalformedInput(t *testing.T) {
	est := newTestEstimator()

	tests := []struct {
		name     string
		text     string
		duration float64
	}{
		{"empty text", "", 5},
		{"negative duration", "それはそうですね", -2},
		{"zero duration", "それはそうですね", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := est.AnalyzeUtterance(tt.text, tt.duration, "p1", nil)
			if res.Err != "" {
				t.Fatalf("unexpected error: %q", res.Err)
			}
			if res.State == nil {
				t.Fatal("want a state record for malformed input, got none")
			}
			if res.Speaker != "p1" {
				t.Errorf("speaker: got %q, want p1", res.Speaker)
			}
			if res.Prosody.SpeechRate != 0 && tt.duration <= 0 {
				t.Errorf("speech rate: got %v, want 0 for duration %v", res.Prosody.SpeechRate, tt.duration)
			}
		})
	}
}
