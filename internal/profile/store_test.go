package profile

import (
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/discourse"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGetOrCreate_Defaults(t *testing.T) {
	s := NewMemoryStore()

	p := s.GetOrCreate("p1", "田中")
	if p.Name != "田中" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.AvgConfidence != 0.5 || p.AvgUnderstanding != 0.5 || p.AvgHesitation != 0.5 {
		t.Errorf("cognitive defaults not midpoint: %+v", p)
	}
	if p.TotalSessions != 0 || p.UtteranceCount != 0 {
		t.Errorf("counters not zero: %+v", p)
	}

	// Second call returns the same profile, not a fresh one.
	again := s.GetOrCreate("p1", "ignored")
	if again.Name != "田中" {
		t.Errorf("existing profile replaced: %+v", again)
	}
}

func TestUpdateFromSession_EmptyBatchIsIdentity(t *testing.T) {
	s := NewMemoryStore()
	s.GetOrCreate("p1", "田中")

	before, _ := s.Get("p1")
	after, err := s.UpdateFromSession("p1", SessionBatch{Name: "田中"})
	if err != nil {
		t.Fatal(err)
	}

	if after.TotalSessions != before.TotalSessions {
		t.Errorf("total sessions changed on empty batch: %d -> %d", before.TotalSessions, after.TotalSessions)
	}
	if after.AvgConfidence != before.AvgConfidence || after.UtteranceCount != before.UtteranceCount {
		t.Errorf("profile changed on empty batch: %+v -> %+v", before, after)
	}
}

func TestUpdateFromSession_EMABlend(t *testing.T) {
	s := NewMemoryStore()

	p, err := s.UpdateFromSession("p1", SessionBatch{
		Name:       "田中",
		Utterances: []UtteranceSample{{Text: "ああああああああああ", SpeechRate: 4.0}}, // 10 runes
		States: []StateSample{
			{ConfidenceLevel: 0.9, UnderstandingLevel: 0.8, HesitationLevel: 0.1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	// new = 0.3*batch + 0.7*old, old averages start at the midpoint.
	if !almostEqual(p.AvgConfidence, 0.3*0.9+0.7*0.5) {
		t.Errorf("avg confidence: got %v", p.AvgConfidence)
	}
	if !almostEqual(p.AvgUnderstanding, 0.3*0.8+0.7*0.5) {
		t.Errorf("avg understanding: got %v", p.AvgUnderstanding)
	}
	if !almostEqual(p.AvgUtteranceLength, 0.3*10) {
		t.Errorf("avg utterance length: got %v", p.AvgUtteranceLength)
	}
	if !almostEqual(p.AvgSpeechRate, 0.3*4.0) {
		t.Errorf("avg speech rate: got %v", p.AvgSpeechRate)
	}
	if p.UtteranceCount != 1 || p.TotalSessions != 1 {
		t.Errorf("counters: %+v", p)
	}
}

func TestUpdateFromSession_EMAIdempotence(t *testing.T) {
	s := NewMemoryStore()

	batch := SessionBatch{
		Name:       "田中",
		Utterances: []UtteranceSample{{Text: "あああああ", SpeechRate: 2.0}},
		States: []StateSample{
			{ConfidenceLevel: 0.6, UnderstandingLevel: 0.7, HesitationLevel: 0.4},
		},
	}

	// Converge the averages onto the batch means.
	var p Profile
	for i := 0; i < 200; i++ {
		p, _ = s.UpdateFromSession("p1", batch)
	}

	next, _ := s.UpdateFromSession("p1", batch)
	if !almostEqual(next.AvgConfidence, p.AvgConfidence) ||
		!almostEqual(next.AvgUnderstanding, p.AvgUnderstanding) ||
		!almostEqual(next.AvgHesitation, p.AvgHesitation) {
		t.Errorf("averages moved on identical batch: %+v -> %+v", p, next)
	}
	if next.TotalSessions != p.TotalSessions+1 {
		t.Errorf("total sessions: got %d, want %d", next.TotalSessions, p.TotalSessions+1)
	}
}

func TestUpdateFromSession_Topics(t *testing.T) {
	s := NewMemoryStore()

	batch := SessionBatch{
		Name:       "田中",
		Utterances: []UtteranceSample{{Text: "x"}},
		States: []StateSample{
			{UnderstandingLevel: 0.2, ConfidenceLevel: 0.5, Topic: "recursion"},
			{UnderstandingLevel: 0.3, ConfidenceLevel: 0.5, Topic: "recursion"}, // duplicate
			{UnderstandingLevel: 0.9, ConfidenceLevel: 0.8, Topic: "sorting"},
			{UnderstandingLevel: 0.1, ConfidenceLevel: 0.5, Topic: ""}, // no topic: skipped
		},
	}
	p, err := s.UpdateFromSession("p1", batch)
	if err != nil {
		t.Fatal(err)
	}

	if len(p.ConfusedTopics) != 1 || p.ConfusedTopics[0] != "recursion" {
		t.Errorf("confused topics: %v", p.ConfusedTopics)
	}
	if len(p.ConfidentTopics) != 1 || p.ConfidentTopics[0] != "sorting" {
		t.Errorf("confident topics: %v", p.ConfidentTopics)
	}

	// A later session without those topics must not prune them.
	p, _ = s.UpdateFromSession("p1", SessionBatch{
		Utterances: []UtteranceSample{{Text: "y"}},
		States:     []StateSample{{UnderstandingLevel: 0.9, ConfidenceLevel: 0.5}},
	})
	if len(p.ConfusedTopics) != 1 || len(p.ConfidentTopics) != 1 {
		t.Errorf("topics pruned: %v / %v", p.ConfusedTopics, p.ConfidentTopics)
	}
}

func TestUpdateFromSession_ContributionRatios(t *testing.T) {
	s := NewMemoryStore()

	p, err := s.UpdateFromSession("p1", SessionBatch{
		Utterances: []UtteranceSample{{Text: "x"}},
		Events: []discourse.Event{
			{Type: "Q"}, {Type: "Q"}, {Type: "A"}, {Type: "S"}, {Type: "X"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !almostEqual(p.QuestionRatio, 0.4) {
		t.Errorf("question ratio: got %v, want 0.4", p.QuestionRatio)
	}
	if !almostEqual(p.AnswerRatio, 0.2) {
		t.Errorf("answer ratio: got %v, want 0.2", p.AnswerRatio)
	}
	if !almostEqual(p.SuggestionRatio, 0.2) {
		t.Errorf("suggestion ratio: got %v, want 0.2", p.SuggestionRatio)
	}

	// No events: ratios keep their previous values.
	p, _ = s.UpdateFromSession("p1", SessionBatch{Utterances: []UtteranceSample{{Text: "y"}}})
	if !almostEqual(p.QuestionRatio, 0.4) {
		t.Errorf("question ratio overwritten without events: %v", p.QuestionRatio)
	}
}

func TestPredictDifficulty(t *testing.T) {
	s := NewMemoryStore()

	// Unknown participant: neutral default.
	pred := s.PredictDifficulty("ghost", "recursion")
	if pred.DifficultyScore != 0.5 || pred.Confidence != 0.0 {
		t.Errorf("unknown participant: %+v", pred)
	}

	// Known confused topic: high difficulty, high confidence.
	s.UpdateFromSession("p1", SessionBatch{
		Utterances: []UtteranceSample{{Text: "x"}},
		States:     []StateSample{{UnderstandingLevel: 0.2, Topic: "recursion"}},
	})
	pred = s.PredictDifficulty("p1", "recursion")
	if pred.DifficultyScore != 0.8 || pred.Confidence != 0.9 {
		t.Errorf("confused topic: %+v", pred)
	}

	// Other topic: difficulty from average understanding.
	pred = s.PredictDifficulty("p1", "sorting")
	p, _ := s.Get("p1")
	if !almostEqual(pred.DifficultyScore, 1.0-p.AvgUnderstanding) {
		t.Errorf("difficulty: got %v, want %v", pred.DifficultyScore, 1.0-p.AvgUnderstanding)
	}
}

func TestPredictDifficulty_ConfidenceMonotone(t *testing.T) {
	s := NewMemoryStore()

	batch := SessionBatch{
		Utterances: []UtteranceSample{{Text: "x"}},
		States:     []StateSample{{UnderstandingLevel: 0.6}},
	}

	prev := 0.0
	for i := 1; i <= 7; i++ {
		s.UpdateFromSession("p1", batch)
		pred := s.PredictDifficulty("p1", "sorting")
		if pred.Confidence < prev {
			t.Errorf("confidence decreased at session %d: %v -> %v", i, prev, pred.Confidence)
		}
		if i >= 5 && pred.Confidence != 1.0 {
			t.Errorf("confidence at session %d: got %v, want capped 1.0", i, pred.Confidence)
		}
		prev = pred.Confidence
	}
}

func TestInsights(t *testing.T) {
	s := NewMemoryStore()

	if got := s.Insights("ghost"); got != nil {
		t.Errorf("unknown participant: got %+v, want nil", got)
	}

	tests := []struct {
		name             string
		mutate           func(p *Profile)
		wantSpeech       string
		wantContribution string
		wantTendency     int
	}{
		{
			"detailed question-driven",
			func(p *Profile) {
				p.AvgUtteranceLength = 200
				p.QuestionRatio = 0.5
				p.AvgConfidence = 0.8
			},
			"detailed", "question_driven", 1,
		},
		{
			"concise answer-provider",
			func(p *Profile) {
				p.AvgUtteranceLength = 30
				p.AnswerRatio = 0.5
				p.AvgUnderstanding = 0.3
				p.AvgHesitation = 0.7
			},
			"concise", "answer_provider", 2,
		},
		{
			"balanced proposer",
			func(p *Profile) {
				p.AvgUtteranceLength = 100
				p.SuggestionRatio = 0.35
			},
			"balanced", "proposer", 0,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := fmt.Sprintf("p%d", i)
			s.GetOrCreate(id, tt.name)
			s.mu.Lock()
			tt.mutate(s.profiles[id])
			s.mu.Unlock()

			ins := s.Insights(id)
			if ins == nil {
				t.Fatal("nil insights")
			}
			if ins.SpeechStyle != tt.wantSpeech {
				t.Errorf("speech style: got %q, want %q", ins.SpeechStyle, tt.wantSpeech)
			}
			if ins.ContributionStyle != tt.wantContribution {
				t.Errorf("contribution style: got %q, want %q", ins.ContributionStyle, tt.wantContribution)
			}
			if len(ins.CognitiveTendency) != tt.wantTendency {
				t.Errorf("tendencies: got %v, want %d entries", ins.CognitiveTendency, tt.wantTendency)
			}
		})
	}
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "profiles.db")

	s, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.UpdateFromSession("p1", SessionBatch{
		Name:       "田中",
		Utterances: []UtteranceSample{{Text: "あああああ", SpeechRate: 3.0}},
		States:     []StateSample{{UnderstandingLevel: 0.2, ConfidenceLevel: 0.9, Topic: "recursion"}},
		Events:     []discourse.Event{{Type: "Q"}, {Type: "A"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	want, _ := s.Get("p1")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("p1")
	if !ok {
		t.Fatal("profile lost after reopen")
	}
	if got.Name != want.Name || got.TotalSessions != want.TotalSessions {
		t.Errorf("reloaded profile: got %+v, want %+v", got, want)
	}
	if !almostEqual(got.AvgUnderstanding, want.AvgUnderstanding) {
		t.Errorf("avg understanding: got %v, want %v", got.AvgUnderstanding, want.AvgUnderstanding)
	}
	if len(got.ConfusedTopics) != 1 || got.ConfusedTopics[0] != "recursion" {
		t.Errorf("confused topics: %v", got.ConfusedTopics)
	}
	if !almostEqual(got.QuestionRatio, 0.5) {
		t.Errorf("question ratio: got %v", got.QuestionRatio)
	}
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := NewMemoryStore()

	batch := SessionBatch{
		Utterances: []UtteranceSample{{Text: "あ"}},
		States:     []StateSample{{UnderstandingLevel: 0.5, ConfidenceLevel: 0.5, HesitationLevel: 0.5}},
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				s.UpdateFromSession("shared", batch)
				s.UpdateFromSession(fmt.Sprintf("own-%d", worker), batch)
				s.PredictDifficulty("shared", "t")
				s.Insights("shared")
			}
		}(i)
	}
	wg.Wait()

	p, _ := s.Get("shared")
	if p.TotalSessions != 100 {
		t.Errorf("shared sessions: got %d, want 100", p.TotalSessions)
	}
	if p.UtteranceCount != 100 {
		t.Errorf("shared utterances: got %d, want 100", p.UtteranceCount)
	}
	for i := 0; i < 4; i++ {
		own, _ := s.Get(fmt.Sprintf("own-%d", i))
		if own.TotalSessions != 25 {
			t.Errorf("own-%d sessions: got %d, want 25", i, own.TotalSessions)
		}
	}
}
