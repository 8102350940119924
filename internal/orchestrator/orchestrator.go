package orchestrator

// #region imports
import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/discourse"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/intervention"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/profile"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/prosody"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/recommend"
)

// #endregion

// #region orchestrator-struct

// Orchestrator composes the discourse analyzer, the cognitive state
// estimator, the profile store, the intervention policy, and the
// recommendation engine into one per-segment pipeline.
type Orchestrator struct {
	analyzer  discourse.Analyzer
	estimator *prosody.Estimator
	profiles  *profile.Store
	policy    *intervention.Policy
	messenger *intervention.Messenger
	engine    recommend.Engine
}

// #endregion orchestrator-struct

// #region constructor

// New creates a fully wired orchestrator. All collaborators are
// explicit instances; nothing is process-global.
func New(
	analyzer discourse.Analyzer,
	estimator *prosody.Estimator,
	profiles *profile.Store,
	policy *intervention.Policy,
	messenger *intervention.Messenger,
) *Orchestrator {
	return &Orchestrator{
		analyzer:  analyzer,
		estimator: estimator,
		profiles:  profiles,
		policy:    policy,
		messenger: messenger,
		engine:    recommend.NewEngine(recommend.DefaultEngineConfig()),
	}
}

// #endregion constructor

// #region analyze-segment

// AnalyzeSegmentIntegrated runs the full pipeline for one segment.
// Failures never propagate past this boundary: analyzer errors and
// internal panics come back as an error-tagged result.
func (o *Orchestrator) AnalyzeSegmentIntegrated(
	ctx context.Context,
	sessionID string,
	segmentID int,
	startSec, endSec float64,
	utterances []discourse.Utterance,
) (result IntegratedResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ORCH] panic in segment %d: %v", segmentID, r)
			result = errorResult(sessionID, segmentID, fmt.Sprintf("integrated analysis: %v", r))
		}
	}()

	utterances = discourse.NormalizeUtterances(utterances)

	base, err := o.analyzer.AnalyzeSegment(ctx, discourse.AnalyzeRequest{
		SessionID:  sessionID,
		SegmentID:  segmentID,
		StartSec:   startSec,
		EndSec:     endSec,
		Utterances: utterances,
	})
	if err != nil {
		log.Printf("[ORCH] discourse analysis failed for segment %d: %v", segmentID, err)
		return errorResult(sessionID, segmentID, fmt.Sprintf("discourse analysis: %v", err))
	}

	states := make([]prosody.UtteranceAnalysis, 0, len(utterances))
	for _, u := range utterances {
		st := o.estimator.AnalyzeUtterance(u.Text, u.Duration(), u.Speaker, u.AudioFeatures)
		st.UtteranceID = u.UtteranceID
		states = append(states, st)
	}

	topic := base.DominantTopic
	if topic == "" {
		topic = "general"
	}
	predictions := make(map[string]profile.DifficultyPrediction)
	for _, u := range utterances {
		if _, ok := predictions[u.Speaker]; ok {
			continue
		}
		predictions[u.Speaker] = o.profiles.PredictDifficulty(u.Speaker, topic)
	}

	decision := o.policy.Detect(base, cognitiveStates(states))

	var message string
	if decision.NeedsIntervention {
		message = o.messenger.Generate(ctx, decision.Type, intervention.MessageContext{
			Transcript: transcript(utterances),
			Issues:     base.Issues,
			QCount:     base.Q,
			M:          base.M,
			T:          base.T,
		})
	}

	stats := cognitiveStatsOf(states)
	summary := HealthSummary{
		DiscussionHealth: healthScore(base.M, base.T, stats),
		CognitiveStats:   stats,
		KeyMetrics: KeyMetrics{
			Confusion:     base.M,
			Stagnation:    base.T,
			Understanding: base.L,
		},
		NeedsAttention: decision.NeedsIntervention,
	}

	return IntegratedResult{
		SessionID:              sessionID,
		SegmentID:              segmentID,
		Timestamp:              time.Now().UTC(),
		BaseAnalysis:           base,
		Utterances:             utterances,
		ParticipantStates:      states,
		ParticipantPredictions: predictions,
		Intervention: InterventionReport{
			Needed:   decision.NeedsIntervention,
			Type:     decision.Type,
			Priority: decision.Priority,
			Reason:   decision.Reason,
			Message:  message,
		},
		Summary: summary,
	}
}

// #endregion analyze-segment

// #region update-profiles

// perParticipant is one speaker's accumulated session observations.
type perParticipant struct {
	utterances []profile.UtteranceSample
	states     []profile.StateSample
	events     []discourse.Event
}

// UpdateParticipantProfiles folds a finished session's segment results
// into the long-lived profiles, one store update per participant.
func (o *Orchestrator) UpdateParticipantProfiles(sessionID string, results []IntegratedResult) (summary ProfileUpdateSummary) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ORCH] panic updating profiles for %s: %v", sessionID, r)
			summary = ProfileUpdateSummary{SessionID: sessionID, Error: fmt.Sprintf("profile update: %v", r)}
		}
	}()

	data := make(map[string]*perParticipant)
	for _, result := range results {
		if result.Error != "" {
			continue
		}
		topic := result.BaseAnalysis.DominantTopic

		for _, st := range result.ParticipantStates {
			if st.State == nil {
				continue
			}
			p, ok := data[st.Speaker]
			if !ok {
				p = &perParticipant{}
				data[st.Speaker] = p
			}
			var rate float64
			if st.Prosody != nil {
				rate = st.Prosody.SpeechRate
			}
			p.utterances = append(p.utterances, profile.UtteranceSample{Text: st.Text, SpeechRate: rate})
			p.states = append(p.states, profile.StateSample{
				ConfidenceLevel:    st.State.ConfidenceLevel,
				UnderstandingLevel: st.State.UnderstandingLevel,
				HesitationLevel:    st.State.HesitationLevel,
				Topic:              topic,
			})
		}

		for _, ev := range result.BaseAnalysis.Events {
			if p, ok := data[ev.Speaker]; ok {
				p.events = append(p.events, ev)
			}
		}
	}

	profiles := make(map[string]*profile.Insights, len(data))
	for participantID, p := range data {
		_, err := o.profiles.UpdateFromSession(participantID, profile.SessionBatch{
			Name:       participantID,
			Utterances: p.utterances,
			States:     p.states,
			Events:     p.events,
		})
		if err != nil {
			log.Printf("[ORCH] profile update for %s: %v", participantID, err)
		}
		profiles[participantID] = o.profiles.Insights(participantID)
	}

	log.Printf("[ORCH] updated %d participant profiles for session %s", len(profiles), sessionID)
	return ProfileUpdateSummary{
		SessionID:    sessionID,
		UpdatedCount: len(profiles),
		Profiles:     profiles,
	}
}

// #endregion update-profiles

// #region realtime

// GetRealtimeRecommendations derives facilitator recommendations for
// the current segment.
func (o *Orchestrator) GetRealtimeRecommendations(sessionID string, metrics discourse.SegmentMetrics, states []prosody.UtteranceAnalysis) RecommendationSet {
	recs := o.engine.Recommend(metrics, states)
	return RecommendationSet{
		SessionID:       sessionID,
		Timestamp:       time.Now().UTC(),
		Recommendations: recs,
		Count:           len(recs),
	}
}

// DetectInterventionNeed exposes the policy evaluation directly.
func (o *Orchestrator) DetectInterventionNeed(metrics discourse.SegmentMetrics, states []prosody.CognitiveState) intervention.Decision {
	return o.policy.Detect(metrics, states)
}

// GenerateInterventionMessage exposes message generation directly.
func (o *Orchestrator) GenerateInterventionMessage(ctx context.Context, t intervention.Type, mc intervention.MessageContext) string {
	return o.messenger.Generate(ctx, t, mc)
}

// PredictDifficulty exposes the profile store's difficulty query.
func (o *Orchestrator) PredictDifficulty(participantID, topic string) profile.DifficultyPrediction {
	return o.profiles.PredictDifficulty(participantID, topic)
}

// GetParticipantInsights exposes the profile read model; nil for an
// unknown participant.
func (o *Orchestrator) GetParticipantInsights(participantID string) *profile.Insights {
	return o.profiles.Insights(participantID)
}

// #endregion realtime

// #region helpers

func errorResult(sessionID string, segmentID int, msg string) IntegratedResult {
	return IntegratedResult{
		SessionID: sessionID,
		SegmentID: segmentID,
		Timestamp: time.Now().UTC(),
		Error:     msg,
	}
}

func transcript(utterances []discourse.Utterance) string {
	texts := make([]string, 0, len(utterances))
	for _, u := range utterances {
		texts = append(texts, u.Text)
	}
	return strings.Join(texts, " ")
}

// cognitiveStates extracts the available estimates; error records are
// dropped, not zeroed.
func cognitiveStates(states []prosody.UtteranceAnalysis) []prosody.CognitiveState {
	out := make([]prosody.CognitiveState, 0, len(states))
	for _, s := range states {
		if s.State != nil {
			out = append(out, *s.State)
		}
	}
	return out
}

func cognitiveStatsOf(states []prosody.UtteranceAnalysis) CognitiveStats {
	var stats CognitiveStats
	n := 0
	for _, s := range states {
		if s.State == nil {
			continue
		}
		stats.AvgConfidence += s.State.ConfidenceLevel
		stats.AvgUnderstanding += s.State.UnderstandingLevel
		stats.AvgHesitation += s.State.HesitationLevel
		n++
	}
	if n == 0 {
		return CognitiveStats{}
	}
	stats.AvgConfidence /= float64(n)
	stats.AvgUnderstanding /= float64(n)
	stats.AvgHesitation /= float64(n)
	return stats
}

// healthScore weighs confusion, stagnation, and the cognitive averages
// into a single 0..1 score, rounded to 3 decimals.
func healthScore(m, t float64, stats CognitiveStats) float64 {
	confusionScore := 1.0 - math.Min(m, 1.0)
	stagnationScore := 1.0 - math.Min(t, 1.0)

	score := confusionScore*0.3 +
		stagnationScore*0.3 +
		stats.AvgUnderstanding*0.2 +
		stats.AvgConfidence*0.2
	return math.Round(score*1000) / 1000
}

// #endregion helpers
