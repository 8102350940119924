package profile

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	_ "modernc.org/sqlite"
)

// #endregion

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS participant_profiles (
	participant_id        TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	avg_utterance_length  REAL NOT NULL DEFAULT 0,
	avg_speech_rate       REAL NOT NULL DEFAULT 0,
	utterance_count       INTEGER NOT NULL DEFAULT 0,
	avg_confidence        REAL NOT NULL DEFAULT 0.5,
	avg_understanding     REAL NOT NULL DEFAULT 0.5,
	avg_hesitation        REAL NOT NULL DEFAULT 0.5,
	confused_topics       TEXT NOT NULL DEFAULT '[]',
	confident_topics      TEXT NOT NULL DEFAULT '[]',
	question_ratio        REAL NOT NULL DEFAULT 0,
	answer_ratio          REAL NOT NULL DEFAULT 0,
	suggestion_ratio      REAL NOT NULL DEFAULT 0,
	total_sessions        INTEGER NOT NULL DEFAULT 0,
	last_updated          TEXT NOT NULL
);
`

// #endregion schema

// emaAlpha is the weight of the newest session batch in the blend.
const emaAlpha = 0.3

// #region store-struct
// Store holds participant profiles in memory with write-through SQLite
// persistence. Updates to a profile are serialized by the store lock;
// reads always observe a fully blended snapshot.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
	db       *sql.DB
}

// #endregion store-struct

// #region constructors
// NewStore opens the SQLite database, runs migrations, and loads every
// stored profile into memory.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Store{profiles: make(map[string]*Profile), db: db}
	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewMemoryStore creates a store without persistence. Used in tests and
// by callers that manage their own durability.
func NewMemoryStore() *Store {
	return &Store{profiles: make(map[string]*Profile)}
}

// Close closes the underlying database, if any.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// #endregion constructors

// #region get-or-create

// GetOrCreate returns a snapshot of the participant's profile, creating
// one with midpoint cognitive baselines on first sight.
func (s *Store) GetOrCreate(participantID, name string) Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.getOrCreateLocked(participantID, name))
}

// Get returns a snapshot of an existing profile.
func (s *Store) Get(participantID string) (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[participantID]
	if !ok {
		return Profile{}, false
	}
	return snapshot(p), true
}

func (s *Store) getOrCreateLocked(participantID, name string) *Profile {
	if p, ok := s.profiles[participantID]; ok {
		return p
	}
	p := &Profile{
		ParticipantID:    participantID,
		Name:             name,
		AvgConfidence:    0.5,
		AvgUnderstanding: 0.5,
		AvgHesitation:    0.5,
		LastUpdated:      time.Now().UTC(),
	}
	s.profiles[participantID] = p
	return p
}

// #endregion get-or-create

// #region update-from-session

// UpdateFromSession blends one session's batch into the profile using
// the EMA weight. An empty batch leaves the profile untouched. The
// blend always uses batch means, never per-item updates, so the result
// is independent of iteration order.
func (s *Store) UpdateFromSession(participantID string, batch SessionBatch) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := batch.Name
	if name == "" {
		name = participantID
	}
	p := s.getOrCreateLocked(participantID, name)

	if len(batch.Utterances) == 0 {
		return snapshot(p), nil
	}

	var lengthSum, rateSum float64
	for _, u := range batch.Utterances {
		lengthSum += float64(utf8.RuneCountInString(u.Text))
		rateSum += u.SpeechRate
	}
	n := float64(len(batch.Utterances))
	p.AvgUtteranceLength = blend(lengthSum/n, p.AvgUtteranceLength)
	p.AvgSpeechRate = blend(rateSum/n, p.AvgSpeechRate)
	p.UtteranceCount += len(batch.Utterances)

	if len(batch.States) > 0 {
		var confSum, undSum, hesSum float64
		for _, st := range batch.States {
			confSum += clamp01(st.ConfidenceLevel)
			undSum += clamp01(st.UnderstandingLevel)
			hesSum += clamp01(st.HesitationLevel)
		}
		m := float64(len(batch.States))
		p.AvgConfidence = blend(confSum/m, p.AvgConfidence)
		p.AvgUnderstanding = blend(undSum/m, p.AvgUnderstanding)
		p.AvgHesitation = blend(hesSum/m, p.AvgHesitation)
	}

	// Topic lists grow, deduplicated, and are never pruned.
	for _, st := range batch.States {
		if st.Topic == "" {
			continue
		}
		if st.UnderstandingLevel < 0.4 {
			p.ConfusedTopics = appendUnique(p.ConfusedTopics, st.Topic)
		}
		if st.ConfidenceLevel > 0.7 {
			p.ConfidentTopics = appendUnique(p.ConfidentTopics, st.Topic)
		}
	}

	if len(batch.Events) > 0 {
		var q, a, sg int
		for _, ev := range batch.Events {
			switch ev.Type {
			case "Q":
				q++
			case "A":
				a++
			case "S":
				sg++
			}
		}
		total := float64(len(batch.Events))
		p.QuestionRatio = float64(q) / total
		p.AnswerRatio = float64(a) / total
		p.SuggestionRatio = float64(sg) / total
	}

	p.TotalSessions++
	p.LastUpdated = time.Now().UTC()

	if err := s.persistLocked(p); err != nil {
		return snapshot(p), fmt.Errorf("persist profile %s: %w", participantID, err)
	}
	return snapshot(p), nil
}

// #endregion update-from-session

// #region predict-difficulty

// PredictDifficulty estimates how hard a topic will be for the
// participant. An unknown participant yields the neutral default.
func (s *Store) PredictDifficulty(participantID, topic string) DifficultyPrediction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[participantID]
	if !ok {
		return DifficultyPrediction{
			DifficultyScore: 0.5,
			Confidence:      0.0,
			Reason:          "No profile data available",
		}
	}

	for _, t := range p.ConfusedTopics {
		if t == topic {
			return DifficultyPrediction{
				DifficultyScore: 0.8,
				Confidence:      0.9,
				Reason:          fmt.Sprintf("Previously struggled with topic: %s", topic),
			}
		}
	}

	confidence := float64(p.TotalSessions) / 5.0
	if confidence > 1.0 {
		confidence = 1.0
	}
	return DifficultyPrediction{
		DifficultyScore: 1.0 - p.AvgUnderstanding,
		Confidence:      confidence,
		Reason:          fmt.Sprintf("Based on average understanding level: %.2f", p.AvgUnderstanding),
	}
}

// #endregion predict-difficulty

// #region insights

// Insights derives categorical labels from the stored averages, or nil
// for an unknown participant.
func (s *Store) Insights(participantID string) *Insights {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[participantID]
	if !ok {
		return nil
	}

	speechStyle := "balanced"
	if p.AvgUtteranceLength > 150 {
		speechStyle = "detailed"
	} else if p.AvgUtteranceLength < 50 {
		speechStyle = "concise"
	}

	contributionStyle := "balanced"
	switch {
	case p.QuestionRatio > 0.4:
		contributionStyle = "question_driven"
	case p.AnswerRatio > 0.4:
		contributionStyle = "answer_provider"
	case p.SuggestionRatio > 0.3:
		contributionStyle = "proposer"
	}

	var tendency []string
	if p.AvgConfidence > 0.7 {
		tendency = append(tendency, "speaks with confidence")
	}
	if p.AvgHesitation > 0.6 {
		tendency = append(tendency, "thinks carefully before speaking")
	}
	if p.AvgUnderstanding < 0.5 {
		tendency = append(tendency, "takes time to build understanding")
	}

	return &Insights{
		ParticipantID:     p.ParticipantID,
		Name:              p.Name,
		SpeechStyle:       speechStyle,
		ContributionStyle: contributionStyle,
		CognitiveTendency: tendency,
		ConfusedTopics:    append([]string(nil), p.ConfusedTopics...),
		ConfidentTopics:   append([]string(nil), p.ConfidentTopics...),
		TotalSessions:     p.TotalSessions,
		AvgMetrics: AvgMetrics{
			Confidence:    p.AvgConfidence,
			Understanding: p.AvgUnderstanding,
			Hesitation:    p.AvgHesitation,
		},
	}
}

// #endregion insights

// #region export

// Export returns snapshots of every stored profile keyed by ID.
func (s *Store) Export() map[string]Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Profile, len(s.profiles))
	for id, p := range s.profiles {
		out[id] = snapshot(p)
	}
	return out
}

// #endregion export

// #region persistence

func (s *Store) loadAll() error {
	rows, err := s.db.Query(
		`SELECT participant_id, name, avg_utterance_length, avg_speech_rate, utterance_count,
		        avg_confidence, avg_understanding, avg_hesitation,
		        confused_topics, confident_topics,
		        question_ratio, answer_ratio, suggestion_ratio,
		        total_sessions, last_updated
		 FROM participant_profiles`)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Profile
		var confusedJSON, confidentJSON, updatedStr string
		if err := rows.Scan(
			&p.ParticipantID, &p.Name, &p.AvgUtteranceLength, &p.AvgSpeechRate, &p.UtteranceCount,
			&p.AvgConfidence, &p.AvgUnderstanding, &p.AvgHesitation,
			&confusedJSON, &confidentJSON,
			&p.QuestionRatio, &p.AnswerRatio, &p.SuggestionRatio,
			&p.TotalSessions, &updatedStr,
		); err != nil {
			return fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal([]byte(confusedJSON), &p.ConfusedTopics); err != nil {
			return fmt.Errorf("unmarshal confused topics: %w", err)
		}
		if err := json.Unmarshal([]byte(confidentJSON), &p.ConfidentTopics); err != nil {
			return fmt.Errorf("unmarshal confident topics: %w", err)
		}
		p.LastUpdated, _ = time.Parse(time.RFC3339Nano, updatedStr)
		prof := p
		s.profiles[p.ParticipantID] = &prof
	}
	if err := rows.Err(); err != nil {
		return err
	}

	log.Printf("[PROFILE] loaded %d profiles", len(s.profiles))
	return nil
}

func (s *Store) persistLocked(p *Profile) error {
	if s.db == nil {
		return nil
	}

	confusedJSON, err := json.Marshal(topicsOrEmpty(p.ConfusedTopics))
	if err != nil {
		return fmt.Errorf("marshal confused topics: %w", err)
	}
	confidentJSON, err := json.Marshal(topicsOrEmpty(p.ConfidentTopics))
	if err != nil {
		return fmt.Errorf("marshal confident topics: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO participant_profiles (
			participant_id, name, avg_utterance_length, avg_speech_rate, utterance_count,
			avg_confidence, avg_understanding, avg_hesitation,
			confused_topics, confident_topics,
			question_ratio, answer_ratio, suggestion_ratio,
			total_sessions, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(participant_id) DO UPDATE SET
			name = excluded.name,
			avg_utterance_length = excluded.avg_utterance_length,
			avg_speech_rate = excluded.avg_speech_rate,
			utterance_count = excluded.utterance_count,
			avg_confidence = excluded.avg_confidence,
			avg_understanding = excluded.avg_understanding,
			avg_hesitation = excluded.avg_hesitation,
			confused_topics = excluded.confused_topics,
			confident_topics = excluded.confident_topics,
			question_ratio = excluded.question_ratio,
			answer_ratio = excluded.answer_ratio,
			suggestion_ratio = excluded.suggestion_ratio,
			total_sessions = excluded.total_sessions,
			last_updated = excluded.last_updated`,
		p.ParticipantID, p.Name, p.AvgUtteranceLength, p.AvgSpeechRate, p.UtteranceCount,
		p.AvgConfidence, p.AvgUnderstanding, p.AvgHesitation,
		string(confusedJSON), string(confidentJSON),
		p.QuestionRatio, p.AnswerRatio, p.SuggestionRatio,
		p.TotalSessions, p.LastUpdated.Format(time.RFC3339Nano),
	)
	return err
}

// #endregion persistence

// #region helpers

func blend(batchMean, oldAvg float64) float64 {
	return emaAlpha*batchMean + (1-emaAlpha)*oldAvg
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

func topicsOrEmpty(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}

func snapshot(p *Profile) Profile {
	out := *p
	out.ConfusedTopics = append([]string(nil), p.ConfusedTopics...)
	out.ConfidentTopics = append([]string(nil), p.ConfidentTopics...)
	return out
}

// #endregion helpers
