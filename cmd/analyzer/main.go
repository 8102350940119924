package main

// #region imports
import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/config"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/discourse"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/intervention"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/llm"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/orchestrator"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/profile"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/prosody"
)

// #endregion

// #region fixture

// sessionFixture is the recorded-session input format.
type sessionFixture struct {
	SessionID string           `json:"session_id"`
	Segments  []segmentFixture `json:"segments"`
}

type segmentFixture struct {
	SegmentID  int                   `json:"segment_id"`
	StartSec   float64               `json:"start_sec"`
	EndSec     float64               `json:"end_sec"`
	Utterances []discourse.Utterance `json:"utterances"`
}

func loadSession(path string) (sessionFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sessionFixture{}, fmt.Errorf("read session: %w", err)
	}
	var f sessionFixture
	if err := json.Unmarshal(data, &f); err != nil {
		return sessionFixture{}, fmt.Errorf("parse session %s: %w", path, err)
	}
	if f.SessionID == "" {
		return sessionFixture{}, fmt.Errorf("session %s: missing session_id", path)
	}
	return f, nil
}

// #endregion fixture

// #region main

func main() {
	configPath := flag.String("config", "", "path to config YAML (optional)")
	sessionPath := flag.String("session", "", "path to recorded session JSON")
	jsonOut := flag.Bool("json", false, "output full results as JSON")
	flag.Parse()

	if *sessionPath == "" {
		fmt.Fprintln(os.Stderr, "usage: analyzer --session path/to/session.json [--config config.yaml] [--json]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	session, err := loadSession(*sessionPath)
	if err != nil {
		log.Fatalf("failed to load session: %v", err)
	}

	store, err := profile.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open profile store: %v", err)
	}
	defer store.Close()

	lex := prosody.DefaultLexicon()
	if cfg.LexiconPath != "" {
		lex, err = prosody.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			log.Fatalf("failed to load lexicon: %v", err)
		}
	}

	llmClient := llm.NewClient(cfg.LLM)
	o := orchestrator.New(
		discourse.NewHTTPAnalyzer(cfg.DiscourseAddr),
		prosody.NewEstimator(lex, cfg.Estimator),
		store,
		intervention.NewPolicy(cfg.Policy),
		intervention.NewMessenger(llmClient, intervention.DefaultMessengerConfig()),
	)

	fmt.Printf("Analyzing session %s (%d segments)\n", session.SessionID, len(session.Segments))
	fmt.Printf("  DB: %s | Discourse: %s | LLM: %v\n\n", cfg.DBPath, cfg.DiscourseAddr, llmClient.Enabled())

	ctx := context.Background()
	results := make([]orchestrator.IntegratedResult, 0, len(session.Segments))
	for _, seg := range session.Segments {
		result := o.AnalyzeSegmentIntegrated(ctx, session.SessionID, seg.SegmentID, seg.StartSec, seg.EndSec, seg.Utterances)
		results = append(results, result)
		printSegment(result)
	}

	summary := o.UpdateParticipantProfiles(session.SessionID, results)
	printProfiles(summary)

	if *jsonOut {
		if err := printJSON(struct {
			Results  []orchestrator.IntegratedResult   `json:"results"`
			Profiles orchestrator.ProfileUpdateSummary `json:"profiles"`
		}{results, summary}); err != nil {
			log.Fatalf("failed to encode results: %v", err)
		}
	}

	for _, r := range results {
		if r.Error != "" {
			os.Exit(1)
		}
	}
}

// #endregion main

// #region output

func printSegment(r orchestrator.IntegratedResult) {
	if r.Error != "" {
		fmt.Printf("[seg %d] ERROR: %s\n", r.SegmentID, r.Error)
		return
	}

	fmt.Printf("[seg %d] health=%.3f confusion=%.2f stagnation=%.2f\n",
		r.SegmentID, r.Summary.DiscussionHealth, r.Summary.KeyMetrics.Confusion, r.Summary.KeyMetrics.Stagnation)

	for _, st := range r.ParticipantStates {
		if st.State == nil {
			fmt.Printf("  %-10s (no estimate: %s)\n", st.Speaker, st.Err)
			continue
		}
		fmt.Printf("  %-10s %-10s conf=%.2f und=%.2f hes=%.2f\n",
			st.Speaker, st.State.StateLabel,
			st.State.ConfidenceLevel, st.State.UnderstandingLevel, st.State.HesitationLevel)
	}

	if r.Intervention.Needed {
		fmt.Printf("  -> intervene: %s (priority %.2f): %s\n", r.Intervention.Type, r.Intervention.Priority, r.Intervention.Reason)
		fmt.Printf("     %s\n", r.Intervention.Message)
	}
	fmt.Println()
}

func printProfiles(summary orchestrator.ProfileUpdateSummary) {
	if summary.Error != "" {
		fmt.Printf("profile update ERROR: %s\n", summary.Error)
		return
	}

	fmt.Printf("Updated %d participant profiles:\n", summary.UpdatedCount)
	for id, ins := range summary.Profiles {
		if ins == nil {
			continue
		}
		fmt.Printf("  %-10s style=%s/%s sessions=%d conf=%.2f und=%.2f\n",
			id, ins.SpeechStyle, ins.ContributionStyle, ins.TotalSessions,
			ins.AvgMetrics.Confidence, ins.AvgMetrics.Understanding)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
