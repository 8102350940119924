package main

// #region imports
import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/profile"
)

// #endregion

// #region main

func main() {
	dbPath := flag.String("db", "", "path to participant_profiles.db")
	participant := flag.String("participant", "", "show single participant detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: profiles --db path/to/participant_profiles.db [--participant id] [--json]")
		os.Exit(2)
	}

	store, err := profile.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *participant != "" {
		if err := runDetailMode(store, *participant, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(store, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

func runListMode(store *profile.Store, jsonOut bool) error {
	profiles := store.Export()
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stderr, "no profiles found")
		return nil
	}

	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if jsonOut {
		ordered := make([]profile.Profile, len(ids))
		for i, id := range ids {
			ordered[i] = profiles[id]
		}
		return printJSON(ordered)
	}

	fmt.Printf("%-16s  %8s  %6s  %6s  %6s  %6s  %s\n",
		"Participant", "Sessions", "Conf", "Und", "Hes", "Rate", "Updated")
	fmt.Printf("%-16s+-%8s+-%6s+-%6s+-%6s+-%6s+-%s\n",
		"----------------", "--------", "------", "------", "------", "------", "--------------------")

	for _, id := range ids {
		p := profiles[id]
		fmt.Printf("%-16s  %8d  %6.2f  %6.2f  %6.2f  %6.2f  %s\n",
			id, p.TotalSessions,
			p.AvgConfidence, p.AvgUnderstanding, p.AvgHesitation, p.AvgSpeechRate,
			p.LastUpdated.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(store *profile.Store, participantID string, jsonOut bool) error {
	p, ok := store.Get(participantID)
	if !ok {
		return fmt.Errorf("no profile for participant %q", participantID)
	}
	insights := store.Insights(participantID)

	if jsonOut {
		return printJSON(struct {
			Profile  profile.Profile   `json:"profile"`
			Insights *profile.Insights `json:"insights"`
		}{p, insights})
	}

	fmt.Printf("Participant: %s (%s)\n", p.ParticipantID, p.Name)
	fmt.Printf("Sessions:    %d (%d utterances)\n", p.TotalSessions, p.UtteranceCount)
	fmt.Printf("Updated:     %s\n", p.LastUpdated.Format("2006-01-02T15:04:05Z"))
	fmt.Printf("\nAverages:\n")
	fmt.Printf("  Confidence:       %.2f\n", p.AvgConfidence)
	fmt.Printf("  Understanding:    %.2f\n", p.AvgUnderstanding)
	fmt.Printf("  Hesitation:       %.2f\n", p.AvgHesitation)
	fmt.Printf("  Utterance length: %.1f\n", p.AvgUtteranceLength)
	fmt.Printf("  Speech rate:      %.2f\n", p.AvgSpeechRate)
	fmt.Printf("\nContribution ratios: Q=%.2f A=%.2f S=%.2f\n",
		p.QuestionRatio, p.AnswerRatio, p.SuggestionRatio)

	if insights != nil {
		fmt.Printf("\nInsights:\n")
		fmt.Printf("  Speech style:       %s\n", insights.SpeechStyle)
		fmt.Printf("  Contribution style: %s\n", insights.ContributionStyle)
		for _, t := range insights.CognitiveTendency {
			fmt.Printf("  Tendency:           %s\n", t)
		}
	}
	if len(p.ConfusedTopics) > 0 {
		fmt.Printf("\nConfused topics:  %v\n", p.ConfusedTopics)
	}
	if len(p.ConfidentTopics) > 0 {
		fmt.Printf("Confident topics: %v\n", p.ConfidentTopics)
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
