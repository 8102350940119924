package prosody

// #region imports
import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// #endregion

// #region lexicon
// Lexicon holds the marker tables the extractor and estimator scan for.
// The tables are data, not logic: alternate languages or domains swap
// in their own markers without touching the estimation code.
type Lexicon struct {
	// Fillers such as "えー" and "あの" that signal hesitation.
	HesitationMarkers []string `yaml:"hesitation_markers"`
	// Hedging patterns such as "かな" and "かも" that soften an assertion.
	AmbiguousEndings []string `yaml:"ambiguous_endings"`
	// Punctuation and ellipsis markers counted as pauses.
	PauseIndicators []string `yaml:"pause_indicators"`
	// Markers like "なぜなら" and "例えば" that signal the speaker is explaining.
	ExplanationMarkers []string `yaml:"explanation_markers"`
	// Markers like "？" and "でしょうか" that signal the speaker is asking.
	QuestionMarkers []string `yaml:"question_markers"`
}

// #endregion lexicon

// #region default-lexicon

// DefaultLexicon returns the Japanese discussion marker tables.
func DefaultLexicon() Lexicon {
	return Lexicon{
		HesitationMarkers:  []string{"えー", "あー", "あの", "その", "まあ", "なんか"},
		AmbiguousEndings:   []string{"かな", "みたいな", "って感じ", "かも", "だろうか", "たぶん"},
		PauseIndicators:    []string{"、", "。", "…"},
		ExplanationMarkers: []string{"なぜなら", "例えば", "つまり", "具体的には"},
		QuestionMarkers:    []string{"？", "ですか", "でしょうか", "わからない"},
	}
}

// #endregion default-lexicon

// #region load-lexicon

// LoadLexicon reads marker tables from a YAML file. Tables missing from
// the file keep their defaults, so a partial override is valid.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon: %w", err)
	}

	var loaded Lexicon
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	lex := DefaultLexicon()
	if len(loaded.HesitationMarkers) > 0 {
		lex.HesitationMarkers = loaded.HesitationMarkers
	}
	if len(loaded.AmbiguousEndings) > 0 {
		lex.AmbiguousEndings = loaded.AmbiguousEndings
	}
	if len(loaded.PauseIndicators) > 0 {
		lex.PauseIndicators = loaded.PauseIndicators
	}
	if len(loaded.ExplanationMarkers) > 0 {
		lex.ExplanationMarkers = loaded.ExplanationMarkers
	}
	if len(loaded.QuestionMarkers) > 0 {
		lex.QuestionMarkers = loaded.QuestionMarkers
	}
	return lex, nil
}

// #endregion load-lexicon
