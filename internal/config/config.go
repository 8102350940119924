package config

// #region imports
import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/intervention"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/llm"
	"github.com/ymurata/discussion-facilitator/go-analyzer/internal/prosody"
)

// #endregion

// #region config
// Config is the analyzer process configuration. Precedence is
// defaults, then the YAML file, then environment variables.
type Config struct {
	DBPath        string `yaml:"db_path"`
	DiscourseAddr string `yaml:"discourse_addr"`
	LexiconPath   string `yaml:"lexicon_path"`

	Estimator prosody.EstimatorConfig   `yaml:"estimator"`
	Policy    intervention.PolicyConfig `yaml:"policy"`
	LLM       llm.Config                `yaml:"llm"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DBPath:        "participant_profiles.db",
		DiscourseAddr: "http://localhost:8000",
		Estimator:     prosody.DefaultEstimatorConfig(),
		Policy:        intervention.DefaultPolicyConfig(),
		LLM:           llm.DefaultConfig(),
	}
}

// #endregion config

// #region load

// Load reads the YAML file at path and applies environment overrides.
// An empty path skips the file; a missing file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays the environment on top of file values.
func applyEnv(cfg *Config) {
	cfg.DBPath = envOr("ANALYZER_DB", cfg.DBPath)
	cfg.DiscourseAddr = envOr("DISCOURSE_ADDR", cfg.DiscourseAddr)
	cfg.LexiconPath = envOr("LEXICON_PATH", cfg.LexiconPath)
	cfg.LLM.APIKey = envOr("OPENAI_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = envOr("OPENAI_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = envOr("OPENAI_BASE_URL", cfg.LLM.BaseURL)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load
