package intervention

// #region imports
import (
	"context"
	"log"
	"time"
	"unicode/utf8"
)

// #endregion

// #region completer
// Completer is the consumed text-generation capability. Enabled
// reports whether the capability is actually configured; an unconfigured
// capability is a normal mode, not an error.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// #endregion completer

// #region config
// MessengerConfig bounds message generation.
type MessengerConfig struct {
	MinTranscriptRunes int           // below this the template path is used directly
	Timeout            time.Duration // upper bound on one generation call
}

// DefaultMessengerConfig returns the standard bounds.
func DefaultMessengerConfig() MessengerConfig {
	return MessengerConfig{
		MinTranscriptRunes: 50,
		Timeout:            15 * time.Second,
	}
}

// #endregion config

// #region messenger
// Messenger produces the facilitator message for a decided
// intervention, preferring the generation service and degrading to
// fixed templates on any failure.
type Messenger struct {
	llm    Completer
	config MessengerConfig
}

// NewMessenger creates a messenger. llm may be nil; every message then
// comes from the template path.
func NewMessenger(llm Completer, config MessengerConfig) *Messenger {
	return &Messenger{llm: llm, config: config}
}

// #endregion messenger

// #region generate

// Generate returns the message for an intervention type. It never
// returns an empty string for the five active types and never fails:
// generation errors and timeouts degrade to the fixed template.
func (m *Messenger) Generate(ctx context.Context, t Type, mc MessageContext) string {
	switch t {
	case TypeEncouragement:
		return encouragementMessage(mc)
	case TypeCaution:
		return cautionMessage(mc)
	case TypeClarification, TypeSummary, TypePerspective:
		if msg := m.generated(ctx, t, mc); msg != "" {
			return msg
		}
		return fallbackTemplates[t]
	default:
		return ""
	}
}

// generated attempts the LLM path; "" means fall back.
func (m *Messenger) generated(ctx context.Context, t Type, mc MessageContext) string {
	if m.llm == nil || !m.llm.Enabled() {
		return ""
	}
	if utf8.RuneCountInString(mc.Transcript) <= m.config.MinTranscriptRunes {
		return ""
	}

	prompt := buildPrompt(t, mc.Transcript)
	if prompt == "" {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, m.config.Timeout)
	defer cancel()

	msg, err := m.llm.Complete(ctx, prompt)
	if err != nil {
		log.Printf("[INTERVENE] generation failed, using template: %v", err)
		return ""
	}
	return msg
}

// #endregion generate
