package intervention

// #region imports
import (
	"fmt"
	"strings"
)

// #endregion

// #region templates

// fallbackTemplates are the fixed facilitator messages used when no
// generation service is configured or the call fails.
var fallbackTemplates = map[Type]string{
	TypeClarification: "💡 議論が複雑になっています。現在の論点を整理し、共通理解を確認しましょう。",
	TypeSummary:       "📝 ここまでの議論を整理しましょう。主要なポイントを確認してください。",
	TypePerspective:   "🤔 視点を変えてみましょう。別の角度から考えてみませんか？",
	TypeEncouragement: "💬 他の方の意見も聞いてみましょう。",
	TypeCaution:       "⚠️ 注意: 議論の進め方を見直しましょう。",
}

// FallbackTemplate returns the fixed message for an intervention type,
// or "" for TypeNone and unknown types.
func FallbackTemplate(t Type) string {
	return fallbackTemplates[t]
}

// #endregion templates

// #region encouragement

// encouragementMessage picks the variant matching the context: open
// questions first, then silent participants, then the generic nudge.
func encouragementMessage(mc MessageContext) string {
	if mc.QCount > 0 {
		return fmt.Sprintf("❓ %d件の質問に回答がありません。誰か答えられる方はいませんか？", mc.QCount)
	}
	if len(mc.SilentParticipants) > 0 {
		names := mc.SilentParticipants
		if len(names) > 2 {
			names = names[:2]
		}
		return fmt.Sprintf("💬 %sさんの意見も聞いてみたいです。いかがでしょうか？", strings.Join(names, "、"))
	}
	return fallbackTemplates[TypeEncouragement]
}

// cautionMessage names the issue when one is given.
func cautionMessage(mc MessageContext) string {
	if mc.Issue != "" {
		return fmt.Sprintf("⚠️ 注意: %s。議論の進め方を見直しましょう。", mc.Issue)
	}
	return fallbackTemplates[TypeCaution]
}

// #endregion encouragement

// #region prompts

// maxTranscriptRunes caps how much transcript a prompt may embed.
const maxTranscriptRunes = 500

var promptTemplates = map[Type]string{
	TypeClarification: `以下の議論で混乱が生じています。何が不明確なのか、どの点を整理すべきかを提案してください。

議論内容:
%s

提案形式:
- 「〜の定義が曖昧です。具体的に説明してください」
- 「〜と〜の関係が不明確です。整理しましょう」`,
	TypeSummary: `以下の議論を簡潔に要約し、重要なポイントを3点以内で箇条書きしてください。

議論内容:
%s

形式:
📝 現在の議論のポイント:
• [ポイント1]
• [ポイント2]
• [ポイント3]`,
	TypePerspective: `以下の議論が停滞しています。新しい視点や問いかけを提案してください。

議論内容:
%s

形式:
🤔 こんな視点はどうでしょうか？
[具体的な問いかけや視点]`,
}

// buildPrompt renders the generation prompt for a type, or "" when the
// type has no generated variant.
func buildPrompt(t Type, transcript string) string {
	tmpl, ok := promptTemplates[t]
	if !ok {
		return ""
	}
	return fmt.Sprintf(tmpl, truncateRunes(transcript, maxTranscriptRunes))
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// #endregion prompts
