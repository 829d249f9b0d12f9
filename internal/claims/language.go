package claims

import "strings"

type Language string

const (
	LangEnglish            Language = "en-US"
	LangTraditionalChinese Language = "zh-TW"
)

const DefaultLanguage = LangEnglish

// ParseLanguage maps loose spellings ("zh_tw", "EN") onto a supported
// language, falling back to DefaultLanguage.
func ParseLanguage(s string) Language {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	switch {
	case strings.HasPrefix(norm, "zh"):
		return LangTraditionalChinese
	case strings.HasPrefix(norm, "en"):
		return LangEnglish
	default:
		return DefaultLanguage
	}
}

// DisplayName is used in the output-language directive sent to the oracle.
func (l Language) DisplayName() string {
	if l == LangTraditionalChinese {
		return "Traditional Chinese (繁體中文)"
	}
	return "English"
}

// Phrase identifies one of the few fixed user-facing sentences.
type Phrase int

const (
	PhraseAnalysisComplete Phrase = iota
	PhraseAnalysisFailed
	PhraseCheckInput
	PhraseNoSpecificSurgery
)

var phrases = map[Language]map[Phrase]string{
	LangEnglish: {
		PhraseAnalysisComplete:  "Analysis complete.",
		PhraseAnalysisFailed:    "AI Analysis failed to generate a full report.",
		PhraseCheckInput:        "Please check your input data.",
		PhraseNoSpecificSurgery: "No specific surgery",
	},
	LangTraditionalChinese: {
		PhraseAnalysisComplete:  "AI 分析完成，請參考下方明細。",
		PhraseAnalysisFailed:    "AI 分析過程發生異常，無法產生完整報告。",
		PhraseCheckInput:        "請檢查輸入資料是否完整。",
		PhraseNoSpecificSurgery: "無特定手術",
	},
}

func (l Language) Phrase(p Phrase) string {
	if m, ok := phrases[l]; ok {
		return m[p]
	}
	return phrases[DefaultLanguage][p]
}
